package queryparser

import "github.com/docquery/qparse/pkg/bsondoc"

// Kind tags the shape of a Node.
type Kind uint8

// Node kinds, one per production in the match-expression grammar.
const (
	KindEq Kind = iota
	KindLt
	KindLte
	KindGt
	KindGte
	KindRegex
	KindMod
	KindExists
	KindType
	KindSize
	KindIn
	KindElemMatchValue
	KindElemMatchObject
	KindAnd
	KindOr
	KindNor
	KindNot
	KindAtomic
	KindFalseLiteral
	KindWhere
	KindText
	KindGeo
)

// NoMatchType is the $type code used when the element is a double with a
// fractional part (e.g. 1.5). Integer arguments and integral doubles are kept
// as given, without a 32-bit range check. A node bearing this code matches
// nothing.
const NoMatchType = -1

// NoMatchSize is the $size value used for inputs that are well-typed but
// cannot possibly be an array length (negative counts, non-integral
// doubles). A node bearing this value matches nothing.
const NoMatchSize = -1

// InSet is the parsed form of a $in/$nin argument list: literal values to
// compare for equality, plus any regex entries (which match against strings
// instead of via equality).
type InSet struct {
	Eq    []bsondoc.Value
	Regex []*Node
}

// Node is one element of the match-expression tree. Only the fields relevant
// to Kind are populated; the rest stay at zero value.
type Node struct {
	Kind Kind

	// Field is the dotted path this node constrains. Empty for logical
	// connectives, Atomic, FalseLiteral, and the synthetic field used
	// inside ElemMatchValue children.
	Field string

	// Value holds the comparison literal for Eq/Lt/Lte/Gt/Gte.
	Value bsondoc.Value

	// Pattern/Flags hold a Regex node's payload.
	Pattern string
	Flags   string

	// Divisor/Remainder hold a Mod node's payload.
	Divisor   int32
	Remainder int32

	// TypeCode holds a Type node's resolved code (NoMatchType for "match
	// nothing").
	TypeCode int

	// Size holds a Size node's resolved element count (NoMatchSize for
	// "match nothing").
	Size int

	// In holds an In node's parsed entry set.
	In *InSet

	// Opaque carries a callback-produced payload for Where/Text/Geo nodes.
	Opaque any

	// Children holds sub-expressions for And/Or/Nor (zero or more), Not
	// and ElemMatchObject (exactly one), and ElemMatchValue (its
	// constituent leaf conditions).
	Children []*Node
}

func leaf(kind Kind, field string, value bsondoc.Value) *Node {
	return &Node{Kind: kind, Field: field, Value: value}
}

// flattenSingle implements invariant 3: a freshly parsed top-level AND with
// exactly one child unwraps to that child.
func flattenSingle(and *Node) *Node {
	if and.Kind == KindAnd && len(and.Children) == 1 {
		return and.Children[0]
	}
	return and
}
