package queryparser

import "github.com/docquery/qparse/pkg/bsondoc"

// typeAliases is the case-sensitive $type string-alias table. "number" is
// not a real BSON type; it stands for "any of double/int/long", recorded
// here as a distinguished negative sentinel.
var typeAliases = map[string]int{
	"double":    1,
	"string":    2,
	"object":    3,
	"array":     4,
	"binData":   5,
	"undefined": 6,
	"objectId":  7,
	"bool":      8,
	"date":      9,
	"null":      10,
	"regex":     11,
	"int":       16,
	"timestamp": 17,
	"long":      18,
	"decimal":   19,
	"number":    -2,
}

// parseType parses a $type predicate, accepting either a numeric BSON type
// code or one of the string aliases in typeAliases.
func (p *Parser) parseType(field string, val bsondoc.Value) (*Node, error) {
	if s, ok := val.AsText(); ok {
		code, known := typeAliases[s]
		if !known {
			return nil, badValue("unknown string alias for $type: %s", s)
		}
		return &Node{Kind: KindType, Field: field, TypeCode: code}, nil
	}
	if n, ok := val.AsInt32(); ok {
		return &Node{Kind: KindType, Field: field, TypeCode: int(n)}, nil
	}
	if n, ok := val.AsInt64(); ok {
		// A 64-bit integer is always its own integer part, so it never
		// triggers the double-vs-integer "match nothing" quirk below.
		return &Node{Kind: KindType, Field: field, TypeCode: int(n)}, nil
	}
	if f, ok := val.AsDouble(); ok {
		n := int(f)
		if float64(n) != f {
			return &Node{Kind: KindType, Field: field, TypeCode: NoMatchType}, nil
		}
		return &Node{Kind: KindType, Field: field, TypeCode: n}, nil
	}
	return nil, typeMismatch("$type needs a number or a string alias, got %v", val.Type())
}
