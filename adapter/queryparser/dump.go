package queryparser

import (
	"fmt"
	"strings"
)

var kindNames = map[Kind]string{
	KindEq:              "Eq",
	KindLt:              "Lt",
	KindLte:             "Lte",
	KindGt:              "Gt",
	KindGte:             "Gte",
	KindRegex:           "Regex",
	KindMod:             "Mod",
	KindExists:          "Exists",
	KindType:            "Type",
	KindSize:            "Size",
	KindIn:              "In",
	KindElemMatchValue:  "ElemMatchValue",
	KindElemMatchObject: "ElemMatchObject",
	KindAnd:             "And",
	KindOr:              "Or",
	KindNor:             "Nor",
	KindNot:             "Not",
	KindAtomic:          "Atomic",
	KindFalseLiteral:    "FalseLiteral",
	KindWhere:           "Where",
	KindText:            "Text",
	KindGeo:             "Geo",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Dump renders n as an indented, human-readable tree, for CLI output and
// test failure messages.
func (n *Node) Dump() string {
	var b strings.Builder
	n.dump(&b, 0)
	return b.String()
}

func (n *Node) dump(b *strings.Builder, indent int) {
	if n == nil {
		b.WriteString(strings.Repeat("  ", indent))
		b.WriteString("<nil>\n")
		return
	}
	b.WriteString(strings.Repeat("  ", indent))
	fmt.Fprintf(b, "%s", n.Kind)
	if n.Field != "" {
		fmt.Fprintf(b, " field=%q", n.Field)
	}
	switch n.Kind {
	case KindEq, KindLt, KindLte, KindGt, KindGte:
		if i, ok := n.Value.AsInt32(); ok {
			fmt.Fprintf(b, " value=%d", i)
		} else if i, ok := n.Value.AsInt64(); ok {
			fmt.Fprintf(b, " value=%d", i)
		} else if f, ok := n.Value.AsDouble(); ok {
			fmt.Fprintf(b, " value=%g", f)
		} else if s, ok := n.Value.AsText(); ok {
			fmt.Fprintf(b, " value=%q", s)
		} else if v, ok := n.Value.AsBool(); ok {
			fmt.Fprintf(b, " value=%t", v)
		} else {
			fmt.Fprintf(b, " type=%d", n.Value.Type())
		}
	case KindRegex:
		fmt.Fprintf(b, " pattern=%q flags=%q", n.Pattern, n.Flags)
	case KindMod:
		fmt.Fprintf(b, " divisor=%d remainder=%d", n.Divisor, n.Remainder)
	case KindType:
		fmt.Fprintf(b, " code=%d", n.TypeCode)
	case KindSize:
		fmt.Fprintf(b, " size=%d", n.Size)
	case KindIn:
		if n.In != nil {
			fmt.Fprintf(b, " eq=%d regex=%d", len(n.In.Eq), len(n.In.Regex))
		}
	}
	b.WriteString("\n")
	for _, c := range n.Children {
		c.dump(b, indent+1)
	}
}
