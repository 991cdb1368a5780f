package queryparser

import "github.com/docquery/qparse/pkg/bsondoc"

// parseSize parses a $size predicate. A string argument reproduces the old
// odd behavior of matching arrays of length zero rather than erroring;
// negative numeric arguments match nothing.
func (p *Parser) parseSize(field string, val bsondoc.Value) (*Node, error) {
	if _, ok := val.AsText(); ok {
		return sizeNode(field, 0), nil
	}
	if n, ok := val.AsInt32(); ok {
		return sizeNode(field, int(n)), nil
	}
	if n, ok := val.AsInt64(); ok {
		return sizeNode(field, int(n)), nil
	}
	if f, ok := val.AsDouble(); ok {
		n := int(f)
		if float64(n) != f {
			return &Node{Kind: KindSize, Field: field, Size: NoMatchSize}, nil
		}
		return sizeNode(field, n), nil
	}
	return nil, badValue("$size needs a number")
}

func sizeNode(field string, n int) *Node {
	if n < 0 {
		return &Node{Kind: KindSize, Field: field, Size: NoMatchSize}
	}
	return &Node{Kind: KindSize, Field: field, Size: n}
}
