package queryparser

import "github.com/docquery/qparse/pkg/bsondoc"

// parseNot parses $not, accepting either a regex literal or a sub-document
// of operators to negate as a whole.
func (p *Parser) parseNot(field string, val bsondoc.Value, depth int) (*Node, error) {
	if pattern, flags, ok := val.AsRegex(); ok {
		return &Node{Kind: KindNot, Children: []*Node{
			{Kind: KindRegex, Field: field, Pattern: pattern, Flags: flags},
		}}, nil
	}

	obj, ok := val.AsObject()
	if !ok {
		return nil, badValue("$not needs a regex or a document")
	}
	if obj.Count() == 0 {
		return nil, badValue("$not cannot be empty")
	}

	and := &Node{Kind: KindAnd}
	if err := p.parseSub(field, obj, and, depth+1); err != nil {
		return nil, err
	}
	return &Node{Kind: KindNot, Children: []*Node{flattenSingle(and)}}, nil
}
