package queryparser

import "github.com/docquery/qparse/pkg/bsondoc"

// parseAll parses $all, switching between $elemMatch-consistency mode (every
// entry is an $elemMatch sub-document) and plain equality mode.
func (p *Parser) parseAll(field string, val bsondoc.Value, depth int) (*Node, error) {
	list, ok := val.AsList()
	if !ok {
		return nil, badValue("$all needs an array")
	}

	var elems []bsondoc.Value
	for v := range list.Values() {
		elems = append(elems, v)
	}
	if len(elems) == 0 {
		return &Node{Kind: KindFalseLiteral}, nil
	}

	if isElemMatchEntry(elems[0]) {
		and := &Node{Kind: KindAnd}
		for _, e := range elems {
			if !isElemMatchEntry(e) {
				return nil, badValue("$all/$elemMatch has to be consistent")
			}
			obj, _ := e.AsObject()
			emVal, _ := obj.GetOk("$elemMatch")
			node, err := p.parseElemMatch(field, emVal, depth+1)
			if err != nil {
				return nil, err
			}
			and.Children = append(and.Children, node)
		}
		return flattenSingle(and), nil
	}

	and := &Node{Kind: KindAnd}
	for _, e := range elems {
		if obj, ok := e.AsObject(); ok && isExpressionDoc(obj) {
			return nil, badValue("$all equality mode cannot contain operator sub-documents")
		}
		if pattern, flags, ok := e.AsRegex(); ok {
			and.Children = append(and.Children, &Node{Kind: KindRegex, Field: field, Pattern: pattern, Flags: flags})
			continue
		}
		and.Children = append(and.Children, leaf(KindEq, field, e))
	}
	return flattenSingle(and), nil
}

func isElemMatchEntry(v bsondoc.Value) bool {
	obj, ok := v.AsObject()
	if !ok {
		return false
	}
	for k := range obj.Entries() {
		return k == "$elemMatch"
	}
	return false
}
