package queryparser

import "github.com/docquery/qparse/pkg/bsondoc"

// parseElemMatch picks value form when the object's first key is an
// expression operator that isn't $and/$nor/$or/$where, object form otherwise.
// DBRef sub-documents always take object form; DBRef detection here is
// always permissive (any of $ref/$id/$db), independent of the parser's
// configured strictness, since $elemMatch's value/object routing has its own
// fixed rule.
func (p *Parser) parseElemMatch(field string, val bsondoc.Value, depth int) (*Node, error) {
	obj, ok := val.AsObject()
	if !ok {
		return nil, badValue("$elemMatch needs an object")
	}

	if isExpressionDoc(obj) && !startsWithLogicalOrWhere(obj) && !isDBRefPermissive(obj) {
		and := &Node{Kind: KindAnd}
		if err := p.parseSub("", obj, and, depth+1); err != nil {
			return nil, err
		}
		return &Node{Kind: KindElemMatchValue, Field: field, Children: and.Children}, nil
	}

	sub, err := p.parseDoc(obj, depth+1)
	if err != nil {
		return nil, err
	}
	if containsKind(sub, KindWhere) {
		return nil, badValue("$elemMatch cannot contain $where")
	}
	return &Node{Kind: KindElemMatchObject, Field: field, Children: []*Node{sub}}, nil
}

func startsWithLogicalOrWhere(obj bsondoc.Object) bool {
	for k := range obj.Entries() {
		switch k {
		case "$and", "$nor", "$or", "$where":
			return true
		default:
			return false
		}
	}
	return false
}

// containsKind performs a depth-first scan for a node of the given kind.
func containsKind(n *Node, kind Kind) bool {
	if n == nil {
		return false
	}
	if n.Kind == kind {
		return true
	}
	for _, c := range n.Children {
		if containsKind(c, kind) {
			return true
		}
	}
	return false
}
