package queryparser

import "github.com/docquery/qparse/pkg/bsondoc"

// parseLogicList handles $or/$and/$nor: each takes an array of query
// documents, parsed recursively and appended as a child, in order, with no
// deduplication or flattening across entries.
func (p *Parser) parseLogicList(kind Kind, name string, val bsondoc.Value, depth int) (*Node, error) {
	list, ok := val.AsList()
	if !ok {
		return nil, badValue("%s needs an array", name)
	}

	node := &Node{Kind: kind}
	for item := range list.Values() {
		obj, ok := item.AsObject()
		if !ok {
			return nil, badValue("%s entries must be objects", name)
		}
		child, err := p.parseDoc(obj, depth+1)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}
