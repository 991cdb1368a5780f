package queryparser

import "github.com/docquery/qparse/pkg/bsondoc"

// parseInSet is the shared entry-list parser for $in and $nin.
func (p *Parser) parseInSet(name string, val bsondoc.Value) (*InSet, error) {
	list, ok := val.AsList()
	if !ok {
		return nil, badValue("%s needs an array", name)
	}

	set := &InSet{}
	for item := range list.Values() {
		if obj, ok := item.AsObject(); ok {
			if isExpressionDoc(obj) && !p.isDBRef(obj) {
				return nil, badValue("cannot nest $ under %s", name)
			}
		}
		if pattern, flags, ok := item.AsRegex(); ok {
			set.Regex = append(set.Regex, &Node{Kind: KindRegex, Pattern: pattern, Flags: flags})
			continue
		}
		set.Eq = append(set.Eq, item)
	}
	return set, nil
}
