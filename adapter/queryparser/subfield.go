package queryparser

import "github.com/docquery/qparse/pkg/bsondoc"

var geoTriggers = map[string]bool{
	"$near":        true,
	"$nearSphere":  true,
	"$geoNear":     true,
	"$maxDistance": true,
	"$minDistance": true,
}

// parseSub handles {field: {op: arg, ...}}, dispatching each inner operator
// against field and appending results to parent. A geo block is
// recognized by peeking at the first element and, if it commits, parsed
// atomically instead of operator-by-operator.
func (p *Parser) parseSub(field string, sub bsondoc.Object, parent *Node, depth int) error {
	if op, isGeo := firstEntryIsGeo(sub); isGeo {
		payload, err := p.geo(field, op, bsondoc.Value(sub))
		if err != nil {
			return asQPError(err)
		}
		parent.Children = append(parent.Children, &Node{Kind: KindGeo, Field: field, Opaque: payload})
		return nil
	}

	for name, val := range sub.Entries() {
		node, err := p.parseSubField(sub, field, name, val, depth)
		if err != nil {
			return err
		}
		if node != nil {
			parent.Children = append(parent.Children, node)
		}
	}
	return nil
}

// firstEntryIsGeo reports whether sub's first operator is one that commits
// the whole sub-document to geo parsing. $maxDistance/$minDistance are
// triggers too, since they can come before their $near/$nearSphere/$geoNear
// sibling in key order; only the first key is checked.
func firstEntryIsGeo(sub bsondoc.Object) (string, bool) {
	for name := range sub.Entries() {
		return name, geoTriggers[name]
	}
	return "", false
}

// parseSubField is the single-operator parser. context is the full
// sub-document the operator came from, needed by $regex/$options
// (which must be resolved together) and by $within/$geoIntersects, which
// hand it to the geo callback.
func (p *Parser) parseSubField(context bsondoc.Object, field, op string, val bsondoc.Value, depth int) (*Node, error) {
	switch op {
	case "$eq":
		return leaf(KindEq, field, val), nil
	case "$lt":
		return comparisonLeaf(KindLt, "$lt", field, val)
	case "$lte":
		return comparisonLeaf(KindLte, "$lte", field, val)
	case "$gt":
		return comparisonLeaf(KindGt, "$gt", field, val)
	case "$gte":
		return comparisonLeaf(KindGte, "$gte", field, val)
	case "$ne":
		if _, _, ok := val.AsRegex(); ok {
			return nil, badValue("$ne cannot be applied to a regex value")
		}
		return &Node{Kind: KindNot, Children: []*Node{leaf(KindEq, field, val)}}, nil
	case "$in":
		set, err := p.parseInSet("$in", val)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindIn, Field: field, In: set}, nil
	case "$nin":
		set, err := p.parseInSet("$nin", val)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindNot, Children: []*Node{{Kind: KindIn, Field: field, In: set}}}, nil
	case "$size":
		return p.parseSize(field, val)
	case "$exists":
		return p.parseExists(field, val)
	case "$type":
		return p.parseType(field, val)
	case "$mod":
		return p.parseMod(field, val)
	case "$regex":
		return p.parseRegexDoc(context, field)
	case "$options":
		if _, hasRegex := context.GetOk("$regex"); !hasRegex {
			return nil, badValue("$options needs a $regex")
		}
		return nil, nil
	case "$not":
		return p.parseNot(field, val, depth)
	case "$elemMatch":
		return p.parseElemMatch(field, val, depth)
	case "$all":
		return p.parseAll(field, val, depth)
	case "$within", "$geoIntersects":
		payload, err := p.geo(field, op, bsondoc.Value(context))
		if err != nil {
			return nil, asQPError(err)
		}
		return &Node{Kind: KindGeo, Field: field, Opaque: payload}, nil
	case "$where":
		return nil, badValue("$where cannot be applied to a field")
	default:
		return nil, badValue("unknown operator: %s", op)
	}
}

func comparisonLeaf(kind Kind, op, field string, val bsondoc.Value) (*Node, error) {
	if _, _, ok := val.AsRegex(); ok {
		return nil, badValue("%s cannot be applied to a regex value", op)
	}
	return leaf(kind, field, val), nil
}

func (p *Parser) parseExists(field string, val bsondoc.Value) (*Node, error) {
	truthy, err := truthyValue("exists", val)
	if err != nil {
		return nil, badValue("$exists needs a boolean-ish value")
	}
	if truthy {
		return &Node{Kind: KindExists, Field: field}, nil
	}
	return &Node{Kind: KindNot, Children: []*Node{{Kind: KindExists, Field: field}}}, nil
}
