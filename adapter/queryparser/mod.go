package queryparser

import "github.com/docquery/qparse/pkg/bsondoc"

// asInt32 coerces a numeric Value down to int32, truncating doubles.
func asInt32(v bsondoc.Value) (int32, bool) {
	if n, ok := v.AsInt32(); ok {
		return n, true
	}
	if n, ok := v.AsInt64(); ok {
		return int32(n), true
	}
	if f, ok := v.AsDouble(); ok {
		return int32(f), true
	}
	return 0, false
}

// parseMod parses $mod, validating the divisor and remainder independently
// so a non-numeric remainder is rejected rather than silently re-checking
// the divisor.
func (p *Parser) parseMod(field string, val bsondoc.Value) (*Node, error) {
	list, ok := val.AsList()
	if !ok {
		return nil, badValue("$mod needs an array")
	}

	var elems []bsondoc.Value
	for v := range list.Values() {
		elems = append(elems, v)
	}

	if len(elems) < 2 {
		return nil, badValue("$mod needs at least 2 elements, not enough elements")
	}
	if len(elems) > 2 {
		return nil, badValue("$mod needs only 2 elements, too many elements")
	}

	divisor, ok := asInt32(elems[0])
	if !ok {
		return nil, badValue("$mod divisor not a number")
	}
	remainder, ok := asInt32(elems[1])
	if !ok {
		return nil, badValue("$mod remainder not a number")
	}

	return &Node{Kind: KindMod, Field: field, Divisor: divisor, Remainder: remainder}, nil
}
