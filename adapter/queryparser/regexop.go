package queryparser

import "github.com/docquery/qparse/pkg/bsondoc"

// parseRegexDoc scans the whole sub-document context for $regex/$options and
// folds them into one Regex node, independent of which order they appear in
// (both are looked up directly rather than relying on iteration order).
func (p *Parser) parseRegexDoc(context bsondoc.Object, field string) (*Node, error) {
	regexVal, ok := context.GetOk("$regex")
	if !ok {
		return nil, badValue("$regex needs a value")
	}

	var pattern, flags string
	if pat, fl, ok := regexVal.AsRegex(); ok {
		pattern, flags = pat, fl
	} else if s, ok := regexVal.AsText(); ok {
		pattern = s
	} else {
		return nil, badValue("$regex needs a string or regex value")
	}

	if optVal, ok := context.GetOk("$options"); ok {
		s, ok := optVal.AsText()
		if !ok {
			return nil, badValue("$options needs a string")
		}
		flags = s
	}

	return &Node{Kind: KindRegex, Field: field, Pattern: pattern, Flags: flags}, nil
}
