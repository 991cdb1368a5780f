package queryparser

import "github.com/docquery/qparse/pkg/bsondoc"

// GeoParser handles the geospatial operator family ($near, $nearSphere,
// $geoNear, $within, $geoIntersects). It receives the field the operator
// block is attached to (empty inside an $elemMatch value-form block), the
// operator name that triggered the dispatch, and the raw sub-document, and
// returns the opaque payload for a KindGeo node.
type GeoParser func(field, op string, raw bsondoc.Value) (any, error)

// TextParser handles $text. It receives the raw $text sub-document and
// returns the opaque payload for a KindText node.
type TextParser func(raw bsondoc.Value) (any, error)

// WhereParser handles $where. It receives the raw element value (typically
// a string holding a script, or an opaque callable) and returns the opaque
// payload for a KindWhere node.
type WhereParser func(raw bsondoc.Value) (any, error)

func defaultGeoParser(string, string, bsondoc.Value) (any, error) {
	return nil, badValue("geo not linked in")
}

func defaultTextParser(bsondoc.Value) (any, error) {
	return nil, badValue("$text not linked in")
}

func defaultWhereParser(bsondoc.Value) (any, error) {
	return nil, noWhereParseContext()
}
