// Package queryparser translates a bsondoc query document into a typed
// match-expression tree, enforcing the query language's grammar along the
// way. It does not evaluate the tree against data; evaluation is a separate
// concern left to callers.
package queryparser

import "github.com/docquery/qparse/pkg/bsondoc"

const defaultMaxDepth = 100

// Parser holds the grammar configuration (depth limit, DBRef mode) and the
// three pluggable callback sinks for $where/$text/geo. It is safe for
// concurrent use once constructed: Parse never mutates the Parser.
type Parser struct {
	maxDepth    int
	dbRefStrict bool
	geo         GeoParser
	text        TextParser
	where       WhereParser
}

// NewParser returns a Parser configured with the given options. Unconfigured
// callback slots fail with a descriptive error rather than panicking.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		maxDepth:    defaultMaxDepth,
		dbRefStrict: true,
		geo:         defaultGeoParser,
		text:        defaultTextParser,
		where:       defaultWhereParser,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse translates a full query document into a match-expression tree.
func (p *Parser) Parse(doc bsondoc.Object) (*Node, error) {
	return p.parseDoc(doc, 0)
}

func (p *Parser) parseDoc(doc bsondoc.Object, depth int) (*Node, error) {
	if depth > p.maxDepth {
		return nil, badValue("exceeded maximum query tree depth (%d)", p.maxDepth)
	}

	and := &Node{Kind: KindAnd}
	for name, val := range doc.Entries() {
		node, err := p.parseElement(name, val, depth)
		if err != nil {
			return nil, err
		}
		if node != nil {
			and.Children = append(and.Children, node)
		}
	}
	return flattenSingle(and), nil
}

func (p *Parser) parseElement(name string, val bsondoc.Value, depth int) (*Node, error) {
	if name != "" && name[0] == '$' {
		return p.parseTopLevelOperator(name, val, depth)
	}
	return p.parseFieldElement(name, val, depth)
}

func (p *Parser) parseTopLevelOperator(name string, val bsondoc.Value, depth int) (*Node, error) {
	op := name[1:]
	switch op {
	case "or":
		return p.parseLogicList(KindOr, name, val, depth)
	case "and":
		return p.parseLogicList(KindAnd, name, val, depth)
	case "nor":
		return p.parseLogicList(KindNor, name, val, depth)
	case "atomic", "isolated":
		if depth != 0 {
			return nil, badValue("$%s is only allowed at the top level of the query", op)
		}
		truthy, err := truthyValue(op, val)
		if err != nil {
			return nil, err
		}
		if !truthy {
			return nil, nil
		}
		return &Node{Kind: KindAtomic}, nil
	case "where":
		payload, err := p.where(val)
		if err != nil {
			return nil, asQPError(err)
		}
		return &Node{Kind: KindWhere, Opaque: payload}, nil
	case "text":
		if _, ok := val.AsObject(); !ok {
			return nil, badValue("$text needs an object")
		}
		payload, err := p.text(val)
		if err != nil {
			return nil, asQPError(err)
		}
		return &Node{Kind: KindText, Opaque: payload}, nil
	case "comment":
		return nil, nil
	case "ref", "id", "db":
		return leaf(KindEq, name, val), nil
	default:
		return nil, badValue("unknown top level operator: $%s", op)
	}
}

func (p *Parser) parseFieldElement(field string, val bsondoc.Value, depth int) (*Node, error) {
	if obj, ok := val.AsObject(); ok && isExpressionDoc(obj) && !p.isDBRef(obj) {
		parent := &Node{Kind: KindAnd}
		if err := p.parseSub(field, obj, parent, depth); err != nil {
			return nil, err
		}
		return flattenSingle(parent), nil
	}
	if pattern, flags, ok := val.AsRegex(); ok {
		return &Node{Kind: KindRegex, Field: field, Pattern: pattern, Flags: flags}, nil
	}
	return leaf(KindEq, field, val), nil
}

// isExpressionDoc reports whether obj's first field is an operator name.
func isExpressionDoc(obj bsondoc.Object) bool {
	for k := range obj.Entries() {
		return k != "" && k[0] == '$'
	}
	return false
}

// isDBRef reports whether obj should be treated as a DBRef literal rather
// than an expression document. Strict mode (the default) requires $ref and
// $id both present; permissive mode accepts any of $ref, $id, $db. $elemMatch
// always uses permissive detection regardless of this setting; see
// isDBRefPermissive.
func (p *Parser) isDBRef(obj bsondoc.Object) bool {
	if p.dbRefStrict {
		_, hasRef := obj.GetOk("$ref")
		_, hasID := obj.GetOk("$id")
		return hasRef && hasID
	}
	return isDBRefPermissive(obj)
}

// isDBRefPermissive treats obj as a DBRef literal if it carries any of
// $ref, $id, $db, independent of the parser's configured strictness.
func isDBRefPermissive(obj bsondoc.Object) bool {
	_, hasRef := obj.GetOk("$ref")
	_, hasID := obj.GetOk("$id")
	_, hasDB := obj.GetOk("$db")
	return hasRef || hasID || hasDB
}

func truthyValue(op string, val bsondoc.Value) (bool, error) {
	if b, ok := val.AsBool(); ok {
		return b, nil
	}
	if n, ok := val.AsInt32(); ok {
		return n != 0, nil
	}
	if n, ok := val.AsInt64(); ok {
		return n != 0, nil
	}
	if f, ok := val.AsDouble(); ok {
		return f != 0, nil
	}
	if val.IsNull() {
		return false, nil
	}
	return false, badValue("$%s needs a boolean-ish value", op)
}

func asQPError(err error) error {
	if qe, ok := err.(*Error); ok {
		return qe
	}
	return wrapCallback("callback", err)
}
