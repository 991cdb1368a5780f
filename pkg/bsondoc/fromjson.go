package bsondoc

import (
	"errors"
	"strconv"
	"strings"
)

// FromJSON decodes a JSON document into an Object, going through the native
// Go value representation (map[string]any / []any / string / int64 / float64
// / bool / nil) and then Encode. It is the CLI's on-ramp for query documents
// supplied as plain JSON text; it has no notion of regex literals, since JSON
// has none — regex predicates must be spelled as {$regex: "...", $options:
// "..."} the way the query language itself expects.
func FromJSON(data []byte) (Object, error) {
	p := &jsonParser{data: data, n: len(data)}
	p.skip()
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skip()
	if p.i != p.n {
		return nil, errors.New("bsondoc: trailing data after JSON document")
	}
	return Encode(v)
}

type jsonParser struct {
	data []byte
	i, n int
}

func (p *jsonParser) skip() {
	for p.i < p.n {
		switch p.data[p.i] {
		case ' ', '\t', '\n', '\r':
			p.i++
		default:
			return
		}
	}
}

func (p *jsonParser) value() (any, error) {
	if p.i >= p.n {
		return nil, errors.New("bsondoc: unexpected end of JSON input")
	}
	switch p.data[p.i] {
	case '{':
		return p.obj()
	case '[':
		return p.arr()
	case '"':
		return p.str()
	case 't':
		return p.expect("true", true)
	case 'f':
		return p.expect("false", false)
	case 'n':
		return p.expect("null", nil)
	default:
		return p.num()
	}
}

func (p *jsonParser) obj() (map[string]any, error) {
	p.i++
	p.skip()
	m := make(map[string]any)
	if p.i < p.n && p.data[p.i] == '}' {
		p.i++
		return m, nil
	}
	for {
		p.skip()
		key, err := p.str()
		if err != nil {
			return nil, err
		}
		p.skip()
		if p.i >= p.n || p.data[p.i] != ':' {
			return nil, errors.New("bsondoc: expected ':' in JSON object")
		}
		p.i++
		p.skip()
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		m[key] = val
		p.skip()
		if p.i >= p.n {
			return nil, errors.New("bsondoc: unexpected end of JSON object")
		}
		if p.data[p.i] == '}' {
			p.i++
			break
		}
		if p.data[p.i] != ',' {
			return nil, errors.New("bsondoc: expected ',' in JSON object")
		}
		p.i++
	}
	return m, nil
}

func (p *jsonParser) arr() ([]any, error) {
	p.i++
	p.skip()
	out := []any{}
	if p.i < p.n && p.data[p.i] == ']' {
		p.i++
		return out, nil
	}
	for {
		p.skip()
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, val)
		p.skip()
		if p.i >= p.n {
			return nil, errors.New("bsondoc: unexpected end of JSON array")
		}
		if p.data[p.i] == ']' {
			p.i++
			break
		}
		if p.data[p.i] != ',' {
			return nil, errors.New("bsondoc: expected ',' in JSON array")
		}
		p.i++
	}
	return out, nil
}

func (p *jsonParser) str() (string, error) {
	if p.i >= p.n || p.data[p.i] != '"' {
		return "", errors.New("bsondoc: expected JSON string")
	}
	p.i++
	start := p.i
	var out []byte
	for p.i < p.n {
		c := p.data[p.i]
		if c == '"' {
			out = append(out, p.data[start:p.i]...)
			p.i++
			return string(out), nil
		}
		if c == '\\' {
			out = append(out, p.data[start:p.i]...)
			p.i++
			if p.i >= p.n {
				return "", errors.New("bsondoc: unterminated escape in JSON string")
			}
			switch p.data[p.i] {
			case '"', '\\', '/':
				out = append(out, p.data[p.i])
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			default:
				return "", errors.New("bsondoc: unsupported JSON escape")
			}
			p.i++
			start = p.i
		} else {
			p.i++
		}
	}
	return "", errors.New("bsondoc: unterminated JSON string")
}

func (p *jsonParser) num() (any, error) {
	start := p.i
	for p.i < p.n {
		c := p.data[p.i]
		if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E' {
			p.i++
		} else {
			break
		}
	}
	s := string(p.data[start:p.i])
	if s == "" {
		return nil, errors.New("bsondoc: expected JSON value")
	}
	if strings.ContainsAny(s, ".eE") {
		return strconv.ParseFloat(s, 64)
	}
	return strconv.ParseInt(s, 10, 64)
}

func (p *jsonParser) expect(lit string, val any) (any, error) {
	end := p.i + len(lit)
	if end > p.n || string(p.data[p.i:end]) != lit {
		return nil, errors.New("bsondoc: invalid JSON literal")
	}
	p.i = end
	return val, nil
}
