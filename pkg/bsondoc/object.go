package bsondoc

import (
	"encoding/binary"
	"iter"
)

// Object is a length-prefixed, ordered sequence of (key, Value) pairs.
type Object []byte

// content returns the bytes between the header and the end of o's encoded
// entries.
func (o Object) content() []byte {
	if len(o) < headEnd || Type(o[0]) != TagObject {
		return nil
	}
	n := binary.LittleEndian.Uint64(o[offSize:sizeEnd])
	end := headEnd + n
	if end > uint64(len(o)) {
		return nil
	}
	return o[headEnd:end]
}

// Count returns the number of entries in o, or -1 if o is malformed.
func (o Object) Count() int {
	if len(o) < headEnd || Type(o[0]) != TagObject {
		return -1
	}
	return int(binary.LittleEndian.Uint64(o[offLen:offData]))
}

// Get returns the value stored under key, or an Undefined value if absent or
// malformed.
func (o Object) Get(key string) Value {
	v, _ := o.GetOk(key)
	return v
}

// GetOk returns the value stored under key and whether it was found.
func (o Object) GetOk(key string) (Value, bool) {
	b := o.content()
	if b == nil {
		return nil, false
	}
	for len(b) > 0 {
		k, val, rest, ok := readEntry(b)
		if !ok {
			return nil, false
		}
		if k == key {
			return val, true
		}
		b = rest
	}
	return nil, false
}

// Has reports whether key is present in o.
func (o Object) Has(key string) bool {
	_, ok := o.GetOk(key)
	return ok
}

// Entries iterates o's (key, Value) pairs in encoded order.
func (o Object) Entries() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		b := o.content()
		for len(b) > 0 {
			k, val, rest, ok := readEntry(b)
			if !ok {
				return
			}
			if !yield(k, val) {
				return
			}
			b = rest
		}
	}
}

// readEntry decodes one (Text-key, Value) pair from the front of b.
func readEntry(b []byte) (key string, val Value, rest []byte, ok bool) {
	keyVal, ok := skipVal(b)
	if !ok || keyVal.Type() != TagText {
		return "", nil, nil, false
	}
	key, ok = keyVal.asText()
	if !ok {
		return "", nil, nil, false
	}
	b = b[len(keyVal):]
	val, ok = skipVal(b)
	if !ok {
		return "", nil, nil, false
	}
	return key, val, b[len(val):], true
}

// List is a length-prefixed, ordered sequence of Values.
type List []byte

func (l List) content() []byte {
	if len(l) < headEnd || Type(l[0]) != TagList {
		return nil
	}
	n := binary.LittleEndian.Uint64(l[offSize:sizeEnd])
	end := headEnd + n
	if end > uint64(len(l)) {
		return nil
	}
	return l[headEnd:end]
}

// Count returns the number of elements in l, or -1 if l is malformed.
func (l List) Count() int {
	if len(l) < headEnd || Type(l[0]) != TagList {
		return -1
	}
	return int(binary.LittleEndian.Uint64(l[offLen:offData]))
}

// Values iterates l's elements in encoded order.
func (l List) Values() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		b := l.content()
		for len(b) > 0 {
			val, ok := skipVal(b)
			if !ok {
				return
			}
			if !yield(val) {
				return
			}
			b = b[len(val):]
		}
	}
}

// Index returns the idx-th element of l, or nil if out of bounds.
func (l List) Index(idx int) Value {
	if idx < 0 {
		return nil
	}
	n := 0
	for v := range l.Values() {
		if n == idx {
			return v
		}
		n++
	}
	return nil
}
