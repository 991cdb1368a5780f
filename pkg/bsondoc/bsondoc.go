// Package bsondoc implements a small BSON-like binary document codec: a
// type-tagged, length-prefixed encoding with ordered field iteration. It is
// the wire format the query parser assumes underneath any document it walks.
package bsondoc

import (
	"encoding/binary"
	"math"
)

// Header layout shared by Object and List: [type:1][contentLen:8][count:8].
const (
	typBytes   = 1
	sizeOfSize = 8
	sizeOfLen  = 8

	offSize = typBytes
	sizeEnd = offSize + sizeOfSize
	offLen  = sizeEnd
	offData = offLen + sizeOfLen
	headEnd = offData
)

// Type identifies the shape of the bytes that follow it.
type Type byte

// Type tags. TagObject/TagList precede a length-prefixed, ordered sequence of
// entries; the rest are self-contained scalars.
const (
	TagObject Type = iota
	TagList
	TagText
	TagInt32
	TagInt64
	TagDouble
	TagDate
	TagRegex
	TagBool
	TagNull
	TagObjectID
	TagUndefined
)

// Value is a single typed, self-delimiting element: its own type tag plus
// however many following bytes its type requires.
type Value []byte

// Type returns the tag of v, or TagUndefined if v is too short to hold one.
func (v Value) Type() Type {
	if len(v) == 0 {
		return TagUndefined
	}
	return min(Type(v[0]), TagUndefined)
}

// IsNull reports whether v holds the null literal.
func (v Value) IsNull() bool { return v.Type() == TagNull }

func fixedLen(t Type) (int, bool) {
	switch t {
	case TagNull, TagUndefined:
		return 1, true
	case TagBool:
		return 2, true
	case TagInt32:
		return 5, true
	case TagInt64, TagDouble, TagDate:
		return 9, true
	case TagObjectID:
		return 17, true
	default:
		return 0, false
	}
}

// skipVal returns the prefix of b holding exactly one self-delimiting value,
// and whether b was well-formed enough to determine it.
func skipVal(b []byte) (Value, bool) {
	if len(b) == 0 {
		return nil, false
	}
	t := Type(b[0])
	if n, ok := fixedLen(t); ok {
		if len(b) < n {
			return nil, false
		}
		return Value(b[:n]), true
	}
	switch t {
	case TagObject, TagList:
		if len(b) < headEnd {
			return nil, false
		}
		content := binary.LittleEndian.Uint64(b[offSize:sizeEnd])
		end := headEnd + content
		if end > uint64(len(b)) {
			return nil, false
		}
		return Value(b[:end]), true
	case TagText:
		if len(b) < sizeEnd {
			return nil, false
		}
		n := binary.LittleEndian.Uint64(b[offSize:sizeEnd])
		end := sizeEnd + n
		if end > uint64(len(b)) {
			return nil, false
		}
		return Value(b[:end]), true
	case TagRegex:
		if len(b) < sizeEnd {
			return nil, false
		}
		patLen := binary.LittleEndian.Uint64(b[offSize:sizeEnd])
		flagsLenOff := sizeEnd + patLen
		if flagsLenOff+sizeOfSize > uint64(len(b)) {
			return nil, false
		}
		flagsLen := binary.LittleEndian.Uint64(b[flagsLenOff : flagsLenOff+sizeOfSize])
		end := flagsLenOff + sizeOfSize + flagsLen
		if end > uint64(len(b)) {
			return nil, false
		}
		return Value(b[:end]), true
	default:
		return nil, false
	}
}

// asText decodes a Text value's payload.
func (v Value) asText() (string, bool) {
	if v.Type() != TagText || len(v) < sizeEnd {
		return "", false
	}
	n := binary.LittleEndian.Uint64(v[offSize:sizeEnd])
	end := sizeEnd + n
	if end > uint64(len(v)) {
		return "", false
	}
	return string(v[sizeEnd:end]), true
}

// AsText returns the string payload of a Text value.
func (v Value) AsText() (string, bool) { return v.asText() }

// AsInt32 returns the payload of an Int32 value.
func (v Value) AsInt32() (int32, bool) {
	if v.Type() != TagInt32 || len(v) < 5 {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint32(v[1:5])), true
}

// AsInt64 returns the payload of an Int64 value.
func (v Value) AsInt64() (int64, bool) {
	if v.Type() != TagInt64 || len(v) < 9 {
		return 0, false
	}
	return int64(binary.LittleEndian.Uint64(v[1:9])), true
}

// AsDouble returns the payload of a Double value.
func (v Value) AsDouble() (float64, bool) {
	if v.Type() != TagDouble || len(v) < 9 {
		return 0, false
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(v[1:9])), true
}

// AsBool returns the payload of a Bool value.
func (v Value) AsBool() (bool, bool) {
	if v.Type() != TagBool || len(v) < 2 {
		return false, false
	}
	return v[1] != 0, true
}

// AsDate returns the payload of a Date value as unix nanoseconds.
func (v Value) AsDate() (int64, bool) {
	if v.Type() != TagDate || len(v) < 9 {
		return 0, false
	}
	return int64(binary.LittleEndian.Uint64(v[1:9])), true
}

// AsObjectID returns the raw 16-byte payload of an ObjectID value.
func (v Value) AsObjectID() ([16]byte, bool) {
	var out [16]byte
	if v.Type() != TagObjectID || len(v) < 17 {
		return out, false
	}
	copy(out[:], v[1:17])
	return out, true
}

// AsRegex returns the pattern and flags payload of a Regex value.
func (v Value) AsRegex() (pattern, flags string, ok bool) {
	if v.Type() != TagRegex || len(v) < sizeEnd {
		return "", "", false
	}
	patLen := binary.LittleEndian.Uint64(v[offSize:sizeEnd])
	flagsLenOff := sizeEnd + patLen
	if flagsLenOff+sizeOfSize > uint64(len(v)) {
		return "", "", false
	}
	flagsLen := binary.LittleEndian.Uint64(v[flagsLenOff : flagsLenOff+sizeOfSize])
	end := flagsLenOff + sizeOfSize + flagsLen
	if end > uint64(len(v)) {
		return "", "", false
	}
	return string(v[sizeEnd:flagsLenOff]), string(v[flagsLenOff+sizeOfSize : end]), true
}

// AsObject reinterprets v as an Object, if it is one.
func (v Value) AsObject() (Object, bool) {
	if v.Type() != TagObject {
		return nil, false
	}
	return Object(v), true
}

// AsList reinterprets v as a List, if it is one.
func (v Value) AsList() (List, bool) {
	if v.Type() != TagList {
		return nil, false
	}
	return List(v), true
}
