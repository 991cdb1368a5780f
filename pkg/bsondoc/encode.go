package bsondoc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"sync"
	"time"

	"github.com/goccy/go-reflect"
	"github.com/google/uuid"
)

const tagName = "bson"

var (
	// ErrNonStringKey is returned when Encode is asked to encode a map whose
	// key type is not string.
	ErrNonStringKey = errors.New("bsondoc: map key type must be string")
	// ErrUnsupportedType is returned when Encode encounters a Go value it has
	// no encoding for (channels, funcs, complex numbers).
	ErrUnsupportedType = errors.New("bsondoc: unsupported type")
)

var (
	reflectString = reflect.TypeOf(*new(string))
	regexType     = reflect.TypeOf(regexp.Regexp{})
	timeType      = reflect.TypeOf(time.Time{})
	uuidType      = reflect.TypeOf(uuid.UUID{})
)

var structCache sync.Map

type field struct {
	Name  string
	Index int
}

// Encode builds an Object from a native Go value: a map[string]any-like map,
// a struct, or nil (which produces an empty Object). Slices/arrays nested
// within become List values; regexp.Regexp, time.Time and uuid.UUID become
// Regex, Date and ObjectID values respectively.
func Encode(in any) (Object, error) {
	if in == nil {
		return emptyObject(), nil
	}
	v := reflect.ValueOf(in)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return emptyObject(), nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map, reflect.Struct:
		b, err := encodeObject(v)
		if err != nil {
			return nil, err
		}
		return Object(b), nil
	default:
		return nil, fmt.Errorf("%w: top-level value must be a map or struct, got %s", ErrUnsupportedType, v.Kind())
	}
}

func emptyObject() Object {
	b := make([]byte, headEnd)
	b[0] = byte(TagObject)
	return b
}

type entry struct {
	name string
	val  reflect.Value
}

func objectEntries(v reflect.Value) ([]entry, error) {
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key() != reflectString {
			return nil, ErrNonStringKey
		}
		keys := v.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			if a.String() < b.String() {
				return -1
			}
			if a.String() > b.String() {
				return 1
			}
			return 0
		})
		out := make([]entry, len(keys))
		for i, k := range keys {
			out[i] = entry{name: k.String(), val: v.MapIndex(k)}
		}
		return out, nil
	case reflect.Struct:
		fields := structFields(v.Type())
		out := make([]entry, len(fields))
		for i, f := range fields {
			out[i] = entry{name: f.Name, val: v.Field(f.Index)}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, v.Kind())
	}
}

func structFields(typ reflect.Type) []field {
	if f, ok := structCache.Load(typ); ok {
		return f.([]field)
	}
	n := typ.NumField()
	fields := make([]field, 0, n)
	for i := 0; i < n; i++ {
		sf := typ.Field(i)
		if sf.PkgPath != "" {
			continue
		}
		f := field{Name: sf.Name, Index: i}
		if tag, ok := sf.Tag.Lookup(tagName); ok && tag != "" {
			f.Name = tag
		}
		if f.Name != "-" {
			fields = append(fields, f)
		}
	}
	structCache.Store(typ, fields)
	return fields
}

func encodeObject(v reflect.Value) ([]byte, error) {
	entries, err := objectEntries(v)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, headEnd, headEnd+32*len(entries))
	buf[0] = byte(TagObject)
	for _, e := range entries {
		buf = writeText(buf, e.name)
		buf, err = writeValue(buf, e.val)
		if err != nil {
			return nil, err
		}
	}
	fillHeader(buf, len(entries))
	return buf, nil
}

func encodeList(v reflect.Value) ([]byte, error) {
	n := v.Len()
	buf := make([]byte, headEnd, headEnd+16*n)
	buf[0] = byte(TagList)
	var err error
	for i := 0; i < n; i++ {
		buf, err = writeValue(buf, v.Index(i))
		if err != nil {
			return nil, err
		}
	}
	fillHeader(buf, n)
	return buf, nil
}

func fillHeader(buf []byte, count int) {
	content := len(buf) - headEnd
	binary.LittleEndian.PutUint64(buf[offSize:sizeEnd], uint64(content))
	binary.LittleEndian.PutUint64(buf[offLen:offData], uint64(count))
}

func writeText(buf []byte, s string) []byte {
	buf = append(buf, byte(TagText))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(s)))
	return append(buf, s...)
}

func writeValue(buf []byte, v reflect.Value) ([]byte, error) {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return append(buf, byte(TagNull)), nil
		}
		v = v.Elem()
	}

	switch v.Type() {
	case regexType:
		re := v.Interface().(regexp.Regexp)
		return writeRegexLiteral(buf, re.String(), ""), nil
	case timeType:
		t := v.Interface().(time.Time)
		buf = append(buf, byte(TagDate))
		return binary.LittleEndian.AppendUint64(buf, uint64(t.UnixNano())), nil
	case uuidType:
		id := v.Interface().(uuid.UUID)
		buf = append(buf, byte(TagObjectID))
		return append(buf, id[:]...), nil
	}

	switch v.Kind() {
	case reflect.Bool:
		b := byte(0)
		if v.Bool() {
			b = 1
		}
		return append(buf, byte(TagBool), b), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		buf = append(buf, byte(TagInt32))
		return binary.LittleEndian.AppendUint32(buf, uint32(v.Int())), nil
	case reflect.Int64:
		buf = append(buf, byte(TagInt64))
		return binary.LittleEndian.AppendUint64(buf, uint64(v.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		buf = append(buf, byte(TagInt32))
		return binary.LittleEndian.AppendUint32(buf, uint32(v.Uint())), nil
	case reflect.Uint64:
		buf = append(buf, byte(TagInt64))
		return binary.LittleEndian.AppendUint64(buf, v.Uint()), nil
	case reflect.Float32, reflect.Float64:
		buf = append(buf, byte(TagDouble))
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(v.Float())), nil
	case reflect.String:
		return writeText(buf, v.String()), nil
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return append(buf, byte(TagNull)), nil
		}
		b, err := encodeList(v)
		if err != nil {
			return nil, err
		}
		return append(buf, b...), nil
	case reflect.Map:
		if v.IsNil() {
			return append(buf, byte(TagNull)), nil
		}
		b, err := encodeObject(v)
		if err != nil {
			return nil, err
		}
		return append(buf, b...), nil
	case reflect.Struct:
		b, err := encodeObject(v)
		if err != nil {
			return nil, err
		}
		return append(buf, b...), nil
	case reflect.Invalid:
		return append(buf, byte(TagNull)), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, v.Kind())
	}
}

func writeRegexLiteral(buf []byte, pattern, flags string) []byte {
	buf = append(buf, byte(TagRegex))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(pattern)))
	buf = append(buf, pattern...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(flags)))
	return append(buf, flags...)
}

// NewObjectID mints a fresh identifier, backed by a random UUID rather than a
// 12-byte Mongo-style ObjectID (no OID library is available in this stack).
func NewObjectID() [16]byte {
	return [16]byte(uuid.New())
}
