package node

import (
	"maps"
	"time"

	goreflect "github.com/goccy/go-reflect"

	"github.com/vinicius-lino-figueiredo/docmap/domain"
)

// TagName is the struct tag read when building node fields from structs.
const TagName = "docmap"

var timeType = goreflect.TypeOf(time.Time{})

// valueFields converts a user value into raw document fields. Accepts nil,
// maps with string keys and structs; pointers and interfaces are followed.
func valueFields(value any) (map[string]any, error) {
	if value == nil {
		return map[string]any{}, nil
	}
	if m, ok := value.(map[string]any); ok {
		return normalizeMap(m), nil
	}

	rv := goreflect.ValueNoEscapeOf(value)
	k := rv.Kind()
	for k == goreflect.Interface || k == goreflect.Ptr {
		if rv.IsNil() {
			return map[string]any{}, nil
		}
		rv = rv.Elem()
		k = rv.Kind()
	}

	switch k {
	case goreflect.Map:
		if rv.Type().Key().Kind() != goreflect.String {
			return nil, domain.ErrValueType{Actual: value}
		}
		res := make(map[string]any, rv.Len())
		for _, mk := range rv.MapKeys() {
			res[mk.String()] = normalize(rv.MapIndex(mk).Interface())
		}
		return res, nil
	case goreflect.Struct:
		return structFields(rv)
	default:
		return nil, domain.ErrValueType{Actual: value}
	}
}

func structFields(rv goreflect.Value) (map[string]any, error) {
	rt := rv.Type()
	if rt == timeType {
		return nil, domain.ErrValueType{Actual: rv.Interface()}
	}
	res := make(map[string]any, rt.NumField())
	for i := range rt.NumField() {
		f := rt.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup(TagName); ok {
			if tag == "-" {
				continue
			}
			name = tag
		}
		res[name] = normalize(rv.Field(i).Interface())
	}
	return res, nil
}

func normalizeMap(m map[string]any) map[string]any {
	res := make(map[string]any, len(m))
	for k, v := range m {
		res[k] = normalize(v)
	}
	return res
}

// normalize recursively rewrites nested maps, structs and slices into the
// raw forms the store boundary understands: map[string]any and []any.
// Primitive values and times pass through untouched.
func normalize(value any) any {
	switch t := value.(type) {
	case nil, string, bool, time.Time, time.Duration,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return t
	case map[string]any:
		return normalizeMap(t)
	case []any:
		res := make([]any, len(t))
		for i, v := range t {
			res[i] = normalize(v)
		}
		return res
	}

	rv := goreflect.ValueNoEscapeOf(value)
	k := rv.Kind()
	for k == goreflect.Interface || k == goreflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
		k = rv.Kind()
	}

	switch k {
	case goreflect.Map, goreflect.Struct:
		fields, err := valueFields(rv.Interface())
		if err != nil {
			return rv.Interface()
		}
		return maps.Clone(fields)
	case goreflect.Slice, goreflect.Array:
		res := make([]any, rv.Len())
		for i := range rv.Len() {
			res[i] = normalize(rv.Index(i).Interface())
		}
		return res
	default:
		return rv.Interface()
	}
}
