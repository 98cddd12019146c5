package queue

import (
	"encoding"
	"encoding/json"
	"reflect"
)

var (
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// Marshal encodes a payload as JSON. Unlike json.Marshal a reference cycle does not fail;
// a pointer, map or slice already being encoded further up the same branch is written as null.
//
// Values shared between branches (not cycles) are written in full each time.
func Marshal(in interface{}) ([]byte, error) {
	if in == nil {
		return []byte("null"), nil
	}
	if raw, ok := in.(json.RawMessage); ok {
		if len(raw) == 0 {
			return []byte("null"), nil
		}
		return raw, nil
	}
	c := &cycleBreaker{path: map[visit]bool{}}
	return json.Marshal(c.copy(reflect.ValueOf(in)).Interface())
}

type visit struct {
	typ reflect.Type
	ptr uintptr
}

// cycleBreaker deep copies a value, zeroing any reference that points back to something on
// the current path.
type cycleBreaker struct {
	path map[visit]bool
}

func (c *cycleBreaker) copy(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}
	if marshalsItself(v.Type()) {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		key := visit{v.Type(), v.Pointer()}
		if c.path[key] {
			return reflect.Zero(v.Type())
		}
		c.path[key] = true
		defer delete(c.path, key)

		out := reflect.New(v.Type().Elem())
		out.Elem().Set(c.copy(v.Elem()))
		return out

	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		inner := c.copy(v.Elem())
		if inner.IsValid() {
			out.Set(inner)
		}
		return out

	case reflect.Map:
		if v.IsNil() {
			return v
		}
		key := visit{v.Type(), v.Pointer()}
		if c.path[key] {
			return reflect.Zero(v.Type())
		}
		c.path[key] = true
		defer delete(c.path, key)

		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), c.copy(iter.Value()))
		}
		return out

	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 || v.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		key := visit{v.Type(), v.Pointer()}
		if c.path[key] {
			return reflect.Zero(v.Type())
		}
		c.path[key] = true
		defer delete(c.path, key)

		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(c.copy(v.Index(i)))
		}
		return out

	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(c.copy(v.Index(i)))
		}
		return out

	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			// unexported fields aren't encoded anyway
			if !out.Field(i).CanSet() {
				continue
			}
			out.Field(i).Set(c.copy(v.Field(i)))
		}
		return out

	default:
		return v
	}
}

// marshalsItself is true for types that control their own encoding (time.Time, json.RawMessage ..)
func marshalsItself(t reflect.Type) bool {
	if t.Kind() == reflect.Interface {
		return false
	}
	return t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) ||
		reflect.PointerTo(t).Implements(jsonMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType)
}
