package model

import (
	"fmt"
	"sort"
	"time"
)

type ValueKind int

const (
	KindPrimitive ValueKind = iota
	KindArray
	KindObject
	KindBuffer
	KindDate
)

// Value is an inspectable value. Exactly one of the payload fields is set,
// selected by Kind.
type Value struct {
	Kind      ValueKind
	Primitive interface{}
	Items     []Value
	Fields    []Field
	Buffer    []byte
	Date      time.Time
}

type Field struct {
	Key   string
	Value Value
}

// Inspect converts decoded data (as produced by encoding/json or gjson) into
// a Value tree. Object fields are sorted by key.
func Inspect(v interface{}) Value {
	switch t := v.(type) {
	case nil, bool, string, float64, float32, int, int64, int32, uint, uint64:
		return Value{Kind: KindPrimitive, Primitive: t}
	case []byte:
		return Value{Kind: KindBuffer, Buffer: t}
	case time.Time:
		return Value{Kind: KindDate, Date: t}
	case []interface{}:
		res := Value{Kind: KindArray, Items: make([]Value, 0, len(t))}
		for _, item := range t {
			res.Items = append(res.Items, Inspect(item))
		}
		return res
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		res := Value{Kind: KindObject, Fields: make([]Field, 0, len(t))}
		for _, k := range keys {
			res.Fields = append(res.Fields, Field{Key: k, Value: Inspect(t[k])})
		}
		return res
	default:
		return Value{Kind: KindPrimitive, Primitive: fmt.Sprintf("%v", t)}
	}
}
