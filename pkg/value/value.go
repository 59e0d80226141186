// Package value defines the closed set of value shapes the urlstate codec
// understands: null, undefined, booleans, numbers, strings, times, arrays and
// insertion-ordered objects. It is the codec's data model; it performs no
// encoding itself.
package value

import (
	"math"
	"time"
)

// Kind identifies the shape of a Value.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindTime
	KindArray
	KindObject
)

// String returns the kind name, for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is a tagged union over the representable shapes. The zero Value is
// Undefined. Values are immutable except through the Object they may carry.
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  string
	ts   time.Time
	arr  []Value
	obj  *Object
}

// Undefined returns the undefined value.
func Undefined() Value { return Value{} }

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value. NaN is not representable; callers must
// treat NaN-producing parses as failures before reaching this constructor.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Time returns a time value. Equality is by Unix millisecond timestamp.
func Time(t time.Time) Value { return Value{kind: KindTime, ts: t} }

// Array returns an array value over the given elements. Order is significant.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindArray, arr: elems}
}

// ObjectValue wraps an Object as a Value. A nil Object yields an empty object.
func ObjectValue(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, obj: o}
}

// Kind reports the value's shape.
func (v Value) Kind() Kind { return v.kind }

// IsUndefined reports whether the value is undefined.
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean content. Valid only for KindBool.
func (v Value) Bool() bool { return v.b }

// Number returns the numeric content. Valid only for KindNumber.
func (v Value) Number() float64 { return v.num }

// Str returns the string content. Valid only for KindString.
func (v Value) Str() string { return v.str }

// Time returns the time content. Valid only for KindTime.
func (v Value) Time() time.Time { return v.ts }

// Array returns the element slice. Valid only for KindArray. The slice is
// shared, not copied.
func (v Value) Array() []Value { return v.arr }

// Object returns the ordered object. Valid only for KindObject.
func (v Value) Object() *Object { return v.obj }

// Equal reports deep equality. Object key order is ignored; array order is
// significant; times compare by Unix millisecond timestamp.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindUndefined, KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num || (math.IsNaN(a.num) && math.IsNaN(b.num))
	case KindString:
		return a.str == b.str
	case KindTime:
		return a.ts.UnixMilli() == b.ts.UnixMilli()
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		for _, k := range a.obj.Keys() {
			bv, ok := b.obj.Get(k)
			if !ok {
				return false
			}
			av, _ := a.obj.Get(k)
			if !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Object is a string-keyed map that remembers insertion order. Key order is
// preserved on round-trip but is irrelevant to Equal.
type Object struct {
	keys []string
	idx  map[string]int
	vals []Value
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{idx: make(map[string]int)}
}

// Set inserts or replaces the value for key. A new key is appended to the
// insertion order; replacing keeps the original position.
func (o *Object) Set(key string, v Value) {
	if i, ok := o.idx[key]; ok {
		o.vals[i] = v
		return
	}
	o.idx[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, v)
}

// Get returns the value for key and whether it is present.
func (o *Object) Get(key string) (Value, bool) {
	if i, ok := o.idx[key]; ok {
		return o.vals[i], true
	}
	return Value{}, false
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.idx[key]
	return ok
}

// Len returns the number of entries.
func (o *Object) Len() int { return len(o.keys) }

// Keys returns the keys in insertion order. The slice is shared, not copied.
func (o *Object) Keys() []string { return o.keys }

// At returns the i-th key and value in insertion order.
func (o *Object) At(i int) (string, Value) { return o.keys[i], o.vals[i] }
