package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// isoLayout matches the millisecond ISO form produced for times.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// FromJSON decodes a JSON document into a Value, preserving object key order.
// JSON strings that parse as RFC 3339 timestamps stay strings; callers that
// want times construct them explicitly.
func FromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err != nil {
		return Value{}, err
	}
	// Trailing garbage after the document is an error.
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, fmt.Errorf("value: trailing data after JSON document")
	}
	return v, nil
}

func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeJSONToken(dec, tok)
}

func decodeJSONToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, err
		}
		return Number(f), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("value: non-string object key %v", keyTok)
				}
				v, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil { // closing brace
				return Value{}, err
			}
			return ObjectValue(obj), nil
		case '[':
			elems := []Value{}
			for dec.More() {
				v, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				elems = append(elems, v)
			}
			if _, err := dec.Token(); err != nil { // closing bracket
				return Value{}, err
			}
			return Array(elems...), nil
		}
	}
	return Value{}, fmt.Errorf("value: unexpected JSON token %v", tok)
}

// ToJSON encodes a Value as JSON, preserving object key order. Times become
// ISO strings; undefined becomes null inside arrays and is skipped inside
// objects, mirroring how unrepresentable entries are dropped elsewhere.
func ToJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJSON(buf *bytes.Buffer, v Value) error {
	switch v.Kind() {
	case KindUndefined, KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.Bool()))
	case KindNumber:
		b, err := json.Marshal(v.Number())
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindString:
		b, err := json.Marshal(v.Str())
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindTime:
		b, err := json.Marshal(v.Time().UTC().Format(isoLayout))
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.Array() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		first := true
		for i := 0; i < v.Object().Len(); i++ {
			k, e := v.Object().At(i)
			if e.IsUndefined() {
				continue
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := encodeJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// ParseISO parses the ISO layouts the codec understands, strictly.
func ParseISO(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, isoLayout, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
