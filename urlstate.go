package urlstate

import (
	"strings"

	"github.com/vango-dev/urlstate/internal/errors"
	"github.com/vango-dev/urlstate/pkg/codec"
	"github.com/vango-dev/urlstate/pkg/value"
)

// Engine is the URL-facing surface of a codec: the same serialization with
// percent escaping applied on the way out and tolerantly removed on the way
// in. Like the codec it wraps, an Engine is immutable and safe for
// concurrent use.
type Engine struct {
	c *codec.Codec
}

// New builds an Engine from codec options. It fails only on an invalid
// token configuration.
func New(opts ...codec.Option) (*Engine, error) {
	c, err := codec.New(opts...)
	if err != nil {
		return nil, err
	}
	return &Engine{c: c}, nil
}

// Codec exposes the underlying codec for callers that handle their own URL
// escaping.
func (e *Engine) Codec() *codec.Codec { return e.c }

// Stringify serializes a tree into one percent-escaped namespaced string,
// ready to be placed in a single query parameter value.
func (e *Engine) Stringify(v value.Value) (string, error) {
	if e.c.FieldsOnly() {
		return "", errors.New("U001")
	}
	return encodeComponent(e.c.EncodeText(v), false), nil
}

// Parse is the inverse of Stringify. The optional hint guides scalar typing;
// percent sequences are removed tolerantly, so malformed ones pass through
// as literal text instead of failing the parse.
func (e *Engine) Parse(text string, hint ...value.Value) (value.Value, error) {
	if e.c.FieldsOnly() {
		return value.Value{}, errors.New("U001")
	}
	return e.c.DecodeText(decodeComponent(text), oneHint(hint)), nil
}

// StringifyFields flattens a tree into standalone fields. Keys and values
// are returned unescaped; FormatQuery applies percent escaping when
// assembling a query string.
func (e *Engine) StringifyFields(v value.Value) []codec.Field {
	return e.c.EncodeFields(v)
}

// ParseFields assembles a tree from standalone fields, preserving their
// order.
func (e *Engine) ParseFields(fields []codec.Field, hint ...value.Value) value.Value {
	return e.c.DecodeFields(fields, oneHint(hint))
}

// ParseFieldMap assembles a tree from an unordered field map such as
// url.Values, ordering keys deterministically.
func (e *Engine) ParseFieldMap(m map[string][]string, hint ...value.Value) value.Value {
	return e.c.DecodeFieldMap(m, oneHint(hint))
}

// FormatQuery renders a tree as a complete percent-escaped query string
// (without the leading "?").
func (e *Engine) FormatQuery(v value.Value) string {
	fields := e.c.EncodeFields(v)
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(encodeComponent(f.Key, true))
		b.WriteByte('=')
		b.WriteString(encodeComponent(f.Value, false))
	}
	return b.String()
}

// ParseQuery is the inverse of FormatQuery. It takes a raw query string
// (with or without the leading "?") and parses it itself rather than going
// through url.Values, so field order survives and malformed percent
// sequences degrade to literal text.
func (e *Engine) ParseQuery(query string, hint ...value.Value) value.Value {
	query = strings.TrimPrefix(query, "?")
	var fields []codec.Field
	for _, part := range strings.Split(query, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		fields = append(fields, codec.Field{
			Key:   decodeComponent(k),
			Value: decodeComponent(v),
		})
	}
	return e.c.DecodeFields(fields, oneHint(hint))
}

// StringifyJSON is Stringify over a JSON document, preserving its key order.
func (e *Engine) StringifyJSON(data []byte) (string, error) {
	v, err := value.FromJSON(data)
	if err != nil {
		return "", err
	}
	return e.Stringify(v)
}

// ParseToJSON parses a namespaced string and re-renders the result as JSON.
func (e *Engine) ParseToJSON(text string, hint ...value.Value) ([]byte, error) {
	v, err := e.Parse(text, hint...)
	if err != nil {
		return nil, err
	}
	return value.ToJSON(v)
}

func oneHint(hint []value.Value) value.Value {
	if len(hint) > 0 {
		return hint[0]
	}
	return value.Undefined()
}
