package codec

import (
	"reflect"
	"testing"
	"time"

	"github.com/vango-dev/urlstate/pkg/value"
)

func TestEncodeFields(t *testing.T) {
	c := mustCodec(t)

	tests := []struct {
		name string
		in   value.Value
		want []Field
	}{
		{
			"readme shape",
			obj("count", value.Number(5), "nested", obj("hello", value.String("World"))),
			[]Field{{"count", "5"}, {"nested.hello", "World"}},
		},
		{
			"repeated keys for scalar arrays",
			obj("tags", value.Array(value.String("go"), value.String("web"))),
			[]Field{{"tags", "go"}, {"tags", "web"}},
		},
		{
			"indexed paths for complex arrays",
			obj("items", value.Array(obj("n", value.Number(1)), obj("n", value.Number(2)))),
			[]Field{{"items.0.n", "1"}, {"items.1.n", "2"}},
		},
		{
			"undefined members and empty arrays drop",
			obj("gone", value.Undefined(), "tags", value.Array(), "keep", value.Number(1)),
			[]Field{{"keep", "1"}},
		},
		{
			"sentinels and dates",
			obj("n", value.Null(), "at", value.Time(time.UnixMilli(1700000000000).UTC())),
			[]Field{{"n", "null"}, {"at", "D1700000000000"}},
		},
		{
			"dotted key is escaped",
			obj("a.b", value.Number(1)),
			[]Field{{"a/.b", "1"}},
		},
		{
			"all-digit key is guarded",
			obj("2024", value.String("x")),
			[]Field{{"/2024", "x"}},
		},
		{
			"guard for sentinel-looking string",
			obj("s", value.String("null")),
			[]Field{{"s", "/null"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.EncodeFields(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("EncodeFields:\n got %v\nwant %v", got, tt.want)
			}
		})
	}
}

func TestFieldsRoundTrip(t *testing.T) {
	c := mustCodec(t)
	ts := time.UnixMilli(1700000000000).UTC()

	values := []struct {
		name string
		v    value.Value
		hint value.Value
	}{
		{"flat", obj("a", value.Number(1), "b", value.String("two")), value.Undefined()},
		{"nested", obj("a", obj("b", obj("c", value.String("deep")))), value.Undefined()},
		{"scalar array", obj("t", value.Array(value.String("x"), value.String("y"))), value.Undefined()},
		{"complex array", obj("t", value.Array(obj("n", value.Number(1)), obj("n", value.Number(2)))), value.Undefined()},
		{
			"nested arrays",
			obj("t", value.Array(value.Array(value.Number(1), value.Number(2)), value.Array(value.Number(3)))),
			obj("t", value.Array(value.Array(value.Number(0)))),
		},
		{"dotted and digit keys", obj("a.b", value.Number(1), "7", value.String("x")), value.Undefined()},
		{"sentinel strings", obj("s", value.String("null"), "u", value.String("undefined")), value.Undefined()},
		{"dates", obj("at", value.Time(ts)), value.Undefined()},
		{
			"single element array needs hint",
			obj("t", value.Array(value.String("only"))),
			obj("t", value.Array(value.String(""))),
		},
	}
	for _, tt := range values {
		t.Run(tt.name, func(t *testing.T) {
			fields := c.EncodeFields(tt.v)
			got := c.DecodeFields(fields, tt.hint)
			if !value.Equal(got, tt.v) {
				t.Errorf("round trip through %v:\n got %v\nwant %v", fields, got, tt.v)
			}
		})
	}
}

func TestFieldsBracketIndexing(t *testing.T) {
	c := mustCodec(t, WithIndexStyle(IndexBracket))

	state := obj("items", value.Array(obj("n", value.Number(1)), obj("n", value.Number(2))))
	fields := c.EncodeFields(state)
	want := []Field{{"items[0].n", "1"}, {"items[1].n", "2"}}
	if !reflect.DeepEqual(fields, want) {
		t.Fatalf("EncodeFields: got %v, want %v", fields, want)
	}
	got := c.DecodeFields(fields, value.Undefined())
	if !value.Equal(got, state) {
		t.Errorf("decode: got %v, want %v", got, state)
	}

	// Under bracket indexing, all-digit keys stay object keys untouched.
	digits := obj("2024", value.String("x"))
	f2 := c.EncodeFields(digits)
	if !reflect.DeepEqual(f2, []Field{{"2024", "x"}}) {
		t.Fatalf("digit key: got %v", f2)
	}
	if got := c.DecodeFields(f2, value.Undefined()); !value.Equal(got, digits) {
		t.Errorf("digit key decode: got %v, want %v", got, digits)
	}
}

func TestFieldsJoinedArrays(t *testing.T) {
	c := mustCodec(t, WithArraySeparator("|"))

	state := obj("tags", value.Array(value.String("go"), value.String("a|b")))
	fields := c.EncodeFields(state)
	want := []Field{{"tags", "@go|a/|b;"}}
	if !reflect.DeepEqual(fields, want) {
		t.Fatalf("EncodeFields: got %v, want %v", fields, want)
	}
	got := c.DecodeFields(fields, value.Undefined())
	if !value.Equal(got, state) {
		t.Errorf("decode: got %v, want %v", got, state)
	}

	// Joined layout can say "empty array" without a literal.
	empty := obj("tags", value.Array())
	f2 := c.EncodeFields(empty)
	if !reflect.DeepEqual(f2, []Field{{"tags", "@;"}}) {
		t.Fatalf("empty: got %v", f2)
	}
	if got := c.DecodeFields(f2, value.Undefined()); !value.Equal(got, empty) {
		t.Errorf("empty decode: got %v, want %v", got, empty)
	}
}

func TestFieldsEmptyArrayLiteral(t *testing.T) {
	c := mustCodec(t, WithEmptyArrayLiteral("EMPTY"))

	state := obj("tags", value.Array())
	fields := c.EncodeFields(state)
	if !reflect.DeepEqual(fields, []Field{{"tags", "EMPTY"}}) {
		t.Fatalf("EncodeFields: got %v", fields)
	}
	if got := c.DecodeFields(fields, value.Undefined()); !value.Equal(got, state) {
		t.Errorf("decode: got %v, want %v", got, state)
	}

	// A real string equal to the literal is guarded on the way out.
	s := obj("tags", value.String("EMPTY"))
	f2 := c.EncodeFields(s)
	if !reflect.DeepEqual(f2, []Field{{"tags", "/EMPTY"}}) {
		t.Fatalf("guarded: got %v", f2)
	}
	if got := c.DecodeFields(f2, value.Undefined()); !value.Equal(got, s) {
		t.Errorf("guarded decode: got %v, want %v", got, s)
	}
}

func TestDecodeFieldsAssembly(t *testing.T) {
	c := mustCodec(t)

	t.Run("index holes become undefined", func(t *testing.T) {
		got := c.DecodeFields([]Field{{"t.2", "x"}}, value.Undefined())
		want := obj("t", value.Array(value.Undefined(), value.Undefined(), value.String("x")))
		if !value.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("oversized index is an object key", func(t *testing.T) {
		got := c.DecodeFields([]Field{{"t.999999", "x"}}, value.Undefined())
		inner, _ := got.Object().Get("t")
		if inner.Kind() != value.KindObject {
			t.Fatalf("t kind: got %v, want object", inner.Kind())
		}
		if v, ok := inner.Object().Get("999999"); !ok || v.Str() != "x" {
			t.Errorf("t.999999: got %v, %v", v, ok)
		}
	})

	t.Run("single field with empty key is the root value", func(t *testing.T) {
		got := c.DecodeFields([]Field{{"", "42"}}, value.Undefined())
		if !value.Equal(got, value.Number(42)) {
			t.Errorf("got %v, want 42", got)
		}
	})

	t.Run("later field overwrites earlier leaf", func(t *testing.T) {
		got := c.DecodeFields([]Field{{"a", "1"}, {"a.b", "2"}}, value.Undefined())
		want := obj("a", obj("b", value.Number(2)))
		if !value.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestDecodeFieldMapDeterminism(t *testing.T) {
	c := mustCodec(t)

	m := map[string][]string{
		"b":   {"2"},
		"a":   {"1"},
		"t.1": {"y"},
		"t.0": {"x"},
	}
	hint := obj("b", value.Number(0), "a", value.Number(0))

	want := obj(
		"b", value.Number(2),
		"a", value.Number(1),
		"t", value.Array(value.String("x"), value.String("y")),
	)
	for i := 0; i < 10; i++ {
		got := c.DecodeFieldMap(m, hint)
		if !value.Equal(got, want) {
			t.Fatalf("run %d: got %v, want %v", i, got, want)
		}
		// Hint order drives key order in the result.
		keys := got.Object().Keys()
		if keys[0] != "b" || keys[1] != "a" {
			t.Fatalf("run %d: key order %v", i, keys)
		}
	}
}

func TestFieldsWithoutArrayMarker(t *testing.T) {
	c := mustCodec(t, FieldsOnly(), WithoutArrayMarker(), WithArraySeparator("|"))

	t.Run("joined array has no marker and no terminator", func(t *testing.T) {
		fields := c.EncodeFields(obj("tags", value.Array(value.String("a"), value.String("b"))))
		want := []Field{{"tags", "a|b"}}
		if !reflect.DeepEqual(fields, want) {
			t.Fatalf("fields: got %v, want %v", fields, want)
		}
		hint := obj("tags", value.Array(value.String("")))
		got := c.DecodeFields(fields, hint)
		if !value.Equal(got, obj("tags", value.Array(value.String("a"), value.String("b")))) {
			t.Errorf("round trip: got %v", got)
		}
	})

	t.Run("separator alone marks an array without a hint", func(t *testing.T) {
		got := c.DecodeFields([]Field{{"tags", "a|b"}}, value.Undefined())
		if !value.Equal(got, obj("tags", value.Array(value.String("a"), value.String("b")))) {
			t.Errorf("got %v", got)
		}
	})

	t.Run("scalar containing the separator round-trips as a string", func(t *testing.T) {
		state := obj("q", value.String("x|y"))
		fields := c.EncodeFields(state)
		want := []Field{{"q", "x/|y"}}
		if !reflect.DeepEqual(fields, want) {
			t.Fatalf("fields: got %v, want %v", fields, want)
		}
		got := c.DecodeFields(fields, value.Undefined())
		if !value.Equal(got, state) {
			t.Errorf("round trip: got %v", got)
		}
	})

	t.Run("empty array is the empty value under an array hint", func(t *testing.T) {
		fields := c.EncodeFields(obj("tags", value.Array()))
		want := []Field{{"tags", ""}}
		if !reflect.DeepEqual(fields, want) {
			t.Fatalf("fields: got %v, want %v", fields, want)
		}
		hint := obj("tags", value.Array(value.String("")))
		got := c.DecodeFields(fields, hint)
		if !value.Equal(got, obj("tags", value.Array())) {
			t.Errorf("round trip: got %v", got)
		}
	})

	t.Run("typed elements", func(t *testing.T) {
		state := obj("ns", value.Array(value.Number(1), value.Number(2), value.Number(3)))
		fields := c.EncodeFields(state)
		want := []Field{{"ns", "1|2|3"}}
		if !reflect.DeepEqual(fields, want) {
			t.Fatalf("fields: got %v, want %v", fields, want)
		}
		got := c.DecodeFields(fields, value.Undefined())
		if !value.Equal(got, state) {
			t.Errorf("round trip: got %v", got)
		}
	})
}

func TestFieldsWithoutPrimitiveMarker(t *testing.T) {
	c := mustCodec(t, FieldsOnly(), WithoutPrimitiveMarker())

	state := obj(
		"page", value.Number(3),
		"on", value.Bool(true),
		"q", value.String("shoes"),
		"gone", value.Null(),
	)
	fields := c.EncodeFields(state)
	want := []Field{{"page", "3"}, {"on", "true"}, {"q", "shoes"}, {"gone", "null"}}
	if !reflect.DeepEqual(fields, want) {
		t.Fatalf("fields: got %v, want %v", fields, want)
	}
	got := c.DecodeFields(fields, value.Undefined())
	if !value.Equal(got, state) {
		t.Errorf("round trip: got %v, want %v", got, state)
	}
}
