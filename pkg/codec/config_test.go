package codec

import (
	"strings"
	"testing"

	"github.com/vango-dev/urlstate/internal/errors"
)

func TestNewDefaults(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Mode() != ModeTyped {
		t.Errorf("mode: got %v, want typed", c.Mode())
	}
	if c.FieldsOnly() {
		t.Error("default codec should support the namespaced layout")
	}
	if c.escape != "/" {
		t.Errorf("typed escape: got %q, want /", c.escape)
	}
}

func TestPlainDefaults(t *testing.T) {
	c, err := New(Plain())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Mode() != ModePlain {
		t.Errorf("mode: got %v, want plain", c.Mode())
	}
	if c.escape != "_" {
		t.Errorf("plain escape: got %q, want _", c.escape)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		code string // "" means the config must be accepted
	}{
		{"defaults", nil, ""},
		{"empty terminator", []Option{WithTerminator("")}, "C001"},
		{"empty entry separator", []Option{WithEntrySeparator("")}, "C001"},
		{"empty null literal", []Option{WithNullLiteral("")}, "C001"},
		{"identical markers", []Option{WithStringMarker("!"), WithPrimitiveMarker("!")}, "C002"},
		{"marker equals separator", []Option{WithArrayMarker(",")}, "C002"},
		{"prefix collision", []Option{WithStringMarker("--"), WithPrimitiveMarker("-")}, "C003"},
		{"escape equals marker", []Option{WithEscape("=")}, "C004"},
		{"escape prefixes marker", []Option{WithStringMarker("~~"), WithEscape("~")}, "C003"},
		{"date prefix equals marker", []Option{WithDatePrefix("@")}, "C005"},
		{"date prefix prefixes terminator", []Option{WithTerminator("D!")}, "C005"},
		{"disable primitive without fields-only", []Option{WithoutPrimitiveMarker()}, "C006"},
		{"disable array without fields-only", []Option{WithoutArrayMarker()}, "C006"},
		{"disable primitive with fields-only", []Option{FieldsOnly(), WithoutPrimitiveMarker()}, ""},
		{"null equals undefined", []Option{WithNullLiteral("nil"), WithUndefinedLiteral("nil")}, "C007"},
		{"joined arrays need separator", []Option{WithArraySeparator("")}, "C001"},
		{"nesting separator may share the object marker", []Option{WithNestingSeparator(".")}, ""},
		{"nesting separator vs escape", []Option{WithNestingSeparator("/")}, "C004"},
		{"custom grammar", []Option{
			WithStringMarker("'"), WithPrimitiveMarker("!"), WithArrayMarker("ARR"),
			WithObjectMarker("OBJ"), WithTerminator("END"), WithEntrySeparator("&"),
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			if tt.code == "" {
				if err != nil {
					t.Fatalf("want valid config, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("want error %s, got nil", tt.code)
			}
			cerr, ok := err.(*errors.Error)
			if !ok {
				t.Fatalf("error type: got %T", err)
			}
			if cerr.Code != tt.code {
				t.Errorf("code: got %s, want %s (%v)", cerr.Code, tt.code, err)
			}
		})
	}
}

func TestConfigErrorText(t *testing.T) {
	_, err := New(WithStringMarker("!"), WithPrimitiveMarker("!"))
	if err == nil {
		t.Fatal("want error")
	}
	if !strings.Contains(err.Error(), "urlstate: C002") {
		t.Errorf("error text: got %q", err.Error())
	}
}
