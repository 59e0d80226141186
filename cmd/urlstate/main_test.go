package main

import (
	"bytes"
	"strings"
	"testing"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	err := cmd.Execute()
	return out.String(), err
}

func TestEncode(t *testing.T) {
	got, err := run(t, "", "encode", `{"count":5,"nested":{"hello":"World"}}`)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got != "count:5,nested.hello=World\n" {
		t.Errorf("output: got %q", got)
	}
}

func TestEncodeFromStdin(t *testing.T) {
	got, err := run(t, `{"q":"shoes","page":2}`, "encode")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got != "q=shoes,page:2\n" {
		t.Errorf("output: got %q", got)
	}
}

func TestEncodeQuery(t *testing.T) {
	got, err := run(t, "", "encode", "--query", `{"q":"running shoes","tags":["a","b"]}`)
	if err != nil {
		t.Fatalf("encode --query: %v", err)
	}
	if got != "q=running+shoes&tags=a&tags=b\n" {
		t.Errorf("output: got %q", got)
	}
}

func TestEncodeInvalidJSON(t *testing.T) {
	if _, err := run(t, "", "encode", `{broken`); err == nil {
		t.Error("invalid JSON accepted")
	}
}

func TestDecode(t *testing.T) {
	got, err := run(t, "", "decode", "count:5,nested.hello=World")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != `{"count":5,"nested":{"hello":"World"}}`+"\n" {
		t.Errorf("output: got %q", got)
	}
}

func TestDecodeQueryWithHint(t *testing.T) {
	got, err := run(t, "", "decode", "--query", "--hint", `{"id":""}`, "id=42")
	if err != nil {
		t.Fatalf("decode --query: %v", err)
	}
	if got != `{"id":"42"}`+"\n" {
		t.Errorf("output: got %q", got)
	}
}

func TestDecodePlainRoundTrip(t *testing.T) {
	encoded, err := run(t, "", "encode", "--plain", `{"page":2,"q":"shoes"}`)
	if err != nil {
		t.Fatalf("encode --plain: %v", err)
	}
	text := strings.TrimRight(encoded, "\n")

	got, err := run(t, "", "decode", "--plain", "--hint", `{"page":0,"q":""}`, text)
	if err != nil {
		t.Fatalf("decode --plain: %v", err)
	}
	if got != `{"page":2,"q":"shoes"}`+"\n" {
		t.Errorf("output: got %q", got)
	}
}

func TestFields(t *testing.T) {
	got, err := run(t, "", "fields", `{"q":"shoes","filters":{"brand":"acme"},"tags":["a","b"]}`)
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	want := "q=shoes\nfilters.brand=acme\ntags=a\ntags=b\n"
	if got != want {
		t.Errorf("output: got %q, want %q", got, want)
	}
}

func TestDigitBools(t *testing.T) {
	got, err := run(t, "", "encode", "--digit-bools", `{"on":true}`)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got != "on:1\n" {
		t.Errorf("output: got %q", got)
	}
}
