package http

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func parseBodyFromString(s string) *Body {
	req := httptest.NewRequest("POST", "/x", strings.NewReader(s))
	return ParseBody(req)
}

func TestParseBodyMalformedIsEmpty(t *testing.T) {
	for _, raw := range []string{"", "not json", "[1,2,3]", "null"} {
		b := parseBodyFromString(raw)
		if b.Has("ym") {
			t.Errorf("body %q: expected no keys", raw)
		}
		if b.Get("ym") != "" {
			t.Errorf("body %q: Get should return empty", raw)
		}
	}
}

func TestBodyGetTrimsAndConverts(t *testing.T) {
	b := parseBodyFromString(`{"ym":"  2025-07 ","n":42,"flag":true,"nothing":null}`)
	if got := b.Get("ym"); got != "2025-07" {
		t.Fatalf("Get(ym) = %q", got)
	}
	if got := b.Get("n"); got != "42" {
		t.Fatalf("Get(n) = %q", got)
	}
	if got := b.Get("flag"); got != "true" {
		t.Fatalf("Get(flag) = %q", got)
	}
	if got := b.Get("nothing"); got != "" {
		t.Fatalf("Get(nothing) = %q", got)
	}
	if !b.Has("nothing") {
		t.Fatal("Has(nothing) should be true for explicit null")
	}
}

func TestBodyAmount(t *testing.T) {
	b := parseBodyFromString(`{"a":12.5,"b":"99","c":"x"}`)
	if v, err := b.Amount("a"); err != nil || v != 12.5 {
		t.Fatalf("Amount(a) = %v, %v", v, err)
	}
	if v, err := b.Amount("b"); err != nil || v != 99 {
		t.Fatalf("Amount(b) = %v, %v", v, err)
	}
	if _, err := b.Amount("c"); err == nil {
		t.Fatal("Amount(c) should fail")
	}
	if _, err := b.Amount("missing"); err == nil {
		t.Fatal("Amount(missing) should fail")
	}
}

func TestBodyBoolAndID(t *testing.T) {
	b := parseBodyFromString(`{"q1":true,"q2":"true","q3":"1","q4":0,"q5":"no","id1":7,"id2":"12","id3":-1,"id4":"x"}`)
	for key, want := range map[string]bool{"q1": true, "q2": true, "q3": true, "q4": false, "q5": false, "missing": false} {
		if got := b.Bool(key); got != want {
			t.Errorf("Bool(%s) = %v, want %v", key, got, want)
		}
	}

	if id, ok := b.ID("id1"); !ok || id != 7 {
		t.Fatalf("ID(id1) = %d, %v", id, ok)
	}
	if id, ok := b.ID("id2"); !ok || id != 12 {
		t.Fatalf("ID(id2) = %d, %v", id, ok)
	}
	if _, ok := b.ID("id3"); ok {
		t.Fatal("negative id should not be accepted")
	}
	if _, ok := b.ID("id4"); ok {
		t.Fatal("non-numeric id should not be accepted")
	}
	if _, ok := b.ID("missing"); ok {
		t.Fatal("missing id should not be accepted")
	}
}
