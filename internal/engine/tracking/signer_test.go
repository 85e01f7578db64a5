package tracking

import (
	"strings"
	"testing"
	"time"
)

func TestSign(t *testing.T) {
	secret := "secret"
	payload := []byte("payload")

	// Calculated using: echo -n "payload" | openssl dgst -sha256 -hmac "secret"
	expected := "b82fcb791acec57859b989b430a826488ce2e479fdf92326bd0a2e8375a42ba4"

	got := Sign(secret, payload)

	if got != expected {
		t.Errorf("Sign() = %v, want %v", got, expected)
	}
}

func TestSign_Deterministic(t *testing.T) {
	body := []byte(`{"channel":"7"}`)
	date := "2024-01-01T00:00:00+00:00"
	canonical := CanonicalString("POST", ContentDigest(body), "application/json", date, body, ImportPath)

	first := Sign("deadbeef", []byte(canonical))
	second := Sign("deadbeef", []byte(canonical))
	if first != second {
		t.Errorf("Expected identical signatures, got %s and %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("Expected 64 hex characters, got %d", len(first))
	}

	if other := Sign("deadbeff", []byte(canonical)); other == first {
		t.Error("Expected a different secret to change the signature")
	}
}

func TestContentDigest(t *testing.T) {
	tests := []struct {
		body     string
		expected string
	}{
		{"", "d41d8cd98f00b204e9800998ecf8427e"},
		{"abc", "900150983cd24fb0d6963f7d28e17f72"},
	}

	for _, tt := range tests {
		if got := ContentDigest([]byte(tt.body)); got != tt.expected {
			t.Errorf("ContentDigest(%q) = %s, want %s", tt.body, got, tt.expected)
		}
	}
}

func TestCanonicalString(t *testing.T) {
	got := CanonicalString("POST", "md5", "application/json", "2024-01-01T00:00:00+00:00", []byte(`{"a":1}`), ImportPath)
	expected := "POST\nmd5\napplication/json\n2024-01-01T00:00:00+00:00\n{\"a\":1}\n/rest/v1/import"

	if got != expected {
		t.Errorf("CanonicalString() = %q, want %q", got, expected)
	}
}

func TestFormatDate(t *testing.T) {
	helsinki := time.FixedZone("EET", 2*60*60)
	ts := time.Date(2024, 1, 1, 2, 30, 15, 0, helsinki)

	if got := FormatDate(ts); got != "2024-01-01T00:30:15+00:00" {
		t.Errorf("FormatDate() = %s", got)
	}
}

func TestAuthorizationHeader(t *testing.T) {
	if got := AuthorizationHeader("ACME", "42", "abc"); got != "ACME 42:abc" {
		t.Errorf("AuthorizationHeader() = %s", got)
	}
}

func TestSignRequest(t *testing.T) {
	cfg := Config{User: "42", Secret: "deadbeef", BaseURL: "https://api.example.com/", Realm: "ACME", Channel: "7"}
	body := []byte(`{"channel":"7"}`)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	sr := signRequest(cfg, body, now)

	if sr.URL != "https://api.example.com/rest/v1/import" {
		t.Errorf("Unexpected URL %s", sr.URL)
	}
	if sr.Date != "2024-01-01T00:00:00+00:00" {
		t.Errorf("Unexpected date %s", sr.Date)
	}
	if sr.ContentMD5 != ContentDigest(body) {
		t.Errorf("Unexpected digest %s", sr.ContentMD5)
	}

	canonical := CanonicalString("POST", sr.ContentMD5, "application/json", sr.Date, body, "/rest/v1/import")
	if sr.Signature != Sign("deadbeef", []byte(canonical)) {
		t.Error("Signature does not match recomputed canonical string")
	}
	if !strings.HasPrefix(sr.Authorization, "ACME 42:") || !strings.HasSuffix(sr.Authorization, sr.Signature) {
		t.Errorf("Unexpected authorization %s", sr.Authorization)
	}
}
