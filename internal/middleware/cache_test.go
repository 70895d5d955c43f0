package middleware

import (
	"net/http"
	"testing"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("cache", "/api/availability", "start=2026-06-01&end=2026-06-30")
	b := CacheKey("cache", "/api/availability", "start=2026-06-01&end=2026-06-30")
	if a != b {
		t.Errorf("same inputs produced different keys: %q vs %q", a, b)
	}
	c := CacheKey("cache", "/api/availability", "start=2026-07-01&end=2026-07-31")
	if a == c {
		t.Error("different queries produced the same key")
	}
	if d := CacheKey("other", "/api/availability", "start=2026-06-01&end=2026-06-30"); d == a {
		t.Error("prefix must namespace the key")
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")

	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"availability":[]}`))
	if err != nil {
		t.Fatalf("encodePayload: %v", err)
	}
	status, gotHdr, body, ok := decodePayload(bs)
	if !ok {
		t.Fatal("decodePayload rejected its own encoding")
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if got := gotHdr.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if string(body) != `{"availability":[]}` {
		t.Errorf("body = %q", body)
	}
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	for _, bs := range [][]byte{nil, {1, 2, 3}, {0, 0, 0, 200, 0, 0, 0, 99}} {
		if _, _, _, ok := decodePayload(bs); ok {
			t.Errorf("decodePayload(%v) accepted malformed input", bs)
		}
	}
}
