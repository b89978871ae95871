package adapthttp

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCookieCodecRoundTrip(t *testing.T) {
	c := cookieCodec{secret: []byte("secret")}

	value := c.encode("tok-abc123")
	token, ok := c.decode(value)
	if !ok {
		t.Fatal("decode rejected a value it encoded")
	}
	if token != "tok-abc123" {
		t.Fatalf("token = %q", token)
	}
}

func TestCookieCodecRejectsTampering(t *testing.T) {
	c := cookieCodec{secret: []byte("secret")}
	value := c.encode("tok-abc123")

	tests := []struct {
		name  string
		value string
	}{
		{"swapped token", "tok-other." + c.sign("tok-abc123")},
		{"truncated signature", value[:len(value)-2]},
		{"no separator", "tok-abc123"},
		{"empty", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := c.decode(tc.value); ok {
				t.Fatalf("decode accepted %q", tc.value)
			}
		})
	}
}

func TestCookieCodecRejectsOtherSecret(t *testing.T) {
	a := cookieCodec{secret: []byte("secret-a")}
	b := cookieCodec{secret: []byte("secret-b")}

	if _, ok := b.decode(a.encode("tok")); ok {
		t.Fatal("a token signed under one secret verified under another")
	}
}

func TestCookieCodecSetAndToken(t *testing.T) {
	c := cookieCodec{secret: []byte("secret")}

	w := httptest.NewRecorder()
	c.set(w, "tok-abc123")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range w.Result().Cookies() {
		r.AddCookie(cookie)
	}

	token, ok := c.token(r)
	if !ok || token != "tok-abc123" {
		t.Fatalf("token = %q, ok = %v", token, ok)
	}
}

func TestCookieCodecNoCookie(t *testing.T) {
	c := cookieCodec{secret: []byte("secret")}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := c.token(r); ok {
		t.Fatal("token reported present on a bare request")
	}
}

func TestCookieProductionAttributes(t *testing.T) {
	c := cookieCodec{secret: []byte("secret"), production: true}

	w := httptest.NewRecorder()
	c.set(w, "tok")

	cookie := w.Result().Cookies()[0]
	if !cookie.Secure {
		t.Fatal("production cookie must be Secure")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("SameSite = %v, want Strict", cookie.SameSite)
	}
}
