package adapthttp

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
)

const sessionCookieName = "gatechat_session"

const sessionCookieMaxAge = 24 * 60 * 60

// cookieCodec signs session tokens into cookie values and verifies them
// back out. The value is "token.sig" with sig an HMAC-SHA256 of the token
// under the session secret; a bad signature reads as no cookie at all.
type cookieCodec struct {
	secret     []byte
	production bool
}

func (c *cookieCodec) sign(token string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (c *cookieCodec) encode(token string) string {
	return token + "." + c.sign(token)
}

// decode returns the token and whether the signature checked out.
func (c *cookieCodec) decode(value string) (string, bool) {
	// Tokens are base64url and never contain a dot.
	i := strings.LastIndexByte(value, '.')
	if i <= 0 {
		return "", false
	}
	token, sig := value[:i], value[i+1:]
	if !hmac.Equal([]byte(sig), []byte(c.sign(token))) {
		return "", false
	}
	return token, true
}

// token extracts a verified session token from the request, if any.
func (c *cookieCodec) token(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", false
	}
	return c.decode(cookie.Value)
}

func (c *cookieCodec) set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    c.encode(token),
		Path:     "/",
		HttpOnly: true,
		Secure:   c.production,
		SameSite: c.sameSite(),
		MaxAge:   sessionCookieMaxAge,
	})
}

func (c *cookieCodec) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.production,
		SameSite: c.sameSite(),
		MaxAge:   -1,
	})
}

func (c *cookieCodec) sameSite() http.SameSite {
	if c.production {
		return http.SameSiteStrictMode
	}
	// Lax keeps local cross-port development working.
	return http.SameSiteLaxMode
}
