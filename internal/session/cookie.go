// Package session binds a browser to its server-side session via a signed
// cookie. Only the session id crosses the wire; transcripts, reservations
// and tool context stay in the store.
package session

import (
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
)

const (
	// CookieName identifies the session cookie.
	CookieName = "bitebot_session"

	cookieMaxAge = 7 * 24 * 60 * 60
)

// CookieCodec signs and verifies the session id cookie. A tampered or
// forged cookie fails decoding and the caller starts a fresh session.
type CookieCodec struct {
	codec  *securecookie.SecureCookie
	secure bool
}

// NewCookieCodec builds a codec from the signing secret. An empty secret
// gets a random one, which invalidates all cookies on restart; fine for
// development, logged loudly by the config layer.
func NewCookieCodec(secret []byte, secure bool) *CookieCodec {
	if len(secret) == 0 {
		secret = RandomSecret()
	}
	sc := securecookie.New(secret, nil)
	sc.MaxAge(cookieMaxAge)
	return &CookieCodec{codec: sc, secure: secure}
}

// RandomSecret returns 32 bytes of cryptographic randomness.
func RandomSecret() []byte {
	return securecookie.GenerateRandomKey(32)
}

// Read extracts and verifies the session id from the request cookie.
func (c *CookieCodec) Read(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", err
	}
	var sessionID string
	if err := c.codec.Decode(CookieName, cookie.Value, &sessionID); err != nil {
		return "", fmt.Errorf("invalid session cookie: %w", err)
	}
	return sessionID, nil
}

// Write sets a signed session cookie on the response.
func (c *CookieCodec) Write(w http.ResponseWriter, sessionID string) error {
	encoded, err := c.codec.Encode(CookieName, sessionID)
	if err != nil {
		return fmt.Errorf("encode session cookie: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
