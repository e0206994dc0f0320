package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieRoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewCookieCodec([]byte("0123456789abcdef0123456789abcdef"), false)

	w := httptest.NewRecorder()
	require.NoError(t, codec.Write(w, "session-abc123"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])

	got, err := codec.Read(r)
	require.NoError(t, err)
	assert.Equal(t, "session-abc123", got)
}

func TestCookieRejectsTampering(t *testing.T) {
	t.Parallel()

	codec := NewCookieCodec([]byte("0123456789abcdef0123456789abcdef"), false)

	w := httptest.NewRecorder()
	require.NoError(t, codec.Write(w, "session-abc123"))
	cookie := w.Result().Cookies()[0]
	cookie.Value = "x" + cookie.Value

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookie)

	_, err := codec.Read(r)
	require.Error(t, err)
}

func TestCookieSignedWithDifferentSecretFailsDecode(t *testing.T) {
	t.Parallel()

	first := NewCookieCodec([]byte("0123456789abcdef0123456789abcdef"), false)
	second := NewCookieCodec(RandomSecret(), false)

	w := httptest.NewRecorder()
	require.NoError(t, first.Write(w, "session-abc123"))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(w.Result().Cookies()[0])

	_, err := second.Read(r)
	require.Error(t, err)
}

func TestReadWithoutCookie(t *testing.T) {
	t.Parallel()

	codec := NewCookieCodec(nil, false)
	_, err := codec.Read(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Error(t, err)
}
