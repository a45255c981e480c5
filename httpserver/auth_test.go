package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func authRequest(path, key string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if key != "" {
		req.Header.Set(AdminAPIKeyHeader, key)
	}
	return req
}

func TestAPIKeyAuthenticator(t *testing.T) {
	auth, err := NewAPIKeyAuthenticator([]byte("secret-key"), false)
	require.NoError(t, err)

	assert.True(t, auth.Authenticate(authRequest("/status/reset", "secret-key")))
	assert.False(t, auth.Authenticate(authRequest("/status/reset", "wrong-key")))
	assert.False(t, auth.Authenticate(authRequest("/status/reset", "")))

	// Prefix of the real key must not pass.
	assert.False(t, auth.Authenticate(authRequest("/status/reset", "secret-ke")))

	// Allow-list not enforced: health probes need the key too.
	assert.False(t, auth.Authenticate(authRequest("/status/live", "")))
}

func TestAPIKeyAuthenticatorRejectsEmptyKey(t *testing.T) {
	// An empty key would let a request with no x-api-key header through.
	_, err := NewAPIKeyAuthenticator(nil, false)
	assert.Error(t, err)

	_, err = NewAPIKeyAuthenticator([]byte{}, true)
	assert.Error(t, err)
}

func TestAPIKeyAuthenticatorAllowList(t *testing.T) {
	auth, err := NewAPIKeyAuthenticator([]byte("secret-key"), true)
	require.NoError(t, err)

	for _, path := range DefaultUnprotectedPaths() {
		assert.True(t, auth.Authenticate(authRequest(path, "")), "path %s should be exempt", path)
	}
	assert.True(t, auth.Authenticate(authRequest("/static/swagger/swagger-ui.css", "")))

	assert.False(t, auth.Authenticate(authRequest("/status/reset", "")))
	assert.True(t, auth.Authenticate(authRequest("/status/reset", "secret-key")))
}

func TestBcryptAuthenticator(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret-key"), bcrypt.MinCost)
	require.NoError(t, err)

	auth, err := NewBcryptAuthenticator(hash)
	require.NoError(t, err)

	assert.True(t, auth.Authenticate(authRequest("/", "secret-key")))
	assert.False(t, auth.Authenticate(authRequest("/", "wrong-key")))
	assert.False(t, auth.Authenticate(authRequest("/", "")))
}

func TestBcryptAuthenticatorRejectsInvalidHash(t *testing.T) {
	_, err := NewBcryptAuthenticator([]byte("not-a-bcrypt-hash"))
	assert.Error(t, err)
}
