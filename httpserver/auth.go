package httpserver

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AdminAPIKeyHeader is the request header carrying the admin API key.
const AdminAPIKeyHeader = "x-api-key"

// Authenticator decides whether a request may pass the admin gate. OPTIONS
// requests never reach the authenticator: browsers cannot attach custom
// headers to a CORS preflight, so preflight requests always bypass the gate.
type Authenticator interface {
	// Authenticate reports whether the request carries valid credentials.
	Authenticate(r *http.Request) bool
}

// DefaultUnprotectedPaths lists the admin paths exempt from the API key
// check when allow-list enforcement is enabled: the documentation surface
// and the two health probes.
func DefaultUnprotectedPaths() []string {
	return []string{
		"/api/doc",
		"/api/docs/swagger.json",
		"/favicon.ico",
		"/status/live",
		"/status/ready",
	}
}

// DefaultUnprotectedPrefixes lists path prefixes exempt from the API key
// check when allow-list enforcement is enabled.
func DefaultUnprotectedPrefixes() []string {
	return []string{"/static/swagger/"}
}

// APIKeyAuthenticator checks the x-api-key header against a configured
// shared secret. Both sides are hashed before comparison so that neither
// the key length nor a correct prefix leaks through timing.
type APIKeyAuthenticator struct {
	keyDigest [sha256.Size]byte

	unprotectedPaths    []string
	unprotectedPrefixes []string
}

// NewAPIKeyAuthenticator creates an authenticator for the given admin key.
// An empty key is refused: it would make a request with no x-api-key header
// authenticate. If enforceUnprotected is true, the default unprotected-path
// allow-list bypasses the key check.
func NewAPIKeyAuthenticator(adminKey []byte, enforceUnprotected bool) (*APIKeyAuthenticator, error) {
	if len(adminKey) == 0 {
		return nil, errors.New("admin key must not be empty")
	}

	a := &APIKeyAuthenticator{keyDigest: sha256.Sum256(adminKey)}
	if enforceUnprotected {
		a.unprotectedPaths = DefaultUnprotectedPaths()
		a.unprotectedPrefixes = DefaultUnprotectedPrefixes()
	}
	return a, nil
}

// Authenticate reports whether the request path is exempt or the x-api-key
// header matches the configured key.
func (a *APIKeyAuthenticator) Authenticate(r *http.Request) bool {
	if a.isUnprotectedPath(r.URL.Path) {
		return true
	}

	headerDigest := sha256.Sum256([]byte(r.Header.Get(AdminAPIKeyHeader)))
	return subtle.ConstantTimeCompare(a.keyDigest[:], headerDigest[:]) == 1
}

func (a *APIKeyAuthenticator) isUnprotectedPath(path string) bool {
	for _, p := range a.unprotectedPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range a.unprotectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// BcryptAuthenticator checks the x-api-key header against a bcrypt hash of
// the admin key, for deployments that keep only the hashed key on disk.
// bcrypt comparison is constant-time by construction.
type BcryptAuthenticator struct {
	hash []byte
}

// NewBcryptAuthenticator creates an authenticator from a bcrypt hash of the
// admin key. The hash is validated eagerly so misconfiguration surfaces at
// startup rather than as a permanent 401.
func NewBcryptAuthenticator(hash []byte) (*BcryptAuthenticator, error) {
	if _, err := bcrypt.Cost(hash); err != nil {
		return nil, err
	}
	return &BcryptAuthenticator{hash: hash}, nil
}

// Authenticate reports whether the x-api-key header matches the stored hash.
func (b *BcryptAuthenticator) Authenticate(r *http.Request) bool {
	key := r.Header.Get(AdminAPIKeyHeader)
	return bcrypt.CompareHashAndPassword(b.hash, []byte(key)) == nil
}
