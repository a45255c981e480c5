// Package secrets loads the admin API key from its configured source.
//
// The admin key is a single process-wide shared secret. It is loaded once at
// startup and injected into the HTTP server's authentication gate, never
// re-read per request.
package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Source supplies the admin API key.
type Source interface {
	// AdminKey returns the admin API key bytes.
	AdminKey(ctx context.Context) ([]byte, error)
}

// StaticSource returns a fixed key supplied at construction.
type StaticSource []byte

// AdminKey returns the static key.
func (s StaticSource) AdminKey(ctx context.Context) ([]byte, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("static admin key is empty")
	}
	return []byte(s), nil
}

// FileSource reads the key from a file, trimming trailing whitespace.
type FileSource string

// AdminKey reads and returns the key from the file.
func (s FileSource) AdminKey(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(string(s))
	if err != nil {
		return nil, fmt.Errorf("failed to read admin key file: %w", err)
	}

	key := strings.TrimRight(string(data), "\r\n")
	if key == "" {
		return nil, fmt.Errorf("admin key file %q is empty", string(s))
	}
	return []byte(key), nil
}

// EnvSource reads the key from the named environment variable.
type EnvSource string

// AdminKey returns the key from the environment.
func (s EnvSource) AdminKey(ctx context.Context) ([]byte, error) {
	key, ok := os.LookupEnv(string(s))
	if !ok || key == "" {
		return nil, fmt.Errorf("environment variable %q is not set", string(s))
	}
	return []byte(key), nil
}
