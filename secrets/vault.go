package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/vault/api"
)

// VaultSource reads the admin API key from a HashiCorp Vault KV v2 secret.
type VaultSource struct {
	client    *api.Client
	mountPath string
	dataPath  string
	field     string
	log       *slog.Logger
}

// NewVaultSource creates a Vault-backed admin key source.
//
// Parameters:
//   - address: Vault server address (e.g. https://vault.example.com:8200)
//   - token: Vault authentication token
//   - mountPath: KV v2 mount path (e.g. "secret")
//   - dataPath: Path within the mount (e.g. "agent/admin")
//   - field: Field holding the key within the secret (e.g. "api_key")
//   - log: Structured logger for operational insights
func NewVaultSource(address, token, mountPath, dataPath, field string, log *slog.Logger) (*VaultSource, error) {
	config := api.DefaultConfig()
	config.Address = address
	config.HttpClient = &http.Client{Timeout: 30 * time.Second}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	client.SetToken(token)

	mountPath = strings.TrimSuffix(mountPath, "/")
	dataPath = strings.Trim(dataPath, "/")

	return &VaultSource{
		client:    client,
		mountPath: mountPath,
		dataPath:  dataPath,
		field:     field,
		log:       log,
	}, nil
}

// AdminKey fetches the admin key from Vault.
func (s *VaultSource) AdminKey(ctx context.Context) ([]byte, error) {
	// Vault KV v2 path structure
	path := fmt.Sprintf("%s/data/%s", s.mountPath, s.dataPath)

	secret, err := s.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		s.log.Error("Failed to read admin key from Vault", slog.String("path", path), "err", err)
		return nil, fmt.Errorf("vault read failed: %w", err)
	}

	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("no secret at vault path %q", path)
	}

	// Extract data from the response (KV v2 format)
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		s.log.Error("Invalid data format in Vault response", slog.String("path", path))
		return nil, fmt.Errorf("invalid data format in Vault response")
	}

	value, ok := data[s.field]
	if !ok {
		return nil, fmt.Errorf("field %q not found in vault secret %q", s.field, path)
	}

	key, ok := value.(string)
	if !ok || key == "" {
		return nil, fmt.Errorf("field %q in vault secret %q is not a non-empty string", s.field, path)
	}

	return []byte(key), nil
}
