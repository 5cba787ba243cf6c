package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"
	"github.com/kevin07696/payout-validation/internal/domain/ports"
)

// VaultConfig configures the HashiCorp Vault store
type VaultConfig struct {
	Address    string
	AuthMethod string // "token" or "approle"
	Token      string
	RoleID     string
	SecretID   string
	Namespace  string
	MountPath  string // KV mount, default "secret"
	KVVersion  string // "v1" or "v2", default "v2"
	CacheTTL   time.Duration
}

// logicalAPI is the slice of vault.Logical the store calls
type logicalAPI interface {
	ReadWithContext(ctx context.Context, path string) (*vault.Secret, error)
}

// VaultStore resolves secrets from a Vault KV engine
type VaultStore struct {
	logical   logicalAPI
	mountPath string
	kvVersion string
	logger    ports.Logger
	cache     *secretCache
}

var _ ports.SecretStore = (*VaultStore)(nil)

// NewVaultStore creates a client and authenticates it
func NewVaultStore(ctx context.Context, cfg VaultConfig, logger ports.Logger) (*VaultStore, error) {
	if logger == nil {
		logger = ports.NopLogger{}
	}

	vcfg := vault.DefaultConfig()
	vcfg.Address = cfg.Address
	client, err := vault.NewClient(vcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}
	if err := authenticateVault(ctx, client, cfg); err != nil {
		return nil, fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	store := newVaultStore(client.Logical(), cfg, logger)
	logger.Info("Vault store initialized",
		ports.String("address", cfg.Address),
		ports.String("auth_method", cfg.AuthMethod),
		ports.String("mount_path", store.mountPath),
		ports.String("kv_version", store.kvVersion))
	return store, nil
}

func newVaultStore(logical logicalAPI, cfg VaultConfig, logger ports.Logger) *VaultStore {
	mount := cfg.MountPath
	if mount == "" {
		mount = "secret"
	}
	kv := cfg.KVVersion
	if kv == "" {
		kv = "v2"
	}
	return &VaultStore{
		logical:   logical,
		mountPath: mount,
		kvVersion: kv,
		logger:    logger,
		cache:     newSecretCache(cfg.CacheTTL),
	}
}

func authenticateVault(ctx context.Context, client *vault.Client, cfg VaultConfig) error {
	switch cfg.AuthMethod {
	case "", "token":
		if cfg.Token == "" {
			return fmt.Errorf("token is required for token auth")
		}
		client.SetToken(cfg.Token)
		return nil
	case "approle":
		if cfg.RoleID == "" || cfg.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for AppRole auth")
		}
		resp, err := client.Logical().WriteWithContext(ctx, "auth/approle/login", map[string]interface{}{
			"role_id":   cfg.RoleID,
			"secret_id": cfg.SecretID,
		})
		if err != nil {
			return fmt.Errorf("AppRole login failed: %w", err)
		}
		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("AppRole login returned no auth info")
		}
		client.SetToken(resp.Auth.ClientToken)
		return nil
	default:
		return fmt.Errorf("unsupported auth method: %s", cfg.AuthMethod)
	}
}

// GetSecret reads path from the KV engine. The value is taken from the
// "value" key, or the only string key when there is exactly one.
func (s *VaultStore) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := s.cache.get(path); cached != nil {
		return cached, nil
	}

	full := fmt.Sprintf("%s/%s", s.mountPath, path)
	if s.kvVersion == "v2" {
		full = fmt.Sprintf("%s/data/%s", s.mountPath, path)
	}

	raw, err := s.logical.ReadWithContext(ctx, full)
	if err != nil {
		s.logger.Error("failed to read secret from Vault",
			ports.String("path", path),
			ports.Err(err))
		return nil, fmt.Errorf("failed to read secret %s: %w", path, err)
	}
	if raw == nil || raw.Data == nil {
		return nil, fmt.Errorf("%w: %s", ports.ErrSecretNotFound, path)
	}

	data := raw.Data
	version := "1"
	createdAt := ""
	if s.kvVersion == "v2" {
		inner, ok := data["data"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid secret format at %s", path)
		}
		if meta, ok := raw.Data["metadata"].(map[string]interface{}); ok {
			if v, ok := meta["version"].(json.Number); ok {
				version = v.String()
			}
			if ct, ok := meta["created_time"].(string); ok {
				createdAt = ct
			}
		}
		data = inner
	}

	value, err := secretValue(data)
	if err != nil {
		return nil, fmt.Errorf("%w at %s", err, path)
	}

	secret := &ports.Secret{
		Value:     value,
		Version:   version,
		CreatedAt: createdAt,
		Metadata:  map[string]string{},
	}
	for k, v := range data {
		if str, ok := v.(string); ok && k != "value" {
			secret.Metadata[k] = str
		}
	}

	s.cache.set(path, secret)
	return secret, nil
}

func secretValue(data map[string]interface{}) (string, error) {
	if v, ok := data["value"].(string); ok && v != "" {
		return v, nil
	}
	var found []string
	for _, v := range data {
		if str, ok := v.(string); ok {
			found = append(found, str)
		}
	}
	if len(found) == 1 && found[0] != "" {
		return found[0], nil
	}
	return "", fmt.Errorf("secret has no value key")
}
