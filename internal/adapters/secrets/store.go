package secrets

import (
	"context"
	"fmt"

	"github.com/kevin07696/payout-validation/internal/domain/ports"
)

// Backend names accepted by Open
const (
	BackendNone  = ""
	BackendLocal = "local"
	BackendAWS   = "aws"
	BackendVault = "vault"
)

// Config selects and configures one secret backend
type Config struct {
	Backend   string
	LocalPath string
	AWS       AWSConfig
	Vault     VaultConfig
}

// Open builds the configured store. BackendNone returns a nil store and no error.
func Open(ctx context.Context, cfg Config, logger ports.Logger) (ports.SecretStore, error) {
	switch cfg.Backend {
	case BackendNone:
		return nil, nil
	case BackendLocal:
		if logger != nil {
			logger.Warn("using local filesystem secrets, not for production",
				ports.String("path", cfg.LocalPath))
		}
		return NewLocalStore(cfg.LocalPath, logger), nil
	case BackendAWS:
		store, err := NewAWSStore(ctx, cfg.AWS, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendVault:
		store, err := NewVaultStore(ctx, cfg.Vault, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown secrets backend %q", cfg.Backend)
	}
}
