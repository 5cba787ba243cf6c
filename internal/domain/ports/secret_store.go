package ports

import (
	"context"
	"errors"
)

// ErrSecretNotFound is returned when a secret path does not exist
var ErrSecretNotFound = errors.New("secret not found")

// Secret is a resolved secret value with backend metadata
type Secret struct {
	Value     string
	Version   string
	CreatedAt string
	Metadata  map[string]string
}

// SecretStore resolves credentials such as the database password.
// Backends: local filesystem, AWS Secrets Manager, HashiCorp Vault.
type SecretStore interface {
	GetSecret(ctx context.Context, path string) (*Secret, error)
}
