package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevin07696/payout-validation/internal/domain/ports"
)

// LocalStore reads secrets from files under a base directory.
// A file holds either the raw value or {"value": "...", "tags": {...}}.
// Development only.
type LocalStore struct {
	basePath string
	logger   ports.Logger
}

var _ ports.SecretStore = (*LocalStore)(nil)

// NewLocalStore creates a filesystem-backed store rooted at basePath
func NewLocalStore(basePath string, logger ports.Logger) *LocalStore {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &LocalStore{basePath: basePath, logger: logger}
}

func (s *LocalStore) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	clean := filepath.Clean("/" + path)
	full := filepath.Join(s.basePath, clean)

	s.logger.Debug("reading secret from filesystem", ports.String("path", path))

	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ports.ErrSecretNotFound, path)
		}
		return nil, fmt.Errorf("failed to read secret %s: %w", path, err)
	}

	var doc struct {
		Value     string            `json:"value"`
		Tags      map[string]string `json:"tags"`
		CreatedAt string            `json:"created_at"`
	}
	if err := json.Unmarshal(data, &doc); err == nil && doc.Value != "" {
		return &ports.Secret{
			Value:     doc.Value,
			Version:   "local",
			CreatedAt: doc.CreatedAt,
			Metadata:  doc.Tags,
		}, nil
	}

	return &ports.Secret{
		Value:   strings.TrimRight(string(data), "\r\n"),
		Version: "local",
	}, nil
}
