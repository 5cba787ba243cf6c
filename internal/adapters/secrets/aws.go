package secrets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/kevin07696/payout-validation/internal/domain/ports"
)

// AWSConfig configures the AWS Secrets Manager store
type AWSConfig struct {
	Region   string
	Profile  string // shared config profile for local development
	Endpoint string // custom endpoint, e.g. LocalStack
	CacheTTL time.Duration
}

// secretValueAPI is the slice of the Secrets Manager client the store calls
type secretValueAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSStore resolves secrets from AWS Secrets Manager
type AWSStore struct {
	client secretValueAPI
	logger ports.Logger
	cache  *secretCache
}

var _ ports.SecretStore = (*AWSStore)(nil)

// NewAWSStore loads the default credential chain and builds a client
func NewAWSStore(ctx context.Context, cfg AWSConfig, logger ports.Logger) (*AWSStore, error) {
	if logger == nil {
		logger = ports.NopLogger{}
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*secretsmanager.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	logger.Info("AWS Secrets Manager store initialized",
		ports.String("region", cfg.Region),
		ports.Duration("cache_ttl", cfg.CacheTTL))

	return newAWSStore(secretsmanager.NewFromConfig(awsCfg, clientOpts...), cfg.CacheTTL, logger), nil
}

func newAWSStore(client secretValueAPI, ttl time.Duration, logger ports.Logger) *AWSStore {
	return &AWSStore{client: client, logger: logger, cache: newSecretCache(ttl)}
}

// GetSecret fetches the current version of a secret by name or ARN
func (s *AWSStore) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := s.cache.get(path); cached != nil {
		return cached, nil
	}

	start := time.Now()
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(path),
	})
	if err != nil {
		var notFound *smtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", ports.ErrSecretNotFound, path)
		}
		s.logger.Error("failed to retrieve secret",
			ports.String("path", path),
			ports.Err(err))
		return nil, fmt.Errorf("failed to get secret %s: %w", path, err)
	}

	secret := &ports.Secret{
		Value:    aws.ToString(out.SecretString),
		Version:  aws.ToString(out.VersionId),
		Metadata: map[string]string{},
	}
	if out.CreatedDate != nil {
		secret.CreatedAt = out.CreatedDate.Format(time.RFC3339)
	}
	if out.ARN != nil {
		secret.Metadata["arn"] = *out.ARN
	}
	if out.Name != nil {
		secret.Metadata["name"] = *out.Name
	}

	s.logger.Debug("secret retrieved",
		ports.String("path", path),
		ports.Duration("elapsed", time.Since(start)))

	s.cache.set(path, secret)
	return secret, nil
}
