package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/kevin07696/payout-validation/internal/domain"
	"github.com/kevin07696/payout-validation/internal/domain/ports"
	"github.com/kevin07696/payout-validation/pkg/observability"
	"github.com/kevin07696/payout-validation/pkg/resilience"
)

// DirectoryCheck verifies payees against a system of record after the engine
// has produced its verdict. The engine itself never does I/O.
type DirectoryCheck struct {
	directory ports.PayeeDirectory
	logger    ports.Logger
	timeouts  *resilience.TimeoutConfig
	backoff   resilience.BackoffStrategy
	attempts  int
}

// NewDirectoryCheck wraps directory with per-lookup timeouts and retries
func NewDirectoryCheck(directory ports.PayeeDirectory, logger ports.Logger, timeouts *resilience.TimeoutConfig, backoff resilience.BackoffStrategy, attempts int) *DirectoryCheck {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	if timeouts == nil {
		timeouts = resilience.DefaultTimeoutConfig()
	}
	if backoff == nil {
		backoff = resilience.DirectoryBackoff()
	}
	return &DirectoryCheck{
		directory: directory,
		logger:    logger,
		timeouts:  timeouts,
		backoff:   backoff,
		attempts:  attempts,
	}
}

// Apply looks up each distinct payee once. Unknown payees become errors on
// result; the first failed lookup adds one warning and ends the pass.
func (c *DirectoryCheck) Apply(ctx context.Context, batch *domain.PayoutBatch, result *domain.ValidationResult) {
	if c == nil || c.directory == nil || batch == nil {
		return
	}

	seen := make(map[string]struct{}, len(batch.Payouts))
	for i := range batch.Payouts {
		id := batch.Payouts[i].PayeeID
		if strings.TrimSpace(id) == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		field := fmt.Sprintf("payouts[%d].payee_id", i)
		exists, err := c.lookup(ctx, id)
		if err != nil {
			observability.RecordPayeeLookup("error")
			c.logger.Warn("payee directory unavailable",
				ports.String("batch_id", batch.ID),
				ports.String("payee_id", id),
				ports.Err(err))
			result.AddWarning(domain.CodePayeeLookupUnavailable,
				fmt.Sprintf("payee directory unavailable, payee %s and later payees were not verified", id),
				field, domain.SeverityWarning)
			return
		}
		if !exists {
			observability.RecordPayeeLookup("not_found")
			result.AddError(domain.CodePayeeNotFound, fmt.Sprintf("payee %s is not registered", id), field)
			continue
		}
		observability.RecordPayeeLookup("found")
	}
}

func (c *DirectoryCheck) lookup(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := resilience.Retry(ctx, c.backoff, c.attempts, nil, func(ctx context.Context) error {
		lookupCtx, cancel := c.timeouts.PayeeLookupContext(ctx)
		defer cancel()
		found, err := c.directory.Exists(lookupCtx, id)
		if err != nil {
			return err
		}
		exists = found
		return nil
	})
	if err != nil {
		return false, domain.WrapError(domain.ErrorCodePayeeLookupFailed, "payee lookup failed", err)
	}
	return exists, nil
}
