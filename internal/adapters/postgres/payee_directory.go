package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/kevin07696/payout-validation/internal/domain/ports"
)

const payeeExistsQuery = `SELECT EXISTS (SELECT 1 FROM payees WHERE id = $1 AND deleted_at IS NULL)`

// PayeeDirectory looks payees up in the payees table
type PayeeDirectory struct {
	db      DBTX
	timeout time.Duration
}

var _ ports.PayeeDirectory = (*PayeeDirectory)(nil)

// NewPayeeDirectory creates a directory over db. A zero timeout leaves the
// caller's deadline in charge.
func NewPayeeDirectory(db DBTX, timeout time.Duration) *PayeeDirectory {
	return &PayeeDirectory{db: db, timeout: timeout}
}

func (d *PayeeDirectory) Exists(ctx context.Context, payeeID string) (bool, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	var exists bool
	if err := d.db.QueryRow(ctx, payeeExistsQuery, payeeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("payee lookup %s: %w", payeeID, err)
	}
	return exists, nil
}
