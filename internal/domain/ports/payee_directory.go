package ports

import "context"

// PayeeDirectory answers whether a payee is known to the system of record.
// The validation engine never calls it; request handlers consult it after the
// engine has produced a verdict.
type PayeeDirectory interface {
	Exists(ctx context.Context, payeeID string) (bool, error)
}
