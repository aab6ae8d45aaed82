package ports

import "context"

// TxManager runs fn inside a single storage transaction. Repositories called
// with the ctx passed to fn take part in that transaction. A nested call joins
// the outer transaction. The transaction is rolled back when fn returns an error.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
