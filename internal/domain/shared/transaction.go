package shared

import "context"

// TransactionManager runs a function inside a single database transaction.
// The callback receives a context carrying the transaction handle; repositories
// resolve their connection from that context, so every read and write inside
// the callback commits or rolls back together. Returning an error from the
// callback rolls the whole transaction back.
type TransactionManager interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
