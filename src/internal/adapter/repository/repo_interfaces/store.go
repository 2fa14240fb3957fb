package repo_interfaces

import "context"

// Store groups the repositories that share one unit of work.
type Store interface {
	Accounts() AccountRepository
	Transfers() TransferRepository
	// WithinTransaction runs fn against a store bound to a single
	// transaction, committing when fn returns nil and rolling back otherwise.
	WithinTransaction(ctx context.Context, fn func(Store) error) error
}
