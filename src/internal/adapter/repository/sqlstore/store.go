package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/repo_interfaces"
	"github.com/jmoiron/sqlx"
)

var _ repo_interfaces.Store = (*Store)(nil)

// Store runs repositories against a database or, inside a unit of work,
// against the open transaction.
type Store struct {
	db      *sqlx.DB
	ext     sqlx.ExtContext
	dialect Dialect
}

func NewStore(db *sqlx.DB, dialect Dialect) *Store {
	return &Store{db: db, ext: db, dialect: dialect}
}

func (s *Store) Accounts() repo_interfaces.AccountRepository {
	return &AccountRepository{ext: s.ext, dialect: s.dialect}
}

func (s *Store) Transfers() repo_interfaces.TransferRepository {
	return &TransferRepository{ext: s.ext, dialect: s.dialect}
}

// WithinTransaction commits when fn succeeds. Calls made on a store that is
// already bound to a transaction join it.
func (s *Store) WithinTransaction(ctx context.Context, fn func(repo_interfaces.Store) error) (err error) {
	if s.db == nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	if err = fn(&Store{ext: tx, dialect: s.dialect}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

var errNoRowsAffected = errors.New("statement affected no rows")

// execRequiredRows fails with errNoRowsAffected when the statement touched
// no row.
func execRequiredRows(ctx context.Context, ext sqlx.ExtContext, query string, args ...any) (int64, error) {
	result, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("execute statement: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read rows affected: %w", err)
	}
	if rows == 0 {
		return 0, errNoRowsAffected
	}
	return rows, nil
}
