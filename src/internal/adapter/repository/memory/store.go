package memory

import (
	"context"
	"sync"

	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-engine/src/internal/domain"
)

var _ repo_interfaces.Store = (*Store)(nil)

// dataset keeps transactions apart from their accounts, keyed by account id.
type dataset struct {
	mu           sync.RWMutex
	accounts     map[int64]domain.Account
	numbers      map[string]int64
	transactions map[int64][]domain.Transaction
	transfers    map[int64]domain.Transfer
	references   map[string]int64
	nextAccount  int64
	nextEntry    int64
	nextTransfer int64
}

func newDataset() *dataset {
	return &dataset{
		accounts:     make(map[int64]domain.Account),
		numbers:      make(map[string]int64),
		transactions: make(map[int64][]domain.Transaction),
		transfers:    make(map[int64]domain.Transfer),
		references:   make(map[string]int64),
	}
}

func (d *dataset) clone() *dataset {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := newDataset()
	for id, account := range d.accounts {
		out.accounts[id] = account
	}
	for number, id := range d.numbers {
		out.numbers[number] = id
	}
	for id, entries := range d.transactions {
		out.transactions[id] = append([]domain.Transaction(nil), entries...)
	}
	for id, transfer := range d.transfers {
		out.transfers[id] = transfer
	}
	for reference, id := range d.references {
		out.references[reference] = id
	}
	out.nextAccount = d.nextAccount
	out.nextEntry = d.nextEntry
	out.nextTransfer = d.nextTransfer
	return out
}

func (d *dataset) restore(from *dataset) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.accounts = from.accounts
	d.numbers = from.numbers
	d.transactions = from.transactions
	d.transfers = from.transfers
	d.references = from.references
	d.nextAccount = from.nextAccount
	d.nextEntry = from.nextEntry
	d.nextTransfer = from.nextTransfer
}

// Store keeps everything in process memory. Units of work are serialised
// and a failed one is rolled back by restoring a snapshot.
type Store struct {
	txMu sync.Mutex
	data *dataset
}

func NewStore() *Store {
	return &Store{data: newDataset()}
}

func (s *Store) Accounts() repo_interfaces.AccountRepository {
	return &AccountRepository{data: s.data}
}

func (s *Store) Transfers() repo_interfaces.TransferRepository {
	return &TransferRepository{data: s.data}
}

func (s *Store) WithinTransaction(ctx context.Context, fn func(repo_interfaces.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.data.clone()
	if err := fn(txStore{data: s.data}); err != nil {
		s.data.restore(snapshot)
		return err
	}
	return nil
}

// txStore is the view handed to a unit of work. Nested calls join it.
type txStore struct {
	data *dataset
}

func (t txStore) Accounts() repo_interfaces.AccountRepository {
	return &AccountRepository{data: t.data}
}

func (t txStore) Transfers() repo_interfaces.TransferRepository {
	return &TransferRepository{data: t.data}
}

func (t txStore) WithinTransaction(_ context.Context, fn func(repo_interfaces.Store) error) error {
	return fn(t)
}
