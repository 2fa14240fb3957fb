package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/querybuilder"
	"github.com/shopspring/decimal"
)

func saveAccount(t *testing.T, store *memory.Store, number string, currency domain.Currency, amounts ...int64) domain.Account {
	t.Helper()

	account := domain.NewAccount(number, currency)
	for _, amount := range amounts {
		account.Add(domain.NewTransaction(decimal.NewFromInt(amount), "seed"))
	}
	if err := store.Accounts().Save(context.Background(), &account); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	return account
}

func TestAccountSaveAssignsIDsAndPersistsLedger(t *testing.T) {
	store := memory.NewStore()
	account := saveAccount(t, store, "GB82WEST12345698765432", domain.CurrencyGBP, 100, -40)

	if account.ID == 0 {
		t.Fatal("expected account id to be assigned")
	}
	for _, tx := range account.Transactions {
		if tx.ID == 0 || tx.AccountID != account.ID {
			t.Fatalf("expected persisted transaction, got %+v", tx)
		}
	}

	loaded, err := store.Accounts().FindByAccountNumber(context.Background(), account.AccountNumber)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !loaded.Balance().Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected balance 60, got %s", loaded.Balance())
	}

	loaded.Add(domain.NewTransaction(decimal.NewFromInt(5), "more"))
	if err := store.Accounts().Save(context.Background(), &loaded); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	reloaded, _ := store.Accounts().FindByID(context.Background(), account.ID)
	if len(reloaded.Transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(reloaded.Transactions))
	}
}

func TestAccountSaveRejectsDuplicateNumber(t *testing.T) {
	store := memory.NewStore()
	saveAccount(t, store, "GB82WEST12345698765432", domain.CurrencyGBP)

	duplicate := domain.NewAccount("GB82WEST12345698765432", domain.CurrencyGBP)
	err := store.Accounts().Save(context.Background(), &duplicate)
	if !errors.Is(err, commons.ErrDuplicateRecord) {
		t.Fatalf("expected duplicate record error, got %v", err)
	}
}

func TestFindByIDReturnsNotFound(t *testing.T) {
	store := memory.NewStore()
	if _, err := store.Accounts().FindByID(context.Background(), 42); !errors.Is(err, commons.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestWithinTransactionRollsBackOnError(t *testing.T) {
	store := memory.NewStore()
	account := saveAccount(t, store, "GB82WEST12345698765432", domain.CurrencyGBP, 10)

	boom := errors.New("boom")
	err := store.WithinTransaction(context.Background(), func(tx repo_interfaces.Store) error {
		loaded, err := tx.Accounts().FindByID(context.Background(), account.ID)
		if err != nil {
			return err
		}
		loaded.Status = domain.AccountStatusDisabled
		loaded.Add(domain.NewTransaction(decimal.NewFromInt(99), "lost"))
		if err := tx.Accounts().Save(context.Background(), &loaded); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	loaded, _ := store.Accounts().FindByID(context.Background(), account.ID)
	if loaded.Status != domain.AccountStatusActive || len(loaded.Transactions) != 1 {
		t.Fatalf("expected rollback, got status %s with %d transactions", loaded.Status, len(loaded.Transactions))
	}
}

func TestMarkExecutedIsCompareAndSet(t *testing.T) {
	store := memory.NewStore()
	transfer := domain.Transfer{Reference: "ref-1", SourceAccountID: 1, DestinationAccountID: 2, Amount: decimal.NewFromInt(5), Status: domain.TransferStatusPending}
	if err := store.Transfers().Save(context.Background(), &transfer); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	executed, err := store.Transfers().MarkExecuted(context.Background(), transfer.ID, at)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !executed.IsExecuted() || executed.Timestamp == nil || !executed.Timestamp.Equal(at) {
		t.Fatalf("expected executed transfer stamped at %s, got %+v", at, executed)
	}

	if _, err := store.Transfers().MarkExecuted(context.Background(), transfer.ID, at); !errors.Is(err, commons.ErrTransferAlreadyExecuted) {
		t.Fatalf("expected already executed error, got %v", err)
	}
}

func TestAccountSearchEvaluatesConditionsAndOrder(t *testing.T) {
	store := memory.NewStore()
	saveAccount(t, store, "GB82WEST12345698765432", domain.CurrencyGBP, 100)
	saveAccount(t, store, "DE89370400440532013000", domain.CurrencyEUR, 250)
	saveAccount(t, store, "NL91ABNA0417164300", domain.CurrencyEUR, 100)

	q := querybuilder.NewAccountSearch()
	if _, err := q.Where(querybuilder.FieldCurrency, querybuilder.Equals, "EUR"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := q.OrderBy(querybuilder.FieldBalance, "desc"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	rows, err := store.Accounts().SearchBy(context.Background(), q.Compile())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(rows) != 2 || rows[0].AccountNumber != "DE89370400440532013000" {
		t.Fatalf("expected EUR accounts ordered by balance, got %+v", rows)
	}

	q = querybuilder.NewAccountSearch()
	if _, err := q.Where(querybuilder.FieldBalance, querybuilder.Equals, "100.00"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	rows, _ = store.Accounts().SearchBy(context.Background(), q.Compile())
	if len(rows) != 2 {
		t.Fatalf("expected 2 accounts with balance 100, got %d", len(rows))
	}
}

func TestSearchRejectsWrongShape(t *testing.T) {
	store := memory.NewStore()
	if _, err := store.Accounts().SearchBy(context.Background(), querybuilder.NewTransferSearch().Compile()); err == nil {
		t.Fatal("expected error for transfer query on account repository")
	}
}

func TestAccountCreateRejectsTakenID(t *testing.T) {
	store := memory.NewStore()
	existing := saveAccount(t, store, "GB82WEST12345698765432", domain.CurrencyGBP, 100)

	clash := domain.NewAccount("DE89370400440532013000", domain.CurrencyEUR)
	clash.ID = existing.ID
	clash.Add(domain.NewTransaction(decimal.NewFromInt(50), "seed"))
	if err := store.Accounts().Create(context.Background(), &clash); !errors.Is(err, commons.ErrDuplicateRecord) {
		t.Fatalf("expected duplicate record error, got %v", err)
	}

	loaded, _ := store.Accounts().FindByID(context.Background(), existing.ID)
	if loaded.Currency != domain.CurrencyGBP || len(loaded.Transactions) != 1 {
		t.Fatalf("expected untouched GBP account, got %s with %d transactions", loaded.Currency, len(loaded.Transactions))
	}
	if _, err := store.Accounts().FindByAccountNumber(context.Background(), clash.AccountNumber); !errors.Is(err, commons.ErrRecordNotFound) {
		t.Fatalf("expected rejected number to stay unknown, got %v", err)
	}
}

func TestTransferSearchSortsPendingLast(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	source := saveAccount(t, store, "GB82WEST12345698765432", domain.CurrencyGBP, 100)
	destination := saveAccount(t, store, "DE89370400440532013000", domain.CurrencyEUR)

	ids := make([]int64, 0, 3)
	for _, reference := range []string{"early", "pending", "late"} {
		transfer := domain.Transfer{Reference: reference, SourceAccountID: source.ID, DestinationAccountID: destination.ID, Amount: decimal.NewFromInt(1), Status: domain.TransferStatusPending}
		if err := store.Transfers().Save(ctx, &transfer); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		ids = append(ids, transfer.ID)
	}
	early, pending, late := ids[0], ids[1], ids[2]
	if _, err := store.Transfers().MarkExecuted(ctx, early, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := store.Transfers().MarkExecuted(ctx, late, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	for direction, want := range map[string][]int64{
		"asc":  {early, late, pending},
		"desc": {late, early, pending},
	} {
		q := querybuilder.NewTransferSearch()
		if err := q.OrderBy(querybuilder.FieldTimestamp, direction); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		rows, err := store.Transfers().SearchBy(ctx, q.Compile())
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if len(rows) != len(want) {
			t.Fatalf("expected %d rows, got %d", len(want), len(rows))
		}
		for i, id := range want {
			if rows[i].TransferID != id {
				t.Fatalf("expected %s order %v, got row %d = %d", direction, want, i, rows[i].TransferID)
			}
		}
	}
}
