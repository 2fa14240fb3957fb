package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/querybuilder"
	"github.com/api-sage/ledger-engine/src/internal/usecase/services"
	"github.com/shopspring/decimal"
)

func amountPtr(raw string) *decimal.Decimal {
	value := decimal.RequireFromString(raw)
	return &value
}

func openAccount(t *testing.T, svc *services.AccountService, currency string, opening string) domain.Account {
	t.Helper()

	req := domain.AccountOpening{Currency: currency}
	if opening != "" {
		req.OpeningAmount = amountPtr(opening)
	}
	account, err := svc.Open(context.Background(), req)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	return account
}

func TestAccountServiceOpenWithOpeningDeposit(t *testing.T) {
	svc := services.NewAccountService(memory.NewStore(), 1)

	account := openAccount(t, svc, "EUR", "100")

	if !account.Balance().Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected balance 100, got %s", account.Balance())
	}
	if account.Status != domain.AccountStatusActive {
		t.Fatalf("expected ACTIVE, got %s", account.Status)
	}
	if len(account.Transactions) != 1 || account.Transactions[0].Type != domain.TransactionTypeCredit {
		t.Fatalf("expected one CREDIT transaction, got %+v", account.Transactions)
	}
	if account.Transactions[0].Description != "Opening deposit" {
		t.Fatalf("expected opening description, got %q", account.Transactions[0].Description)
	}
	if err := domain.ValidateIBAN(account.AccountNumber); err != nil {
		t.Fatalf("expected generated account number to be valid, got %v", err)
	}
}

func TestAccountServiceOpenSkipsZeroOpeningAmount(t *testing.T) {
	svc := services.NewAccountService(memory.NewStore(), 1)

	account := openAccount(t, svc, "GBP", "0")
	if len(account.Transactions) != 0 {
		t.Fatalf("expected no transactions, got %d", len(account.Transactions))
	}
}

func TestAccountServiceOpenCleansGivenNumber(t *testing.T) {
	svc := services.NewAccountService(memory.NewStore(), 1)

	account, err := svc.Open(context.Background(), domain.AccountOpening{
		AccountNumber: "GB82 WEST 1234 5698 7654 32",
		Currency:      "GBP",
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if account.AccountNumber != "GB82WEST12345698765432" {
		t.Fatalf("expected cleaned number, got %s", account.AccountNumber)
	}
}

func TestAccountServiceOpenFailures(t *testing.T) {
	svc := services.NewAccountService(memory.NewStore(), 1)

	var validationErr *commons.ValidationError
	if _, err := svc.Open(context.Background(), domain.AccountOpening{Currency: "NGN"}); !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var creationErr *commons.AccountCreationError
	_, err := svc.Open(context.Background(), domain.AccountOpening{AccountNumber: "GB00WEST12345698765432", Currency: "GBP"})
	if !errors.As(err, &creationErr) {
		t.Fatalf("expected account creation error for bad checksum, got %v", err)
	}

	if _, err := svc.Open(context.Background(), domain.AccountOpening{AccountNumber: "GB82WEST12345698765432", Currency: "GBP"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	_, err = svc.Open(context.Background(), domain.AccountOpening{AccountNumber: "GB82WEST12345698765432", Currency: "GBP"})
	if !errors.As(err, &creationErr) || !errors.Is(err, commons.ErrDuplicateRecord) {
		t.Fatalf("expected account creation error wrapping duplicate, got %v", err)
	}
}

func TestAccountServiceOpenRejectsTakenID(t *testing.T) {
	svc := services.NewAccountService(memory.NewStore(), 1)
	ctx := context.Background()

	first, err := svc.Open(ctx, domain.AccountOpening{ID: 1, Currency: "EUR", OpeningAmount: amountPtr("100")})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	var creationErr *commons.AccountCreationError
	_, err = svc.Open(ctx, domain.AccountOpening{ID: 1, Currency: "GBP", OpeningAmount: amountPtr("50")})
	if !errors.As(err, &creationErr) || !errors.Is(err, commons.ErrDuplicateRecord) {
		t.Fatalf("expected account creation error wrapping duplicate, got %v", err)
	}

	stored, err := svc.FindByID(ctx, 1)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if stored.AccountNumber != first.AccountNumber || stored.Currency != domain.CurrencyEUR {
		t.Fatalf("expected untouched EUR account %s, got %s %s", first.AccountNumber, stored.AccountNumber, stored.Currency)
	}
	if len(stored.Transactions) != 1 || !stored.Balance().Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected single 100 deposit, got %s over %d transactions", stored.Balance(), len(stored.Transactions))
	}
}

func TestAccountServiceCloseSoftDeletes(t *testing.T) {
	svc := services.NewAccountService(memory.NewStore(), 1)
	account := openAccount(t, svc, "SEK", "50")

	closed, err := svc.Close(context.Background(), account.AccountNumber)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if closed.Status != domain.AccountStatusDeleted {
		t.Fatalf("expected DELETED, got %s", closed.Status)
	}
	if len(closed.Transactions) != 1 {
		t.Fatalf("expected history to be kept, got %d transactions", len(closed.Transactions))
	}

	var notFound *commons.NotFoundError
	if _, err := svc.Close(context.Background(), "SE4550000000058398257466"); !errors.As(err, &notFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestAccountServiceUpdateOnlyTouchesCurrencyAndStatus(t *testing.T) {
	svc := services.NewAccountService(memory.NewStore(), 1)
	account := openAccount(t, svc, "EUR", "10")

	updated, err := svc.Update(context.Background(), domain.Account{
		AccountNumber: account.AccountNumber,
		Currency:      domain.CurrencyCHF,
		Status:        domain.AccountStatusDisabled,
		Transactions:  []domain.Transaction{domain.NewTransaction(decimal.NewFromInt(1000), "ignored")},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if updated.ID != account.ID || updated.Currency != domain.CurrencyCHF || updated.Status != domain.AccountStatusDisabled {
		t.Fatalf("expected currency and status change on account %d, got %+v", account.ID, updated)
	}
	if !updated.Balance().Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected balance to stay 10, got %s", updated.Balance())
	}

	var validationErr *commons.ValidationError
	_, err = svc.Update(context.Background(), domain.Account{ID: 999, Currency: domain.CurrencyEUR, Status: domain.AccountStatusActive})
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error for missing original, got %v", err)
	}
}

func TestAccountServiceSearchAccounts(t *testing.T) {
	svc := services.NewAccountService(memory.NewStore(), 1)
	openAccount(t, svc, "EUR", "100")
	openAccount(t, svc, "EUR", "5")
	openAccount(t, svc, "GBP", "100")

	q := querybuilder.NewAccountSearch()
	if _, err := q.Where("balance", querybuilder.Equals, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := q.Where("currency", querybuilder.NotEquals, "GBP"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	rows, err := svc.SearchAccounts(context.Background(), q)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(rows) != 1 || rows[0].Currency != domain.CurrencyEUR {
		t.Fatalf("expected one EUR account with balance 100, got %+v", rows)
	}

	if _, err := svc.SearchAccounts(context.Background(), querybuilder.NewTransferSearch()); err == nil {
		t.Fatal("expected error for transfer search")
	}
}

func TestAccountServiceApplyRate(t *testing.T) {
	store := memory.NewStore()
	svc := services.NewAccountService(store, 3)
	first := openAccount(t, svc, "EUR", "200")
	second := openAccount(t, svc, "USD", "-50")
	empty := openAccount(t, svc, "DKK", "")

	summary, err := svc.ApplyRate(context.Background(), decimal.RequireFromString("-0.01"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if summary.Processed != 3 || summary.Failed != 0 {
		t.Fatalf("expected 3 processed, got %+v", summary)
	}

	loaded, _ := svc.FindByID(context.Background(), first.ID)
	if !loaded.Balance().Equal(decimal.NewFromInt(198)) || len(loaded.Transactions) != 2 {
		t.Fatalf("expected balance 198 after tax, got %s", loaded.Balance())
	}
	if loaded.Transactions[1].Description != domain.TaxDescription {
		t.Fatalf("expected tax description, got %q", loaded.Transactions[1].Description)
	}

	loaded, _ = svc.FindByID(context.Background(), second.ID)
	if !loaded.Balance().Equal(decimal.RequireFromString("-49.5")) {
		t.Fatalf("expected balance -49.5 after tax, got %s", loaded.Balance())
	}

	loaded, _ = svc.FindByID(context.Background(), empty.ID)
	if len(loaded.Transactions) != 0 {
		t.Fatalf("expected zero tax to be skipped, got %d transactions", len(loaded.Transactions))
	}
}

// failingStore fails every Save of one account, inside or outside a unit of work.
type failingStore struct {
	repo_interfaces.Store
	failID int64
}

func (s failingStore) Accounts() repo_interfaces.AccountRepository {
	return failingAccounts{AccountRepository: s.Store.Accounts(), failID: s.failID}
}

func (s failingStore) WithinTransaction(ctx context.Context, fn func(repo_interfaces.Store) error) error {
	return s.Store.WithinTransaction(ctx, func(tx repo_interfaces.Store) error {
		return fn(failingStore{Store: tx, failID: s.failID})
	})
}

type failingAccounts struct {
	repo_interfaces.AccountRepository
	failID int64
}

func (r failingAccounts) Save(ctx context.Context, account *domain.Account) error {
	if account.ID == r.failID {
		return errors.New("disk full")
	}
	return r.AccountRepository.Save(ctx, account)
}

func TestAccountServiceApplyRateContinuesPastFailures(t *testing.T) {
	store := memory.NewStore()
	seed := services.NewAccountService(store, 1)
	first := openAccount(t, seed, "EUR", "100")
	broken := openAccount(t, seed, "EUR", "100")
	last := openAccount(t, seed, "EUR", "100")

	svc := services.NewAccountService(failingStore{Store: store, failID: broken.ID}, 2)
	summary, err := svc.ApplyRate(context.Background(), decimal.RequireFromString("0.1"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if summary.Processed != 2 || summary.Failed != 1 {
		t.Fatalf("expected 2 processed and 1 failed, got %+v", summary)
	}

	for _, id := range []int64{first.ID, last.ID} {
		loaded, _ := seed.FindByID(context.Background(), id)
		if !loaded.Balance().Equal(decimal.NewFromInt(110)) {
			t.Fatalf("expected account %d balance 110, got %s", id, loaded.Balance())
		}
	}
	loaded, _ := seed.FindByID(context.Background(), broken.ID)
	if !loaded.Balance().Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected failed account to keep balance 100, got %s", loaded.Balance())
	}
}
