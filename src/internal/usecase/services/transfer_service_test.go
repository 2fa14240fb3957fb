package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/querybuilder"
	"github.com/api-sage/ledger-engine/src/internal/usecase/services"
	"github.com/shopspring/decimal"
)

type engine struct {
	accounts  *services.AccountService
	transfers *services.TransferService
}

func newEngine(rates domain.RateTable) engine {
	store := memory.NewStore()
	return engine{
		accounts:  services.NewAccountService(store, 1),
		transfers: services.NewTransferService(store, services.NewFixedRateConverter(rates)),
	}
}

func expectTransferError(t *testing.T, err error, target error) {
	t.Helper()

	var transferErr *commons.TransferError
	if !errors.As(err, &transferErr) {
		t.Fatalf("expected transfer error, got %v", err)
	}
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

func TestCreateTransferRejectsSameAccount(t *testing.T) {
	e := newEngine(domain.DefaultRateTable())
	account := openAccount(t, e.accounts, "EUR", "10")

	_, err := e.transfers.CreateTransfer(context.Background(), account.ID, account.ID, decimal.NewFromInt(1), "self", nil)
	expectTransferError(t, err, commons.ErrSameAccount)
}

func TestCreateTransferRejectsInactiveAccounts(t *testing.T) {
	e := newEngine(domain.DefaultRateTable())
	source := openAccount(t, e.accounts, "EUR", "10")
	destination := openAccount(t, e.accounts, "EUR", "")

	if _, err := e.accounts.Update(context.Background(), domain.Account{ID: destination.ID, Currency: domain.CurrencyEUR, Status: domain.AccountStatusDisabled}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	_, err := e.transfers.CreateTransfer(context.Background(), source.ID, destination.ID, decimal.NewFromInt(1), "", nil)
	expectTransferError(t, err, commons.ErrAccountNotActive)

	if _, err := e.accounts.Close(context.Background(), source.AccountNumber); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	_, err = e.transfers.CreateTransfer(context.Background(), source.ID, destination.ID, decimal.NewFromInt(1), "", nil)
	expectTransferError(t, err, commons.ErrAccountNotActive)
}

func TestCreateTransferRejectsUnknownAccount(t *testing.T) {
	e := newEngine(domain.DefaultRateTable())
	source := openAccount(t, e.accounts, "EUR", "10")

	_, err := e.transfers.CreateTransfer(context.Background(), source.ID, 404, decimal.NewFromInt(1), "", nil)
	expectTransferError(t, err, commons.ErrAccountNotFound)
}

func TestCreateTransferDoesNotMoveFunds(t *testing.T) {
	e := newEngine(domain.DefaultRateTable())
	source := openAccount(t, e.accounts, "EUR", "10")
	destination := openAccount(t, e.accounts, "EUR", "")

	transfer, err := e.transfers.CreateTransfer(context.Background(), source.ID, destination.ID, decimal.NewFromInt(50), "more than balance", nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if transfer.ID == 0 || transfer.Reference == "" || transfer.Status != domain.TransferStatusPending || transfer.Timestamp != nil {
		t.Fatalf("expected pending transfer with id and reference, got %+v", transfer)
	}

	loaded, _ := e.accounts.FindByID(context.Background(), source.ID)
	if !loaded.Balance().Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected untouched balance 10, got %s", loaded.Balance())
	}
}

func TestExecuteTransferConvertsCurrency(t *testing.T) {
	e := newEngine(domain.DefaultRateTable())
	source := openAccount(t, e.accounts, "EUR", "1000")
	destination := openAccount(t, e.accounts, "GBP", "")

	transfer, err := e.transfers.CreateTransfer(context.Background(), source.ID, destination.ID, decimal.NewFromInt(700), "rent", nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	executed, err := e.transfers.ExecuteTransfer(context.Background(), transfer.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	src, _ := e.accounts.FindByID(context.Background(), source.ID)
	if !src.Balance().Equal(decimal.NewFromInt(300)) || len(src.Transactions) != 2 {
		t.Fatalf("expected source balance 300 over 2 transactions, got %s over %d", src.Balance(), len(src.Transactions))
	}
	if src.Transactions[1].Type != domain.TransactionTypeDebit {
		t.Fatalf("expected debit on source, got %s", src.Transactions[1].Type)
	}

	dst, _ := e.accounts.FindByID(context.Background(), destination.ID)
	if !dst.Balance().Equal(decimal.RequireFromString("623.00")) || len(dst.Transactions) != 1 {
		t.Fatalf("expected destination balance 623.00 over 1 transaction, got %s over %d", dst.Balance(), len(dst.Transactions))
	}

	if executed.Timestamp == nil {
		t.Fatal("expected execution timestamp")
	}
	today := time.Now().UTC().Format("2006-01-02")
	if executed.Timestamp.UTC().Format("2006-01-02") != today {
		t.Fatalf("expected timestamp on %s, got %s", today, executed.Timestamp)
	}
	if !executed.IsExecuted() {
		t.Fatalf("expected EXECUTED, got %s", executed.Status)
	}
}

func TestExecuteTransferKeepsGivenTimestamp(t *testing.T) {
	e := newEngine(domain.DefaultRateTable())
	source := openAccount(t, e.accounts, "CHF", "10")
	destination := openAccount(t, e.accounts, "CHF", "")

	at := time.Date(2019, 5, 4, 12, 30, 0, 0, time.UTC)
	transfer, err := e.transfers.CreateTransfer(context.Background(), source.ID, destination.ID, decimal.NewFromInt(4), "", &at)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	executed, err := e.transfers.ExecuteTransfer(context.Background(), transfer.ID)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !executed.Timestamp.Equal(at) {
		t.Fatalf("expected timestamp %s, got %s", at, executed.Timestamp)
	}

	dst, _ := e.accounts.FindByID(context.Background(), destination.ID)
	if !dst.Balance().Equal(decimal.NewFromInt(4)) {
		t.Fatalf("expected same-currency credit of 4, got %s", dst.Balance())
	}
}

func TestExecuteTransferTwiceIsRejected(t *testing.T) {
	e := newEngine(domain.DefaultRateTable())
	source := openAccount(t, e.accounts, "EUR", "100")
	destination := openAccount(t, e.accounts, "EUR", "")

	transfer, _ := e.transfers.CreateTransfer(context.Background(), source.ID, destination.ID, decimal.NewFromInt(30), "", nil)
	if _, err := e.transfers.ExecuteTransfer(context.Background(), transfer.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	_, err := e.transfers.ExecuteTransfer(context.Background(), transfer.ID)
	expectTransferError(t, err, commons.ErrTransferAlreadyExecuted)

	src, _ := e.accounts.FindByID(context.Background(), source.ID)
	if !src.Balance().Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected single debit leaving 70, got %s", src.Balance())
	}
}

func TestExecuteTransferConcurrentCallsApplyOnce(t *testing.T) {
	e := newEngine(domain.DefaultRateTable())
	source := openAccount(t, e.accounts, "EUR", "100")
	destination := openAccount(t, e.accounts, "EUR", "")
	transfer, _ := e.transfers.CreateTransfer(context.Background(), source.ID, destination.ID, decimal.NewFromInt(10), "", nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.transfers.ExecuteTransfer(context.Background(), transfer.ID); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly one successful execution, got %d", succeeded)
	}
	dst, _ := e.accounts.FindByID(context.Background(), destination.ID)
	if !dst.Balance().Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected single credit of 10, got %s", dst.Balance())
	}
}

func TestExecuteTransferUnknownID(t *testing.T) {
	e := newEngine(domain.DefaultRateTable())
	_, err := e.transfers.ExecuteTransfer(context.Background(), 77)
	expectTransferError(t, err, commons.ErrTransferNotFound)
}

func TestExecuteTransferRechecksActivity(t *testing.T) {
	e := newEngine(domain.DefaultRateTable())
	source := openAccount(t, e.accounts, "EUR", "100")
	destination := openAccount(t, e.accounts, "EUR", "")
	transfer, _ := e.transfers.CreateTransfer(context.Background(), source.ID, destination.ID, decimal.NewFromInt(10), "", nil)

	if _, err := e.accounts.Close(context.Background(), destination.AccountNumber); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	_, err := e.transfers.ExecuteTransfer(context.Background(), transfer.ID)
	expectTransferError(t, err, commons.ErrAccountNotActive)

	pending, _ := e.transfers.FindTransfer(context.Background(), transfer.ID)
	if pending.IsExecuted() {
		t.Fatal("expected transfer to stay pending after failed execution")
	}
}

func TestExecuteTransferMissingRateRollsBack(t *testing.T) {
	e := newEngine(domain.RateTable{})
	source := openAccount(t, e.accounts, "EUR", "100")
	destination := openAccount(t, e.accounts, "SEK", "")
	transfer, _ := e.transfers.CreateTransfer(context.Background(), source.ID, destination.ID, decimal.NewFromInt(10), "", nil)

	_, err := e.transfers.ExecuteTransfer(context.Background(), transfer.ID)
	var conversionErr *commons.ConversionError
	if !errors.As(err, &conversionErr) || !errors.Is(err, commons.ErrRateNotFound) {
		t.Fatalf("expected conversion error, got %v", err)
	}

	src, _ := e.accounts.FindByID(context.Background(), source.ID)
	if !src.Balance().Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected untouched source balance, got %s", src.Balance())
	}
	pending, _ := e.transfers.FindTransfer(context.Background(), transfer.ID)
	if pending.IsExecuted() {
		t.Fatal("expected transfer to stay pending")
	}
}

func TestSearchTransfers(t *testing.T) {
	e := newEngine(domain.DefaultRateTable())
	source := openAccount(t, e.accounts, "EUR", "100")
	first := openAccount(t, e.accounts, "EUR", "")
	second := openAccount(t, e.accounts, "EUR", "")

	executed, _ := e.transfers.CreateTransfer(context.Background(), source.ID, first.ID, decimal.NewFromInt(1), "", nil)
	if _, err := e.transfers.CreateTransfer(context.Background(), source.ID, second.ID, decimal.NewFromInt(2), "", nil); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if _, err := e.transfers.ExecuteTransfer(context.Background(), executed.ID); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	q := querybuilder.NewTransferSearch()
	if _, err := q.Where(querybuilder.FieldSource, querybuilder.Equals, source.AccountNumber); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := q.OrderBy(querybuilder.FieldTimestamp, "asc"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	rows, err := e.transfers.SearchTransfers(context.Background(), q)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(rows))
	}
	if rows[0].TransferID != executed.ID || rows[0].ExecutedAt == nil || rows[1].ExecutedAt != nil {
		t.Fatalf("expected executed transfer first and pending last, got %+v", rows)
	}
	if rows[0].DestinationAccountNumber != first.AccountNumber {
		t.Fatalf("expected destination %s, got %s", first.AccountNumber, rows[0].DestinationAccountNumber)
	}
}
