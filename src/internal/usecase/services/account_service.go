package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/api-sage/ledger-engine/src/internal/querybuilder"
	"github.com/api-sage/ledger-engine/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var _ service_interfaces.AccountService = (*AccountService)(nil)

const openingDescription = "Opening deposit"

type AccountService struct {
	store      repo_interfaces.Store
	taxWorkers int
}

// NewAccountService builds the ledger service. taxWorkers bounds how many
// accounts ApplyRate processes at once and is at least 1.
func NewAccountService(store repo_interfaces.Store, taxWorkers int) *AccountService {
	if taxWorkers < 1 {
		taxWorkers = 1
	}
	return &AccountService{store: store, taxWorkers: taxWorkers}
}

func (s *AccountService) Open(ctx context.Context, req domain.AccountOpening) (domain.Account, error) {
	logger.Info("account service open request", logger.Fields{
		"accountNumber": req.AccountNumber,
		"currency":      req.Currency,
	})

	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		logger.Error("account service open validation failed", err, nil)
		return domain.Account{}, err
	}

	accountNumber := domain.CleanAccountNumber(req.AccountNumber)
	if accountNumber == "" {
		accountNumber = domain.GenerateAccountNumber(currency)
	}
	if err := domain.ValidateIBAN(accountNumber); err != nil {
		logger.Error("account service open invalid account number", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return domain.Account{}, &commons.AccountCreationError{Message: "invalid account number " + accountNumber, Err: err}
	}

	account := domain.NewAccount(accountNumber, currency)
	account.ID = req.ID
	if req.OpeningAmount != nil {
		description := strings.TrimSpace(req.Description)
		if description == "" {
			description = openingDescription
		}
		account.Add(domain.NewTransaction(*req.OpeningAmount, description))
	}

	err = s.store.WithinTransaction(ctx, func(tx repo_interfaces.Store) error {
		return tx.Accounts().Create(ctx, &account)
	})
	if err != nil {
		logger.Error("account service open repository failed", err, logger.Fields{
			"accountId":     req.ID,
			"accountNumber": accountNumber,
		})
		if errors.Is(err, commons.ErrDuplicateRecord) {
			return domain.Account{}, &commons.AccountCreationError{Message: "account already exists", Err: err}
		}
		return domain.Account{}, &commons.AccountCreationError{Message: "unable to open account", Err: err}
	}

	logger.Info("account service open success", logger.Fields{
		"accountId":     account.ID,
		"accountNumber": account.AccountNumber,
		"currency":      account.Currency,
		"balance":       account.Balance().String(),
	})

	return account, nil
}

// Close soft-deletes the account. Its history is kept.
func (s *AccountService) Close(ctx context.Context, accountNumber string) (domain.Account, error) {
	accountNumber = domain.CleanAccountNumber(accountNumber)
	logger.Info("account service close request", logger.Fields{
		"accountNumber": accountNumber,
	})

	var closed domain.Account
	err := s.store.WithinTransaction(ctx, func(tx repo_interfaces.Store) error {
		account, err := tx.Accounts().FindByAccountNumber(ctx, accountNumber)
		if err != nil {
			if errors.Is(err, commons.ErrRecordNotFound) {
				return &commons.NotFoundError{Message: "account not found", ID: accountNumber}
			}
			return fmt.Errorf("find account: %w", err)
		}

		account.Status = domain.AccountStatusDeleted
		if err := tx.Accounts().Save(ctx, &account); err != nil {
			return fmt.Errorf("save account: %w", err)
		}
		closed = account
		return nil
	})
	if err != nil {
		logger.Error("account service close failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return domain.Account{}, err
	}

	logger.Info("account service close success", logger.Fields{
		"accountId":     closed.ID,
		"accountNumber": closed.AccountNumber,
	})
	return closed, nil
}

// Update copies currency and status from account onto the stored record,
// located by id first and account number second.
func (s *AccountService) Update(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("account service update request", logger.Fields{
		"accountId":     account.ID,
		"accountNumber": account.AccountNumber,
		"currency":      account.Currency,
		"status":        account.Status,
	})

	currency, err := domain.ParseCurrency(string(account.Currency))
	if err != nil {
		return domain.Account{}, err
	}
	status, err := domain.ParseAccountStatus(string(account.Status))
	if err != nil {
		return domain.Account{}, err
	}

	var updated domain.Account
	err = s.store.WithinTransaction(ctx, func(tx repo_interfaces.Store) error {
		original, err := s.findOriginal(ctx, tx, account)
		if err != nil {
			return err
		}

		original.Currency = currency
		original.Status = status
		if err := tx.Accounts().Save(ctx, &original); err != nil {
			return fmt.Errorf("save account: %w", err)
		}
		updated = original
		return nil
	})
	if err != nil {
		logger.Error("account service update failed", err, logger.Fields{
			"accountId":     account.ID,
			"accountNumber": account.AccountNumber,
		})
		return domain.Account{}, err
	}

	logger.Info("account service update success", logger.Fields{
		"accountId": updated.ID,
		"status":    updated.Status,
	})
	return updated, nil
}

func (s *AccountService) findOriginal(ctx context.Context, tx repo_interfaces.Store, account domain.Account) (domain.Account, error) {
	if account.ID != 0 {
		original, err := tx.Accounts().FindByID(ctx, account.ID)
		if err == nil {
			return original, nil
		}
		if !errors.Is(err, commons.ErrRecordNotFound) {
			return domain.Account{}, fmt.Errorf("find account by id: %w", err)
		}
	}

	accountNumber := domain.CleanAccountNumber(account.AccountNumber)
	if accountNumber != "" {
		original, err := tx.Accounts().FindByAccountNumber(ctx, accountNumber)
		if err == nil {
			return original, nil
		}
		if !errors.Is(err, commons.ErrRecordNotFound) {
			return domain.Account{}, fmt.Errorf("find account by number: %w", err)
		}
	}

	return domain.Account{}, commons.NewValidationError("account", "no existing account matches id %d or number %q", account.ID, accountNumber)
}

func (s *AccountService) FindByID(ctx context.Context, id int64) (domain.Account, error) {
	account, err := s.store.Accounts().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return domain.Account{}, &commons.NotFoundError{Message: "account not found", ID: fmt.Sprint(id)}
		}
		return domain.Account{}, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

func (s *AccountService) FindByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	accountNumber = domain.CleanAccountNumber(accountNumber)
	account, err := s.store.Accounts().FindByAccountNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return domain.Account{}, &commons.NotFoundError{Message: "account not found", ID: accountNumber}
		}
		return domain.Account{}, fmt.Errorf("find account: %w", err)
	}
	return account, nil
}

func (s *AccountService) SearchAccounts(ctx context.Context, query *querybuilder.SearchQuery) ([]domain.AccountResult, error) {
	if query == nil {
		query = querybuilder.NewAccountSearch()
	}
	if query.Kind() != querybuilder.AccountEntity {
		return nil, commons.NewValidationError("query", "expected an account search, got %s", query.Kind())
	}

	compiled := query.Compile()
	logger.Debug("account service search", logger.Fields{
		"sql":    compiled.SQL,
		"params": compiled.Params,
	})

	results, err := s.store.Accounts().SearchBy(ctx, compiled)
	if err != nil {
		logger.Error("account service search failed", err, nil)
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	return results, nil
}

// ApplyRate appends balance*rate to every account, each in its own unit of
// work. A failing account is logged and counted but does not stop the run.
func (s *AccountService) ApplyRate(ctx context.Context, rate decimal.Decimal) (domain.TaxRunSummary, error) {
	logger.Info("account service apply rate request", logger.Fields{
		"rate":    rate.String(),
		"workers": s.taxWorkers,
	})

	summary := domain.TaxRunSummary{Rate: rate}
	accounts, err := s.store.Accounts().FindAll(ctx)
	if err != nil {
		logger.Error("account service apply rate list accounts failed", err, nil)
		return summary, fmt.Errorf("list accounts: %w", err)
	}

	var processed, failed atomic.Int64
	var group errgroup.Group
	group.SetLimit(s.taxWorkers)

	for _, account := range accounts {
		if ctx.Err() != nil {
			break
		}

		accountID := account.ID
		group.Go(func() error {
			if err := s.applyRateToAccount(ctx, accountID, rate); err != nil {
				failed.Add(1)
				logger.Error("account service apply rate to account failed", err, logger.Fields{
					"accountId": accountID,
				})
				return nil
			}
			processed.Add(1)
			return nil
		})
	}
	_ = group.Wait()

	summary.Processed = int(processed.Load())
	summary.Failed = int(failed.Load())

	logger.Info("account service apply rate completed", logger.Fields{
		"rate":      rate.String(),
		"processed": summary.Processed,
		"failed":    summary.Failed,
	})

	return summary, ctx.Err()
}

func (s *AccountService) applyRateToAccount(ctx context.Context, accountID int64, rate decimal.Decimal) error {
	return s.store.WithinTransaction(ctx, func(tx repo_interfaces.Store) error {
		account, err := tx.Accounts().FindByID(ctx, accountID)
		if err != nil {
			return fmt.Errorf("find account: %w", err)
		}

		if !account.Add(domain.NewTransaction(account.Balance().Mul(rate), domain.TaxDescription)) {
			return nil
		}
		if err := tx.Accounts().Save(ctx, &account); err != nil {
			return fmt.Errorf("save account: %w", err)
		}
		return nil
	})
}
