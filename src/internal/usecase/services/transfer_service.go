package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/api-sage/ledger-engine/src/internal/querybuilder"
	"github.com/api-sage/ledger-engine/src/internal/usecase/service_interfaces"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var _ service_interfaces.TransferService = (*TransferService)(nil)

type TransferService struct {
	store     repo_interfaces.Store
	converter service_interfaces.CurrencyConverter
	now       func() time.Time
}

func NewTransferService(store repo_interfaces.Store, converter service_interfaces.CurrencyConverter) *TransferService {
	return &TransferService{
		store:     store,
		converter: converter,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateTransfer records a pending transfer between two distinct active
// accounts. No funds move until ExecuteTransfer. Amounts are not checked
// against the source balance, so accounts may go into debt.
func (s *TransferService) CreateTransfer(
	ctx context.Context,
	sourceID int64,
	destinationID int64,
	amount decimal.Decimal,
	description string,
	timestamp *time.Time,
) (domain.Transfer, error) {
	logger.Info("transfer service create request", logger.Fields{
		"sourceAccountId":      sourceID,
		"destinationAccountId": destinationID,
		"amount":               amount.String(),
	})

	transfer := domain.Transfer{
		Reference:            uuid.NewString(),
		SourceAccountID:      sourceID,
		DestinationAccountID: destinationID,
		Amount:               amount,
		Description:          description,
		Timestamp:            timestamp,
		Status:               domain.TransferStatusPending,
		CreatedAt:            s.now(),
	}

	err := s.store.WithinTransaction(ctx, func(tx repo_interfaces.Store) error {
		source, destination, err := loadParties(ctx, tx, sourceID, destinationID)
		if err != nil {
			return err
		}
		if source.ID == destination.ID {
			return commons.NewTransferError(commons.ErrSameAccount, "cannot transfer from account %d to itself", source.ID)
		}
		if err := ensureActive(source, destination); err != nil {
			return err
		}

		if err := tx.Transfers().Save(ctx, &transfer); err != nil {
			return fmt.Errorf("save transfer: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("transfer service create failed", err, logger.Fields{
			"sourceAccountId":      sourceID,
			"destinationAccountId": destinationID,
		})
		return domain.Transfer{}, err
	}

	logger.Info("transfer service create success", logger.Fields{
		"transferId": transfer.ID,
		"reference":  transfer.Reference,
	})
	return transfer, nil
}

// ExecuteTransfer moves the funds of a pending transfer: a debit of the full
// amount on the source and a converted credit on the destination. The
// pending to executed switch happens first, so a second call, concurrent or
// not, fails with ErrTransferAlreadyExecuted.
func (s *TransferService) ExecuteTransfer(ctx context.Context, id int64) (domain.Transfer, error) {
	logger.Info("transfer service execute request", logger.Fields{
		"transferId": id,
	})

	var executed domain.Transfer
	err := s.store.WithinTransaction(ctx, func(tx repo_interfaces.Store) error {
		transfer, err := tx.Transfers().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, commons.ErrRecordNotFound) {
				return commons.NewTransferError(commons.ErrTransferNotFound, "transfer %d not found", id)
			}
			return fmt.Errorf("find transfer: %w", err)
		}
		if transfer.IsExecuted() {
			return commons.NewTransferError(commons.ErrTransferAlreadyExecuted, "transfer %d", id)
		}

		transfer, err = tx.Transfers().MarkExecuted(ctx, id, s.now())
		if err != nil {
			if errors.Is(err, commons.ErrTransferAlreadyExecuted) {
				return commons.NewTransferError(commons.ErrTransferAlreadyExecuted, "transfer %d", id)
			}
			return fmt.Errorf("mark transfer executed: %w", err)
		}

		source, destination, err := loadParties(ctx, tx, transfer.SourceAccountID, transfer.DestinationAccountID)
		if err != nil {
			return err
		}
		if err := ensureActive(source, destination); err != nil {
			return err
		}

		credit, err := s.converter.Convert(transfer.Amount, source.Currency, destination.Currency)
		if err != nil {
			return fmt.Errorf("convert transfer amount: %w", err)
		}

		source.Add(domain.NewTransaction(transfer.Amount.Neg(), transfer.Description))
		destination.Add(domain.NewTransaction(credit, transfer.Description))

		if err := tx.Accounts().Save(ctx, &source); err != nil {
			return fmt.Errorf("save source account: %w", err)
		}
		if err := tx.Accounts().Save(ctx, &destination); err != nil {
			return fmt.Errorf("save destination account: %w", err)
		}

		executed = transfer
		return nil
	})
	if err != nil {
		logger.Error("transfer service execute failed", err, logger.Fields{
			"transferId": id,
		})
		return domain.Transfer{}, err
	}

	logger.Info("transfer service execute success", logger.Fields{
		"transferId": executed.ID,
		"reference":  executed.Reference,
		"executedAt": executed.Timestamp,
	})
	return executed, nil
}

func (s *TransferService) FindTransfer(ctx context.Context, id int64) (domain.Transfer, error) {
	transfer, err := s.store.Transfers().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return domain.Transfer{}, commons.NewTransferError(commons.ErrTransferNotFound, "transfer %d not found", id)
		}
		return domain.Transfer{}, fmt.Errorf("find transfer: %w", err)
	}
	return transfer, nil
}

func (s *TransferService) SearchTransfers(ctx context.Context, query *querybuilder.SearchQuery) ([]domain.TransferResult, error) {
	if query == nil {
		query = querybuilder.NewTransferSearch()
	}
	if query.Kind() != querybuilder.TransferEntity {
		return nil, commons.NewValidationError("query", "expected a transfer search, got %s", query.Kind())
	}

	compiled := query.Compile()
	logger.Debug("transfer service search", logger.Fields{
		"sql":    compiled.SQL,
		"params": compiled.Params,
	})

	results, err := s.store.Transfers().SearchBy(ctx, compiled)
	if err != nil {
		logger.Error("transfer service search failed", err, nil)
		return nil, fmt.Errorf("search transfers: %w", err)
	}
	return results, nil
}

func loadParties(ctx context.Context, tx repo_interfaces.Store, sourceID int64, destinationID int64) (domain.Account, domain.Account, error) {
	source, err := loadAccount(ctx, tx, sourceID, "source")
	if err != nil {
		return domain.Account{}, domain.Account{}, err
	}
	destination, err := loadAccount(ctx, tx, destinationID, "destination")
	if err != nil {
		return domain.Account{}, domain.Account{}, err
	}
	return source, destination, nil
}

func loadAccount(ctx context.Context, tx repo_interfaces.Store, id int64, role string) (domain.Account, error) {
	account, err := tx.Accounts().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, commons.ErrRecordNotFound) {
			return domain.Account{}, commons.NewTransferError(commons.ErrAccountNotFound, "%s account %d not found", role, id)
		}
		return domain.Account{}, fmt.Errorf("find %s account: %w", role, err)
	}
	return account, nil
}

func ensureActive(source domain.Account, destination domain.Account) error {
	if !source.IsActive() {
		return commons.NewTransferError(commons.ErrAccountNotActive, "source account %s is %s", source.AccountNumber, source.Status)
	}
	if !destination.IsActive() {
		return commons.NewTransferError(commons.ErrAccountNotActive, "destination account %s is %s", destination.AccountNumber, destination.Status)
	}
	return nil
}
