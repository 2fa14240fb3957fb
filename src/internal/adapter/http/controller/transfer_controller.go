package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/querybuilder"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type TransferService interface {
	CreateTransfer(ctx context.Context, sourceID int64, destinationID int64, amount decimal.Decimal, description string, timestamp *time.Time) (domain.Transfer, error)
	ExecuteTransfer(ctx context.Context, id int64) (domain.Transfer, error)
	SearchTransfers(ctx context.Context, query *querybuilder.SearchQuery) ([]domain.TransferResult, error)
}

// AccountLookup resolves the account numbers shown on transfer responses.
type AccountLookup interface {
	FindByID(ctx context.Context, id int64) (domain.Account, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error)
}

type TransferController struct {
	service  TransferService
	accounts AccountLookup
}

func NewTransferController(service TransferService, accounts AccountLookup) *TransferController {
	return &TransferController{service: service, accounts: accounts}
}

func (c *TransferController) RegisterRoutes(r chi.Router) {
	r.Route("/transfers", func(r chi.Router) {
		r.Get("/", c.searchTransfers)
		r.Post("/", c.createTransfer)
		r.Put("/{transferId}/execute", c.executeTransfer)
	})
}

func (c *TransferController) searchTransfers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	params := models.TransferSearchParamsFrom(r.URL.Query())
	logRequest(r, params)

	query, err := params.Query()
	if err != nil {
		fail[[]models.TransferResponse](w, r, "validation failed", err, start)
		return
	}

	results, err := c.service.SearchTransfers(r.Context(), query)
	if err != nil {
		fail[[]models.TransferResponse](w, r, "failed to search transfers", err, start)
		return
	}

	data := make([]models.TransferResponse, 0, len(results))
	for _, result := range results {
		data = append(data, models.NewTransferResultResponse(result))
	}
	respond(w, r, http.StatusOK, commons.SuccessResponse("transfers fetched successfully", data), start)
}

func (c *TransferController) createTransfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	var req models.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.TransferResponse]("invalid request body", err.Error()), start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		fail[models.TransferResponse](w, r, "validation failed", err, start)
		return
	}
	timestamp, _ := req.Timestamp()

	source, err := c.accounts.FindByAccountNumber(r.Context(), req.Source)
	if err != nil {
		fail[models.TransferResponse](w, r, "source account not found", err, start)
		return
	}
	destination, err := c.accounts.FindByAccountNumber(r.Context(), req.Destination)
	if err != nil {
		fail[models.TransferResponse](w, r, "destination account not found", err, start)
		return
	}

	transfer, err := c.service.CreateTransfer(r.Context(), source.ID, destination.ID, req.Amount, req.Description, timestamp)
	if err != nil {
		fail[models.TransferResponse](w, r, "failed to create transfer", err, start)
		return
	}

	response := models.NewTransferResponse(transfer, source.AccountNumber, destination.AccountNumber)
	respond(w, r, http.StatusCreated, commons.SuccessResponse("transfer created successfully", response), start)
}

func (c *TransferController) executeTransfer(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	id, err := strconv.ParseInt(chi.URLParam(r, "transferId"), 10, 64)
	if err != nil {
		fail[models.TransferResponse](w, r, "validation failed", commons.NewValidationError("transferId", "transferId must be numeric"), start)
		return
	}

	transfer, err := c.service.ExecuteTransfer(r.Context(), id)
	if err != nil {
		fail[models.TransferResponse](w, r, "failed to execute transfer", err, start)
		return
	}

	source, err := c.accounts.FindByID(r.Context(), transfer.SourceAccountID)
	if err != nil {
		fail[models.TransferResponse](w, r, "source account not found", err, start)
		return
	}
	destination, err := c.accounts.FindByID(r.Context(), transfer.DestinationAccountID)
	if err != nil {
		fail[models.TransferResponse](w, r, "destination account not found", err, start)
		return
	}

	response := models.NewTransferResponse(transfer, source.AccountNumber, destination.AccountNumber)
	respond(w, r, http.StatusOK, commons.SuccessResponse("transfer executed successfully", response), start)
}
