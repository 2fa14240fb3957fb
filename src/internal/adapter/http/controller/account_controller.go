package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/querybuilder"
	"github.com/go-chi/chi/v5"
)

type AccountService interface {
	Open(ctx context.Context, req domain.AccountOpening) (domain.Account, error)
	Close(ctx context.Context, accountNumber string) (domain.Account, error)
	Update(ctx context.Context, account domain.Account) (domain.Account, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error)
	SearchAccounts(ctx context.Context, query *querybuilder.SearchQuery) ([]domain.AccountResult, error)
}

type AccountController struct {
	service AccountService
}

func NewAccountController(service AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(r chi.Router) {
	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", c.searchAccounts)
		r.Post("/", c.openAccount)
		r.Put("/{accountNumber}", c.updateAccount)
		r.Delete("/{accountNumber}", c.closeAccount)
	})
}

func (c *AccountController) searchAccounts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	params := models.AccountSearchParamsFrom(r.URL.Query())
	logRequest(r, params)

	query, err := params.Query()
	if err != nil {
		fail[[]models.AccountResponse](w, r, "validation failed", err, start)
		return
	}

	results, err := c.service.SearchAccounts(r.Context(), query)
	if err != nil {
		fail[[]models.AccountResponse](w, r, "failed to search accounts", err, start)
		return
	}

	data := make([]models.AccountResponse, 0, len(results))
	for _, result := range results {
		data = append(data, models.NewAccountResultResponse(result))
	}
	respond(w, r, http.StatusOK, commons.SuccessResponse("accounts fetched successfully", data), start)
}

func (c *AccountController) openAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error()), start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		fail[models.AccountResponse](w, r, "validation failed", err, start)
		return
	}

	account, err := c.service.Open(r.Context(), req.Opening())
	if err != nil {
		fail[models.AccountResponse](w, r, "failed to open account", err, start)
		return
	}

	respond(w, r, http.StatusCreated, commons.SuccessResponse("account opened successfully", models.NewAccountResponse(account)), start)
}

func (c *AccountController) updateAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	accountNumber := chi.URLParam(r, "accountNumber")
	logRequest(r, nil)

	var req models.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		respond(w, r, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error()), start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		fail[models.AccountResponse](w, r, "validation failed", err, start)
		return
	}

	original, err := c.service.FindByAccountNumber(r.Context(), accountNumber)
	if err != nil {
		fail[models.AccountResponse](w, r, "account not found", err, start)
		return
	}

	updated, err := c.service.Update(r.Context(), req.Apply(original))
	if err != nil {
		fail[models.AccountResponse](w, r, "failed to update account", err, start)
		return
	}

	respond(w, r, http.StatusOK, commons.SuccessResponse("account updated successfully", models.NewAccountResponse(updated)), start)
}

func (c *AccountController) closeAccount(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	account, err := c.service.Close(r.Context(), chi.URLParam(r, "accountNumber"))
	if err != nil {
		fail[models.AccountResponse](w, r, "failed to close account", err, start)
		return
	}

	respond(w, r, http.StatusOK, commons.SuccessResponse("account closed successfully", models.NewAccountResponse(account)), start)
}
