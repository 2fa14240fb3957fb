package models

import (
	"net/url"
	"strings"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/querybuilder"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest opens an account. Only the currency is required; a
// missing account number is generated for the currency.
type CreateAccountRequest struct {
	AccountNumber string `json:"accountNumber,omitempty"`
	Currency      string `json:"currency"`
	Balance       string `json:"balance,omitempty"`
	Description   string `json:"description,omitempty"`
}

func (r CreateAccountRequest) Validate() error {
	var errs []string

	if _, err := domain.ParseCurrency(r.Currency); err != nil {
		errs = append(errs, "currency: "+validationMessage(err))
	}

	if balance := strings.TrimSpace(r.Balance); balance != "" {
		if _, err := decimal.NewFromString(balance); err != nil {
			errs = append(errs, "balance must be numeric")
		}
	}

	return validationFailure(errs)
}

// Opening converts a validated request.
func (r CreateAccountRequest) Opening() domain.AccountOpening {
	opening := domain.AccountOpening{
		AccountNumber: strings.TrimSpace(r.AccountNumber),
		Currency:      strings.TrimSpace(r.Currency),
		Description:   strings.TrimSpace(r.Description),
	}
	if balance := strings.TrimSpace(r.Balance); balance != "" {
		amount := decimal.RequireFromString(balance)
		opening.OpeningAmount = &amount
	}
	return opening
}

// UpdateAccountRequest changes an account's currency or status. Empty
// fields keep their stored values.
type UpdateAccountRequest struct {
	Currency string `json:"currency,omitempty"`
	Status   string `json:"status,omitempty"`
}

func (r UpdateAccountRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.Currency) == "" && strings.TrimSpace(r.Status) == "" {
		errs = append(errs, "currency or status is required")
	}
	if strings.TrimSpace(r.Currency) != "" {
		if _, err := domain.ParseCurrency(r.Currency); err != nil {
			errs = append(errs, "currency: "+validationMessage(err))
		}
	}
	if strings.TrimSpace(r.Status) != "" {
		if _, err := domain.ParseAccountStatus(r.Status); err != nil {
			errs = append(errs, "status: "+validationMessage(err))
		}
	}

	return validationFailure(errs)
}

// Apply lays the request over original.
func (r UpdateAccountRequest) Apply(original domain.Account) domain.Account {
	updated := original
	if currency, err := domain.ParseCurrency(r.Currency); err == nil {
		updated.Currency = currency
	}
	if status, err := domain.ParseAccountStatus(r.Status); err == nil {
		updated.Status = status
	}
	return updated
}

type AccountResponse struct {
	AccountNumber string `json:"accountNumber"`
	Currency      string `json:"currency"`
	OpenedOn      string `json:"openedOn"`
	Status        string `json:"status"`
	Balance       string `json:"balance"`
}

func NewAccountResponse(account domain.Account) AccountResponse {
	return AccountResponse{
		AccountNumber: account.AccountNumber,
		Currency:      account.Currency.String(),
		OpenedOn:      account.OpenedOn.Format(domain.DateLayout),
		Status:        string(account.Status),
		Balance:       account.Balance().String(),
	}
}

func NewAccountResultResponse(result domain.AccountResult) AccountResponse {
	return AccountResponse{
		AccountNumber: result.AccountNumber,
		Currency:      result.Currency.String(),
		OpenedOn:      result.OpenedOn.Format(domain.DateLayout),
		Status:        string(result.Status),
		Balance:       result.Balance.String(),
	}
}

// AccountSearchParams are the optional filters of GET /accounts.
type AccountSearchParams struct {
	AccountNumber string
	Currency      string
	Balance       string
	Status        string
	OrderBy       string
	SortOrder     string
}

func AccountSearchParamsFrom(values url.Values) AccountSearchParams {
	return AccountSearchParams{
		AccountNumber: strings.TrimSpace(firstNonEmpty(values.Get("accountNumber"), values.Get("ibanNumber"))),
		Currency:      strings.TrimSpace(values.Get("currency")),
		Balance:       strings.TrimSpace(values.Get("balance")),
		Status:        strings.TrimSpace(values.Get("status")),
		OrderBy:       strings.TrimSpace(values.Get("orderBy")),
		SortOrder:     strings.TrimSpace(values.Get("sortOrder")),
	}
}

// Query builds an account search with one equality condition per filter.
func (p AccountSearchParams) Query() (*querybuilder.SearchQuery, error) {
	query := querybuilder.NewAccountSearch()

	if p.AccountNumber != "" {
		if _, err := query.Where(querybuilder.FieldAccountNumber, querybuilder.Equals, domain.CleanAccountNumber(p.AccountNumber)); err != nil {
			return nil, err
		}
	}
	if p.Currency != "" {
		currency, err := domain.ParseCurrency(p.Currency)
		if err != nil {
			return nil, err
		}
		if _, err := query.Where(querybuilder.FieldCurrency, querybuilder.Equals, currency.String()); err != nil {
			return nil, err
		}
	}
	if p.Balance != "" {
		balance, err := decimal.NewFromString(p.Balance)
		if err != nil {
			return nil, validationFailure([]string{"balance must be numeric"})
		}
		if _, err := query.Where(querybuilder.FieldBalance, querybuilder.Equals, balance.String()); err != nil {
			return nil, err
		}
	}
	if p.Status != "" {
		status, err := domain.ParseAccountStatus(p.Status)
		if err != nil {
			return nil, err
		}
		if _, err := query.Where(querybuilder.FieldStatus, querybuilder.Equals, string(status)); err != nil {
			return nil, err
		}
	}

	if p.OrderBy != "" {
		if err := query.OrderBy(orderField(p.OrderBy), p.SortOrder); err != nil {
			return nil, err
		}
	}
	return query, nil
}

// orderField maps the legacy ibanNumber name; other names resolve through
// the field registry.
func orderField(name string) string {
	if strings.EqualFold(name, "ibanNumber") {
		return querybuilder.FieldAccountNumber
	}
	return name
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
