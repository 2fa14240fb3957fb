package models

import (
	"net/url"
	"strings"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/querybuilder"
	"github.com/shopspring/decimal"
)

// CreateTransferRequest plans a transfer between two account numbers.
// ExecutionTime uses the "2006/01/02 15:04:05" layout and is optional.
type CreateTransferRequest struct {
	Source        string          `json:"source"`
	Destination   string          `json:"destination"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	ExecutionTime string          `json:"executionTime,omitempty"`
}

func (r CreateTransferRequest) Validate() error {
	var errs []string

	if domain.CleanAccountNumber(r.Source) == "" {
		errs = append(errs, "source is required")
	}
	if domain.CleanAccountNumber(r.Destination) == "" {
		errs = append(errs, "destination is required")
	}
	if r.Amount.IsZero() {
		errs = append(errs, "amount is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		errs = append(errs, "description is required")
	}
	if _, err := r.Timestamp(); err != nil {
		errs = append(errs, "executionTime must use the yyyy/MM/dd HH:mm:ss format")
	}

	return validationFailure(errs)
}

// Timestamp parses ExecutionTime as UTC. Nil means the transfer is stamped
// when it runs.
func (r CreateTransferRequest) Timestamp() (*time.Time, error) {
	raw := strings.TrimSpace(r.ExecutionTime)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(domain.TimestampLayout, raw, time.UTC)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

type TransferResponse struct {
	ID            int64           `json:"id"`
	Reference     string          `json:"reference,omitempty"`
	Source        string          `json:"source"`
	Destination   string          `json:"destination"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	ExecutionTime string          `json:"executionTime,omitempty"`
	Status        string          `json:"status,omitempty"`
}

func NewTransferResponse(transfer domain.Transfer, source string, destination string) TransferResponse {
	return TransferResponse{
		ID:            transfer.ID,
		Reference:     transfer.Reference,
		Source:        source,
		Destination:   destination,
		Amount:        transfer.Amount,
		Description:   transfer.Description,
		ExecutionTime: formatTimestamp(transfer.Timestamp),
		Status:        string(transfer.Status),
	}
}

func NewTransferResultResponse(result domain.TransferResult) TransferResponse {
	status := domain.TransferStatusPending
	if result.ExecutedAt != nil {
		status = domain.TransferStatusExecuted
	}
	return TransferResponse{
		ID:            result.TransferID,
		Source:        result.SourceAccountNumber,
		Destination:   result.DestinationAccountNumber,
		Amount:        result.Amount,
		ExecutionTime: formatTimestamp(result.ExecutedAt),
		Status:        string(status),
	}
}

func formatTimestamp(at *time.Time) string {
	if at == nil {
		return ""
	}
	return at.UTC().Format(domain.TimestampLayout)
}

// TransferSearchParams are the optional filters of GET /transfers.
type TransferSearchParams struct {
	Source      string
	Destination string
	OrderBy     string
	SortOrder   string
}

func TransferSearchParamsFrom(values url.Values) TransferSearchParams {
	return TransferSearchParams{
		Source:      strings.TrimSpace(values.Get("source")),
		Destination: strings.TrimSpace(values.Get("destination")),
		OrderBy:     strings.TrimSpace(values.Get("orderBy")),
		SortOrder:   strings.TrimSpace(values.Get("sortOrder")),
	}
}

func (p TransferSearchParams) Query() (*querybuilder.SearchQuery, error) {
	query := querybuilder.NewTransferSearch()

	if p.Source != "" {
		if _, err := query.Where(querybuilder.FieldSource, querybuilder.Equals, domain.CleanAccountNumber(p.Source)); err != nil {
			return nil, err
		}
	}
	if p.Destination != "" {
		if _, err := query.Where(querybuilder.FieldDestination, querybuilder.Equals, domain.CleanAccountNumber(p.Destination)); err != nil {
			return nil, err
		}
	}
	if p.OrderBy != "" {
		if err := query.OrderBy(p.OrderBy, p.SortOrder); err != nil {
			return nil, err
		}
	}
	return query, nil
}
