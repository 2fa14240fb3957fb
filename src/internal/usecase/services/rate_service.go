package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/api-sage/ledger-engine/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/api-sage/ledger-engine/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

// Verify that RateService implements the service_interfaces.RateService interface
var _ service_interfaces.RateService = (*RateService)(nil)

// RateService exposes the converter's table for quoting.
type RateService struct {
	converter *FixedRateConverter
}

func NewRateService(converter *FixedRateConverter) *RateService {
	return &RateService{converter: converter}
}

func (s *RateService) GetRates(_ context.Context) (commons.Response[[]models.RateResponse], error) {
	logger.Info("rate service get rates request", nil)

	table := s.converter.Rates()
	resp := make([]models.RateResponse, 0)
	for from, row := range table {
		for to, rate := range row {
			resp = append(resp, mapRateToResponse(from, to, rate))
		}
	}
	sort.Slice(resp, func(i, j int) bool {
		if resp[i].FromCurrency != resp[j].FromCurrency {
			return resp[i].FromCurrency < resp[j].FromCurrency
		}
		return resp[i].ToCurrency < resp[j].ToCurrency
	})

	logger.Info("rate service get rates success", logger.Fields{
		"count": len(resp),
	})

	return commons.SuccessResponse("rates fetched successfully", resp), nil
}

func (s *RateService) GetRate(_ context.Context, req models.GetRateRequest) (commons.Response[models.RateResponse], error) {
	logger.Info("rate service get rate request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("rate service get rate validation failed", err, nil)
		return commons.ErrorResponse[models.RateResponse]("validation failed", err.Error()), err
	}

	from, _ := domain.ParseCurrency(req.FromCurrency)
	to, _ := domain.ParseCurrency(req.ToCurrency)
	if from == to {
		return commons.SuccessResponse("rate fetched successfully", mapRateToResponse(from, to, decimal.NewFromInt(1))), nil
	}

	rate, ok := s.converter.Rates().Rate(from, to)
	if !ok {
		err := &commons.ConversionError{From: from.String(), To: to.String()}
		logger.Error("rate service get rate failed", err, logger.Fields{
			"fromCurrency": from,
			"toCurrency":   to,
		})
		return commons.ErrorResponse[models.RateResponse]("Rate not found"), err
	}

	return commons.SuccessResponse("rate fetched successfully", mapRateToResponse(from, to, rate)), nil
}

func (s *RateService) GetCcyRates(_ context.Context, req models.GetCcyRatesRequest) (commons.Response[models.GetCcyRatesResponse], error) {
	logger.Info("rate service convert amount request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("rate service convert amount validation failed", err, nil)
		return commons.ErrorResponse[models.GetCcyRatesResponse]("validation failed", err.Error()), err
	}

	amount := decimal.RequireFromString(strings.TrimSpace(req.Amount))
	from, _ := domain.ParseCurrency(req.FromCcy)
	to, _ := domain.ParseCurrency(req.ToCcy)

	converted, err := s.converter.Convert(amount, from, to)
	if err != nil {
		logger.Error("rate service convert amount failed", err, logger.Fields{
			"fromCcy": from,
			"toCcy":   to,
		})
		if errors.Is(err, commons.ErrRateNotFound) {
			return commons.ErrorResponse[models.GetCcyRatesResponse]("Rate not found for currency pair", "Rate not found for currency pair"), err
		}
		return commons.ErrorResponse[models.GetCcyRatesResponse]("failed to convert amount", "Unable to convert amount right now"), err
	}

	rateUsed := decimal.NewFromInt(1)
	if from != to {
		rateUsed, _ = s.converter.Rates().Rate(from, to)
	}

	response := models.GetCcyRatesResponse{
		Amount:          amount.String(),
		FromCcy:         from.String(),
		ToCcy:           to.String(),
		ConvertedAmount: converted.StringFixed(conversionScale),
		RateUsed:        rateUsed.String(),
	}

	logger.Info("rate service convert amount success", logger.Fields{
		"fromCcy":         response.FromCcy,
		"toCcy":           response.ToCcy,
		"convertedAmount": response.ConvertedAmount,
	})

	return commons.SuccessResponse("currency rate fetched successfully", response), nil
}

func mapRateToResponse(from domain.Currency, to domain.Currency, rate decimal.Decimal) models.RateResponse {
	return models.RateResponse{
		FromCurrency: from.String(),
		ToCurrency:   to.String(),
		Rate:         rate.String(),
	}
}
