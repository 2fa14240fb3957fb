package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/adapter/http/models"
	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/go-chi/chi/v5"
)

type RateService interface {
	GetRates(ctx context.Context) (commons.Response[[]models.RateResponse], error)
	GetRate(ctx context.Context, req models.GetRateRequest) (commons.Response[models.RateResponse], error)
	GetCcyRates(ctx context.Context, req models.GetCcyRatesRequest) (commons.Response[models.GetCcyRatesResponse], error)
}

type RateController struct {
	service RateService
}

func NewRateController(service RateService) *RateController {
	return &RateController{service: service}
}

func (c *RateController) RegisterRoutes(r chi.Router) {
	r.Route("/rates", func(r chi.Router) {
		r.Get("/", c.getRates)
		r.Get("/convert", c.convert)
		r.Get("/{from}/{to}", c.getRate)
	})
}

func (c *RateController) getRates(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	response, err := c.service.GetRates(r.Context())
	writeServiceResponse(w, r, response, err, start)
}

func (c *RateController) getRate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := models.GetRateRequest{
		FromCurrency: chi.URLParam(r, "from"),
		ToCurrency:   chi.URLParam(r, "to"),
	}
	logRequest(r, req)

	response, err := c.service.GetRate(r.Context(), req)
	writeServiceResponse(w, r, response, err, start)
}

func (c *RateController) convert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	query := r.URL.Query()
	req := models.GetCcyRatesRequest{
		Amount:  query.Get("amount"),
		FromCcy: query.Get("fromCcy"),
		ToCcy:   query.Get("toCcy"),
	}
	logRequest(r, req)

	response, err := c.service.GetCcyRates(r.Context(), req)
	writeServiceResponse(w, r, response, err, start)
}

// writeServiceResponse writes an envelope the service already built.
func writeServiceResponse[T any](w http.ResponseWriter, r *http.Request, response commons.Response[T], err error, start time.Time) {
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		respond(w, r, statusFor(err), response, start)
		return
	}
	respond(w, r, http.StatusOK, response, start)
}
