package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"meterbill/backend/services/tariff-service/internal/models"
	"meterbill/backend/services/tariff-service/internal/service"
)

// NewRatesHandler returns GET /api/rates handler.
func NewRatesHandler(svc *service.CalculatorService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Rates())
	}
}

// NewKWToMoneyHandler returns POST /api/calculate/kw-to-money handler.
// A consumption parameter prices kW directly; otherwise both readings are required.
func NewKWToMoneyHandler(svc *service.CalculatorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		meterType := strings.TrimSpace(q.Get("meter_type"))
		if meterType == "" {
			writeError(w, http.StatusBadRequest, "meter_type required")
			return
		}

		var (
			quote models.CostQuote
			err   error
		)
		if q.Has("consumption") {
			var kw float64
			if kw, err = floatParam(q.Get("consumption"), "consumption"); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			quote, err = svc.PriceConsumption(r.Context(), meterType, kw)
		} else {
			var previous, current float64
			if previous, err = floatParam(q.Get("previous_reading"), "previous_reading"); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if current, err = floatParam(q.Get("current_reading"), "current_reading"); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			quote, err = svc.KWToMoney(r.Context(), meterType, previous, current)
		}
		if err != nil {
			if !writeDomainError(w, err) {
				logger.Error("kw-to-money failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "calculation failed")
			}
			return
		}
		writeJSON(w, http.StatusOK, quote)
	}
}

// NewMoneyToKWHandler returns POST /api/calculate/money-to-kw handler.
func NewMoneyToKWHandler(svc *service.CalculatorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		meterType := strings.TrimSpace(q.Get("meter_type"))
		if meterType == "" {
			writeError(w, http.StatusBadRequest, "meter_type required")
			return
		}
		amount, err := floatParam(q.Get("amount"), "amount")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		quote, err := svc.MoneyToKW(r.Context(), meterType, amount)
		if err != nil {
			if !writeDomainError(w, err) {
				logger.Error("money-to-kw failed", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "calculation failed")
			}
			return
		}
		writeJSON(w, http.StatusOK, quote)
	}
}

func floatParam(raw, name string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}
