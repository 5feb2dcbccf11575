package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"meterbill/backend/services/tariff-service/internal/models"
	"meterbill/backend/services/tariff-service/internal/service"
)

const maxBodyBytes = 1 << 20

// SaveCalculationHandler handles POST /api/calculate.
type SaveCalculationHandler struct {
	service *service.CalculatorService
	logger  *zap.Logger
}

// NewSaveCalculationHandler builds handler.
func NewSaveCalculationHandler(svc *service.CalculatorService, logger *zap.Logger) *SaveCalculationHandler {
	return &SaveCalculationHandler{
		service: svc,
		logger:  logger,
	}
}

// ServeHTTP stores the posted calculation.
func (h *SaveCalculationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var input models.CalculationInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	calc, err := h.service.SaveCalculation(r.Context(), input)
	if err != nil {
		if !writeDomainError(w, err) {
			h.logger.Error("failed to store calculation", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to store calculation")
		}
		return
	}
	writeJSON(w, http.StatusOK, calc)
}

// NewListCalculationsHandler returns GET /api/calculations handler.
func NewListCalculationsHandler(svc *service.CalculatorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = parsed
		}

		calcs, err := svc.ListCalculations(r.Context(), limit)
		if err != nil {
			logger.Error("failed to load calculations", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load calculations")
			return
		}
		writeJSON(w, http.StatusOK, calcs)
	}
}

// NewClearCalculationsHandler returns DELETE /api/calculations handler.
func NewClearCalculationsHandler(svc *service.CalculatorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.ClearCalculations(r.Context())
		if err != nil {
			logger.Error("failed to clear calculations", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to clear calculations")
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"deleted_count": n})
	}
}
