package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"meterbill/backend/services/tariff-service/internal/service"
)

type statusCheckRequest struct {
	ClientName string `json:"client_name"`
}

// NewCreateStatusHandler returns POST /api/status handler.
func NewCreateStatusHandler(svc *service.StatusService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusCheckRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		check, err := svc.CreateStatusCheck(r.Context(), req.ClientName)
		if err != nil {
			if !writeDomainError(w, err) {
				logger.Error("failed to store status check", zap.Error(err))
				writeError(w, http.StatusInternalServerError, "failed to store status check")
			}
			return
		}
		writeJSON(w, http.StatusOK, check)
	}
}

// NewListStatusHandler returns GET /api/status handler.
func NewListStatusHandler(svc *service.StatusService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks, err := svc.ListStatusChecks(r.Context())
		if err != nil {
			logger.Error("failed to load status checks", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load status checks")
			return
		}
		writeJSON(w, http.StatusOK, checks)
	}
}
