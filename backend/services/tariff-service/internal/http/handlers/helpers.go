package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"meterbill/backend/libs/tariff"
	"meterbill/backend/services/tariff-service/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps service and tariff errors to client responses.
// It reports false for errors that are not caused by the request.
func writeDomainError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, tariff.ErrUnknownClass):
		writeError(w, http.StatusBadRequest, "Invalid meter type")
	case errors.Is(err, tariff.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "Amount must be greater than 0")
	case errors.Is(err, tariff.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, "Consumption must be greater than 0")
	case errors.Is(err, service.ErrReadingsOrder):
		writeError(w, http.StatusBadRequest, "Current reading must be greater than previous reading")
	case errors.Is(err, service.ErrInvalidReading),
		errors.Is(err, service.ErrInvalidCalculation),
		errors.Is(err, service.ErrClientNameRequired):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		return false
	}
	return true
}
