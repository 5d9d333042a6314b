package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/event-report/internal/ai"
	"github.com/kozaktomas/event-report/internal/crop"
	"github.com/kozaktomas/event-report/internal/export"
	"github.com/kozaktomas/event-report/internal/report"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondValidation sends the preview gate message together with what is missing.
func respondValidation(w http.ResponseWriter, verr *report.ValidationError) {
	missing := make([]string, 0, len(verr.Missing)+1)
	for _, f := range verr.Missing {
		missing = append(missing, string(f))
	}
	if verr.NoPhotos {
		missing = append(missing, string(report.SlotPhotos))
	}
	respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error":   verr.Error(),
		"missing": missing,
	})
}

// respondErr maps a domain error to a status code and sends it.
func respondErr(w http.ResponseWriter, err error) {
	var verr *report.ValidationError
	if errors.As(err, &verr) {
		respondValidation(w, verr)
		return
	}
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, report.ErrUnknownField),
		errors.Is(err, report.ErrUnknownSlot),
		errors.Is(err, report.ErrEmptyAttachments),
		errors.Is(err, ai.ErrUnknownTone),
		errors.Is(err, crop.ErrEmptyRegion),
		errors.Is(err, crop.ErrNotImage):
		return http.StatusBadRequest
	case errors.Is(err, report.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, report.ErrNothingToUndo),
		errors.Is(err, report.ErrPreviewOpen),
		errors.Is(err, crop.ErrSessionOpen),
		errors.Is(err, crop.ErrNoSession),
		errors.Is(err, export.ErrExportInProgress):
		return http.StatusConflict
	case errors.Is(err, ai.ErrMissingEventInfo),
		errors.Is(err, export.ErrNoPages):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// slotAndIndex reads the {slot} and {index} URL parameters.
func slotAndIndex(r *http.Request) (report.Slot, int, error) {
	slot, err := report.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		return "", 0, err
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return "", 0, errors.New("invalid index")
	}
	return slot, index, nil
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
