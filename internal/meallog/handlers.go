package meallog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// Handler exposes the meal log endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleSubmit serves POST /v1/meals. The meal is returned immediately in
// its loading state; estimation completes asynchronously.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON")
		return
	}

	meal, err := h.service.Submit(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAudio):
			h.sendError(w, http.StatusBadRequest, "invalid_audio", "audio must be valid non-empty base64")
		case errors.Is(err, ErrEmptySubmission), errors.Is(err, ErrInvalidDate):
			h.sendError(w, http.StatusBadRequest, "invalid_payload", err.Error())
		default:
			h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to log meal")
		}
		return
	}

	h.sendJSON(w, http.StatusCreated, meal)
}

// HandleDaily serves GET /v1/meals/daily?date=YYYY-MM-DD, defaulting to
// the current UTC date.
func (h *Handler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	totals, err := h.service.DailyTotals(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			h.sendError(w, http.StatusBadRequest, "invalid_payload", err.Error())
			return
		}
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to load daily totals")
		return
	}

	h.sendJSON(w, http.StatusOK, totals)
}

// HandleDelete serves DELETE /v1/meals/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_payload", "meal id must be a UUID")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrMealNotFound) {
			h.sendError(w, http.StatusNotFound, "not_found", "Meal not found")
			return
		}
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to delete meal")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) sendError(w http.ResponseWriter, status int, code, message string) {
	h.sendJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
