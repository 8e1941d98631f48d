package estimate

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mealvoice/server/internal/ai"
)

// EstimateRequest is the body for POST /v1/meals/estimate.
type EstimateRequest struct {
	TranscribedMeal string `json:"transcribed_meal"`
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Handler exposes the estimation endpoint.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleEstimate serves POST /v1/meals/estimate. Domain failures are
// 200 with success=false; infrastructure failures map to 502 with a
// code naming the failure class.
func (h *Handler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON")
		return
	}

	resp, err := h.service.Estimate(r.Context(), req.TranscribedMeal)
	if err != nil {
		var transportErr *ai.TransportError
		var schemaErr *ai.SchemaError
		switch {
		case errors.Is(err, ErrEmptyMeal):
			h.sendError(w, http.StatusBadRequest, "invalid_payload", "transcribed_meal must not be empty")
		case errors.As(err, &transportErr):
			h.sendError(w, http.StatusBadGateway, "upstream_unavailable", "Estimation provider is unavailable")
		case errors.As(err, &schemaErr):
			h.sendError(w, http.StatusBadGateway, "upstream_contract", "Estimation provider returned an invalid response")
		default:
			h.sendError(w, http.StatusInternalServerError, "internal_error", "Estimation failed")
		}
		return
	}

	h.sendJSON(w, http.StatusOK, resp)
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
