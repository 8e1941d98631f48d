package profiles

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Handler exposes the profile HTTP endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGet serves GET /v1/profile.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	profile, isDefault, err := h.service.Get(r.Context())
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to load profile")
		return
	}

	h.sendJSON(w, http.StatusOK, GetProfileResponse{Profile: profile, IsDefault: isDefault})
}

// HandleUpsert serves PUT /v1/profile.
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON")
		return
	}

	profile, err := h.service.Upsert(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			h.sendError(w, http.StatusBadRequest, "invalid_payload", err.Error())
			return
		}
		h.sendError(w, http.StatusInternalServerError, "internal_error", "Failed to save profile")
		return
	}

	h.sendJSON(w, http.StatusOK, GetProfileResponse{Profile: profile, IsDefault: false})
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
