package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mealvoice/server/internal/config"
)

// DevAuthResponse is the body for POST /v1/auth/dev.
type DevAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Handler exposes the dev token endpoint.
type Handler struct {
	config  *config.Config
	service *Service
}

func NewHandler(cfg *config.Config, service *Service) *Handler {
	return &Handler{
		config:  cfg,
		service: service,
	}
}

// HandleDevAuth serves POST /v1/auth/dev: a 30-day token for the fixed
// dev user. Only available when AUTH_MODE=dev.
func (h *Handler) HandleDevAuth(w http.ResponseWriter, r *http.Request) {
	if h.config.AuthMode != "dev" {
		writeError(w, http.StatusNotFound, "not_found", "Not found")
		return
	}

	const devTTL = 30 * 24 * time.Hour

	accessToken, err := h.service.generateJWTWithTTL("dev-user", devTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to generate token")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DevAuthResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(devTTL.Seconds()),
	})
}
