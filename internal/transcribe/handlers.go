package transcribe

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mealvoice/server/internal/speech"
)

// TranscribeRequest is the body for POST /v1/transcribe. Timestamp is
// advisory and plays no part in transcription.
type TranscribeRequest struct {
	Audio     string `json:"audio"`
	Format    string `json:"format"`
	Timestamp string `json:"timestamp"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Handler exposes the transcription endpoint.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleTranscribe serves POST /v1/transcribe. The success body is the
// provider's transcription JSON passed through verbatim; provider HTTP
// failures are relayed with the upstream status and body.
func (h *Handler) HandleTranscribe(w http.ResponseWriter, r *http.Request) {
	var req TranscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid_payload", "Invalid JSON")
		return
	}

	result, err := h.service.Transcribe(r.Context(), req.Audio, req.Format)
	if err != nil {
		var transportErr *speech.TransportError
		switch {
		case errors.Is(err, ErrInvalidAudio):
			h.sendError(w, http.StatusBadRequest, "invalid_audio", "audio must be valid non-empty base64")
		case errors.Is(err, ErrAudioTooLarge):
			h.sendError(w, http.StatusRequestEntityTooLarge, "audio_too_large", "audio exceeds the size limit")
		case errors.As(err, &transportErr):
			h.relayUpstream(w, transportErr)
		default:
			h.sendError(w, http.StatusInternalServerError, "internal_error", "Transcription failed")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if len(result.Raw) > 0 {
		w.Write(result.Raw)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"text": result.Text})
}

// relayUpstream surfaces the provider's status and body verbatim so the
// caller can tell a provider rejection from a local failure.
func (h *Handler) relayUpstream(w http.ResponseWriter, transportErr *speech.TransportError) {
	if transportErr.Status == 0 {
		h.sendError(w, http.StatusBadGateway, "upstream_unavailable", "Transcription provider is unreachable")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(transportErr.Status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    "upstream_error",
			Message: transportErr.Body,
		},
	})
}

func (h *Handler) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}
