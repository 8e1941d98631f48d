package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mealvoice/server/internal/userctx"
)

// Handler exposes the report export endpoint.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleDaily serves GET /v1/reports/daily?from=&to=&format=. The range
// defaults to the last 7 days, the format to csv.
func (h *Handler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	from := query.Get("from")
	to := query.Get("to")
	if from == "" && to == "" {
		today := time.Now().UTC()
		to = today.Format("2006-01-02")
		from = today.AddDate(0, 0, -6).Format("2006-01-02")
	}

	format := strings.ToLower(strings.TrimSpace(query.Get("format")))
	if format == "" {
		format = FormatCSV
	}

	userID := "default"
	if id, ok := userctx.GetUserID(r.Context()); ok && strings.TrimSpace(id) != "" {
		userID = id
	}

	data, contentType, err := h.service.DailyReport(r.Context(), userID, from, to, format)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidFormat):
			writeError(w, http.StatusBadRequest, "invalid_format", "format must be 'csv' or 'pdf'")
		case errors.Is(err, ErrInvalidDate):
			writeError(w, http.StatusBadRequest, "invalid_date", "dates must be YYYY-MM-DD")
		case errors.Is(err, ErrInvalidDateRange):
			writeError(w, http.StatusBadRequest, "invalid_range", "from must not be after to")
		case errors.Is(err, ErrRangeTooLarge):
			writeError(w, http.StatusBadRequest, "range_too_large", fmt.Sprintf("date range exceeds maximum of %d days", h.service.MaxRangeDays()))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to generate report")
		}
		return
	}

	filename := fmt.Sprintf("nutrition_%s_%s.%s", from, to, format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
