// Package estimate exposes meal nutrition estimation over HTTP and
// tracks outcome metrics for the provider pipeline.
package estimate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mealvoice/server/internal/ai"
	"github.com/mealvoice/server/internal/nutrition"
)

// ErrEmptyMeal reports a request without any meal text.
var ErrEmptyMeal = errors.New("transcribed meal is empty")

var outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "estimation_outcomes_total",
	Help: "Nutrition estimation outcomes by kind.",
}, []string{"outcome"})

// Service runs meal text through the estimation provider.
type Service struct {
	provider ai.Provider
}

func NewService(provider ai.Provider) *Service {
	return &Service{provider: provider}
}

// Estimate asks the provider for a nutrition estimate. Domain failures
// come back inside the response; transport and schema errors are
// returned as the provider's typed errors.
func (s *Service) Estimate(ctx context.Context, mealText string) (nutrition.Response, error) {
	if strings.TrimSpace(mealText) == "" {
		return nutrition.Response{}, ErrEmptyMeal
	}

	resp, err := s.provider.EstimateNutrition(ctx, mealText)
	if err != nil {
		var transportErr *ai.TransportError
		var schemaErr *ai.SchemaError
		switch {
		case errors.As(err, &transportErr):
			outcomes.WithLabelValues("transport_error").Inc()
			slog.Warn("estimation transport failure", "status", transportErr.Status, "err", err)
		case errors.As(err, &schemaErr):
			outcomes.WithLabelValues("schema_violation").Inc()
			slog.Warn("estimation contract violation", "err", err, "raw", truncate(schemaErr.Raw, 512))
		default:
			outcomes.WithLabelValues("error").Inc()
		}
		return nutrition.Response{}, fmt.Errorf("estimate nutrition: %w", err)
	}

	if resp.IsSuccess() {
		outcomes.WithLabelValues("success").Inc()
	} else {
		outcomes.WithLabelValues("domain_failure").Inc()
	}

	return resp, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
