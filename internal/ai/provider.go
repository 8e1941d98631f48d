// Package ai abstracts the language-model backend that turns a meal
// description into a structured nutrition estimate.
package ai

import (
	"context"
	"fmt"

	"github.com/mealvoice/server/internal/nutrition"
)

// Provider produces a nutrition estimate for a transcribed meal.
//
// A returned nutrition.Response covers both successful analyses and domain
// failures (the model understood the request but the text is not food).
// Infrastructure problems come back as errors: *TransportError when the
// exchange with the upstream failed, *SchemaError when the upstream
// answered but its payload violates the response contract. Callers branch
// with errors.As and must never fold either kind into a domain failure.
type Provider interface {
	EstimateNutrition(ctx context.Context, mealText string) (nutrition.Response, error)
}

// TransportError reports a failed exchange with the upstream provider:
// a non-2xx status, a network error, or a timeout. Status is 0 when no
// response was received.
type TransportError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("upstream request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// SchemaError reports an upstream response that arrived but does not
// satisfy the nutrition response contract. Raw keeps the offending
// payload for logs.
type SchemaError struct {
	Err error
	Raw string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("upstream response violates contract: %v", e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }
