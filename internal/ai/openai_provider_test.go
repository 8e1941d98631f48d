package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mealvoice/server/internal/config"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewOpenAIProvider(&config.Config{
		OpenAIAPIKey:  "test-key",
		OpenAIModel:   "gpt-4o-mini",
		OpenAIBaseURL: server.URL,
		AITemperature: 0.2,
	})
}

func completionWith(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestOpenAIEstimateSuccess(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write(completionWith(t, `{"success": true, "data": {"meal_type": "Lunch", "description": "chicken wrap", "total_calories": 520, "total_protein": 35, "total_carbs": 40, "total_fats": 22, "breakdown": [{"item": "chicken wrap", "portion": "1", "calories": 520, "protein": 35, "carbs": 40, "fats": 22}]}, "error": null, "unparseable_meal": null}`))
	})

	resp, err := provider.EstimateNutrition(context.Background(), "a chicken wrap")
	if err != nil {
		t.Fatalf("EstimateNutrition: %v", err)
	}
	analysis, ok := resp.Analysis()
	if !ok || analysis.TotalCalories != 520 {
		t.Errorf("unexpected response: %+v", analysis)
	}
}

func TestOpenAIEstimateDomainFailure(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionWith(t, `{"success": false, "data": null, "error": "not food", "unparseable_meal": "my car keys"}`))
	})

	resp, err := provider.EstimateNutrition(context.Background(), "my car keys")
	if err != nil {
		t.Fatalf("domain failures must not be errors: %v", err)
	}
	if _, _, ok := resp.Failure(); !ok {
		t.Error("expected failure response")
	}
}

func TestOpenAIEstimateTransportError(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
	})

	_, err := provider.EstimateNutrition(context.Background(), "toast")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if transportErr.Status != http.StatusServiceUnavailable {
		t.Errorf("status = %d", transportErr.Status)
	}
}

func TestOpenAIEstimateSchemaViolation(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"no choices": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices": []}`))
		},
		"content not the contract": func(w http.ResponseWriter, r *http.Request) {
			w.Write(completionWith(t, `{"calories": 300}`))
		},
		"content not json": func(w http.ResponseWriter, r *http.Request) {
			w.Write(completionWith(t, "Sure! Here is your estimate:"))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			provider := newTestProvider(t, handler)
			_, err := provider.EstimateNutrition(context.Background(), "toast")
			var schemaErr *SchemaError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("err = %v, want SchemaError", err)
			}
		})
	}
}

func TestMockProvider(t *testing.T) {
	provider := NewMockProvider()

	resp, err := provider.EstimateNutrition(context.Background(), "two eggs and coffee")
	if err != nil {
		t.Fatal(err)
	}
	if analysis, ok := resp.Analysis(); !ok || analysis.MealType != "Breakfast" {
		t.Errorf("unexpected mock analysis: %+v", analysis)
	}

	resp, err = provider.EstimateNutrition(context.Background(), "the weather is nice")
	if err != nil {
		t.Fatal(err)
	}
	if _, unparseable, ok := resp.Failure(); !ok || unparseable == nil {
		t.Error("expected failure with unparseable input echoed")
	}
}
