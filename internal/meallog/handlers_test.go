package meallog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func newTestHandler(est Estimator) (*Handler, *Service) {
	service := newTestService(est, nil, 2500)
	return NewHandler(service), service
}

func TestHandleSubmitReturnsLoadingMeal(t *testing.T) {
	handler, service := newTestHandler(&stubEstimator{resp: successResponse("Lunch", 380)})

	req := httptest.NewRequest(http.MethodPost, "/v1/meals", strings.NewReader(`{"transcribed_meal": "chicken salad"}`))
	rec := httptest.NewRecorder()
	handler.HandleSubmit(rec, req)
	service.Wait()

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var meal MealDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &meal); err != nil {
		t.Fatal(err)
	}
	if !meal.IsLoading {
		t.Error("expected is_loading=true in the immediate response")
	}
	if meal.ID == uuid.Nil {
		t.Error("expected a meal id")
	}
}

func TestHandleSubmitBadJSON(t *testing.T) {
	handler, _ := newTestHandler(&stubEstimator{})

	req := httptest.NewRequest(http.MethodPost, "/v1/meals", strings.NewReader(`{"transcribed_meal":`))
	rec := httptest.NewRecorder()
	handler.HandleSubmit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSubmitBadAudioIs400(t *testing.T) {
	handler, _ := newTestHandler(&stubEstimator{})

	req := httptest.NewRequest(http.MethodPost, "/v1/meals", strings.NewReader(`{"audio": "%%%"}`))
	rec := httptest.NewRecorder()
	handler.HandleSubmit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_audio") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandleDailyReturnsTotals(t *testing.T) {
	handler, service := newTestHandler(&stubEstimator{resp: successResponse("Dinner", 640)})

	submit := httptest.NewRequest(http.MethodPost, "/v1/meals", strings.NewReader(`{"transcribed_meal": "pasta"}`))
	handler.HandleSubmit(httptest.NewRecorder(), submit)
	service.Wait()

	req := httptest.NewRequest(http.MethodGet, "/v1/meals/daily", nil)
	rec := httptest.NewRecorder()
	handler.HandleDaily(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var totals DailyTotalsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &totals); err != nil {
		t.Fatal(err)
	}
	if totals.TargetCalories != 2500 {
		t.Errorf("target = %d", totals.TargetCalories)
	}
	if totals.Totals.Calories != 640 {
		t.Errorf("calories = %v", totals.Totals.Calories)
	}
}

func TestHandleDailyBadDate(t *testing.T) {
	handler, _ := newTestHandler(&stubEstimator{})

	req := httptest.NewRequest(http.MethodGet, "/v1/meals/daily?date=yesterday", nil)
	rec := httptest.NewRecorder()
	handler.HandleDaily(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleDelete(t *testing.T) {
	handler, service := newTestHandler(&stubEstimator{resp: successResponse("Snack", 120)})

	submit := httptest.NewRequest(http.MethodPost, "/v1/meals", strings.NewReader(`{"transcribed_meal": "an apple"}`))
	submitRec := httptest.NewRecorder()
	handler.HandleSubmit(submitRec, submit)
	service.Wait()

	var meal MealDTO
	if err := json.Unmarshal(submitRec.Body.Bytes(), &meal); err != nil {
		t.Fatal(err)
	}

	del := httptest.NewRequest(http.MethodDelete, "/v1/meals/"+meal.ID.String(), nil)
	del.SetPathValue("id", meal.ID.String())
	rec := httptest.NewRecorder()
	handler.HandleDelete(rec, del)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	// second delete finds nothing
	rec = httptest.NewRecorder()
	again := httptest.NewRequest(http.MethodDelete, "/v1/meals/"+meal.ID.String(), nil)
	again.SetPathValue("id", meal.ID.String())
	handler.HandleDelete(rec, again)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleDeleteBadID(t *testing.T) {
	handler, _ := newTestHandler(&stubEstimator{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/meals/not-a-uuid", nil)
	req.SetPathValue("id", "not-a-uuid")
	rec := httptest.NewRecorder()
	handler.HandleDelete(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
