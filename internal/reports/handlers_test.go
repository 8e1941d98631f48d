package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mealvoice/server/internal/nutrition"
	"github.com/mealvoice/server/internal/storage"
	"github.com/mealvoice/server/internal/storage/memory"
)

type fixedTarget struct{ target int }

func (f *fixedTarget) TargetCalories(ctx context.Context) (int, error) {
	return f.target, nil
}

func seedMeal(t *testing.T, st storage.MealLogStorage, date string, calories float64) {
	t.Helper()

	resp := nutrition.Success(nutrition.Analysis{
		MealType:      "Lunch",
		Description:   "seeded meal",
		TotalCalories: calories,
		TotalProtein:  25,
		TotalCarbs:    40,
		TotalFats:     12,
		Breakdown:     []nutrition.Item{{Name: "seeded meal", Portion: "1 serving", Calories: calories}},
	})
	encoded, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}

	loggedAt, err := time.Parse("2006-01-02", date)
	if err != nil {
		t.Fatal(err)
	}
	meal := &storage.LoggedMeal{
		ID:          uuid.New(),
		OwnerUserID: "default",
		LoggedAt:    loggedAt.Add(12 * time.Hour),
		MealDate:    date,
		IsLoading:   true,
	}
	if err := st.InsertMeal(context.Background(), meal); err != nil {
		t.Fatal(err)
	}
	if _, err := st.CompleteMeal(context.Background(), meal.ID, storage.MealResultUpdate{Nutrition: encoded}); err != nil {
		t.Fatal(err)
	}
}

func getReport(t *testing.T, service *Service, url string) *httptest.ResponseRecorder {
	t.Helper()
	handler := NewHandler(service)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	handler.HandleDaily(rec, req)
	return rec
}

func TestHandleDailyCSV(t *testing.T) {
	st := memory.New().GetMealLogStorage()
	seedMeal(t, st, "2026-08-03", 600)
	seedMeal(t, st, "2026-08-03", 400)
	service := NewService(st, &fixedTarget{target: 2200}, 90)

	rec := getReport(t, service, "/v1/reports/daily?from=2026-08-03&to=2026-08-04&format=csv")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %s", ct)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2 days: %q", len(lines), lines)
	}
	if lines[0] != "date,meals_logged,calories,protein,carbs,fats,target_calories,remaining_calories" {
		t.Errorf("header = %s", lines[0])
	}
	if lines[1] != "2026-08-03,2,1000,50,80,24,2200,1200" {
		t.Errorf("day row = %s", lines[1])
	}
	if lines[2] != "2026-08-04,0,0,0,0,0,2200,2200" {
		t.Errorf("empty day row = %s", lines[2])
	}
}

func TestHandleDailyPDF(t *testing.T) {
	st := memory.New().GetMealLogStorage()
	seedMeal(t, st, "2026-08-03", 500)
	service := NewService(st, &fixedTarget{target: 2000}, 90)

	rec := getReport(t, service, "/v1/reports/daily?from=2026-08-01&to=2026-08-07&format=pdf")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %s", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF document")
	}
}

func TestHandleDailyValidation(t *testing.T) {
	service := NewService(memory.New().GetMealLogStorage(), &fixedTarget{target: 2000}, 30)

	cases := []struct {
		name string
		url  string
		code string
	}{
		{"bad format", "/v1/reports/daily?from=2026-08-01&to=2026-08-02&format=xlsx", "invalid_format"},
		{"bad date", "/v1/reports/daily?from=yesterday&to=2026-08-02", "invalid_date"},
		{"inverted range", "/v1/reports/daily?from=2026-08-10&to=2026-08-02", "invalid_range"},
		{"range too large", "/v1/reports/daily?from=2026-01-01&to=2026-08-01", "range_too_large"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := getReport(t, service, tc.url)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.code) {
				t.Errorf("body = %s, want code %s", rec.Body.String(), tc.code)
			}
		})
	}
}

func TestHandleDailyDefaultsToLastSevenDays(t *testing.T) {
	service := NewService(memory.New().GetMealLogStorage(), &fixedTarget{target: 2000}, 90)

	rec := getReport(t, service, "/v1/reports/daily")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 8 {
		t.Errorf("lines = %d, want header + 7 days", len(lines))
	}
}
