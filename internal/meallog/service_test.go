package meallog

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/mealvoice/server/internal/ai"
	"github.com/mealvoice/server/internal/nutrition"
	"github.com/mealvoice/server/internal/speech"
	"github.com/mealvoice/server/internal/storage/memory"
)

type stubEstimator struct {
	resp nutrition.Response
	err  error
	gate chan struct{} // when set, EstimateNutrition blocks until closed
	seen []string
}

func (s *stubEstimator) Estimate(ctx context.Context, mealText string) (nutrition.Response, error) {
	s.seen = append(s.seen, mealText)
	if s.gate != nil {
		<-s.gate
	}
	return s.resp, s.err
}

type stubSpeech struct {
	text  string
	err   error
	audio []byte
}

func (s *stubSpeech) Transcribe(ctx context.Context, audio []byte, format string) (speech.Result, error) {
	s.audio = audio
	return speech.Result{Text: s.text}, s.err
}

type stubTargets struct{ target int }

func (s *stubTargets) TargetCalories(ctx context.Context) (int, error) {
	return s.target, nil
}

func successResponse(mealType string, calories float64) nutrition.Response {
	return nutrition.Success(nutrition.Analysis{
		MealType:      mealType,
		Description:   "test meal",
		TotalCalories: calories,
		TotalProtein:  20,
		TotalCarbs:    30,
		TotalFats:     10,
		Breakdown:     []nutrition.Item{{Name: "test meal", Portion: "1 serving", Calories: calories}},
	})
}

func newTestService(est Estimator, tr Transcriber, target int) *Service {
	if tr == nil {
		tr = &stubSpeech{text: "unused"}
	}
	return NewService(memory.New().GetMealLogStorage(), est, tr, &stubTargets{target: target}, nil)
}

func TestSubmitTextMealCompletesAndCounts(t *testing.T) {
	est := &stubEstimator{resp: successResponse("Lunch", 380)}
	service := newTestService(est, nil, 2500)

	meal, err := service.Submit(context.Background(), SubmitMealRequest{TranscribedMeal: "chicken salad"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !meal.IsLoading {
		t.Error("expected optimistic meal to be loading")
	}
	service.Wait()

	totals, err := service.DailyTotals(context.Background(), meal.MealDate)
	if err != nil {
		t.Fatalf("DailyTotals: %v", err)
	}
	if totals.Totals.Calories != 380 {
		t.Errorf("calories = %v, want 380", totals.Totals.Calories)
	}
	if totals.RemainingCalories != 2500-380 {
		t.Errorf("remaining = %d", totals.RemainingCalories)
	}
	if len(totals.Groups) != 1 || totals.Groups[0].MealType != "Lunch" {
		t.Fatalf("groups = %+v", totals.Groups)
	}
	if totals.Groups[0].Meals[0].IsLoading {
		t.Error("meal still loading after Wait")
	}
}

func TestSubmitAudioTranscribesBeforeEstimation(t *testing.T) {
	est := &stubEstimator{resp: successResponse("Breakfast", 220)}
	tr := &stubSpeech{text: "two eggs and toast"}
	service := newTestService(est, tr, 2500)

	audio := base64.StdEncoding.EncodeToString([]byte("clip-bytes"))
	meal, err := service.Submit(context.Background(), SubmitMealRequest{Audio: audio, Format: "m4a"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	service.Wait()

	if string(tr.audio) != "clip-bytes" {
		t.Errorf("transcriber received %q", tr.audio)
	}
	if len(est.seen) != 1 || est.seen[0] != "two eggs and toast" {
		t.Errorf("estimator received %v, want the transcript", est.seen)
	}

	totals, err := service.DailyTotals(context.Background(), meal.MealDate)
	if err != nil {
		t.Fatalf("DailyTotals: %v", err)
	}
	stored := totals.Groups[0].Meals[0]
	if stored.Transcription == nil || *stored.Transcription != "two eggs and toast" {
		t.Errorf("transcription = %v", stored.Transcription)
	}
}

func TestSubmitRejectsEmptyAndBadAudio(t *testing.T) {
	service := newTestService(&stubEstimator{}, nil, 2500)

	if _, err := service.Submit(context.Background(), SubmitMealRequest{}); !errors.Is(err, ErrEmptySubmission) {
		t.Errorf("empty submission: err = %v", err)
	}
	if _, err := service.Submit(context.Background(), SubmitMealRequest{Audio: "!!!not-base64!!!"}); !errors.Is(err, ErrInvalidAudio) {
		t.Errorf("bad base64: err = %v", err)
	}
}

func TestDomainFailureStoredButNotCounted(t *testing.T) {
	input := "my homework"
	est := &stubEstimator{resp: nutrition.Failure("not food", &input)}
	service := newTestService(est, nil, 2000)

	meal, err := service.Submit(context.Background(), SubmitMealRequest{TranscribedMeal: "my homework"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	service.Wait()

	totals, err := service.DailyTotals(context.Background(), meal.MealDate)
	if err != nil {
		t.Fatalf("DailyTotals: %v", err)
	}
	if totals.Totals.Calories != 0 {
		t.Errorf("calories = %v, want 0 for a domain failure", totals.Totals.Calories)
	}
	if totals.RemainingCalories != 2000 {
		t.Errorf("remaining = %d, want untouched target", totals.RemainingCalories)
	}

	stored := totals.Groups[0].Meals[0]
	if stored.IsLoading {
		t.Error("meal still loading")
	}
	if len(stored.Nutrition) == 0 {
		t.Error("failure response should be stored for display")
	}
	if stored.MealType != "Snack" {
		t.Errorf("meal type = %q, want Snack fallback", stored.MealType)
	}
}

func TestTransportErrorMarksMealFailed(t *testing.T) {
	est := &stubEstimator{err: &ai.TransportError{Status: 503, Body: "overloaded"}}
	service := newTestService(est, nil, 2000)

	meal, err := service.Submit(context.Background(), SubmitMealRequest{TranscribedMeal: "toast"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	service.Wait()

	totals, err := service.DailyTotals(context.Background(), meal.MealDate)
	if err != nil {
		t.Fatalf("DailyTotals: %v", err)
	}
	stored := totals.Groups[0].Meals[0]
	if stored.IsLoading {
		t.Error("meal still loading")
	}
	if stored.FailureMessage == nil || *stored.FailureMessage != "estimation provider unavailable" {
		t.Errorf("failure message = %v", stored.FailureMessage)
	}
	if totals.Totals.Calories != 0 {
		t.Errorf("calories = %v, want 0", totals.Totals.Calories)
	}
}

func TestDeleteDuringFlightDiscardsResult(t *testing.T) {
	gate := make(chan struct{})
	est := &stubEstimator{resp: successResponse("Dinner", 600), gate: gate}
	service := newTestService(est, nil, 2000)

	meal, err := service.Submit(context.Background(), SubmitMealRequest{TranscribedMeal: "steak"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := service.Delete(context.Background(), meal.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	close(gate)
	service.Wait()

	totals, err := service.DailyTotals(context.Background(), meal.MealDate)
	if err != nil {
		t.Fatalf("DailyTotals: %v", err)
	}
	if len(totals.Groups) != 0 {
		t.Fatalf("deleted meal resurfaced: %+v", totals.Groups)
	}
	if totals.Totals.Calories != 0 {
		t.Errorf("calories = %v, want 0", totals.Totals.Calories)
	}
}

func TestOutOfOrderCompletionTolerated(t *testing.T) {
	gate := make(chan struct{})
	slow := &stubEstimator{resp: successResponse("Breakfast", 300), gate: gate}
	store := memory.New().GetMealLogStorage()
	slowService := NewService(store, slow, &stubSpeech{}, &stubTargets{target: 2500}, nil)
	fastService := NewService(store, &stubEstimator{resp: successResponse("Lunch", 500)}, &stubSpeech{}, &stubTargets{target: 2500}, nil)

	first, err := slowService.Submit(context.Background(), SubmitMealRequest{TranscribedMeal: "porridge"})
	if err != nil {
		t.Fatalf("Submit first: %v", err)
	}
	if _, err := fastService.Submit(context.Background(), SubmitMealRequest{TranscribedMeal: "ramen"}); err != nil {
		t.Fatalf("Submit second: %v", err)
	}
	fastService.Wait()

	close(gate)
	slowService.Wait()

	totals, err := slowService.DailyTotals(context.Background(), first.MealDate)
	if err != nil {
		t.Fatalf("DailyTotals: %v", err)
	}
	if totals.Totals.Calories != 800 {
		t.Errorf("calories = %v, want 800 from both meals", totals.Totals.Calories)
	}
}

func TestRemainingCaloriesMayGoNegative(t *testing.T) {
	est := &stubEstimator{resp: successResponse("Dinner", 3000)}
	service := newTestService(est, nil, 2000)

	meal, err := service.Submit(context.Background(), SubmitMealRequest{TranscribedMeal: "a feast"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	service.Wait()

	totals, err := service.DailyTotals(context.Background(), meal.MealDate)
	if err != nil {
		t.Fatalf("DailyTotals: %v", err)
	}
	if totals.RemainingCalories != -1000 {
		t.Errorf("remaining = %d, want -1000", totals.RemainingCalories)
	}
}

func TestDailyTotalsRejectsBadDate(t *testing.T) {
	service := newTestService(&stubEstimator{}, nil, 2000)

	if _, err := service.DailyTotals(context.Background(), "2026/01/05"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("err = %v, want ErrInvalidDate", err)
	}
}
