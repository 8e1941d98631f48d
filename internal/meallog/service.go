// Package meallog owns the logged-meal lifecycle: optimistic insert in a
// loading state, an asynchronous transcribe-then-estimate pipeline per
// submission, and daily totals aggregation against the profile target.
package meallog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mealvoice/server/internal/ai"
	"github.com/mealvoice/server/internal/nutrition"
	"github.com/mealvoice/server/internal/speech"
	"github.com/mealvoice/server/internal/storage"
	"github.com/mealvoice/server/internal/userctx"
)

var (
	// ErrEmptySubmission marks a request with neither text nor audio.
	ErrEmptySubmission = errors.New("submission needs transcribed_meal or audio")

	// ErrInvalidAudio marks audio that fails base64 decoding.
	ErrInvalidAudio = errors.New("audio payload is not valid base64")

	// ErrInvalidDate marks a date outside YYYY-MM-DD.
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

	// ErrMealNotFound marks a lookup or delete for an absent meal.
	ErrMealNotFound = errors.New("meal not found")
)

const pipelineTimeout = 2 * time.Minute

// Display order of the meal-type buckets.
var groupOrder = []string{"Breakfast", "Lunch", "Dinner", "Snack", "Drink"}

// Estimator is the slice of the estimation service this package needs.
type Estimator interface {
	Estimate(ctx context.Context, mealText string) (nutrition.Response, error)
}

// Transcriber is the slice of the speech provider this package needs.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, format string) (speech.Result, error)
}

// TargetProvider reports the caller's daily calorie target.
type TargetProvider interface {
	TargetCalories(ctx context.Context) (int, error)
}

// Service runs meal submissions and aggregates daily totals.
type Service struct {
	storage     storage.MealLogStorage
	estimator   Estimator
	transcriber Transcriber
	targets     TargetProvider
	logger      *slog.Logger

	wg sync.WaitGroup
}

func NewService(st storage.MealLogStorage, estimator Estimator, transcriber Transcriber, targets TargetProvider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		storage:     st,
		estimator:   estimator,
		transcriber: transcriber,
		targets:     targets,
		logger:      logger,
	}
}

// Wait blocks until every in-flight pipeline has finished. Used on
// shutdown and in tests.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Submit inserts the meal in a loading state and starts its pipeline.
// The returned DTO is the optimistic record; the caller polls the daily
// view for the estimation result.
func (s *Service) Submit(ctx context.Context, req SubmitMealRequest) (MealDTO, error) {
	userID := userIDFromContext(ctx)

	text := strings.TrimSpace(req.TranscribedMeal)

	var audio []byte
	if text == "" {
		encoded := strings.TrimSpace(req.Audio)
		if encoded == "" {
			return MealDTO{}, ErrEmptySubmission
		}
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return MealDTO{}, fmt.Errorf("%w: %v", ErrInvalidAudio, err)
		}
		if len(decoded) == 0 {
			return MealDTO{}, fmt.Errorf("%w: empty payload", ErrInvalidAudio)
		}
		audio = decoded
	}

	loggedAt := time.Now().UTC()
	if raw := strings.TrimSpace(req.LoggedAt); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return MealDTO{}, fmt.Errorf("%w: logged_at must be RFC 3339: %v", ErrInvalidDate, err)
		}
		loggedAt = parsed.UTC()
	}

	meal := &storage.LoggedMeal{
		ID:          uuid.New(),
		OwnerUserID: userID,
		LoggedAt:    loggedAt,
		MealDate:    loggedAt.Format("2006-01-02"),
		IsLoading:   true,
	}
	if text != "" {
		meal.Transcription = &text
	}

	if err := s.storage.InsertMeal(ctx, meal); err != nil {
		return MealDTO{}, err
	}

	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = "webm"
	}

	s.wg.Add(1)
	go s.runPipeline(meal.ID, text, audio, format)

	return toDTO(*meal), nil
}

// runPipeline transcribes (when needed) and estimates one submission,
// then writes the result back by meal ID. The write-back no-ops when the
// meal was deleted mid-flight.
func (s *Service) runPipeline(mealID uuid.UUID, text string, audio []byte, format string) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
	defer cancel()

	update, err := s.resolveMeal(ctx, text, audio, format)
	if err != nil {
		message := pipelineFailureMessage(err)
		update = storage.MealResultUpdate{FailureMessage: &message}
		s.logger.Warn("meal pipeline failed", "meal_id", mealID, "error", err)
	}

	applied, err := s.storage.CompleteMeal(ctx, mealID, update)
	if err != nil {
		s.logger.Error("meal write-back failed", "meal_id", mealID, "error", err)
		return
	}
	if !applied {
		s.logger.Debug("meal deleted mid-flight, result discarded", "meal_id", mealID)
	}
}

// resolveMeal produces the completed-meal update: transcription first
// when the submission was audio, then estimation.
func (s *Service) resolveMeal(ctx context.Context, text string, audio []byte, format string) (storage.MealResultUpdate, error) {
	update := storage.MealResultUpdate{}

	if text == "" {
		result, err := s.transcriber.Transcribe(ctx, audio, format)
		if err != nil {
			return storage.MealResultUpdate{}, fmt.Errorf("transcription: %w", err)
		}
		text = strings.TrimSpace(result.Text)
		update.Transcription = &text
	}

	resp, err := s.estimator.Estimate(ctx, text)
	if err != nil {
		return storage.MealResultUpdate{}, fmt.Errorf("estimation: %w", err)
	}

	encoded, err := json.Marshal(resp)
	if err != nil {
		return storage.MealResultUpdate{}, fmt.Errorf("encode estimation: %w", err)
	}
	update.Nutrition = encoded

	return update, nil
}

// pipelineFailureMessage keeps the stored failure short; the full error
// goes to the log.
func pipelineFailureMessage(err error) string {
	var aiTransport *ai.TransportError
	var aiSchema *ai.SchemaError
	var speechTransport *speech.TransportError
	switch {
	case errors.As(err, &speechTransport):
		return "transcription provider unavailable"
	case errors.As(err, &aiTransport):
		return "estimation provider unavailable"
	case errors.As(err, &aiSchema):
		return "estimation provider returned an invalid response"
	default:
		return "meal could not be processed"
	}
}

// DailyTotals aggregates one day of meals: macro sums over successful
// estimates only, remaining calories against the profile target (never
// clamped), and display grouping by meal type.
func (s *Service) DailyTotals(ctx context.Context, date string) (DailyTotalsResponse, error) {
	userID := userIDFromContext(ctx)

	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return DailyTotalsResponse{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	target, err := s.targets.TargetCalories(ctx)
	if err != nil {
		return DailyTotalsResponse{}, err
	}

	meals, err := s.storage.ListMealsByDate(ctx, userID, date)
	if err != nil {
		return DailyTotalsResponse{}, err
	}

	resp := DailyTotalsResponse{
		Date:           date,
		TargetCalories: target,
	}

	grouped := make(map[string][]MealDTO, len(groupOrder))
	for _, meal := range meals {
		dto := toDTO(meal)
		grouped[dto.MealType] = append(grouped[dto.MealType], dto)

		if len(meal.Nutrition) == 0 {
			continue
		}
		decoded, err := nutrition.Decode(meal.Nutrition)
		if err != nil {
			continue
		}
		analysis, ok := decoded.Analysis()
		if !ok {
			continue
		}
		resp.Totals.Calories += analysis.TotalCalories
		resp.Totals.Protein += analysis.TotalProtein
		resp.Totals.Carbs += analysis.TotalCarbs
		resp.Totals.Fats += analysis.TotalFats
	}

	resp.RemainingCalories = target - int(resp.Totals.Calories)
	resp.Groups = make([]MealGroup, 0, len(grouped))
	for _, label := range groupOrder {
		if dtos, ok := grouped[label]; ok {
			resp.Groups = append(resp.Groups, MealGroup{MealType: label, Meals: dtos})
		}
	}

	return resp, nil
}

// Delete removes the caller's meal. A pipeline still running for it will
// discard its result on write-back.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	userID := userIDFromContext(ctx)

	deleted, err := s.storage.DeleteMeal(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMealNotFound
	}
	return nil
}

func userIDFromContext(ctx context.Context) string {
	if userID, ok := userctx.GetUserID(ctx); ok && strings.TrimSpace(userID) != "" {
		return userID
	}
	return "default"
}
