package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mealvoice/server/internal/storage"
)

type mealLogStorage struct {
	mu    sync.RWMutex
	meals map[uuid.UUID]*storage.LoggedMeal
}

func newMealLogStorage() *mealLogStorage {
	return &mealLogStorage{
		meals: make(map[uuid.UUID]*storage.LoggedMeal),
	}
}

func (s *mealLogStorage) InsertMeal(ctx context.Context, meal *storage.LoggedMeal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if meal.ID == uuid.Nil {
		meal.ID = uuid.New()
	}

	now := time.Now().UTC()
	meal.CreatedAt = now
	meal.UpdatedAt = now

	copied := copyMeal(meal)
	s.meals[meal.ID] = &copied

	return nil
}

func (s *mealLogStorage) GetMeal(ctx context.Context, ownerUserID string, id uuid.UUID) (*storage.LoggedMeal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meal, ok := s.meals[id]
	if !ok || meal.OwnerUserID != ownerUserID {
		return nil, nil
	}

	copied := copyMeal(meal)
	return &copied, nil
}

// CompleteMeal is a no-op when the meal was deleted while its pipeline
// was still running.
func (s *mealLogStorage) CompleteMeal(ctx context.Context, id uuid.UUID, update storage.MealResultUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meal, ok := s.meals[id]
	if !ok {
		return false, nil
	}

	if update.Transcription != nil {
		transcription := *update.Transcription
		meal.Transcription = &transcription
	}
	meal.Nutrition = cloneBytes(update.Nutrition)
	meal.FailureMessage = nil
	if update.FailureMessage != nil {
		msg := *update.FailureMessage
		meal.FailureMessage = &msg
	}
	meal.IsLoading = false
	meal.UpdatedAt = time.Now().UTC()

	return true, nil
}

func (s *mealLogStorage) DeleteMeal(ctx context.Context, ownerUserID string, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meal, ok := s.meals[id]
	if !ok || meal.OwnerUserID != ownerUserID {
		return false, nil
	}

	delete(s.meals, id)
	return true, nil
}

func (s *mealLogStorage) ListMealsByDate(ctx context.Context, ownerUserID, date string) ([]storage.LoggedMeal, error) {
	return s.ListMealsInRange(ctx, ownerUserID, date, date)
}

func (s *mealLogStorage) ListMealsInRange(ctx context.Context, ownerUserID, from, to string) ([]storage.LoggedMeal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meals := make([]storage.LoggedMeal, 0)
	for _, meal := range s.meals {
		if meal.OwnerUserID != ownerUserID {
			continue
		}
		if meal.MealDate < from || meal.MealDate > to {
			continue
		}
		meals = append(meals, copyMeal(meal))
	}

	sort.Slice(meals, func(i, j int) bool {
		return meals[i].LoggedAt.Before(meals[j].LoggedAt)
	})

	return meals, nil
}

func copyMeal(m *storage.LoggedMeal) storage.LoggedMeal {
	copied := *m
	copied.Nutrition = cloneBytes(m.Nutrition)
	if m.Transcription != nil {
		transcription := *m.Transcription
		copied.Transcription = &transcription
	}
	if m.FailureMessage != nil {
		msg := *m.FailureMessage
		copied.FailureMessage = &msg
	}
	return copied
}

func cloneBytes(in []byte) []byte {
	if in == nil {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}
