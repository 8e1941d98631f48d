package ai

import (
	"context"
	"strings"

	"github.com/mealvoice/server/internal/nutrition"
)

// MockProvider returns deterministic estimates for local development and
// tests. It never touches the network.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (p *MockProvider) EstimateNutrition(ctx context.Context, mealText string) (nutrition.Response, error) {
	_ = ctx

	trimmed := strings.TrimSpace(mealText)
	lowered := strings.ToLower(trimmed)

	if trimmed == "" || !containsFoodWord(lowered) {
		input := trimmed
		return nutrition.Failure("the description does not mention any food or drink", &input), nil
	}

	mealType := "Snack"
	switch {
	case strings.Contains(lowered, "breakfast") || strings.Contains(lowered, "cereal") || strings.Contains(lowered, "eggs"):
		mealType = "Breakfast"
	case strings.Contains(lowered, "lunch") || strings.Contains(lowered, "sandwich"):
		mealType = "Lunch"
	case strings.Contains(lowered, "dinner") || strings.Contains(lowered, "pasta"):
		mealType = "Dinner"
	case strings.Contains(lowered, "coffee") || strings.Contains(lowered, "juice") || strings.Contains(lowered, "smoothie"):
		mealType = "Drink"
	}

	return nutrition.Success(nutrition.Analysis{
		MealType:      mealType,
		Description:   trimmed,
		TotalCalories: 420,
		TotalProtein:  22,
		TotalCarbs:    45,
		TotalFats:     16,
		Breakdown: []nutrition.Item{
			{
				Name:     "estimated meal",
				Portion:  "1 serving",
				Calories: 420,
				Protein:  22,
				Carbs:    45,
				Fats:     16,
				Micros:   []string{"iron", "vitamin C"},
			},
		},
	}), nil
}

var foodWords = []string{
	"eat", "ate", "meal", "breakfast", "lunch", "dinner", "snack",
	"coffee", "juice", "smoothie", "sandwich", "pasta", "cereal",
	"eggs", "rice", "chicken", "salad", "bread", "cheese", "apple",
	"banana", "yogurt", "soup", "pizza", "burger", "fish", "milk",
}

func containsFoodWord(lowered string) bool {
	for _, w := range foodWords {
		if strings.Contains(lowered, w) {
			return true
		}
	}
	return false
}
