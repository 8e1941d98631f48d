// Package nutrition defines the nutrition estimation data contract: the
// per-item breakdown, the meal analysis, and the success-or-failure
// response decoded from the model provider's wire format.
package nutrition

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrContract reports a wire payload that does not satisfy the response
// contract (missing discriminator, success without data, failure without
// an error message, and so on).
var ErrContract = errors.New("nutrition response violates contract")

// Item is one recognized component of a meal with its estimated portion
// and macros.
type Item struct {
	Name     string   `json:"item"`
	Portion  string   `json:"portion"`
	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fats     float64  `json:"fats"`
	Micros   []string `json:"micros,omitempty"`
}

// Analysis is a full meal estimate. Totals are carried as reported by the
// provider and are not reconciled against the breakdown sum.
type Analysis struct {
	MealType      string  `json:"meal_type"`
	Description   string  `json:"description"`
	TotalCalories float64 `json:"total_calories"`
	TotalProtein  float64 `json:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs"`
	TotalFats     float64 `json:"total_fats"`
	Breakdown     []Item  `json:"breakdown"`
}

// Response is the outcome of an estimation: either a successful Analysis
// or a failure with a reason and, optionally, the text that could not be
// parsed as food. The flat wire envelope (success/data/error/
// unparseable_meal) exists only at the JSON boundary; code holds a
// Response and branches via Analysis or Failure.
type Response struct {
	analysis    *Analysis
	failReason  string
	unparseable *string
}

// Success wraps an analysis into a successful response.
func Success(a Analysis) Response {
	return Response{analysis: &a}
}

// Failure builds a failed response. unparseableMeal may be nil when the
// failure is not about unrecognizable input.
func Failure(reason string, unparseableMeal *string) Response {
	return Response{failReason: reason, unparseable: unparseableMeal}
}

// IsSuccess reports whether the response carries an analysis.
func (r Response) IsSuccess() bool {
	return r.analysis != nil
}

// Analysis returns the successful analysis, if any.
func (r Response) Analysis() (Analysis, bool) {
	if r.analysis == nil {
		return Analysis{}, false
	}
	return *r.analysis, true
}

// Failure returns the failure reason and the unparseable input (nil when
// absent). ok is false for successful responses.
func (r Response) Failure() (reason string, unparseableMeal *string, ok bool) {
	if r.analysis != nil {
		return "", nil, false
	}
	return r.failReason, r.unparseable, true
}

// wireResponse is the provider's flat four-field envelope.
type wireResponse struct {
	Success         *bool     `json:"success"`
	Data            *Analysis `json:"data"`
	Error           *string   `json:"error"`
	UnparseableMeal *string   `json:"unparseable_meal"`
}

// Decode parses the flat wire envelope and validates the contract:
// success=true requires data and forbids error, success=false requires a
// non-empty error and forbids data.
func Decode(raw []byte) (Response, error) {
	var wire wireResponse
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrContract, err)
	}

	if wire.Success == nil {
		return Response{}, fmt.Errorf("%w: missing success field", ErrContract)
	}

	if *wire.Success {
		if wire.Data == nil {
			return Response{}, fmt.Errorf("%w: success without data", ErrContract)
		}
		if wire.Error != nil && *wire.Error != "" {
			return Response{}, fmt.Errorf("%w: success with error set", ErrContract)
		}
		return Success(*wire.Data), nil
	}

	if wire.Error == nil || strings.TrimSpace(*wire.Error) == "" {
		return Response{}, fmt.Errorf("%w: failure without error message", ErrContract)
	}
	if wire.Data != nil {
		return Response{}, fmt.Errorf("%w: failure with data set", ErrContract)
	}
	return Failure(*wire.Error, wire.UnparseableMeal), nil
}

// MarshalJSON emits the flat four-field envelope with explicit nulls, the
// shape clients consume.
func (r Response) MarshalJSON() ([]byte, error) {
	success := r.analysis != nil
	wire := wireResponse{
		Success: &success,
		Data:    r.analysis,
	}
	if !success {
		reason := r.failReason
		wire.Error = &reason
		wire.UnparseableMeal = r.unparseable
	}
	return json.Marshal(wire)
}

// UnmarshalJSON decodes the flat envelope with full contract validation.
func (r *Response) UnmarshalJSON(raw []byte) error {
	decoded, err := Decode(raw)
	if err != nil {
		return err
	}
	*r = decoded
	return nil
}

// Known meal-type labels, matched case-insensitively for grouping.
var knownMealTypes = map[string]string{
	"breakfast": "Breakfast",
	"lunch":     "Lunch",
	"dinner":    "Dinner",
	"snack":     "Snack",
	"drink":     "Drink",
}

// DisplayMealType normalizes a free-form meal type label to one of the
// known display groups. Unknown labels group under Snack; the raw value
// stays stored verbatim.
func DisplayMealType(raw string) string {
	if label, ok := knownMealTypes[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return label
	}
	return "Snack"
}
