// Package units holds unit conversions and the daily calorie target
// calculation. Everything here is pure arithmetic over validated inputs;
// metric values are the canonical representation and imperial exists only
// for display.
package units

import "math"

// Sex is the biological sex used by the BMR formula.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ActivityLevel selects the TDEE multiplier.
type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLightlyActive    ActivityLevel = "lightly_active"
	ActivityModeratelyActive ActivityLevel = "moderately_active"
	ActivityVeryActive       ActivityLevel = "very_active"
	ActivityExtremelyActive  ActivityLevel = "extremely_active"
)

// Goal selects the calorie adjustment applied on top of TDEE.
type Goal string

const (
	GoalLoseWeight     Goal = "lose_weight"
	GoalMaintainWeight Goal = "maintain_weight"
	GoalBuildMuscle    Goal = "build_muscle"
	GoalGainWeight     Goal = "gain_weight"
)

const (
	cmPerInch = 2.54
	lbsPerKg  = 2.20462

	// Safety floors. Targets below these are clinically unsafe defaults.
	minCaloriesMale   = 1500
	minCaloriesFemale = 1200
)

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:        1.2,
	ActivityLightlyActive:    1.375,
	ActivityModeratelyActive: 1.55,
	ActivityVeryActive:       1.725,
	ActivityExtremelyActive:  1.9,
}

var goalAdjustments = map[Goal]int{
	GoalLoseWeight:     -500,
	GoalMaintainWeight: 0,
	GoalBuildMuscle:    300,
	GoalGainWeight:     500,
}

// macroSplits maps each goal to carbs/fats/protein percentages.
// Each row sums to exactly 100.
var macroSplits = map[Goal][3]int{
	GoalLoseWeight:     {40, 30, 30},
	GoalMaintainWeight: {45, 30, 25},
	GoalBuildMuscle:    {40, 25, 35},
	GoalGainWeight:     {50, 25, 25},
}

// ValidSex reports whether s is a recognized sex token.
func ValidSex(s Sex) bool {
	return s == SexMale || s == SexFemale
}

// ValidActivityLevel reports whether a is a recognized activity token.
func ValidActivityLevel(a ActivityLevel) bool {
	_, ok := activityMultipliers[a]
	return ok
}

// ValidGoal reports whether g is a recognized goal token.
func ValidGoal(g Goal) bool {
	_, ok := goalAdjustments[g]
	return ok
}

// CmToInches converts whole centimeters to whole inches using
// round-half-to-even, so that repeated conversion is stable.
func CmToInches(cm int) int {
	return int(math.RoundToEven(float64(cm) / cmPerInch))
}

// InchesToCm converts whole inches to whole centimeters using
// round-half-to-even.
func InchesToCm(inches int) int {
	return int(math.RoundToEven(float64(inches) * cmPerInch))
}

// CmToFeetAndInches splits a height in centimeters into feet plus
// remaining inches.
func CmToFeetAndInches(cm int) (feet, inches int) {
	total := CmToInches(cm)
	return total / 12, total % 12
}

// FeetAndInchesToCm converts feet plus inches back to centimeters.
func FeetAndInchesToCm(feet, inches int) int {
	return InchesToCm(feet*12 + inches)
}

// KgToLbs converts kilograms to pounds. No rounding is applied here;
// display formatting decides precision.
func KgToLbs(kg float64) float64 {
	return kg * lbsPerKg
}

// LbsToKg converts pounds to kilograms.
func LbsToKg(lbs float64) float64 {
	return lbs / lbsPerKg
}

// BMR computes basal metabolic rate via Mifflin-St Jeor.
func BMR(sex Sex, age, heightCm int, weightKg float64) float64 {
	base := 10*weightKg + 6.25*float64(heightCm) - 5*float64(age)
	if sex == SexFemale {
		return base - 161
	}
	return base + 5
}

// TDEE scales BMR by the activity multiplier. Unknown activity levels
// fall back to sedentary.
func TDEE(bmr float64, activity ActivityLevel) float64 {
	mult, ok := activityMultipliers[activity]
	if !ok {
		mult = activityMultipliers[ActivitySedentary]
	}
	return bmr * mult
}

// TargetCalories computes the daily calorie target: floor(TDEE) plus the
// goal adjustment, clamped to the sex-specific safety floor.
func TargetCalories(sex Sex, age, heightCm int, weightKg float64, activity ActivityLevel, goal Goal) int {
	tdee := TDEE(BMR(sex, age, heightCm, weightKg), activity)
	target := int(math.Floor(tdee)) + goalAdjustments[goal]

	floor := minCaloriesMale
	if sex == SexFemale {
		floor = minCaloriesFemale
	}
	if target < floor {
		target = floor
	}
	return target
}

// MacroPercentages returns the carbs/fats/protein percentage split for a
// goal. Unknown goals get the maintenance split. The three values always
// sum to 100.
func MacroPercentages(goal Goal) (carbs, fats, protein int) {
	split, ok := macroSplits[goal]
	if !ok {
		split = macroSplits[GoalMaintainWeight]
	}
	return split[0], split[1], split[2]
}

// MacroGrams converts a calorie budget and percentage split into grams.
// The divisors bundle kcal-per-gram with the percent scale: 400 is
// 4 kcal/g * 100 for carbs and protein, 900 is 9 kcal/g * 100 for fat.
func MacroGrams(calories, carbsPercent, fatsPercent, proteinPercent int) (carbsG, fatsG, proteinG int) {
	carbsG = calories * carbsPercent / 400
	fatsG = calories * fatsPercent / 900
	proteinG = calories * proteinPercent / 400
	return carbsG, fatsG, proteinG
}
