// Package knowledge holds the grouped reference tables that enrich classifier output:
// exercise details keyed by (exercise, experience level) and nutrition keyed by
// (diet type, meal type).
package knowledge

import (
	"context"
	"math"
)

// Column headers of the exported knowledge base tables.
const (
	HeaderExerciseName      = "Name of Exercise"
	HeaderExperienceLevel   = "Experience_Level"
	HeaderSets              = "Sets"
	HeaderReps              = "Reps"
	HeaderCaloriesPer30Min  = "Burns Calories (per 30 min)"
	HeaderBenefit           = "Benefit"
	HeaderEquipment         = "Equipment Needed"
	HeaderTargetMuscleGroup = "Target Muscle Group"
	HeaderDifficulty        = "Difficulty Level"

	HeaderDietType = "diet_type"
	HeaderMealType = "meal_type"
	HeaderCalories = "Calories"
	HeaderCarbs    = "Carbs"
	HeaderProteins = "Proteins"
	HeaderFats     = "Fats"
)

// ExerciseRow is one (exercise, experience level) group. Numeric fields are group means
// and may be NaN when every source value was missing.
type ExerciseRow struct {
	ExerciseName      string
	ExperienceLevel   int
	Sets              float64
	Reps              float64
	CaloriesPer30Min  float64
	Benefit           string
	Equipment         string
	TargetMuscleGroup string
	Difficulty        string
}

// DietRow is one (diet type, meal type) group of nutrition means.
type DietRow struct {
	DietType string
	MealType string
	Calories float64
	Carbs    float64
	Proteins float64
	Fats     float64
}

// Match tags how a lookup was resolved.
type Match int

const (
	// MatchNone means no row carries the requested key.
	MatchNone Match = iota
	// MatchExact means the full key matched.
	MatchExact
	// MatchFallback means only the relaxed key (exercise name) matched.
	MatchFallback
)

func (m Match) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchFallback:
		return "fallback"
	default:
		return "not_found"
	}
}

// Source loads knowledge base rows in build order.
type Source interface {
	LoadExercises(ctx context.Context) ([]ExerciseRow, error)
	LoadDiets(ctx context.Context) ([]DietRow, error)
}

// Load reads both tables from src and freezes them.
func Load(ctx context.Context, src Source) (*ExerciseBase, *DietBase, error) {
	exercises, err := src.LoadExercises(ctx)
	if err != nil {
		return nil, nil, err
	}
	diets, err := src.LoadDiets(ctx)
	if err != nil {
		return nil, nil, err
	}
	return NewExerciseBase(exercises), NewDietBase(diets), nil
}

func nullFloat(valid bool, v float64) float64 {
	if !valid {
		return math.NaN()
	}
	return v
}
