package testsupport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/recommender/internal/classifier"
	"example.com/recommender/internal/features"
	"example.com/recommender/internal/knowledge"
)

// TrainingColumns mirrors the column order of a model trained with a drop-first gender
// encoding.
var TrainingColumns = []string{
	features.ColumnAge,
	features.ColumnWeight,
	features.ColumnHeight,
	features.ColumnBMI,
	features.ColumnFatPercentage,
	features.ColumnExperienceLevel,
	features.ColumnWorkoutFrequency,
	"Gender_Male",
}

// Classes are the exercise labels the stub classifier scores, in model order.
var Classes = []string{
	"Bench Press",
	"Deadlifts",
	"Lunges",
	"Plank",
	"Pull-ups",
	"Squats",
}

// Probabilities is the stub distribution over Classes. It sums to 1 and carries a tie
// between Lunges and Plank.
var Probabilities = []float64{0.30, 0.05, 0.15, 0.15, 0.10, 0.25}

// Schema returns the feature schema for TrainingColumns.
func Schema(t testing.TB) features.Schema {
	t.Helper()
	schema, err := features.NewSchema(TrainingColumns)
	require.NoError(t, err)
	return schema
}

// Classifier returns a static classifier over Classes.
func Classifier(t testing.TB) *classifier.Static {
	t.Helper()
	model, err := classifier.NewStatic(Classes, Probabilities, len(TrainingColumns))
	require.NoError(t, err)
	return model
}

// ExerciseRows is a small knowledge base in build order. Pull-ups only exists at
// level 1 and Plank is absent.
func ExerciseRows() []knowledge.ExerciseRow {
	return []knowledge.ExerciseRow{
		{ExerciseName: "Bench Press", ExperienceLevel: 1, Sets: 3, Reps: 12, CaloriesPer30Min: 210, Benefit: "Builds chest strength", Equipment: "Barbell", TargetMuscleGroup: "Chest", Difficulty: "Beginner"},
		{ExerciseName: "Bench Press", ExperienceLevel: 2, Sets: 4, Reps: 10, CaloriesPer30Min: 240, Benefit: "Builds chest strength", Equipment: "Barbell", TargetMuscleGroup: "Chest", Difficulty: "Intermediate"},
		{ExerciseName: "Deadlifts", ExperienceLevel: 2, Sets: 4, Reps: 6, CaloriesPer30Min: 300, Benefit: "Posterior chain", Equipment: "Barbell", TargetMuscleGroup: "Back", Difficulty: "Intermediate"},
		{ExerciseName: "Lunges", ExperienceLevel: 2, Sets: 3, Reps: 12, CaloriesPer30Min: math.NaN(), Benefit: "Balance", Equipment: "None", TargetMuscleGroup: "Legs", Difficulty: "Intermediate"},
		{ExerciseName: "Pull-ups", ExperienceLevel: 1, Sets: 3, Reps: 8, CaloriesPer30Min: 200, Benefit: "Grip and lats", Equipment: "Pull-up Bar", TargetMuscleGroup: "Back", Difficulty: "Beginner"},
		{ExerciseName: "Squats", ExperienceLevel: 2, Sets: 4, Reps: 10, CaloriesPer30Min: 280, Benefit: "Leg power", Equipment: "Barbell", TargetMuscleGroup: "Legs", Difficulty: "Intermediate"},
	}
}

// DietRows is a small diet knowledge base.
func DietRows() []knowledge.DietRow {
	return []knowledge.DietRow{
		{DietType: "Balanced", MealType: "Dinner", Calories: 650, Carbs: 70, Proteins: 40, Fats: 22},
		{DietType: "Balanced", MealType: "Lunch", Calories: 600, Carbs: 65, Proteins: 35, Fats: 20},
		{DietType: "Keto", MealType: "Lunch", Calories: 700, Carbs: 12, Proteins: 45, Fats: 52},
	}
}

// ExerciseBase indexes ExerciseRows.
func ExerciseBase() *knowledge.ExerciseBase { return knowledge.NewExerciseBase(ExerciseRows()) }

// DietBase indexes DietRows.
func DietBase() *knowledge.DietBase { return knowledge.NewDietBase(DietRows()) }

// ProfileJSON is the reference request body.
const ProfileJSON = `{
  "Age": 30,
  "Gender": "Male",
  "Weight (kg)": 75,
  "Height (m)": 1.75,
  "Fat_Percentage": 18,
  "Experience_Level": 2,
  "Workout_Frequency (days/week)": 4,
  "diet_type": "Balanced",
  "meal_type": "Lunch"
}`
