package knowledge

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int { return &v }

func TestBuilderAveragesNumericColumns(t *testing.T) {
	b := NewBuilder()
	b.Add(RawRecord{ExerciseName: "Squats", ExperienceLevel: intp(2), Sets: f64(3), Reps: f64(10), Benefit: "", Equipment: "Barbell",
		DietType: "Keto", MealType: "Dinner", Calories: f64(600), Carbs: f64(10)})
	b.Add(RawRecord{ExerciseName: "Squats", ExperienceLevel: intp(2), Sets: f64(5), Reps: nil, Benefit: "Leg power", Equipment: "Rack",
		DietType: "Keto", MealType: "Dinner", Calories: f64(800), Carbs: f64(20)})

	exercises := b.Exercises()
	require.Len(t, exercises, 1)
	row := exercises[0]
	require.InDelta(t, 4, row.Sets, 1e-9)
	require.InDelta(t, 10, row.Reps, 1e-9)
	require.True(t, math.IsNaN(row.CaloriesPer30Min))
	require.Equal(t, "Leg power", row.Benefit)
	require.Equal(t, "Barbell", row.Equipment)

	diets := b.Diets()
	require.Len(t, diets, 1)
	require.InDelta(t, 700, diets[0].Calories, 1e-9)
	require.InDelta(t, 15, diets[0].Carbs, 1e-9)
	require.True(t, math.IsNaN(diets[0].Fats))
}

func TestBuilderSkipsIncompleteKeysAndSorts(t *testing.T) {
	b := NewBuilder()
	b.Add(RawRecord{ExerciseName: "Squats", ExperienceLevel: intp(3)})
	b.Add(RawRecord{ExerciseName: "Bench Press", ExperienceLevel: intp(2)})
	b.Add(RawRecord{ExerciseName: "Bench Press", ExperienceLevel: intp(1)})
	b.Add(RawRecord{ExerciseName: "Lunges"})
	b.Add(RawRecord{ExerciseName: "", ExperienceLevel: intp(1), DietType: "Vegan"})

	exercises := b.Exercises()
	require.Len(t, exercises, 3)
	require.Equal(t, "Bench Press", exercises[0].ExerciseName)
	require.Equal(t, 1, exercises[0].ExperienceLevel)
	require.Equal(t, 2, exercises[1].ExperienceLevel)
	require.Equal(t, "Squats", exercises[2].ExerciseName)
	require.Empty(t, b.Diets())
}
