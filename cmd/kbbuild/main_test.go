package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/recommender/internal/knowledge"
)

const dataset = `Age,Gender,Name of Exercise,Experience_Level,Sets,Reps,Burns Calories (per 30 min),Benefit,Equipment Needed,Target Muscle Group,Difficulty Level,diet_type,meal_type,Calories,Carbs,Proteins,Fats
30,Male,Squats,2,4,10,280,Leg power,Barbell,Legs,Intermediate,Balanced,Lunch,600,60,35,20
41,Female,Squats,2,2,12,300,,Barbell,Legs,Intermediate,Balanced,Lunch,700,70,45,
25,Male,Plank,1,3,1,,Core stability,None,Core,Beginner,Keto,Dinner,550,10,40,45
`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gym.csv")
	require.NoError(t, os.WriteFile(path, []byte(dataset), 0o600))
	return path
}

func TestRunWritesCSVAndSQLite(t *testing.T) {
	dir := t.TempDir()
	exerciseOut := filepath.Join(dir, "knowledge_base.csv")
	dietOut := filepath.Join(dir, "diet_knowledge_base.csv")
	sqlitePath := filepath.Join(dir, "knowledge.db")

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-input", writeDataset(t),
		"-exercise-out", exerciseOut,
		"-diet-out", dietOut,
		"-sqlite", sqlitePath,
	}, &out)
	require.NoError(t, err)

	src := knowledge.CSVSource{ExercisePath: exerciseOut, DietPath: dietOut}
	exercises, diets, err := knowledge.Load(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, 2, exercises.Len())
	require.Equal(t, 2, diets.Len())

	squats := exercises.Lookup("Squats", 2)
	require.Equal(t, knowledge.MatchExact, squats.Match)
	require.InDelta(t, 3, squats.Row.Sets, 1e-9)
	require.InDelta(t, 290, squats.Row.CaloriesPer30Min, 1e-9)
	require.Equal(t, "Leg power", squats.Row.Benefit)

	lunch := diets.Lookup("Balanced", "Lunch")
	require.True(t, lunch.Found())
	require.InDelta(t, 650, lunch.Row.Calories, 1e-9)
	require.InDelta(t, 20, lunch.Row.Fats, 1e-9)

	store, err := knowledge.OpenSQLite(sqlitePath)
	require.NoError(t, err)
	defer store.Close()
	fromDB, _, err := knowledge.Load(context.Background(), store)
	require.NoError(t, err)
	require.Equal(t, exercises.Rows()[0].ExerciseName, fromDB.Rows()[0].ExerciseName)
}

func TestParseFlagsRequiresInputAndOutput(t *testing.T) {
	var out bytes.Buffer
	_, err := parseFlags([]string{"-exercise-out", "x.csv"}, &out)
	require.ErrorContains(t, err, "-input is required")

	_, err = parseFlags([]string{"-input", "gym.csv"}, &out)
	require.ErrorContains(t, err, "at least one of")
}

func TestRunReportsMissingInput(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"-input", filepath.Join(t.TempDir(), "absent.csv"), "-sqlite", filepath.Join(t.TempDir(), "kb.db")}, &out)
	require.Error(t, err)
}
