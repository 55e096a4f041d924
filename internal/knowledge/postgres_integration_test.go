//go:build integration

package knowledge_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/recommender/internal/knowledge"
	"example.com/recommender/internal/testsupport"
)

func TestPostgresStoreRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	store := knowledge.NewPostgresStore(testsupport.StartPostgres(ctx, t))
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.Save(ctx, testsupport.ExerciseRows(), testsupport.DietRows()))

	exercises, diets, err := knowledge.Load(ctx, store)
	require.NoError(t, err)
	require.Equal(t, len(testsupport.ExerciseRows()), exercises.Len())
	require.Equal(t, len(testsupport.DietRows()), diets.Len())

	bench := exercises.Lookup("Bench Press", 3)
	require.Equal(t, knowledge.MatchFallback, bench.Match)
	require.Equal(t, 1, bench.Row.ExperienceLevel)
	require.True(t, math.IsNaN(exercises.Lookup("Lunges", 2).Row.CaloriesPer30Min))

	// Saving again replaces the previous contents.
	require.NoError(t, store.Save(ctx, testsupport.ExerciseRows()[:2], nil))
	exercises, diets, err = knowledge.Load(ctx, store)
	require.NoError(t, err)
	require.Equal(t, 2, exercises.Len())
	require.Equal(t, 0, diets.Len())
}
