package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRankClassesOrdersAndTruncates(t *testing.T) {
	ranked, err := RankClasses([]string{"a", "b", "c", "d", "e"}, []float64{0.1, 0.4, 0.2, 0.25, 0.05}, 4)
	require.NoError(t, err)
	require.Equal(t, []RankedClass{
		{Class: "b", Probability: 0.4},
		{Class: "d", Probability: 0.25},
		{Class: "c", Probability: 0.2},
		{Class: "a", Probability: 0.1},
	}, ranked)
}

func TestRankClassesBreaksTiesByName(t *testing.T) {
	ranked, err := RankClasses([]string{"Squats", "Lunges", "Plank"}, []float64{0.25, 0.25, 0.5}, 3)
	require.NoError(t, err)
	require.Equal(t, "Plank", ranked[0].Class)
	require.Equal(t, "Lunges", ranked[1].Class)
	require.Equal(t, "Squats", ranked[2].Class)
}

func TestRankClassesKeepsAllWhenFewer(t *testing.T) {
	ranked, err := RankClasses([]string{"x", "y"}, []float64{0.3, 0.7}, 4)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	ranked, err = RankClasses([]string{"x", "y"}, []float64{0.3, 0.7}, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
}

func TestRankClassesNaNSortsLast(t *testing.T) {
	ranked, err := RankClasses([]string{"x", "y", "z"}, []float64{math.NaN(), 0.1, 0.2}, 3)
	require.NoError(t, err)
	require.Equal(t, "x", ranked[2].Class)
}

func TestRankClassesLengthMismatch(t *testing.T) {
	_, err := RankClasses([]string{"x"}, []float64{0.5, 0.5}, 1)
	require.Error(t, err)
}
