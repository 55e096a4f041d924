package knowledge

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// RawRecord is one row of the historical training dataset. Nil numeric fields are
// missing values.
type RawRecord struct {
	ExerciseName      string
	ExperienceLevel   *int
	Sets              *float64
	Reps              *float64
	CaloriesPer30Min  *float64
	Benefit           string
	Equipment         string
	TargetMuscleGroup string
	Difficulty        string

	DietType string
	MealType string
	Calories *float64
	Carbs    *float64
	Proteins *float64
	Fats     *float64
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil || math.IsNaN(*v) {
		return
	}
	m.sum += *v
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return math.NaN()
	}
	return m.sum / float64(m.n)
}

// first keeps the first non-empty value it sees.
type first string

func (f *first) add(v string) {
	if *f == "" && strings.TrimSpace(v) != "" {
		*f = first(v)
	}
}

type exerciseGroup struct {
	sets, reps, calories                   mean
	benefit, equipment, target, difficulty first
}

type dietGroup struct {
	calories, carbs, proteins, fats mean
}

// Builder aggregates raw records into knowledge base rows: numeric columns are averaged
// and descriptive columns keep the first observed value. Records with an empty group
// key are skipped.
type Builder struct {
	exercises map[exerciseKey]*exerciseGroup
	diets     map[dietKey]*dietGroup
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		exercises: make(map[exerciseKey]*exerciseGroup),
		diets:     make(map[dietKey]*dietGroup),
	}
}

// Add folds one record into both tables.
func (b *Builder) Add(rec RawRecord) {
	if rec.ExerciseName != "" && rec.ExperienceLevel != nil {
		key := exerciseKey{name: rec.ExerciseName, level: *rec.ExperienceLevel}
		g, ok := b.exercises[key]
		if !ok {
			g = &exerciseGroup{}
			b.exercises[key] = g
		}
		g.sets.add(rec.Sets)
		g.reps.add(rec.Reps)
		g.calories.add(rec.CaloriesPer30Min)
		g.benefit.add(rec.Benefit)
		g.equipment.add(rec.Equipment)
		g.target.add(rec.TargetMuscleGroup)
		g.difficulty.add(rec.Difficulty)
	}

	if rec.DietType != "" && rec.MealType != "" {
		key := dietKey{dietType: rec.DietType, mealType: rec.MealType}
		g, ok := b.diets[key]
		if !ok {
			g = &dietGroup{}
			b.diets[key] = g
		}
		g.calories.add(rec.Calories)
		g.carbs.add(rec.Carbs)
		g.proteins.add(rec.Proteins)
		g.fats.add(rec.Fats)
	}
}

// Exercises returns the exercise table sorted by name, then experience level.
func (b *Builder) Exercises() []ExerciseRow {
	rows := make([]ExerciseRow, 0, len(b.exercises))
	for key, g := range b.exercises {
		rows = append(rows, ExerciseRow{
			ExerciseName:      key.name,
			ExperienceLevel:   key.level,
			Sets:              g.sets.value(),
			Reps:              g.reps.value(),
			CaloriesPer30Min:  g.calories.value(),
			Benefit:           string(g.benefit),
			Equipment:         string(g.equipment),
			TargetMuscleGroup: string(g.target),
			Difficulty:        string(g.difficulty),
		})
	}
	slices.SortFunc(rows, func(a, b ExerciseRow) int {
		if c := cmp.Compare(a.ExerciseName, b.ExerciseName); c != 0 {
			return c
		}
		return cmp.Compare(a.ExperienceLevel, b.ExperienceLevel)
	})
	return rows
}

// Diets returns the diet table sorted by diet type, then meal type.
func (b *Builder) Diets() []DietRow {
	rows := make([]DietRow, 0, len(b.diets))
	for key, g := range b.diets {
		rows = append(rows, DietRow{
			DietType: key.dietType,
			MealType: key.mealType,
			Calories: g.calories.value(),
			Carbs:    g.carbs.value(),
			Proteins: g.proteins.value(),
			Fats:     g.fats.value(),
		})
	}
	slices.SortFunc(rows, func(a, b DietRow) int {
		if c := cmp.Compare(a.DietType, b.DietType); c != 0 {
			return c
		}
		return cmp.Compare(a.MealType, b.MealType)
	})
	return rows
}
