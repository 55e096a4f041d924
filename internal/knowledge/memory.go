package knowledge

import (
	"context"
	"slices"
	"sync"
)

// Store is a Source that can also be rewritten wholesale.
type Store interface {
	Source
	Save(ctx context.Context, exercises []ExerciseRow, diets []DietRow) error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

// MemoryStore keeps both tables in memory for local development and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	exercises []ExerciseRow
	diets     []DietRow
}

// NewMemoryStore constructs a store seeded with the given rows.
func NewMemoryStore(exercises []ExerciseRow, diets []DietRow) *MemoryStore {
	return &MemoryStore{exercises: slices.Clone(exercises), diets: slices.Clone(diets)}
}

// Save replaces both tables.
func (m *MemoryStore) Save(ctx context.Context, exercises []ExerciseRow, diets []DietRow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exercises = slices.Clone(exercises)
	m.diets = slices.Clone(diets)
	return nil
}

// LoadExercises implements Source.
func (m *MemoryStore) LoadExercises(ctx context.Context) ([]ExerciseRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.exercises), nil
}

// LoadDiets implements Source.
func (m *MemoryStore) LoadDiets(ctx context.Context) ([]DietRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.diets), nil
}
