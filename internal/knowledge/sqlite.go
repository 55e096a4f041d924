package knowledge

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	_ "modernc.org/sqlite"
)

const knowledgeSchema = `
    CREATE TABLE IF NOT EXISTS exercise_knowledge (
        position INTEGER NOT NULL,
        exercise_name TEXT NOT NULL,
        experience_level INTEGER NOT NULL,
        sets DOUBLE PRECISION,
        reps DOUBLE PRECISION,
        calories_per_30min DOUBLE PRECISION,
        benefit TEXT NOT NULL DEFAULT '',
        equipment TEXT NOT NULL DEFAULT '',
        target_muscle_group TEXT NOT NULL DEFAULT '',
        difficulty TEXT NOT NULL DEFAULT '',
        PRIMARY KEY (exercise_name, experience_level)
    );

    CREATE TABLE IF NOT EXISTS diet_knowledge (
        position INTEGER NOT NULL,
        diet_type TEXT NOT NULL,
        meal_type TEXT NOT NULL,
        calories DOUBLE PRECISION,
        carbs DOUBLE PRECISION,
        proteins DOUBLE PRECISION,
        fats DOUBLE PRECISION,
        PRIMARY KEY (diet_type, meal_type)
    );
    `

const (
	selectExercises = `SELECT exercise_name, experience_level, sets, reps, calories_per_30min,
        benefit, equipment, target_muscle_group, difficulty
        FROM exercise_knowledge ORDER BY position`
	selectDiets = `SELECT diet_type, meal_type, calories, carbs, proteins, fats
        FROM diet_knowledge ORDER BY position`
)

// SQLiteStore persists the knowledge bases in a single SQLite file. Build order is kept
// in the position column so name-only fallback stays deterministic across reloads.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize knowledge schema: %w", err)
	}
	return store, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(knowledgeSchema)
	return err
}

// Save replaces both tables with the supplied rows in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, exercises []ExerciseRow, diets []DietRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM exercise_knowledge`); err != nil {
		return fmt.Errorf("clear exercise knowledge: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM diet_knowledge`); err != nil {
		return fmt.Errorf("clear diet knowledge: %w", err)
	}

	for i, row := range exercises {
		_, err := tx.ExecContext(ctx, `
        INSERT INTO exercise_knowledge (position, exercise_name, experience_level, sets, reps,
            calories_per_30min, benefit, equipment, target_muscle_group, difficulty)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (exercise_name, experience_level) DO NOTHING`,
			i, row.ExerciseName, row.ExperienceLevel, sqlFloat(row.Sets), sqlFloat(row.Reps),
			sqlFloat(row.CaloriesPer30Min), row.Benefit, row.Equipment, row.TargetMuscleGroup, row.Difficulty)
		if err != nil {
			return fmt.Errorf("insert exercise %q: %w", row.ExerciseName, err)
		}
	}
	for i, row := range diets {
		_, err := tx.ExecContext(ctx, `
        INSERT INTO diet_knowledge (position, diet_type, meal_type, calories, carbs, proteins, fats)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (diet_type, meal_type) DO NOTHING`,
			i, row.DietType, row.MealType, sqlFloat(row.Calories), sqlFloat(row.Carbs),
			sqlFloat(row.Proteins), sqlFloat(row.Fats))
		if err != nil {
			return fmt.Errorf("insert diet %q/%q: %w", row.DietType, row.MealType, err)
		}
	}

	return tx.Commit()
}

// LoadExercises implements Source.
func (s *SQLiteStore) LoadExercises(ctx context.Context) ([]ExerciseRow, error) {
	rows, err := s.db.QueryContext(ctx, selectExercises)
	if err != nil {
		return nil, fmt.Errorf("query exercise knowledge: %w", err)
	}
	defer rows.Close()

	var out []ExerciseRow
	for rows.Next() {
		var (
			row                  ExerciseRow
			sets, reps, calories sql.NullFloat64
		)
		if err := rows.Scan(&row.ExerciseName, &row.ExperienceLevel, &sets, &reps, &calories,
			&row.Benefit, &row.Equipment, &row.TargetMuscleGroup, &row.Difficulty); err != nil {
			return nil, fmt.Errorf("scan exercise knowledge: %w", err)
		}
		row.Sets = nullFloat(sets.Valid, sets.Float64)
		row.Reps = nullFloat(reps.Valid, reps.Float64)
		row.CaloriesPer30Min = nullFloat(calories.Valid, calories.Float64)
		out = append(out, row)
	}
	return out, rows.Err()
}

// LoadDiets implements Source.
func (s *SQLiteStore) LoadDiets(ctx context.Context) ([]DietRow, error) {
	rows, err := s.db.QueryContext(ctx, selectDiets)
	if err != nil {
		return nil, fmt.Errorf("query diet knowledge: %w", err)
	}
	defer rows.Close()

	var out []DietRow
	for rows.Next() {
		var (
			row                            DietRow
			calories, carbs, proteins, fat sql.NullFloat64
		)
		if err := rows.Scan(&row.DietType, &row.MealType, &calories, &carbs, &proteins, &fat); err != nil {
			return nil, fmt.Errorf("scan diet knowledge: %w", err)
		}
		row.Calories = nullFloat(calories.Valid, calories.Float64)
		row.Carbs = nullFloat(carbs.Valid, carbs.Float64)
		row.Proteins = nullFloat(proteins.Valid, proteins.Float64)
		row.Fats = nullFloat(fat.Valid, fat.Float64)
		out = append(out, row)
	}
	return out, rows.Err()
}

// sqlFloat maps NaN to NULL.
func sqlFloat(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}
