package knowledge

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the knowledge tables in a shared Postgres database. The tables
// mirror the SQLite layout.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the knowledge tables when missing.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, knowledgeSchema); err != nil {
		return fmt.Errorf("create knowledge schema: %w", err)
	}
	return nil
}

// Save replaces both tables with the supplied rows in one transaction.
func (p *PostgresStore) Save(ctx context.Context, exercises []ExerciseRow, diets []DietRow) (err error) {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM exercise_knowledge`); err != nil {
		return fmt.Errorf("clear exercise knowledge: %w", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM diet_knowledge`); err != nil {
		return fmt.Errorf("clear diet knowledge: %w", err)
	}

	batch := &pgx.Batch{}
	for i, row := range exercises {
		batch.Queue(`INSERT INTO exercise_knowledge (position, exercise_name, experience_level, sets, reps,
            calories_per_30min, benefit, equipment, target_muscle_group, difficulty)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (exercise_name, experience_level) DO NOTHING`,
			i, row.ExerciseName, row.ExperienceLevel, sqlFloat(row.Sets), sqlFloat(row.Reps),
			sqlFloat(row.CaloriesPer30Min), row.Benefit, row.Equipment, row.TargetMuscleGroup, row.Difficulty)
	}
	for i, row := range diets {
		batch.Queue(`INSERT INTO diet_knowledge (position, diet_type, meal_type, calories, carbs, proteins, fats)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (diet_type, meal_type) DO NOTHING`,
			i, row.DietType, row.MealType, sqlFloat(row.Calories), sqlFloat(row.Carbs),
			sqlFloat(row.Proteins), sqlFloat(row.Fats))
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert knowledge rows: %w", err)
	}

	return tx.Commit(ctx)
}

// LoadExercises implements Source.
func (p *PostgresStore) LoadExercises(ctx context.Context) ([]ExerciseRow, error) {
	rows, err := p.pool.Query(ctx, selectExercises)
	if err != nil {
		return nil, fmt.Errorf("query exercise knowledge: %w", err)
	}
	defer rows.Close()

	var out []ExerciseRow
	for rows.Next() {
		var (
			row                  ExerciseRow
			sets, reps, calories *float64
		)
		if err := rows.Scan(&row.ExerciseName, &row.ExperienceLevel, &sets, &reps, &calories,
			&row.Benefit, &row.Equipment, &row.TargetMuscleGroup, &row.Difficulty); err != nil {
			return nil, fmt.Errorf("scan exercise knowledge: %w", err)
		}
		row.Sets = orNaN(sets)
		row.Reps = orNaN(reps)
		row.CaloriesPer30Min = orNaN(calories)
		out = append(out, row)
	}
	return out, rows.Err()
}

// LoadDiets implements Source.
func (p *PostgresStore) LoadDiets(ctx context.Context) ([]DietRow, error) {
	rows, err := p.pool.Query(ctx, selectDiets)
	if err != nil {
		return nil, fmt.Errorf("query diet knowledge: %w", err)
	}
	defer rows.Close()

	var out []DietRow
	for rows.Next() {
		var (
			row                            DietRow
			calories, carbs, proteins, fat *float64
		)
		if err := rows.Scan(&row.DietType, &row.MealType, &calories, &carbs, &proteins, &fat); err != nil {
			return nil, fmt.Errorf("scan diet knowledge: %w", err)
		}
		row.Calories = orNaN(calories)
		row.Carbs = orNaN(carbs)
		row.Proteins = orNaN(proteins)
		row.Fats = orNaN(fat)
		out = append(out, row)
	}
	return out, rows.Err()
}
