package knowledge

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var (
	exerciseHeaders = []string{
		HeaderExerciseName, HeaderExperienceLevel, HeaderSets, HeaderReps, HeaderCaloriesPer30Min,
		HeaderBenefit, HeaderEquipment, HeaderTargetMuscleGroup, HeaderDifficulty,
	}
	dietHeaders = []string{
		HeaderDietType, HeaderMealType, HeaderCalories, HeaderCarbs, HeaderProteins, HeaderFats,
	}
)

// CSVSource reads both tables from CSV exports with the original column headers.
type CSVSource struct {
	ExercisePath string
	DietPath     string
}

// LoadExercises implements Source.
func (s CSVSource) LoadExercises(ctx context.Context) ([]ExerciseRow, error) {
	f, err := os.Open(s.ExercisePath)
	if err != nil {
		return nil, fmt.Errorf("open exercise knowledge base: %w", err)
	}
	defer f.Close()
	rows, err := ReadExerciseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.ExercisePath, err)
	}
	return rows, nil
}

// LoadDiets implements Source.
func (s CSVSource) LoadDiets(ctx context.Context) ([]DietRow, error) {
	f, err := os.Open(s.DietPath)
	if err != nil {
		return nil, fmt.Errorf("open diet knowledge base: %w", err)
	}
	defer f.Close()
	rows, err := ReadDietCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.DietPath, err)
	}
	return rows, nil
}

// table is a header-indexed CSV reader.
type table struct {
	r       *csv.Reader
	columns map[string]int
	line    int
}

func newTable(r io.Reader, required []string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("missing header row")
		}
		return nil, err
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return &table{r: cr, columns: columns, line: 1}, nil
}

// next returns the following record, or io.EOF.
func (t *table) next() ([]string, error) {
	rec, err := t.r.Read()
	t.line++
	return rec, err
}

func (t *table) str(rec []string, name string) string {
	i, ok := t.columns[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// float returns nil for an empty or NaN cell.
func (t *table) float(rec []string, name string) (*float64, error) {
	raw := t.str(rec, name)
	if raw == "" || strings.EqualFold(raw, "nan") {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("line %d: column %q: %w", t.line, name, err)
	}
	return &v, nil
}

// int accepts whole floats such as "2.0", which pandas writes for integer columns
// that once held missing values.
func (t *table) int(rec []string, name string) (*int, error) {
	f, err := t.float(rec, name)
	if err != nil || f == nil {
		return nil, err
	}
	if *f != math.Trunc(*f) {
		return nil, fmt.Errorf("line %d: column %q: %v is not a whole number", t.line, name, *f)
	}
	v := int(*f)
	return &v, nil
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

// ReadExerciseCSV parses an exercise knowledge base export.
func ReadExerciseCSV(r io.Reader) ([]ExerciseRow, error) {
	t, err := newTable(r, []string{HeaderExerciseName, HeaderExperienceLevel})
	if err != nil {
		return nil, err
	}
	var rows []ExerciseRow
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		level, err := t.int(rec, HeaderExperienceLevel)
		if err != nil {
			return nil, err
		}
		if level == nil {
			return nil, fmt.Errorf("line %d: column %q is empty", t.line, HeaderExperienceLevel)
		}
		row := ExerciseRow{
			ExerciseName:      t.str(rec, HeaderExerciseName),
			ExperienceLevel:   *level,
			Benefit:           t.str(rec, HeaderBenefit),
			Equipment:         t.str(rec, HeaderEquipment),
			TargetMuscleGroup: t.str(rec, HeaderTargetMuscleGroup),
			Difficulty:        t.str(rec, HeaderDifficulty),
		}
		for name, dst := range map[string]*float64{
			HeaderSets:             &row.Sets,
			HeaderReps:             &row.Reps,
			HeaderCaloriesPer30Min: &row.CaloriesPer30Min,
		} {
			v, err := t.float(rec, name)
			if err != nil {
				return nil, err
			}
			*dst = orNaN(v)
		}
		rows = append(rows, row)
	}
}

// ReadDietCSV parses a diet knowledge base export.
func ReadDietCSV(r io.Reader) ([]DietRow, error) {
	t, err := newTable(r, []string{HeaderDietType, HeaderMealType})
	if err != nil {
		return nil, err
	}
	var rows []DietRow
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		row := DietRow{
			DietType: t.str(rec, HeaderDietType),
			MealType: t.str(rec, HeaderMealType),
		}
		for name, dst := range map[string]*float64{
			HeaderCalories: &row.Calories,
			HeaderCarbs:    &row.Carbs,
			HeaderProteins: &row.Proteins,
			HeaderFats:     &row.Fats,
		} {
			v, err := t.float(rec, name)
			if err != nil {
				return nil, err
			}
			*dst = orNaN(v)
		}
		rows = append(rows, row)
	}
}

// ReadRawRecords parses the historical dataset the knowledge bases are built from.
// Columns the builder does not use are ignored.
func ReadRawRecords(r io.Reader) ([]RawRecord, error) {
	t, err := newTable(r, []string{HeaderExerciseName, HeaderExperienceLevel, HeaderDietType, HeaderMealType})
	if err != nil {
		return nil, err
	}
	var out []RawRecord
	for {
		rec, err := t.next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		raw := RawRecord{
			ExerciseName:      t.str(rec, HeaderExerciseName),
			Benefit:           t.str(rec, HeaderBenefit),
			Equipment:         t.str(rec, HeaderEquipment),
			TargetMuscleGroup: t.str(rec, HeaderTargetMuscleGroup),
			Difficulty:        t.str(rec, HeaderDifficulty),
			DietType:          t.str(rec, HeaderDietType),
			MealType:          t.str(rec, HeaderMealType),
		}
		if raw.ExperienceLevel, err = t.int(rec, HeaderExperienceLevel); err != nil {
			return nil, err
		}
		for name, dst := range map[string]**float64{
			HeaderSets:             &raw.Sets,
			HeaderReps:             &raw.Reps,
			HeaderCaloriesPer30Min: &raw.CaloriesPer30Min,
			HeaderCalories:         &raw.Calories,
			HeaderCarbs:            &raw.Carbs,
			HeaderProteins:         &raw.Proteins,
			HeaderFats:             &raw.Fats,
		} {
			if *dst, err = t.float(rec, name); err != nil {
				return nil, err
			}
		}
		out = append(out, raw)
	}
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteExerciseCSV writes rows with the original headers.
func WriteExerciseCSV(w io.Writer, rows []ExerciseRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exerciseHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{
			row.ExerciseName,
			strconv.Itoa(row.ExperienceLevel),
			formatFloat(row.Sets),
			formatFloat(row.Reps),
			formatFloat(row.CaloriesPer30Min),
			row.Benefit,
			row.Equipment,
			row.TargetMuscleGroup,
			row.Difficulty,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDietCSV writes rows with the original headers.
func WriteDietCSV(w io.Writer, rows []DietRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(dietHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{
			row.DietType,
			row.MealType,
			formatFloat(row.Calories),
			formatFloat(row.Carbs),
			formatFloat(row.Proteins),
			formatFloat(row.Fats),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
