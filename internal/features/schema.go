// Package features turns request attributes into the positional feature vector the
// classifier was fit on.
package features

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Training-time column names.
const (
	ColumnAge              = "Age"
	ColumnWeight           = "Weight (kg)"
	ColumnHeight           = "Height (m)"
	ColumnBMI              = "BMI"
	ColumnFatPercentage    = "Fat_Percentage"
	ColumnExperienceLevel  = "Experience_Level"
	ColumnWorkoutFrequency = "Workout_Frequency (days/week)"
	ColumnGender           = "Gender"
	genderIndicatorPrefix  = ColumnGender + "_"
)

// Attributes is a validated attribute record.
type Attributes struct {
	Age              int
	Gender           string
	WeightKg         float64
	HeightM          float64
	FatPercentage    float64
	ExperienceLevel  int
	WorkoutFrequency int
}

// Schema is the ordered list of slots the classifier expects. It is immutable once built.
type Schema struct {
	columns []string
	index   map[string]int
}

// NewSchema builds a Schema from the training-time column list.
func NewSchema(columns []string) (Schema, error) {
	if len(columns) == 0 {
		return Schema{}, errors.New("feature schema has no columns")
	}
	index := make(map[string]int, len(columns))
	cols := make([]string, len(columns))
	for i, name := range columns {
		if strings.TrimSpace(name) == "" {
			return Schema{}, fmt.Errorf("feature schema column %d is empty", i)
		}
		if _, dup := index[name]; dup {
			return Schema{}, fmt.Errorf("feature schema column %q is duplicated", name)
		}
		index[name] = i
		cols[i] = name
	}
	return Schema{columns: cols, index: index}, nil
}

// Columns returns a copy of the slot names in order.
func (s Schema) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// Len returns the number of slots.
func (s Schema) Len() int { return len(s.columns) }

// Index returns the position of a named slot.
func (s Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// BMI returns weight / height². The result is not rounded.
func BMI(weightKg, heightM float64) (float64, error) {
	if math.IsNaN(heightM) || math.IsInf(heightM, 0) || heightM <= 0 {
		return 0, Invalid(ColumnHeight, "must be greater than 0")
	}
	if math.IsNaN(weightKg) || math.IsInf(weightKg, 0) {
		return 0, Invalid(ColumnWeight, "must be a finite number")
	}
	return weightKg / (heightM * heightM), nil
}

// Encode expands the attributes and reconciles them against the schema. Slots the
// encoding does not produce stay 0 and encoded columns the schema does not know are
// dropped. A gender with no indicator slot encodes as the baseline category.
func (s Schema) Encode(attrs Attributes) (Vector, error) {
	bmi, err := BMI(attrs.WeightKg, attrs.HeightM)
	if err != nil {
		return Vector{}, err
	}
	if math.IsNaN(attrs.FatPercentage) || math.IsInf(attrs.FatPercentage, 0) {
		return Vector{}, Invalid(ColumnFatPercentage, "must be a finite number")
	}

	encoded := map[string]float64{
		ColumnAge:              float64(attrs.Age),
		ColumnWeight:           attrs.WeightKg,
		ColumnHeight:           attrs.HeightM,
		ColumnBMI:              bmi,
		ColumnFatPercentage:    attrs.FatPercentage,
		ColumnExperienceLevel:  float64(attrs.ExperienceLevel),
		ColumnWorkoutFrequency: float64(attrs.WorkoutFrequency),
	}
	if attrs.Gender != "" {
		encoded[genderIndicatorPrefix+attrs.Gender] = 1
	}

	values := make([]float64, len(s.columns))
	for name, value := range encoded {
		if i, ok := s.index[name]; ok {
			values[i] = value
		}
	}
	return Vector{schema: s, values: values, bmi: bmi}, nil
}

// Vector is an encoded record aligned to a Schema.
type Vector struct {
	schema Schema
	values []float64
	bmi    float64
}

// Values returns the feature values in schema order.
func (v Vector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

// Get returns the value of a named slot.
func (v Vector) Get(name string) (float64, bool) {
	i, ok := v.schema.Index(name)
	if !ok {
		return 0, false
	}
	return v.values[i], true
}

// BMI returns the unrounded BMI computed during encoding.
func (v Vector) BMI() float64 { return v.bmi }
