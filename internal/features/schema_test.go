package features

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

var trainingColumns = []string{
	ColumnAge,
	ColumnWeight,
	ColumnHeight,
	ColumnBMI,
	ColumnFatPercentage,
	ColumnExperienceLevel,
	ColumnWorkoutFrequency,
	"Gender_Male",
}

func sampleAttributes() Attributes {
	return Attributes{
		Age:              30,
		Gender:           "Male",
		WeightKg:         75,
		HeightM:          1.75,
		FatPercentage:    18,
		ExperienceLevel:  2,
		WorkoutFrequency: 4,
	}
}

func TestBMI(t *testing.T) {
	bmi, err := BMI(75, 1.75)
	require.NoError(t, err)
	require.InDelta(t, 24.4898, bmi, 1e-4)
	require.Equal(t, 24.49, math.Round(bmi*100)/100)
}

func TestBMIRejectsNonPositiveHeight(t *testing.T) {
	for _, height := range []float64{0, -1.7, math.NaN(), math.Inf(1)} {
		_, err := BMI(70, height)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "height %v", height)
		require.Equal(t, ColumnHeight, verr.Field)
		require.False(t, verr.Missing)
	}
}

func TestEncodeFollowsSchemaOrder(t *testing.T) {
	schema, err := NewSchema(trainingColumns)
	require.NoError(t, err)

	vec, err := schema.Encode(sampleAttributes())
	require.NoError(t, err)

	values := vec.Values()
	require.Len(t, values, len(trainingColumns))
	require.Equal(t, 30.0, values[0])
	require.Equal(t, 75.0, values[1])
	require.Equal(t, 1.75, values[2])
	require.InDelta(t, 24.4898, values[3], 1e-4)
	require.Equal(t, 18.0, values[4])
	require.Equal(t, 2.0, values[5])
	require.Equal(t, 4.0, values[6])
	require.Equal(t, 1.0, values[7])
}

func TestEncodeBaselineAndUnseenGender(t *testing.T) {
	schema, err := NewSchema(trainingColumns)
	require.NoError(t, err)

	for _, gender := range []string{"Female", "Non-binary", ""} {
		attrs := sampleAttributes()
		attrs.Gender = gender
		vec, err := schema.Encode(attrs)
		require.NoError(t, err)
		indicator, ok := vec.Get("Gender_Male")
		require.True(t, ok)
		require.Zero(t, indicator, "gender %q", gender)
	}
}

func TestEncodeZeroFillsAndDropsColumns(t *testing.T) {
	schema, err := NewSchema([]string{"Workout_Frequency (days/week)", "Resting_BPM", "Age"})
	require.NoError(t, err)

	vec, err := schema.Encode(sampleAttributes())
	require.NoError(t, err)
	require.Equal(t, []float64{4, 0, 30}, vec.Values())

	_, ok := vec.Get(ColumnBMI)
	require.False(t, ok)
	require.InDelta(t, 24.4898, vec.BMI(), 1e-4)
}

func TestEncodeRejectsZeroHeight(t *testing.T) {
	schema, err := NewSchema(trainingColumns)
	require.NoError(t, err)

	attrs := sampleAttributes()
	attrs.HeightM = 0
	_, err = schema.Encode(attrs)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "Invalid value for field: Height (m) (must be greater than 0)", verr.Error())
}

func TestNewSchemaRejectsBadColumns(t *testing.T) {
	_, err := NewSchema(nil)
	require.Error(t, err)

	_, err = NewSchema([]string{"Age", "Age"})
	require.Error(t, err)

	_, err = NewSchema([]string{"Age", " "})
	require.Error(t, err)
}

func TestValidationErrorMessages(t *testing.T) {
	require.Equal(t, "Missing required field: Age", Missing("Age").Error())
	require.Equal(t, "Invalid value for field: Gender", Invalid("Gender", "").Error())
}
