package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const validProfile = `{"Age":30,"Gender":"Male","Weight (kg)":75,"Height (m)":1.75,"Fat_Percentage":18,"Experience_Level":2,"Workout_Frequency (days/week)":4}`

func TestDecodeProfile(t *testing.T) {
	req, err := DecodeProfile([]byte(validProfile))
	require.NoError(t, err)
	require.Equal(t, 30, req.Attributes.Age)
	require.Equal(t, "Male", req.Attributes.Gender)
	require.InDelta(t, 1.75, req.Attributes.HeightM, 1e-9)
	require.Equal(t, 4, req.Attributes.WorkoutFrequency)
	require.Empty(t, req.DietType)
}

func TestDecodeProfileMissingField(t *testing.T) {
	cases := map[string]string{
		"Age":                           `{"Gender":"Male","Weight (kg)":75,"Height (m)":1.75,"Fat_Percentage":18,"Experience_Level":2,"Workout_Frequency (days/week)":4}`,
		"Weight (kg)":                   `{"Age":30,"Gender":"Male","Height (m)":1.75,"Fat_Percentage":18,"Experience_Level":2,"Workout_Frequency (days/week)":4}`,
		"Workout_Frequency (days/week)": `{"Age":30,"Gender":"Male","Weight (kg)":75,"Height (m)":1.75,"Fat_Percentage":18,"Experience_Level":2}`,
		"Gender":                        `{"Age":30,"Gender":null,"Weight (kg)":75,"Height (m)":1.75,"Fat_Percentage":18,"Experience_Level":2,"Workout_Frequency (days/week)":4}`,
	}
	for field, body := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := DecodeProfile([]byte(body))
			require.EqualError(t, err, "Missing required field: "+field)
			require.True(t, IsValidation(err))
		})
	}
}

func TestDecodeProfileReportsFirstMissingField(t *testing.T) {
	_, err := DecodeProfile([]byte(`{}`))
	require.EqualError(t, err, "Missing required field: Age")
}

func TestDecodeProfileInvalidValues(t *testing.T) {
	_, err := DecodeProfile([]byte(`{"Age":30,"Gender":"Male","Weight (kg)":75,"Height (m)":0,"Fat_Percentage":18,"Experience_Level":2,"Workout_Frequency (days/week)":4}`))
	require.EqualError(t, err, "Invalid value for field: Height (m) (must be greater than 0)")

	_, err = DecodeProfile([]byte(`{"Age":"thirty"}`))
	require.EqualError(t, err, "Invalid value for field: Age")
	require.True(t, IsValidation(err))

	_, err = DecodeProfile([]byte(`not json`))
	require.EqualError(t, err, "Invalid value for field: request body (malformed JSON)")
}

func TestDecodeProfileNamesFieldWithWrongKind(t *testing.T) {
	cases := map[string]string{
		"Weight (kg)":      `{"Age":30,"Gender":"Male","Weight (kg)":"75","Height (m)":1.75,"Fat_Percentage":18,"Experience_Level":2,"Workout_Frequency (days/week)":4}`,
		"Height (m)":       `{"Age":30,"Gender":"Male","Weight (kg)":75,"Height (m)":"1.75","Fat_Percentage":18,"Experience_Level":2,"Workout_Frequency (days/week)":4}`,
		"Gender":           `{"Age":30,"Gender":1,"Weight (kg)":75,"Height (m)":1.75,"Fat_Percentage":18,"Experience_Level":2,"Workout_Frequency (days/week)":4}`,
		"Experience_Level": `{"Age":30,"Gender":"Male","Weight (kg)":75,"Height (m)":1.75,"Fat_Percentage":18,"Experience_Level":[2],"Workout_Frequency (days/week)":4}`,
		"diet_type":        `{"Age":30,"Gender":"Male","Weight (kg)":75,"Height (m)":1.75,"Fat_Percentage":18,"Experience_Level":2,"Workout_Frequency (days/week)":4,"diet_type":7}`,
	}
	for field, body := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := DecodeProfile([]byte(body))
			require.EqualError(t, err, "Invalid value for field: "+field)
			require.True(t, IsValidation(err))
		})
	}
}

func TestDecodeProfileAcceptsWholeNumberFloats(t *testing.T) {
	req, err := DecodeProfile([]byte(`{"Age":30.0,"Gender":"Male","Weight (kg)":75,"Height (m)":1.75,"Fat_Percentage":18,"Experience_Level":2.0,"Workout_Frequency (days/week)":4.0}`))
	require.NoError(t, err)
	require.Equal(t, 30, req.Attributes.Age)
	require.Equal(t, 2, req.Attributes.ExperienceLevel)
	require.Equal(t, 4, req.Attributes.WorkoutFrequency)
}

func TestDecodeProfileRejectsFractionalCounts(t *testing.T) {
	_, err := DecodeProfile([]byte(`{"Age":30.5,"Gender":"Male","Weight (kg)":75,"Height (m)":1.75,"Fat_Percentage":18,"Experience_Level":2,"Workout_Frequency (days/week)":4}`))
	require.EqualError(t, err, "Invalid value for field: Age (must be a whole number)")

	_, err = DecodeProfile([]byte(`{"Age":30,"Gender":"Male","Weight (kg)":75,"Height (m)":1.75,"Fat_Percentage":18,"Experience_Level":2,"Workout_Frequency (days/week)":3.5}`))
	require.EqualError(t, err, "Invalid value for field: Workout_Frequency (days/week) (must be a whole number)")
}
