package domain

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"example.com/recommender/internal/features"
)

// Profile is the wire form of a recommendation request. Pointer fields distinguish an
// absent attribute from its zero value.
type Profile struct {
	Age              *float64 `json:"Age" validate:"required,whole"`
	Gender           *string  `json:"Gender" validate:"required"`
	WeightKg         *float64 `json:"Weight (kg)" validate:"required"`
	HeightM          *float64 `json:"Height (m)" validate:"required,gt=0"`
	FatPercentage    *float64 `json:"Fat_Percentage" validate:"required"`
	ExperienceLevel  *float64 `json:"Experience_Level" validate:"required,whole"`
	WorkoutFrequency *float64 `json:"Workout_Frequency (days/week)" validate:"required,whole"`

	WorkoutType string `json:"Workout_Type,omitempty"`
	DietType    string `json:"diet_type,omitempty"`
	MealType    string `json:"meal_type,omitempty"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// profileValidator reports fields by their JSON key so messages name what the caller sent.
func profileValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		if err := validate.RegisterValidation("whole", isWhole); err != nil {
			panic(err)
		}
	})
	return validate
}

// isWhole accepts integral floats so 30.0 and 30 decode to the same age.
func isWhole(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return !math.IsInf(v, 0) && !math.IsNaN(v) && v == math.Trunc(v)
}

// profileField is a wire key and whether its value must be a JSON string.
type profileField struct {
	key  string
	text bool
}

var profileFields = func() []profileField {
	t := reflect.TypeOf(Profile{})
	out := make([]profileField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		out = append(out, profileField{key: key, text: ft.Kind() == reflect.String})
	}
	return out
}()

// checkKinds reports the first known key whose value has the wrong JSON kind.
// Absent keys and nulls are left to the required checks.
func checkKinds(raw map[string]json.RawMessage) error {
	for _, f := range profileFields {
		v, ok := raw[f.key]
		if !ok {
			continue
		}
		v = bytes.TrimSpace(v)
		if len(v) == 0 || bytes.Equal(v, []byte("null")) {
			continue
		}
		isString := v[0] == '"'
		isNumber := v[0] == '-' || (v[0] >= '0' && v[0] <= '9')
		if (f.text && !isString) || (!f.text && !isNumber) {
			return features.Invalid(f.key, "")
		}
	}
	return nil
}

// DecodeProfile parses and validates a JSON profile. Every failure is a
// *features.ValidationError naming the first offending field.
func DecodeProfile(data []byte) (Request, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Request{}, features.Invalid("request body", "malformed JSON")
	}
	if err := checkKinds(raw); err != nil {
		return Request{}, err
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return Request{}, features.Invalid("request body", "malformed JSON")
	}
	return p.Request()
}

// Request validates the profile and converts it into a domain request.
func (p Profile) Request() (Request, error) {
	if err := profileValidator().Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			switch fe.Tag() {
			case "required":
				return Request{}, features.Missing(fe.Field())
			case "whole":
				return Request{}, features.Invalid(fe.Field(), "must be a whole number")
			case "gt":
				return Request{}, features.Invalid(fe.Field(), "must be greater than "+fe.Param())
			default:
				return Request{}, features.Invalid(fe.Field(), "")
			}
		}
		return Request{}, err
	}

	return Request{
		Attributes: features.Attributes{
			Age:              int(*p.Age),
			Gender:           *p.Gender,
			WeightKg:         *p.WeightKg,
			HeightM:          *p.HeightM,
			FatPercentage:    *p.FatPercentage,
			ExperienceLevel:  int(*p.ExperienceLevel),
			WorkoutFrequency: int(*p.WorkoutFrequency),
		},
		WorkoutType: p.WorkoutType,
		DietType:    p.DietType,
		MealType:    p.MealType,
	}, nil
}
