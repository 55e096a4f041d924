package domain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"

	"example.com/recommender/internal/classifier"
	"example.com/recommender/internal/features"
	"example.com/recommender/internal/knowledge"
	"example.com/recommender/internal/observability"
)

// NotAvailable replaces text details for an exercise with no knowledge base row.
const NotAvailable = "N/A"

// NoDietMessage is returned in place of nutrition values for an unknown combination.
const NoDietMessage = "No specific diet suggestion available for this combination"

// ValidationError reports a missing or unusable request attribute.
type ValidationError = features.ValidationError

// IsValidation reports whether err is caused by the caller's input.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Options tunes recommendation assembly.
type Options struct {
	TopN            int
	DefaultDietType string
	DefaultMealType string
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{TopN: 4, DefaultDietType: "Balanced", DefaultMealType: "Lunch"}
}

// Request is a validated recommendation request.
type Request struct {
	Attributes  features.Attributes
	WorkoutType string
	DietType    string
	MealType    string
}

// ExerciseRecommendation is one ranked exercise enriched with knowledge base details.
type ExerciseRecommendation struct {
	ExerciseName      string          `json:"exercise_name"`
	Confidence        float64         `json:"confidence"`
	Sets              *float64        `json:"sets"`
	Reps              *float64        `json:"reps"`
	CaloriesPer30Min  *float64        `json:"calories_per_30min"`
	Benefit           string          `json:"benefit"`
	Equipment         string          `json:"equipment_needed"`
	TargetMuscleGroup string          `json:"target_muscle_group"`
	Difficulty        string          `json:"difficulty_level"`
	Match             knowledge.Match `json:"-"`
}

// DietSuggestion carries either nutrition values or an explanatory message.
type DietSuggestion struct {
	DietType string
	MealType string
	Found    bool
	Calories *float64
	Carbs    *float64
	Proteins *float64
	Fats     *float64
	Message  string
}

type dietFound struct {
	DietType string   `json:"diet_type"`
	MealType string   `json:"meal_type"`
	Calories *float64 `json:"calories"`
	Carbs    *float64 `json:"carbs"`
	Proteins *float64 `json:"proteins"`
	Fats     *float64 `json:"fats"`
}

type dietMissing struct {
	DietType string `json:"diet_type"`
	MealType string `json:"meal_type"`
	Message  string `json:"message"`
}

// MarshalJSON emits one of the two documented shapes.
func (d DietSuggestion) MarshalJSON() ([]byte, error) {
	if d.Found {
		return json.Marshal(dietFound{
			DietType: d.DietType,
			MealType: d.MealType,
			Calories: d.Calories,
			Carbs:    d.Carbs,
			Proteins: d.Proteins,
			Fats:     d.Fats,
		})
	}
	return json.Marshal(dietMissing{DietType: d.DietType, MealType: d.MealType, Message: d.Message})
}

// Recommendation is the assembled result for one request.
type Recommendation struct {
	BMI       float64                  `json:"bmi"`
	Exercises []ExerciseRecommendation `json:"exercise_recommendations"`
	Diet      DietSuggestion           `json:"diet_suggestion"`

	// RawBMI is the unrounded value used for encoding.
	RawBMI float64 `json:"-"`
}

// Status summarises the loaded artifacts.
type Status struct {
	ModelLoaded    bool      `json:"model_loaded"`
	ModelClasses   int       `json:"model_classes"`
	FeatureColumns int       `json:"feature_columns"`
	ExerciseKBSize int       `json:"exercise_kb_size"`
	DietKBSize     int       `json:"diet_kb_size"`
	LoadedAt       time.Time `json:"loaded_at"`
}

// Service assembles recommendations. It is immutable after construction and safe for
// concurrent use.
type Service struct {
	schema    features.Schema
	model     classifier.Classifier
	classes   []string
	exercises *knowledge.ExerciseBase
	diets     *knowledge.DietBase
	opts      Options
	loadedAt  time.Time
}

// NewService constructs a Service and checks that the artifacts agree with each other.
func NewService(schema features.Schema, model classifier.Classifier, exercises *knowledge.ExerciseBase, diets *knowledge.DietBase, opts Options) (*Service, error) {
	if model == nil {
		return nil, errors.New("classifier is required")
	}
	if schema.Len() == 0 {
		return nil, errors.New("feature schema is empty")
	}
	if n := model.NumFeatures(); n > 0 && n != schema.Len() {
		return nil, fmt.Errorf("classifier expects %d features but schema has %d columns", n, schema.Len())
	}
	classes := model.Classes()
	if len(classes) == 0 {
		return nil, errors.New("classifier has no classes")
	}
	if exercises == nil {
		exercises = knowledge.NewExerciseBase(nil)
	}
	if diets == nil {
		diets = knowledge.NewDietBase(nil)
	}

	defaults := DefaultOptions()
	if opts.TopN <= 0 {
		opts.TopN = defaults.TopN
	}
	if opts.DefaultDietType == "" {
		opts.DefaultDietType = defaults.DefaultDietType
	}
	if opts.DefaultMealType == "" {
		opts.DefaultMealType = defaults.DefaultMealType
	}

	s := &Service{
		schema:    schema,
		model:     model,
		classes:   classes,
		exercises: exercises,
		diets:     diets,
		opts:      opts,
		loadedAt:  time.Now().UTC(),
	}
	observability.RecordArtifacts(len(classes), exercises.Len(), diets.Len(), s.loadedAt)
	return s, nil
}

// Status reports what the service was built from.
func (s *Service) Status() Status {
	return Status{
		ModelLoaded:    s.model != nil,
		ModelClasses:   len(s.classes),
		FeatureColumns: s.schema.Len(),
		ExerciseKBSize: s.exercises.Len(),
		DietKBSize:     s.diets.Len(),
		LoadedAt:       s.loadedAt,
	}
}

// Options returns the effective options.
func (s *Service) Options() Options { return s.opts }

// Recommend encodes the request, scores it and joins the top classes against the
// knowledge bases.
func (s *Service) Recommend(ctx context.Context, req Request) (*Recommendation, error) {
	start := time.Now()
	rec, err := s.recommend(ctx, req)
	switch {
	case err == nil:
		observability.RecordPrediction("ok", time.Since(start))
	case IsValidation(err):
		observability.RecordPrediction("invalid", time.Since(start))
	default:
		observability.RecordPrediction("error", time.Since(start))
	}
	return rec, err
}

func (s *Service) recommend(ctx context.Context, req Request) (*Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec, err := s.schema.Encode(req.Attributes)
	if err != nil {
		return nil, err
	}

	probs, err := s.model.PredictProba(vec.Values())
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	ranked, err := RankClasses(s.classes, probs, s.opts.TopN)
	if err != nil {
		return nil, err
	}

	exercises := make([]ExerciseRecommendation, 0, len(ranked))
	for _, rc := range ranked {
		exercises = append(exercises, s.exercise(rc, req.Attributes.ExperienceLevel))
	}

	dietType := req.DietType
	if dietType == "" {
		dietType = s.opts.DefaultDietType
	}
	mealType := req.MealType
	if mealType == "" {
		mealType = s.opts.DefaultMealType
	}

	return &Recommendation{
		BMI:       math.Round(vec.BMI()*100) / 100,
		RawBMI:    vec.BMI(),
		Exercises: exercises,
		Diet:      s.diet(dietType, mealType),
	}, nil
}

func (s *Service) exercise(rc RankedClass, level int) ExerciseRecommendation {
	found := s.exercises.Lookup(rc.Class, level)
	observability.RecordLookup("exercise", found.Match.String())

	out := ExerciseRecommendation{
		ExerciseName: rc.Class,
		Confidence:   rc.Probability,
		Match:        found.Match,
	}
	if !found.Found() {
		out.Benefit = NotAvailable
		out.Equipment = NotAvailable
		out.TargetMuscleGroup = NotAvailable
		out.Difficulty = NotAvailable
		return out
	}
	row := found.Row
	out.Sets = number(row.Sets)
	out.Reps = number(row.Reps)
	out.CaloriesPer30Min = number(row.CaloriesPer30Min)
	out.Benefit = row.Benefit
	out.Equipment = row.Equipment
	out.TargetMuscleGroup = row.TargetMuscleGroup
	out.Difficulty = row.Difficulty
	return out
}

func (s *Service) diet(dietType, mealType string) DietSuggestion {
	found := s.diets.Lookup(dietType, mealType)
	observability.RecordLookup("diet", found.Match.String())

	if !found.Found() {
		return DietSuggestion{DietType: dietType, MealType: mealType, Message: NoDietMessage}
	}
	return DietSuggestion{
		DietType: dietType,
		MealType: mealType,
		Found:    true,
		Calories: number(found.Row.Calories),
		Carbs:    number(found.Row.Carbs),
		Proteins: number(found.Row.Proteins),
		Fats:     number(found.Row.Fats),
	}
}

// number maps a missing aggregate to nil so it serializes as null.
func number(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
