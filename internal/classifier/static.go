package classifier

import (
	"errors"
	"fmt"
)

// Static returns a fixed distribution for every input. It backs tests and local runs
// without a trained model.
type Static struct {
	classes  []string
	probs    []float64
	features int
}

// NewStatic builds a Static classifier. probs must align with classes.
func NewStatic(classes []string, probs []float64, features int) (*Static, error) {
	if len(classes) == 0 {
		return nil, errors.New("static classifier needs at least one class")
	}
	if len(classes) != len(probs) {
		return nil, fmt.Errorf("static classifier has %d classes and %d probabilities", len(classes), len(probs))
	}
	return &Static{classes: classes, probs: probs, features: features}, nil
}

// Classes implements Classifier.
func (s *Static) Classes() []string {
	out := make([]string, len(s.classes))
	copy(out, s.classes)
	return out
}

// NumFeatures implements Classifier.
func (s *Static) NumFeatures() int { return s.features }

// PredictProba implements Classifier.
func (s *Static) PredictProba(features []float64) ([]float64, error) {
	if len(features) != s.features {
		return nil, fmt.Errorf("model expects %d features, got %d", s.features, len(features))
	}
	out := make([]float64, len(s.probs))
	copy(out, s.probs)
	return out, nil
}
