// Package classifier wraps the pre-trained exercise classifier behind a small interface.
package classifier

import (
	"errors"
	"fmt"
	"os"

	"github.com/dmitryikh/leaves"
	"github.com/goccy/go-json"
)

// Classifier maps an encoded feature vector to a probability per class.
type Classifier interface {
	// Classes returns the class labels in the classifier's internal order.
	Classes() []string
	// NumFeatures returns the length of the feature vector the model was fit on.
	NumFeatures() int
	// PredictProba returns one probability per class, aligned with Classes.
	PredictProba(features []float64) ([]float64, error)
}

// LightGBM scores a LightGBM text model through leaves.
type LightGBM struct {
	ensemble *leaves.Ensemble
	classes  []string
	groups   int
}

// LoadLightGBM reads a LightGBM text model and its class label artifact.
func LoadLightGBM(modelPath, classesPath string) (*LightGBM, error) {
	classes, err := LoadClasses(classesPath)
	if err != nil {
		return nil, err
	}
	ensemble, err := leaves.LGEnsembleFromFile(modelPath, true)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", modelPath, err)
	}
	return newLightGBM(ensemble, classes)
}

func newLightGBM(ensemble *leaves.Ensemble, classes []string) (*LightGBM, error) {
	groups := ensemble.NOutputGroups()
	switch {
	case groups == len(classes):
	case groups == 1 && len(classes) == 2:
	default:
		return nil, fmt.Errorf("model has %d output groups but %d class labels", groups, len(classes))
	}
	return &LightGBM{ensemble: ensemble, classes: classes, groups: groups}, nil
}

// Classes implements Classifier.
func (m *LightGBM) Classes() []string {
	out := make([]string, len(m.classes))
	copy(out, m.classes)
	return out
}

// NumFeatures implements Classifier.
func (m *LightGBM) NumFeatures() int { return m.ensemble.NFeatures() }

// PredictProba implements Classifier.
func (m *LightGBM) PredictProba(features []float64) ([]float64, error) {
	if len(features) != m.ensemble.NFeatures() {
		return nil, fmt.Errorf("model expects %d features, got %d", m.ensemble.NFeatures(), len(features))
	}
	out := make([]float64, m.groups)
	if err := m.ensemble.Predict(features, 0, out); err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if m.groups == 1 {
		// binary objective: the single output is P(classes[1])
		return []float64{1 - out[0], out[0]}, nil
	}
	return out, nil
}

// LoadClasses reads the class label artifact, a JSON array of strings.
func LoadClasses(path string) ([]string, error) {
	classes, err := loadStringList(path)
	if err != nil {
		return nil, fmt.Errorf("load classes: %w", err)
	}
	if len(classes) == 0 {
		return nil, errors.New("load classes: artifact is empty")
	}
	return classes, nil
}

// LoadColumns reads the training-time column artifact, a JSON array of strings.
func LoadColumns(path string) ([]string, error) {
	columns, err := loadStringList(path)
	if err != nil {
		return nil, fmt.Errorf("load training columns: %w", err)
	}
	return columns, nil
}

func loadStringList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}
