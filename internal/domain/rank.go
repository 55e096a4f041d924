package domain

import (
	"cmp"
	"fmt"
	"slices"
)

// RankedClass pairs a class label with the probability the classifier assigned to it.
type RankedClass struct {
	Class       string
	Probability float64
}

// RankClasses orders classes by descending probability, breaking ties by class name,
// and keeps the first n. A non-positive n or one larger than the class count keeps all
// classes.
func RankClasses(classes []string, probs []float64, n int) ([]RankedClass, error) {
	if len(classes) != len(probs) {
		return nil, fmt.Errorf("classifier returned %d probabilities for %d classes", len(probs), len(classes))
	}
	ranked := make([]RankedClass, len(classes))
	for i, class := range classes {
		ranked[i] = RankedClass{Class: class, Probability: probs[i]}
	}
	slices.SortFunc(ranked, func(a, b RankedClass) int {
		if c := cmp.Compare(b.Probability, a.Probability); c != 0 {
			return c
		}
		return cmp.Compare(a.Class, b.Class)
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}
