/*
Package revise updates the predictions of a WF attack with the answers of a
website oracle: the WF+WO attack. A prediction for a monitored website is only
kept if the oracle confirms that the website was visited.
*/
package revise

import (
	"fmt"
	"math"

	"github.com/pylls/wfwo"
)

// Oracle answers if site was visited, where correct is the correct label of
// the testing trace.
type Oracle interface {
	Query(site, correct wfwo.Label) bool
}

// Func revises predictions with correct labels and the unmonitored label unmon.
// The predictions given as input are never modified.
type Func func(o Oracle, predictions wfwo.Predictions,
	labels []wfwo.Label, unmon wfwo.Label) wfwo.Predictions

// For returns the Func for predictions of kind.
func For(kind wfwo.Kind) (Func, error) {
	switch kind {
	case wfwo.KindSingle:
		return Single, nil
	case wfwo.KindVector:
		return Vector, nil
	default:
		return nil, fmt.Errorf("no WF+WO simulation for %s: %w", kind, wfwo.ErrUnknownShape)
	}
}

// Single revises single-label predictions: each guessed monitored label not
// confirmed by the oracle becomes unmon.
func Single(o Oracle, predictions wfwo.Predictions,
	labels []wfwo.Label, unmon wfwo.Label) wfwo.Predictions {
	updated := predictions.Clone()
	for i, p := range predictions {
		if p.Label() >= unmon || o.Query(p.Label(), labels[i]) {
			continue
		}
		updated[i] = wfwo.Single(unmon)
	}
	return updated
}

// sharpness scales probabilities by their max before the softmax. This worked
// OK given how thresholds are defined for DF in package metrics.
const sharpness = 5

// Vector revises probability predictions: loop until the label with the
// highest probability either is the unmonitored label or a label for a website
// that has been visited according to the oracle. Each label ruled out by the
// oracle gets probability 0 before the whole vector is updated with a softmax.
// If no label has a positive probability the prediction is for unmon.
func Vector(o Oracle, predictions wfwo.Predictions,
	labels []wfwo.Label, unmon wfwo.Label) wfwo.Predictions {
	updated := make(wfwo.Predictions, len(predictions))
	for i, p := range predictions {
		updated[i] = wfwo.Vector(revise(o, p.Scores(), labels[i], unmon))
	}
	return updated
}

func revise(o Oracle, v []float64, correct, unmon wfwo.Label) []float64 {
	for range v {
		pred, _ := wfwo.ArgMax(v)

		// done if already classified as unmonitored or visited
		if pred >= unmon || o.Query(pred, correct) {
			return v
		}

		// oracle says not visited, so probability of being correct is 0
		v[pred] = 0
		if !renormalize(v) {
			return unmonitored(len(v), unmon)
		}
	}
	return v
}

// renormalize sets v to softmax(v*sharpness/max(v)). It returns false when no
// label has a positive probability.
func renormalize(v []float64) bool {
	_, top := wfwo.ArgMax(v)
	if top <= 0 {
		return false
	}
	scaled := make([]float64, len(v))
	for i, x := range v {
		scaled[i] = x * sharpness / top
	}
	copy(v, Softmax(scaled))
	return true
}

// unmonitored is a prediction of unmon with probability 1, or all zeros (read
// as unmon with probability 0) if unmon is not covered by the n labels.
func unmonitored(n int, unmon wfwo.Label) []float64 {
	v := make([]float64, n)
	if unmon < n {
		v[unmon] = 1
	}
	return v
}

// Softmax returns the softmax of x.
func Softmax(x []float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	_, top := wfwo.ArgMax(x)
	sum := 0.0
	s := make([]float64, len(x))
	for i := range x {
		s[i] = math.Exp(x[i] - top)
		sum += s[i]
	}
	for i := range s {
		s[i] /= sum
	}
	return s
}
