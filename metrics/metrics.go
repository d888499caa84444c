/*
Package metrics computes the metrics of (WF+WO) attacks in the open world.

For details on the metrics, see, e.g., https://www.cs.kau.se/pulls/hot/baserate/
*/
package metrics

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/pylls/wfwo"
)

// ErrUnexpectedLabel is returned for a prediction of an unmonitored trace that
// is neither a monitored nor an unmonitored label: wrongly labelled data.
var ErrUnexpectedLabel = errors.New("this should never happen, wrongly labelled data?")

// Result is the outcome of classifying a set of testing traces, see
// http://www.cs.kau.se/pulls/hot/measurements/
type Result struct {
	TP  int // true positive
	FPP int // false-positive-to-positive
	FNP int // false-negative-to-positive
	TN  int // true negative
	FN  int // false negative
}

// Add adds the counts of other to r.
func (r *Result) Add(other Result) {
	r.TP += other.TP
	r.FPP += other.FPP
	r.FNP += other.FNP
	r.TN += other.TN
	r.FN += other.FN
}

// Total is the number of classified traces.
func (r Result) Total() int {
	return r.TP + r.FPP + r.FNP + r.TN + r.FN
}

// Accuracy = (TP + TN) / (everything)
func (r Result) Accuracy() float64 {
	return ratio(r.TP+r.TN, r.Total())
}

// Recall = TPR = TP / (TP + FN + FPP)
func (r Result) Recall() float64 {
	return ratio(r.TP, r.TP+r.FN+r.FPP)
}

// Precision = TP / (TP + FPP + FNP)
func (r Result) Precision() float64 {
	return ratio(r.TP, r.TP+r.FPP+r.FNP)
}

// FPR = FP / non-monitored elements = (FPP + FNP) / (TN + FNP)
func (r Result) FPR() float64 {
	return ratio(r.FPP+r.FNP, r.TN+r.FNP)
}

// F1 is the harmonic mean of precision and recall.
func (r Result) F1() float64 {
	p, rec := r.Precision(), r.Recall()
	if p+rec == 0 {
		return 0
	}
	return 2 * p * rec / (p + rec)
}

func (r Result) String() string {
	return fmt.Sprintf("recall %4s, precision %4s, accuracy %4s\t [tp %6d, fpp %6d, fnp %6d, tn %6d, fn %6d]",
		short(r.Recall()), short(r.Precision()), short(r.Accuracy()),
		r.TP, r.FPP, r.FNP, r.TN, r.FN)
}

// short formats x with two significant digits, keeping a decimal point: 0.0,
// 0.33, 1.0, 0.012 or 1e-05.
func short(x float64) string {
	s := strconv.FormatFloat(x, 'g', 2, 64)
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return s
}

func ratio(a, b int) float64 {
	if b <= 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// Thresholds returns 0 followed by 15 thresholds approaching 1 as
// 1 - 1/10^x for x evenly spaced in [0.05, 2].
func Thresholds() []float64 {
	const (
		num   = 15
		start = 0.05
		stop  = 2.0
	)
	th := []float64{0}
	step := (stop - start) / (num - 1)
	for i := 0; i < num; i++ {
		x := start + float64(i)*step
		if i == num-1 {
			x = stop
		}
		th = append(th, 1.0-1/math.Pow(10, x))
	}
	return th
}

// Threshold computes metrics for probability predictions, where a monitored
// label is only predicted if its probability is at least threshold.
func Threshold(threshold float64,
	predMon wfwo.Predictions, labelsMon []wfwo.Label,
	predUnmon wfwo.Predictions, labelsUnmon []wfwo.Label) (r Result, err error) {
	return count(predMon, labelsMon, predUnmon, labelsUnmon,
		func(p wfwo.Prediction, unmon wfwo.Label) (wfwo.Label, bool) {
			label, prob := p.Top(unmon)
			return label, prob >= threshold
		})
}

// Simple computes metrics for single-label predictions. It is as close as
// possible to Threshold for sake of ease of comparison.
func Simple(predMon wfwo.Predictions, labelsMon []wfwo.Label,
	predUnmon wfwo.Predictions, labelsUnmon []wfwo.Label) (r Result, err error) {
	return count(predMon, labelsMon, predUnmon, labelsUnmon,
		func(p wfwo.Prediction, _ wfwo.Label) (wfwo.Label, bool) {
			return p.Label(), true
		})
}

// count classifies each trace, where predict returns the predicted label and
// if the prediction is confident.
func count(predMon wfwo.Predictions, labelsMon []wfwo.Label,
	predUnmon wfwo.Predictions, labelsUnmon []wfwo.Label,
	predict func(wfwo.Prediction, wfwo.Label) (wfwo.Label, bool)) (r Result, err error) {
	if len(predMon) != len(labelsMon) || len(predUnmon) != len(labelsUnmon) {
		return r, fmt.Errorf("got %d+%d predictions for %d+%d labels: %w",
			len(predMon), len(predUnmon), len(labelsMon), len(labelsUnmon),
			wfwo.ErrLengthMismatch)
	}
	if len(labelsUnmon) == 0 {
		return r, fmt.Errorf("unmonitored labels: %w", wfwo.ErrEmpty)
	}
	unmon := wfwo.Unmonitored(labelsUnmon)
	monitored := mapset.NewThreadUnsafeSet(labelsMon...)
	unmonitored := mapset.NewThreadUnsafeSet(labelsUnmon...)

	for i, p := range predMon {
		label, confident := predict(p, unmon)
		switch {
		case confident && label == labelsMon[i]: // confident and correct,
			r.TP++
		case confident && monitored.Contains(label): // confident and wrong monitored label, or
			r.FPP++
		default: // not confident or predicted unmonitored for monitored
			r.FN++
		}
	}

	for i, p := range predUnmon {
		label, confident := predict(p, unmon)
		switch {
		case !confident || unmonitored.Contains(label): // correct prediction
			r.TN++
		case label < unmon: // predicted monitored for unmonitored
			r.FNP++
		default:
			return r, fmt.Errorf("got label %d for unmonitored trace %d: %w",
				label, i, ErrUnexpectedLabel)
		}
	}
	return r, nil
}

// Point is the result at a threshold.
type Point struct {
	Threshold float64
	Result
}

func (p Point) String() string {
	return fmt.Sprintf("threshold %4s, %s", short(p.Threshold), p.Result)
}

// Sweep computes metrics for probability predictions at each threshold.
func Sweep(thresholds []float64,
	predMon wfwo.Predictions, labelsMon []wfwo.Label,
	predUnmon wfwo.Predictions, labelsUnmon []wfwo.Label) ([]Point, error) {
	points := make([]Point, 0, len(thresholds))
	for _, th := range thresholds {
		r, err := Threshold(th, predMon, labelsMon, predUnmon, labelsUnmon)
		if err != nil {
			return nil, fmt.Errorf("threshold %v: %w", th, err)
		}
		points = append(points, Point{Threshold: th, Result: r})
	}
	return points, nil
}

// Evaluate computes metrics for predictions of either kind: a Sweep over
// Thresholds for probabilities, or one Point at threshold 0 for single labels.
func Evaluate(predMon wfwo.Predictions, labelsMon []wfwo.Label,
	predUnmon wfwo.Predictions, labelsUnmon []wfwo.Label) ([]Point, error) {
	kind, err := predMon.Kind()
	if err != nil {
		return nil, fmt.Errorf("monitored predictions: %w", err)
	}
	kindUnmon, err := predUnmon.Kind()
	if err != nil {
		return nil, fmt.Errorf("unmonitored predictions: %w", err)
	}
	if kind != kindUnmon {
		return nil, fmt.Errorf("monitored predictions are %s, unmonitored %s: %w",
			kind, kindUnmon, wfwo.ErrMixedShape)
	}
	switch kind {
	case wfwo.KindVector:
		return Sweep(Thresholds(), predMon, labelsMon, predUnmon, labelsUnmon)
	default:
		r, err := Simple(predMon, labelsMon, predUnmon, labelsUnmon)
		if err != nil {
			return nil, err
		}
		return []Point{{Result: r}}, nil
	}
}
