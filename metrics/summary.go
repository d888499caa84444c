package metrics

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// Summary describes a sweep of thresholds.
type Summary struct {
	MeanRecall    float64
	MaxRecall     float64
	MeanPrecision float64
	MaxPrecision  float64
	// BestThreshold has the biggest F1 score, MaxF1.
	BestThreshold float64
	MaxF1         float64
}

// Summarize describes points from Sweep or Evaluate.
func Summarize(points []Point) (s Summary, err error) {
	if len(points) == 0 {
		return s, fmt.Errorf("no points to summarize")
	}
	recall := make(stats.Float64Data, len(points))
	precision := make(stats.Float64Data, len(points))
	f1 := make(stats.Float64Data, len(points))
	for i, p := range points {
		recall[i] = p.Recall()
		precision[i] = p.Precision()
		f1[i] = p.F1()
	}

	if s.MeanRecall, err = stats.Mean(recall); err != nil {
		return
	}
	if s.MaxRecall, err = stats.Max(recall); err != nil {
		return
	}
	if s.MeanPrecision, err = stats.Mean(precision); err != nil {
		return
	}
	if s.MaxPrecision, err = stats.Max(precision); err != nil {
		return
	}
	if s.MaxF1, err = stats.Max(f1); err != nil {
		return
	}
	for _, p := range points {
		if p.F1() == s.MaxF1 {
			s.BestThreshold = p.Threshold
			break
		}
	}
	return s, nil
}

// QueriesPerLabel is the average number of oracle queries per testing trace.
func QueriesPerLabel(queries, labels int) float64 {
	return ratio(queries, labels)
}
