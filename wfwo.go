/*
Package wfwo holds the types shared by the tools that simulate a website
fingerprinting (WF) attack combined with a website oracle (WO).

A WF attack outputs, for each testing trace, either a single guessed label or a
list of probabilities, one for each label. Monitored sites are labelled
0, 1, ..., and all unmonitored sites share one label that is bigger than every
monitored label.
*/
package wfwo

import (
	"errors"
	"fmt"
)

// Label is the class of a website. Monitored labels start at 0.
type Label = int

var (
	// ErrEmpty is returned for a set of labels or predictions without elements.
	ErrEmpty = errors.New("empty")
	// ErrLengthMismatch is returned when labels and predictions differ in
	// length, or when probability vectors differ in length.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrUnknownShape is returned for predictions that are neither a single
	// label nor a list of probabilities.
	ErrUnknownShape = errors.New("non-supported prediction format")
	// ErrMixedShape is returned when predictions do not share one format.
	ErrMixedShape = errors.New("mixed prediction formats")
)

// Unmonitored returns the label of unmonitored sites, the smallest of the
// unmonitored testing labels.
func Unmonitored(labelsUnmon []Label) Label {
	unmon := labelsUnmon[0]
	for _, l := range labelsUnmon[1:] {
		if l < unmon {
			unmon = l
		}
	}
	return unmon
}

// CheckInput validates labels and predictions from a WF attack before they are
// used for simulation or metrics, returning the common prediction kind.
func CheckInput(labelsMon, labelsUnmon []Label,
	predMon, predUnmon Predictions) (Kind, error) {
	if len(labelsMon) == 0 {
		return KindUnknown, fmt.Errorf("monitored labels: %w", ErrEmpty)
	}
	if len(labelsUnmon) == 0 {
		return KindUnknown, fmt.Errorf("unmonitored labels: %w", ErrEmpty)
	}
	if len(labelsMon) != len(predMon) {
		return KindUnknown, fmt.Errorf(
			"expected the same number of monitored labels as predictions, got %d and %d: %w",
			len(labelsMon), len(predMon), ErrLengthMismatch)
	}
	if len(labelsUnmon) != len(predUnmon) {
		return KindUnknown, fmt.Errorf(
			"expected the same number of unmonitored labels as predictions, got %d and %d: %w",
			len(labelsUnmon), len(predUnmon), ErrLengthMismatch)
	}

	kindMon, err := predMon.Kind()
	if err != nil {
		return KindUnknown, fmt.Errorf("monitored predictions: %w", err)
	}
	kindUnmon, err := predUnmon.Kind()
	if err != nil {
		return KindUnknown, fmt.Errorf("unmonitored predictions: %w", err)
	}
	if kindMon != kindUnmon {
		return KindUnknown, fmt.Errorf("monitored predictions are %s, unmonitored %s: %w",
			kindMon, kindUnmon, ErrMixedShape)
	}
	if kindMon == KindVector && len(predMon[0].scores) != len(predUnmon[0].scores) {
		return KindUnknown, fmt.Errorf(
			"monitored vectors have %d probabilities, unmonitored %d: %w",
			len(predMon[0].scores), len(predUnmon[0].scores), ErrLengthMismatch)
	}

	unmon := Unmonitored(labelsUnmon)
	for i, l := range labelsMon {
		if l < 0 || l >= unmon {
			return KindUnknown, fmt.Errorf(
				"monitored label %d at index %d not in [0, %d)", l, i, unmon)
		}
	}
	return kindMon, nil
}
