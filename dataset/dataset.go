/*
Package dataset reads and writes the labels and predictions of a WF attack, the
output of a WF+WO simulation, and metrics.

Labels are a JSON list of integers. Predictions are a JSON object with lists
"mon" and "unmon" of predictions for monitored and unmonitored testing traces,
where each prediction is either an integer label or a list of probabilities.
*/
package dataset

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/pylls/wfwo"
)

// ReadLabels reads a JSON list of labels.
func ReadLabels(path string) ([]wfwo.Label, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var labels []wfwo.Label
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("failed to parse labels in %s (%w)", path, err)
	}
	return labels, nil
}

// WriteLabels writes labels as a JSON list.
func WriteLabels(path string, labels []wfwo.Label) error {
	data, err := json.Marshal(labels)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0666)
}

type predictionsFile struct {
	Mon   []jsontext.Value `json:"mon"`
	Unmon []jsontext.Value `json:"unmon"`
}

// ReadPredictions reads predictions for monitored and unmonitored testing
// traces. The format of each prediction is determined from its JSON value and
// not validated further, see wfwo.CheckInput.
func ReadPredictions(path string) (mon, unmon wfwo.Predictions, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var f predictionsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("failed to parse predictions in %s (%w)", path, err)
	}
	if mon, err = decodePredictions(f.Mon); err != nil {
		return nil, nil, fmt.Errorf("monitored predictions in %s: %w", path, err)
	}
	if unmon, err = decodePredictions(f.Unmon); err != nil {
		return nil, nil, fmt.Errorf("unmonitored predictions in %s: %w", path, err)
	}
	return mon, unmon, nil
}

// WritePredictions writes predictions for monitored and unmonitored testing
// traces.
func WritePredictions(path string, mon, unmon wfwo.Predictions) error {
	var (
		f   predictionsFile
		err error
	)
	if f.Mon, err = encodePredictions(mon); err != nil {
		return err
	}
	if f.Unmon, err = encodePredictions(unmon); err != nil {
		return err
	}
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0666)
}

// DecodePrediction parses a single prediction: a JSON integer is a label, a
// JSON list of numbers is a list of probabilities.
func DecodePrediction(v jsontext.Value) (wfwo.Prediction, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return wfwo.Prediction{}, wfwo.ErrUnknownShape
	}
	switch v[0] {
	case '[':
		var scores []float64
		if err := json.Unmarshal(v, &scores); err != nil {
			return wfwo.Prediction{}, fmt.Errorf("%s (%v): %w", v, err, wfwo.ErrUnknownShape)
		}
		return wfwo.Vector(scores), nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			return wfwo.Prediction{}, fmt.Errorf("%s (%v): %w", v, err, wfwo.ErrUnknownShape)
		}
		if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
			return wfwo.Prediction{}, fmt.Errorf("label %s is not an integer: %w", v, wfwo.ErrUnknownShape)
		}
		return wfwo.Single(int(f)), nil
	default:
		return wfwo.Prediction{}, fmt.Errorf("%s: %w", v, wfwo.ErrUnknownShape)
	}
}

func decodePredictions(values []jsontext.Value) (wfwo.Predictions, error) {
	ps := make(wfwo.Predictions, len(values))
	for i, v := range values {
		p, err := DecodePrediction(v)
		if err != nil {
			return nil, fmt.Errorf("prediction %d: %w", i, err)
		}
		ps[i] = p
	}
	return ps, nil
}

// EncodePrediction is the inverse of DecodePrediction.
func EncodePrediction(p wfwo.Prediction) (jsontext.Value, error) {
	switch p.Kind() {
	case wfwo.KindSingle:
		return json.Marshal(p.Label())
	case wfwo.KindVector:
		return json.Marshal(p.Scores())
	default:
		return nil, wfwo.ErrUnknownShape
	}
}

func encodePredictions(ps wfwo.Predictions) ([]jsontext.Value, error) {
	values := make([]jsontext.Value, len(ps))
	for i, p := range ps {
		v, err := EncodePrediction(p)
		if err != nil {
			return nil, fmt.Errorf("prediction %d: %w", i, err)
		}
		values[i] = v
	}
	return values, nil
}
