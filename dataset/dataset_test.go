package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pylls/wfwo"
	"github.com/pylls/wfwo/metrics"
	"github.com/pylls/wfwo/sim"
)

func TestDecodePrediction(t *testing.T) {
	tests := []struct {
		in   string
		want wfwo.Prediction
		err  bool
	}{
		{"3", wfwo.Single(3), false},
		{" 0 ", wfwo.Single(0), false},
		{"2.0", wfwo.Single(2), false},
		{"[0.1, 0.9]", wfwo.Vector([]float64{0.1, 0.9}), false},
		{"[1, 0]", wfwo.Vector([]float64{1, 0}), false},
		{"2.5", wfwo.Prediction{}, true},
		{`"a"`, wfwo.Prediction{}, true},
		{`{"a": 1}`, wfwo.Prediction{}, true},
		{`["a"]`, wfwo.Prediction{}, true},
		{"", wfwo.Prediction{}, true},
	}
	for _, tt := range tests {
		p, err := DecodePrediction(jsontext.Value(tt.in))
		if tt.err {
			assert.ErrorIs(t, err, wfwo.ErrUnknownShape, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, p, "input %q", tt.in)
	}
}

func TestLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.json")
	require.NoError(t, WriteLabels(path, []wfwo.Label{0, 1, 2}))
	labels, err := ReadLabels(path)
	require.NoError(t, err)
	assert.Equal(t, []wfwo.Label{0, 1, 2}, labels)

	require.NoError(t, os.WriteFile(path, []byte(`[0, "x"]`), 0600))
	_, err = ReadLabels(path)
	assert.Error(t, err)
}

func TestPredictions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pred.json")
	mon := wfwo.Predictions{wfwo.Vector([]float64{0.7, 0.2, 0.1})}
	unmon := wfwo.Predictions{wfwo.Vector([]float64{0.1, 0.2, 0.7}), wfwo.Vector([]float64{0, 1, 0})}
	require.NoError(t, WritePredictions(path, mon, unmon))

	gotMon, gotUnmon, err := ReadPredictions(path)
	require.NoError(t, err)
	assert.Equal(t, mon, gotMon)
	assert.Equal(t, unmon, gotUnmon)
}

func TestReadPredictionsMixed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pred.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mon": [0, [0.5, 0.5]], "unmon": [2]}`), 0600))
	mon, unmon, err := ReadPredictions(path)
	require.NoError(t, err)
	_, err = wfwo.CheckInput([]wfwo.Label{0, 1}, []wfwo.Label{2}, mon, unmon)
	assert.ErrorIs(t, err, wfwo.ErrMixedShape)

	require.NoError(t, os.WriteFile(path, []byte(`{"mon": [true], "unmon": [2]}`), 0600))
	_, _, err = ReadPredictions(path)
	assert.ErrorIs(t, err, wfwo.ErrUnknownShape)
}

func TestOutput(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	cfg := wfwo.DefaultConfig()
	cfg.MaxAlexa = 2
	cfg.Seed = 5
	out, err := sim.Run(context.Background(), cfg, sim.Input{
		LabelsMon:   []wfwo.Label{0, 1},
		LabelsUnmon: []wfwo.Label{2, 2},
		PredMon:     wfwo.Predictions{wfwo.Single(0), wfwo.Single(0)},
		PredUnmon:   wfwo.Predictions{wfwo.Single(1), wfwo.Single(2)},
	}, l)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "sim.json")
	require.NoError(t, WriteOutput(path, out))
	got, err := ReadOutput(path)
	require.NoError(t, err)
	assert.Equal(t, out, got)
}

func TestReadOutputEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"ranks": []}`), 0600))
	_, err := ReadOutput(path)
	assert.ErrorIs(t, err, wfwo.ErrEmpty)
}

func TestReadOutputMixedShape(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"single mon, vector unmon",
			`{"ranks": [{"rank": 1, "mon": [0, 1], "unmon": [[0.1, 0.2, 0.7]]}]}`},
		{"vector in a later rank",
			`{"ranks": [{"rank": 1, "mon": [0], "unmon": [2]},
				{"rank": 10, "mon": [[0.5, 0.5, 0]], "unmon": [2]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sim.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0600))
			_, err := ReadOutput(path)
			assert.ErrorIs(t, err, wfwo.ErrMixedShape)
		})
	}
}

func TestReadOutputEmptyUnmonitored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"ranks": [{"rank": 1, "mon": [0], "unmon": []}]}`), 0600))
	_, err := ReadOutput(path)
	assert.ErrorIs(t, err, wfwo.ErrEmpty)
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.csv")
	require.NoError(t, WriteCSV(path, []metrics.Point{
		{Threshold: 0, Result: metrics.Result{TP: 2, TN: 2}},
		{Threshold: 0.5, Result: metrics.Result{TP: 1, FN: 1, TN: 2}},
	}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "threshold", rows[0][0])
	assert.Equal(t, []string{"0.5000", "1", "0", "0", "2", "1", "0.7500", "0.5000", "1.0000"}, rows[2])
}
