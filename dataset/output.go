package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/uuid"

	"github.com/pylls/wfwo"
	"github.com/pylls/wfwo/metrics"
	"github.com/pylls/wfwo/sim"
)

type outputFile struct {
	Run         uuid.UUID   `json:"run"`
	Config      wfwo.Config `json:"config"`
	Unmonitored wfwo.Label  `json:"unmonitored"`
	Ranks       []rankFile  `json:"ranks"`
}

type rankFile struct {
	Rank          int              `json:"rank"`
	Mon           []jsontext.Value `json:"mon"`
	Unmon         []jsontext.Value `json:"unmon"`
	QueriesMon    int              `json:"queries_mon"`
	QueriesUnmon  int              `json:"queries_unmon"`
	Resimulations int              `json:"resimulations"`
}

// WriteOutput writes the output of a WF+WO simulation as JSON.
func WriteOutput(path string, out *sim.Output) error {
	f := outputFile{
		Run:         out.Run,
		Config:      out.Config,
		Unmonitored: out.Unmonitored,
		Ranks:       make([]rankFile, len(out.Ranks)),
	}
	for i, r := range out.Ranks {
		mon, err := encodePredictions(r.Mon)
		if err != nil {
			return fmt.Errorf("rank %d: %w", r.Rank, err)
		}
		unmon, err := encodePredictions(r.Unmon)
		if err != nil {
			return fmt.Errorf("rank %d: %w", r.Rank, err)
		}
		f.Ranks[i] = rankFile{
			Rank:          r.Rank,
			Mon:           mon,
			Unmon:         unmon,
			QueriesMon:    r.QueriesMon,
			QueriesUnmon:  r.QueriesUnmon,
			Resimulations: r.Resimulations,
		}
	}
	data, err := json.Marshal(f, jsontext.WithIndent("\t"))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0666)
}

// ReadOutput reads the output of a WF+WO simulation.
func ReadOutput(path string) (*sim.Output, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f outputFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse simulation output in %s (%w)", path, err)
	}
	if len(f.Ranks) == 0 {
		return nil, fmt.Errorf("no ranks in simulation output %s: %w", path, wfwo.ErrEmpty)
	}

	out := &sim.Output{
		Run:         f.Run,
		Config:      f.Config,
		Unmonitored: f.Unmonitored,
		Ranks:       make([]sim.Rank, len(f.Ranks)),
	}
	for i, r := range f.Ranks {
		mon, err := decodePredictions(r.Mon)
		if err != nil {
			return nil, fmt.Errorf("rank %d: %w", r.Rank, err)
		}
		unmon, err := decodePredictions(r.Unmon)
		if err != nil {
			return nil, fmt.Errorf("rank %d: %w", r.Rank, err)
		}
		out.Ranks[i] = sim.Rank{
			Rank:          r.Rank,
			Mon:           mon,
			Unmon:         unmon,
			QueriesMon:    r.QueriesMon,
			QueriesUnmon:  r.QueriesUnmon,
			Resimulations: r.Resimulations,
		}
	}
	if out.Kind, err = outputKind(out.Ranks); err != nil {
		return nil, fmt.Errorf("simulation output %s: %w", path, err)
	}
	return out, nil
}

// outputKind is the kind of all monitored and unmonitored predictions of all
// ranks.
func outputKind(ranks []sim.Rank) (wfwo.Kind, error) {
	kind := wfwo.KindUnknown
	for _, r := range ranks {
		for _, set := range []struct {
			name string
			ps   wfwo.Predictions
		}{{"monitored", r.Mon}, {"unmonitored", r.Unmon}} {
			k, err := set.ps.Kind()
			if err != nil {
				return wfwo.KindUnknown, fmt.Errorf("rank %d %s predictions: %w", r.Rank, set.name, err)
			}
			if kind == wfwo.KindUnknown {
				kind = k
			}
			if k != kind {
				return wfwo.KindUnknown, fmt.Errorf("rank %d %s predictions are %s, expected %s: %w",
					r.Rank, set.name, k, kind, wfwo.ErrMixedShape)
			}
		}
	}
	return kind, nil
}

// WriteCSV writes metrics with one row per threshold.
func WriteCSV(path string, points []metrics.Point) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"threshold", "tp", "fpp", "fnp", "tn", "fn",
		"accuracy", "recall", "precision"})
	for _, p := range points {
		w.Write([]string{
			strconv.FormatFloat(p.Threshold, 'f', 4, 64),
			strconv.Itoa(p.TP),
			strconv.Itoa(p.FPP),
			strconv.Itoa(p.FNP),
			strconv.Itoa(p.TN),
			strconv.Itoa(p.FN),
			strconv.FormatFloat(p.Accuracy(), 'f', 4, 64),
			strconv.FormatFloat(p.Recall(), 'f', 4, 64),
			strconv.FormatFloat(p.Precision(), 'f', 4, 64),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
