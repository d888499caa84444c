/*
wfwometrics computes metrics for simulated WF+WO attacks from simwfwo, at each
simulated starting Alexa rank of the monitored sites, optionally together with
the WF attack without a website oracle for comparison.

If the predictions are lists of probabilities, metrics are computed for a range
of thresholds and precision-recall curves are written to a PDF figure.
*/
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/pylls/wfwo"
	"github.com/pylls/wfwo/dataset"
	"github.com/pylls/wfwo/metrics"
	"github.com/pylls/wfwo/plot"
	"github.com/pylls/wfwo/sim"
)

var (
	labelsMon = flag.String("lm", "",
		"file with monitored testing labels")
	labelsUnmon = flag.String("lu", "",
		"file with unmonitored testing labels")
	predictions = flag.String("p", "",
		"file with simulated predictions from simwfwo")
	wfPredictions = flag.String("wf", "",
		"file with WF predictions provided as input to simwfwo (for comparison)")
	title = flag.String("d", "WF+WO, timeframe 100ms",
		"the figure title that describes the experiment")
	output  = flag.String("o", "example", "filename for the figure output")
	wfLabel = flag.String("wl", "WF", "WF label in produced graphs")
)

type testset struct {
	labelsMon, labelsUnmon []wfwo.Label
}

func main() {
	flag.Parse()
	if *labelsMon == "" || *labelsUnmon == "" || *predictions == "" {
		log.Println("missing labels or simulated predictions")
		flag.Usage()
		os.Exit(2)
	}

	log.Println("loading labels")
	var ts testset
	var err error
	if ts.labelsMon, err = dataset.ReadLabels(*labelsMon); err != nil {
		log.Fatalf("failed to load monitored labels (%s)", err)
	}
	if ts.labelsUnmon, err = dataset.ReadLabels(*labelsUnmon); err != nil {
		log.Fatalf("failed to load unmonitored labels (%s)", err)
	}

	log.Println("loading predictions")
	out, err := dataset.ReadOutput(*predictions)
	if err != nil {
		log.Fatalf("failed to load simulated predictions (%s)", err)
	}
	var wfMon, wfUnmon wfwo.Predictions
	if *wfPredictions != "" {
		if wfMon, wfUnmon, err = dataset.ReadPredictions(*wfPredictions); err != nil {
			log.Fatalf("failed to load WF predictions (%s)", err)
		}
		kind, err := wfwo.CheckInput(ts.labelsMon, ts.labelsUnmon, wfMon, wfUnmon)
		if err != nil {
			log.Fatalf("check of WF labels and predictions failed (%s)", err)
		}
		if kind != out.Kind {
			log.Fatalf("WF predictions are %s, simulated predictions %s", kind, out.Kind)
		}
	}
	log.Printf("simulation run %s with %d Alexa ranks", out.Run, len(out.Ranks))

	switch out.Kind {
	case wfwo.KindVector:
		thresholded(ts, out, wfMon, wfUnmon)
	case wfwo.KindSingle:
		simple(ts, out, wfMon, wfUnmon)
	default:
		log.Fatalf("non-supported format for predictions")
	}
}

// thresholded computes metrics for a range of thresholds and generates
// precision-recall curves.
func thresholded(ts testset, out *sim.Output, wfMon, wfUnmon wfwo.Predictions) {
	thresholds := metrics.Thresholds()
	var series []plot.Series

	if wfMon != nil {
		fmt.Println("")
		log.Println("first computing WF without WO metrics with threshold")
		points := sweep(thresholds, ts, wfMon, wfUnmon)
		series = append(series, curve(*wfLabel, points))
		report(*wfLabel, points)
	}

	log.Println("computing WF+WO metrics for different Alexa ranks and thresholds")
	for _, r := range out.Ranks {
		fmt.Println("")
		log.Printf("WF+WO at simulated starting monitored Alexa rank %d, WO calls per label for monitored (%.2f) and unmonitored (%.2f) datasets",
			r.Rank, metrics.QueriesPerLabel(r.QueriesMon, len(ts.labelsMon)),
			metrics.QueriesPerLabel(r.QueriesUnmon, len(ts.labelsUnmon)))
		points := sweep(thresholds, ts, r.Mon, r.Unmon)
		series = append(series, curve(plot.RankLabel(r.Rank), points))
		report(plot.RankLabel(r.Rank), points)
	}

	if err := plot.PrecisionRecall(*output+".pdf", plot.Figure{
		Title:  *title,
		Series: series,
	}); err != nil {
		log.Fatalf("failed to write figure (%s)", err)
	}
	log.Printf("figure written to %s.pdf", *output)
}

func sweep(thresholds []float64, ts testset,
	predMon, predUnmon wfwo.Predictions) []metrics.Point {
	points, err := metrics.Sweep(thresholds, predMon, ts.labelsMon,
		predUnmon, ts.labelsUnmon)
	if err != nil {
		log.Fatalf("failed to compute metrics (%s)", err)
	}
	for _, p := range points {
		fmt.Printf("\t%s\n", p)
	}
	return points
}

func curve(label string, points []metrics.Point) plot.Series {
	s := plot.Series{Label: label}
	for _, p := range points {
		s.Recall = append(s.Recall, p.Recall())
		s.Precision = append(s.Precision, p.Precision())
	}
	return s
}

// report summarizes and stores points for the series name.
func report(name string, points []metrics.Point) {
	s, err := metrics.Summarize(points)
	if err != nil {
		log.Fatalf("failed to summarize %s (%s)", name, err)
	}
	log.WithFields(log.Fields{
		"series":         name,
		"mean_recall":    s.MeanRecall,
		"mean_precision": s.MeanPrecision,
		"max_f1":         s.MaxF1,
		"best_threshold": s.BestThreshold,
	}).Println("summary")

	filename := fmt.Sprintf("%s-%s.csv", *output, name)
	if err := dataset.WriteCSV(filename, points); err != nil {
		log.Fatalf("failed to write %s (%s)", filename, err)
	}
}

// simple computes metrics when there is only a single prediction per test.
func simple(ts testset, out *sim.Output, wfMon, wfUnmon wfwo.Predictions) {
	if wfMon != nil {
		log.Println("metrics for WF only:")
		r, err := metrics.Simple(wfMon, ts.labelsMon, wfUnmon, ts.labelsUnmon)
		if err != nil {
			log.Fatalf("failed to compute metrics (%s)", err)
		}
		fmt.Println(r)
		report(*wfLabel, []metrics.Point{{Result: r}})
		fmt.Println("")
		log.Println("metrics for simulated WF+WO:")
	}

	for _, rank := range out.Ranks {
		r, err := metrics.Simple(rank.Mon, ts.labelsMon, rank.Unmon, ts.labelsUnmon)
		if err != nil {
			log.Fatalf("failed to compute metrics (%s)", err)
		}
		fmt.Printf("Alexa rank %d, %s\n", rank.Rank, r)
		report(plot.RankLabel(rank.Rank), []metrics.Point{{Result: r}})
	}
}
