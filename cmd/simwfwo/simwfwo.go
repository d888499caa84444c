/*
simwfwo simulates a WF+WO attack with a simulated website oracle, using the
results of a WF attack.

There are two steps to using this tool:
  1. modify your WF attack code to store its labels and predictions, and
  2. run simwfwo on the stored labels and predictions.

For each testing trace, store the correct label and the output of the WF
attack: either only the guessed label, or a list of probabilities for each
possible label (see package dataset for the file formats). All unmonitored
sites must have the same label, and monitored sites are labelled with smaller
integers, starting at 0.

The resulting simulated predictions, one set per starting Alexa rank of the
monitored sites, are read by wfwometrics.
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"

	"github.com/pylls/wfwo"
	"github.com/pylls/wfwo/dataset"
	"github.com/pylls/wfwo/sim"
)

var (
	labelsMon = flag.String("lm", "",
		"file with monitored testing labels")
	labelsUnmon = flag.String("lu", "",
		"file with unmonitored testing labels")
	predictions = flag.String("lp", "",
		"file with pre-computed predictions from the WF attack")
	output = flag.String("s", "",
		"filename for resulting simulated predictions")
	configFile = flag.String("config", "",
		"YAML file with the simulation configuration, flags take precedence")

	defaults    = wfwo.DefaultConfig()
	timeframe   = flag.Int("t", defaults.Timeframe, "timeframe in milliseconds")
	probability = flag.Float64("p", defaults.Probability,
		"probability of website oracle observing a website visit")
	fpr      = flag.Float64("f", defaults.FPR, "false positive rate of the website oracle")
	maxAlexa = flag.Int("a", defaults.MaxAlexa,
		"max monitored starting Alexa rank 10^{0,a} (inclusive)")
	scaleTor = flag.Float64("c", defaults.ScaleTor, "scale Tor network size")
	lazy     = flag.Bool("z", defaults.Lazy,
		"be lazy and only re-simulate Tor when it makes sense statistically")
	seed    = flag.Int64("seed", 0, "seed for randomness, 0 for time-based")
	workers = flag.Int("workers", defaults.Workers,
		"the number of Alexa ranks to simulate in parallel")
)

func main() {
	flag.Parse()
	if *labelsMon == "" || *labelsUnmon == "" || *predictions == "" || *output == "" {
		log.Println("missing labels, predictions or output file")
		flag.Usage()
		os.Exit(2)
	}
	cfg, err := config()
	if err != nil {
		log.Fatalf("failed to read config (%s)", err)
	}

	log.Println("attempting to load labels")
	var in sim.Input
	in.LabelsMon, err = dataset.ReadLabels(*labelsMon)
	if err != nil {
		log.Fatalf("failed to load monitored labels (%s)", err)
	}
	in.LabelsUnmon, err = dataset.ReadLabels(*labelsUnmon)
	if err != nil {
		log.Fatalf("failed to load unmonitored labels (%s)", err)
	}
	log.Println("attempting to load predictions")
	in.PredMon, in.PredUnmon, err = dataset.ReadPredictions(*predictions)
	if err != nil {
		log.Fatalf("failed to load predictions (%s)", err)
	}

	if _, err := wfwo.CheckInput(in.LabelsMon, in.LabelsUnmon,
		in.PredMon, in.PredUnmon); err != nil {
		log.Fatalf("check of labels and predictions failed (%s)", err)
	}
	log.Println("all checks passed, labels and predictions should be OK")
	log.Printf("we got %d monitored and %d unmonitored labels",
		len(in.PredMon), len(in.PredUnmon))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	result, err := sim.Run(ctx, cfg, in, log.StandardLogger())
	if err != nil {
		log.Fatalf("failed to simulate WF+WO (%s)", err)
	}

	log.Printf("All done! Saving simulated predictions to %s", *output)
	if err := dataset.WriteOutput(*output, result); err != nil {
		log.Fatalf("failed to save simulated predictions (%s)", err)
	}
}

// config is the default configuration, updated by the config file if any and
// then by all flags set on the command line.
func config() (cfg wfwo.Config, err error) {
	cfg = wfwo.DefaultConfig()
	if *configFile != "" {
		if cfg, err = wfwo.LoadConfig(*configFile); err != nil {
			return
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.Timeframe = *timeframe
		case "p":
			cfg.Probability = *probability
		case "f":
			cfg.FPR = *fpr
		case "a":
			cfg.MaxAlexa = *maxAlexa
		case "c":
			cfg.ScaleTor = *scaleTor
		case "z":
			cfg.Lazy = *lazy
		case "seed":
			cfg.Seed = *seed
		case "workers":
			cfg.Workers = *workers
		}
	})
	return cfg, cfg.Validate()
}
