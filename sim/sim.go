/*
Package sim simulates a WF+WO attack for a range of starting Alexa ranks of
the monitored websites, using the predictions of a WF attack.

For each rank a fresh website oracle is created and the predictions for the
monitored and unmonitored testing traces are revised with it. Ranks are
independent and simulated in parallel, each with its own source of randomness
derived from the seed, so results only depend on the seed.
*/
package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pylls/wfwo"
	"github.com/pylls/wfwo/oracle"
	"github.com/pylls/wfwo/revise"
)

// CacheTimeframe (ms) is the window used to simulate the Tor network for each
// oracle.
const CacheTimeframe = 100

// Input is the labels and predictions from a WF attack.
type Input struct {
	LabelsMon   []wfwo.Label
	LabelsUnmon []wfwo.Label
	PredMon     wfwo.Predictions
	PredUnmon   wfwo.Predictions
}

// Rank is the result of simulating WF+WO for one starting Alexa rank.
type Rank struct {
	Rank          int
	Mon           wfwo.Predictions
	Unmon         wfwo.Predictions
	QueriesMon    int
	QueriesUnmon  int
	Resimulations int
}

// Output is the result of a simulation, one Rank per popularity.
type Output struct {
	Run         uuid.UUID
	Config      wfwo.Config
	Kind        wfwo.Kind
	Unmonitored wfwo.Label
	Ranks       []Rank
}

// Run simulates WF+WO. Input is validated before anything is simulated. A nil
// logger logs to the standard logrus logger.
func Run(ctx context.Context, cfg wfwo.Config, in Input,
	log logrus.FieldLogger) (*Output, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kind, err := wfwo.CheckInput(in.LabelsMon, in.LabelsUnmon, in.PredMon, in.PredUnmon)
	if err != nil {
		return nil, err
	}
	simulate, err := revise.For(kind)
	if err != nil {
		return nil, err
	}
	log.Printf("each prediction is a %s", kind)

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	out := &Output{
		Run:         uuid.New(),
		Config:      cfg,
		Kind:        kind,
		Unmonitored: wfwo.Unmonitored(in.LabelsUnmon),
	}
	popularity := cfg.Popularity()
	out.Ranks = make([]Rank, len(popularity))

	log.WithFields(logrus.Fields{
		"run":         out.Run,
		"timeframe":   cfg.Timeframe,
		"probability": cfg.Probability,
		"fpr":         cfg.FPR,
		"lazy":        cfg.Lazy,
		"scale":       cfg.ScaleTor,
		"seed":        cfg.Seed,
	}).Printf("simulating WF+WO for %d starting Alexa ranks", len(popularity))

	// start workers
	workerIn := make(chan int)
	wg := new(sync.WaitGroup)
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range workerIn {
				out.Ranks[j] = simRank(cfg, popularity[j], cfg.Seed+int64(j),
					in, out.Unmonitored, simulate)
				log.WithFields(logrus.Fields{
					"queries_mon":   out.Ranks[j].QueriesMon,
					"queries_unmon": out.Ranks[j].QueriesUnmon,
					"resimulations": out.Ranks[j].Resimulations,
				}).Printf("\tdone with Alexa monitored websites starting rank %d",
					popularity[j])
			}
		}()
	}

	for i := range popularity {
		if ctx.Err() != nil {
			break
		}
		workerIn <- i
	}
	close(workerIn)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func simRank(cfg wfwo.Config, rank int, seed int64, in Input,
	unmon wfwo.Label, simulate revise.Func) Rank {
	return reviseRank(newOracle(cfg, rank, seed), in, unmon, simulate)
}

func newOracle(cfg wfwo.Config, rank int, seed int64) *oracle.Oracle {
	return oracle.New(oracle.Config{
		CacheTimeframe: CacheTimeframe,
		Timeframe:      cfg.Timeframe,
		Rank:           rank,
		Probability:    cfg.Probability,
		FPR:            cfg.FPR,
		Lazy:           cfg.Lazy,
		Scale:          cfg.ScaleTor,
	}, rand.New(rand.NewSource(seed)))
}

// reviseRank revises the monitored and then the unmonitored predictions with
// o, splitting the queries of o between the two.
func reviseRank(o *oracle.Oracle, in Input, unmon wfwo.Label,
	simulate revise.Func) Rank {
	r := Rank{Rank: o.Config().Rank}
	r.Mon = simulate(o, in.PredMon, in.LabelsMon, unmon)
	r.QueriesMon = o.Queries()
	r.Unmon = simulate(o, in.PredUnmon, in.LabelsUnmon, unmon)
	r.QueriesUnmon = o.Queries() - r.QueriesMon
	r.Resimulations = o.Resimulations()
	return r
}
