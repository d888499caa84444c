/*
Package oracle implements a simulated website oracle (WO): a side channel that
answers if a website was visited within a timeframe. Other Tor users visiting
the same website in the timeframe make the oracle confirm visits that the
target user never made.
*/
package oracle

import (
	"math/rand"
	"sync"
	"sync/atomic"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/pylls/wfwo"
	"github.com/pylls/wfwo/tor"
)

// Config is the immutable configuration of an Oracle.
type Config struct {
	// CacheTimeframe (ms) is the window of each simulation of the Tor network.
	CacheTimeframe int
	// Timeframe (ms) of the oracle, a long one forces re-simulation.
	Timeframe int
	// Rank is the starting Alexa rank of the monitored sites.
	Rank int
	// Probability of observing a visit to the correct website.
	Probability float64
	// FPR is the false positive rate.
	FPR float64
	// Lazy reuses one simulation of the Tor network when it makes sense
	// statistically.
	Lazy bool
	// Scale of the Tor network.
	Scale float64
}

// Oracle is a website oracle for one starting Alexa rank.
type Oracle struct {
	cfg Config

	mu      sync.Mutex // protects r, gen and visited
	r       *rand.Rand
	gen     *tor.Generator
	visited mapset.Set[int]

	queries atomic.Int64
	resims  atomic.Int64
}

// New creates an oracle and simulates the websites visited by all other Tor
// users in its window. All randomness is drawn from r, which must not be used
// by others while the oracle is in use.
func New(cfg Config, r *rand.Rand) *Oracle {
	o := &Oracle{
		cfg: cfg,
		r:   r,
		gen: tor.NewGenerator(r),
	}
	o.visited = o.simVisits()
	return o
}

// simVisits returns the simulated websites visited over Tor by all other Tor
// users.
func (o *Oracle) simVisits() mapset.Set[int] {
	visited := mapset.NewThreadUnsafeSet[int]()
	for i := 0; i < tor.NumSites(o.cfg.CacheTimeframe, o.cfg.Scale); i++ {
		visited.Add(o.gen.Next())
	}
	return visited
}

// Query answers if site was visited, given the correct label of the testing
// trace. Precondition: correct is the correct label for a monitored website.
//
// There are three cases for a positive answer:
//   - the target user visited the correct website, observed with the
//     configured probability,
//   - the oracle produced a false positive, or
//   - the website was visited by another (simulated) Tor user.
//
// Tor is simulated again for each query unless lazy. Even when lazy, Tor is
// simulated again for starting Alexa ranks below 1k and timeframes above 1s.
func (o *Oracle) Query(site, correct wfwo.Label) bool {
	o.queries.Add(1)

	o.mu.Lock()
	defer o.mu.Unlock()
	if site == correct && o.r.Float64() < o.cfg.Probability { // observed
		return true
	}
	if o.r.Float64() < o.cfg.FPR { // false positive
		return true
	}
	visited := o.visited
	if o.resimulate() {
		o.resims.Add(1)
		visited = o.simVisits()
	}
	return visited.Contains(site + o.cfg.Rank)
}

func (o *Oracle) resimulate() bool {
	return !o.cfg.Lazy || o.cfg.Rank < 1000 || o.cfg.Timeframe > 1000
}

// Queries returns the number of calls to Query so far.
func (o *Oracle) Queries() int {
	return int(o.queries.Load())
}

// Resimulations returns how many times Tor was simulated again for a query.
func (o *Oracle) Resimulations() int {
	return int(o.resims.Load())
}

// Config returns the configuration of the oracle.
func (o *Oracle) Config() Config {
	return o.cfg
}
