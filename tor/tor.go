/*
Package tor simulates website visits by other Tor users.

The popularity distribution is an approximation of the one observed by Mani and
Wilson-Brown et al. in "Understanding Tor Usage with Privacy-Preserving
Measurement", Figure 2. The approximation is naive but punishes the attacker as
long as monitored websites are in Alexa top 1m, since visits to Alexa top 1m
are slightly overestimated.
*/
package tor

import (
	"math"
	"math/rand"
)

// TorProject is the constant site for torproject.org, overrepresented in the
// measurement due to what might have been a bug in Onionoo. It has its own
// label such that an attacker may or may not monitor it.
const TorProject = 100000 - 1

const (
	// 140M websites/24h by Mani et al., the upper bound of a 95% confidence
	// interval for inferred website visits in early 2018 for all of Tor.
	visitsPerDay = 140 * 1000 * 1000
	msPerDay     = 24 * 60 * 60 * 1000
)

// bucket is a range of Alexa ranks (low, high] with its share of visits.
type bucket struct {
	p         float64
	low, high int
}

var buckets = []bucket{
	{0.084, 0, 10},
	{0.051, 10, 100},
	{0.062, 100, 1000},
	{0.043, 1000, 10 * 1000},
	{0.077, 10 * 1000, 100 * 1000},
	{0.070, 100 * 1000, 1000 * 1000},
}

const torProjectShare = 0.401

// Visit returns a random website visit over Tor: either TorProject or an
// Alexa rank in [1, 2m].
func Visit(r *rand.Rand) int {
	x := r.Float64() // uniform [0,1), slight bias towards Alexa sites
	if x < torProjectShare {
		return TorProject
	}
	acc := torProjectShare
	for _, b := range buckets {
		acc += b.p
		if x < acc {
			return b.low + r.Intn(b.high-b.low) + 1
		}
	}
	return 1000*1000 + r.Intn(1000*1000) + 1
}

// NumSites answers "how many websites are visited over Tor in ms
// milliseconds?" for a Tor network scaled by scale.
func NumSites(ms int, scale float64) int {
	return int(math.Ceil(float64(visitsPerDay) / float64(msPerDay) *
		float64(ms) * scale))
}

// Generator is an infinite stream of website visits.
type Generator struct {
	r *rand.Rand
}

// NewGenerator returns a Generator drawing from r.
func NewGenerator(r *rand.Rand) *Generator {
	return &Generator{r: r}
}

// Next returns the next visit.
func (g *Generator) Next() int {
	return Visit(g.r)
}

// Sample returns n visits.
func (g *Generator) Sample(n int) []int {
	visits := make([]int, n)
	for i := range visits {
		visits[i] = g.Next()
	}
	return visits
}
