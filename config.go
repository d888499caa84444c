package wfwo

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config is the configuration of a WF+WO simulation.
type Config struct {
	// Timeframe in milliseconds for the WO.
	Timeframe int `yaml:"timeframe" json:"timeframe"`
	// Probability of the WO observing a website visit.
	Probability float64 `yaml:"probability" json:"probability"`
	// FPR is the false positive rate of the WO.
	FPR float64 `yaml:"fpr" json:"fpr"`
	// MaxAlexa is the max monitored starting Alexa rank 10^{0,MaxAlexa}
	// (inclusive).
	MaxAlexa int `yaml:"max_alexa" json:"max_alexa"`
	// ScaleTor scales the size of the Tor network.
	ScaleTor float64 `yaml:"scale_tor" json:"scale_tor"`
	// Lazy only re-simulates Tor when it makes sense statistically.
	Lazy bool `yaml:"lazy" json:"lazy"`
	// Seed for all randomness, 0 picks one based on the current time.
	Seed int64 `yaml:"seed" json:"seed"`
	// Workers is the number of popularity ranks simulated in parallel.
	Workers int `yaml:"workers" json:"workers"`
}

// DefaultConfig returns the configuration used in the published WF+WO
// experiments.
func DefaultConfig() Config {
	return Config{
		Timeframe:   100,
		Probability: 1.0,
		FPR:         0.0,
		MaxAlexa:    4,
		ScaleTor:    1.0,
		Lazy:        true,
		Workers:     runtime.NumCPU(),
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s (%w)", path, err)
	}
	return cfg, nil
}

// Validate checks that all values are in range.
func (c Config) Validate() error {
	switch {
	case c.Timeframe <= 0:
		return fmt.Errorf("timeframe must be positive, got %d", c.Timeframe)
	case c.Probability < 0 || c.Probability > 1:
		return fmt.Errorf("probability must be in [0,1], got %v", c.Probability)
	case c.FPR < 0 || c.FPR > 1:
		return fmt.Errorf("fpr must be in [0,1], got %v", c.FPR)
	case c.MaxAlexa < 0 || c.MaxAlexa > 9:
		return fmt.Errorf("max Alexa exponent must be in [0,9], got %d", c.MaxAlexa)
	case c.ScaleTor <= 0:
		return fmt.Errorf("scale of Tor must be positive, got %v", c.ScaleTor)
	case c.Workers < 1:
		return fmt.Errorf("need at least one worker, got %d", c.Workers)
	}
	return nil
}

// Popularity returns the simulated starting Alexa ranks 10^0 ... 10^MaxAlexa.
func (c Config) Popularity() []int {
	return Popularity(c.MaxAlexa + 1)
}

// Popularity returns the first n powers of ten.
func Popularity(n int) []int {
	ranks := make([]int, n)
	p := 1
	for i := range ranks {
		ranks[i] = p
		p *= 10
	}
	return ranks
}
