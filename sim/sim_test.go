package sim

import (
	"context"
	"io"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pylls/wfwo"
	"github.com/pylls/wfwo/revise"
)

func quiet() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testConfig() wfwo.Config {
	cfg := wfwo.DefaultConfig()
	cfg.MaxAlexa = 3
	cfg.Seed = 1
	cfg.Workers = 2
	return cfg
}

// singleInput is 10 monitored sites with one trace each, and 10 unmonitored
// traces. The WF attack is right for even sites and guesses unmonitored
// traces to be site 0 for every third trace.
func singleInput() Input {
	var in Input
	for i := 0; i < 10; i++ {
		in.LabelsMon = append(in.LabelsMon, i)
		guess := i
		if i%2 == 1 {
			guess = (i + 1) % 10
		}
		in.PredMon = append(in.PredMon, wfwo.Single(guess))

		in.LabelsUnmon = append(in.LabelsUnmon, 10)
		if i%3 == 0 {
			in.PredUnmon = append(in.PredUnmon, wfwo.Single(0))
		} else {
			in.PredUnmon = append(in.PredUnmon, wfwo.Single(10))
		}
	}
	return in
}

func vectorInput(r *rand.Rand) Input {
	var in Input
	random := func() wfwo.Prediction {
		v := make([]float64, 11)
		s := 0.0
		for j := range v {
			v[j] = r.Float64()
			s += v[j]
		}
		for j := range v {
			v[j] /= s
		}
		return wfwo.Vector(v)
	}
	for i := 0; i < 20; i++ {
		in.LabelsMon = append(in.LabelsMon, i%10)
		in.PredMon = append(in.PredMon, random())
		in.LabelsUnmon = append(in.LabelsUnmon, 10)
		in.PredUnmon = append(in.PredUnmon, random())
	}
	return in
}

func TestRunRanks(t *testing.T) {
	out, err := Run(context.Background(), testConfig(), singleInput(), quiet())
	require.NoError(t, err)
	assert.Equal(t, wfwo.KindSingle, out.Kind)
	assert.Equal(t, 10, out.Unmonitored)
	require.Len(t, out.Ranks, 4)
	for i, want := range []int{1, 10, 100, 1000} {
		assert.Equal(t, want, out.Ranks[i].Rank)
		assert.Len(t, out.Ranks[i].Mon, 10)
		assert.Len(t, out.Ranks[i].Unmon, 10)
	}
}

func TestRunQueryCounts(t *testing.T) {
	out, err := Run(context.Background(), testConfig(), singleInput(), quiet())
	require.NoError(t, err)
	for _, r := range out.Ranks {
		// every monitored guess is checked, unmonitored guesses are not
		assert.Equal(t, 10, r.QueriesMon)
		assert.Equal(t, 4, r.QueriesUnmon)
	}
}

func TestRankQueriesAddUp(t *testing.T) {
	in := vectorInput(rand.New(rand.NewSource(5)))
	cfg := testConfig()
	cfg.Probability = 0.3
	cfg.FPR = 0.2
	for i, rank := range cfg.Popularity() {
		o := newOracle(cfg, rank, cfg.Seed+int64(i))
		r := reviseRank(o, in, 10, revise.Vector)
		assert.Equal(t, rank, r.Rank)
		assert.Equal(t, o.Queries(), r.QueriesMon+r.QueriesUnmon, "rank %d", rank)
		assert.Positive(t, r.QueriesMon)
		assert.Equal(t, o.Resimulations(), r.Resimulations)

		// same seed, same rank
		assert.Equal(t, r, simRank(cfg, rank, cfg.Seed+int64(i), in, 10, revise.Vector))
	}
}

func TestRunPerfectOracleKeepsCorrect(t *testing.T) {
	in := singleInput()
	out, err := Run(context.Background(), testConfig(), in, quiet())
	require.NoError(t, err)
	for _, r := range out.Ranks {
		for i, p := range r.Mon {
			if in.PredMon[i].Label() == in.LabelsMon[i] {
				assert.Equal(t, in.LabelsMon[i], p.Label())
			} else {
				assert.Contains(t, []wfwo.Label{in.PredMon[i].Label(), 10}, p.Label())
			}
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	in := vectorInput(rand.New(rand.NewSource(3)))
	cfg := testConfig()
	cfg.Probability = 0.5
	cfg.FPR = 0.1

	cfg.Workers = 1
	a, err := Run(context.Background(), cfg, in, quiet())
	require.NoError(t, err)
	cfg.Workers = 4
	b, err := Run(context.Background(), cfg, in, quiet())
	require.NoError(t, err)

	assert.NotEqual(t, a.Run, b.Run)
	assert.Equal(t, a.Ranks, b.Ranks)
}

func TestRunDoesNotModifyInput(t *testing.T) {
	in := vectorInput(rand.New(rand.NewSource(4)))
	orig := in.PredMon.Clone()
	cfg := testConfig()
	cfg.Probability = 0
	_, err := Run(context.Background(), cfg, in, quiet())
	require.NoError(t, err)
	assert.Equal(t, orig, in.PredMon)
}

func TestRunPicksSeed(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 0
	out, err := Run(context.Background(), cfg, singleInput(), quiet())
	require.NoError(t, err)
	assert.NotZero(t, out.Config.Seed)
}

func TestRunInvalidInput(t *testing.T) {
	short := singleInput()
	short.LabelsMon = short.LabelsMon[1:]

	mixed := singleInput()
	mixed.PredUnmon = vectorInput(rand.New(rand.NewSource(1))).PredUnmon[:10]

	unknown := singleInput()
	unknown.PredMon[3] = wfwo.Prediction{}

	tests := []struct {
		name string
		in   Input
		err  error
	}{
		{"length", short, wfwo.ErrLengthMismatch},
		{"mixed", mixed, wfwo.ErrMixedShape},
		{"unknown", unknown, wfwo.ErrMixedShape},
		{"empty", Input{}, wfwo.ErrEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), testConfig(), tt.in, quiet())
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Probability = 2
	_, err := Run(context.Background(), cfg, singleInput(), quiet())
	assert.Error(t, err)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, testConfig(), singleInput(), quiet())
	assert.ErrorIs(t, err, context.Canceled)
}
