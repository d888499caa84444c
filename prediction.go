package wfwo

import "fmt"

// Kind is the format of a prediction from a WF attack.
type Kind int

const (
	// KindUnknown is the zero Prediction.
	KindUnknown Kind = iota
	// KindSingle is a single guessed label.
	KindSingle
	// KindVector is a list of probabilities indexed by label.
	KindVector
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single label"
	case KindVector:
		return "list of probabilities"
	default:
		return "unknown"
	}
}

// Prediction is the output of a WF attack for one testing trace: either a
// single label (Single) or a list of probabilities (Vector).
type Prediction struct {
	kind   Kind
	label  Label
	scores []float64
}

// Single returns a prediction that is just a guessed label.
func Single(label Label) Prediction {
	return Prediction{kind: KindSingle, label: label}
}

// Vector returns a prediction with one probability per label. The scores are
// copied.
func Vector(scores []float64) Prediction {
	return Prediction{kind: KindVector, scores: append([]float64(nil), scores...)}
}

// Kind returns the format of the prediction.
func (p Prediction) Kind() Kind {
	return p.kind
}

// Label returns the guessed label of a single-label prediction.
func (p Prediction) Label() Label {
	return p.label
}

// Scores returns a copy of the probabilities of a vector prediction.
func (p Prediction) Scores() []float64 {
	return append([]float64(nil), p.scores...)
}

// Len is the number of probabilities in a vector prediction.
func (p Prediction) Len() int {
	return len(p.scores)
}

// Top returns the predicted label and its probability. A single label always
// has probability 1. For vectors ties go to the smallest label, and a vector
// without any positive probability left predicts unmon with probability 0.
func (p Prediction) Top(unmon Label) (Label, float64) {
	if p.kind == KindSingle {
		return p.label, 1
	}
	label, score := ArgMax(p.scores)
	if label < 0 || score <= 0 {
		return unmon, 0
	}
	return label, score
}

func (p Prediction) String() string {
	switch p.kind {
	case KindSingle:
		return fmt.Sprintf("%d", p.label)
	case KindVector:
		return fmt.Sprintf("%v", p.scores)
	default:
		return "<unknown>"
	}
}

// ArgMax returns the index and value of the first biggest element, or -1 for
// an empty slice.
func ArgMax(v []float64) (int, float64) {
	if len(v) == 0 {
		return -1, 0
	}
	index := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[index] {
			index = i
		}
	}
	return index, v[index]
}

// Predictions is the output of a WF attack for a set of testing traces.
type Predictions []Prediction

// Kind returns the format shared by all predictions. Vector predictions must
// also share the same number of probabilities.
func (ps Predictions) Kind() (Kind, error) {
	if len(ps) == 0 {
		return KindUnknown, ErrEmpty
	}
	kind := ps[0].kind
	if kind != KindSingle && kind != KindVector {
		return KindUnknown, fmt.Errorf("prediction 0: %w", ErrUnknownShape)
	}
	if kind == KindVector && len(ps[0].scores) == 0 {
		return KindUnknown, fmt.Errorf("prediction 0 has no probabilities: %w", ErrUnknownShape)
	}
	for i := 1; i < len(ps); i++ {
		if ps[i].kind != kind {
			return KindUnknown, fmt.Errorf("prediction %d is %s, expected %s: %w",
				i, ps[i].kind, kind, ErrMixedShape)
		}
		if kind == KindVector && len(ps[i].scores) != len(ps[0].scores) {
			return KindUnknown, fmt.Errorf("prediction %d has %d probabilities, expected %d: %w",
				i, len(ps[i].scores), len(ps[0].scores), ErrLengthMismatch)
		}
	}
	return kind, nil
}

// Clone returns a deep copy.
func (ps Predictions) Clone() Predictions {
	c := make(Predictions, len(ps))
	for i, p := range ps {
		c[i] = p
		if p.scores != nil {
			c[i].scores = append([]float64(nil), p.scores...)
		}
	}
	return c
}
