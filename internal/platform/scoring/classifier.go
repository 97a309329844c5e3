package scoring

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/rotisserie/eris"
)

// Level is a discrete risk classification. Rank orders levels within a module,
// starting at 0 for the lowest band.
type Level struct {
	Label string `json:"label"`
	Rank  int    `json:"rank"`
}

// Band is one classification band. Upper is exclusive; the last band of a
// Classifier is unbounded and encodes without an upper threshold.
type Band struct {
	Label string  `json:"label"`
	Upper float64 `json:"upper"`
}

// Unbounded reports whether the band has no upper threshold.
func (b Band) Unbounded() bool { return math.IsInf(b.Upper, 1) }

func (b Band) MarshalJSON() ([]byte, error) {
	out := struct {
		Label string   `json:"label"`
		Upper *float64 `json:"upper,omitempty"`
	}{Label: b.Label}
	if !b.Unbounded() {
		out.Upper = &b.Upper
	}
	return json.Marshal(out)
}

// Classifier maps a clamped score to a Level through ascending thresholds.
type Classifier struct {
	module string
	bands  []Band
}

// NewClassifier validates that thresholds strictly ascend. The last band's
// Upper is forced to +Inf.
func NewClassifier(module string, bands ...Band) (*Classifier, error) {
	if len(bands) < 2 {
		return nil, eris.Errorf("%s: classifier needs at least two bands, got %d", module, len(bands))
	}
	bs := make([]Band, len(bands))
	copy(bs, bands)
	for i := 0; i < len(bs)-1; i++ {
		if math.IsNaN(bs[i].Upper) {
			return nil, eris.Errorf("%s: band %q has NaN threshold", module, bs[i].Label)
		}
		if i > 0 && bs[i].Upper <= bs[i-1].Upper {
			return nil, eris.Errorf("%s: thresholds must ascend (%q <= %q)", module, bs[i].Label, bs[i-1].Label)
		}
	}
	bs[len(bs)-1].Upper = math.Inf(1)
	return &Classifier{module: module, bands: bs}, nil
}

// MustClassifier panics on an invalid band list. Used for static module tables.
func MustClassifier(module string, bands ...Band) *Classifier {
	c, err := NewClassifier(module, bands...)
	if err != nil {
		panic(err)
	}
	return c
}

// Classify returns the band containing score. Ties at a threshold belong to the
// higher band.
func (c *Classifier) Classify(score float64) (Level, error) {
	if math.IsNaN(score) {
		return Level{}, &InvariantViolation{Module: c.module, Detail: "score is NaN"}
	}
	for i, b := range c.bands {
		if score < b.Upper {
			return Level{Label: b.Label, Rank: i}, nil
		}
	}
	return Level{}, &InvariantViolation{Module: c.module, Detail: fmt.Sprintf("no band for score %v", score)}
}

// Bands returns a copy of the bands. The last one is Unbounded.
func (c *Classifier) Bands() []Band {
	out := make([]Band, len(c.bands))
	copy(out, c.bands)
	return out
}

// Levels returns every level in ascending order.
func (c *Classifier) Levels() []Level {
	out := make([]Level, len(c.bands))
	for i, b := range c.bands {
		out[i] = Level{Label: b.Label, Rank: i}
	}
	return out
}

// Top reports whether lvl is within the n highest bands.
func (c *Classifier) Top(lvl Level, n int) bool {
	return lvl.Rank >= len(c.bands)-n
}
