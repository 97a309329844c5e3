package scoring

import (
	"fmt"
	"math"
)

// Scale is the numeric representation a module uses for its score. A module
// never mixes scales.
type Scale string

const (
	// ScalePercent scores are true percentages in [0, 100].
	ScalePercent Scale = "percent"
	// ScaleFraction scores are probabilities in [0, 1].
	ScaleFraction Scale = "fraction"
)

// Population describes the reference distribution used for the percentile.
type Population struct {
	Mean float64
	SD   float64
}

// SubModel scores one concurrent risk type of a multi-type module.
type SubModel struct {
	Name  string
	Table Table
}

// Model is the full declaration of one assessment module: schema, rules,
// bands, advice, and population reference.
type Model struct {
	Type       string
	Title      string
	Scale      Scale
	Schema     Schema
	Table      Table
	SubTypes   []SubModel
	Classifier *Classifier
	Advice     Advice
	Population Population
}

// Ceiling is the module's declared maximum score.
func (m *Model) Ceiling() float64 { return m.Table.Ceiling }

// Extract validates raw input against the module schema.
func (m *Model) Extract(raw map[string]interface{}) (FactorSet, error) {
	return m.Schema.Extract(raw)
}

// Breakdown is one sub-type entry of a multi-type result.
type Breakdown struct {
	SubType  string  `json:"sub_type"`
	Score    float64 `json:"score"`
	RawScore float64 `json:"raw_score"`
	Level    Level   `json:"level"`
}

// AssessmentResult is the immutable output of one computation. It carries no
// identity or timestamp, so identical factor sets yield equal results.
type AssessmentResult struct {
	Module          string                 `json:"module"`
	Scale           Scale                  `json:"scale"`
	Score           float64                `json:"score"`
	RawScore        float64                `json:"raw_score"`
	Min             float64                `json:"min"`
	Max             float64                `json:"max"`
	Level           Level                  `json:"level"`
	Breakdown       []Breakdown            `json:"breakdown,omitempty"`
	Contributions   []WeightedContribution `json:"contributions"`
	Recommendations []string               `json:"recommendations"`
	Percentile      float64                `json:"percentile"`
	// Discrepancy is set when the displayed per-type values do not add up to
	// the displayed overall score. Both are kept as computed.
	Discrepancy string `json:"discrepancy,omitempty"`
}

// RiskPercentage converts the score to a 0-100 percentage.
func (r *AssessmentResult) RiskPercentage() float64 {
	if r.Scale == ScaleFraction {
		return r.Score * 100
	}
	return r.Score
}

// DisplayPercentage is RiskPercentage rounded to one decimal.
func (r *AssessmentResult) DisplayPercentage() float64 {
	return Round1(r.RiskPercentage())
}

// Compute runs the scoring engine, classifier and recommendation generator
// over fs. It is pure and deterministic.
func (m *Model) Compute(fs FactorSet) (*AssessmentResult, error) {
	if m.Classifier == nil {
		return nil, &InvariantViolation{Module: m.Type, Detail: "no classifier configured"}
	}

	res := &AssessmentResult{
		Module: m.Type,
		Scale:  m.Scale,
		Max:    m.Ceiling(),
	}

	if len(m.SubTypes) == 0 {
		raw, contribs := m.Table.evaluate(fs, "")
		res.RawScore = raw
		res.Score = Clamp(raw, 0, m.Ceiling())
		res.Contributions = contribs
	} else {
		var sum float64
		var displayedSum float64
		for _, st := range m.SubTypes {
			raw, contribs := st.Table.evaluate(fs, st.Name)
			score := Clamp(raw, 0, st.Table.Ceiling)
			lvl, err := m.Classifier.Classify(score)
			if err != nil {
				return nil, err
			}
			res.Breakdown = append(res.Breakdown, Breakdown{
				SubType:  st.Name,
				Score:    score,
				RawScore: raw,
				Level:    lvl,
			})
			res.Contributions = append(res.Contributions, contribs...)
			sum += score
			displayedSum += Round1(m.percentOf(score))
		}
		res.RawScore = sum
		res.Score = Clamp(sum, 0, m.Ceiling())
		if shown := Round1(m.percentOf(res.Score)); math.Abs(Round1(displayedSum)-shown) >= 0.05 {
			res.Discrepancy = fmt.Sprintf(
				"per-type risks sum to %.1f%% but overall risk is reported as %.1f%%; sub-types are clamped independently before summing",
				Round1(displayedSum), shown)
		}
	}

	if res.Score < 0 || res.Score > m.Ceiling() || math.IsNaN(res.Score) {
		return nil, &InvariantViolation{Module: m.Type, Detail: fmt.Sprintf("score %v outside [0, %v]", res.Score, m.Ceiling())}
	}

	lvl, err := m.Classifier.Classify(res.Score)
	if err != nil {
		return nil, err
	}
	res.Level = lvl
	res.Recommendations = m.Advice.Recommend(m.Classifier, lvl, res.Contributions)
	res.Percentile = m.Population.Percentile(res.Score)
	return res, nil
}

func (m *Model) percentOf(score float64) float64 {
	if m.Scale == ScaleFraction {
		return score * 100
	}
	return score
}

// Percentile returns the share of the reference population scoring at or below
// score, in [0, 100], assuming a normal distribution.
func (p Population) Percentile(score float64) float64 {
	if p.SD <= 0 {
		if score >= p.Mean {
			return 100
		}
		return 0
	}
	z := (score - p.Mean) / p.SD
	return Clamp(50*(1+math.Erf(z/math.Sqrt2)), 0, 100)
}
