package scoring

import "math"

// Op is how a rule changes the running total.
type Op string

const (
	OpAdd      Op = "add"
	OpMultiply Op = "multiply"
)

// Predicate decides whether a rule applies to a FactorSet.
type Predicate func(fs FactorSet) bool

// Rule is one row of a module's rule table.
type Rule struct {
	ID     string
	Factor string
	Op     Op
	// Weight is the addend for OpAdd and the multiplier for OpMultiply.
	Weight    float64
	When      Predicate
	Rationale string
	// HighImpact marks rules whose triggering adds a factor recommendation.
	HighImpact bool
}

// Add declares an additive rule.
func Add(id, factor string, weight float64, when Predicate, rationale string) Rule {
	return Rule{ID: id, Factor: factor, Op: OpAdd, Weight: weight, When: when, Rationale: rationale}
}

// Mul declares a multiplicative rule.
func Mul(id, factor string, multiplier float64, when Predicate, rationale string) Rule {
	return Rule{ID: id, Factor: factor, Op: OpMultiply, Weight: multiplier, When: when, Rationale: rationale}
}

// Flagged marks the rule as high impact.
func (r Rule) Flagged() Rule {
	r.HighImpact = true
	return r
}

// WeightedContribution is the audit record of one applied rule.
type WeightedContribution struct {
	RuleID       string  `json:"rule_id"`
	Factor       string  `json:"factor"`
	SubType      string  `json:"sub_type,omitempty"`
	RawValue     Value   `json:"raw_value"`
	Op           Op      `json:"op"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	RunningTotal float64 `json:"running_total"`
	Rationale    string  `json:"rationale"`
	HighImpact   bool    `json:"high_impact,omitempty"`
}

// Table is a baseline plus an ordered rule list and a ceiling.
type Table struct {
	Baseline float64
	Ceiling  float64
	Rules    []Rule
}

// evaluate runs the rule table in order. Rules whose factor is absent are
// skipped; rules with no factor (composites) only consult their predicate.
func (t Table) evaluate(fs FactorSet, subType string) (raw float64, contribs []WeightedContribution) {
	total := t.Baseline
	for _, r := range t.Rules {
		var v Value
		if r.Factor != "" {
			v = fs.Get(r.Factor)
			if !v.Present() {
				continue
			}
		}
		if r.When != nil && !r.When(fs) {
			continue
		}

		before := total
		switch r.Op {
		case OpMultiply:
			total *= r.Weight
		default:
			total += r.Weight
		}
		contribs = append(contribs, WeightedContribution{
			RuleID:       r.ID,
			Factor:       r.Factor,
			SubType:      subType,
			RawValue:     v,
			Op:           r.Op,
			Weight:       r.Weight,
			Contribution: total - before,
			RunningTotal: total,
			Rationale:    r.Rationale,
			HighImpact:   r.HighImpact,
		})
	}
	return total, contribs
}

// Clamp bounds x into [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Round1 rounds to one decimal. Only presentation code may call it.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}
