package scoring

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel() *Model {
	return &Model{
		Type:  "test",
		Title: "Test module",
		Scale: ScalePercent,
		Schema: Schema{
			Numeric("age", 18, 100, true),
			Boolean("smoker"),
			Categorical("activity", false, "low", "high"),
		},
		Table: Table{
			Baseline: 5,
			Ceiling:  50,
			Rules: []Rule{
				Add("age-60", "age", 10, AtLeast("age", 60), "older age"),
				Add("active", "activity", -8, Equals("activity", "high"), "exercise protects"),
				Mul("smoker", "smoker", 4, True("smoker"), "smoking multiplies risk").Flagged(),
			},
		},
		Classifier: MustClassifier("test",
			Band{Label: "low", Upper: 10},
			Band{Label: "moderate", Upper: 30},
			Band{Label: "high"},
		),
		Advice: Advice{
			Baseline:    []string{"Stay active."},
			ByRule:      map[string]string{"smoker": "Quit smoking."},
			Urgent:      map[string][]string{"high": {"See a specialist.", "Stay active."}},
			UrgentBands: 1,
		},
		Population: Population{Mean: 10, SD: 5},
	}
}

func extract(t *testing.T, m *Model, raw map[string]interface{}) FactorSet {
	t.Helper()
	fs, err := m.Extract(raw)
	require.NoError(t, err)
	return fs
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-3, 0, 10))
	assert.Equal(t, 10.0, Clamp(12, 0, 10))
	assert.Equal(t, 4.5, Clamp(4.5, 0, 10))
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 12.3, Round1(12.34))
	assert.Equal(t, 12.4, Round1(12.36))
}

func TestCompute_Ordered(t *testing.T) {
	m := testModel()
	fs := extract(t, m, map[string]interface{}{"age": 65, "smoker": true})

	res, err := m.Compute(fs)
	require.NoError(t, err)
	// (5 + 10) * 4 = 60, clamped to the ceiling.
	assert.Equal(t, 60.0, res.RawScore)
	assert.Equal(t, 50.0, res.Score)
	assert.Equal(t, "high", res.Level.Label)
	assert.Equal(t, 2, res.Level.Rank)

	require.Len(t, res.Contributions, 2)
	assert.Equal(t, "age-60", res.Contributions[0].RuleID)
	assert.Equal(t, 10.0, res.Contributions[0].Contribution)
	assert.Equal(t, "smoker", res.Contributions[1].RuleID)
	assert.Equal(t, 45.0, res.Contributions[1].Contribution)
	assert.Equal(t, 60.0, res.Contributions[1].RunningTotal)
	assert.True(t, res.Contributions[1].HighImpact)
}

func TestCompute_ClampsBelowZero(t *testing.T) {
	m := testModel()
	fs := extract(t, m, map[string]interface{}{"age": 30, "activity": "HIGH"})
	res, err := m.Compute(fs)
	require.NoError(t, err)
	assert.Equal(t, -3.0, res.RawScore)
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, "low", res.Level.Label)
}

func TestCompute_SkipsAbsentFactors(t *testing.T) {
	m := testModel()
	fs := extract(t, m, map[string]interface{}{"age": 30})
	res, err := m.Compute(fs)
	require.NoError(t, err)
	assert.Empty(t, res.Contributions)
	assert.Equal(t, 5.0, res.Score)
	assert.Equal(t, []string{"Stay active."}, res.Recommendations)
}

func TestCompute_Idempotent(t *testing.T) {
	m := testModel()
	fs := extract(t, m, map[string]interface{}{"age": 70, "smoker": false, "activity": "low"})
	a, err := m.Compute(fs)
	require.NoError(t, err)
	b, err := m.Compute(fs)
	require.NoError(t, err)

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	assert.JSONEq(t, string(ja), string(jb))
}

func TestCompute_NoClassifier(t *testing.T) {
	m := testModel()
	m.Classifier = nil
	_, err := m.Compute(extract(t, m, map[string]interface{}{"age": 30}))
	assert.True(t, IsInvariantViolation(err))
}

func TestCompute_SubTypesReportDiscrepancy(t *testing.T) {
	m := &Model{
		Type:   "multi",
		Scale:  ScalePercent,
		Schema: Schema{Numeric("x", 0, 100, true)},
		Table:  Table{Ceiling: 30},
		SubTypes: []SubModel{
			{Name: "a", Table: Table{Baseline: 0, Ceiling: 20, Rules: []Rule{Add("a", "x", 1, nil, "")}}},
			{Name: "b", Table: Table{Baseline: 0, Ceiling: 20, Rules: []Rule{Add("b", "x", 50, nil, "")}}},
		},
		Classifier: MustClassifier("multi", Band{Label: "low", Upper: 10}, Band{Label: "high"}),
	}
	fs := extract(t, m, map[string]interface{}{"x": 1})
	res, err := m.Compute(fs)
	require.NoError(t, err)

	require.Len(t, res.Breakdown, 2)
	assert.Equal(t, 1.0, res.Breakdown[0].Score)
	assert.Equal(t, 20.0, res.Breakdown[1].Score)
	assert.Equal(t, 50.0, res.Breakdown[1].RawScore)
	assert.Equal(t, 21.0, res.Score)
	assert.Empty(t, res.Discrepancy)

	m.Table.Ceiling = 15
	res, err = m.Compute(fs)
	require.NoError(t, err)
	assert.Equal(t, 15.0, res.Score)
	assert.Contains(t, res.Discrepancy, "21.0%")
	assert.Contains(t, res.Discrepancy, "15.0%")
}

func TestClassifier_Validation(t *testing.T) {
	_, err := NewClassifier("x", Band{Label: "only"})
	assert.Error(t, err)

	_, err = NewClassifier("x", Band{Label: "a", Upper: 5}, Band{Label: "b", Upper: 5}, Band{Label: "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thresholds must ascend")

	_, err = NewClassifier("x", Band{Label: "a", Upper: math.NaN()}, Band{Label: "b"})
	assert.Error(t, err)
}

func TestClassifier_Monotonic(t *testing.T) {
	c := testModel().Classifier
	prev := -1
	for score := 0.0; score <= 50; score += 0.5 {
		lvl, err := c.Classify(score)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, lvl.Rank, prev, "score %v", score)
		prev = lvl.Rank
	}
}

func TestClassifier_TiesGoUp(t *testing.T) {
	c := testModel().Classifier
	lvl, err := c.Classify(10)
	require.NoError(t, err)
	assert.Equal(t, "moderate", lvl.Label)

	_, err = c.Classify(math.NaN())
	assert.True(t, IsInvariantViolation(err))
}

func TestClassifier_Bands(t *testing.T) {
	c := testModel().Classifier
	bands := c.Bands()
	require.Len(t, bands, 3)
	assert.False(t, bands[0].Unbounded())
	assert.True(t, bands[2].Unbounded())

	raw, err := json.Marshal(bands)
	require.NoError(t, err)
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded[0], "upper")
	assert.NotContains(t, decoded[2], "upper", "the top band has no threshold")
	assert.True(t, c.Top(Level{Rank: 2}, 1))
	assert.False(t, c.Top(Level{Rank: 1}, 1))
	assert.Len(t, c.Levels(), 3)
}

func TestRecommend_UrgentFirstAndDeduplicated(t *testing.T) {
	m := testModel()
	res, err := m.Compute(extract(t, m, map[string]interface{}{"age": 65, "smoker": true}))
	require.NoError(t, err)
	assert.Equal(t, []string{"See a specialist.", "Stay active.", "Quit smoking."}, res.Recommendations)
}

func TestRecommend_Fallback(t *testing.T) {
	var a Advice
	out := a.Recommend(nil, Level{}, nil)
	assert.Equal(t, []string{FallbackRecommendation}, out)

	a.Fallback = "Talk to us."
	assert.Equal(t, []string{"Talk to us."}, a.Recommend(nil, Level{}, nil))
}

func TestPopulation_Percentile(t *testing.T) {
	p := Population{Mean: 10, SD: 5}
	assert.InDelta(t, 50, p.Percentile(10), 1e-9)
	assert.Greater(t, p.Percentile(15), p.Percentile(10))
	assert.InDelta(t, 84.13, p.Percentile(15), 0.01)

	flat := Population{Mean: 10}
	assert.Equal(t, 100.0, flat.Percentile(10))
	assert.Equal(t, 0.0, flat.Percentile(9))
}

func TestResult_Percentages(t *testing.T) {
	r := &AssessmentResult{Scale: ScaleFraction, Score: 0.1234}
	assert.InDelta(t, 12.34, r.RiskPercentage(), 1e-9)
	assert.Equal(t, 12.3, r.DisplayPercentage())

	p := &AssessmentResult{Scale: ScalePercent, Score: 7.25}
	assert.Equal(t, 7.25, p.RiskPercentage())
}
