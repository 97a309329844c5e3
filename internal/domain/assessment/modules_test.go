package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehr/healthrisk/internal/platform/scoring"
)

func compute(t *testing.T, module string, raw map[string]interface{}) *scoring.AssessmentResult {
	t.Helper()
	m, ok := DefaultRegistry().Get(module)
	require.True(t, ok, module)
	fs, err := m.Extract(raw)
	require.NoError(t, err)
	res, err := m.Compute(fs)
	require.NoError(t, err)
	return res
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{ModuleCardiovascular, ModuleDiabetes, ModuleDementia, ModuleStroke, ModuleCancer}, r.Types())
	for _, tag := range r.Types() {
		assert.True(t, IsValidModule(tag))
	}
	assert.False(t, IsValidModule("astrology"))
}

func TestDementia_LowRiskBaseline(t *testing.T) {
	res := compute(t, ModuleDementia, map[string]interface{}{
		"age":              65,
		"familyHistory":    false,
		"smoking":          "never",
		"physicalActivity": "moderate",
	})
	assert.Equal(t, "low", res.Level.Label)
	assert.Equal(t, 5.0, res.Score)
	assert.Contains(t, res.Recommendations, lifestyleActivity)
}

func TestDementia_GeneticHighRisk(t *testing.T) {
	res := compute(t, ModuleDementia, map[string]interface{}{
		"age":           70,
		"familyHistory": true,
		"apoe4Copies":   2,
		"education":     "low",
	})
	assert.Equal(t, "high", res.Level.Label)
	assert.Equal(t, 97.5, res.RawScore)
	assert.Equal(t, 90.0, res.Score, "clamped to the module ceiling")

	var neuro bool
	for _, r := range res.Recommendations {
		if r == "Consider genetic counseling and a neurological consultation to discuss your APOE4 status." {
			neuro = true
		}
	}
	assert.True(t, neuro, "expected a genetic/neurological consultation, got %v", res.Recommendations)
	assert.Contains(t, res.Recommendations[0], "neurological consultation")
}

func TestDementia_RejectsFractionalAlleleCount(t *testing.T) {
	m, ok := DefaultRegistry().Get(ModuleDementia)
	require.True(t, ok)
	_, err := m.Extract(map[string]interface{}{"age": 70, "apoe4Copies": 1.5})
	var ve *scoring.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "apoe4Copies", ve.Field)
	assert.Equal(t, "not a whole number", ve.Reason)
}

func TestDiabetes_FractionScale(t *testing.T) {
	res := compute(t, ModuleDiabetes, map[string]interface{}{"age": 45, "bmi": 22})
	assert.Equal(t, scoring.ScaleFraction, res.Scale)
	assert.InDelta(t, 0.02, res.Score, 1e-9)
	assert.Equal(t, "low", res.Level.Label)
	assert.Equal(t, 2.0, res.DisplayPercentage())

	s := Summarize(res)
	assert.Equal(t, 0.02, s.Score)
	assert.Equal(t, 2.0, s.RiskPercentage)
}

func TestDiabetes_ScoreWithinRange(t *testing.T) {
	res := compute(t, ModuleDiabetes, map[string]interface{}{
		"age": 65, "bmi": 40, "familyHistory": true, "gestationalDiabetes": true,
		"highRiskEthnicity": true, "hba1c": 7, "fastingGlucose": 140,
	})
	assert.LessOrEqual(t, res.Score, res.Max)
	assert.GreaterOrEqual(t, res.Score, 0.0)
	assert.Equal(t, "high", res.Level.Label)
}

func TestCancer_SubTypesAndDiscrepancy(t *testing.T) {
	res := compute(t, ModuleCancer, map[string]interface{}{
		"age":                      60,
		"sex":                      "female",
		"familyHistoryBreast":      true,
		"brcaMutation":             true,
		"diet":                     "processed",
		"smoking":                  "current",
		"packYears":                30,
		"familyHistoryColorectal":  true,
		"inflammatoryBowelDisease": true,
		"sunExposure":              "high",
		"sunburnHistory":           true,
		"fairSkin":                 true,
	})
	require.Len(t, res.Breakdown, 4)
	assert.Equal(t, CancerBreast, res.Breakdown[0].SubType)
	assert.Equal(t, 40.0, res.Breakdown[0].Score)
	assert.Equal(t, 27.5, res.Breakdown[1].Score)
	assert.Equal(t, 70.0, res.Breakdown[2].RawScore)
	assert.Equal(t, 40.0, res.Breakdown[2].Score)
	assert.Equal(t, 14.0, res.Breakdown[3].Score)

	assert.Equal(t, 121.5, res.RawScore)
	assert.Equal(t, 100.0, res.Score)
	assert.Equal(t, "very-high", res.Level.Label)
	assert.NotEmpty(t, res.Discrepancy)
	assert.Contains(t, res.Recommendations, "Request a referral to a cancer genetics or oncology risk clinic.")
}

func TestCancer_ConsistentSumHasNoDiscrepancy(t *testing.T) {
	res := compute(t, ModuleCancer, map[string]interface{}{"age": 30, "sex": "female"})
	assert.Equal(t, 3.5, res.Score)
	assert.Empty(t, res.Discrepancy)
	assert.Equal(t, "low", res.Level.Label)
}

func TestCancer_RequiresSex(t *testing.T) {
	m, _ := DefaultRegistry().Get(ModuleCancer)
	_, err := m.Extract(map[string]interface{}{"age": 30})
	assert.True(t, scoring.IsValidation(err))
}

func TestAllModules_MinimalInput(t *testing.T) {
	inputs := map[string]map[string]interface{}{
		ModuleCardiovascular: {"age": 50, "sex": "female"},
		ModuleDiabetes:       {"age": 50, "bmi": 24},
		ModuleDementia:       {"age": 50},
		ModuleStroke:         {"age": 50},
		ModuleCancer:         {"age": 50, "sex": "male"},
	}
	for module, raw := range inputs {
		t.Run(module, func(t *testing.T) {
			res := compute(t, module, raw)
			assert.Equal(t, module, res.Module)
			assert.GreaterOrEqual(t, res.Score, 0.0)
			assert.LessOrEqual(t, res.Score, res.Max)
			assert.NotEmpty(t, res.Recommendations)
			assert.GreaterOrEqual(t, res.Percentile, 0.0)
			assert.LessOrEqual(t, res.Percentile, 100.0)
		})
	}
}

func TestNewRecord(t *testing.T) {
	res := compute(t, ModuleDiabetes, map[string]interface{}{"age": 45, "bmi": 22})
	m, _ := DefaultRegistry().Get(ModuleDiabetes)
	fs, _ := m.Extract(map[string]interface{}{"age": 45, "bmi": 22})

	rec, err := NewRecord("user-1", fs, res)
	require.NoError(t, err)
	assert.Equal(t, "user-1", rec.UserID)
	assert.Equal(t, ModuleDiabetes, rec.ModuleType)
	assert.Equal(t, 2.0, rec.RiskPercentage)
	assert.Equal(t, "low", rec.RiskLevel)
	assert.Contains(t, string(rec.InputSnapshot), `"age":45`)

	back, err := rec.Result()
	require.NoError(t, err)
	assert.Equal(t, res.Level, back.Level)
	assert.Equal(t, res.Recommendations, back.Recommendations)
}
