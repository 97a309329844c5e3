package readiness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehr/healthrisk/internal/platform/clock"
	"github.com/ehr/healthrisk/internal/platform/scoring"
)

func distressed(exp Experience, symptoms ...string) Questionnaire {
	return Questionnaire{
		FeelingNervous:     5,
		WorriedAboutHealth: 5,
		SleepQuality:       1,
		Symptoms:           symptoms,
		PreviousExperience: exp,
	}
}

var fullSupport = SupportChecklist{
	SupportPersonPresent: true,
	PrivateSetting:       true,
	TimeSetAside:         true,
	KnowsNextSteps:       true,
}

func TestNewState(t *testing.T) {
	s := NewState()
	assert.Equal(t, PhaseNotStarted, s.Phase())
	assert.Equal(t, TierUnknown, s.Tier)
	assert.False(t, s.Ready())
	require.Len(t, s.Steps, 4)
	assert.Equal(t, []string{StepAnxiety, StepStyle, StepRelaxation, StepSupport},
		[]string{s.Steps[0].ID, s.Steps[1].ID, s.Steps[2].ID, s.Steps[3].ID})
}

func TestAssessReadiness_HighAnxiety(t *testing.T) {
	es, eval, err := AssessReadiness(distressed(ExperienceNegative, "headache", "nausea", "insomnia"))
	require.NoError(t, err)
	assert.Equal(t, TierHigh, es.AnxietyTier)
	assert.Equal(t, 22, es.ReadinessScore)
	assert.Less(t, es.ReadinessScore, ReadyThreshold)
	assert.False(t, es.ReadyForResults)
	assert.False(t, eval.Ready)
	assert.Equal(t, StepRelaxation, eval.Remediation)
}

func TestAssessReadiness_PositiveExperience(t *testing.T) {
	es, eval, err := AssessReadiness(distressed(ExperiencePositive))
	require.NoError(t, err)
	assert.Equal(t, TierMedium, es.AnxietyTier)
	assert.Equal(t, 62, es.ReadinessScore)
	assert.GreaterOrEqual(t, es.ReadinessScore, ReadyThreshold)
	assert.False(t, eval.Ready, "style and support are still outstanding")
	assert.Equal(t, StepStyle, eval.Remediation)
}

func TestAssessReadiness_InvalidQuestionnaire(t *testing.T) {
	_, _, err := AssessReadiness(Questionnaire{FeelingNervous: 9, WorriedAboutHealth: 1, SleepQuality: 1})
	require.Error(t, err)
	assert.True(t, scoring.IsValidation(err))
}

func TestHighTierRequiresRelaxation(t *testing.T) {
	s, err := Apply(
		AnxietySubmitted{Questionnaire: distressed(ExperienceNegative, "headache", "nausea", "insomnia")},
		StyleChosen{Style: StyleStaged},
		SupportChecked{Checklist: fullSupport},
	)
	require.NoError(t, err)
	assert.False(t, s.Ready())
	assert.Equal(t, PhaseSupportChecked, s.Phase())

	ev := Evaluate(s)
	assert.Equal(t, StepRelaxation, ev.Remediation)
	require.Len(t, ev.Remaining, 1)
	assert.Equal(t, StepRelaxation, ev.Remaining[0].ID)

	s, err = Reduce(s, RelaxationCompleted{})
	require.NoError(t, err)
	assert.Equal(t, 62, s.Score())
	assert.True(t, s.Ready())
	assert.Equal(t, PhaseReady, s.Phase())
}

func TestLowTierDoesNotRequireRelaxation(t *testing.T) {
	s, err := Apply(
		AnxietySubmitted{Questionnaire: Questionnaire{FeelingNervous: 1, WorriedAboutHealth: 2, SleepQuality: 5}},
		StyleChosen{Style: StyleDirect},
		SupportChecked{Checklist: SupportChecklist{PrivateSetting: true}},
	)
	require.NoError(t, err)
	assert.Equal(t, TierLow, s.Tier)
	assert.True(t, s.Ready())
	assert.Empty(t, s.RemainingSteps())
}

func TestNotReadyBelowThreshold(t *testing.T) {
	s, err := Apply(
		AnxietySubmitted{Questionnaire: Questionnaire{FeelingNervous: 4, WorriedAboutHealth: 4, SleepQuality: 2, Symptoms: []string{"a", "b"}}},
		StyleChosen{Style: StyleGentle},
		SupportChecked{},
	)
	require.NoError(t, err)
	require.Equal(t, TierMedium, s.Tier)
	assert.True(t, s.PreparationComplete())
	assert.Equal(t, PhaseNotReady, s.Phase())
	ev := Evaluate(s)
	assert.False(t, ev.Ready)
	assert.Contains(t, ev.Reason, "below 60")
}

func TestResubmitKeepsBonuses(t *testing.T) {
	s, err := Apply(
		AnxietySubmitted{Questionnaire: distressed(ExperienceNegative, "a", "b", "c")},
		RelaxationCompleted{},
		SupportChecked{Checklist: fullSupport},
	)
	require.NoError(t, err)
	assert.Equal(t, 40, s.Bonus)

	s, err = Reduce(s, AnxietySubmitted{Questionnaire: distressed(ExperiencePositive)})
	require.NoError(t, err)
	assert.Equal(t, 62, s.BaseScore)
	assert.Equal(t, 100, s.Score())
	assert.Equal(t, TierMedium, s.Tier)
	assert.False(t, s.Steps[2].Required)
}

func TestSupportBonusNeverShrinks(t *testing.T) {
	s, err := Apply(
		AnxietySubmitted{Questionnaire: distressed(ExperienceNeutral)},
		SupportChecked{Checklist: fullSupport},
		SupportChecked{Checklist: SupportChecklist{PrivateSetting: true}},
	)
	require.NoError(t, err)
	assert.Equal(t, 20, s.Bonus)
	assert.Equal(t, 4, s.Support.Checked())
}

func TestScoreStaysInRange(t *testing.T) {
	events := []Event{
		AnxietySubmitted{Questionnaire: Questionnaire{FeelingNervous: 1, WorriedAboutHealth: 1, SleepQuality: 5, PreviousExperience: ExperiencePositive}},
		RelaxationCompleted{},
		RelaxationCompleted{},
		SupportChecked{Checklist: fullSupport},
		AnxietySubmitted{Questionnaire: distressed(ExperienceNegative, "a", "b", "c", "d", "e", "f")},
		RelaxationCompleted{},
	}
	s := NewState()
	for _, ev := range events {
		var err error
		s, err = Reduce(s, ev)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, s.Score(), 0)
		assert.LessOrEqual(t, s.Score(), 100)
	}

	worst, err := Apply(AnxietySubmitted{Questionnaire: distressed(ExperienceNegative, "a", "b", "c", "d", "e", "f")})
	require.NoError(t, err)
	assert.Equal(t, 0, worst.Score())
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := NewState()
	next, err := Reduce(s, AnxietySubmitted{Questionnaire: distressed(ExperienceNone)})
	require.NoError(t, err)
	assert.False(t, s.Steps[0].Completed)
	assert.True(t, next.Steps[0].Completed)
	assert.Nil(t, s.Questionnaire)
}

func TestReduceValidation(t *testing.T) {
	cases := map[string]Event{
		"nervous high":   AnxietySubmitted{Questionnaire: Questionnaire{FeelingNervous: 6, WorriedAboutHealth: 1, SleepQuality: 1}},
		"sleep zero":     AnxietySubmitted{Questionnaire: Questionnaire{FeelingNervous: 1, WorriedAboutHealth: 1, SleepQuality: 0}},
		"bad experience": AnxietySubmitted{Questionnaire: Questionnaire{FeelingNervous: 1, WorriedAboutHealth: 1, SleepQuality: 1, PreviousExperience: "awful"}},
		"bad style":      StyleChosen{Style: "abrupt"},
	}
	for name, ev := range cases {
		t.Run(name, func(t *testing.T) {
			s := NewState()
			next, err := Reduce(s, ev)
			require.Error(t, err)
			assert.True(t, scoring.IsValidation(err))
			assert.Equal(t, s.EventsApplied, next.EventsApplied)
		})
	}
}

func TestSymptomsDeduplicated(t *testing.T) {
	s, err := Apply(AnxietySubmitted{Questionnaire: Questionnaire{
		FeelingNervous: 1, WorriedAboutHealth: 1, SleepQuality: 5,
		Symptoms: []string{"Headache", "headache ", "", "nausea"},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"headache", "nausea"}, s.Questionnaire.Symptoms)
	assert.Equal(t, 90, s.BaseScore)
}

func TestPhaseProgression(t *testing.T) {
	s := NewState()
	var err error
	s, err = Reduce(s, AnxietySubmitted{Questionnaire: distressed(ExperiencePositive)})
	require.NoError(t, err)
	assert.Equal(t, PhaseAssessingAnxiety, s.Phase())
	s, err = Reduce(s, StyleChosen{Style: "Staged"})
	require.NoError(t, err)
	assert.Equal(t, StyleStaged, s.Style)
	assert.Equal(t, PhaseStyleChosen, s.Phase())
	s, err = Reduce(s, RelaxationCompleted{})
	require.NoError(t, err)
	assert.Equal(t, PhaseRelaxed, s.Phase())
	s, err = Reduce(s, SupportChecked{Checklist: fullSupport})
	require.NoError(t, err)
	assert.Equal(t, PhaseReady, s.Phase())
}

func TestRunRelaxation(t *testing.T) {
	clk := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ev, err := RunRelaxation(context.Background(), clk, 0)
	require.NoError(t, err)
	assert.Equal(t, "relaxation_completed", EventName(ev))
	assert.Equal(t, []time.Duration{DefaultRelaxationDuration}, clk.Waits())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ev, err = RunRelaxation(ctx, clk, time.Second)
	require.Error(t, err)
	assert.Nil(t, ev)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReduce_NilEventLeavesStateUnchanged(t *testing.T) {
	s := NewState()
	next, err := Reduce(s, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported event")
	assert.Equal(t, s.Score(), next.Score())
	assert.Equal(t, s.Phase(), next.Phase())
}
