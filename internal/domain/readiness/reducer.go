package readiness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ehr/healthrisk/internal/platform/scoring"
)

// Score weights. Base readiness starts at 100 and loses points per unit of
// distress; prior experience shifts it once.
const (
	nervousPenalty   = 5
	worriedPenalty   = 4
	sleepPenalty     = 3
	symptomPenalty   = 5
	maxScoredSymptom = 4

	positiveExperienceBonus   = 10
	negativeExperiencePenalty = 15

	relaxationBonus       = 20
	repeatRelaxationBonus = 5
	supportItemBonus      = 5

	highTierIndex   = 16
	mediumTierIndex = 10
)

// State is the full readiness state of one session. The zero value is not
// usable; start from NewState.
type State struct {
	Questionnaire *Questionnaire    `json:"questionnaire,omitempty"`
	Style         Style             `json:"style,omitempty"`
	Tier          AnxietyTier       `json:"anxiety_tier"`
	BaseScore     int               `json:"base_score"`
	Bonus         int               `json:"bonus"`
	Relaxations   int               `json:"relaxations"`
	Support       *SupportChecklist `json:"support,omitempty"`
	Steps         []PreparationStep `json:"steps"`
	EventsApplied int               `json:"events_applied"`
}

// NewState returns a session with the fixed step sequence and nothing done.
func NewState() State {
	return State{Tier: TierUnknown, Steps: defaultSteps()}
}

// Reduce applies ev to s and returns the next state. s is not modified. An
// invalid event returns s unchanged with a *scoring.ValidationError.
func Reduce(s State, ev Event) (State, error) {
	next := s.clone()
	switch e := ev.(type) {
	case AnxietySubmitted:
		q, err := normalize(e.Questionnaire)
		if err != nil {
			return s, err
		}
		next.Questionnaire = &q
		next.BaseScore = baseScore(q)
		next.Tier = tierFor(anxietyIndex(q))
		next.setRequired(StepRelaxation, next.Tier == TierHigh)
		next.complete(StepAnxiety)
	case StyleChosen:
		st, ok := ParseStyle(strings.ToLower(string(e.Style)))
		if !ok {
			return s, &scoring.ValidationError{
				Field: "style", Reason: "unknown disclosure style", Value: e.Style,
				Bound: "one of [direct gentle staged]",
			}
		}
		next.Style = st
		next.complete(StepStyle)
	case RelaxationCompleted:
		if next.Relaxations == 0 {
			next.Bonus += relaxationBonus
		} else {
			next.Bonus += repeatRelaxationBonus
		}
		next.Relaxations++
		next.complete(StepRelaxation)
	case SupportChecked:
		prev := 0
		if next.Support != nil {
			prev = next.Support.Checked()
		}
		cl := e.Checklist
		// Support bonus only grows; unticking an item keeps the earlier credit.
		if n := cl.Checked(); n > prev {
			next.Bonus += (n - prev) * supportItemBonus
		} else if n < prev {
			cl = *next.Support
		}
		next.Support = &cl
		next.complete(StepSupport)
	default:
		return s, eris.Errorf("readiness: unsupported event %T", ev)
	}
	next.EventsApplied++
	return next, nil
}

// Apply folds events over a fresh state, stopping at the first invalid one.
func Apply(events ...Event) (State, error) {
	s := NewState()
	for _, ev := range events {
		var err error
		if s, err = Reduce(s, ev); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Score is the readiness score, always within [0,100].
func (s State) Score() int {
	if s.Questionnaire == nil {
		return clampScore(s.Bonus)
	}
	return clampScore(s.BaseScore + s.Bonus)
}

// RemainingSteps lists required steps not yet completed, in order.
func (s State) RemainingSteps() []PreparationStep {
	var out []PreparationStep
	for _, st := range s.Steps {
		if st.Required && !st.Completed {
			out = append(out, st)
		}
	}
	return out
}

// PreparationComplete reports whether every required step is done.
func (s State) PreparationComplete() bool {
	return s.Questionnaire != nil && len(s.RemainingSteps()) == 0
}

// Ready is the disclosure gate: all required steps complete and score at or
// above ReadyThreshold.
func (s State) Ready() bool {
	return s.PreparationComplete() && s.Score() >= ReadyThreshold
}

// Phase derives the flow position from s.
func (s State) Phase() Phase {
	switch {
	case s.Questionnaire == nil && s.EventsApplied == 0:
		return PhaseNotStarted
	case s.Questionnaire == nil || s.Style == "":
		return PhaseAssessingAnxiety
	case s.Support == nil && s.Relaxations > 0:
		return PhaseRelaxed
	case s.Support == nil:
		return PhaseStyleChosen
	case !s.PreparationComplete():
		return PhaseSupportChecked
	case s.Ready():
		return PhaseReady
	default:
		return PhaseNotReady
	}
}

// Emotional summarises s for callers.
func (s State) Emotional() EmotionalState {
	return EmotionalState{
		AnxietyTier:         s.Tier,
		ReadinessScore:      s.Score(),
		ReadyForResults:     s.Ready(),
		PreferredStyle:      s.Style,
		PreparationComplete: s.PreparationComplete(),
	}
}

// Evaluation is the outcome of checking the readiness gate. A negative outcome
// is a normal result, not an error.
type Evaluation struct {
	Ready       bool              `json:"ready"`
	Phase       Phase             `json:"phase"`
	Score       int               `json:"readiness_score"`
	Tier        AnxietyTier       `json:"anxiety_tier"`
	Remaining   []PreparationStep `json:"remaining_steps,omitempty"`
	Remediation string            `json:"remediation,omitempty"`
	Reason      string            `json:"reason,omitempty"`
}

// Evaluate checks the gate. When the tier is high and the score falls short,
// the only remediation offered is another relaxation exercise.
func Evaluate(s State) Evaluation {
	ev := Evaluation{
		Ready:     s.Ready(),
		Phase:     s.Phase(),
		Score:     s.Score(),
		Tier:      s.Tier,
		Remaining: s.RemainingSteps(),
	}
	if ev.Ready {
		return ev
	}
	switch {
	case s.Tier == TierHigh && (s.Relaxations == 0 || ev.Score < ReadyThreshold):
		ev.Remediation = StepRelaxation
		ev.Reason = "complete a relaxation exercise before continuing"
	case len(ev.Remaining) > 0:
		ev.Remediation = ev.Remaining[0].ID
		ev.Reason = fmt.Sprintf("%d required preparation step(s) remaining", len(ev.Remaining))
	default:
		ev.Reason = fmt.Sprintf("readiness score %d is below %d", ev.Score, ReadyThreshold)
	}
	return ev
}

// AssessReadiness scores a questionnaire on its own, with no other steps
// done. The evaluation lists the steps still needed before disclosure.
func AssessReadiness(q Questionnaire) (EmotionalState, Evaluation, error) {
	s, err := Reduce(NewState(), AnxietySubmitted{Questionnaire: q})
	if err != nil {
		return EmotionalState{}, Evaluation{}, err
	}
	return s.Emotional(), Evaluate(s), nil
}

func (s State) clone() State {
	next := s
	next.Steps = make([]PreparationStep, len(s.Steps))
	copy(next.Steps, s.Steps)
	if s.Questionnaire != nil {
		q := *s.Questionnaire
		q.Symptoms = append([]string(nil), s.Questionnaire.Symptoms...)
		next.Questionnaire = &q
	}
	if s.Support != nil {
		cl := *s.Support
		next.Support = &cl
	}
	return next
}

func (s *State) complete(id string) {
	for i := range s.Steps {
		if s.Steps[i].ID == id {
			s.Steps[i].Completed = true
		}
	}
}

func (s *State) setRequired(id string, required bool) {
	for i := range s.Steps {
		if s.Steps[i].ID == id {
			s.Steps[i].Required = required
		}
	}
}

func normalize(q Questionnaire) (Questionnaire, error) {
	for _, f := range []struct {
		name string
		v    int
	}{
		{"feeling_nervous", q.FeelingNervous},
		{"worried_about_health", q.WorriedAboutHealth},
		{"sleep_quality", q.SleepQuality},
	} {
		if f.v < 1 || f.v > 5 {
			return q, &scoring.ValidationError{Field: f.name, Reason: "out of range", Value: f.v, Bound: "between 1 and 5"}
		}
	}

	exp := Experience(strings.ToLower(strings.TrimSpace(string(q.PreviousExperience))))
	if exp == "" {
		exp = ExperienceNone
	}
	switch exp {
	case ExperienceNone, ExperiencePositive, ExperienceNeutral, ExperienceNegative:
	default:
		return q, &scoring.ValidationError{
			Field: "previous_experience", Reason: "unknown value", Value: q.PreviousExperience,
			Bound: "one of [negative neutral none positive]",
		}
	}
	q.PreviousExperience = exp

	seen := make(map[string]bool, len(q.Symptoms))
	var symptoms []string
	for _, sym := range q.Symptoms {
		sym = strings.ToLower(strings.TrimSpace(sym))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		symptoms = append(symptoms, sym)
	}
	sort.Strings(symptoms)
	q.Symptoms = symptoms
	return q, nil
}

func baseScore(q Questionnaire) int {
	score := 100
	score -= nervousPenalty * (q.FeelingNervous - 1)
	score -= worriedPenalty * (q.WorriedAboutHealth - 1)
	score -= sleepPenalty * (5 - q.SleepQuality)
	score -= symptomPenalty * min(len(q.Symptoms), maxScoredSymptom)
	switch q.PreviousExperience {
	case ExperiencePositive:
		score += positiveExperienceBonus
	case ExperienceNegative:
		score -= negativeExperiencePenalty
	}
	return clampScore(score)
}

func anxietyIndex(q Questionnaire) int {
	idx := q.FeelingNervous + q.WorriedAboutHealth + (6 - q.SleepQuality) + min(len(q.Symptoms), 5)
	switch q.PreviousExperience {
	case ExperienceNegative:
		idx += 3
	case ExperiencePositive:
		idx -= 2
	}
	return idx
}

func tierFor(idx int) AnxietyTier {
	switch {
	case idx >= highTierIndex:
		return TierHigh
	case idx >= mediumTierIndex:
		return TierMedium
	default:
		return TierLow
	}
}

func clampScore(v int) int {
	return max(0, min(100, v))
}
