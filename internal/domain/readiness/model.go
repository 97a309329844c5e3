// Package readiness scores how prepared a person feels to receive a risk
// result. State changes only through Reduce over a closed set of events, so
// every derived fact (phase, readiness, remaining steps) is a pure function of
// State.
package readiness

import "time"

// ReadyThreshold is the minimum readiness score for disclosure.
const ReadyThreshold = 60

// AnxietyTier buckets the anxiety index.
type AnxietyTier string

const (
	TierUnknown AnxietyTier = "unknown"
	TierLow     AnxietyTier = "low"
	TierMedium  AnxietyTier = "medium"
	TierHigh    AnxietyTier = "high"
)

// Style is how results should be disclosed.
type Style string

const (
	StyleDirect Style = "direct"
	StyleGentle Style = "gentle"
	StyleStaged Style = "staged"
)

// ParseStyle validates a disclosure style.
func ParseStyle(s string) (Style, bool) {
	switch Style(s) {
	case StyleDirect, StyleGentle, StyleStaged:
		return Style(s), true
	}
	return "", false
}

// Experience is how previous health results were received.
type Experience string

const (
	ExperienceNone     Experience = "none"
	ExperiencePositive Experience = "positive"
	ExperienceNeutral  Experience = "neutral"
	ExperienceNegative Experience = "negative"
)

// Questionnaire is the anxiety self-report. Scales run 1 (not at all) to 5
// (extremely); SleepQuality runs 1 (poor) to 5 (excellent).
type Questionnaire struct {
	FeelingNervous     int        `json:"feeling_nervous"`
	WorriedAboutHealth int        `json:"worried_about_health"`
	SleepQuality       int        `json:"sleep_quality"`
	Symptoms           []string   `json:"symptoms"`
	PreviousExperience Experience `json:"previous_experience"`
}

// SupportChecklist records the support in place before disclosure.
type SupportChecklist struct {
	SupportPersonPresent bool `json:"support_person_present"`
	PrivateSetting       bool `json:"private_setting"`
	TimeSetAside         bool `json:"time_set_aside"`
	KnowsNextSteps       bool `json:"knows_next_steps"`
}

// Checked counts ticked items.
func (c SupportChecklist) Checked() int {
	n := 0
	for _, b := range []bool{c.SupportPersonPresent, c.PrivateSetting, c.TimeSetAside, c.KnowsNextSteps} {
		if b {
			n++
		}
	}
	return n
}

// Step ids, in their fixed order.
const (
	StepAnxiety    = "anxiety-assessment"
	StepStyle      = "disclosure-style"
	StepRelaxation = "relaxation-exercise"
	StepSupport    = "support-check"
)

// PreparationStep is one item of the fixed preparation sequence.
type PreparationStep struct {
	ID                string        `json:"id"`
	Title             string        `json:"title"`
	Completed         bool          `json:"completed"`
	Required          bool          `json:"required"`
	EstimatedDuration time.Duration `json:"estimated_duration"`
}

func defaultSteps() []PreparationStep {
	return []PreparationStep{
		{ID: StepAnxiety, Title: "How are you feeling?", Required: true, EstimatedDuration: 3 * time.Minute},
		{ID: StepStyle, Title: "Choose how to see your results", Required: true, EstimatedDuration: time.Minute},
		{ID: StepRelaxation, Title: "Breathing exercise", Required: false, EstimatedDuration: 5 * time.Minute},
		{ID: StepSupport, Title: "Check your support", Required: true, EstimatedDuration: 2 * time.Minute},
	}
}

// EmotionalState is the caller-facing summary of a session's readiness.
type EmotionalState struct {
	AnxietyTier         AnxietyTier `json:"anxiety_tier"`
	ReadinessScore      int         `json:"readiness_score"`
	ReadyForResults     bool        `json:"ready_for_results"`
	PreferredStyle      Style       `json:"preferred_style,omitempty"`
	PreparationComplete bool        `json:"preparation_complete"`
}

// Phase is the derived position in the preparation flow.
type Phase string

const (
	PhaseNotStarted       Phase = "not_started"
	PhaseAssessingAnxiety Phase = "assessing_anxiety"
	PhaseStyleChosen      Phase = "style_chosen"
	PhaseRelaxed          Phase = "relaxed"
	PhaseSupportChecked   Phase = "support_checked"
	PhaseReady            Phase = "ready"
	PhaseNotReady         Phase = "not_ready"
)

// Event is one user action. The set is closed: only this package's types
// implement it.
type Event interface {
	eventName() string
}

// AnxietySubmitted carries a (re)submitted questionnaire.
type AnxietySubmitted struct {
	Questionnaire Questionnaire
}

// StyleChosen carries the preferred disclosure style.
type StyleChosen struct {
	Style Style
}

// RelaxationCompleted marks the breathing exercise as done.
type RelaxationCompleted struct{}

// SupportChecked carries the support checklist.
type SupportChecked struct {
	Checklist SupportChecklist
}

func (AnxietySubmitted) eventName() string    { return "anxiety_submitted" }
func (StyleChosen) eventName() string         { return "style_chosen" }
func (RelaxationCompleted) eventName() string { return "relaxation_completed" }
func (SupportChecked) eventName() string      { return "support_checked" }

// EventName returns the wire name of ev.
func EventName(ev Event) string { return ev.eventName() }
