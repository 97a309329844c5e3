package disclosure

import (
	"fmt"

	"github.com/ehr/healthrisk/internal/domain/readiness"
	"github.com/ehr/healthrisk/internal/platform/scoring"
)

// Stage is the cursor into the fixed reveal sequence. Zero means nothing has
// been revealed yet.
type Stage int

const (
	StageNone Stage = iota
	StagePriming
	StageMethodology
	StageHeadline
	StageBreakdown
	StageNextActions
)

// StageCount is the length of the staged sequence.
const StageCount = int(StageNextActions)

var stageNames = [...]string{"none", "priming", "methodology", "headline", "breakdown", "next_actions"}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// StageContent is the payload revealed at one stage. A single reveal fills
// every section at once.
type StageContent struct {
	Stage           Stage                          `json:"stage"`
	Name            string                         `json:"name"`
	Title           string                         `json:"title"`
	Message         string                         `json:"message"`
	RiskPercentage  *float64                       `json:"risk_percentage,omitempty"`
	Level           string                         `json:"level,omitempty"`
	Percentile      *float64                       `json:"percentile,omitempty"`
	Breakdown       []scoring.Breakdown            `json:"breakdown,omitempty"`
	Contributions   []scoring.WeightedContribution `json:"contributions,omitempty"`
	Recommendations []string                       `json:"recommendations,omitempty"`
	Notes           []string                       `json:"notes,omitempty"`
}

func contentFor(stage Stage, style readiness.Style, res *scoring.AssessmentResult) StageContent {
	c := StageContent{Stage: stage, Name: stage.String()}
	switch stage {
	case StagePriming:
		c.Title = "Before you see your result"
		c.Message = "Take a moment. This is an estimate of risk, not a diagnosis, and many of the factors behind it can change."
	case StageMethodology:
		c.Title = "How this estimate works"
		c.Message = fmt.Sprintf(
			"Your answers were combined into a single score between %.0f%% and %.0f%% using %d weighted factors.",
			res.Min, percentMax(res), len(res.Contributions))
	case StageHeadline:
		pct := res.DisplayPercentage()
		pctl := scoring.Round1(res.Percentile)
		c.Title = "Your result"
		c.RiskPercentage = &pct
		c.Percentile = &pctl
		c.Level = res.Level.Label
		c.Message = headline(style, res)
		if res.Discrepancy != "" {
			c.Notes = append(c.Notes, res.Discrepancy)
		}
	case StageBreakdown:
		c.Title = "What contributed"
		c.Message = "These are the factors that raised or lowered your estimate, in the order they were applied."
		c.Breakdown = res.Breakdown
		c.Contributions = res.Contributions
	case StageNextActions:
		c.Title = "What you can do next"
		c.Message = "These steps are matched to your result."
		c.Recommendations = res.Recommendations
	}
	return c
}

// fullReveal packs every section into one payload.
func fullReveal(style readiness.Style, res *scoring.AssessmentResult) StageContent {
	head := contentFor(StageHeadline, style, res)
	return StageContent{
		Stage:           StageNextActions,
		Name:            "full",
		Title:           head.Title,
		Message:         head.Message,
		RiskPercentage:  head.RiskPercentage,
		Level:           head.Level,
		Percentile:      head.Percentile,
		Breakdown:       res.Breakdown,
		Contributions:   res.Contributions,
		Recommendations: res.Recommendations,
		Notes:           head.Notes,
	}
}

func headline(style readiness.Style, res *scoring.AssessmentResult) string {
	pct := res.DisplayPercentage()
	if style == readiness.StyleGentle {
		if res.Level.Rank == 0 {
			return fmt.Sprintf("Good news: your estimated risk is %.1f%%, which falls in the %s range.", pct, res.Level.Label)
		}
		return fmt.Sprintf(
			"Your estimated risk is %.1f%% (%s). This is a starting point for a conversation, and there are practical steps that can help.",
			pct, res.Level.Label)
	}
	return fmt.Sprintf("Your estimated risk is %.1f%%, classified as %s. You scored higher than %.0f%% of the reference population.",
		pct, res.Level.Label, res.Percentile)
}

func percentMax(res *scoring.AssessmentResult) float64 {
	if res.Scale == scoring.ScaleFraction {
		return res.Max * 100
	}
	return res.Max
}
