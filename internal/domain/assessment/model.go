package assessment

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/healthrisk/internal/platform/scoring"
)

// Record maps to the assessment_results table. Rows are append-only: a new
// assessment always inserts, never updates.
type Record struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	UserID          string          `db:"user_id" json:"user_id"`
	ModuleType      string          `db:"module_type" json:"module_type"`
	InputSnapshot   json.RawMessage `db:"input_snapshot" json:"input"`
	ResultSnapshot  json.RawMessage `db:"result_snapshot" json:"result"`
	RiskPercentage  float64         `db:"risk_percentage" json:"risk_percentage"`
	RiskLevel       string          `db:"risk_level" json:"risk_level"`
	Recommendations []string        `db:"recommendations" json:"recommendations"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// NewRecord snapshots a computed result for persistence. The risk percentage
// is rounded to one decimal here, at the storage boundary.
func NewRecord(userID string, fs scoring.FactorSet, res *scoring.AssessmentResult) (*Record, error) {
	input, err := json.Marshal(fs)
	if err != nil {
		return nil, err
	}
	result, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	recs := make([]string, len(res.Recommendations))
	copy(recs, res.Recommendations)
	return &Record{
		UserID:          userID,
		ModuleType:      res.Module,
		InputSnapshot:   input,
		ResultSnapshot:  result,
		RiskPercentage:  res.DisplayPercentage(),
		RiskLevel:       res.Level.Label,
		Recommendations: recs,
	}, nil
}

// Result decodes the stored result snapshot.
func (r *Record) Result() (*scoring.AssessmentResult, error) {
	var res scoring.AssessmentResult
	if err := json.Unmarshal(r.ResultSnapshot, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Outcome is what one assessment call returns: the result always, and the
// stored record id when persistence succeeded.
type Outcome struct {
	Module   string                    `json:"module"`
	Factors  scoring.FactorSet         `json:"factors"`
	Result   *scoring.AssessmentResult `json:"result"`
	RecordID *uuid.UUID                `json:"record_id,omitempty"`
	Warnings []string                  `json:"warnings,omitempty"`
	// PersistErr is the non-fatal storage failure, if any.
	PersistErr error `json:"-"`
}

// Summary is the presentation view of a result with rounded figures.
type Summary struct {
	Module          string   `json:"module"`
	RiskPercentage  float64  `json:"risk_percentage"`
	Score           float64  `json:"score"`
	Level           string   `json:"level"`
	Percentile      float64  `json:"percentile"`
	Recommendations []string `json:"recommendations"`
}

// Summarize rounds a result for display.
func Summarize(res *scoring.AssessmentResult) Summary {
	score := scoring.Round1(res.Score)
	if res.Scale == scoring.ScaleFraction {
		score = math.Round(res.Score*1000) / 1000
	}
	return Summary{
		Module:          res.Module,
		RiskPercentage:  res.DisplayPercentage(),
		Score:           score,
		Level:           res.Level.Label,
		Percentile:      scoring.Round1(res.Percentile),
		Recommendations: res.Recommendations,
	}
}
