// Package disclosure sequences how a computed risk result is revealed. An
// Orchestrator refuses to compute until readiness is met, then reveals the
// result either at once or through five timed, irreversible stages.
package disclosure

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/ehr/healthrisk/internal/domain/readiness"
	"github.com/ehr/healthrisk/internal/platform/clock"
	"github.com/ehr/healthrisk/internal/platform/scoring"
	"github.com/ehr/healthrisk/internal/platform/telemetry"
)

// Status is the orchestrator's top-level state.
type Status string

const (
	StatusBlocked   Status = "blocked"
	StatusComputing Status = "computing"
	StatusRevealing Status = "revealing"
	StatusRevealed  Status = "revealed"
)

var (
	// ErrNotStarted is returned by Advance before a result has been computed.
	ErrNotStarted = eris.New("disclosure has not started")
	// ErrAlreadyStarted is returned by Start once computation has run.
	ErrAlreadyStarted = eris.New("disclosure already started; begin a new one instead")
	// ErrCancelled is returned by every call after Cancel.
	ErrCancelled = eris.New("disclosure cancelled")
)

// Config holds the minimum dwell for each stage of a staged reveal.
type Config struct {
	Dwell [StageCount]time.Duration
}

// DefaultConfig returns the standard dwell times.
func DefaultConfig() Config {
	return Config{Dwell: [StageCount]time.Duration{
		3 * time.Second,
		5 * time.Second,
		8 * time.Second,
		8 * time.Second,
		5 * time.Second,
	}}
}

// ComputeFunc produces the result to disclose. It only runs once readiness
// is met.
type ComputeFunc func(ctx context.Context) (*scoring.AssessmentResult, error)

// StartResult reports whether the readiness gate opened. When it did not,
// NotMet explains what remains; this is a normal outcome, not an error.
type StartResult struct {
	Status Status                    `json:"status"`
	NotMet *readiness.Evaluation     `json:"readiness_not_met,omitempty"`
	Result *scoring.AssessmentResult `json:"-"`
}

// Step is the outcome of one Advance call. When NotYet is set the stage did
// not move and ReadyAt says when it may.
type Step struct {
	Status  Status        `json:"status"`
	Stage   Stage         `json:"stage"`
	Content *StageContent `json:"content,omitempty"`
	NotYet  bool          `json:"not_yet,omitempty"`
	ReadyAt *time.Time    `json:"ready_at,omitempty"`
}

// Orchestrator is one disclosure run. It is safe for concurrent use; once
// Revealed or cancelled it never changes again.
type Orchestrator struct {
	mu        sync.Mutex
	id        uuid.UUID
	style     readiness.Style
	cfg       Config
	clock     clock.Clock
	metrics   *telemetry.Metrics
	status    Status
	stage     Stage
	stageAt   time.Time
	result    *scoring.AssessmentResult
	cancelled bool
}

// New creates a Blocked orchestrator for style. An empty style reveals
// directly.
func New(style readiness.Style, cfg Config, clk clock.Clock, metrics *telemetry.Metrics) *Orchestrator {
	if style == "" {
		style = readiness.StyleDirect
	}
	return &Orchestrator{
		id:      uuid.New(),
		style:   style,
		cfg:     cfg,
		clock:   clk,
		metrics: metrics,
		status:  StatusBlocked,
	}
}

// ID identifies this run.
func (o *Orchestrator) ID() uuid.UUID { return o.id }

// Style is the reveal style chosen at creation.
func (o *Orchestrator) Style() readiness.Style { return o.style }

// Snapshot returns the current status and stage.
func (o *Orchestrator) Snapshot() (Status, Stage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status, o.stage
}

// Result returns the computed result, or nil until compute has finished.
func (o *Orchestrator) Result() *scoring.AssessmentResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// Start evaluates the readiness gate on state and, only if it is open, runs
// compute and moves to Computing. compute runs without the orchestrator lock
// held; a concurrent Start while it is in flight gets ErrAlreadyStarted. A
// compute error returns the orchestrator to Blocked with no partial result.
func (o *Orchestrator) Start(ctx context.Context, state readiness.State, compute ComputeFunc) (StartResult, error) {
	o.mu.Lock()
	if o.cancelled {
		o.mu.Unlock()
		return StartResult{}, ErrCancelled
	}
	if o.status != StatusBlocked {
		o.mu.Unlock()
		return StartResult{}, ErrAlreadyStarted
	}
	eval := readiness.Evaluate(state)
	if !eval.Ready {
		o.mu.Unlock()
		o.metrics.ReadinessEvaluated("not_met")
		return StartResult{Status: StatusBlocked, NotMet: &eval}, nil
	}
	o.status = StatusComputing
	o.mu.Unlock()
	o.metrics.ReadinessEvaluated("ready")

	res, err := compute(ctx)
	if err == nil && res == nil {
		err = &scoring.InvariantViolation{Module: "disclosure", Detail: "compute returned no result"}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.status = StatusBlocked
		if scoring.IsInvariantViolation(err) {
			return StartResult{}, err
		}
		return StartResult{}, eris.Wrap(err, "compute result for disclosure")
	}
	if o.cancelled {
		return StartResult{}, ErrCancelled
	}
	o.result = res
	o.metrics.DisclosureTransition(string(o.style), string(StatusComputing))
	return StartResult{Status: StatusComputing, Result: res}, nil
}

// Advance moves the reveal forward if allowed at now. Direct and gentle runs
// go from Computing straight to Revealed. Staged runs move one stage per call
// after each stage's dwell, and reach Revealed after the last. Calling Advance
// when Revealed returns the terminal step again.
func (o *Orchestrator) Advance(now time.Time) (Step, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancelled {
		return Step{}, ErrCancelled
	}

	switch o.status {
	case StatusBlocked:
		return Step{}, ErrNotStarted
	case StatusRevealed:
		return Step{Status: StatusRevealed, Stage: o.stage}, nil
	case StatusComputing:
		if o.result == nil {
			return Step{}, ErrNotStarted
		}
		if o.style != readiness.StyleStaged {
			o.status = StatusRevealed
			o.stage = StageNextActions
			c := fullReveal(o.style, o.result)
			o.metrics.DisclosureTransition(string(o.style), string(StatusRevealed))
			return Step{Status: StatusRevealed, Stage: o.stage, Content: &c}, nil
		}
		return o.enter(StagePriming, now), nil
	}

	readyAt := o.stageAt.Add(o.cfg.Dwell[o.stage-1])
	if now.Before(readyAt) {
		return Step{Status: o.status, Stage: o.stage, NotYet: true, ReadyAt: &readyAt}, nil
	}
	if o.stage == StageNextActions {
		o.status = StatusRevealed
		o.metrics.DisclosureTransition(string(o.style), string(StatusRevealed))
		return Step{Status: StatusRevealed, Stage: o.stage}, nil
	}
	return o.enter(o.stage+1, now), nil
}

func (o *Orchestrator) enter(stage Stage, now time.Time) Step {
	o.status = StatusRevealing
	o.stage = stage
	o.stageAt = now
	o.metrics.DisclosureTransition(string(o.style), stage.String())
	c := contentFor(stage, o.style, o.result)
	return Step{Status: StatusRevealing, Stage: stage, Content: &c}
}

// Cancel abandons the run. Nothing was persisted by the orchestrator, so
// there is nothing to undo.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	o.cancelled = true
	o.mu.Unlock()
}

// Run drives the reveal to completion, waiting out each dwell on sched and
// passing every revealed step to emit. Cancelling ctx cancels the run.
func (o *Orchestrator) Run(ctx context.Context, sched clock.Scheduler, emit func(Step)) error {
	for {
		step, err := o.Advance(o.clock.Now())
		if err != nil {
			return err
		}
		if step.NotYet {
			if err := sched.Wait(ctx, step.ReadyAt.Sub(o.clock.Now())); err != nil {
				o.Cancel()
				return eris.Wrap(err, "disclosure interrupted")
			}
			continue
		}
		if emit != nil {
			emit(step)
		}
		if step.Status == StatusRevealed {
			return nil
		}
	}
}
