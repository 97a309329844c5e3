package disclosure

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/ehr/healthrisk/internal/domain/readiness"
	"github.com/ehr/healthrisk/internal/platform/clock"
	"github.com/ehr/healthrisk/internal/platform/telemetry"
)

// ErrSessionNotFound is returned for unknown, expired or foreign sessions.
var ErrSessionNotFound = eris.New("session not found")

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 30 * time.Minute

type session struct {
	id        uuid.UUID
	userID    string
	state     readiness.State
	orch      *Orchestrator
	warnings  []string
	recordID  *uuid.UUID
	createdAt time.Time
	updatedAt time.Time
}

// DisclosureView describes a session's current orchestrator.
type DisclosureView struct {
	ID     uuid.UUID       `json:"id"`
	Style  readiness.Style `json:"style"`
	Status Status          `json:"status"`
	Stage  Stage           `json:"stage"`
}

// View is a read-only copy of a session.
type View struct {
	ID         uuid.UUID                   `json:"id"`
	UserID     string                      `json:"user_id"`
	Phase      readiness.Phase             `json:"phase"`
	Emotional  readiness.EmotionalState    `json:"emotional_state"`
	Evaluation readiness.Evaluation        `json:"evaluation"`
	Steps      []readiness.PreparationStep `json:"steps"`
	Disclosure *DisclosureView             `json:"disclosure,omitempty"`
	RecordID   *uuid.UUID                  `json:"record_id,omitempty"`
	Warnings   []string                    `json:"warnings,omitempty"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

// Manager keeps in-progress sessions in memory. Sessions are per process and
// are lost on restart; nothing partial is ever persisted.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session
	clock    clock.Clock
	cfg      Config
	ttl      time.Duration
	logger   zerolog.Logger
	metrics  *telemetry.Metrics
}

// NewManager creates a session manager. A non-positive ttl uses
// DefaultSessionTTL.
func NewManager(clk clock.Clock, cfg Config, ttl time.Duration, logger zerolog.Logger, metrics *telemetry.Metrics) *Manager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		sessions: make(map[uuid.UUID]*session),
		clock:    clk,
		cfg:      cfg,
		ttl:      ttl,
		logger:   logger,
		metrics:  metrics,
	}
}

// Create opens a new session for userID.
func (m *Manager) Create(userID string) View {
	now := m.clock.Now()
	s := &session{
		id:        uuid.New(),
		userID:    userID,
		state:     readiness.NewState(),
		createdAt: now,
		updatedAt: now,
	}
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	m.logger.Debug().Str("session_id", s.id.String()).Str("user_id", userID).Msg("session created")
	return s.view().render()
}

// Get returns a session owned by userID.
func (m *Manager) Get(id uuid.UUID, userID string) (View, error) {
	m.mu.Lock()
	s, err := m.lookup(id, userID)
	if err != nil {
		m.mu.Unlock()
		return View{}, err
	}
	v := s.view()
	m.mu.Unlock()
	return v.render(), nil
}

// Delete discards a session and cancels any running disclosure.
func (m *Manager) Delete(id uuid.UUID, userID string) error {
	m.mu.Lock()
	s, err := m.lookup(id, userID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	orch := s.orch
	delete(m.sessions, id)
	m.mu.Unlock()

	if orch != nil {
		orch.Cancel()
	}
	return nil
}

// Apply reduces ev into the session's readiness state.
func (m *Manager) Apply(id uuid.UUID, userID string, ev readiness.Event) (View, error) {
	m.mu.Lock()
	s, err := m.lookup(id, userID)
	if err != nil {
		m.mu.Unlock()
		return View{}, err
	}
	next, err := readiness.Reduce(s.state, ev)
	if err != nil {
		m.mu.Unlock()
		return View{}, err
	}
	s.state = next
	s.updatedAt = m.clock.Now()
	v := s.view()
	m.mu.Unlock()

	m.logger.Debug().Str("session_id", id.String()).Str("event", readiness.EventName(ev)).
		Int("readiness", next.Score()).Str("phase", string(next.Phase())).Msg("readiness event applied")
	return v.render(), nil
}

// StartDisclosure opens the readiness gate for the session and, when it
// passes, runs compute. A blocked or revealed orchestrator is replaced by a
// fresh one; an in-progress one is left alone. The manager lock is never held
// while compute runs, so a slow compute only delays its own session.
func (m *Manager) StartDisclosure(ctx context.Context, id uuid.UUID, userID string, compute ComputeFunc) (View, StartResult, error) {
	m.mu.Lock()
	s, err := m.lookup(id, userID)
	if err != nil {
		m.mu.Unlock()
		return View{}, StartResult{}, err
	}
	current := s.orch
	m.mu.Unlock()

	replace := current == nil
	if current != nil {
		// A blocked run has computed nothing, so it picks up the current style.
		st, _ := current.Snapshot()
		replace = st == StatusRevealed || st == StatusBlocked
	}

	m.mu.Lock()
	s, err = m.lookup(id, userID)
	if err != nil {
		m.mu.Unlock()
		return View{}, StartResult{}, err
	}
	if replace && s.orch == current {
		s.orch = New(s.state.Style, m.cfg, m.clock, m.metrics)
	}
	orch := s.orch
	state := s.state
	m.mu.Unlock()

	res, err := orch.Start(ctx, state, compute)
	if err != nil {
		return View{}, StartResult{}, err
	}

	m.mu.Lock()
	s.updatedAt = m.clock.Now()
	v := s.view()
	m.mu.Unlock()
	return v.render(), res, nil
}

// RecordOutcome attaches the stored record id and warnings of the computed
// result to the session.
func (m *Manager) RecordOutcome(id uuid.UUID, recordID *uuid.UUID, warnings []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.recordID = recordID
		s.warnings = append([]string(nil), warnings...)
	}
}

// Advance moves the session's disclosure forward at the current time.
func (m *Manager) Advance(id uuid.UUID, userID string) (Step, error) {
	m.mu.Lock()
	s, err := m.lookup(id, userID)
	if err != nil {
		m.mu.Unlock()
		return Step{}, err
	}
	orch := s.orch
	s.updatedAt = m.clock.Now()
	m.mu.Unlock()
	if orch == nil {
		return Step{}, ErrNotStarted
	}
	return orch.Advance(m.clock.Now())
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed.
func (m *Manager) Sweep() int {
	cutoff := m.clock.Now().Add(-m.ttl)
	var expired []*Orchestrator
	m.mu.Lock()
	n := 0
	for id, s := range m.sessions {
		if s.updatedAt.Before(cutoff) {
			if s.orch != nil {
				expired = append(expired, s.orch)
			}
			delete(m.sessions, id)
			n++
		}
	}
	m.mu.Unlock()

	for _, o := range expired {
		o.Cancel()
	}
	if n > 0 {
		m.logger.Info().Int("expired", n).Msg("idle sessions swept")
	}
	return n
}

// RunSweeper sweeps every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, sched clock.Scheduler, interval time.Duration) {
	for {
		if err := sched.Wait(ctx, interval); err != nil {
			return
		}
		m.Sweep()
	}
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) lookup(id uuid.UUID, userID string) (*session, error) {
	s, ok := m.sessions[id]
	if !ok || s.userID != userID {
		return nil, ErrSessionNotFound
	}
	if m.clock.Now().Sub(s.updatedAt) > m.ttl {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// sessionView is a copy of a session taken under the manager lock. The
// orchestrator is only read by render, after the lock is released.
type sessionView struct {
	View
	orch *Orchestrator
}

func (s *session) view() sessionView {
	return sessionView{
		View: View{
			ID:         s.id,
			UserID:     s.userID,
			Phase:      s.state.Phase(),
			Emotional:  s.state.Emotional(),
			Evaluation: readiness.Evaluate(s.state),
			Steps:      append([]readiness.PreparationStep(nil), s.state.Steps...),
			RecordID:   s.recordID,
			Warnings:   append([]string(nil), s.warnings...),
			CreatedAt:  s.createdAt,
			UpdatedAt:  s.updatedAt,
		},
		orch: s.orch,
	}
}

func (sv sessionView) render() View {
	v := sv.View
	if sv.orch != nil {
		st, stage := sv.orch.Snapshot()
		v.Disclosure = &DisclosureView{ID: sv.orch.ID(), Style: sv.orch.Style(), Status: st, Stage: stage}
	}
	return v
}
