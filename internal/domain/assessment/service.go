package assessment

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ehr/healthrisk/internal/platform/scoring"
	"github.com/ehr/healthrisk/internal/platform/telemetry"
)

// ErrUnknownModule is returned for a module tag outside the fixed enumeration.
var ErrUnknownModule = eris.New("unknown assessment module")

// ErrNoIdentity is the persistence precondition failure when no user id is
// available. Computation does not require an identity.
var ErrNoIdentity = eris.New("no user identity; result not saved")

// Service runs assessments and stores their results.
type Service struct {
	registry *scoring.Registry
	repo     Repository
	logger   zerolog.Logger
	metrics  *telemetry.Metrics
}

// NewService creates an assessment service. repo may be nil for offline use,
// in which case results are computed but never stored.
func NewService(registry *scoring.Registry, repo Repository, logger zerolog.Logger, metrics *telemetry.Metrics) *Service {
	return &Service{registry: registry, repo: repo, logger: logger, metrics: metrics}
}

// Registry exposes the module catalogue.
func (s *Service) Registry() *scoring.Registry { return s.registry }

func (s *Service) model(module string) (*scoring.Model, error) {
	m, ok := s.registry.Get(module)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownModule, "module %q", module)
	}
	return m, nil
}

// ExtractFactors validates raw input for module.
func (s *Service) ExtractFactors(module string, raw map[string]interface{}) (scoring.FactorSet, error) {
	m, err := s.model(module)
	if err != nil {
		return scoring.FactorSet{}, err
	}
	fs, err := m.Extract(raw)
	if err != nil {
		s.metrics.ValidationFailed(module)
		return scoring.FactorSet{}, err
	}
	return fs, nil
}

// ComputeAssessment scores an already extracted factor set. An invariant
// violation aborts with no result.
func (s *Service) ComputeAssessment(module string, fs scoring.FactorSet) (*scoring.AssessmentResult, error) {
	m, err := s.model(module)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := m.Compute(fs)
	if err != nil {
		s.logger.Error().Err(err).Str("module", module).Msg("assessment computation aborted")
		return nil, err
	}
	s.metrics.AssessmentCompleted(module, res.Level.Label, time.Since(start))
	return res, nil
}

// Assess extracts, computes and persists one assessment. Validation errors
// return no outcome. A storage failure is reported on the outcome and never
// discards the computed result.
func (s *Service) Assess(ctx context.Context, userID, module string, raw map[string]interface{}) (*Outcome, error) {
	fs, err := s.ExtractFactors(module, raw)
	if err != nil {
		return nil, err
	}
	res, err := s.ComputeAssessment(module, fs)
	if err != nil {
		return nil, err
	}
	out := newOutcome(module, fs, res)
	s.store(ctx, userID, out)
	return out, nil
}

func newOutcome(module string, fs scoring.FactorSet, res *scoring.AssessmentResult) *Outcome {
	out := &Outcome{Module: module, Factors: fs, Result: res}
	if res.Discrepancy != "" {
		out.Warnings = append(out.Warnings, res.Discrepancy)
	}
	return out
}

// store persists out's result and records the id or the failure on it.
func (s *Service) store(ctx context.Context, userID string, out *Outcome) {
	if id, err := s.persist(ctx, userID, out.Factors, out.Result); err != nil {
		out.PersistErr = err
		out.Warnings = append(out.Warnings, err.Error())
	} else {
		out.RecordID = &id
	}
}

func (s *Service) persist(ctx context.Context, userID string, fs scoring.FactorSet, res *scoring.AssessmentResult) (uuid.UUID, error) {
	if s.repo == nil {
		return uuid.Nil, &scoring.PersistenceError{Op: res.Module, Err: eris.New("no repository configured")}
	}
	if userID == "" {
		return uuid.Nil, &scoring.PersistenceError{Op: res.Module, Err: ErrNoIdentity}
	}
	rec, err := NewRecord(userID, fs, res)
	if err != nil {
		return uuid.Nil, &scoring.PersistenceError{Op: res.Module, Err: eris.Wrap(err, "snapshot result")}
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		s.metrics.PersistenceFailed(res.Module)
		s.logger.Warn().Err(err).Str("module", res.Module).Str("user_id", userID).
			Msg("assessment computed but not saved")
		return uuid.Nil, &scoring.PersistenceError{Op: res.Module, Err: err}
	}
	s.logger.Info().Str("module", res.Module).Str("record_id", rec.ID.String()).
		Str("level", res.Level.Label).Msg("assessment saved")
	return rec.ID, nil
}

// AssessMany runs several modules concurrently for the same user. Each module
// owns its own factor set and result. Every input is validated and scored
// before anything is stored, so a failing batch leaves no records behind;
// persistence failures stay per-outcome warnings.
func (s *Service) AssessMany(ctx context.Context, userID string, inputs map[string]map[string]interface{}) ([]*Outcome, error) {
	modules := make([]string, 0, len(inputs))
	for m := range inputs {
		modules = append(modules, m)
	}
	sort.Strings(modules)

	factors := make([]scoring.FactorSet, len(modules))
	for i, module := range modules {
		fs, err := s.ExtractFactors(module, inputs[module])
		if err != nil {
			return nil, eris.Wrapf(err, "%s", module)
		}
		factors[i] = fs
	}

	outcomes := make([]*Outcome, len(modules))
	g, gctx := errgroup.WithContext(ctx)
	for i, module := range modules {
		i, module := i, module
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.ComputeAssessment(module, factors[i])
			if err != nil {
				return eris.Wrapf(err, "%s", module)
			}
			outcomes[i] = newOutcome(module, factors[i], res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var stores errgroup.Group
	for _, out := range outcomes {
		out := out
		stores.Go(func() error {
			s.store(ctx, userID, out)
			return nil
		})
	}
	_ = stores.Wait()
	return outcomes, nil
}

// GetRecord loads one stored assessment.
func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*Record, error) {
	if s.repo == nil {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// ListHistory returns a user's stored assessments, newest first.
func (s *Service) ListHistory(ctx context.Context, userID, module string, limit, offset int) ([]*Record, int, error) {
	if module != "" && !IsValidModule(module) {
		return nil, 0, eris.Wrapf(ErrUnknownModule, "module %q", module)
	}
	if s.repo == nil {
		return nil, 0, nil
	}
	return s.repo.ListByUser(ctx, userID, module, limit, offset)
}
