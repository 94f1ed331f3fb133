package edtl

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Result is the verdict for one (test case, requirement) pair.
type Result struct {
	CaseIndex   int
	Case        string
	Requirement string
	Description string
	Length      int
	Verdict     Verdict
}

func (r Result) Passed() bool { return r.Verdict.Passed }

// Summary collects every result of a run, ordered by case then by
// requirement registration order.
type Summary struct {
	RunID   string
	Results []Result
}

// Safe reports whether every requirement held on every test case.
func (s *Summary) Safe() bool {
	for _, r := range s.Results {
		if !r.Passed() {
			return false
		}
	}
	return true
}

// Failures returns the failing results in run order.
func (s *Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if !r.Passed() {
			out = append(out, r)
		}
	}
	return out
}

// Verifier runs registered requirements against every test case of a store.
type Verifier struct {
	requirements []*Requirement
	logger       *zap.Logger
	metrics      *Metrics
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithMetrics records check outcomes in m.
func WithMetrics(m *Metrics) VerifierOption {
	return func(v *Verifier) { v.metrics = m }
}

func NewVerifier(logger *zap.Logger, opts ...VerifierOption) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &Verifier{
		requirements: make([]*Requirement, 0),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Register appends requirements in the order they will be checked.
func (v *Verifier) Register(reqs ...*Requirement) error {
	for _, r := range reqs {
		if r == nil {
			return fmt.Errorf("register: nil requirement")
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("register: %w", err)
		}
	}
	v.requirements = append(v.requirements, reqs...)
	return nil
}

// Requirements returns the registered requirements in registration order.
func (v *Verifier) Requirements() []*Requirement {
	out := make([]*Requirement, len(v.requirements))
	copy(out, v.requirements)
	return out
}

// RunAll selects each test case of store in turn and checks every
// requirement against it. A violation never stops the run; a lookup error
// does.
func (v *Verifier) RunAll(ctx context.Context, store *Store) (*Summary, error) {
	summary := v.newSummary()
	log := v.logger.With(zap.String("run_id", summary.RunID))

	for idx := 0; idx < store.Len(); idx++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := store.Select(idx); err != nil {
			return nil, fmt.Errorf("select case %d: %w", idx, err)
		}
		tc, err := store.Active()
		if err != nil {
			return nil, err
		}
		results, err := v.checkCase(log, store, idx, tc.Name, store.MaxLength())
		if err != nil {
			return nil, err
		}
		summary.Results = append(summary.Results, results...)
	}

	v.logSummary(log, summary)
	return summary, nil
}

// RunParallel checks test cases concurrently with at most workers cases in
// flight. Each worker evaluates against its own immutable case, so the
// store's selector is never touched. Results keep RunAll's order.
func (v *Verifier) RunParallel(ctx context.Context, store *Store, workers int) (*Summary, error) {
	if workers < 1 {
		workers = 1
	}
	summary := v.newSummary()
	log := v.logger.With(zap.String("run_id", summary.RunID))

	perCase := make([][]Result, store.Len())
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for idx := range perCase {
		idx := idx
		tc, err := store.Case(idx)
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results, err := v.checkCase(log, tc, idx, tc.Name, tc.Len())
			if err != nil {
				return err
			}
			perCase[idx] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, results := range perCase {
		summary.Results = append(summary.Results, results...)
	}
	v.logSummary(log, summary)
	return summary, nil
}

func (v *Verifier) newSummary() *Summary {
	return &Summary{
		RunID:   uuid.NewString(),
		Results: make([]Result, 0, len(v.requirements)),
	}
}

func (v *Verifier) checkCase(log *zap.Logger, val Valuation, idx int, name string, length int) ([]Result, error) {
	log = log.With(zap.String("case", name), zap.Int("length", length))
	results := make([]Result, 0, len(v.requirements))

	for _, req := range v.requirements {
		start := time.Now()
		verdict, err := req.Check(val, length, WithLogger(log))
		res := Result{
			CaseIndex:   idx,
			Case:        name,
			Requirement: req.Name,
			Description: req.Description,
			Length:      length,
			Verdict:     verdict,
		}
		v.metrics.observe(res, err, time.Since(start))
		if err != nil {
			return nil, fmt.Errorf("check %q on case %q: %w", req.Name, name, err)
		}
		log.Debug("requirement checked",
			zap.String("requirement", req.Name),
			zap.Bool("passed", verdict.Passed),
			zap.Int("triggers", verdict.Triggers),
			zap.Int("discharged", verdict.Discharged),
		)
		results = append(results, res)
	}
	return results, nil
}

func (v *Verifier) logSummary(log *zap.Logger, s *Summary) {
	log.Info("verification finished",
		zap.Int("checks", len(s.Results)),
		zap.Int("failures", len(s.Failures())),
		zap.Bool("safe", s.Safe()),
	)
}
