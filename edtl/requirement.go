package edtl

import (
	"fmt"

	"go.uber.org/zap"
)

// Requirement is an EDTL pattern: whenever Trigger holds, Invariant must be
// kept until Final, and then until Delay elapses or Reaction occurs at the
// next step. Release cancels the obligation at any point.
//
// A Requirement holds no state between checks.
type Requirement struct {
	Name        string
	Description string

	Trigger   Term
	Invariant Term
	Reaction  Term
	Release   Term
	Delay     Term
	Final     Term
}

// Predicate is one named slot of a requirement.
type Predicate struct {
	Name string
	Term Term
}

// Predicates returns the six predicates in pattern order.
func (r *Requirement) Predicates() []Predicate {
	return []Predicate{
		{"trigger", r.Trigger},
		{"invariant", r.Invariant},
		{"reaction", r.Reaction},
		{"release", r.Release},
		{"delay", r.Delay},
		{"final", r.Final},
	}
}

// Validate reports predicates that were left nil.
func (r *Requirement) Validate() error {
	for _, p := range r.Predicates() {
		if p.Term == nil {
			return fmt.Errorf("requirement %q: %s is not set", r.Name, p.Name)
		}
	}
	return nil
}

// Phase names the part of the automaton that found a violation.
type Phase string

const (
	PhaseScanToFinal    Phase = "scan_to_final"
	PhaseScanToReaction Phase = "scan_to_reaction_or_delay"
	PhaseExitCheck      Phase = "exit_check"
)

// Violation locates a broken invariant. Del is -1 when the violation was
// found before the final point was reached.
type Violation struct {
	Phase Phase
	Trig  int
	Fin   int
	Del   int
}

func (v Violation) String() string {
	if v.Del < 0 {
		return fmt.Sprintf("%s: trig=%d fin=%d", v.Phase, v.Trig, v.Fin)
	}
	return fmt.Sprintf("%s: trig=%d fin=%d del=%d", v.Phase, v.Trig, v.Fin, v.Del)
}

// Verdict is the outcome of one bounded check.
type Verdict struct {
	Passed     bool
	Violation  *Violation
	Triggers   int // obligations opened
	Discharged int // obligations cancelled by release or by running off the trace
}

// CheckOption configures a single Check call.
type CheckOption func(*checkOptions)

type checkOptions struct {
	logger *zap.Logger
}

// WithLogger sets the logger that receives violation diagnostics.
func WithLogger(l *zap.Logger) CheckOption {
	return func(o *checkOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Check runs the automaton over steps [0, length) of val. It stops at the
// first violation. A length below 2 passes vacuously.
//
// An error is returned only when a term cannot be evaluated; a violation is
// reported through the Verdict.
func (r *Requirement) Check(val Valuation, length int, opts ...CheckOption) (Verdict, error) {
	o := checkOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if err := r.Validate(); err != nil {
		return Verdict{}, err
	}

	m := &machine{req: r, val: val, length: length}
	verdict := Verdict{Passed: true}

	for m.trig = 1; m.trig < length; m.trig++ {
		triggered, err := m.holds(r.Trigger, m.trig, 0)
		if err != nil {
			return Verdict{}, err
		}
		if !triggered {
			continue
		}
		verdict.Triggers++

		out, err := m.obligation()
		if err != nil {
			return Verdict{}, err
		}
		switch out {
		case discharge:
			verdict.Discharged++
		case fail:
			verdict.Passed = false
			verdict.Violation = m.violation
			o.logger.Warn("requirement violated",
				zap.String("requirement", r.Name),
				zap.String("phase", string(m.violation.Phase)),
				zap.Int("trig", m.violation.Trig),
				zap.Int("fin", m.violation.Fin),
				zap.Int("del", m.violation.Del),
				zap.String("description", r.Description),
			)
			return verdict, nil
		}
	}
	return verdict, nil
}

// outcome is what a phase step reports back to the driver.
type outcome int

const (
	advance   outcome = iota // index moved, stay in the phase
	proceed                  // phase finished, move to the next one
	discharge                // obligation cancelled, go to the next trigger
	fail                     // invariant broken
)

type machine struct {
	req    *Requirement
	val    Valuation
	length int

	trig, fin, del int
	violation      *Violation
}

func (m *machine) holds(t Term, i, j int) (bool, error) {
	return Holds(t, m.val, i, j)
}

// obligation drives the phases for the current trigger time.
func (m *machine) obligation() (outcome, error) {
	m.fin = m.trig
	out, err := m.run(m.scanToFinal)
	if err != nil || out != proceed {
		return out, err
	}

	m.del = m.fin
	out, err = m.run(m.scanToReaction)
	if err != nil || out != proceed {
		return out, err
	}

	return m.exitCheck()
}

func (m *machine) run(step func() (outcome, error)) (outcome, error) {
	for {
		out, err := step()
		if err != nil {
			return out, err
		}
		if out != advance {
			return out, nil
		}
	}
}

func (m *machine) scanToFinal() (outcome, error) {
	r := m.req
	final, err := m.holds(r.Final, m.fin, m.trig)
	if err != nil || final {
		return proceed, err
	}
	released, err := m.holds(r.Release, m.fin, m.trig)
	if err != nil || released {
		return discharge, err
	}
	inv, err := m.holds(r.Invariant, m.fin, m.trig)
	if err != nil {
		return fail, err
	}
	if !inv {
		m.violation = &Violation{Phase: PhaseScanToFinal, Trig: m.trig, Fin: m.fin, Del: -1}
		return fail, nil
	}
	m.fin++
	if m.fin >= m.length {
		return discharge, nil
	}
	return advance, nil
}

func (m *machine) scanToReaction() (outcome, error) {
	r := m.req
	delayed, err := m.holds(r.Delay, m.del, m.fin)
	if err != nil || delayed {
		return proceed, err
	}
	// The reaction is read one step ahead; past the end it is not observed.
	if m.del+1 < m.length {
		reacted, err := m.holds(r.Reaction, m.del+1, m.fin)
		if err != nil || reacted {
			return proceed, err
		}
	}
	released, err := m.holds(r.Release, m.del, m.trig)
	if err != nil || released {
		return discharge, err
	}
	inv, err := m.holds(r.Invariant, m.del, m.fin)
	if err != nil {
		return fail, err
	}
	if !inv {
		m.violation = &Violation{Phase: PhaseScanToReaction, Trig: m.trig, Fin: m.fin, Del: m.del}
		return fail, nil
	}
	m.del++
	if m.del >= m.length {
		return discharge, nil
	}
	return advance, nil
}

func (m *machine) exitCheck() (outcome, error) {
	r := m.req
	released, err := m.holds(r.Release, m.del, m.trig)
	if err != nil || released {
		return proceed, err
	}
	delayed, err := m.holds(r.Delay, m.del, m.fin)
	if err != nil || !delayed {
		return proceed, err
	}
	inv, err := m.holds(r.Invariant, m.del, m.fin)
	if err != nil {
		return fail, err
	}
	if !inv {
		m.violation = &Violation{Phase: PhaseExitCheck, Trig: m.trig, Fin: m.fin, Del: m.del}
		return fail, nil
	}
	return proceed, nil
}
