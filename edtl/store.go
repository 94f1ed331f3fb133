package edtl

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Variable names one boolean signal of the system under test.
type Variable string

// Vocabulary is the closed set of variables every test case must define.
type Vocabulary struct {
	vars  []Variable
	index map[Variable]int
}

// NewVocabulary declares the variables of a deployment. Duplicates are dropped.
func NewVocabulary(vars ...Variable) *Vocabulary {
	v := &Vocabulary{index: make(map[Variable]int, len(vars))}
	for _, name := range vars {
		if _, ok := v.index[name]; ok {
			continue
		}
		v.index[name] = len(v.vars)
		v.vars = append(v.vars, name)
	}
	return v
}

// Variables returns the declared variables in declaration order.
func (v *Vocabulary) Variables() []Variable {
	out := make([]Variable, len(v.vars))
	copy(out, v.vars)
	return out
}

func (v *Vocabulary) Has(name Variable) bool {
	_, ok := v.index[name]
	return ok
}

func (v *Vocabulary) Size() int { return len(v.vars) }

// Valuation resolves a variable at a time index. Term evaluation reads
// signals only through this interface.
type Valuation interface {
	ValueAt(v Variable, i int) (bool, error)
}

// TestCase is one complete, length-consistent set of traces.
// It is immutable once created by Store.AddTestCase.
type TestCase struct {
	Name   string
	length int
	values map[Variable][]bool
}

// Len is the number of time steps in every trace of the case.
func (tc *TestCase) Len() int { return tc.length }

// ValueAt returns the value of v at step i. Negative i reads step 0.
func (tc *TestCase) ValueAt(v Variable, i int) (bool, error) {
	trace, ok := tc.values[v]
	if !ok {
		return false, fmt.Errorf("%w: %q in case %q", ErrUnknownVariable, v, tc.Name)
	}
	if i < 0 {
		i = 0
	}
	if i >= len(trace) {
		return false, fmt.Errorf("%w: step %d of case %q (len %d)", ErrIndexOutOfRange, i, tc.Name, len(trace))
	}
	return trace[i], nil
}

// Trace returns a copy of the sequence recorded for v.
func (tc *TestCase) Trace(v Variable) []bool {
	trace := tc.values[v]
	out := make([]bool, len(trace))
	copy(out, trace)
	return out
}

func (tc *TestCase) String() string {
	names := make([]string, 0, len(tc.values))
	for v := range tc.values {
		names = append(names, string(v))
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(tc.Name)
	sb.WriteString(":")
	for _, name := range names {
		sb.WriteString(" ")
		sb.WriteString(name)
		sb.WriteString("=")
		for _, b := range tc.values[Variable(name)] {
			if b {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
	}
	return sb.String()
}

// Store holds the test cases of a verification run and the currently
// selected one. The selector must only change between checks.
type Store struct {
	vocab  *Vocabulary
	cases  []*TestCase
	active int
	mu     sync.RWMutex
}

func NewStore(vocab *Vocabulary) *Store {
	return &Store{
		vocab:  vocab,
		cases:  make([]*TestCase, 0),
		active: -1,
	}
}

// Vocabulary returns the variable set the store validates against.
func (s *Store) Vocabulary() *Vocabulary {
	return s.vocab
}

// AddTestCase validates entries against the vocabulary and appends them as a
// new test case. On error the store is left unchanged.
func (s *Store) AddTestCase(name string, entries map[Variable][]bool) error {
	for v := range entries {
		if !s.vocab.Has(v) {
			return fmt.Errorf("%w: case %q defines undeclared variable %q", ErrIncompleteVariableSet, name, v)
		}
	}
	var missing []string
	for _, v := range s.vocab.vars {
		if _, ok := entries[v]; !ok {
			missing = append(missing, string(v))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: case %q is missing %s", ErrIncompleteVariableSet, name, strings.Join(missing, ", "))
	}

	length := -1
	values := make(map[Variable][]bool, len(entries))
	for _, v := range s.vocab.vars {
		trace := entries[v]
		if length == -1 {
			length = len(trace)
		} else if len(trace) != length {
			return fmt.Errorf("%w: case %q has %q of length %d, expected %d", ErrInconsistentLength, name, v, len(trace), length)
		}
		cp := make([]bool, len(trace))
		copy(cp, trace)
		values[v] = cp
	}
	if length < 0 {
		length = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases = append(s.cases, &TestCase{
		Name:   name,
		length: length,
		values: values,
	})
	return nil
}

// Len returns the number of stored test cases.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cases)
}

// Case returns the test case at index. The returned case is immutable and
// safe to evaluate against from any goroutine.
func (s *Store) Case(index int) (*TestCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.cases) {
		return nil, fmt.Errorf("%w: case %d of %d", ErrIndexOutOfRange, index, len(s.cases))
	}
	return s.cases[index], nil
}

// Select makes the case at index active for ValueAt and MaxLength.
func (s *Store) Select(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.cases) {
		return fmt.Errorf("%w: case %d of %d", ErrIndexOutOfRange, index, len(s.cases))
	}
	s.active = index
	return nil
}

// Active returns the selected test case.
func (s *Store) Active() (*TestCase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active < 0 {
		return nil, ErrNoActiveCase
	}
	return s.cases[s.active], nil
}

// ValueAt reads v at step i of the active case.
func (s *Store) ValueAt(v Variable, i int) (bool, error) {
	tc, err := s.Active()
	if err != nil {
		return false, err
	}
	return tc.ValueAt(v, i)
}

// MaxLength is the length of the active case, or 0 when nothing is selected.
func (s *Store) MaxLength() int {
	tc, err := s.Active()
	if err != nil {
		return 0
	}
	return tc.Len()
}
