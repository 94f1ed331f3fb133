package edtl

import "fmt"

// Term is a node of the EDTL expression tree. The set of implementations is
// closed: every variant is declared in this file and handled by Evaluate.
type Term interface {
	fmt.Stringer
	isTerm()
}

// Const is a fixed value. Booleans are 0/1, durations are a step count.
type Const struct {
	Value int
}

func (c Const) String() string { return fmt.Sprintf("%d", c.Value) }

// Val reads a variable of the active test case.
type Val struct {
	Var Variable
}

func (v Val) String() string { return string(v.Var) }

// Neg: !t
type Neg struct {
	T Term
}

func (n Neg) String() string { return "!" + wrap(n.T) }

// And: (a & b)
type And struct {
	Left, Right Term
}

func (a And) String() string { return fmt.Sprintf("(%s & %s)", a.Left, a.Right) }

// Or: (a | b)
type Or struct {
	Left, Right Term
}

func (o Or) String() string { return fmt.Sprintf("(%s | %s)", o.Left, o.Right) }

// Tilda: t held true across the step from i-1 to i.
type Tilda struct {
	T Term
}

func (t Tilda) String() string { return "~" + wrap(t.T) }

// Slash: rising edge of t at i.
type Slash struct {
	T Term
}

func (s Slash) String() string { return "/" + wrap(s.T) }

// BackSlash: falling edge of t at i.
type BackSlash struct {
	T Term
}

func (b BackSlash) String() string { return `\` + wrap(b.T) }

// Underline: t held false across the step from i-1 to i.
type Underline struct {
	T Term
}

func (u Underline) String() string { return "_" + wrap(u.T) }

// Passed holds once the duration since the reference time j has reached the
// threshold computed by Duration.
type Passed struct {
	Duration Term
}

func (p Passed) String() string { return fmt.Sprintf("passed(%s)", p.Duration) }

// Changes: t differs between i-1 and i.
type Changes struct {
	T Term
}

func (c Changes) String() string { return fmt.Sprintf("changes(%s)", c.T) }

// Increases: t(i-1) < t(i)
type Increases struct {
	T Term
}

func (x Increases) String() string { return fmt.Sprintf("increases(%s)", x.T) }

// Decreases: t(i-1) > t(i)
type Decreases struct {
	T Term
}

func (x Decreases) String() string { return fmt.Sprintf("decreases(%s)", x.T) }

// NotIncreases: t(i-1) >= t(i), the negation of Increases after the first step.
type NotIncreases struct {
	T Term
}

func (x NotIncreases) String() string { return fmt.Sprintf("notincreases(%s)", x.T) }

// NotDecreases: t(i-1) <= t(i), the negation of Decreases after the first step.
type NotDecreases struct {
	T Term
}

func (x NotDecreases) String() string { return fmt.Sprintf("notdecreases(%s)", x.T) }

func (Const) isTerm()        {}
func (Val) isTerm()          {}
func (Neg) isTerm()          {}
func (And) isTerm()          {}
func (Or) isTerm()           {}
func (Tilda) isTerm()        {}
func (Slash) isTerm()        {}
func (BackSlash) isTerm()    {}
func (Underline) isTerm()    {}
func (Passed) isTerm()       {}
func (Changes) isTerm()      {}
func (Increases) isTerm()    {}
func (Decreases) isTerm()    {}
func (NotIncreases) isTerm() {}
func (NotDecreases) isTerm() {}

// wrap parenthesizes everything except leaves so prefix operators read
// unambiguously.
func wrap(t Term) string {
	switch t.(type) {
	case Const, Val, And, Or:
		return t.String()
	default:
		return "(" + t.String() + ")"
	}
}

// ----- Builders -----

// True and False are the boolean constants.
func True() Term  { return Const{Value: 1} }
func False() Term { return Const{Value: 0} }

// V is shorthand for a variable lookup.
func V(name Variable) Term { return Val{Var: name} }

// Steps holds once n steps (counting the reference step) have elapsed since j.
func Steps(n int) Term { return Passed{Duration: Const{Value: n}} }

// AllOf folds terms into a left-nested conjunction. An empty list is true.
func AllOf(terms ...Term) Term {
	if len(terms) == 0 {
		return True()
	}
	out := terms[0]
	for _, t := range terms[1:] {
		out = And{Left: out, Right: t}
	}
	return out
}

// AnyOf folds terms into a left-nested disjunction. An empty list is false.
func AnyOf(terms ...Term) Term {
	if len(terms) == 0 {
		return False()
	}
	out := terms[0]
	for _, t := range terms[1:] {
		out = Or{Left: out, Right: t}
	}
	return out
}

// Variables lists the distinct variables a term reads, in first-seen order.
func Variables(t Term) []Variable {
	seen := make(map[Variable]bool)
	var out []Variable
	var walk func(Term)
	walk = func(t Term) {
		switch t := t.(type) {
		case Val:
			if !seen[t.Var] {
				seen[t.Var] = true
				out = append(out, t.Var)
			}
		case Neg:
			walk(t.T)
		case And:
			walk(t.Left)
			walk(t.Right)
		case Or:
			walk(t.Left)
			walk(t.Right)
		case Tilda:
			walk(t.T)
		case Slash:
			walk(t.T)
		case BackSlash:
			walk(t.T)
		case Underline:
			walk(t.T)
		case Passed:
			walk(t.Duration)
		case Changes:
			walk(t.T)
		case Increases:
			walk(t.T)
		case Decreases:
			walk(t.T)
		case NotIncreases:
			walk(t.T)
		case NotDecreases:
			walk(t.T)
		}
	}
	walk(t)
	return out
}
