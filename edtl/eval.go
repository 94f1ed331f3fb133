package edtl

import "fmt"

// Evaluate computes the value of t at primary time i with reference time j.
//
// Variable lookups clamp a negative i to 0. Edge and trend operators instead
// report false for any i <= 0: there is no previous step to compare with, so
// no edge is observed.
func Evaluate(t Term, val Valuation, i, j int) (int, error) {
	switch t := t.(type) {
	case Const:
		return t.Value, nil
	case Val:
		if i < 0 {
			i = 0
		}
		b, err := val.ValueAt(t.Var, i)
		if err != nil {
			return 0, err
		}
		return boolInt(b), nil
	case Neg:
		v, err := Evaluate(t.T, val, i, j)
		if err != nil {
			return 0, err
		}
		return boolInt(v == 0), nil
	case And:
		l, r, err := evalBoth(t.Left, t.Right, val, i, j)
		if err != nil {
			return 0, err
		}
		return boolInt(l != 0 && r != 0), nil
	case Or:
		l, r, err := evalBoth(t.Left, t.Right, val, i, j)
		if err != nil {
			return 0, err
		}
		return boolInt(l != 0 || r != 0), nil
	case Tilda:
		return edge(t.T, val, i, j, func(prev, cur int) bool { return prev != 0 && cur != 0 })
	case Slash:
		return edge(t.T, val, i, j, func(prev, cur int) bool { return prev == 0 && cur != 0 })
	case BackSlash:
		return edge(t.T, val, i, j, func(prev, cur int) bool { return prev != 0 && cur == 0 })
	case Underline:
		return edge(t.T, val, i, j, func(prev, cur int) bool { return prev == 0 && cur == 0 })
	case Passed:
		d, err := Evaluate(t.Duration, val, i, j)
		if err != nil {
			return 0, err
		}
		return boolInt(i >= j+d-1), nil
	case Changes:
		return edge(t.T, val, i, j, func(prev, cur int) bool { return prev != cur })
	case Increases:
		return edge(t.T, val, i, j, func(prev, cur int) bool { return prev < cur })
	case Decreases:
		return edge(t.T, val, i, j, func(prev, cur int) bool { return prev > cur })
	case NotIncreases:
		return edge(t.T, val, i, j, func(prev, cur int) bool { return prev >= cur })
	case NotDecreases:
		return edge(t.T, val, i, j, func(prev, cur int) bool { return prev <= cur })
	default:
		return 0, fmt.Errorf("edtl: unsupported term %T", t)
	}
}

// Holds evaluates t and interprets any non-zero value as true.
func Holds(t Term, val Valuation, i, j int) (bool, error) {
	v, err := Evaluate(t, val, i, j)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

func evalBoth(left, right Term, val Valuation, i, j int) (int, int, error) {
	l, err := Evaluate(left, val, i, j)
	if err != nil {
		return 0, 0, err
	}
	r, err := Evaluate(right, val, i, j)
	if err != nil {
		return 0, 0, err
	}
	return l, r, nil
}

// edge compares t at i-1 and i. It is false at or before the first step.
func edge(t Term, val Valuation, i, j int, cmp func(prev, cur int) bool) (int, error) {
	if i <= 0 {
		return 0, nil
	}
	prev, err := Evaluate(t, val, i-1, j)
	if err != nil {
		return 0, err
	}
	cur, err := Evaluate(t, val, i, j)
	if err != nil {
		return 0, err
	}
	return boolInt(cmp(prev, cur)), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
