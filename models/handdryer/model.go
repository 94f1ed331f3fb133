// Package handdryer models a hand dryer: a presence sensor H (hands under
// the dryer) and the dryer motor D.
package handdryer

import "github.com/rfielding/edtl-check/edtl"

// Signals of the hand dryer.
const (
	H edtl.Variable = "H" // hands present
	D edtl.Variable = "D" // dryer running
)

// StopDelay is how many steps the dryer may keep running without hands.
const StopDelay = 2

// Model implements edtl.RequirementSet for the hand dryer.
type Model struct{}

// Name returns the model identifier used by tooling (e.g. edtl-check check --model handdryer).
func (Model) Name() string { return "handdryer" }

// OriginalText describes the English requirements this model encodes.
func (Model) OriginalText() string {
	return "The dryer runs while hands are present. Once hands are removed it keeps running for one more step " +
		"and then switches off within two steps. It never switches on while no hands are present."
}

func (Model) Vocabulary() *edtl.Vocabulary {
	return edtl.NewVocabulary(H, D)
}

func (Model) Requirements() []*edtl.Requirement {
	return []*edtl.Requirement{
		DryerStops(),
		DryerKeepsRunning(),
		DryerNeedsHands(),
	}
}

// DryerStops: while the dryer runs without hands, it must not have just
// switched on, and it must stop within StopDelay steps unless hands return.
//
// The timing part of the invariant only bites at the exit check, where delay
// has elapsed; inside the waiting window passed(StopDelay+1) is still false.
func DryerStops() *edtl.Requirement {
	window := edtl.Steps(StopDelay + 1)
	return &edtl.Requirement{
		Name:        "dryer-stops",
		Description: "dryer running without hands stops within 2 steps and never starts without hands",
		Trigger:     edtl.And{Left: edtl.V(D), Right: edtl.Neg{T: edtl.V(H)}},
		Invariant: edtl.And{
			Left:  edtl.Neg{T: edtl.Slash{T: edtl.V(D)}},
			Right: edtl.Or{Left: edtl.Neg{T: edtl.V(D)}, Right: edtl.Neg{T: window}},
		},
		Final:    edtl.Steps(1),
		Delay:    window,
		Reaction: edtl.Neg{T: edtl.V(D)},
		Release:  edtl.V(H),
	}
}

// DryerKeepsRunning: when hands are removed while the dryer has been running,
// the dryer stays on for that step and the next one.
func DryerKeepsRunning() *edtl.Requirement {
	return &edtl.Requirement{
		Name:        "dryer-keeps-running",
		Description: "dryer keeps running for one step after hands are removed",
		Trigger:     edtl.And{Left: edtl.BackSlash{T: edtl.V(H)}, Right: edtl.Tilda{T: edtl.V(D)}},
		Invariant:   edtl.V(D),
		Final:       edtl.Steps(2),
		Delay:       edtl.Steps(1),
		Reaction:    edtl.False(),
		Release:     edtl.V(H),
	}
}

// DryerNeedsHands: the dryer only switches on while hands are present.
func DryerNeedsHands() *edtl.Requirement {
	return &edtl.Requirement{
		Name:        "dryer-needs-hands",
		Description: "dryer switches on only while hands are present",
		Trigger:     edtl.Slash{T: edtl.V(D)},
		Invariant:   edtl.V(H),
		Final:       edtl.Steps(1),
		Delay:       edtl.Steps(1),
		Reaction:    edtl.False(),
		Release:     edtl.False(),
	}
}

// Scenario is a named test case of the hand dryer.
type Scenario struct {
	Name string
	H, D []bool
}

// Entries converts the scenario into store input.
func (s Scenario) Entries() map[edtl.Variable][]bool {
	return map[edtl.Variable][]bool{H: s.H, D: s.D}
}

// Scenarios are the reference traces: the first is a correct dryer, the
// second switches on again with no hands present at step 4.
func Scenarios() []Scenario {
	return []Scenario{
		{Name: "hands-removed", H: bits(0, 1, 1, 0, 0, 0), D: bits(0, 0, 1, 1, 1, 0)},
		{Name: "restart-without-hands", H: bits(1, 1, 0, 0, 0, 0), D: bits(1, 1, 0, 0, 1, 1)},
	}
}

func bits(vals ...int) []bool {
	out := make([]bool, len(vals))
	for i, v := range vals {
		out[i] = v != 0
	}
	return out
}
