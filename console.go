package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rfielding/edtl-check/edtl"
)

var (
	colorPass  = lipgloss.Color("#2CD7C7")
	colorFail  = lipgloss.Color("#E74C3C")
	colorMuted = lipgloss.Color("#7F8C8D")
)

// console prints verdicts for a terminal.
type console struct {
	w     io.Writer
	title lipgloss.Style
	pass  lipgloss.Style
	fail  lipgloss.Style
	muted lipgloss.Style
	box   lipgloss.Style
}

func newConsole(w io.Writer, color bool) *console {
	r := lipgloss.NewRenderer(w)
	c := &console{
		w:     w,
		title: r.NewStyle().Bold(true),
		pass:  r.NewStyle(),
		fail:  r.NewStyle().Bold(true),
		muted: r.NewStyle(),
		box:   r.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
	}
	if color {
		c.pass = c.pass.Foreground(colorPass)
		c.fail = c.fail.Foreground(colorFail)
		c.muted = c.muted.Foreground(colorMuted)
		c.box = c.box.BorderForeground(colorFail)
	}
	return c
}

func (c *console) printSummary(set edtl.RequirementSet, store *edtl.Store, s *edtl.Summary) error {
	var sb strings.Builder

	sb.WriteString(c.title.Render(fmt.Sprintf("%s: %d test cases, %d requirements",
		set.Name(), store.Len(), len(set.Requirements()))))
	sb.WriteString("\n")

	current := -1
	for _, r := range s.Results {
		if r.CaseIndex != current {
			current = r.CaseIndex
			sb.WriteString(fmt.Sprintf("\n%s %s\n", c.title.Render(r.Case), c.muted.Render(fmt.Sprintf("(len %d)", r.Length))))
		}
		if r.Passed() {
			sb.WriteString(fmt.Sprintf("  %s %s %s\n", c.pass.Render("PASS"), r.Requirement,
				c.muted.Render(fmt.Sprintf("triggers=%d discharged=%d", r.Verdict.Triggers, r.Verdict.Discharged))))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s %s %s\n", c.fail.Render("FAIL"), r.Requirement, r.Verdict.Violation))
		if r.Description != "" {
			sb.WriteString(fmt.Sprintf("       %s\n", c.muted.Render(r.Description)))
		}
	}

	for _, r := range s.Failures() {
		tc, err := store.Case(r.CaseIndex)
		if err != nil {
			return err
		}
		sb.WriteString("\n")
		sb.WriteString(c.box.Render(fmt.Sprintf("%s / %s\n%s\n%s", r.Case, r.Requirement, r.Verdict.Violation, tc)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	if s.Safe() {
		sb.WriteString(c.pass.Render("System is safe."))
	} else {
		sb.WriteString(c.fail.Render(fmt.Sprintf("System is unsafe: %d of %d checks failed.", len(s.Failures()), len(s.Results))))
	}
	sb.WriteString("\n")

	_, err := io.WriteString(c.w, sb.String())
	return err
}
