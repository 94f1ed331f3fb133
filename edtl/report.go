package edtl

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// GenerateResultsTable renders one markdown row per (case, requirement).
func GenerateResultsTable(s *Summary) string {
	var sb strings.Builder
	sb.WriteString("| Case | Requirement | Verdict | Triggers | Discharged | Violation |\n")
	sb.WriteString("|------|-------------|---------|----------|------------|-----------|\n")

	for _, r := range s.Results {
		verdict := "pass"
		violation := ""
		if !r.Passed() {
			verdict = "FAIL"
			violation = r.Verdict.Violation.String()
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %d | %s |\n",
			r.Case, r.Requirement, verdict, r.Verdict.Triggers, r.Verdict.Discharged, violation))
	}

	return sb.String()
}

// GenerateRequirementTable lists the predicates of each requirement.
func GenerateRequirementTable(reqs []*Requirement) string {
	var sb strings.Builder
	sb.WriteString("| Requirement | Trigger | Invariant | Final | Delay | Reaction | Release |\n")
	sb.WriteString("|-------------|---------|-----------|-------|-------|----------|---------|\n")

	for _, r := range reqs {
		sb.WriteString(fmt.Sprintf("| %s | `%s` | `%s` | `%s` | `%s` | `%s` | `%s` |\n",
			r.Name,
			mdEscape(termString(r.Trigger)),
			mdEscape(termString(r.Invariant)),
			mdEscape(termString(r.Final)),
			mdEscape(termString(r.Delay)),
			mdEscape(termString(r.Reaction)),
			mdEscape(termString(r.Release))))
	}

	return sb.String()
}

// GenerateTraceTable renders a test case as a timing table, one row per
// variable and one column per step.
func GenerateTraceTable(tc *TestCase) string {
	names := make([]string, 0, len(tc.values))
	for v := range tc.values {
		names = append(names, string(v))
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("| Variable |")
	for i := 0; i < tc.Len(); i++ {
		sb.WriteString(fmt.Sprintf(" %d |", i))
	}
	sb.WriteString("\n|----------|")
	for i := 0; i < tc.Len(); i++ {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")

	for _, name := range names {
		sb.WriteString(fmt.Sprintf("| %s |", name))
		for _, b := range tc.values[Variable(name)] {
			if b {
				sb.WriteString(" 1 |")
			} else {
				sb.WriteString(" 0 |")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// WriteMarkdownReport writes the full report of a run: requirements, the
// traces of failing cases, and every verdict.
func WriteMarkdownReport(w io.Writer, set RequirementSet, store *Store, s *Summary) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s verification report\n\n", set.Name()))
	if text := set.OriginalText(); text != "" {
		sb.WriteString("> " + text + "\n\n")
	}
	sb.WriteString(fmt.Sprintf("Run `%s`: %d checks, %d failures.\n\n", s.RunID, len(s.Results), len(s.Failures())))

	sb.WriteString("## Requirements\n\n")
	sb.WriteString(GenerateRequirementTable(set.Requirements()))
	sb.WriteString("\n## Results\n\n")
	sb.WriteString(GenerateResultsTable(s))

	failing := make(map[int]bool)
	for _, r := range s.Failures() {
		failing[r.CaseIndex] = true
	}
	if len(failing) > 0 {
		sb.WriteString("\n## Failing traces\n")
		for idx := 0; idx < store.Len(); idx++ {
			if !failing[idx] {
				continue
			}
			tc, err := store.Case(idx)
			if err != nil {
				return err
			}
			sb.WriteString(fmt.Sprintf("\n### %s\n\n", tc.Name))
			sb.WriteString(GenerateTraceTable(tc))
		}
	}

	if s.Safe() {
		sb.WriteString("\n**System is safe.**\n")
	} else {
		sb.WriteString("\n**System is unsafe.**\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
