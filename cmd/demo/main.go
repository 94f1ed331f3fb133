package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rfielding/edtl-check/edtl"
	"github.com/rfielding/edtl-check/internal/logging"
	"github.com/rfielding/edtl-check/models/handdryer"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger, err := logging.NewLogger(logging.NewDefaultConfig(), nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer func() { _ = logging.Sync(logger) }()

	model := handdryer.Model{}
	fmt.Printf("=== EDTL demo: %s ===\n", model.Name())
	fmt.Println(model.OriginalText())

	store := edtl.NewStore(model.Vocabulary())
	for _, sc := range handdryer.Scenarios() {
		if err := store.AddTestCase(sc.Name, sc.Entries()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	fmt.Println("\n=== Test cases ===")
	for i := 0; i < store.Len(); i++ {
		tc, _ := store.Case(i)
		fmt.Println(tc)
	}

	fmt.Println("\n=== Requirements ===")
	for _, r := range model.Requirements() {
		fmt.Printf("%s: %s\n", r.Name, r.Description)
		for _, p := range r.Predicates() {
			fmt.Printf("  %-9s %s\n", p.Name, p.Term)
		}
	}

	// ----- Term evaluation on the second case -----

	fmt.Println("\n=== Edges of D on restart-without-hands ===")
	if err := store.Select(1); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	rise := edtl.Slash{T: edtl.V(handdryer.D)}
	fall := edtl.BackSlash{T: edtl.V(handdryer.D)}
	for i := 0; i < store.MaxLength(); i++ {
		r, _ := edtl.Evaluate(rise, store, i, 0)
		f, _ := edtl.Evaluate(fall, store, i, 0)
		fmt.Printf("  t=%d  %s=%d  %s=%d\n", i, rise, r, fall, f)
	}

	// ----- Full verification run -----

	fmt.Println("\n=== Verification ===")
	v := edtl.NewVerifier(logger)
	if err := v.Register(model.Requirements()...); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	summary, err := v.RunAll(context.Background(), store)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	for _, r := range summary.Results {
		b, _ := json.Marshal(r)
		fmt.Println(string(b))
	}

	fmt.Println()
	fmt.Println(edtl.GenerateResultsTable(summary))
	if !summary.Safe() {
		fmt.Println("System is unsafe.")
		return 1
	}
	fmt.Println("System is safe.")
	return 0
}
