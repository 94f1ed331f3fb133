// Package traceio reads test cases from YAML or JSON files into an
// edtl.Store.
//
// File layout:
//
//	variables: [H, D]
//	cases:
//	  - name: hands-removed
//	    signals:
//	      H: [0, 1, 1, 0, 0, 0]
//	      D: [0, 0, 1, 1, 1, 0]
package traceio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rfielding/edtl-check/edtl"
)

// File is the decoded form of a trace file.
type File struct {
	Variables []string   `yaml:"variables" validate:"required,min=1,unique,dive,required"`
	Cases     []CaseSpec `yaml:"cases" validate:"required,min=1,dive"`
}

// CaseSpec is one test case: a 0/1 sequence per variable.
type CaseSpec struct {
	Name    string           `yaml:"name" validate:"required"`
	Signals map[string][]int `yaml:"signals" validate:"required,dive,dive,oneof=0 1"`
}

var validate = validator.New()

// Decode parses and validates a trace file. JSON input is accepted since it
// is valid YAML.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode traces: empty input")
		}
		return nil, fmt.Errorf("decode traces: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("validate traces: %w", err)
	}
	return &f, nil
}

// ReadFile decodes the trace file at path.
func ReadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open traces: %w", err)
	}
	defer fh.Close()
	return Decode(fh)
}

// Build populates a store from f. When vocab is nil the file's variable
// list is used; otherwise the file must declare exactly vocab's variables.
func Build(f *File, vocab *edtl.Vocabulary) (*edtl.Store, error) {
	declared := make([]edtl.Variable, len(f.Variables))
	for i, v := range f.Variables {
		declared[i] = edtl.Variable(v)
	}
	if vocab == nil {
		vocab = edtl.NewVocabulary(declared...)
	} else if err := sameVariables(vocab, declared); err != nil {
		return nil, err
	}

	store := edtl.NewStore(vocab)
	for _, c := range f.Cases {
		entries := make(map[edtl.Variable][]bool, len(c.Signals))
		for name, values := range c.Signals {
			trace := make([]bool, len(values))
			for i, x := range values {
				trace[i] = x != 0
			}
			entries[edtl.Variable(name)] = trace
		}
		if err := store.AddTestCase(c.Name, entries); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// Load reads path and builds a store checked against vocab.
func Load(path string, vocab *edtl.Vocabulary) (*edtl.Store, error) {
	f, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Build(f, vocab)
}

func sameVariables(vocab *edtl.Vocabulary, declared []edtl.Variable) error {
	want := make([]string, 0, vocab.Size())
	for _, v := range vocab.Variables() {
		want = append(want, string(v))
	}
	got := make([]string, 0, len(declared))
	for _, v := range declared {
		got = append(got, string(v))
	}
	sort.Strings(want)
	sort.Strings(got)

	if len(want) != len(got) {
		return fmt.Errorf("%w: file declares %v, model expects %v", edtl.ErrIncompleteVariableSet, got, want)
	}
	for i := range want {
		if want[i] != got[i] {
			return fmt.Errorf("%w: file declares %v, model expects %v", edtl.ErrIncompleteVariableSet, got, want)
		}
	}
	return nil
}
