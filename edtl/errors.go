package edtl

import "errors"

// Ingestion errors. A store that reports one of these must not be checked.
var (
	ErrIncompleteVariableSet = errors.New("incomplete variable set")
	ErrInconsistentLength    = errors.New("inconsistent trace length")
)

// Lookup errors. These indicate a broken harness and abort a check.
var (
	ErrUnknownVariable = errors.New("unknown variable")
	ErrNoActiveCase    = errors.New("no active test case")
	ErrIndexOutOfRange = errors.New("index out of range")
)
