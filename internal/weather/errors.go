package weather

import (
	"fmt"
	"strings"
)

// ErrorKind classifies why an adapter call failed.
type ErrorKind string

const (
	KindNetwork    ErrorKind = "network"
	KindStructural ErrorKind = "structural"
	KindValidation ErrorKind = "validation"
)

// StructuralError means the response arrived but an expected path was absent.
type StructuralError struct {
	Message string
	Err     error
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *StructuralError) Unwrap() error { return e.Err }

// FieldIssue describes one field that failed a schema rule.
type FieldIssue struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (f FieldIssue) String() string {
	if f.Param != "" {
		return fmt.Sprintf("%s: expected %s %s", f.Field, f.Rule, f.Param)
	}
	return fmt.Sprintf("%s: %s", f.Field, f.Rule)
}

// ValidationError is returned by Schema when a candidate does not match.
// Prefix distinguishes the stage that rejected it.
type ValidationError struct {
	Prefix string
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.String())
	}
	msg := strings.Join(parts, "; ")
	if e.Prefix != "" {
		return e.Prefix + ": " + msg
	}
	return msg
}

// AdapterError is the failure surface of every adapter. Its message is the
// underlying error's so the aggregator reports it verbatim.
type AdapterError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *AdapterError) Error() string { return e.Err.Error() }

func (e *AdapterError) Unwrap() error { return e.Err }
