// Package validate enforces the structural and semantic rules of a schema
// document. Each validator returns its complete list of issues for the
// objects it inspects; the engine concatenates every validator's output so
// a single run surfaces all discoverable problems in one pass.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Severity represents the severity level of an issue.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for Severity.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Issue is one validation finding with enough context to locate and fix it.
type Issue struct {
	Code       string   `json:"code"`
	Path       string   `json:"path"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
	Severity   Severity `json:"severity"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	var b strings.Builder
	if i.Path != "" {
		b.WriteString(i.Path)
		b.WriteString(": ")
	}
	b.WriteString(i.Message)
	if i.Suggestion != "" {
		b.WriteString("\n  hint: ")
		b.WriteString(i.Suggestion)
	}
	return b.String()
}

// WithSuggestion returns a copy of the issue carrying a fix suggestion.
func (i Issue) WithSuggestion(format string, args ...interface{}) Issue {
	i.Suggestion = fmt.Sprintf(format, args...)
	return i
}

// errorf builds an error-severity issue.
func errorf(code, path, format string, args ...interface{}) Issue {
	return Issue{
		Code:     code,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityError,
	}
}

// warnf builds a warning-severity issue.
func warnf(code, path, format string, args ...interface{}) Issue {
	return Issue{
		Code:     code,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
		Severity: SeverityWarning,
	}
}

// Result is the aggregated outcome of validating one schema document.
// Warnings never block generation; any error does.
type Result struct {
	IsValid  bool    `json:"is_valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// FromDecodeError converts a schema decode failure into an aggregated
// result, so a wrong-typed field surfaces to the author like any other
// validation issue instead of aborting with a raw parse error. It returns
// nil for errors that carry no field-level detail.
func FromDecodeError(err error) *Result {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return nil
	}
	path := typeErr.Field
	if path == "" {
		path = "$"
	}
	issue := errorf(ErrWrongType, path, "expected %s, got JSON %s", typeErr.Type, typeErr.Value).
		WithSuggestion("change '%s' to a %s value", path, typeErr.Type)
	return newResult([]Issue{issue})
}

// newResult splits a flat issue list by severity and derives validity.
func newResult(issues []Issue) *Result {
	result := &Result{
		Errors:   make([]Issue, 0),
		Warnings: make([]Issue, 0),
	}
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			result.Errors = append(result.Errors, issue)
		} else {
			result.Warnings = append(result.Warnings, issue)
		}
	}
	result.IsValid = len(result.Errors) == 0
	return result
}
