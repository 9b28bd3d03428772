package errs

import (
	"errors"
	"sort"
	"strings"
)

// ErrDomainValidation matches every *ValidationError.
var ErrDomainValidation = errors.New("domain validation error")

// ValidationError carries field-keyed messages, e.g. {"domain": ["is already in your cart"]}.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Merge copies fields under prefix ("" keeps the keys as-is).
func (e *ValidationError) Merge(prefix string, fields map[string][]string) {
	for k, msgs := range fields {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		for _, m := range msgs {
			e.Add(key, m)
		}
	}
}

func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil returns nil when no field failed, so callers can `return verr.OrNil()`.
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrDomainValidation
}

// AsValidation extracts a *ValidationError from the chain.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
