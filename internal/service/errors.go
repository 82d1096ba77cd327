package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors shared by the quiz services.
var (
	ErrValidation          = errors.New("validation failed")
	ErrUpstreamRejected    = errors.New("upstream rejected request")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrQuestionMismatch    = errors.New("answer does not target the current question")
	ErrAttemptCompleted    = errors.New("attempt already completed")
	ErrAttemptEmpty        = errors.New("attempt has no questions")
	ErrSubmitBusy          = errors.New("answer submission already in progress")
)

// FormError carries field-level validation messages. It never reaches the
// upstream: a FormError means no network call was made.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *FormError) Unwrap() error { return ErrValidation }

func formError(field, msg string) *FormError {
	return &FormError{Fields: map[string]string{field: msg}}
}

// UpstreamError is an application-level refusal reported by the upstream.
type UpstreamError struct {
	Op      string
	Message string
}

func (e *UpstreamError) Error() string { return e.Op + ": " + e.Message }

func (e *UpstreamError) Unwrap() error { return ErrUpstreamRejected }

func rejected(op, msg string) error {
	return &UpstreamError{Op: op, Message: msg}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstreamUnavailable, err)
}
