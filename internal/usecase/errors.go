package usecase

import (
	"errors"
	"fmt"
)

// ErrorKind is the caller-visible classification of a failed run.
type ErrorKind string

const (
	KindUnauthorized       ErrorKind = "unauthorized"
	KindNotFound           ErrorKind = "not_found"
	KindInvalidInput       ErrorKind = "invalid_input"
	KindRunInProgress      ErrorKind = "run_in_progress"
	KindCrawlFailed        ErrorKind = "crawl_failed"
	KindNoContent          ErrorKind = "no_content"
	KindExtractionFailed   ErrorKind = "extraction_failed"
	KindMalformedOutput    ErrorKind = "malformed_output"
	KindNoSkillsIdentified ErrorKind = "no_skills_identified"
	KindPersistenceFailed  ErrorKind = "persistence_failed"
)

// Retryable reports whether repeating the same request later may succeed.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindRunInProgress, KindCrawlFailed, KindExtractionFailed, KindMalformedOutput, KindPersistenceFailed:
		return true
	}
	return false
}

// Sentinels for errors.Is. Matching is by kind only.
var (
	ErrUnauthorized       = &PipelineError{Kind: KindUnauthorized}
	ErrNotFound           = &PipelineError{Kind: KindNotFound}
	ErrInvalidInput       = &PipelineError{Kind: KindInvalidInput}
	ErrRunInProgress      = &PipelineError{Kind: KindRunInProgress}
	ErrCrawlFailed        = &PipelineError{Kind: KindCrawlFailed}
	ErrNoContent          = &PipelineError{Kind: KindNoContent}
	ErrExtractionFailed   = &PipelineError{Kind: KindExtractionFailed}
	ErrMalformedOutput    = &PipelineError{Kind: KindMalformedOutput}
	ErrNoSkillsIdentified = &PipelineError{Kind: KindNoSkillsIdentified}
	ErrPersistenceFailed  = &PipelineError{Kind: KindPersistenceFailed}
)

// PipelineError is the single error a failed run reports.
type PipelineError struct {
	Kind    ErrorKind
	Stage   State
	Message string
	Cause   error
}

func (e *PipelineError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *PipelineError) Unwrap() error {
	return e.Cause
}

func (e *PipelineError) Is(target error) bool {
	t, ok := target.(*PipelineError)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, message string) *PipelineError {
	return &PipelineError{Kind: kind, Message: message}
}

func wrapError(kind ErrorKind, message string, cause error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind carried by err, or "" if err is not a PipelineError.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
