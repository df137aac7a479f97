package models

import (
	"errors"
	"fmt"
	"time"
)

// ConfigError is a configuration-time failure (invalid detection level,
// malformed config file). It is fatal and aborts before any scanning.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

// NewConfigError creates a ConfigError for the given field.
func NewConfigError(field, msg string, err error) *ConfigError {
	return &ConfigError{Field: field, Message: msg, Err: err}
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ExtractionError is a per-file extraction failure. It is recorded on the
// file's result and never aborts the run.
type ExtractionError struct {
	Path    string
	Format  string
	Message string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.Path, e.Message)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ErrUnsupportedFormat marks a file whose extension has no registered
// extractor.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ProviderErrorKind classifies a provider failure for retry policy.
type ProviderErrorKind int

const (
	// ProviderTransient covers timeouts and rate-limit signals; the
	// attempt may be retried.
	ProviderTransient ProviderErrorKind = iota

	// ProviderPermanent covers authentication and malformed-request
	// failures; the chain advances immediately.
	ProviderPermanent
)

func (k ProviderErrorKind) String() string {
	if k == ProviderTransient {
		return "transient"
	}
	return "permanent"
}

// ProviderError is a single provider attempt failure. It is absorbed by
// the gateway and never surfaces to gateway callers.
type ProviderError struct {
	Provider  string
	Kind      ProviderErrorKind
	Message   string
	Err       error
	Timestamp time.Time
}

// NewProviderError creates a ProviderError with the current timestamp.
func NewProviderError(provider string, kind ProviderErrorKind, msg string, err error) *ProviderError {
	return &ProviderError{
		Provider:  provider,
		Kind:      kind,
		Message:   msg,
		Err:       err,
		Timestamp: time.Now(),
	}
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %s (%s): %v", e.Provider, e.Message, e.Kind, e.Err)
	}
	return fmt.Sprintf("provider %s: %s (%s)", e.Provider, e.Message, e.Kind)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ReportWriteError is a failure writing one report file. It is fatal for
// that file only; other report types still attempt to write.
type ReportWriteError struct {
	Path string
	Err  error
}

func (e *ReportWriteError) Error() string {
	return fmt.Sprintf("write report %s: %v", e.Path, e.Err)
}

func (e *ReportWriteError) Unwrap() error { return e.Err }

// IsConfigError checks if the error is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsExtractionError checks if the error is or wraps an ExtractionError.
func IsExtractionError(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}

// IsTransient reports whether err is a ProviderError of transient kind.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind == ProviderTransient
	}
	return false
}
