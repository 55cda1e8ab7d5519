package model

import (
	"errors"
	"fmt"
)

// NotFoundError reports that an identifier, company, or accession number
// could not be resolved. Always recoverable: surfaced to the caller as a
// structured failure, never a crash.
type NotFoundError struct {
	Kind string // "company", "filing", "ticker"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// NewNotFound creates a NotFoundError for the given entity kind and id.
func NewNotFound(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFound reports whether any error in the chain is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// UpstreamError reports that the filing source was unreachable or
// rate-limited. Surfaced as-is; retry policy lives in the source adapter.
type UpstreamError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream %s: status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("upstream %s: %v", e.Operation, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether any error in the chain is an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// MalformedFilingError reports that a filing lacks structure it normally
// carries, e.g. no XBRL instance for a 10-K. Operations return partial
// data with explicit markers whenever possible instead of failing whole.
type MalformedFilingError struct {
	Accession string
	Reason    string
}

func (e *MalformedFilingError) Error() string {
	return fmt.Sprintf("malformed filing %s: %s", e.Accession, e.Reason)
}

// IsMalformedFiling reports whether any error in the chain is a
// MalformedFilingError.
func IsMalformedFiling(err error) bool {
	var mf *MalformedFilingError
	return errors.As(err, &mf)
}

// ValidationError reports caller parameters out of range. Raised before
// any upstream call is made.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

// NewValidation creates a ValidationError for the given parameter.
func NewValidation(param, reason string) *ValidationError {
	return &ValidationError{Param: param, Reason: reason}
}

// IsValidation reports whether any error in the chain is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
