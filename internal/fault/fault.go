// Package fault classifies failures from external data sources.
//
// Every provider client and the calendar scraper resolves failures into one
// of four kinds rather than raising for malformed external content:
//
//	NotFound          parse succeeded, no matching record; not retried
//	Unavailable       record not yet published; may succeed later
//	Transport         network error, timeout, or 5xx; retryable
//	DataInconsistency cross-source mismatch; logged, handled like NotFound
package fault

import (
	"errors"
	"fmt"
)

// Kind identifies the failure category.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindUnavailable
	KindTransport
	KindDataInconsistency
)

// String returns a short lowercase label for logging.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	case KindTransport:
		return "transport"
	case KindDataInconsistency:
		return "data_inconsistency"
	default:
		return "unknown"
	}
}

// Retryable reports whether a failure of this kind may succeed on an
// immediate retry. Only transport failures qualify.
func (k Kind) Retryable() bool {
	return k == KindTransport
}

// Error is a classified failure from a provider or the scraper.
type Error struct {
	Kind     Kind
	Provider string // provider id, e.g. "backend", "acju"
	Op       string // operation, e.g. "fetch month list"
	Err      error  // wrapped cause, may be nil
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", e.Provider, e.Op, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a classified error.
func New(kind Kind, provider, op string, err error) error {
	return &Error{Kind: kind, Provider: provider, Op: op, Err: err}
}

// KindOf extracts the failure kind from err, or KindUnknown if err is not
// a classified fault.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
