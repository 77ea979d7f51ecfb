// Package kerrors is the error taxonomy shared across the ingestion and
// retrieval core (spec §7). It mirrors the teacher's sentinel/wrapped style
// (storage.ErrNotFound, llm.IsFatal) but widens it to the full closed set of
// error kinds every pass and API surface must classify into.
package kerrors

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error classifications spec §7 names.
type Kind string

const (
	// TransientExternal covers timeouts, rate limits, and connection
	// failures to an external dependency (LLM provider, Neo4j, Qdrant,
	// Postgres, NATS) that may succeed on retry.
	TransientExternal Kind = "TRANSIENT_EXTERNAL"

	// PermissionDenied covers tenant-isolation and authorization failures.
	PermissionDenied Kind = "PERMISSION_DENIED"

	// ValidationError covers malformed input: an unparseable document, an
	// out-of-range confidence, a unit_id pointer with no match in the
	// index.
	ValidationError Kind = "VALIDATION_ERROR"

	// InvariantViolation covers cases that should never occur if upstream
	// invariants hold (an evidence span that is not a substring of its
	// DocItem, a promoted relation pointing at a forbidden type).
	InvariantViolation Kind = "INVARIANT_VIOLATION"

	// Abstain is never surfaced to a caller as a failure; it always carries
	// a CorefReasonCode-style reason and is handled as a normal outcome by
	// the caller (spec §7: "Abstain ... never an error to caller").
	Abstain Kind = "ABSTAIN"

	// NotFound covers lookups against an identifier that does not exist.
	NotFound Kind = "NOT_FOUND"

	// Conflict covers concurrent-write and idempotency-key collisions.
	Conflict Kind = "CONFLICT"
)

// Error is a classified error carrying a Kind, a reason code (for Abstain)
// and the wrapped cause.
type Error struct {
	Kind   Kind
	Reason string
	Op     string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		if e.Reason != "" {
			return fmt.Sprintf("%s: %s (%s)", e.Op, e.Reason, e.Kind)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s (%s): %v", e.Op, e.Reason, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs a classified error.
func New(op string, kind Kind, reason string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Op: op, Err: cause}
}

// Wrap is a convenience for wrapping cause with kind and no reason code.
func Wrap(op string, kind Kind, cause error) *Error {
	return New(op, kind, "", cause)
}

// NewAbstain constructs an Abstain outcome. Callers must branch on
// IsAbstain rather than treating the return value as a failure.
func NewAbstain(op, reason string) *Error {
	return New(op, Abstain, reason, nil)
}

// Is reports whether err (or anything it wraps) classifies as kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsAbstain reports whether err is an Abstain outcome.
func IsAbstain(err error) bool { return Is(err, Abstain) }

// IsRetryable reports whether err should be retried by a bounded backoff
// loop (spec §5: "LLM retry bounded(2) exponential backoff").
func IsRetryable(err error) bool { return Is(err, TransientExternal) }

// ReasonCode extracts the reason string from a classified error, or "" if
// err is not a *Error.
func ReasonCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
