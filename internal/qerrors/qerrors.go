// Package qerrors defines the three failure kinds the planning core
// raises (spec §7): usage errors from malformed caller input, planning
// limitations where no executable plan exists, and fetch/persist errors
// propagated from storage, with the NOT_FOUND / MULTIPLE translation
// StandardQuery.LoadOne uses.
package qerrors

import (
	"errors"
	"fmt"
)

// Sentinel fetch/persist outcomes, translated from storage's own "no
// result" / "multiple results" shapes.
var (
	ErrNotFound = errors.New("no matching record")
	ErrMultiple = errors.New("multiple matching records")
)

// UsageError reports malformed caller input: an unbound filter passed to
// the planner, an OR found inside an AND-only expectation, a nil
// required argument, out-of-range slice bounds, or a property name
// unknown to the record type. Non-retryable.
type UsageError struct {
	Op     string
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("queryplan: usage error in %s: %s", e.Op, e.Reason)
}

// NewUsageError builds a UsageError for op (the operation the caller
// invoked) with the given reason.
func NewUsageError(op, reason string) *UsageError {
	return &UsageError{Op: op, Reason: reason}
}

// PlanningError reports that no executable plan exists for a given
// (filter, ordering) combination. Callers may rewrite the filter and
// retry.
type PlanningError struct {
	Reason string
	Cause  error
}

func (e *PlanningError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("queryplan: unsupported filter: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("queryplan: unsupported filter: %s", e.Reason)
}

func (e *PlanningError) Unwrap() error { return e.Cause }

// NewPlanningError builds a PlanningError.
func NewPlanningError(reason string, cause error) *PlanningError {
	return &PlanningError{Reason: reason, Cause: cause}
}

// StorageError wraps a failure returned verbatim from the StorageAccess
// implementation, attributing it to the operation and index that failed.
type StorageError struct {
	Op    string
	Index string
	Cause error
}

func (e *StorageError) Error() string {
	if e.Index != "" {
		return fmt.Sprintf("queryplan: storage error in %s (index %s): %v", e.Op, e.Index, e.Cause)
	}
	return fmt.Sprintf("queryplan: storage error in %s: %v", e.Op, e.Cause)
}

func (e *StorageError) Unwrap() error { return e.Cause }

// WrapStorage wraps a raw storage error with the operation/index context
// that produced it. Returns nil if cause is nil.
func WrapStorage(op, index string, cause error) error {
	if cause == nil {
		return nil
	}
	return &StorageError{Op: op, Index: index, Cause: cause}
}

// IsNotFound reports whether err (or its cause chain) is ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsMultiple reports whether err (or its cause chain) is ErrMultiple.
func IsMultiple(err error) bool { return errors.Is(err, ErrMultiple) }
