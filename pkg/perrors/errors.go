// Package perrors implements the partbuilder error taxonomy: every
// user-facing failure carries a brief one-line summary, a one-line
// resolution, optional details, an optional docs link, and whether it
// should be reported as a bug.
package perrors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Error is the interface every partbuilder error implements, mirroring
// original_source/partbuilder/errors.py's PartbuilderException.
type Error interface {
	error

	// Brief is a concise, single-line description of the error.
	Brief() string

	// Resolution is a concise suggestion for the user to resolve the error.
	Resolution() string

	// Details is detailed technical information, if useful for debugging.
	Details() string

	// DocsURL is a link to documentation, if applicable.
	DocsURL() string

	// Reportable indicates whether this error represents a bug that should
	// be reported, as opposed to ordinary user error.
	Reportable() bool
}

// InvalidPartNameError is raised when an `after` entry, or a selected part
// name, does not exist in the parts set.
type InvalidPartNameError struct {
	PartName string
}

func (e *InvalidPartNameError) Error() string  { return e.Brief() }
func (e *InvalidPartNameError) Brief() string {
	return fmt.Sprintf("a part named %q is not defined in the parts list", e.PartName)
}
func (e *InvalidPartNameError) Resolution() string {
	return "check for typos in the part name or in the parts definition"
}
func (e *InvalidPartNameError) Details() string  { return "" }
func (e *InvalidPartNameError) DocsURL() string  { return "" }
func (e *InvalidPartNameError) Reportable() bool { return false }

// DependencyCycleError is raised when the `after` relation is cyclic. It
// carries one part name witnessing the cycle.
type DependencyCycleError struct {
	PartName string
}

func (e *DependencyCycleError) Error() string { return e.Brief() }
func (e *DependencyCycleError) Brief() string {
	return fmt.Sprintf("part %q belongs to a circular dependency chain", e.PartName)
}
func (e *DependencyCycleError) Resolution() string {
	return "review the parts definition to remove dependency cycles"
}
func (e *DependencyCycleError) Details() string  { return "" }
func (e *DependencyCycleError) DocsURL() string  { return "" }
func (e *DependencyCycleError) Reportable() bool { return false }

// InternalError indicates a bug: a switch over Step or Action saw an
// out-of-range value, or another invariant the engine relies on was
// violated. It always captures a stack trace since it is always
// Reportable.
type InternalError struct {
	msg   string
	stack error
}

// NewInternalError builds an InternalError and captures the current stack.
func NewInternalError(msg string) *InternalError {
	return &InternalError{msg: msg, stack: pkgerrors.New(msg)}
}

func (e *InternalError) Error() string { return e.Brief() }
func (e *InternalError) Brief() string {
	return fmt.Sprintf("internal error: %s", e.msg)
}
func (e *InternalError) Resolution() string {
	return "please report this as a bug, including the details below"
}
func (e *InternalError) Details() string {
	return fmt.Sprintf("%+v", e.stack)
}
func (e *InternalError) DocsURL() string  { return "" }
func (e *InternalError) Reportable() bool { return true }
func (e *InternalError) Unwrap() error    { return e.stack }

// ExecutorError wraps a failure propagated from the external executor. The
// engine never retries an executor failure.
type ExecutorError struct {
	PartName string
	StepName string
	Cause    error
}

func (e *ExecutorError) Error() string { return e.Brief() }
func (e *ExecutorError) Brief() string {
	return fmt.Sprintf("executor failed for %s:%s: %s", e.PartName, e.StepName, e.Cause)
}
func (e *ExecutorError) Resolution() string {
	return "inspect the step's output above and re-run once the underlying failure is fixed"
}
func (e *ExecutorError) Details() string  { return "" }
func (e *ExecutorError) DocsURL() string  { return "" }
func (e *ExecutorError) Reportable() bool { return false }
func (e *ExecutorError) Unwrap() error    { return e.Cause }
