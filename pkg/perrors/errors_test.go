package perrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalidPartNameError(t *testing.T) {
	var e Error = &InvalidPartNameError{PartName: "frobnicator"}
	assert.Contains(t, e.Brief(), "frobnicator")
	assert.NotEmpty(t, e.Resolution())
	assert.False(t, e.Reportable())
}

func TestDependencyCycleError(t *testing.T) {
	var e Error = &DependencyCycleError{PartName: "bar"}
	assert.Contains(t, e.Brief(), "bar")
	assert.Contains(t, e.Brief(), "circular")
	assert.False(t, e.Reportable())
}

func TestInternalErrorIsReportableAndHasStack(t *testing.T) {
	e := NewInternalError("out-of-range step")
	assert.True(t, e.Reportable())
	assert.Contains(t, e.Brief(), "out-of-range step")
	assert.NotEmpty(t, e.Details())
}

func TestExecutorErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	e := &ExecutorError{PartName: "foo", StepName: "build", Cause: cause}
	assert.ErrorIs(t, e, cause)
	assert.False(t, e.Reportable())
}
