package flasher

import (
	"errors"
	"fmt"
)

// Steps named in StepError.
const (
	StepManifest   = "manifest"
	StepUpload     = "upload"
	StepStartup    = "startup"
	StepConfigure  = "configure"
	StepErase      = "erase"
	StepProgram    = "program"
	StepPowerReset = "power reset"
)

// StepError indicates which step of a flash operation failed.
type StepError struct {
	// Step is one of the Step* constants
	Step string

	// Index is the directive index for erase and program steps, -1 otherwise
	Index int

	// Label is the partition label, if any
	Label string

	// Err is the underlying cause
	Err error
}

func (e *StepError) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	case e.Label != "":
		return fmt.Sprintf("%s #%d (%s): %v", e.Step, e.Index, e.Label, e.Err)
	default:
		return fmt.Sprintf("%s #%d: %v", e.Step, e.Index, e.Err)
	}
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep returns the step that caused err, or "" if err is not a *StepError.
func FailedStep(err error) string {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}
