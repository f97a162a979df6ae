package updater

import (
	"errors"
	"fmt"

	"toolupdater/internal/archive"
	"toolupdater/internal/catalog"
)

var (
	// ErrNoUpdateAvailable is returned when the published version equals the
	// recorded one. It is routine, not a fault.
	ErrNoUpdateAvailable = errors.New("no update available")
	ErrResolution        = errors.New("resolution failed")
	ErrTransport         = errors.New("transport failed")
	ErrInstall           = errors.New("install failed")
	ErrHook              = errors.New("hook failed")

	ErrExtraction = archive.ErrExtraction
	ErrConfig     = catalog.ErrConfig
)

// StageError records the tool and pipeline state a run failed in.
type StageError struct {
	Tool  string
	State State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Tool, e.State, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Outcome classifies a finished run for reporting.
type Outcome string

const (
	OutcomeUpdated  Outcome = "updated"
	OutcomeUpToDate Outcome = "up-to-date"
	OutcomeFailed   Outcome = "failed"
)

// Classify maps a run error onto its Outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeUpdated
	case errors.Is(err, ErrNoUpdateAvailable):
		return OutcomeUpToDate
	default:
		return OutcomeFailed
	}
}
