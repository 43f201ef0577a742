package harness

import (
	"errors"
	"fmt"

	authharness "github.com/mark3labs/auth-harness"
)

// Stage is a step of a verification run.
type Stage int

const (
	StageStart Stage = iota
	StageFingerprintResolved
	StageSignatureAssembled
	StageUnitBuilt
	StageEngineInvoked
	StageSuccess
	StageFailure
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageFingerprintResolved:
		return "fingerprint-resolved"
	case StageSignatureAssembled:
		return "signature-assembled"
	case StageUnitBuilt:
		return "unit-built"
	case StageEngineInvoked:
		return "engine-invoked"
	case StageSuccess:
		return "success"
	case StageFailure:
		return "failure"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// stageDetail is the Details key a failed run records its last stage under.
const stageDetail = "stage"

// StageOf returns the stage a verification run aborted at.
// ok is false if err did not come out of a verification run.
func StageOf(err error) (stage Stage, ok bool) {
	var e *authharness.Error
	if !errors.As(err, &e) {
		return 0, false
	}
	stage, ok = e.Details[stageDetail].(Stage)
	return stage, ok
}

// tag records stage on err if it is an *authharness.Error. Anything else is
// wrapped as an internal error so callers always get a typed error back.
func tag(err error, stage Stage) error {
	var e *authharness.Error
	if !errors.As(err, &e) {
		e = authharness.NewError(authharness.ErrCodeInternal, "verification aborted", err)
		err = e
	}
	e.WithDetails(stageDetail, stage)
	return err
}
