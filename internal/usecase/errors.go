package usecase

import (
	"errors"
	"fmt"

	"github.com/riskibarqy/bolao-sca/internal/domain/lock"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = fmt.Errorf("%w: permission denied", ErrUnauthorized)
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrPredictionsClosed     = errors.New("predictions closed")
	ErrAlreadyFinalized      = errors.New("already finalized")
)

// PredictionsClosedError carries why the lock refused a write.
type PredictionsClosedError struct {
	MatchID int64
	State   lock.State
}

func (e *PredictionsClosedError) Error() string {
	return fmt.Sprintf("%s: match %d is %s", ErrPredictionsClosed, e.MatchID, e.State)
}

func (e *PredictionsClosedError) Reason() lock.Reason {
	return e.State.Reason()
}

func (e *PredictionsClosedError) Unwrap() error {
	return ErrPredictionsClosed
}
