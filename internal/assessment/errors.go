package assessment

import (
	"errors"
	"fmt"
)

// Request-level faults. Callers test them with errors.Is; none of them
// leaves a partial change behind.
var (
	// ErrNotFound means the session id is unknown.
	ErrNotFound = errors.New("session not found")

	// ErrNoResult means the session exists but has not been finished.
	ErrNoResult = fmt.Errorf("%w: no result", ErrNotFound)

	// ErrInvalidItem means the item is not part of the session, or the
	// selected option does not exist on it.
	ErrInvalidItem = errors.New("invalid item")

	// ErrValidation means the request itself is malformed.
	ErrValidation = errors.New("validation error")

	// ErrGeneratorUnavailable means feedback could not be generated.
	ErrGeneratorUnavailable = errors.New("feedback generator unavailable")

	// ErrConflict means the session was answered or finished by another
	// request while this one was scoring it. Nothing was stored; finishing
	// again scores the current answers.
	ErrConflict = errors.New("session changed during finish")
)
