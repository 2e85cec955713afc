package stack

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownRoute is returned when a key does not name a scene in the
	// window. It means the caller and the container are out of sync.
	ErrUnknownRoute = errors.New("stack: route not in window")

	ErrEmptyKey     = errors.New("stack: route key is empty")
	ErrDuplicateKey = errors.New("stack: duplicate route key")
	ErrInvalidIndex = errors.New("stack: focused index out of range")

	// ErrNoGestureTarget is returned by PointerDown when no card can be
	// swiped back: the stack has a single route or the top is closing.
	ErrNoGestureTarget = errors.New("stack: no card accepts a gesture")

	ErrClosed = errors.New("stack: container closed")
)

// ConfigError describes an invalid container or route setting.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("stack %s: %s", e.Field, e.Reason)
}
