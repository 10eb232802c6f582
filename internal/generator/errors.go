package generator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoRootFields is returned by NewGraph when every field in a blueprint set
// depends on another field, leaving nothing the builder could resolve first.
var ErrNoRootFields = errors.New("generator: no field is free of dependencies")

// ErrAlreadyComplete is returned by Submit after the record has been finished.
var ErrAlreadyComplete = errors.New("generator: the record is already complete")

// UnresolvableError reports fields that can never become resolvable because
// their dependencies form a cycle or point at fields the set does not declare.
type UnresolvableError struct {
	Fields []string
}

func (e *UnresolvableError) Error() string {
	return fmt.Sprintf("generator: fields can never be resolved: %s", strings.Join(e.Fields, ", "))
}

// WrongCountError reports a submission with the wrong number of values.
type WrongCountError struct {
	Got  int
	Want int
}

func (e *WrongCountError) Error() string {
	return fmt.Sprintf("generator: got %d values, expected %d", e.Got, e.Want)
}

// InvalidValueError reports the first submitted value outside the active
// option set, along with the full set so callers can re-prompt.
type InvalidValueError struct {
	Value   string
	Allowed []string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("generator: %q is not a valid value, allowed: %s", e.Value, strings.Join(e.Allowed, ", "))
}
