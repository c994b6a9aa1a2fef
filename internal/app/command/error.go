package command

import (
	"fmt"
)

// Error marks a failure of a command itself, as opposed to bad usage.
// Only these are reported with a trace, everything else prints the usage.
type Error struct {
	Inner error
	Msg   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Msg, e.Inner)
}

func (e *Error) Unwrap() error {
	return e.Inner
}

// Wrap attributes err to the named command.
func Wrap(name string, err error) error {
	if err == nil {
		return nil
	}

	return &Error{
		Inner: err,
		Msg:   name + " failed",
	}
}
