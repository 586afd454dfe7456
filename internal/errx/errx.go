// Package errx provides error kinds for storage and detector operations so the
// calling layer can tell a full store from a transient failure.
package errx

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	Unknown Kind = iota
	Invalid
	Unavailable
	Quota
	Corrupt
	Internal
)

type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func E(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// String returns the string representation of the error kind.
func (k Kind) String() string {
	switch k {
	case Unknown:
		return "Unknown"
	case Invalid:
		return "Invalid"
	case Unavailable:
		return "Unavailable"
	case Quota:
		return "Quota"
	case Corrupt:
		return "Corrupt"
	case Internal:
		return "Internal"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the outermost *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func OpOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// UserMessage maps an error to the notice shown to the user. Only capacity
// failures carry an actionable message; everything else asks for a retry.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if KindOf(err) == Quota {
		return "Storage full - Clear some links or browser data"
	}
	return "Error saving data - Try again"
}
