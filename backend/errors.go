package backend

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed backend call.
type ErrorKind string

const (
	KindNetwork       ErrorKind = "network"
	KindStatus        ErrorKind = "status"
	KindDecode        ErrorKind = "decode"
	KindConfiguration ErrorKind = "configuration"
	KindNotFound      ErrorKind = "not_found"
)

type Error struct {
	Kind    ErrorKind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (%d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of a backend error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}
