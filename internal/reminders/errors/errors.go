package errors

import "errors"

var (
	ErrAlreadyLogged = errors.New("reminder already dispatched for this appointment")
)
