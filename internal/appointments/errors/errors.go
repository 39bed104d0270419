package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidID = errors.New("invalid appointment ID format")

	ErrStaleStatus = errors.New("appointment status changed concurrently")

	ErrSlotLocked = errors.New("slot lock is held by another request")
)
