package errors

import "errors"

var (
	ErrSalonNotFound = errors.New("salon not found")

	ErrServiceNotFound = errors.New("service not found")

	ErrStaffNotFound = errors.New("staff profile not found")

	ErrInvalidID = errors.New("invalid ID format")
)
