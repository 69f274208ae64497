package model

import "errors"

// Domain errors for the dispatch simulation core. Use errors.Is/As when
// mapping to logs or CLI exit codes.
var (
	ErrInvalidLatitude   = errors.New("latitude is out of valid range")
	ErrInvalidLongitude  = errors.New("longitude is out of valid range")
	ErrCapacityExceeded  = errors.New("courier capacity exceeded")
	ErrOrderNotFound     = errors.New("order not found")
	ErrCourierNotFound   = errors.New("courier not found")
	ErrInvalidTransition = errors.New("invalid order state transition")
	ErrUnknownVehicle    = errors.New("unknown vehicle type")
)
