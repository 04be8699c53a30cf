package service

import "errors"

var (
	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = errors.New("invalid ride id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidOrderID is returned when an order ID is empty.
	ErrInvalidOrderID = errors.New("invalid order id")

	// ErrInvalidDate is returned when a ride date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid ride date")

	// ErrInvalidDepartureTime is returned when a departure time is not HH:MM.
	ErrInvalidDepartureTime = errors.New("invalid departure time")

	// ErrEmptyOrderSet is returned when a ride operation is attempted with
	// no orders.
	ErrEmptyOrderSet = errors.New("ride has no orders")

	// ErrOrderNotFound is returned when a referenced order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderNotInRide is returned when removing an order the ride does
	// not contain.
	ErrOrderNotInRide = errors.New("order not part of ride")

	// ErrRideCompleted is returned when mutating a completed ride.
	ErrRideCompleted = errors.New("ride already completed")

	// ErrInvalidStatusTransition is returned when a status advance would
	// move backward or skip validation.
	ErrInvalidStatusTransition = errors.New("invalid ride status transition")

	// ErrInvalidAddress is returned when an address edit is missing
	// required fields.
	ErrInvalidAddress = errors.New("invalid delivery address")
)
