package repository

import "errors"

// ErrNotFound is returned when a requested record does not exist. It also
// doubles as the miss signal for driver-and-date ride lookups.
var ErrNotFound = errors.New("record not found")
