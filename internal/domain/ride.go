package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusPlanned   RideStatus = "PLANNED"
	RideStatusActive    RideStatus = "ACTIVE"
	RideStatusCompleted RideStatus = "COMPLETED"
)

// CanTransitionTo reports whether a ride may move from its current status
// to the target status. Transitions only ever move forward.
func (s RideStatus) CanTransitionTo(target RideStatus) bool {
	switch s {
	case RideStatusPlanned:
		return target == RideStatusActive || target == RideStatusCompleted
	case RideStatusActive:
		return target == RideStatusCompleted
	default:
		return false
	}
}

// StepType represents the kind of stop within a ride.
type StepType string

const (
	StepTypeDelivery StepType = "delivery"
)

// Step is one stop within a ride's computed visit sequence, corresponding
// to exactly one order. Timing and distance come from the optimizer; the
// customer fields are always taken from the order record.
type Step struct {
	OrderID       string   `json:"order_id"`
	Type          StepType `json:"type"`
	Address       string   `json:"address"`
	ArrivalTime   string   `json:"arrival_time"`   // HH:MM
	DepartureTime string   `json:"departure_time"` // HH:MM
	DistanceKm    float64  `json:"distance_km"`
	Error         string   `json:"error,omitempty"`

	// Authoritative from the order record, never from the optimizer.
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	Note          string `json:"note,omitempty"`
	IsPaid        bool   `json:"is_paid"`
	ItemsCount    int    `json:"items_count"`
}

// Ride is a driver's planned set of deliveries for a date, with an
// optimized visit sequence. An empty Steps slice means the sequence
// still needs (re)computation.
type Ride struct {
	ID            string
	Date          string // YYYY-MM-DD, immutable after creation
	DriverID      string
	Status        RideStatus
	DepartureTime string // HH:MM, optimization anchor
	OrderIDs      []string
	Steps         []Step
	CreatedAt     time.Time
}

// NeedsComputation reports whether the periodic scheduler should pick this
// ride up. Only planned rides are ever discovered by the periodic scan;
// active rides are recomputed out-of-band.
func (r *Ride) NeedsComputation() bool {
	return r.Status == RideStatusPlanned && len(r.Steps) == 0
}

// ContainsOrder reports whether the order belongs to this ride.
func (r *Ride) ContainsOrder(orderID string) bool {
	for _, id := range r.OrderIDs {
		if id == orderID {
			return true
		}
	}
	return false
}
