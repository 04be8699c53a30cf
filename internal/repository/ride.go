package repository

import (
	"context"

	"dispatch/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetAll retrieves recent rides.
	GetAll(ctx context.Context) ([]*domain.Ride, error)

	// GetByDriverAndDate retrieves the driver's non-completed ride for a
	// date, if any.
	GetByDriverAndDate(ctx context.Context, driverID, date string) (*domain.Ride, error)

	// ListPendingComputation retrieves all planned rides with empty steps,
	// in stable (creation) order.
	ListPendingComputation(ctx context.Context) ([]*domain.Ride, error)

	// ListContainingOrder retrieves all non-completed rides whose order set
	// includes the given order.
	ListContainingOrder(ctx context.Context, orderID string) ([]*domain.Ride, error)

	// Update updates an existing ride.
	Update(ctx context.Context, ride *domain.Ride) error

	// UpdateSteps replaces a ride's steps wholesale.
	UpdateSteps(ctx context.Context, rideID string, steps []domain.Step) error
}
