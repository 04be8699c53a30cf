package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// RideRepository is a PostgreSQL implementation of repository.RideRepository.
type RideRepository struct {
	q Querier
}

// NewRideRepository creates a new PostgreSQL ride repository.
func NewRideRepository(db *sql.DB) *RideRepository {
	return &RideRepository{q: db}
}

// NewRideRepositoryWithTx creates a ride repository using a transaction.
func NewRideRepositoryWithTx(tx *sql.Tx) *RideRepository {
	return &RideRepository{q: tx}
}

const rideColumns = `id, ride_date, driver_id, status, departure_time, order_ids, steps, created_at`

// Create persists a new ride.
func (r *RideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	query := `
		INSERT INTO rides (id, ride_date, driver_id, status, departure_time, order_ids, steps, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	steps, err := marshalSteps(ride.Steps)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, query,
		ride.ID,
		ride.Date,
		ride.DriverID,
		ride.Status,
		ride.DepartureTime,
		pq.Array(ride.OrderIDs),
		steps,
		ride.CreatedAt,
	)

	return err
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE id = $1`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// GetAll retrieves recent rides, newest first.
func (r *RideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides ORDER BY created_at DESC LIMIT 100`
	return r.queryRides(ctx, query)
}

// GetByDriverAndDate retrieves the driver's non-completed ride for a date.
func (r *RideRepository) GetByDriverAndDate(ctx context.Context, driverID, date string) (*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE driver_id = $1 AND ride_date = $2 AND status != $3
		ORDER BY created_at LIMIT 1
	`

	ride, err := scanRide(r.q.QueryRowContext(ctx, query, driverID, date, domain.RideStatusCompleted))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// ListPendingComputation retrieves all planned rides with empty steps in
// creation order. The stable ordering keeps scheduler passes deterministic.
func (r *RideRepository) ListPendingComputation(ctx context.Context) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE status = $1 AND (steps IS NULL OR steps = '[]'::jsonb)
		ORDER BY created_at
	`
	return r.queryRides(ctx, query, domain.RideStatusPlanned)
}

// ListContainingOrder retrieves all non-completed rides that include the order.
func (r *RideRepository) ListContainingOrder(ctx context.Context, orderID string) ([]*domain.Ride, error) {
	query := `
		SELECT ` + rideColumns + ` FROM rides
		WHERE status != $1 AND order_ids @> ARRAY[$2]::text[]
		ORDER BY created_at
	`
	return r.queryRides(ctx, query, domain.RideStatusCompleted, orderID)
}

// Update updates an existing ride.
func (r *RideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	query := `
		UPDATE rides
		SET driver_id = $1, status = $2, departure_time = $3, order_ids = $4, steps = $5
		WHERE id = $6
	`

	steps, err := marshalSteps(ride.Steps)
	if err != nil {
		return err
	}

	result, err := r.q.ExecContext(ctx, query,
		ride.DriverID,
		ride.Status,
		ride.DepartureTime,
		pq.Array(ride.OrderIDs),
		steps,
		ride.ID,
	)
	if err != nil {
		return err
	}

	return requireRowsAffected(result)
}

// UpdateSteps replaces a ride's steps wholesale. The whole value is written
// in a single statement so concurrent writers never see a partial sequence.
func (r *RideRepository) UpdateSteps(ctx context.Context, rideID string, steps []domain.Step) error {
	query := `UPDATE rides SET steps = $1 WHERE id = $2`

	data, err := marshalSteps(steps)
	if err != nil {
		return err
	}

	result, err := r.q.ExecContext(ctx, query, data, rideID)
	if err != nil {
		return err
	}

	return requireRowsAffected(result)
}

func (r *RideRepository) queryRides(ctx context.Context, query string, args ...any) ([]*domain.Ride, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []*domain.Ride
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, ride)
	}
	return rides, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*domain.Ride, error) {
	var ride domain.Ride
	var orderIDs pq.StringArray
	var steps []byte

	if err := row.Scan(
		&ride.ID,
		&ride.Date,
		&ride.DriverID,
		&ride.Status,
		&ride.DepartureTime,
		&orderIDs,
		&steps,
		&ride.CreatedAt,
	); err != nil {
		return nil, err
	}

	ride.OrderIDs = orderIDs
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &ride.Steps); err != nil {
			return nil, fmt.Errorf("unmarshal ride %s steps: %w", ride.ID, err)
		}
	}

	return &ride, nil
}

func marshalSteps(steps []domain.Step) ([]byte, error) {
	if steps == nil {
		steps = []domain.Step{}
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return nil, fmt.Errorf("marshal steps: %w", err)
	}
	return data, nil
}

func requireRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
