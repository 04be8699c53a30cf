package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"dispatch/internal/domain"
	"dispatch/internal/redis"
	"dispatch/internal/repository"
)

// DispatchService handles operator-initiated ride mutations. Every mutation
// that can change a ride's stop list also clears the computed steps, which
// is what re-queues the ride for the scheduler.
type DispatchService struct {
	rideRepo   repository.RideRepository
	orderRepo  repository.OrderRepository
	driverRepo repository.DriverRepository
	planner    *RoutePlanner
	cache      redis.RideCacheInterface
	notifier   *NotificationService
}

// NewDispatchService creates a new DispatchService. planner, cache and
// notifier may be nil.
func NewDispatchService(
	rideRepo repository.RideRepository,
	orderRepo repository.OrderRepository,
	driverRepo repository.DriverRepository,
	planner *RoutePlanner,
	cache redis.RideCacheInterface,
	notifier *NotificationService,
) *DispatchService {
	return &DispatchService{
		rideRepo:   rideRepo,
		orderRepo:  orderRepo,
		driverRepo: driverRepo,
		planner:    planner,
		cache:      cache,
		notifier:   notifier,
	}
}

// CreateRideRequest contains the parameters for creating a ride.
type CreateRideRequest struct {
	DriverID      string
	Date          string // YYYY-MM-DD
	DepartureTime string // HH:MM
	OrderIDs      []string
}

// CreateRideResponse contains the result of creating a ride.
type CreateRideResponse struct {
	Ride     *domain.Ride
	Appended bool // orders were appended to an existing ride for driver+date
}

// CreateRide assigns orders to a driver for a date. If the driver already
// has a non-completed ride for that date the orders are appended to it and
// its steps are cleared; otherwise a new planned ride is created.
func (s *DispatchService) CreateRide(ctx context.Context, req CreateRideRequest) (*CreateRideResponse, error) {
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}
	if !isValidDate(req.Date) {
		return nil, ErrInvalidDate
	}
	if !isValidClockTime(req.DepartureTime) {
		return nil, ErrInvalidDepartureTime
	}
	if len(req.OrderIDs) == 0 {
		return nil, ErrEmptyOrderSet
	}

	if _, err := s.driverRepo.GetByID(ctx, req.DriverID); err != nil {
		return nil, err
	}
	if err := s.verifyOrdersExist(ctx, req.OrderIDs); err != nil {
		return nil, err
	}

	existing, err := s.rideRepo.GetByDriverAndDate(ctx, req.DriverID, req.Date)
	if err != nil && err != repository.ErrNotFound {
		return nil, err
	}

	if existing != nil {
		existing.OrderIDs = mergeOrderIDs(existing.OrderIDs, req.OrderIDs)
		existing.Steps = nil
		if err := s.rideRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.invalidated(ctx, existing, "orders added")
		return &CreateRideResponse{Ride: existing, Appended: true}, nil
	}

	ride := &domain.Ride{
		ID:            uuid.New().String(),
		Date:          req.Date,
		DriverID:      req.DriverID,
		Status:        domain.RideStatusPlanned,
		DepartureTime: req.DepartureTime,
		OrderIDs:      dedupeOrderIDs(req.OrderIDs),
		Steps:         nil,
		CreatedAt:     time.Now(),
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	return &CreateRideResponse{Ride: ride}, nil
}

// GetRide retrieves a ride, read-through the cache.
func (s *DispatchService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	if s.cache != nil {
		if ride, err := s.cache.GetRide(ctx, rideID); err == nil && ride != nil {
			return ride, nil
		}
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetRide(ctx, ride)
	}

	return ride, nil
}

// AppendOrders adds orders to an existing ride and clears its steps.
func (s *DispatchService) AppendOrders(ctx context.Context, rideID string, orderIDs []string) (*domain.Ride, error) {
	if len(orderIDs) == 0 {
		return nil, ErrEmptyOrderSet
	}

	ride, err := s.mutableRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if err := s.verifyOrdersExist(ctx, orderIDs); err != nil {
		return nil, err
	}

	ride.OrderIDs = mergeOrderIDs(ride.OrderIDs, orderIDs)
	ride.Steps = nil
	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	s.invalidated(ctx, ride, "orders added")
	return ride, nil
}

// RemoveOrder removes an order from a ride and clears its steps. Removing
// the last order leaves an empty ride; the scheduler skips it and the
// operator can delete or refill it.
func (s *DispatchService) RemoveOrder(ctx context.Context, rideID, orderID string) (*domain.Ride, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	ride, err := s.mutableRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if !ride.ContainsOrder(orderID) {
		return nil, ErrOrderNotInRide
	}

	remaining := make([]string, 0, len(ride.OrderIDs)-1)
	for _, id := range ride.OrderIDs {
		if id != orderID {
			remaining = append(remaining, id)
		}
	}
	ride.OrderIDs = remaining
	ride.Steps = nil

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	s.invalidated(ctx, ride, "order removed")
	return ride, nil
}

// SetDepartureTime changes a ride's departure time and clears its steps.
func (s *DispatchService) SetDepartureTime(ctx context.Context, rideID, departureTime string) (*domain.Ride, error) {
	if !isValidClockTime(departureTime) {
		return nil, ErrInvalidDepartureTime
	}

	ride, err := s.mutableRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	ride.DepartureTime = departureTime
	ride.Steps = nil

	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	s.invalidated(ctx, ride, "departure time changed")
	return ride, nil
}

// AdvanceStatus moves a ride's status strictly forward. Advancing never
// touches steps: recomputation and lifecycle are independent.
func (s *DispatchService) AdvanceStatus(ctx context.Context, rideID string, target domain.RideStatus) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	switch target {
	case domain.RideStatusPlanned, domain.RideStatusActive, domain.RideStatusCompleted:
	default:
		return nil, ErrInvalidStatusTransition
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if !ride.Status.CanTransitionTo(target) {
		return nil, ErrInvalidStatusTransition
	}

	ride.Status = target
	if err := s.rideRepo.Update(ctx, ride); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateRide(ctx, ride.ID)
	}

	return ride, nil
}

// ForceRecompute clears a ride's steps. Planned rides are picked up by the
// next scheduler pass; active rides are recomputed immediately because the
// periodic scan does not touch them.
func (s *DispatchService) ForceRecompute(ctx context.Context, rideID string) (*domain.Ride, error) {
	ride, err := s.mutableRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	ride.Steps = nil
	if err := s.rideRepo.UpdateSteps(ctx, ride.ID, nil); err != nil {
		return nil, err
	}
	s.invalidated(ctx, ride, "recomputation requested")

	if ride.Status == domain.RideStatusActive && s.planner != nil {
		if err := s.planner.ComputeRide(ctx, ride); err != nil {
			return nil, fmt.Errorf("recompute active ride: %w", err)
		}
		if s.cache != nil {
			_ = s.cache.InvalidateRide(ctx, ride.ID)
		}
	}

	return ride, nil
}

// mutableRide loads a ride and rejects mutation of completed rides.
func (s *DispatchService) mutableRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Status == domain.RideStatusCompleted {
		return nil, ErrRideCompleted
	}

	return ride, nil
}

func (s *DispatchService) verifyOrdersExist(ctx context.Context, orderIDs []string) error {
	for _, id := range orderIDs {
		if id == "" {
			return ErrInvalidOrderID
		}
	}

	orders, err := s.orderRepo.GetByIDs(ctx, orderIDs)
	if err != nil {
		return err
	}

	found := make(map[string]bool, len(orders))
	for _, o := range orders {
		found[o.ID] = true
	}
	for _, id := range orderIDs {
		if !found[id] {
			return fmt.Errorf("order %s: %w", id, ErrOrderNotFound)
		}
	}
	return nil
}

// invalidated records the cache invalidation and notification that follow
// every steps-clearing mutation.
func (s *DispatchService) invalidated(ctx context.Context, ride *domain.Ride, reason string) {
	if s.cache != nil {
		_ = s.cache.InvalidateRide(ctx, ride.ID)
	}
	if s.notifier != nil {
		_ = s.notifier.NotifyRideInvalidated(ctx, ride, reason)
	}
}

func mergeOrderIDs(existing, incoming []string) []string {
	merged := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, id := range existing {
		if !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	for _, id := range incoming {
		if !seen[id] {
			seen[id] = true
			merged = append(merged, id)
		}
	}
	return merged
}

func dedupeOrderIDs(ids []string) []string {
	return mergeOrderIDs(nil, ids)
}

func isValidDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

func isValidClockTime(value string) bool {
	_, err := time.Parse("15:04", value)
	return err == nil
}
