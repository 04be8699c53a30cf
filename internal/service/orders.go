package service

import (
	"context"

	"dispatch/internal/domain"
	"dispatch/internal/redis"
	"dispatch/internal/repository"
)

// OrderService handles the order edits ride planning cares about. Changing
// a delivery address synchronously invalidates the computed steps of every
// non-completed ride containing the order.
type OrderService struct {
	orderRepo repository.OrderRepository
	rideRepo  repository.RideRepository
	cache     redis.RideCacheInterface
	notifier  *NotificationService
}

// NewOrderService creates a new OrderService. cache and notifier may be nil.
func NewOrderService(
	orderRepo repository.OrderRepository,
	rideRepo repository.RideRepository,
	cache redis.RideCacheInterface,
	notifier *NotificationService,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		rideRepo:  rideRepo,
		cache:     cache,
		notifier:  notifier,
	}
}

// GetOrder retrieves an order by ID.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}
	return s.orderRepo.GetByID(ctx, orderID)
}

// UpdateAddressRequest contains the parameters for an address edit.
type UpdateAddressRequest struct {
	OrderID string
	Street  string
	City    string
	Zip     string
}

// UpdateAddress updates an order's delivery address and clears the steps of
// every planned or active ride containing it, as part of the same
// operation. Completed rides are never touched.
func (s *OrderService) UpdateAddress(ctx context.Context, req UpdateAddressRequest) error {
	if req.OrderID == "" {
		return ErrInvalidOrderID
	}
	if req.Street == "" || req.City == "" {
		return ErrInvalidAddress
	}

	if err := s.orderRepo.UpdateAddress(ctx, req.OrderID, req.Street, req.City, req.Zip); err != nil {
		return err
	}

	rides, err := s.rideRepo.ListContainingOrder(ctx, req.OrderID)
	if err != nil {
		return err
	}

	for _, ride := range rides {
		if ride.Status == domain.RideStatusCompleted {
			continue
		}
		if err := s.rideRepo.UpdateSteps(ctx, ride.ID, nil); err != nil {
			return err
		}
		ride.Steps = nil
		if s.cache != nil {
			_ = s.cache.InvalidateRide(ctx, ride.ID)
		}
		if s.notifier != nil {
			_ = s.notifier.NotifyRideInvalidated(ctx, ride, "delivery address changed")
		}
	}

	return nil
}
