package tests

import (
	"context"
	"errors"
	"testing"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
	"dispatch/internal/service"
)

func TestUpdateAddress_InvalidatesContainingRides(t *testing.T) {
	rideRepo := NewMockRideRepository()
	orderRepo := NewMockOrderRepository()
	addTestOrders(orderRepo, "order-1", "order-2")

	planned := plannedRide("ride-planned", "order-1", "order-2")
	planned.Steps = []domain.Step{
		{OrderID: "order-1", Type: domain.StepTypeDelivery},
		{OrderID: "order-2", Type: domain.StepTypeDelivery},
	}
	rideRepo.AddRide(planned)

	active := plannedRide("ride-active", "order-2")
	active.Status = domain.RideStatusActive
	active.Steps = []domain.Step{{OrderID: "order-2", Type: domain.StepTypeDelivery}}
	rideRepo.AddRide(active)

	other := plannedRide("ride-other", "order-1")
	other.Steps = []domain.Step{{OrderID: "order-1", Type: domain.StepTypeDelivery}}
	rideRepo.AddRide(other)

	svc := service.NewOrderService(orderRepo, rideRepo, nil, nil)

	err := svc.UpdateAddress(context.Background(), service.UpdateAddressRequest{
		OrderID: "order-2",
		Street:  "New St 5",
		City:    "Berlin",
		Zip:     "10117",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both rides containing order-2 are cleared in the same operation.
	if got := rideRepo.GetRide("ride-planned"); len(got.Steps) != 0 {
		t.Errorf("planned ride must be invalidated, got %d steps", len(got.Steps))
	}
	if got := rideRepo.GetRide("ride-active"); len(got.Steps) != 0 {
		t.Errorf("active ride must be invalidated, got %d steps", len(got.Steps))
	}
	// A ride not containing the order is untouched.
	if got := rideRepo.GetRide("ride-other"); len(got.Steps) != 1 {
		t.Errorf("unrelated ride must keep its steps, got %d", len(got.Steps))
	}

	// The address itself is persisted.
	order, _ := orderRepo.GetByID(context.Background(), "order-2")
	if order.Street != "New St 5" || order.Zip != "10117" {
		t.Errorf("expected updated address, got %+v", order)
	}
}

func TestUpdateAddress_LeavesCompletedRidesAlone(t *testing.T) {
	rideRepo := NewMockRideRepository()
	orderRepo := NewMockOrderRepository()
	addTestOrders(orderRepo, "order-1")

	completed := plannedRide("ride-done", "order-1")
	completed.Status = domain.RideStatusCompleted
	completed.Steps = []domain.Step{{OrderID: "order-1", Type: domain.StepTypeDelivery}}
	rideRepo.AddRide(completed)

	svc := service.NewOrderService(orderRepo, rideRepo, nil, nil)

	err := svc.UpdateAddress(context.Background(), service.UpdateAddressRequest{
		OrderID: "order-1",
		Street:  "New St 5",
		City:    "Berlin",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := rideRepo.GetRide("ride-done"); len(got.Steps) != 1 {
		t.Errorf("completed ride steps must never be cleared, got %d", len(got.Steps))
	}
}

func TestUpdateAddress_Validation(t *testing.T) {
	rideRepo := NewMockRideRepository()
	orderRepo := NewMockOrderRepository()
	svc := service.NewOrderService(orderRepo, rideRepo, nil, nil)
	ctx := context.Background()

	if err := svc.UpdateAddress(ctx, service.UpdateAddressRequest{Street: "a", City: "b"}); !errors.Is(err, service.ErrInvalidOrderID) {
		t.Errorf("expected ErrInvalidOrderID, got %v", err)
	}
	if err := svc.UpdateAddress(ctx, service.UpdateAddressRequest{OrderID: "order-1", City: "b"}); !errors.Is(err, service.ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestUpdateAddress_UnknownOrder(t *testing.T) {
	rideRepo := NewMockRideRepository()
	orderRepo := NewMockOrderRepository()
	svc := service.NewOrderService(orderRepo, rideRepo, nil, nil)

	err := svc.UpdateAddress(context.Background(), service.UpdateAddressRequest{
		OrderID: "order-ghost",
		Street:  "New St 5",
		City:    "Berlin",
	})

	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
