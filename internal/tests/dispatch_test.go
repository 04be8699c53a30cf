package tests

import (
	"context"
	"errors"
	"testing"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

func newDispatchFixture(t *testing.T) (*service.DispatchService, *MockRideRepository, *MockOrderRepository, *MockOptimizer) {
	t.Helper()

	rideRepo := NewMockRideRepository()
	orderRepo := NewMockOrderRepository()
	driverRepo := NewMockDriverRepository()
	mockOptimizer := NewMockOptimizer()

	driverRepo.AddDriver(&domain.Driver{ID: "driver-1", Name: "Dana Krause", Phone: "+49 170 1234"})
	addTestOrders(orderRepo, "order-1", "order-2", "order-3")

	planner := newTestPlanner(rideRepo, orderRepo, mockOptimizer)
	svc := service.NewDispatchService(rideRepo, orderRepo, driverRepo, planner, nil, nil)
	return svc, rideRepo, orderRepo, mockOptimizer
}

func TestCreateRide_Validation(t *testing.T) {
	svc, _, _, _ := newDispatchFixture(t)
	ctx := context.Background()

	testCases := []struct {
		name string
		req  service.CreateRideRequest
		want error
	}{
		{"empty driver", service.CreateRideRequest{Date: "2026-09-01", DepartureTime: "09:30", OrderIDs: []string{"order-1"}}, service.ErrInvalidDriverID},
		{"bad date", service.CreateRideRequest{DriverID: "driver-1", Date: "01.09.2026", DepartureTime: "09:30", OrderIDs: []string{"order-1"}}, service.ErrInvalidDate},
		{"bad departure", service.CreateRideRequest{DriverID: "driver-1", Date: "2026-09-01", DepartureTime: "9:3", OrderIDs: []string{"order-1"}}, service.ErrInvalidDepartureTime},
		{"no orders", service.CreateRideRequest{DriverID: "driver-1", Date: "2026-09-01", DepartureTime: "09:30"}, service.ErrEmptyOrderSet},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateRide(ctx, tc.req)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateRide_UnknownOrderRejected(t *testing.T) {
	svc, _, _, _ := newDispatchFixture(t)

	_, err := svc.CreateRide(context.Background(), service.CreateRideRequest{
		DriverID:      "driver-1",
		Date:          "2026-09-01",
		DepartureTime: "09:30",
		OrderIDs:      []string{"order-1", "order-missing"},
	})

	if !errors.Is(err, service.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestCreateRide_NewRideStartsPlannedWithEmptySteps(t *testing.T) {
	svc, rideRepo, _, _ := newDispatchFixture(t)

	result, err := svc.CreateRide(context.Background(), service.CreateRideRequest{
		DriverID:      "driver-1",
		Date:          "2026-09-01",
		DepartureTime: "09:30",
		OrderIDs:      []string{"order-1", "order-2", "order-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Appended {
		t.Error("expected a fresh ride, not an append")
	}
	ride := rideRepo.GetRide(result.Ride.ID)
	if ride.Status != domain.RideStatusPlanned {
		t.Errorf("expected PLANNED, got %s", ride.Status)
	}
	if len(ride.Steps) != 0 {
		t.Errorf("new ride must await computation, got %d steps", len(ride.Steps))
	}
	if len(ride.OrderIDs) != 2 {
		t.Errorf("expected duplicate order ids collapsed, got %v", ride.OrderIDs)
	}
}

func TestCreateRide_AppendsToExistingRideAndClearsSteps(t *testing.T) {
	svc, rideRepo, _, _ := newDispatchFixture(t)

	existing := plannedRide("ride-1", "order-1")
	existing.Steps = []domain.Step{{OrderID: "order-1", Type: domain.StepTypeDelivery}}
	rideRepo.AddRide(existing)

	result, err := svc.CreateRide(context.Background(), service.CreateRideRequest{
		DriverID:      "driver-1",
		Date:          "2026-09-01",
		DepartureTime: "09:30",
		OrderIDs:      []string{"order-2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Appended {
		t.Error("expected append to existing driver+date ride")
	}
	ride := rideRepo.GetRide("ride-1")
	if len(ride.OrderIDs) != 2 {
		t.Errorf("expected 2 orders, got %v", ride.OrderIDs)
	}
	if len(ride.Steps) != 0 {
		t.Errorf("append must clear steps, got %d", len(ride.Steps))
	}
}

func TestAppendOrders_ClearsSteps(t *testing.T) {
	svc, rideRepo, _, _ := newDispatchFixture(t)

	ride := plannedRide("ride-1", "order-1")
	ride.Steps = []domain.Step{{OrderID: "order-1", Type: domain.StepTypeDelivery}}
	rideRepo.AddRide(ride)

	got, err := svc.AppendOrders(context.Background(), "ride-1", []string{"order-2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Steps) != 0 {
		t.Errorf("membership change must clear steps synchronously, got %d", len(got.Steps))
	}
	if stored := rideRepo.GetRide("ride-1"); len(stored.Steps) != 0 {
		t.Errorf("expected cleared steps persisted, got %d", len(stored.Steps))
	}
}

func TestRemoveOrder_ClearsSteps(t *testing.T) {
	svc, rideRepo, _, _ := newDispatchFixture(t)

	ride := plannedRide("ride-1", "order-1", "order-2")
	ride.Steps = []domain.Step{
		{OrderID: "order-1", Type: domain.StepTypeDelivery},
		{OrderID: "order-2", Type: domain.StepTypeDelivery},
	}
	rideRepo.AddRide(ride)

	got, err := svc.RemoveOrder(context.Background(), "ride-1", "order-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.OrderIDs) != 1 || got.OrderIDs[0] != "order-1" {
		t.Errorf("expected [order-1], got %v", got.OrderIDs)
	}
	if len(got.Steps) != 0 {
		t.Errorf("removal must clear steps, got %d", len(got.Steps))
	}
}

func TestRemoveOrder_NotInRide(t *testing.T) {
	svc, rideRepo, _, _ := newDispatchFixture(t)
	rideRepo.AddRide(plannedRide("ride-1", "order-1"))

	_, err := svc.RemoveOrder(context.Background(), "ride-1", "order-3")
	if !errors.Is(err, service.ErrOrderNotInRide) {
		t.Errorf("expected ErrOrderNotInRide, got %v", err)
	}
}

func TestSetDepartureTime_ClearsSteps(t *testing.T) {
	svc, rideRepo, _, _ := newDispatchFixture(t)

	ride := plannedRide("ride-1", "order-1")
	ride.Steps = []domain.Step{{OrderID: "order-1", Type: domain.StepTypeDelivery}}
	rideRepo.AddRide(ride)

	got, err := svc.SetDepartureTime(context.Background(), "ride-1", "11:45")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.DepartureTime != "11:45" {
		t.Errorf("expected departure 11:45, got %s", got.DepartureTime)
	}
	if len(got.Steps) != 0 {
		t.Errorf("departure change must clear steps, got %d", len(got.Steps))
	}
}

func TestCompletedRide_RejectsMutations(t *testing.T) {
	svc, rideRepo, _, _ := newDispatchFixture(t)

	ride := plannedRide("ride-1", "order-1")
	ride.Status = domain.RideStatusCompleted
	ride.Steps = []domain.Step{{OrderID: "order-1", Type: domain.StepTypeDelivery}}
	rideRepo.AddRide(ride)

	ctx := context.Background()

	if _, err := svc.AppendOrders(ctx, "ride-1", []string{"order-2"}); !errors.Is(err, service.ErrRideCompleted) {
		t.Errorf("append: expected ErrRideCompleted, got %v", err)
	}
	if _, err := svc.RemoveOrder(ctx, "ride-1", "order-1"); !errors.Is(err, service.ErrRideCompleted) {
		t.Errorf("remove: expected ErrRideCompleted, got %v", err)
	}
	if _, err := svc.SetDepartureTime(ctx, "ride-1", "12:00"); !errors.Is(err, service.ErrRideCompleted) {
		t.Errorf("departure: expected ErrRideCompleted, got %v", err)
	}
	if _, err := svc.ForceRecompute(ctx, "ride-1"); !errors.Is(err, service.ErrRideCompleted) {
		t.Errorf("recompute: expected ErrRideCompleted, got %v", err)
	}

	// Steps must be untouched throughout.
	if stored := rideRepo.GetRide("ride-1"); len(stored.Steps) != 1 {
		t.Errorf("completed ride steps must never change, got %d", len(stored.Steps))
	}
}

func TestAdvanceStatus_ForwardOnly(t *testing.T) {
	svc, rideRepo, _, _ := newDispatchFixture(t)
	ctx := context.Background()

	ride := plannedRide("ride-1", "order-1")
	rideRepo.AddRide(ride)

	got, err := svc.AdvanceStatus(ctx, "ride-1", domain.RideStatusActive)
	if err != nil {
		t.Fatalf("planned->active: unexpected error: %v", err)
	}
	if got.Status != domain.RideStatusActive {
		t.Errorf("expected ACTIVE, got %s", got.Status)
	}

	if _, err := svc.AdvanceStatus(ctx, "ride-1", domain.RideStatusPlanned); !errors.Is(err, service.ErrInvalidStatusTransition) {
		t.Errorf("active->planned must be rejected, got %v", err)
	}

	if _, err := svc.AdvanceStatus(ctx, "ride-1", domain.RideStatusCompleted); err != nil {
		t.Fatalf("active->completed: unexpected error: %v", err)
	}

	if _, err := svc.AdvanceStatus(ctx, "ride-1", domain.RideStatusActive); !errors.Is(err, service.ErrInvalidStatusTransition) {
		t.Errorf("completed->active must be rejected, got %v", err)
	}
}

func TestAdvanceStatus_DoesNotClearSteps(t *testing.T) {
	svc, rideRepo, _, _ := newDispatchFixture(t)

	ride := plannedRide("ride-1", "order-1")
	ride.Steps = []domain.Step{{OrderID: "order-1", Type: domain.StepTypeDelivery}}
	rideRepo.AddRide(ride)

	if _, err := svc.AdvanceStatus(context.Background(), "ride-1", domain.RideStatusActive); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored := rideRepo.GetRide("ride-1"); len(stored.Steps) != 1 {
		t.Errorf("status advance must not clear steps, got %d", len(stored.Steps))
	}
}

func TestForceRecompute_PlannedRideWaitsForScheduler(t *testing.T) {
	svc, rideRepo, _, mockOptimizer := newDispatchFixture(t)

	ride := plannedRide("ride-1", "order-1")
	ride.Steps = []domain.Step{{OrderID: "order-1", Type: domain.StepTypeDelivery}}
	rideRepo.AddRide(ride)

	got, err := svc.ForceRecompute(context.Background(), "ride-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Steps) != 0 {
		t.Errorf("expected cleared steps, got %d", len(got.Steps))
	}
	if mockOptimizer.CallCount != 0 {
		t.Errorf("planned ride must wait for the scheduler, got %d optimizer calls", mockOptimizer.CallCount)
	}
}

func TestForceRecompute_ActiveRideComputesImmediately(t *testing.T) {
	svc, rideRepo, _, mockOptimizer := newDispatchFixture(t)

	ride := plannedRide("ride-1", "order-1", "order-2")
	ride.Status = domain.RideStatusActive
	ride.Steps = []domain.Step{{OrderID: "order-1", Type: domain.StepTypeDelivery}}
	rideRepo.AddRide(ride)

	got, err := svc.ForceRecompute(context.Background(), "ride-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mockOptimizer.CallCount != 1 {
		t.Fatalf("active ride must recompute out-of-band, got %d calls", mockOptimizer.CallCount)
	}
	if len(got.Steps) != 2 {
		t.Errorf("expected fresh steps, got %d", len(got.Steps))
	}
	if got.Status != domain.RideStatusActive {
		t.Errorf("recomputation must not regress status, got %s", got.Status)
	}
}
