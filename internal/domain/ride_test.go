package domain

import "testing"

func TestRideStatusTransitions(t *testing.T) {
	testCases := []struct {
		from    RideStatus
		to      RideStatus
		allowed bool
	}{
		{RideStatusPlanned, RideStatusActive, true},
		{RideStatusPlanned, RideStatusCompleted, true},
		{RideStatusActive, RideStatusCompleted, true},
		{RideStatusActive, RideStatusPlanned, false},
		{RideStatusCompleted, RideStatusActive, false},
		{RideStatusCompleted, RideStatusPlanned, false},
		{RideStatusPlanned, RideStatusPlanned, false},
		{RideStatusCompleted, RideStatusCompleted, false},
	}

	for _, tc := range testCases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestNeedsComputation(t *testing.T) {
	ride := &Ride{Status: RideStatusPlanned}
	if !ride.NeedsComputation() {
		t.Error("planned ride with empty steps must need computation")
	}

	ride.Steps = []Step{{OrderID: "order-1", Type: StepTypeDelivery}}
	if ride.NeedsComputation() {
		t.Error("ride with steps must not need computation")
	}

	// Active and completed rides are never picked up by the periodic scan,
	// even with empty steps.
	for _, status := range []RideStatus{RideStatusActive, RideStatusCompleted} {
		ride := &Ride{Status: status}
		if ride.NeedsComputation() {
			t.Errorf("%s ride must not be discovered by the scan", status)
		}
	}
}

func TestDeliveryAddress(t *testing.T) {
	order := &Order{Street: "Main St 1", City: "Berlin", Zip: "10115"}
	if got := order.DeliveryAddress(); got != "Main St 1, 10115, Berlin" {
		t.Errorf("unexpected address: %q", got)
	}

	partial := &Order{Street: "Main St 1", City: "Berlin"}
	if got := partial.DeliveryAddress(); got != "Main St 1, Berlin" {
		t.Errorf("unexpected address: %q", got)
	}
}
