package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"dispatch/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationRoutePlanned    NotificationType = "ROUTE_PLANNED"
	NotificationRideInvalidated NotificationType = "RIDE_INVALIDATED"
	NotificationStepFailed      NotificationType = "STEP_FAILED"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string // driver or operator ID
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService handles notification delivery. Actual delivery
// (push/email) is an independent queue-and-worker subsystem; here the
// events are composed and handed off.
type NotificationService struct{}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyRoutePlanned notifies the driver that the ride's route is ready.
func (s *NotificationService) NotifyRoutePlanned(ctx context.Context, ride *domain.Ride) error {
	s.send(ctx, Notification{
		Type:        NotificationRoutePlanned,
		RecipientID: ride.DriverID,
		Title:       "Route Planned",
		Message:     fmt.Sprintf("Route for %s is ready: %d stops", ride.Date, len(ride.Steps)),
		Data: map[string]interface{}{
			"ride_id": ride.ID,
			"date":    ride.Date,
			"stops":   len(ride.Steps),
		},
		CreatedAt: time.Now(),
	})

	// Flag stops that came back unresolved so the operator can fix the
	// underlying order data.
	for _, step := range ride.Steps {
		if step.Error == "" {
			continue
		}
		s.send(ctx, Notification{
			Type:        NotificationStepFailed,
			RecipientID: ride.DriverID,
			Title:       "Stop Needs Attention",
			Message:     fmt.Sprintf("Order %s could not be routed: %s", step.OrderID, step.Error),
			Data: map[string]interface{}{
				"ride_id":  ride.ID,
				"order_id": step.OrderID,
				"error":    step.Error,
			},
			CreatedAt: time.Now(),
		})
	}

	return nil
}

// NotifyRideInvalidated notifies the driver that the ride's route will be
// recomputed.
func (s *NotificationService) NotifyRideInvalidated(ctx context.Context, ride *domain.Ride, reason string) error {
	s.send(ctx, Notification{
		Type:        NotificationRideInvalidated,
		RecipientID: ride.DriverID,
		Title:       "Route Outdated",
		Message:     fmt.Sprintf("Route for %s will be recomputed: %s", ride.Date, reason),
		Data: map[string]interface{}{
			"ride_id": ride.ID,
			"reason":  reason,
		},
		CreatedAt: time.Now(),
	})
	return nil
}

// send delivers the notification. Replace with a real push/email gateway
// when the notification subsystem lands.
func (s *NotificationService) send(ctx context.Context, n Notification) {
	log.Printf("[NOTIFICATION] type=%s recipient=%s title=%q message=%q",
		n.Type, n.RecipientID, n.Title, n.Message)
}
