package repository

import (
	"context"

	"dispatch/internal/domain"
)

// OrderRepository defines the read/write operations ride planning needs
// from the order store. The rest of the order lifecycle is owned elsewhere.
type OrderRepository interface {
	// GetByID retrieves an order by ID.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// GetByIDs retrieves orders for an explicit id set. Missing ids are
	// simply absent from the result, not an error.
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Order, error)

	// UpdateAddress updates an order's delivery address fields.
	UpdateAddress(ctx context.Context, id, street, city, zip string) error
}
