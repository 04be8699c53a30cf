package repository

import (
	"context"

	"dispatch/internal/domain"
)

// LogisticsRepository provides access to the single current depot and
// timing configuration record.
type LogisticsRepository interface {
	// Get retrieves the current logistics configuration.
	Get(ctx context.Context) (*domain.LogisticsConfig, error)

	// Update replaces the current logistics configuration.
	Update(ctx context.Context, cfg *domain.LogisticsConfig) error
}
