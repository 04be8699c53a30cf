package postgres

import (
	"context"
	"database/sql"
	"errors"

	"dispatch/internal/domain"
	"dispatch/internal/repository"
)

// LogisticsRepository is a PostgreSQL implementation of
// repository.LogisticsRepository. The table holds a single row.
type LogisticsRepository struct {
	q Querier
}

// NewLogisticsRepository creates a new PostgreSQL logistics repository.
func NewLogisticsRepository(db *sql.DB) *LogisticsRepository {
	return &LogisticsRepository{q: db}
}

// Get retrieves the current logistics configuration.
func (r *LogisticsRepository) Get(ctx context.Context) (*domain.LogisticsConfig, error) {
	query := `
		SELECT depot_address, loading_seconds_per_item, stop_time_minutes, unloading_paid_seconds, unloading_unpaid_seconds
		FROM logistics_config LIMIT 1
	`

	var cfg domain.LogisticsConfig
	err := r.q.QueryRowContext(ctx, query).Scan(
		&cfg.DepotAddress,
		&cfg.LoadingSecondsPerItem,
		&cfg.StopTimeMinutes,
		&cfg.UnloadingPaidSeconds,
		&cfg.UnloadingUnpaidSeconds,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &cfg, nil
}

// Update replaces the current logistics configuration.
func (r *LogisticsRepository) Update(ctx context.Context, cfg *domain.LogisticsConfig) error {
	query := `
		UPDATE logistics_config
		SET depot_address = $1, loading_seconds_per_item = $2, stop_time_minutes = $3, unloading_paid_seconds = $4, unloading_unpaid_seconds = $5
	`

	result, err := r.q.ExecContext(ctx, query,
		cfg.DepotAddress,
		cfg.LoadingSecondsPerItem,
		cfg.StopTimeMinutes,
		cfg.UnloadingPaidSeconds,
		cfg.UnloadingUnpaidSeconds,
	)
	if err != nil {
		return err
	}

	return requireRowsAffected(result)
}
