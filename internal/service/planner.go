package service

import (
	"context"
	"fmt"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/optimizer"
	"dispatch/internal/redis"
	"dispatch/internal/repository"
)

// OptimizerClient defines the route-optimization client contract.
// This interface allows for testing with mock implementations.
type OptimizerClient interface {
	Optimize(ctx context.Context, req optimizer.Request) ([]optimizer.RouteStep, error)
}

// Ensure the HTTP client implements OptimizerClient.
var _ OptimizerClient = (*optimizer.Client)(nil)

// RoutePlanner drives a single ride through order lookup, optimization and
// reconciliation, and persists the resulting steps. It is shared by the
// periodic scheduler and by out-of-band recomputation of active rides.
type RoutePlanner struct {
	rideRepo      repository.RideRepository
	orderRepo     repository.OrderRepository
	logisticsRepo repository.LogisticsRepository
	client        OptimizerClient
	cache         redis.LogisticsCacheInterface
	notifier      *NotificationService
	callTimeout   time.Duration
}

// NewRoutePlanner creates a new RoutePlanner. cache and notifier may be nil.
func NewRoutePlanner(
	rideRepo repository.RideRepository,
	orderRepo repository.OrderRepository,
	logisticsRepo repository.LogisticsRepository,
	client OptimizerClient,
	cache redis.LogisticsCacheInterface,
	notifier *NotificationService,
	callTimeout time.Duration,
) *RoutePlanner {
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &RoutePlanner{
		rideRepo:      rideRepo,
		orderRepo:     orderRepo,
		logisticsRepo: logisticsRepo,
		client:        client,
		cache:         cache,
		notifier:      notifier,
		callTimeout:   callTimeout,
	}
}

// ComputeRide computes and persists the optimized step sequence for a ride.
// Steps are overwritten wholesale; the computation is idempotent on the
// same inputs. Any failure leaves the ride's steps untouched (still empty
// when called from the scheduler) so it stays eligible for retry.
func (p *RoutePlanner) ComputeRide(ctx context.Context, ride *domain.Ride) error {
	if ride.Status == domain.RideStatusCompleted {
		return ErrRideCompleted
	}
	if len(ride.OrderIDs) == 0 {
		return ErrEmptyOrderSet
	}

	orders, err := p.orderRepo.GetByIDs(ctx, ride.OrderIDs)
	if err != nil {
		return fmt.Errorf("fetch orders: %w", err)
	}

	byID := make(map[string]*domain.Order, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}

	// A dangling order reference means the order store and the ride
	// disagree; the operator has to remove the order from the ride.
	stops := make([]optimizer.Stop, 0, len(ride.OrderIDs))
	for _, id := range ride.OrderIDs {
		order, ok := byID[id]
		if !ok {
			return fmt.Errorf("ride %s references order %s: %w", ride.ID, id, ErrOrderNotFound)
		}
		stops = append(stops, optimizer.Stop{
			ID:            order.ID,
			Address:       order.DeliveryAddress(),
			IsPaid:        order.IsPaid,
			ItemsCount:    order.ItemsCount,
			CustomerName:  order.CustomerName,
			CustomerPhone: order.CustomerPhone,
			Note:          order.Note,
		})
	}

	logistics, err := p.getLogistics(ctx)
	if err != nil {
		return fmt.Errorf("fetch logistics config: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	computed, err := p.client.Optimize(callCtx, optimizer.Request{
		DepotAddress:  logistics.DepotAddress,
		Stops:         stops,
		DepartureTime: ride.DepartureTime,
		Logistics: optimizer.Logistics{
			LoadingSecondsPerItem:  logistics.LoadingSecondsPerItem,
			StopTimeMinutes:        logistics.StopTimeMinutes,
			UnloadingPaidSeconds:   logistics.UnloadingPaidSeconds,
			UnloadingUnpaidSeconds: logistics.UnloadingUnpaidSeconds,
		},
	})
	if err != nil {
		return fmt.Errorf("optimize ride %s: %w", ride.ID, err)
	}

	steps := Reconcile(stops, computed)

	if err := p.rideRepo.UpdateSteps(ctx, ride.ID, steps); err != nil {
		return fmt.Errorf("persist steps for ride %s: %w", ride.ID, err)
	}
	ride.Steps = steps

	if p.notifier != nil {
		_ = p.notifier.NotifyRoutePlanned(ctx, ride)
	}

	return nil
}

// getLogistics reads the logistics configuration through the cache.
func (p *RoutePlanner) getLogistics(ctx context.Context) (*domain.LogisticsConfig, error) {
	if p.cache != nil {
		if cfg, err := p.cache.GetLogistics(ctx); err == nil && cfg != nil {
			return cfg, nil
		}
	}

	cfg, err := p.logisticsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		_ = p.cache.SetLogistics(ctx, cfg)
	}

	return cfg, nil
}
