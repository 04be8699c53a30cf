package service

import (
	"context"
	"log"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"

	"dispatch/internal/redis"
	"dispatch/internal/repository"
)

// Scheduler periodically discovers rides needing route computation and
// drives them through the RoutePlanner one at a time. Passes never overlap:
// the next tick is armed only after the current pass finishes, so a slow
// pass delays the next one instead of running concurrently with it.
type Scheduler struct {
	planner  *RoutePlanner
	rideRepo repository.RideRepository
	locks    redis.SchedulerLockInterface
	nrApp    *newrelic.Application
	interval time.Duration

	stop chan struct{}
	done chan struct{}
}

// NewScheduler creates a new Scheduler. locks and nrApp may be nil.
func NewScheduler(
	planner *RoutePlanner,
	rideRepo repository.RideRepository,
	locks redis.SchedulerLockInterface,
	nrApp *newrelic.Application,
	interval time.Duration,
) *Scheduler {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Scheduler{
		planner:  planner,
		rideRepo: rideRepo,
		locks:    locks,
		nrApp:    nrApp,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the scheduling loop in a background goroutine.
func (s *Scheduler) Start() {
	go s.loop()
	log.Printf("scheduler started, interval=%s", s.interval)
}

// Stop stops the scheduling loop and waits for an in-flight pass to finish.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
	log.Println("scheduler stopped")
}

func (s *Scheduler) loop() {
	defer close(s.done)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-timer.C:
			s.runPass()
			timer.Reset(s.interval)
		}
	}
}

func (s *Scheduler) runPass() {
	ctx := context.Background()

	if s.nrApp != nil {
		txn := s.nrApp.StartTransaction("scheduler/pass")
		defer txn.End()
		ctx = newrelic.NewContext(ctx, txn)
	}

	if err := s.RunPass(ctx); err != nil {
		log.Printf("scheduler: pass failed: %v", err)
	}
}

// RunPass performs one full discovery-and-process pass. Per-ride failures
// are logged and contained; a failed ride keeps its empty steps and is
// retried on the next pass. Exported so tests and tooling can drive passes
// directly.
func (s *Scheduler) RunPass(ctx context.Context) error {
	if s.locks != nil {
		acquired, err := s.locks.AcquireSchedulerLock(ctx, 2*s.interval)
		if err != nil {
			return err
		}
		if !acquired {
			log.Println("scheduler: pass lock held elsewhere, skipping")
			return nil
		}
		defer func() {
			if err := s.locks.ReleaseSchedulerLock(ctx); err != nil {
				log.Printf("scheduler: release lock: %v", err)
			}
		}()
	}

	rides, err := s.rideRepo.ListPendingComputation(ctx)
	if err != nil {
		return err
	}

	// Strictly sequential: one optimization call in flight at a time keeps
	// the external service's rate limits and cost predictable.
	for _, ride := range rides {
		if !ride.NeedsComputation() {
			continue
		}
		if len(ride.OrderIDs) == 0 {
			log.Printf("scheduler: ride %s has no orders, skipping", ride.ID)
			continue
		}

		if err := s.planner.ComputeRide(ctx, ride); err != nil {
			log.Printf("scheduler: ride %s failed, will retry next pass: %v", ride.ID, err)
			continue
		}
		log.Printf("scheduler: ride %s planned, %d steps", ride.ID, len(ride.Steps))
	}

	return nil
}
