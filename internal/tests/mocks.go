package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/optimizer"
	"dispatch/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is a mock implementation of RideRepository.
type MockRideRepository struct {
	mu    sync.RWMutex
	rides map[string]*domain.Ride

	// Counters for verification
	CreateCallCount      int32
	UpdateCallCount      int32
	UpdateStepsCallCount int32

	// Error injection
	CreateError      error
	UpdateError      error
	UpdateStepsError error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[string]*domain.Ride),
	}
}

// AddRide adds a ride to the mock repository.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = ride
}

// GetRide returns the stored ride for test assertions.
func (m *MockRideRepository) GetRide(id string) *domain.Ride {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rides[id]
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[ride.ID] = copyRide(ride)
	return nil
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyRide(ride), nil
}

func (m *MockRideRepository) GetAll(ctx context.Context) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Ride, 0, len(m.rides))
	for _, r := range m.rides {
		result = append(result, copyRide(r))
	}
	return result, nil
}

func (m *MockRideRepository) GetByDriverAndDate(ctx context.Context, driverID, date string) (*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rides {
		if r.DriverID == driverID && r.Date == date && r.Status != domain.RideStatusCompleted {
			return copyRide(r), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockRideRepository) ListPendingComputation(ctx context.Context) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if r.Status == domain.RideStatusPlanned && len(r.Steps) == 0 {
			result = append(result, copyRide(r))
		}
	}
	// Stable order, as the discovery query guarantees.
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockRideRepository) ListContainingOrder(ctx context.Context, orderID string) ([]*domain.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Ride
	for _, r := range m.rides {
		if r.Status == domain.RideStatusCompleted {
			continue
		}
		if r.ContainsOrder(orderID) {
			result = append(result, copyRide(r))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *MockRideRepository) Update(ctx context.Context, ride *domain.Ride) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rides[ride.ID]; !ok {
		return repository.ErrNotFound
	}
	m.rides[ride.ID] = copyRide(ride)
	return nil
}

func (m *MockRideRepository) UpdateSteps(ctx context.Context, rideID string, steps []domain.Step) error {
	atomic.AddInt32(&m.UpdateStepsCallCount, 1)
	if m.UpdateStepsError != nil {
		return m.UpdateStepsError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[rideID]
	if !ok {
		return repository.ErrNotFound
	}
	ride.Steps = append([]domain.Step(nil), steps...)
	return nil
}

func copyRide(ride *domain.Ride) *domain.Ride {
	cp := *ride
	cp.OrderIDs = append([]string(nil), ride.OrderIDs...)
	cp.Steps = append([]domain.Step(nil), ride.Steps...)
	return &cp
}

// ──────────────────────────────────────────────
// MOCK ORDER REPOSITORY
// ──────────────────────────────────────────────

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order

	// Counters for verification
	UpdateAddressCallCount int32

	// Error injection
	GetError           error
	UpdateAddressError error
}

// NewMockOrderRepository creates a new mock order repository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]*domain.Order),
	}
}

// AddOrder adds an order to the mock repository.
func (m *MockOrderRepository) AddOrder(order *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *MockOrderRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Order, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Order
	for _, id := range ids {
		if order, ok := m.orders[id]; ok {
			cp := *order
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *MockOrderRepository) UpdateAddress(ctx context.Context, id, street, city, zip string) error {
	atomic.AddInt32(&m.UpdateAddressCallCount, 1)
	if m.UpdateAddressError != nil {
		return m.UpdateAddressError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	order.Street = street
	order.City = city
	order.Zip = zip
	return nil
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *driver
	return &cp, nil
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		cp := *d
		result = append(result, &cp)
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK LOGISTICS REPOSITORY
// ──────────────────────────────────────────────

// MockLogisticsRepository is a mock implementation of LogisticsRepository.
type MockLogisticsRepository struct {
	mu  sync.RWMutex
	cfg domain.LogisticsConfig

	// Error injection
	GetError error
}

// NewMockLogisticsRepository creates a mock with sensible defaults.
func NewMockLogisticsRepository() *MockLogisticsRepository {
	return &MockLogisticsRepository{
		cfg: domain.LogisticsConfig{
			DepotAddress:           "Kitchen Lane 1, 10115 Berlin",
			LoadingSecondsPerItem:  20,
			StopTimeMinutes:        5,
			UnloadingPaidSeconds:   60,
			UnloadingUnpaidSeconds: 180,
		},
	}
}

func (m *MockLogisticsRepository) Get(ctx context.Context) (*domain.LogisticsConfig, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := m.cfg
	return &cp, nil
}

func (m *MockLogisticsRepository) Update(ctx context.Context, cfg *domain.LogisticsConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = *cfg
	return nil
}

// ──────────────────────────────────────────────
// MOCK OPTIMIZER CLIENT
// ──────────────────────────────────────────────

// MockOptimizer is a mock implementation of the route-optimization client.
// By default it echoes the requested stops back in order with synthetic
// times; Response or ResponseFn override that, OptimizeError fails the call.
type MockOptimizer struct {
	mu          sync.Mutex
	CallCount   int32
	LastRequest optimizer.Request

	Response      []optimizer.RouteStep
	ResponseFn    func(req optimizer.Request) ([]optimizer.RouteStep, error)
	OptimizeError error
}

// NewMockOptimizer creates a new mock optimizer client.
func NewMockOptimizer() *MockOptimizer {
	return &MockOptimizer{}
}

func (m *MockOptimizer) Optimize(ctx context.Context, req optimizer.Request) ([]optimizer.RouteStep, error) {
	atomic.AddInt32(&m.CallCount, 1)
	m.mu.Lock()
	m.LastRequest = req
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.OptimizeError != nil {
		return nil, m.OptimizeError
	}
	if m.ResponseFn != nil {
		return m.ResponseFn(req)
	}
	if m.Response != nil {
		return m.Response, nil
	}

	// Default: visit stops in request order, ten minutes apart.
	steps := make([]optimizer.RouteStep, 0, len(req.Stops))
	base, _ := time.Parse("15:04", req.DepartureTime)
	for i, stop := range req.Stops {
		arrive := base.Add(time.Duration(i+1) * 10 * time.Minute)
		depart := arrive.Add(5 * time.Minute)
		steps = append(steps, optimizer.RouteStep{
			OrderID:       stop.ID,
			Type:          "delivery",
			Address:       stop.Address,
			ArrivalTime:   arrive.Format("15:04"),
			DepartureTime: depart.Format("15:04"),
			DistanceKm:    float64(i+1) * 2.5,
		})
	}
	return steps, nil
}

// ──────────────────────────────────────────────
// MOCK SCHEDULER LOCK
// ──────────────────────────────────────────────

// MockSchedulerLock is a mock implementation of the scheduler pass lock.
type MockSchedulerLock struct {
	AcquireCallCount int32
	ReleaseCallCount int32

	Held         bool // simulate the lock being held elsewhere
	AcquireError error
}

func (m *MockSchedulerLock) AcquireSchedulerLock(ctx context.Context, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	return !m.Held, nil
}

func (m *MockSchedulerLock) ReleaseSchedulerLock(ctx context.Context) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	return nil
}
