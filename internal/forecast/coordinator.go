// Package forecast coordinates forecast fetches with the snapshot store.
//
// At most one request is current at a time. Every RequestRefresh bumps a
// sequence number; a completion is applied only when its sequence number
// is still the latest one and the coordinator has not been torn down.
// Workers never touch the store: they hand a Completion to the UI loop,
// which calls Apply.
package forecast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ngmaloney/sunshine-terminal/internal/models"
	"github.com/ngmaloney/sunshine-terminal/internal/observability"
	"github.com/ngmaloney/sunshine-terminal/internal/store"
	"go.uber.org/zap"
)

// Fetcher returns the daily forecast records for a location. Temperatures
// are Celsius whatever the unit system; failures should wrap one of the
// package's Err* sentinels.
type Fetcher interface {
	Fetch(ctx context.Context, location string, units models.UnitSystem) ([]models.ForecastRecord, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context, location string, units models.UnitSystem) ([]models.ForecastRecord, error)

// Fetch implements Fetcher
func (f FetcherFunc) Fetch(ctx context.Context, location string, units models.UnitSystem) ([]models.ForecastRecord, error) {
	return f(ctx, location, units)
}

// Request identifies one RequestRefresh call
type Request struct {
	Seq      uint64
	ID       string
	Location string
	Units    models.UnitSystem
	IssuedAt time.Time
}

// Completion is what a worker hands back to the UI loop
type Completion struct {
	Request  Request
	Snapshot *models.Snapshot
	Err      error // *FetchError when set
}

// Outcome is how Apply handled a completion
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeFailed
	OutcomeDiscarded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeFailed:
		return "failed"
	case OutcomeDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) { c.logger = observability.OrNop(logger) }
}

// WithClock overrides the clock used for snapshot timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithFetchTimeout bounds each fetch. Zero means no deadline.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

// Coordinator owns the lifecycle of forecast fetches for one view
type Coordinator struct {
	fetcher Fetcher
	store   *store.Store
	logger  *zap.Logger
	now     func() time.Time
	timeout time.Duration

	completions chan Completion
	done        chan struct{}
	once        sync.Once
	wg          sync.WaitGroup

	mu       sync.Mutex
	seq      uint64
	latest   Request
	pending  bool
	cancel   context.CancelFunc
	applied  bool
	tornDown bool
}

// New creates a coordinator that publishes into st
func New(fetcher Fetcher, st *store.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher:     fetcher,
		store:       st,
		logger:      zap.NewNop(),
		now:         time.Now,
		completions: make(chan Completion, 4),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Completions delivers finished fetches, stale ones included. Pass each
// one to Apply on the UI loop.
func (c *Coordinator) Completions() <-chan Completion {
	return c.completions
}

// Done is closed by Teardown
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// RequestRefresh starts a fetch and returns without waiting for it. The
// previous request, if still running, is canceled and its result will be
// discarded. After Teardown it returns the zero Request and does nothing.
func (c *Coordinator) RequestRefresh(location string, units models.UnitSystem) Request {
	c.mu.Lock()
	if c.tornDown {
		c.mu.Unlock()
		return Request{}
	}
	if c.cancel != nil {
		c.cancel()
	}

	c.seq++
	req := Request{
		Seq:      c.seq,
		ID:       uuid.NewString(),
		Location: location,
		Units:    units,
		IssuedAt: c.now(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	if c.timeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, c.timeout)
		parent := cancel
		cancel = func() {
			timeoutCancel()
			parent()
		}
	}
	c.cancel = cancel
	c.latest = req
	c.pending = true
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Debug("forecast refresh requested",
		zap.Uint64("seq", req.Seq),
		zap.String("request_id", req.ID),
		zap.String("location", location),
		zap.Stringer("units", units),
	)

	go c.run(ctx, cancel, req)
	return req
}

func (c *Coordinator) run(ctx context.Context, cancel context.CancelFunc, req Request) {
	defer c.wg.Done()
	defer cancel()

	start := time.Now()
	comp := Completion{Request: req}

	records, err := c.fetch(ctx, req)
	if err == nil {
		comp.Snapshot, err = models.NewSnapshot(req.Location, records, c.now())
	}
	if err != nil {
		comp.Err = &FetchError{Location: req.Location, RequestID: req.ID, Err: err}
	}
	observability.FetchDuration.Observe(time.Since(start).Seconds())

	select {
	case c.completions <- comp:
	case <-c.done:
	}
}

// fetch calls the fetcher, turning a panic into an error so a bad fetcher
// cannot take the UI down with it.
func (c *Coordinator) fetch(ctx context.Context, req Request) (records []models.ForecastRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: fetcher panicked: %v", ErrUpstream, r)
		}
	}()
	return c.fetcher.Fetch(ctx, req.Location, req.Units)
}

// Apply publishes a completion if it belongs to the latest request and the
// coordinator is still live. A successful fetch replaces the store snapshot,
// which notifies the store's observers before Apply returns. A failed fetch
// leaves the previous snapshot in place and returns its *FetchError.
//
// Apply must be called from the goroutine that owns the store. Store
// observers must not call back into the coordinator.
func (c *Coordinator) Apply(comp Completion) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fields := []zap.Field{
		zap.Uint64("seq", comp.Request.Seq),
		zap.String("request_id", comp.Request.ID),
		zap.String("location", comp.Request.Location),
	}

	if c.tornDown || comp.Request.Seq == 0 || comp.Request.Seq != c.seq {
		observability.FetchOutcomesTotal.WithLabelValues(OutcomeDiscarded.String()).Inc()
		c.logger.Debug("discarding stale forecast result", append(fields, zap.Uint64("latest_seq", c.seq))...)
		return OutcomeDiscarded, ErrStaleResult
	}
	c.pending = false

	if comp.Err != nil {
		observability.FetchOutcomesTotal.WithLabelValues(OutcomeFailed.String()).Inc()
		c.logger.Warn("forecast fetch failed",
			append(fields, zap.String("category", string(Categorize(comp.Err))), zap.Error(comp.Err))...)
		return OutcomeFailed, comp.Err
	}

	if err := c.store.Replace(comp.Snapshot); err != nil {
		fe := &FetchError{Location: comp.Request.Location, RequestID: comp.Request.ID, Err: err}
		observability.FetchOutcomesTotal.WithLabelValues(OutcomeFailed.String()).Inc()
		c.logger.Warn("forecast snapshot rejected", append(fields, zap.Error(err))...)
		return OutcomeFailed, fe
	}

	c.applied = true
	observability.FetchOutcomesTotal.WithLabelValues(OutcomeApplied.String()).Inc()
	c.logger.Info("forecast applied", append(fields, zap.Int("days", comp.Snapshot.Len()))...)
	return OutcomeApplied, nil
}

// Seed installs a cached snapshot while nothing fresher is available: the
// store is empty, no fetch has been applied and the coordinator is live.
// It reports whether the snapshot was installed.
func (c *Coordinator) Seed(snapshot *models.Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tornDown || c.applied || c.store.Current() != nil {
		return false
	}
	if err := c.store.Replace(snapshot); err != nil {
		c.logger.Warn("cached forecast rejected", zap.Error(err))
		return false
	}
	c.logger.Info("cached forecast installed",
		zap.String("location", snapshot.Location),
		zap.Time("fetched_at", snapshot.FetchedAt),
	)
	return true
}

// Pending reports whether the latest request is still outstanding
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending && !c.tornDown
}

// Latest returns the most recent request
func (c *Coordinator) Latest() Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Teardown makes every pending and future completion a no-op and cancels
// the in-flight fetch. It is safe to call more than once.
func (c *Coordinator) Teardown() {
	c.once.Do(func() {
		c.mu.Lock()
		c.tornDown = true
		if c.cancel != nil {
			c.cancel()
		}
		close(c.done)
		c.mu.Unlock()

		c.logger.Debug("forecast coordinator torn down", zap.Uint64("last_seq", c.seq))
	})
}

// Wait blocks until every worker has returned
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
