package liveness

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"proxysmith/internal/metrics"
	"proxysmith/internal/proxy"
	pkgerrors "proxysmith/pkg/errors"
)

// SchedulerConfig holds configuration for the Scheduler.
type SchedulerConfig struct {
	Slots     int64
	BatchSize int
	Timeout   time.Duration
	Logger    *zap.Logger
	// OnUpdate, when set, is called after each status change outside the
	// scheduler lock. It may be called from several goroutines.
	OnUpdate func(Update)
}

// Scheduler owns the pending queue, the slot semaphore and the status map
// for one session.
type Scheduler struct {
	checker Checker
	config  SchedulerConfig
	log     *zap.Logger
	sem     *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	queue    []proxy.Endpoint
	queued   map[string]struct{}
	status   map[string]Status
	inFlight int
	busy     bool
	idle     chan struct{}
}

// NewScheduler creates a new Scheduler.
func NewScheduler(checker Checker, cfg SchedulerConfig) *Scheduler {
	if cfg.Slots <= 0 {
		cfg.Slots = 5
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	idle := make(chan struct{})
	close(idle)

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		checker: checker,
		config:  cfg,
		log:     log,
		sem:     semaphore.NewWeighted(cfg.Slots),
		ctx:     ctx,
		cancel:  cancel,
		queued:  make(map[string]struct{}),
		status:  make(map[string]Status),
		idle:    idle,
	}
}

// Close aborts in-flight batches. Their endpoints end up dead.
func (s *Scheduler) Close() {
	s.cancel()
}

// Enqueue adds endpoints that have not been checked yet. Endpoints already
// loading, finished or queued are skipped. Returns the number added.
func (s *Scheduler) Enqueue(eps []proxy.Endpoint) int {
	s.mu.Lock()
	added := 0
	for _, ep := range eps {
		id := ep.ID()
		if _, ok := s.queued[id]; ok {
			continue
		}
		if st := s.status[id].State; st == StateLoading || st.Terminal() {
			continue
		}
		s.pushLocked(id, ep)
		added++
	}
	s.mu.Unlock()

	if added > 0 {
		s.pump()
	}
	return added
}

// Reset starts a new probing cycle: finished endpoints go back to loading
// and are queued again. Endpoints currently loading are left alone.
func (s *Scheduler) Reset(eps []proxy.Endpoint) int {
	var updates []Update

	s.mu.Lock()
	for _, ep := range eps {
		id := ep.ID()
		if s.status[id].State == StateLoading {
			continue
		}
		st := Status{State: StateLoading}
		s.status[id] = st
		updates = append(updates, Update{ID: id, Status: st})
		if _, ok := s.queued[id]; !ok {
			s.pushLocked(id, ep)
		}
	}
	s.publishLocked()
	s.mu.Unlock()

	s.notify(updates)
	if len(updates) > 0 {
		s.pump()
	}
	return len(updates)
}

// Status returns the status for an identity, unknown if never seen.
func (s *Scheduler) Status(id string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.status[id]; ok {
		return st
	}
	return Status{State: StateUnknown}
}

// Snapshot returns a copy of the status map.
func (s *Scheduler) Snapshot() map[string]Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Status, len(s.status))
	for id, st := range s.status {
		out[id] = st
	}
	return out
}

// Stats counts tracked endpoints per state.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}

// Wait blocks until the queue is empty and no batch is in flight.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) pushLocked(id string, ep proxy.Endpoint) {
	s.queue = append(s.queue, ep)
	s.queued[id] = struct{}{}
	if !s.busy {
		s.busy = true
		s.idle = make(chan struct{})
	}
}

func (s *Scheduler) maybeIdleLocked() {
	if s.busy && len(s.queue) == 0 && s.inFlight == 0 {
		s.busy = false
		close(s.idle)
	}
}

// pump starts batches while slots and queued endpoints remain. It never
// blocks on the semaphore: a slot finishing a batch pumps again.
func (s *Scheduler) pump() {
	for {
		if !s.sem.TryAcquire(1) {
			return
		}

		s.mu.Lock()
		n := min(s.config.BatchSize, len(s.queue))
		if n == 0 {
			s.maybeIdleLocked()
			s.mu.Unlock()
			s.sem.Release(1)

			// An Enqueue that ran while this pump held the slot may have
			// failed TryAcquire; nobody else would start its batch.
			s.mu.Lock()
			pending := len(s.queue) > 0
			s.mu.Unlock()
			if pending {
				continue
			}
			return
		}
		batch := make([]proxy.Endpoint, n)
		copy(batch, s.queue[:n])
		s.queue = s.queue[n:]

		var updates []Update
		for _, ep := range batch {
			id := ep.ID()
			delete(s.queued, id)
			if s.status[id].State != StateLoading {
				st := Status{State: StateLoading}
				s.status[id] = st
				updates = append(updates, Update{ID: id, Status: st})
			}
		}
		s.inFlight++
		s.publishLocked()
		s.mu.Unlock()

		s.notify(updates)
		metrics.ProbeSlotsInFlight.Inc()
		go s.run(batch)
	}
}

// run checks one batch and applies the results.
func (s *Scheduler) run(batch []proxy.Endpoint) {
	ids := proxy.IDs(batch)
	s.log.Debug("probe batch started", zap.Int("size", len(ids)))

	ctx, cancel := context.WithTimeout(s.ctx, s.config.Timeout)
	start := time.Now()
	results, err := s.checker.Check(ctx, ids)
	elapsed := time.Since(start)
	cancel()

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
			err = errors.Join(pkgerrors.ErrProbeTimeout, err)
		}
		s.log.Warn("probe batch failed", zap.Error(&pkgerrors.ProbeError{Targets: ids, Err: err}))
		results = nil
	case len(results) < len(ids):
		outcome = "short"
		s.log.Warn("probe response shorter than batch",
			zap.Int("want", len(ids)), zap.Int("got", len(results)))
	}
	metrics.ProbeBatchesTotal.WithLabelValues(outcome).Inc()
	metrics.ProbeBatchDuration.Observe(elapsed.Seconds())

	s.apply(ids, results, elapsed)

	s.mu.Lock()
	s.inFlight--
	s.maybeIdleLocked()
	s.mu.Unlock()

	metrics.ProbeSlotsInFlight.Dec()
	s.sem.Release(1)
	s.log.Debug("probe batch finished", zap.String("outcome", outcome), zap.Duration("elapsed", elapsed))

	s.pump()
}

// apply moves each loading endpoint of the batch to active or dead. Entries
// missing from results are dead.
func (s *Scheduler) apply(ids []string, results []Result, elapsed time.Duration) {
	batchLatency := uint(elapsed.Milliseconds())
	updates := make([]Update, 0, len(ids))

	s.mu.Lock()
	for i, id := range ids {
		if s.status[id].State != StateLoading {
			continue
		}
		st := Status{State: StateDead}
		if i < len(results) && results[i].Alive {
			st.State = StateActive
			st.LatencyMs = batchLatency
			if results[i].LatencyMs > 0 {
				st.LatencyMs = uint(math.Round(results[i].LatencyMs))
			}
		}
		s.status[id] = st
		updates = append(updates, Update{ID: id, Status: st})
	}
	s.publishLocked()
	s.mu.Unlock()

	s.notify(updates)
}

func (s *Scheduler) notify(updates []Update) {
	if s.config.OnUpdate == nil {
		return
	}
	for _, u := range updates {
		s.config.OnUpdate(u)
	}
}

func (s *Scheduler) statsLocked() Stats {
	st := Stats{Queued: len(s.queue), InFlight: s.inFlight}
	for _, v := range s.status {
		switch v.State {
		case StateLoading:
			st.Loading++
		case StateActive:
			st.Active++
		case StateDead:
			st.Dead++
		}
	}
	return st
}

func (s *Scheduler) publishLocked() {
	st := s.statsLocked()
	metrics.EndpointsByState.WithLabelValues(string(StateLoading)).Set(float64(st.Loading))
	metrics.EndpointsByState.WithLabelValues(string(StateActive)).Set(float64(st.Active))
	metrics.EndpointsByState.WithLabelValues(string(StateDead)).Set(float64(st.Dead))
}
