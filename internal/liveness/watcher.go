package liveness

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"proxysmith/internal/proxy"
)

// Watcher starts a new probing cycle for the tracked endpoints on a fixed
// interval.
type Watcher struct {
	scheduler gocron.Scheduler
	prober    *Scheduler
	interval  time.Duration
	log       *zap.Logger

	mu      sync.Mutex
	tracked []proxy.Endpoint
	running bool
}

// NewWatcher creates a new watcher around s.
func NewWatcher(s *Scheduler, interval time.Duration, log *zap.Logger) (*Watcher, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("watch interval must be positive, got %s", interval)
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		scheduler: scheduler,
		prober:    s,
		interval:  interval,
		log:       log,
	}, nil
}

// Track replaces the set of endpoints re-probed every cycle.
func (w *Watcher) Track(eps []proxy.Endpoint) {
	w.mu.Lock()
	w.tracked = slices.Clone(eps)
	w.mu.Unlock()
}

// Start schedules the periodic cycle and probes the tracked set once.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return fmt.Errorf("watcher is already running")
	}

	_, err := w.scheduler.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(w.cycle),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create probe job: %w", err)
	}

	w.scheduler.Start()
	w.running = true

	w.prober.Enqueue(w.tracked)
	return nil
}

// Stop stops the periodic cycle. In-flight batches are not cancelled.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return fmt.Errorf("watcher is not running")
	}
	if err := w.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	w.running = false
	return nil
}

// IsRunning returns whether the watcher is running
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) cycle() {
	w.mu.Lock()
	eps := slices.Clone(w.tracked)
	w.mu.Unlock()

	n := w.prober.Reset(eps)
	st := w.prober.Stats()
	w.log.Info("probe cycle started",
		zap.Int("reset", n),
		zap.Int("active", st.Active),
		zap.Int("dead", st.Dead),
		zap.Int("loading", st.Loading))
}
