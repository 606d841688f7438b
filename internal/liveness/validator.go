package liveness

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"proxysmith/internal/metrics"
	"proxysmith/internal/proxy"
)

// ValidatorConfig holds configuration for bulk validation.
type ValidatorConfig struct {
	Attempts    int
	Backoff     time.Duration
	Timeout     time.Duration
	Concurrency int
	Logger      *zap.Logger
}

// Verdict is the bulk-validation outcome for one endpoint.
type Verdict struct {
	Endpoint proxy.Endpoint
	Active   bool
}

// Progress is reported after each endpoint finishes.
type Progress struct {
	Total   int
	Checked int
	Active  int
	Dead    int
}

// ProgressFunc is called each time a single endpoint completes.
type ProgressFunc func(Progress)

// Validator probes endpoints one by one with a small retry budget.
type Validator struct {
	checker Checker
	config  ValidatorConfig
	log     *zap.Logger
}

// NewValidator creates a new Validator.
func NewValidator(checker Checker, cfg ValidatorConfig) *Validator {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 2
	}
	if cfg.Backoff < 0 {
		cfg.Backoff = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 4 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{checker: checker, config: cfg, log: log}
}

// Probe reports whether ep answers alive within the attempt budget. Failed
// requests are retried after the backoff; a negative answer is retried
// immediately.
func (v *Validator) Probe(ctx context.Context, ep proxy.Endpoint) bool {
	id := ep.ID()
	for attempt := 1; attempt <= v.config.Attempts; attempt++ {
		actx, cancel := context.WithTimeout(ctx, v.config.Timeout)
		results, err := v.checker.Check(actx, []string{id})
		cancel()

		if err == nil {
			if len(results) > 0 && results[0].Alive {
				return true
			}
			continue
		}

		v.log.Debug("validation attempt failed",
			zap.String("endpoint", id), zap.Int("attempt", attempt), zap.Error(err))
		if attempt == v.config.Attempts {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(v.config.Backoff):
		}
	}
	return false
}

// Run validates eps with bounded concurrency. Verdicts keep input order.
func (v *Validator) Run(ctx context.Context, eps []proxy.Endpoint, progress ProgressFunc) []Verdict {
	verdicts := make([]Verdict, len(eps))

	var mu sync.Mutex
	p := Progress{Total: len(eps)}

	var g errgroup.Group
	g.SetLimit(v.config.Concurrency)
	for i, ep := range eps {
		g.Go(func() error {
			ok := v.Probe(ctx, ep)
			verdicts[i] = Verdict{Endpoint: ep, Active: ok}

			result := "dead"
			if ok {
				result = "active"
			}
			metrics.ValidationsTotal.WithLabelValues(result).Inc()

			mu.Lock()
			p.Checked++
			if ok {
				p.Active++
			} else {
				p.Dead++
			}
			snapshot := p
			if progress != nil {
				progress(snapshot)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return verdicts
}

// Active returns the endpoints whose verdict is active, in order.
func Active(verdicts []Verdict) []proxy.Endpoint {
	var out []proxy.Endpoint
	for _, v := range verdicts {
		if v.Active {
			out = append(out, v.Endpoint)
		}
	}
	return out
}
