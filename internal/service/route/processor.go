package route

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"commute-route-service/internal/apperr"
	"commute-route-service/internal/domain"
	"commute-route-service/internal/logx"
)

// FailedError reports a request that could not be completed within the retry budget
// or failed with a non-retryable error.
type FailedError struct {
	Stage    string
	Attempts int
	Err      error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s): %v", e.Stage, e.Attempts, e.Err)
}

func (e *FailedError) Unwrap() error { return e.Err }

// Processor resolves consumed requests and writes the result to the route store.
type Processor struct {
	resolver *Resolver
	store    RouteStore
	logger   logx.Logger
	cfg      RetryConfig
	retries  *prometheus.CounterVec
	resolved prometheus.Counter
}

// NewProcessor creates a Processor. Either counter may be nil.
func NewProcessor(resolver *Resolver, store RouteStore, logger logx.Logger, cfg RetryConfig, retries *prometheus.CounterVec, resolved prometheus.Counter) *Processor {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Processor{
		resolver: resolver,
		store:    store,
		logger:   logger,
		cfg:      cfg,
		retries:  retries,
		resolved: resolved,
	}
}

// Handle resolves req and stores the route. Retryable failures of each step are repeated
// with exponential backoff. It returns *FailedError once a step gives up, and the context
// error when ctx ends first.
func (p *Processor) Handle(ctx context.Context, req domain.RoutedRequest) error {
	log := p.logger.With(
		logx.String("request_id", req.RequestID),
		logx.String("user_id", req.UserID),
	)

	var resolved domain.ResolvedRoute
	if err := p.retry(ctx, log, "resolve", func() error {
		r, err := p.resolver.Resolve(ctx, req)
		if err != nil {
			return err
		}
		resolved = r
		return nil
	}); err != nil {
		return err
	}

	if err := p.retry(ctx, log, "store", func() error {
		if err := p.store.Set(ctx, req.UserID, resolved); err != nil {
			return fmt.Errorf("store route: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}

	if p.resolved != nil {
		p.resolved.Inc()
	}
	log.Info("route cached",
		logx.String("depart_at", domain.FormatLocal(resolved.DepartAt)),
		logx.Int("total_duration_sec", resolved.TotalDurationSec),
		logx.Int("segments", len(resolved.Segments)),
	)
	return nil
}

func (p *Processor) retry(ctx context.Context, log logx.Logger, stage string, fn func() error) error {
	var lastErr error
	attempt := 1
	for ; attempt <= p.cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == p.cfg.MaxAttempts || !apperr.Retryable(err) {
			break
		}

		delay := backoff(p.cfg.BaseDelay, p.cfg.MaxDelay, attempt)
		kind := apperr.Kind(err)
		if p.retries != nil {
			p.retries.WithLabelValues(kind).Inc()
		}
		log.Warn("route "+stage+" retry",
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.String("kind", kind),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, delay) {
			return ctx.Err()
		}
	}

	log.Error("route request failed",
		logx.String("stage", stage),
		logx.Int("attempts", attempt),
		logx.String("kind", apperr.Kind(lastErr)),
		logx.Err(lastErr),
	)
	return &FailedError{Stage: stage, Attempts: attempt, Err: lastErr}
}
