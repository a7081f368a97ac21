package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"commute-route-service/internal/domain"
	"commute-route-service/internal/logx"
	"commute-route-service/internal/metrics"
)

// Config controls the tick cadence and the selection window.
type Config struct {
	Interval     time.Duration
	LookaheadMin int
}

// Scheduler periodically selects commute candidates and publishes one route request each.
// Ticks never overlap: a tick runs to completion before the next wait starts.
type Scheduler struct {
	selector  candidateSelector
	publisher requestPublisher
	logger    logx.Logger
	metrics   *metrics.Scheduler
	cfg       Config
	now       func() time.Time
}

// New creates a Scheduler. m may be nil.
func New(selector candidateSelector, publisher requestPublisher, logger logx.Logger, m *metrics.Scheduler, cfg Config) (*Scheduler, error) {
	if selector == nil || publisher == nil {
		return nil, errors.New("scheduler: selector and publisher are required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("scheduler: interval must be positive, got %s", cfg.Interval)
	}
	if cfg.LookaheadMin <= 0 {
		cfg.LookaheadMin = domain.DefaultLookaheadMin
	}
	return &Scheduler{
		selector:  selector,
		publisher: publisher,
		logger:    logger,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

// TickResult summarizes one tick.
type TickResult struct {
	Selected  int
	Published int
	Skipped   int
}

// Tick selects the candidates for the current window and publishes them in deadline order.
// Candidates with invalid data are skipped. A selector or broker failure aborts the tick.
func (s *Scheduler) Tick(ctx context.Context) (TickResult, error) {
	var res TickResult
	now := s.now()
	s.logger.Info("scheduler tick started",
		logx.Time("now", now),
		logx.Int("lookahead_min", s.cfg.LookaheadMin),
	)

	candidates, err := s.selector.Select(ctx, now, s.cfg.LookaheadMin)
	if err != nil {
		return res, err
	}
	res.Selected = len(candidates)
	s.add(func(m *metrics.Scheduler) { m.CandidatesSelected.Add(float64(len(candidates))) })
	s.logger.Info("candidates fetched", logx.Int("count", len(candidates)))

	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			res.Skipped++
			s.add(func(m *metrics.Scheduler) { m.CandidatesSkipped.Inc() })
			s.logger.Warn("candidate skipped",
				logx.String("user_id", c.UserID),
				logx.Err(err),
			)
			continue
		}

		requestID, err := s.publisher.Publish(ctx, c)
		if err != nil {
			return res, fmt.Errorf("publish for user %s: %w", c.UserID, err)
		}
		res.Published++
		s.add(func(m *metrics.Scheduler) { m.RequestsPublished.Inc() })
		s.logger.Info("route request published",
			logx.String("user_id", c.UserID),
			logx.String("request_id", requestID),
			logx.String("arrive_by", domain.FormatLocal(c.ArriveBy)),
		)
	}
	return res, nil
}

// Run ticks immediately and then every interval until ctx is cancelled.
// Tick failures are logged and counted; they never stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		s.runTick(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.logger.Debug("scheduler sleeping", logx.Duration("interval", s.cfg.Interval))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context) {
	start := time.Now()
	res, err := s.Tick(ctx)
	if err != nil {
		if ctx.Err() != nil {
			s.logger.Info("scheduler tick interrupted", logx.Err(err))
			return
		}
		s.add(func(m *metrics.Scheduler) { m.TickFailures.Inc() })
		s.logger.Error("scheduler tick failed",
			logx.Int("published", res.Published),
			logx.Err(err),
		)
		return
	}
	s.logger.Info("scheduler tick finished",
		logx.Int("selected", res.Selected),
		logx.Int("published", res.Published),
		logx.Int("skipped", res.Skipped),
		logx.Duration("took", time.Since(start)),
	)
}

func (s *Scheduler) add(fn func(*metrics.Scheduler)) {
	if s.metrics != nil {
		fn(s.metrics)
	}
}
