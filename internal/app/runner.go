package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"commute-route-service/internal/logx"
	"commute-route-service/internal/service/scheduler"
	"commute-route-service/internal/transport/kafka"
)

const shutdownTimeout = 15 * time.Second

// SchedulerRunner runs the scheduler loop and the ops server
type SchedulerRunner struct {
	runFn func(*dig.Container) error
}

// NewSchedulerRunner returns a new SchedulerRunner
func NewSchedulerRunner() *SchedulerRunner {
	return &SchedulerRunner{runFn: runScheduler}
}

// MustRun runs until the container context is cancelled and panics on any other failure
func (r *SchedulerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runScheduler(container *dig.Container) error {
	return container.Invoke(schedulerRun)
}

func schedulerRun(
	ctx context.Context,
	logger logx.Logger,
	sched *scheduler.Scheduler,
	publisher *kafka.Publisher,
	pool *pgxpool.Pool,
	srv *http.Server,
) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil: scheduler container misconfigured")
	}
	defer closeScheduler(logger, publisher, pool)

	logger.Info("route scheduler started")
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serveOps(gctx, srv, logger) })
	g.Go(func() error { return sched.Run(gctx) })
	err := g.Wait()
	logger.Info("route scheduler stopped")
	return err
}

func closeScheduler(logger logx.Logger, publisher *kafka.Publisher, pool *pgxpool.Pool) {
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka producer close error", logx.Err(err))
		}
	}
	if pool != nil {
		pool.Close()
	}
}

// serveOps serves srv until ctx ends, then shuts it down gracefully.
func serveOps(ctx context.Context, srv *http.Server, logger logx.Logger) error {
	if srv == nil {
		<-ctx.Done()
		return nil
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("ops server listening", logx.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	gracefulShutdown(srv, logger, shutdownTimeout)
	return nil
}

func gracefulShutdown(srv *http.Server, logger logx.Logger, timeout time.Duration) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		logger.Error("graceful shutdown error", logx.Err(err))
	}
}
