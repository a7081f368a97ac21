package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"commute-route-service/internal/cache"
	"commute-route-service/internal/logx"
	"commute-route-service/internal/transport/kafka"
)

// WorkerRunner runs the request consumer and the ops server
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun runs until the container context is cancelled and panics on any other failure
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(
	ctx context.Context,
	logger logx.Logger,
	consumer *kafka.Consumer,
	dlq *kafka.DeadLetterPublisher,
	routes cache.RouteCache,
	srv *http.Server,
) error {
	if consumer == nil {
		return fmt.Errorf("kafka consumer is nil: worker container misconfigured")
	}
	defer closeWorker(logger, consumer, dlq, routes)

	logger.Info("route worker started")
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return serveOps(gctx, srv, logger) })
	g.Go(func() error { return consumer.Run(gctx) })
	err := g.Wait()
	logger.Info("route worker stopped")
	return err
}

func closeWorker(logger logx.Logger, consumer *kafka.Consumer, dlq *kafka.DeadLetterPublisher, routes cache.RouteCache) {
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("kafka close error", logx.Err(err))
		}
	}
	if dlq != nil {
		if err := dlq.Close(); err != nil {
			logger.Error("dead letter producer close error", logx.Err(err))
		}
	}
	if routes != nil {
		if err := routes.Close(); err != nil {
			logger.Error("route cache close error", logx.Err(err))
		}
	}
}
