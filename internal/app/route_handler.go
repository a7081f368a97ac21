package app

import (
	"context"
	"errors"

	"commute-route-service/internal/domain"
	"commute-route-service/internal/service/route"
	"commute-route-service/internal/transport/kafka"
)

type routeProcessor interface {
	Handle(ctx context.Context, req domain.RoutedRequest) error
}

// makeRouteHandler adapts the processor to the consumer. A request the processor gave up
// on becomes permanent, so the consumer dead-letters it instead of redelivering.
func makeRouteHandler(p routeProcessor) kafka.HandleFunc {
	return func(ctx context.Context, req domain.RoutedRequest) error {
		err := p.Handle(ctx, req)
		if err == nil {
			return nil
		}
		var failed *route.FailedError
		if errors.As(err, &failed) {
			return kafka.PermanentAfter(err, failed.Attempts)
		}
		return err
	}
}
