package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"commute-route-service/internal/apperr"
	"commute-route-service/internal/domain"
	"commute-route-service/internal/service/route"
	"commute-route-service/internal/transport/kafka"
)

type processorFunc func(context.Context, domain.RoutedRequest) error

func (f processorFunc) Handle(ctx context.Context, req domain.RoutedRequest) error { return f(ctx, req) }

func TestMakeRouteHandler(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		h := makeRouteHandler(processorFunc(func(context.Context, domain.RoutedRequest) error { return nil }))
		require.NoError(t, h(context.Background(), domain.RoutedRequest{UserID: "1"}))
	})

	t.Run("gave up becomes permanent", func(t *testing.T) {
		failed := &route.FailedError{Stage: "resolve", Attempts: 3, Err: apperr.ErrNoRoute}
		h := makeRouteHandler(processorFunc(func(context.Context, domain.RoutedRequest) error { return failed }))

		err := h(context.Background(), domain.RoutedRequest{UserID: "1"})
		var perm kafka.PermanentError
		require.ErrorAs(t, err, &perm)
		require.Equal(t, 3, perm.Attempts)
		require.ErrorIs(t, err, apperr.ErrNoRoute)
	})

	t.Run("cancellation passes through", func(t *testing.T) {
		h := makeRouteHandler(processorFunc(func(context.Context, domain.RoutedRequest) error { return context.Canceled }))

		err := h(context.Background(), domain.RoutedRequest{UserID: "1"})
		require.ErrorIs(t, err, context.Canceled)
		var perm kafka.PermanentError
		require.False(t, errors.As(err, &perm))
	})
}
