//go:generate mockgen -source=contracts.go -destination=route_mocks_test.go -package=route_test

package route

import (
	"context"

	"commute-route-service/internal/domain"
	"commute-route-service/internal/gateway/directions"
)

// DirectionsProvider returns the raw route for a query.
type DirectionsProvider interface {
	Route(ctx context.Context, q directions.Query) (domain.ProviderRoute, error)
}

// RouteStore persists the latest resolved route of a user.
type RouteStore interface {
	Set(ctx context.Context, userID string, r domain.ResolvedRoute) error
}
