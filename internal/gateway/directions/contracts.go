package directions

import (
	"context"
	"time"

	"commute-route-service/internal/domain"
)

// Query asks for a route that reaches Destination no later than ArriveBy.
type Query struct {
	Origin      domain.Coordinates
	Destination domain.Coordinates
	ArriveBy    time.Time
}

// Provider returns the ordered segments and total duration of a route.
type Provider interface {
	Route(ctx context.Context, q Query) (domain.ProviderRoute, error)
}
