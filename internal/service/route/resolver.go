package route

import (
	"context"
	"fmt"
	"time"

	"commute-route-service/internal/apperr"
	"commute-route-service/internal/domain"
	"commute-route-service/internal/gateway/directions"
)

// Resolver turns a routed request into a feedback-corrected route.
type Resolver struct {
	provider DirectionsProvider
	now      func() time.Time
}

// NewResolver creates a Resolver backed by provider.
func NewResolver(provider DirectionsProvider) *Resolver {
	return &Resolver{provider: provider, now: time.Now}
}

// Resolve asks the provider for a route arriving by req.ArriveBy and applies the
// feedback correction. Provider errors are returned unchanged in kind.
func (r *Resolver) Resolve(ctx context.Context, req domain.RoutedRequest) (domain.ResolvedRoute, error) {
	if err := req.Origin.Validate(); err != nil {
		return domain.ResolvedRoute{}, fmt.Errorf("origin: %w: %w", apperr.ErrInvalid, err)
	}
	if err := req.Destination.Validate(); err != nil {
		return domain.ResolvedRoute{}, fmt.Errorf("destination: %w: %w", apperr.ErrInvalid, err)
	}
	if req.ArriveBy.IsZero() {
		return domain.ResolvedRoute{}, fmt.Errorf("empty arrive_by: %w", apperr.ErrInvalid)
	}

	pr, err := r.provider.Route(ctx, directions.Query{
		Origin:      req.Origin,
		Destination: req.Destination,
		ArriveBy:    req.ArriveBy,
	})
	if err != nil {
		return domain.ResolvedRoute{}, err
	}

	return domain.ResolvedRoute{
		UserID:           req.UserID,
		RequestID:        req.RequestID,
		Segments:         AdjustForDisplay(pr.Segments, req.FeedbackTimeSec),
		TotalDurationSec: pr.TotalDurationSec,
		FeedbackTimeSec:  req.FeedbackTimeSec,
		ArriveBy:         req.ArriveBy,
		DepartAt:         DepartAt(req.ArriveBy, pr.TotalDurationSec, req.FeedbackTimeSec),
		ResolvedAt:       r.now().In(req.ArriveBy.Location()),
	}, nil
}
