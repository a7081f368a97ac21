package scheduler

import (
	"context"
	"time"

	"commute-route-service/internal/domain"
)

type candidateSelector interface {
	Select(ctx context.Context, now time.Time, lookaheadMin int) ([]domain.CommuteCandidate, error)
}

type requestPublisher interface {
	Publish(ctx context.Context, c domain.CommuteCandidate) (string, error)
}
