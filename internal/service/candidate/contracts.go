package candidate

import (
	"context"
	"time"

	"commute-route-service/internal/domain"
)

type candidateRepository interface {
	ListCandidates(ctx context.Context, day time.Time, w domain.Window) ([]domain.CommuteCandidate, error)
}
