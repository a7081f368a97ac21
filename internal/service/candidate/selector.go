package candidate

import (
	"context"
	"fmt"
	"time"

	"commute-route-service/internal/domain"
	"commute-route-service/internal/logx"
)

// Service selects the users whose arrival deadline is approaching.
type Service struct {
	repo             candidateRepository
	loc              *time.Location
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService creates a selector reading from repo. Deadlines are evaluated in loc.
func NewService(repo candidateRepository, loc *time.Location, timeout time.Duration, logger logx.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		repo:             repo,
		loc:              loc,
		operationTimeout: timeout,
		logger:           logger,
	}
}

// Select returns candidates with arrive_by in [now+35m, now+lookaheadMin], ascending by
// arrive_by and then user id. Store failures are returned unretried.
func (s *Service) Select(ctx context.Context, now time.Time, lookaheadMin int) ([]domain.CommuteCandidate, error) {
	now = now.In(s.loc)
	w := domain.NewWindow(now, lookaheadMin)
	if w.Empty() {
		s.logger.Warn("selection window is empty",
			logx.Int("lookahead_min", lookaheadMin),
			logx.Time("start", w.Start),
			logx.Time("end", w.End),
		)
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	rows, err := s.repo.ListCandidates(ctx, now, w)
	if err != nil {
		return nil, fmt.Errorf("select candidates: %w", err)
	}

	out := make([]domain.CommuteCandidate, 0, len(rows))
	for _, c := range rows {
		if !w.Contains(c.ArriveBy) {
			s.logger.Warn("candidate outside selection window dropped",
				logx.String("user_id", c.UserID),
				logx.Time("arrive_by", c.ArriveBy),
			)
			continue
		}
		out = append(out, c)
	}
	domain.SortCandidates(out)
	return out, nil
}
