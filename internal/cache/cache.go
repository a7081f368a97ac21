package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"commute-route-service/internal/domain"
)

// TTL is how long a resolved route stays readable after the last write.
const TTL = 3600 * time.Second

const keyPrefix = "route:state:"

// Key returns the per-user cache key.
func Key(userID string) string {
	return keyPrefix + userID
}

// RouteCache stores the latest resolved route per user. Set always overwrites and resets
// the TTL. Get reports found=false for an absent or expired entry.
type RouteCache interface {
	Set(ctx context.Context, userID string, r domain.ResolvedRoute) error
	Get(ctx context.Context, userID string) (domain.ResolvedRoute, bool, error)
	Ping(ctx context.Context) error
	Close() error
}

type segmentDTO struct {
	Type        string `json:"type"`
	DurationSec int    `json:"duration_sec"`
	DistanceM   int    `json:"distance_m,omitempty"`
	Instruction string `json:"instruction,omitempty"`
	Line        string `json:"line,omitempty"`
	Vehicle     string `json:"vehicle,omitempty"`
}

type routeDTO struct {
	UserID           string       `json:"user_id"`
	RequestID        string       `json:"request_id"`
	Segments         []segmentDTO `json:"segments"`
	TotalDurationSec int          `json:"total_duration_sec"`
	FeedbackTimeSec  int          `json:"feedback_time_sec"`
	ArriveBy         string       `json:"arrive_by"`
	DepartAt         string       `json:"depart_at"`
	ResolvedAt       time.Time    `json:"resolved_at"`
}

func toDTO(r domain.ResolvedRoute) routeDTO {
	var segs []segmentDTO
	if r.Segments != nil {
		segs = make([]segmentDTO, 0, len(r.Segments))
	}
	for _, s := range r.Segments {
		segs = append(segs, segmentDTO{
			Type:        string(s.Type),
			DurationSec: s.DurationSec,
			DistanceM:   s.DistanceM,
			Instruction: s.Instruction,
			Line:        s.Line,
			Vehicle:     s.Vehicle,
		})
	}
	return routeDTO{
		UserID:           r.UserID,
		RequestID:        r.RequestID,
		Segments:         segs,
		TotalDurationSec: r.TotalDurationSec,
		FeedbackTimeSec:  r.FeedbackTimeSec,
		ArriveBy:         domain.FormatLocal(r.ArriveBy),
		DepartAt:         domain.FormatLocal(r.DepartAt),
		ResolvedAt:       r.ResolvedAt,
	}
}

func fromDTO(d routeDTO, loc *time.Location) (domain.ResolvedRoute, error) {
	arriveBy, err := domain.ParseLocal(strings.TrimSpace(d.ArriveBy), loc)
	if err != nil {
		return domain.ResolvedRoute{}, fmt.Errorf("arrive_by: %w", err)
	}
	departAt, err := domain.ParseLocal(strings.TrimSpace(d.DepartAt), loc)
	if err != nil {
		return domain.ResolvedRoute{}, fmt.Errorf("depart_at: %w", err)
	}
	var segs []domain.Segment
	if d.Segments != nil {
		segs = make([]domain.Segment, 0, len(d.Segments))
		for _, s := range d.Segments {
			segs = append(segs, domain.Segment{
				Type:        domain.SegmentType(s.Type),
				DurationSec: s.DurationSec,
				DistanceM:   s.DistanceM,
				Instruction: s.Instruction,
				Line:        s.Line,
				Vehicle:     s.Vehicle,
			})
		}
	}
	resolvedAt := d.ResolvedAt
	if !resolvedAt.IsZero() && loc != nil {
		resolvedAt = resolvedAt.In(loc)
	}
	return domain.ResolvedRoute{
		UserID:           d.UserID,
		RequestID:        d.RequestID,
		Segments:         segs,
		TotalDurationSec: d.TotalDurationSec,
		FeedbackTimeSec:  d.FeedbackTimeSec,
		ArriveBy:         arriveBy,
		DepartAt:         departAt,
		ResolvedAt:       resolvedAt,
	}, nil
}
