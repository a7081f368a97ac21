package route

import (
	"time"

	"commute-route-service/internal/domain"
)

// DepartAt is the arrival deadline minus the route duration and the user's feedback lead.
// A negative feedback moves the departure later.
func DepartAt(arriveBy time.Time, totalDurationSec, feedbackTimeSec int) time.Time {
	return arriveBy.Add(-time.Duration(totalDurationSec+feedbackTimeSec) * time.Second)
}

// AdjustForDisplay adds the feedback lead to the first segment when it is a walk.
// Any other route, including an empty one, is returned as is. The input is never modified.
func AdjustForDisplay(segments []domain.Segment, feedbackTimeSec int) []domain.Segment {
	if len(segments) == 0 || segments[0].Type != domain.SegmentWalk {
		return segments
	}
	out := make([]domain.Segment, len(segments))
	copy(out, segments)
	out[0].DurationSec += feedbackTimeSec
	return out
}
