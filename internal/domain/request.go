package domain

import "time"

// RoutedRequest is the unit published to the route request channel.
type RoutedRequest struct {
	RequestID       string
	UserID          string
	Origin          Coordinates
	Destination     Coordinates
	ArriveBy        time.Time
	FeedbackTimeSec int
	ProducedAt      time.Time
}

// NewRoutedRequest builds the request for c. Origin is home, destination is work.
func NewRoutedRequest(requestID string, c CommuteCandidate, producedAt time.Time) RoutedRequest {
	return RoutedRequest{
		RequestID:       requestID,
		UserID:          c.UserID,
		Origin:          c.Home,
		Destination:     c.Work,
		ArriveBy:        c.ArriveBy,
		FeedbackTimeSec: c.FeedbackSec(),
		ProducedAt:      producedAt,
	}
}
