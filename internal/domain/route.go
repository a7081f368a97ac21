package domain

import "time"

// SegmentType discriminates route segments.
type SegmentType string

// Known segment types.
const (
	SegmentWalk    SegmentType = "walk"
	SegmentTransit SegmentType = "transit"
	SegmentOther   SegmentType = "other"
)

// Segment is one leg step of a route.
type Segment struct {
	Type        SegmentType
	DurationSec int
	DistanceM   int
	Instruction string
	Line        string
	Vehicle     string
}

// ProviderRoute is what the directions provider returns before any feedback correction.
type ProviderRoute struct {
	Segments         []Segment
	TotalDurationSec int
}

// ResolvedRoute is the display-ready route stored in the cache for a user.
type ResolvedRoute struct {
	UserID           string
	RequestID        string
	Segments         []Segment
	TotalDurationSec int
	FeedbackTimeSec  int
	ArriveBy         time.Time
	DepartAt         time.Time
	ResolvedAt       time.Time
}
