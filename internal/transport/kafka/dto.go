package kafka

import (
	"fmt"
	"strings"
	"time"

	"commute-route-service/internal/apperr"
	"commute-route-service/internal/domain"
)

// PointDTO is a coordinate pair on the wire.
type PointDTO struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RouteRequestDTO is the JSON value of a route_request message.
type RouteRequestDTO struct {
	RequestID       string   `json:"request_id"`
	UserID          string   `json:"user_id"`
	Origin          PointDTO `json:"origin"`
	Destination     PointDTO `json:"destination"`
	ArriveBy        string   `json:"arrive_by"`
	FeedbackTimeSec int      `json:"feedback_time_sec"`
	ProducedAt      string   `json:"produced_at"`
}

// FromDomain converts a domain request into its wire form.
func FromDomain(r domain.RoutedRequest) RouteRequestDTO {
	return RouteRequestDTO{
		RequestID:       r.RequestID,
		UserID:          r.UserID,
		Origin:          PointDTO{Lat: r.Origin.Lat, Lon: r.Origin.Lon},
		Destination:     PointDTO{Lat: r.Destination.Lat, Lon: r.Destination.Lon},
		ArriveBy:        domain.FormatLocal(r.ArriveBy),
		FeedbackTimeSec: r.FeedbackTimeSec,
		ProducedAt:      domain.FormatLocal(r.ProducedAt),
	}
}

// ToDomain converts the wire form into a domain request, reading timestamps in loc.
func ToDomain(dto RouteRequestDTO, loc *time.Location) (domain.RoutedRequest, error) {
	userID := strings.TrimSpace(dto.UserID)
	if userID == "" {
		return domain.RoutedRequest{}, fmt.Errorf("empty user_id: %w", apperr.ErrInvalid)
	}
	arriveBy, err := domain.ParseLocal(strings.TrimSpace(dto.ArriveBy), loc)
	if err != nil {
		return domain.RoutedRequest{}, fmt.Errorf("arrive_by: %w: %w", apperr.ErrInvalid, err)
	}
	var producedAt time.Time
	if s := strings.TrimSpace(dto.ProducedAt); s != "" {
		producedAt, err = domain.ParseLocal(s, loc)
		if err != nil {
			return domain.RoutedRequest{}, fmt.Errorf("produced_at: %w: %w", apperr.ErrInvalid, err)
		}
	}
	return domain.RoutedRequest{
		RequestID:       strings.TrimSpace(dto.RequestID),
		UserID:          userID,
		Origin:          domain.Coordinates{Lat: dto.Origin.Lat, Lon: dto.Origin.Lon},
		Destination:     domain.Coordinates{Lat: dto.Destination.Lat, Lon: dto.Destination.Lon},
		ArriveBy:        arriveBy,
		FeedbackTimeSec: dto.FeedbackTimeSec,
		ProducedAt:      producedAt,
	}, nil
}
