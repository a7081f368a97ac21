package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"commute-route-service/internal/apperr"
	"commute-route-service/internal/domain"
)

const directionsPath = "/maps/api/directions/json"

// GoogleConfig configures GoogleClient.
type GoogleConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	RPS     float64
	Burst   int
}

// GoogleClient implements Provider on top of the Google Directions API in transit mode.
// It is safe for concurrent use.
type GoogleClient struct {
	session *http.Client
	limiter *rate.Limiter
	apiKey  string
	baseURL string
}

// NewGoogleClient validates cfg and builds a client.
func NewGoogleClient(cfg GoogleConfig) (*GoogleClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("google directions api key is empty")
	}
	if cfg.Timeout <= 0 {
		return nil, errors.New("google directions timeout must be positive")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = "https://maps.googleapis.com"
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &GoogleClient{
		session: &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		apiKey:  cfg.APIKey,
		baseURL: base,
	}, nil
}

type googleValue struct {
	Value int `json:"value"`
}

type googleVehicle struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type googleLine struct {
	Name      string        `json:"name"`
	ShortName string        `json:"short_name"`
	Vehicle   googleVehicle `json:"vehicle"`
}

type googleTransit struct {
	Line googleLine `json:"line"`
}

type googleStep struct {
	TravelMode       string         `json:"travel_mode"`
	Duration         googleValue    `json:"duration"`
	Distance         googleValue    `json:"distance"`
	HTMLInstructions string         `json:"html_instructions"`
	TransitDetails   *googleTransit `json:"transit_details,omitempty"`
}

type googleLeg struct {
	Duration *googleValue `json:"duration"`
	Steps    []googleStep `json:"steps"`
}

type googleRoute struct {
	Legs []googleLeg `json:"legs"`
}

type googleResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Routes       []googleRoute `json:"routes"`
}

// Route fetches the first transit route arriving by q.ArriveBy.
func (c *GoogleClient) Route(ctx context.Context, q Query) (domain.ProviderRoute, error) {
	if err := q.Origin.Validate(); err != nil {
		return domain.ProviderRoute{}, fmt.Errorf("origin: %w: %w", apperr.ErrInvalid, err)
	}
	if err := q.Destination.Validate(); err != nil {
		return domain.ProviderRoute{}, fmt.Errorf("destination: %w: %w", apperr.ErrInvalid, err)
	}
	if q.ArriveBy.IsZero() {
		return domain.ProviderRoute{}, fmt.Errorf("arrive_by is zero: %w", apperr.ErrInvalid)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.ProviderRoute{}, ctxErr
		}
		return domain.ProviderRoute{}, fmt.Errorf("directions limiter: %w: %w", apperr.ErrRateLimited, err)
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint(q))
	if err != nil {
		return domain.ProviderRoute{}, err
	}
	resp, err := c.do(req)
	if err != nil {
		return domain.ProviderRoute{}, c.classify(ctx, err)
	}
	defer resp.Body.Close()

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if isTimeout(err) {
			return domain.ProviderRoute{}, fmt.Errorf("read directions body: %w: %w", apperr.ErrProviderTimeout, err)
		}
		return domain.ProviderRoute{}, fmt.Errorf("decode directions body: %w: %w", apperr.ErrMalformedResponse, err)
	}
	return mapResponse(body)
}

func (c *GoogleClient) endpoint(q Query) string {
	v := url.Values{}
	v.Set("origin", q.Origin.String())
	v.Set("destination", q.Destination.String())
	v.Set("mode", "transit")
	v.Set("arrival_time", strconv.FormatInt(q.ArriveBy.Unix(), 10))
	v.Set("key", c.apiKey)
	return c.baseURL + directionsPath + "?" + v.Encode()
}

func (c *GoogleClient) classify(ctx context.Context, err error) error {
	var he *httpStatusError
	switch {
	case errors.As(err, &he):
		switch {
		case he.Code == http.StatusTooManyRequests:
			return fmt.Errorf("directions: %w: %w", apperr.ErrRateLimited, err)
		case he.Code >= 500:
			return fmt.Errorf("directions: %w: %w", apperr.ErrProviderUnavailable, err)
		case he.Code == http.StatusNotFound:
			return fmt.Errorf("directions: %w: %w", apperr.ErrNoRoute, err)
		default:
			return fmt.Errorf("directions: %w: %w", apperr.ErrInvalid, err)
		}
	case errors.Is(ctx.Err(), context.Canceled):
		return ctx.Err()
	case isTimeout(err):
		return fmt.Errorf("directions: %w: %w", apperr.ErrProviderTimeout, err)
	default:
		return fmt.Errorf("directions: %w: %w", apperr.ErrProviderUnavailable, err)
	}
}

func mapResponse(body googleResponse) (domain.ProviderRoute, error) {
	switch body.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return domain.ProviderRoute{}, fmt.Errorf("directions status %s: %w", body.Status, apperr.ErrNoRoute)
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT":
		return domain.ProviderRoute{}, fmt.Errorf("directions status %s: %w", body.Status, apperr.ErrRateLimited)
	case "REQUEST_DENIED", "INVALID_REQUEST", "MAX_WAYPOINTS_EXCEEDED", "MAX_ROUTE_LENGTH_EXCEEDED":
		return domain.ProviderRoute{}, fmt.Errorf("directions status %s %s: %w", body.Status, body.ErrorMessage, apperr.ErrInvalid)
	case "UNKNOWN_ERROR":
		return domain.ProviderRoute{}, fmt.Errorf("directions status %s: %w", body.Status, apperr.ErrProviderUnavailable)
	default:
		return domain.ProviderRoute{}, fmt.Errorf("directions status %q: %w", body.Status, apperr.ErrMalformedResponse)
	}

	if len(body.Routes) == 0 {
		return domain.ProviderRoute{}, fmt.Errorf("directions returned no routes: %w", apperr.ErrNoRoute)
	}
	if len(body.Routes[0].Legs) == 0 {
		return domain.ProviderRoute{}, fmt.Errorf("directions route has no legs: %w", apperr.ErrMalformedResponse)
	}

	leg := body.Routes[0].Legs[0]
	segments := make([]domain.Segment, 0, len(leg.Steps))
	sum := 0
	for _, s := range leg.Steps {
		if s.Duration.Value < 0 {
			return domain.ProviderRoute{}, fmt.Errorf("negative step duration: %w", apperr.ErrMalformedResponse)
		}
		seg := domain.Segment{
			Type:        segmentType(s.TravelMode),
			DurationSec: s.Duration.Value,
			DistanceM:   s.Distance.Value,
			Instruction: s.HTMLInstructions,
		}
		if s.TransitDetails != nil {
			seg.Line = s.TransitDetails.Line.ShortName
			if seg.Line == "" {
				seg.Line = s.TransitDetails.Line.Name
			}
			seg.Vehicle = s.TransitDetails.Line.Vehicle.Type
		}
		sum += s.Duration.Value
		segments = append(segments, seg)
	}

	total := sum
	if leg.Duration != nil && leg.Duration.Value > 0 {
		total = leg.Duration.Value
	}
	return domain.ProviderRoute{Segments: segments, TotalDurationSec: total}, nil
}

func segmentType(mode string) domain.SegmentType {
	switch strings.ToUpper(mode) {
	case "WALKING":
		return domain.SegmentWalk
	case "TRANSIT":
		return domain.SegmentTransit
	default:
		return domain.SegmentOther
	}
}
