package repository

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"commute-route-service/internal/domain"
)

// CandidateRepo reads commute profiles for the candidate selector.
type CandidateRepo struct {
	db *pgxpool.Pool
}

// NewCandidateRepo creates a new CandidateRepo.
func NewCandidateRepo(db *pgxpool.Pool) *CandidateRepo {
	return &CandidateRepo{db: db}
}

const selectCandidatesSQL = `
	SELECT
		u.id::text AS user_id,
		ua.home_lat,
		ua.home_lon,
		ua.work_lat,
		ua.work_lon,
		($1::timestamp + up.commute_time - make_interval(mins => $4::int)) AS arrive_by,
		COALESCE(up.feedback_min, 0) AS feedback_min
	FROM users u
	JOIN user_profile up ON u.id = up.id
	JOIN user_address ua ON u.id = ua.id
	WHERE up.commute_time IS NOT NULL
	  AND ($1::timestamp + up.commute_time - make_interval(mins => $4::int)) BETWEEN $2::timestamp AND $3::timestamp
	ORDER BY arrive_by ASC, u.id::text COLLATE "C" ASC
`

// ListCandidates returns users whose deadline on day falls within w, ascending by deadline.
// Timestamps are compared as wall clock; results are labelled with day's location.
// NULL coordinate columns come back as NaN so domain validation rejects them.
func (r *CandidateRepo) ListCandidates(ctx context.Context, day time.Time, w domain.Window) ([]domain.CommuteCandidate, error) {
	loc := day.Location()
	rows, err := r.db.Query(ctx, selectCandidatesSQL,
		naive(domain.StartOfDay(day)), naive(w.Start.In(loc)), naive(w.End.In(loc)),
		int(domain.DeadlineBuffer/time.Minute))
	if err != nil {
		return nil, fmt.Errorf("select commute candidates: %w", err)
	}
	defer rows.Close()

	var out []domain.CommuteCandidate
	for rows.Next() {
		var (
			c                                  domain.CommuteCandidate
			homeLat, homeLon, workLat, workLon *float64
			arriveBy                           time.Time
		)
		if err := rows.Scan(&c.UserID, &homeLat, &homeLon, &workLat, &workLon, &arriveBy, &c.FeedbackMin); err != nil {
			return nil, fmt.Errorf("scan commute candidate: %w", err)
		}
		c.Home = coords(homeLat, homeLon)
		c.Work = coords(workLat, workLon)
		c.ArriveBy = domain.WallClock(arriveBy, loc)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commute candidates: %w", err)
	}
	return out, nil
}

func naive(t time.Time) time.Time {
	return domain.WallClock(t, time.UTC)
}

func coords(lat, lon *float64) domain.Coordinates {
	c := domain.Coordinates{Lat: math.NaN(), Lon: math.NaN()}
	if lat != nil {
		c.Lat = *lat
	}
	if lon != nil {
		c.Lon = *lon
	}
	return c
}
