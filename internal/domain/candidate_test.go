package domain_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"commute-route-service/internal/domain"
)

var seoul = time.FixedZone("KST", 9*60*60)

func TestNewWindow_EightAMNinetyMinutes(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 12, 12, 8, 0, 0, 0, seoul)
	w := domain.NewWindow(now, 90)

	require.Equal(t, time.Date(2025, 12, 12, 8, 35, 0, 0, seoul), w.Start)
	require.Equal(t, time.Date(2025, 12, 12, 9, 30, 0, 0, seoul), w.End)

	require.True(t, w.Contains(w.Start))
	require.True(t, w.Contains(w.End))
	require.True(t, w.Contains(time.Date(2025, 12, 12, 9, 0, 0, 0, seoul)))
	require.False(t, w.Contains(w.Start.Add(-time.Second)))
	require.False(t, w.Contains(w.End.Add(time.Second)))
	require.False(t, w.Empty())
}

func TestNewWindow_LookaheadShorterThanLeadIsEmpty(t *testing.T) {
	t.Parallel()

	w := domain.NewWindow(time.Date(2025, 1, 1, 8, 0, 0, 0, seoul), 30)
	require.True(t, w.Empty())
}

func TestSortCandidates_ByDeadlineThenUser(t *testing.T) {
	t.Parallel()

	at := func(h, m int) time.Time { return time.Date(2025, 12, 12, h, m, 0, 0, seoul) }
	cs := []domain.CommuteCandidate{
		{UserID: "b", ArriveBy: at(9, 0)},
		{UserID: "c", ArriveBy: at(8, 40)},
		{UserID: "a", ArriveBy: at(9, 0)},
	}
	domain.SortCandidates(cs)

	require.Equal(t, []string{"c", "a", "b"}, []string{cs[0].UserID, cs[1].UserID, cs[2].UserID})
}

func TestSortCandidates_NumericIDsCompareAsStrings(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 12, 12, 9, 0, 0, 0, seoul)
	cs := []domain.CommuteCandidate{
		{UserID: "9", ArriveBy: at},
		{UserID: "10", ArriveBy: at},
		{UserID: "2", ArriveBy: at},
	}
	domain.SortCandidates(cs)

	require.Equal(t, []string{"10", "2", "9"}, []string{cs[0].UserID, cs[1].UserID, cs[2].UserID})
}

func TestCommuteCandidate_Validate(t *testing.T) {
	t.Parallel()

	ok := domain.CommuteCandidate{
		UserID:   "42",
		Home:     domain.Coordinates{Lat: 37.56, Lon: 126.97},
		Work:     domain.Coordinates{Lat: 37.50, Lon: 127.03},
		ArriveBy: time.Date(2025, 12, 12, 9, 0, 0, 0, seoul),
	}
	require.NoError(t, ok.Validate())

	noUser := ok
	noUser.UserID = " "
	require.Error(t, noUser.Validate())

	badHome := ok
	badHome.Home.Lat = 120
	require.ErrorContains(t, badHome.Validate(), "home")

	badWork := ok
	badWork.Work.Lon = math.NaN()
	require.ErrorContains(t, badWork.Validate(), "work")

	noDeadline := ok
	noDeadline.ArriveBy = time.Time{}
	require.Error(t, noDeadline.Validate())
}

func TestNewRoutedRequest_ConvertsFeedbackToSeconds(t *testing.T) {
	t.Parallel()

	c := domain.CommuteCandidate{
		UserID:      "42",
		Home:        domain.Coordinates{Lat: 1, Lon: 2},
		Work:        domain.Coordinates{Lat: 3, Lon: 4},
		ArriveBy:    time.Date(2025, 12, 12, 9, 0, 0, 0, seoul),
		FeedbackMin: -3,
	}
	produced := time.Date(2025, 12, 12, 8, 0, 0, 0, seoul)

	r := domain.NewRoutedRequest("req-1", c, produced)
	require.Equal(t, "req-1", r.RequestID)
	require.Equal(t, "42", r.UserID)
	require.Equal(t, c.Home, r.Origin)
	require.Equal(t, c.Work, r.Destination)
	require.Equal(t, -180, r.FeedbackTimeSec)
	require.Equal(t, produced, r.ProducedAt)
}

func TestLocalTime_RoundTrip(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 12, 12, 9, 0, 0, 0, seoul)
	require.Equal(t, "2025-12-12T09:00:00", domain.FormatLocal(ts))

	got, err := domain.ParseLocal("2025-12-12T09:00:00", seoul)
	require.NoError(t, err)
	require.True(t, got.Equal(ts))

	withMicro, err := domain.ParseLocal("2025-12-12T09:00:00.123456", seoul)
	require.NoError(t, err)
	require.Equal(t, "2025-12-12T09:00:00.123456", domain.FormatLocal(withMicro))

	_, err = domain.ParseLocal("12/12/2025", seoul)
	require.Error(t, err)
}

func TestWallClock_KeepsFields(t *testing.T) {
	t.Parallel()

	naive := time.Date(2025, 12, 12, 9, 0, 0, 0, time.UTC)
	got := domain.WallClock(naive, seoul)
	require.Equal(t, 9, got.Hour())
	require.Equal(t, seoul, got.Location())
}
