package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// DeadlineBuffer is subtracted from the stored commute time to get arrive_by.
	DeadlineBuffer = 10 * time.Minute
	// AlertLead is the earliest offset from now a deadline may have to be selected.
	AlertLead = 35 * time.Minute
	// DefaultLookaheadMin covers the longest supported commute plus the alert lead.
	DefaultLookaheadMin = 90
)

// CommuteCandidate is a user whose arrival deadline falls in the current selection window.
type CommuteCandidate struct {
	UserID      string
	Home        Coordinates
	Work        Coordinates
	ArriveBy    time.Time
	FeedbackMin int
}

// Validate reports data errors that make the candidate unroutable.
func (c CommuteCandidate) Validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return errors.New("empty user id")
	}
	if err := c.Home.Validate(); err != nil {
		return fmt.Errorf("home: %w", err)
	}
	if err := c.Work.Validate(); err != nil {
		return fmt.Errorf("work: %w", err)
	}
	if c.ArriveBy.IsZero() {
		return errors.New("empty arrive_by")
	}
	return nil
}

// FeedbackSec is the feedback correction in seconds.
func (c CommuteCandidate) FeedbackSec() int {
	return c.FeedbackMin * 60
}

// Window is the inclusive [Start, End] range of selectable deadlines.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds the selection window for now and a lookahead in minutes.
func NewWindow(now time.Time, lookaheadMin int) Window {
	return Window{
		Start: now.Add(AlertLead),
		End:   now.Add(time.Duration(lookaheadMin) * time.Minute),
	}
}

// Contains reports whether t lies inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Empty reports whether the window cannot contain any deadline.
func (w Window) Empty() bool {
	return w.End.Before(w.Start)
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SortCandidates orders candidates by ArriveBy, then by UserID compared byte-wise,
// the same order the repository query uses ("10" sorts before "9").
func SortCandidates(cs []CommuteCandidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		if !cs[i].ArriveBy.Equal(cs[j].ArriveBy) {
			return cs[i].ArriveBy.Before(cs[j].ArriveBy)
		}
		return cs[i].UserID < cs[j].UserID
	})
}
