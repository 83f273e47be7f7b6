package lock

import (
	"fmt"
	"strings"
	"time"
)

// State is the derived betting status of a round or match.
type State string

const (
	StateOpen                      State = "OPEN"
	StateClosedBySchedule          State = "CLOSED_BY_SCHEDULE"
	StateClosedPendingFinalization State = "CLOSED_PENDING_FINALIZATION"
)

// Reason tells the presentation layer why a write was refused.
type Reason string

const (
	ReasonBySchedule          Reason = "by_schedule"
	ReasonPendingFinalization Reason = "pending_finalization"
)

func (s State) IsOpen() bool {
	return s == StateOpen
}

func (s State) Reason() Reason {
	switch s {
	case StateClosedBySchedule:
		return ReasonBySchedule
	case StateClosedPendingFinalization:
		return ReasonPendingFinalization
	default:
		return ""
	}
}

// Window is the recurring pool-wide betting deadline.
// Betting closes at CloseWeekday CloseHour:CloseMinute and reopens at 00:00 of ReopenWeekday,
// both read on the civil calendar of Location.
type Window struct {
	Location      *time.Location
	CloseWeekday  time.Weekday
	CloseHour     int
	CloseMinute   int
	ReopenWeekday time.Weekday
}

func DefaultWindow(loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	return Window{
		Location:      loc,
		CloseWeekday:  time.Saturday,
		CloseHour:     14,
		CloseMinute:   0,
		ReopenWeekday: time.Monday,
	}
}

// Target carries the persisted flags the evaluator needs for one match.
type Target struct {
	RoundFinalized bool
	MatchFinalized bool
	KickoffAt      *time.Time
}

// Bounds returns the close instant of the window that is active at now, or of the
// next one when betting is open, together with the matching reopen instant.
func (w Window) Bounds(now time.Time) (closesAt, reopensAt time.Time) {
	loc := w.location()
	local := now.In(loc)

	daysSinceClose := (int(local.Weekday()) - int(w.CloseWeekday) + 7) % 7
	closesAt = time.Date(local.Year(), local.Month(), local.Day()-daysSinceClose, w.CloseHour, w.CloseMinute, 0, 0, loc)
	if local.Before(closesAt) {
		closesAt = closesAt.AddDate(0, 0, -7)
	}
	reopensAt = w.reopenAfter(closesAt)

	if !local.Before(reopensAt) {
		closesAt = closesAt.AddDate(0, 0, 7)
		reopensAt = w.reopenAfter(closesAt)
	}
	return closesAt, reopensAt
}

// InWeeklyLock reports whether now falls between the close and reopen instants.
func (w Window) InWeeklyLock(now time.Time) bool {
	closesAt, reopensAt := w.Bounds(now)
	local := now.In(w.location())
	return !local.Before(closesAt) && local.Before(reopensAt)
}

// Evaluate applies the rules from most to least restrictive: finalization,
// the weekly window, then the match kickoff.
func (w Window) Evaluate(now time.Time, t Target) State {
	if t.RoundFinalized || t.MatchFinalized {
		return StateClosedBySchedule
	}
	if w.InWeeklyLock(now) {
		return StateClosedBySchedule
	}
	if t.KickoffAt != nil && !now.Before(*t.KickoffAt) {
		return StateClosedPendingFinalization
	}
	return StateOpen
}

// EvaluateRound folds the per-match states of a round into one state.
// A round stays open while at least one of its matches accepts predictions.
func (w Window) EvaluateRound(now time.Time, roundFinalized bool, matches []Target) State {
	if roundFinalized || w.InWeeklyLock(now) {
		return StateClosedBySchedule
	}
	if len(matches) == 0 {
		return StateOpen
	}

	allFinalized := true
	for _, m := range matches {
		m.RoundFinalized = false
		if w.Evaluate(now, m) == StateOpen {
			return StateOpen
		}
		if !m.MatchFinalized {
			allFinalized = false
		}
	}
	if allFinalized {
		return StateClosedBySchedule
	}
	return StateClosedPendingFinalization
}

func (w Window) Validate() error {
	if w.CloseHour < 0 || w.CloseHour > 23 {
		return fmt.Errorf("close hour out of range: %d", w.CloseHour)
	}
	if w.CloseMinute < 0 || w.CloseMinute > 59 {
		return fmt.Errorf("close minute out of range: %d", w.CloseMinute)
	}
	if w.CloseWeekday == w.ReopenWeekday {
		return fmt.Errorf("close and reopen weekday must differ")
	}
	return nil
}

func (w Window) location() *time.Location {
	if w.Location == nil {
		return time.UTC
	}
	return w.Location
}

func (w Window) reopenAfter(closesAt time.Time) time.Time {
	days := (int(w.ReopenWeekday) - int(w.CloseWeekday) + 7) % 7
	return time.Date(closesAt.Year(), closesAt.Month(), closesAt.Day()+days, 0, 0, 0, 0, w.location())
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func ParseWeekday(raw string) (time.Weekday, error) {
	day, ok := weekdays[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return 0, fmt.Errorf("invalid weekday %q", raw)
	}
	return day, nil
}

// ParseClock parses an "HH:MM" wall-clock time.
func ParseClock(raw string) (hour, minute int, err error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q: %w", raw, err)
	}
	return parsed.Hour(), parsed.Minute(), nil
}
