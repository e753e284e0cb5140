package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gym-management-api/internal/model"
)

// Conflict kinds.
const (
	KindTrainerUnavailable = "trainer_unavailable"
	KindTrainerBooked      = "trainer_booked"
)

// Names of the individual checks, used to report which ones could not run.
const (
	CheckAvailability = "availability"
	CheckOverlap      = "overlap"
)

type Conflict struct {
	Kind    string `json:"kind"`
	Details string `json:"details"`
	Count   int    `json:"count,omitempty"`
}

// CheckResult separates "conflict found" from "check could not run", so
// callers can pick a policy for store failures instead of silently treating
// them as no-conflict.
type CheckResult struct {
	Conflicts   []Conflict `json:"conflicts"`
	Unavailable []string   `json:"checksUnavailable,omitempty"`
}

func (r CheckResult) Clear() bool { return len(r.Conflicts) == 0 }

// Kinds returns the detected conflict kinds, comma separated.
func (r CheckResult) Kinds() string {
	kinds := make([]string, len(r.Conflicts))
	for i, c := range r.Conflicts {
		kinds[i] = c.Kind
	}
	return strings.Join(kinds, ", ")
}

// Detect runs the advisory checks for a candidate booking. The store lookups
// happen at the caller; Detect only interprets their results. A lookup error
// marks that check unavailable rather than passing it.
func Detect(start time.Time, windows []model.TrainerAvailability, windowsErr error, overlapping int, overlapErr error) CheckResult {
	var r CheckResult
	start = start.UTC()

	if windowsErr != nil {
		r.Unavailable = append(r.Unavailable, CheckAvailability)
	} else if !WithinAvailability(windows, start) {
		r.Conflicts = append(r.Conflicts, Conflict{
			Kind:    KindTrainerUnavailable,
			Details: fmt.Sprintf("trainer has no availability window covering %s on %s", start.Format("15:04"), start.Weekday()),
		})
	}

	if overlapErr != nil {
		r.Unavailable = append(r.Unavailable, CheckOverlap)
	} else if overlapping > 0 {
		r.Conflicts = append(r.Conflicts, Conflict{
			Kind:    KindTrainerBooked,
			Details: fmt.Sprintf("trainer already has %d session(s) in this slot", overlapping),
			Count:   overlapping,
		})
	}

	return r
}

// WithinAvailability reports whether the candidate's clock time falls inside
// at least one window that is available, matches the weekday and covers the
// candidate's date. Clock and weekday math happens in UTC, matching the
// normalized timestamptz storage, so every spelling of one instant reads the
// same windows.
func WithinAvailability(windows []model.TrainerAvailability, start time.Time) bool {
	start = start.UTC()
	minute := start.Hour()*60 + start.Minute()
	dow := int(start.Weekday())
	day := start.Truncate(24 * time.Hour)

	for _, w := range windows {
		if !w.IsAvailable || w.DayOfWeek != dow {
			continue
		}
		if w.EffectiveFrom != nil && day.Before(*w.EffectiveFrom) {
			continue
		}
		if w.EffectiveTo != nil && day.After(*w.EffectiveTo) {
			continue
		}
		from, err1 := ParseClock(w.StartTime)
		to, err2 := ParseClock(w.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		if minute >= from && minute <= to {
			return true
		}
	}
	return false
}

// ParseClock converts "15:04" or "15:04:05" to minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("bad clock time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("bad clock time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("bad clock time %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return h*60 + m, nil
}
