// Package dateindex builds the fixed, gap-free list of calendar days that
// range selection operates on.
package dateindex

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jgoulah/energyviz/pkg/models"
)

// Index is an ordered list of YYYY-MM-DD strings, one per day, no gaps
type Index []string

// Range is an inclusive pair of positions into an Index
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Policy selects the default range when nothing else has been chosen
type Policy string

const (
	// PolicyWindow selects the configured window when both ends are in the index
	PolicyWindow Policy = "window"
	// PolicyFull always selects every day of the index
	PolicyFull Policy = "full"
)

// ParsePolicy validates a policy name; empty means PolicyWindow
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyWindow, nil
	case PolicyWindow, PolicyFull:
		return p, nil
	default:
		return "", fmt.Errorf("unknown range policy: %s (available: window, full)", s)
	}
}

// Build returns every calendar day between start and end, both inclusive.
// Only the date components are used; an end before start yields an empty index.
func Build(start, end time.Time) Index {
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	ix := Index{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		ix = append(ix, d.Format(models.DayLayout))
	}
	return ix
}

// Parse builds an index from two YYYY-MM-DD strings
func Parse(start, end string) (Index, error) {
	from, err := time.Parse(models.DayLayout, start)
	if err != nil {
		return nil, fmt.Errorf("parsing start date: %w", err)
	}
	to, err := time.Parse(models.DayLayout, end)
	if err != nil {
		return nil, fmt.Errorf("parsing end date: %w", err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return Build(from, to), nil
}

// Len returns the number of days in the index
func (ix Index) Len() int {
	return len(ix)
}

// At returns the day at position i, or "" when i is out of bounds
func (ix Index) At(i int) string {
	if i < 0 || i >= len(ix) {
		return ""
	}
	return ix[i]
}

// Find returns the position of day, or -1 if the day is not in the index
func (ix Index) Find(day string) int {
	i := sort.SearchStrings(ix, day)
	if i < len(ix) && ix[i] == day {
		return i
	}
	return -1
}

// Full returns the range covering the whole index
func (ix Index) Full() Range {
	if len(ix) == 0 {
		return Range{}
	}
	return Range{Start: 0, End: len(ix) - 1}
}

// DefaultRange applies a default-selection policy
func (ix Index) DefaultRange(p Policy, windowStart, windowEnd string) Range {
	if p == PolicyWindow {
		start, end := ix.Find(windowStart), ix.Find(windowEnd)
		if start != -1 && end != -1 && start <= end {
			return Range{Start: start, End: end}
		}
	}
	return ix.Full()
}

// Clamp forces a range into the index bounds with Start <= End
func (ix Index) Clamp(r Range) Range {
	if len(ix) == 0 {
		return Range{}
	}
	last := len(ix) - 1
	r.Start = min(max(r.Start, 0), last)
	r.End = min(max(r.End, 0), last)
	if r.Start > r.End {
		r.Start, r.End = r.End, r.Start
	}
	return r
}

// Bounds returns the calendar days at both ends of r
func (ix Index) Bounds(r Range) (string, string) {
	return ix.At(r.Start), ix.At(r.End)
}

// Valid reports whether r lies within the index with Start <= End
func (ix Index) Valid(r Range) bool {
	return len(ix) > 0 && r.Start >= 0 && r.End < len(ix) && r.Start <= r.End
}
