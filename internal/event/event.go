// Package event holds the provider-independent candidate event model shared
// by the extractors, the orchestrator and the calendar writer.
package event

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrPastStart marks a candidate whose start is already behind the
	// reference time. A past-dated candidate must never reach the calendar.
	ErrPastStart = errors.New("event start is in the past")

	ErrEmptySummary    = errors.New("event summary is empty")
	ErrInvalidDuration = errors.New("event duration must be positive")
)

// Candidate is an extracted, not-yet-persisted appointment.
type Candidate struct {
	Summary     string
	Start       time.Time
	DurationMin int
}

// End returns Start shifted by the candidate's duration.
func (c Candidate) End() time.Time {
	return c.Start.Add(time.Duration(c.DurationMin) * time.Minute)
}

// Validate checks the candidate against the reference time. It is the single
// enforcement point for the "no past events" rule: extractors may emit a
// same-day candidate whose time already passed, the orchestrator calls
// Validate before writing.
func (c Candidate) Validate(now time.Time) error {
	if c.Summary == "" {
		return ErrEmptySummary
	}
	if c.DurationMin <= 0 {
		return ErrInvalidDuration
	}
	if c.Start.Before(now) {
		return fmt.Errorf("start %s before reference %s: %w",
			c.Start.Format(time.RFC3339), now.Format(time.RFC3339), ErrPastStart)
	}
	return nil
}
