// Package calendar persists validated candidate events to a remote calendar
// service.
package calendar

import (
	"context"
	"errors"
	"time"

	"voice-calendar-go/internal/event"
)

var (
	// ErrAuth marks an invalid, expired or missing calendar credential.
	ErrAuth = errors.New("calendar authorization failed")

	// ErrAPI covers every other non-2xx response or transport failure.
	ErrAPI = errors.New("calendar API call failed")
)

// Writer issues a single create call for a candidate event and returns the
// remote event id. No retry is performed; a failed attempt is terminal for
// that message. No idempotency key is attached.
type Writer interface {
	Write(ctx context.Context, cand event.Candidate) (string, error)
}

// Entry is one upcoming event as listed from the remote calendar.
type Entry struct {
	Summary string
	Start   time.Time
}

// Lister reads back the next upcoming events.
type Lister interface {
	Upcoming(ctx context.Context, max int64) ([]Entry, error)
}
