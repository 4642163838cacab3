// Package extract turns transcript text into a candidate calendar event.
// Two mutually exclusive strategies implement the same contract: a
// deterministic pattern scan and a language-model extraction. The strategy
// is chosen once at startup; callers never branch on which one they hold.
package extract

import (
	"context"
	"errors"
	"time"

	"voice-calendar-go/internal/event"
)

var (
	// ErrNoEvent means the speech was recognized but contains no
	// discernible appointment. Callers map it to a gentler user message
	// than a hard failure.
	ErrNoEvent = errors.New("no event found in transcript")

	// ErrMalformedResponse marks an extraction result that does not obey
	// the expected shape.
	ErrMalformedResponse = errors.New("malformed extraction response")
)

// Extractor converts transcript text into a candidate event, evaluated
// against the given reference time.
type Extractor interface {
	Extract(ctx context.Context, text string, now time.Time) (*event.Candidate, error)
}
