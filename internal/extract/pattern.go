package extract

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"voice-calendar-go/internal/event"
)

// patternDurationMin is the fixed duration for pattern-extracted events.
// The pattern variant has no way to infer length from the text, so every
// event gets 30 minutes.
const patternDurationMin = 30

// Hour 0-23 (single or double digit), minute 00-59.
var clockRe = regexp.MustCompile(`\b([01]?[0-9]|2[0-3]):([0-5][0-9])\b`)

// Pattern extracts the first HH:MM substring from the transcript. The date
// component always comes from the reference time; a time earlier in the day
// than the reference is not rejected here — validation happens once, in the
// orchestrator, before the calendar write.
type Pattern struct{}

func NewPattern() *Pattern {
	return &Pattern{}
}

func (p *Pattern) Extract(_ context.Context, text string, now time.Time) (*event.Candidate, error) {
	m := clockRe.FindStringSubmatch(text)
	if m == nil {
		return nil, ErrNoEvent
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	start := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())

	summary := strings.TrimSpace(text)
	if summary == "" {
		return nil, ErrNoEvent
	}

	return &event.Candidate{
		Summary:     summary,
		Start:       start,
		DurationMin: patternDurationMin,
	}, nil
}
