package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"voice-calendar-go/internal/event"
)

// llmDurationMin is the fixed duration for LLM-extracted events.
const llmDurationMin = 60

const timestampLayout = "2006-01-02 15:04"

const promptTemplate = `You are an appointment extraction engine.
Current date and time: %s (time zone %s).

Extract the single appointment mentioned in the voice transcript below.
Respond with EXACTLY one line in this format and nothing else:
YYYY-MM-DD HH:MM | short summary

Resolve relative expressions like "tomorrow" or "next Friday" against the
current date above. If the transcript mentions no appointment, date or time,
respond with exactly:
NONE

Transcript:
"""%s"""`

// Completer is the single-method seam to the language-model service.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// LLM extracts events by prompting a language model for a pipe-separated
// timestamp/summary pair.
type LLM struct {
	completer Completer
	loc       *time.Location
}

func NewLLM(completer Completer, loc *time.Location) *LLM {
	return &LLM{completer: completer, loc: loc}
}

func (l *LLM) Extract(ctx context.Context, text string, now time.Time) (*event.Candidate, error) {
	prompt := fmt.Sprintf(promptTemplate,
		now.In(l.loc).Format(timestampLayout), l.loc.String(), text)

	resp, err := l.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return l.parse(resp, now.In(l.loc))
}

// parse enforces the strict "timestamp | summary" contract and applies the
// year-rollover correction before the past-date guard.
func (l *LLM) parse(resp string, now time.Time) (*event.Candidate, error) {
	resp = strings.TrimSpace(resp)
	if strings.EqualFold(resp, "NONE") {
		return nil, ErrNoEvent
	}

	parts := strings.Split(resp, "|")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: want exactly 2 pipe-separated parts, got %d", ErrMalformedResponse, len(parts))
	}

	start, err := time.ParseInLocation(timestampLayout, strings.TrimSpace(parts[0]), l.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: bad timestamp %q", ErrMalformedResponse, strings.TrimSpace(parts[0]))
	}

	summary := strings.TrimSpace(parts[1])
	if summary == "" {
		return nil, fmt.Errorf("%w: empty summary", ErrMalformedResponse)
	}

	if start.Year() < now.Year() {
		start = rollYearForward(start, now, l.loc)
	}

	if start.Before(now) {
		return nil, fmt.Errorf("extracted start %s: %w", start.Format(timestampLayout), event.ErrPastStart)
	}

	return &event.Candidate{
		Summary:     summary,
		Start:       start,
		DurationMin: llmDurationMin,
	}, nil
}

// rollYearForward rewrites a past year to the current one. When the
// rewritten day does not exist (Feb 29 in a non-leap year) it falls back to
// tomorrow at the top of the current hour instead of failing.
func rollYearForward(start, now time.Time, loc *time.Location) time.Time {
	corrected := time.Date(now.Year(), start.Month(), start.Day(),
		start.Hour(), start.Minute(), 0, 0, loc)
	if corrected.Month() != start.Month() || corrected.Day() != start.Day() {
		return time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, loc).
			AddDate(0, 0, 1)
	}
	return corrected
}
