package calendar

import (
	"errors"
	"testing"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"voice-calendar-go/internal/event"
)

func TestBuildEvent_EndIsStartPlusDuration(t *testing.T) {
	t.Parallel()

	kyiv, err := time.LoadLocation("Europe/Kyiv")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}

	cases := []struct {
		name        string
		durationMin int
	}{
		{"half hour", 30},
		{"one hour", 60},
		{"odd duration", 45},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			start := time.Date(2026, 8, 28, 14, 30, 0, 0, kyiv)
			cand := event.Candidate{Summary: "Dentist", Start: start, DurationMin: tc.durationMin}

			ev := buildEvent(cand, "Europe/Kyiv")

			if ev.Summary != "Dentist" {
				t.Errorf("Summary = %q, want %q", ev.Summary, "Dentist")
			}
			gotStart, err := time.Parse(time.RFC3339, ev.Start.DateTime)
			if err != nil {
				t.Fatalf("parse start %q: %v", ev.Start.DateTime, err)
			}
			gotEnd, err := time.Parse(time.RFC3339, ev.End.DateTime)
			if err != nil {
				t.Fatalf("parse end %q: %v", ev.End.DateTime, err)
			}
			if want := time.Duration(tc.durationMin) * time.Minute; gotEnd.Sub(gotStart) != want {
				t.Errorf("end - start = %v, want %v", gotEnd.Sub(gotStart), want)
			}
			if ev.Start.TimeZone != "Europe/Kyiv" || ev.End.TimeZone != "Europe/Kyiv" {
				t.Errorf("TimeZone = %q/%q, want Europe/Kyiv", ev.Start.TimeZone, ev.End.TimeZone)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"401 unauthorized", &googleapi.Error{Code: 401}, ErrAuth},
		{"403 forbidden", &googleapi.Error{Code: 403}, ErrAuth},
		{"500 server error", &googleapi.Error{Code: 500}, ErrAPI},
		{"404 not found", &googleapi.Error{Code: 404}, ErrAPI},
		{"transport error", errors.New("dial tcp: connection refused"), ErrAPI},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := classify(tc.err); !errors.Is(got, tc.want) {
				t.Errorf("classify(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestEventStart(t *testing.T) {
	t.Parallel()

	kyiv, err := time.LoadLocation("Europe/Kyiv")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}

	t.Run("timed event", func(t *testing.T) {
		t.Parallel()
		it := &gcal.Event{Start: &gcal.EventDateTime{DateTime: "2026-08-28T14:30:00+03:00"}}
		got := eventStart(it, kyiv)
		want := time.Date(2026, 8, 28, 14, 30, 0, 0, kyiv)
		if !got.Equal(want) {
			t.Errorf("eventStart = %v, want %v", got, want)
		}
	})

	t.Run("all-day event", func(t *testing.T) {
		t.Parallel()
		it := &gcal.Event{Start: &gcal.EventDateTime{Date: "2026-08-28"}}
		got := eventStart(it, kyiv)
		want := time.Date(2026, 8, 28, 0, 0, 0, 0, kyiv)
		if !got.Equal(want) {
			t.Errorf("eventStart = %v, want %v", got, want)
		}
	})

	t.Run("missing start", func(t *testing.T) {
		t.Parallel()
		if got := eventStart(&gcal.Event{}, kyiv); !got.IsZero() {
			t.Errorf("eventStart = %v, want zero", got)
		}
	})
}
