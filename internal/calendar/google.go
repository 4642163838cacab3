package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"voice-calendar-go/internal/event"
	"voice-calendar-go/internal/logger"
)

// Google implements Writer and Lister against the Google Calendar API.
type Google struct {
	svc        *gcal.Service
	calendarID string
	tzName     string
	loc        *time.Location
	log        *logger.Logger
}

// NewGoogle builds the calendar client from an OAuth credentials file and a
// persisted token file (see Authorize). Construction fails if either file is
// unusable; that is a startup-fatal condition, not a per-message one.
func NewGoogle(ctx context.Context, credentialsFile, tokenFile, calendarID string, loc *time.Location) (*Google, error) {
	client, err := oauthClient(ctx, credentialsFile, tokenFile)
	if err != nil {
		return nil, err
	}

	svc, err := gcal.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("build calendar service: %w", err)
	}

	return &Google{
		svc:        svc,
		calendarID: calendarID,
		tzName:     loc.String(),
		loc:        loc,
		log:        logger.New(),
	}, nil
}

// Write inserts the candidate as a single remote event and returns its id.
func (g *Google) Write(ctx context.Context, cand event.Candidate) (string, error) {
	ev := buildEvent(cand, g.tzName)

	created, err := g.svc.Events.Insert(g.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return "", classify(err)
	}

	g.log.WithField("module", "calendar").
		WithField("event_id", created.Id).
		WithField("start", ev.Start.DateTime).
		Info("event created")
	return created.Id, nil
}

// Upcoming lists the next max events starting from now, soonest first.
func (g *Google) Upcoming(ctx context.Context, max int64) ([]Entry, error) {
	res, err := g.svc.Events.List(g.calendarID).
		TimeMin(time.Now().In(g.loc).Format(time.RFC3339)).
		MaxResults(max).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err)
	}

	entries := make([]Entry, 0, len(res.Items))
	for _, it := range res.Items {
		entries = append(entries, Entry{
			Summary: it.Summary,
			Start:   eventStart(it, g.loc),
		})
	}
	return entries, nil
}

// buildEvent converts a candidate into the remote payload. End is always
// start plus the candidate's duration, both expressed in the configured zone.
func buildEvent(cand event.Candidate, tzName string) *gcal.Event {
	return &gcal.Event{
		Summary: cand.Summary,
		Start: &gcal.EventDateTime{
			DateTime: cand.Start.Format(time.RFC3339),
			TimeZone: tzName,
		},
		End: &gcal.EventDateTime{
			DateTime: cand.End().Format(time.RFC3339),
			TimeZone: tzName,
		},
	}
}

// eventStart resolves the start of a listed event, which is a DateTime for
// timed events and a bare Date for all-day ones.
func eventStart(it *gcal.Event, loc *time.Location) time.Time {
	if it.Start == nil {
		return time.Time{}
	}
	if it.Start.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, it.Start.DateTime); err == nil {
			return t.In(loc)
		}
	}
	if it.Start.Date != "" {
		if t, err := time.ParseInLocation("2006-01-02", it.Start.Date, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

// classify maps a Google API error onto the package taxonomy.
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden {
			return fmt.Errorf("%w: %v", ErrAuth, err)
		}
		return fmt.Errorf("%w: %v", ErrAPI, err)
	}
	return fmt.Errorf("%w: %v", ErrAPI, err)
}
