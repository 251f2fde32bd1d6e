package station

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/ruimsramos/epaper-display/internal/barrier"
	"github.com/ruimsramos/epaper-display/internal/common"
	"github.com/ruimsramos/epaper-display/internal/timezone"
)

const (
	calendarEventsURLFormat = "https://www.googleapis.com/calendar/v3/calendars/%s/events"
	factOfTheDayURL         = "https://uselessfacts.jsph.pl/api/v2/facts/random"
)

// runCalendarTask waits for the location, authenticates through the
// credential pipeline and renders today's events. Zero events falls back
// to a fact of the day; credential failures abort the calendar rendering
// only. Raises FlagCalendar on every exit path.
func (c *Cycle) runCalendarTask(ctx context.Context) {
	log := c.log.WithField("task", "calendar")
	defer c.flags.Raise(barrier.FlagCalendar)

	c.flags.AwaitAll(barrier.FlagLocation)
	loc, ok := c.location()
	if !ok {
		log.Warn("no location this cycle; skipping calendar")
		return
	}

	if !c.cfg.CalendarConfigured() || c.tokens == nil {
		log.Info("calendar not configured; rendering fact of the day")
		c.renderFact(ctx, log)
		return
	}

	var token string
	err := c.withNetwork(func() error {
		var authErr error
		token, authErr = c.tokens.Authorize(ctx)
		return authErr
	})
	if err != nil {
		// Credential failures abort the calendar path only; the widget
		// stays empty and the cycle carries on.
		log.WithError(err).Error("authorizing calendar access")
		return
	}

	events, err := c.fetchTodayEvents(ctx, loc, token)
	if err != nil {
		log.WithError(err).Error("fetching calendar events")
		return
	}

	if len(events) == 0 {
		log.Info("no events today; rendering fact of the day")
		c.renderFact(ctx, log)
		return
	}
	log.WithField("events", len(events)).Info("calendar events fetched")

	err = c.withFramebuffer(func() error {
		return c.renderer.WriteEvents(events)
	})
	if err != nil {
		log.WithError(err).Error("rendering calendar events")
	}
}

// fetchTodayEvents queries the calendar for events between today's local
// midnight and the next, keeping the first MaxCalendarEvents in API order.
// The bounds carry the zone's UTC offset so "today" is the local day, not
// the UTC one.
func (c *Cycle) fetchTodayEvents(ctx context.Context, loc Location, token string) ([]CalendarEvent, error) {
	local, err := timezone.ConvertInstantToLocal(loc.Timezone, c.now())
	if err != nil {
		return nil, fmt.Errorf("resolving local date: %w", err)
	}
	rule, err := timezone.OffsetRuleFor(loc.Timezone)
	if err != nil {
		return nil, fmt.Errorf("resolving zone offset: %w", err)
	}
	offset := timezone.OffsetSuffix(rule.OffsetAt(c.now()))

	dayStart := fmt.Sprintf("%04d-%02d-%02dT00:00:00%s", local.Year, local.Month, local.Day, offset)
	dayEnd := fmt.Sprintf("%04d-%02d-%02dT23:59:59%s", local.Year, local.Month, local.Day, offset)

	values := url.Values{}
	values.Set("timeMin", dayStart)
	values.Set("timeMax", dayEnd)
	values.Set("singleEvents", "true")
	values.Set("orderBy", "startTime")
	requestURL := fmt.Sprintf(calendarEventsURLFormat, url.PathEscape(c.cfg.CalendarID)) +
		"?" + values.Encode()

	var body []byte
	err = c.withNetwork(func() error {
		var getErr error
		body, getErr = c.net.Get(ctx, requestURL, token)
		return getErr
	})
	if err != nil {
		return nil, err
	}

	return parseCalendarEvents(body, loc.Timezone)
}

func parseCalendarEvents(body []byte, fallbackZone string) ([]CalendarEvent, error) {
	var payload struct {
		Items []struct {
			Summary string `json:"summary"`
			Start   struct {
				DateTime *string `json:"dateTime"`
				TimeZone string  `json:"timeZone"`
			} `json:"start"`
			End struct {
				DateTime *string `json:"dateTime"`
			} `json:"end"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing events response: %w", err)
	}

	events := make([]CalendarEvent, 0, MaxCalendarEvents)
	for _, item := range payload.Items {
		// The panel fits MaxCalendarEvents lines; later events are
		// dropped silently, keeping API order.
		if len(events) == MaxCalendarEvents {
			break
		}

		event := CalendarEvent{
			Summary: common.TruncateEllipsis(item.Summary, SummaryBudget),
		}

		// A missing start dateTime marks an all-day event.
		if item.Start.DateTime == nil {
			event.AllDay = true
			events = append(events, event)
			continue
		}

		zone := item.Start.TimeZone
		if zone == "" {
			zone = fallbackZone
		}
		if clock, err := timezone.ConvertCivilToZone(zone, *item.Start.DateTime); err == nil {
			event.Start = clock
		}
		if item.End.DateTime != nil {
			if span, err := timezone.DurationBetween(*item.Start.DateTime, *item.End.DateTime); err == nil {
				event.Duration = span
			}
		}
		events = append(events, event)
	}

	return events, nil
}

// renderFact fetches the unauthenticated fact of the day and renders it in
// place of the events column. Failures leave the column empty.
func (c *Cycle) renderFact(ctx context.Context, log *logrus.Entry) {
	var body []byte
	err := c.withNetwork(func() error {
		var getErr error
		body, getErr = c.net.Get(ctx, factOfTheDayURL, "")
		return getErr
	})
	if err != nil {
		log.WithError(err).Error("fetching fact of the day")
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		log.WithError(err).Error("parsing fact of the day")
		return
	}

	err = c.withFramebuffer(func() error {
		return c.renderer.WriteFact(payload.Text)
	})
	if err != nil {
		log.WithError(err).Error("rendering fact of the day")
	}
}
