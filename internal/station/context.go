// Package station holds the per-cycle task graph of the display: the four
// domain fetches, the refresh task that commits the panel, and the context
// object that wires them to their collaborators.
package station

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ruimsramos/epaper-display/internal/barrier"
	"github.com/ruimsramos/epaper-display/internal/config"
)

// NetworkClient is the single outbound HTTPS channel. It must only be
// called with the network lock domain held.
type NetworkClient interface {
	Get(ctx context.Context, rawURL, bearerToken string) ([]byte, error)
}

// TokenProvider produces a short-lived bearer token for the calendar
// query. Implemented by the credential pipeline.
type TokenProvider interface {
	Authorize(ctx context.Context) (string, error)
}

// Renderer is the widget-level drawing surface backed by the shared
// framebuffer. Every call must be made with the framebuffer lock domain
// held; Commit pushes the buffer to the physical panel.
type Renderer interface {
	WriteLocation(city, countryCode string) error
	WriteDate(date string) error
	WriteLastUpdated(clock string) error
	WriteCurrentWeather(w WeatherSnapshot) error
	WriteForecast(days []ForecastDay) error
	WriteEvents(events []CalendarEvent) error
	WriteFact(fact string) error
	Commit() error
}

// PowerController performs the terminal power transition. EnterDeepSleep
// does not return on the real device.
type PowerController interface {
	DisconnectNetwork() error
	EnterDeepSleep(durationHint time.Duration) error
}

// Cycle is the context of one power cycle. It replaces the firmware's
// global location/timezone state with an explicit object handed to every
// task, so each dependency is visible and mockable.
type Cycle struct {
	cfg      *config.Config
	log      *logrus.Entry
	net      NetworkClient
	tokens   TokenProvider
	renderer Renderer
	power    PowerController
	guard    *barrier.Guard
	flags    *barrier.Barrier
	now      func() time.Time

	// loc is written exactly once, by the location task, before
	// FlagLocation is raised; the barrier's ordering makes the plain
	// fields safe for every reader that awaited the flag. No task may
	// mutate it after publication.
	loc   Location
	locOK bool
}

// NewCycle wires a cycle. A nil required collaborator is an initialization
// error and aborts before any task starts.
func NewCycle(
	cfg *config.Config,
	log *logrus.Entry,
	net NetworkClient,
	tokens TokenProvider,
	renderer Renderer,
	power PowerController,
) (*Cycle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("station: configuration is required")
	}
	if log == nil {
		return nil, fmt.Errorf("station: logger is required")
	}
	if net == nil {
		return nil, fmt.Errorf("station: network client is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("station: renderer is required")
	}
	if power == nil {
		return nil, fmt.Errorf("station: power controller is required")
	}

	return &Cycle{
		cfg:      cfg,
		log:      log,
		net:      net,
		tokens:   tokens,
		renderer: renderer,
		power:    power,
		guard:    barrier.NewGuard(),
		flags:    barrier.New(),
		now:      time.Now,
	}, nil
}

// publishLocation records the resolved location for downstream tasks. Must
// be called before FlagLocation is raised.
func (c *Cycle) publishLocation(loc Location) {
	c.loc = loc
	c.locOK = true
}

// location returns the published location. Callers must have awaited
// FlagLocation; ok is false when the location task failed and downstream
// widgets should stay stale.
func (c *Cycle) location() (Location, bool) {
	return c.loc, c.locOK
}

// withNetwork runs fn holding the network lock domain.
func (c *Cycle) withNetwork(fn func() error) error {
	return c.guard.WithLock(barrier.DomainNetwork, fn)
}

// withFramebuffer runs fn holding the framebuffer lock domain.
func (c *Cycle) withFramebuffer(fn func() error) error {
	return c.guard.WithLock(barrier.DomainFramebuffer, fn)
}
