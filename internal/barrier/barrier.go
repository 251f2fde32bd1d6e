package barrier

import "sync"

// Flag identifies one completion signal in the cycle's flag set.
type Flag uint32

const (
	// FlagLocation is raised once coordinates and timezone are published.
	FlagLocation Flag = 1 << iota
	// FlagCurrentWeather is raised when the current-conditions task exits.
	FlagCurrentWeather
	// FlagForecast is raised when the multi-day forecast task exits.
	FlagForecast
	// FlagCalendar is raised when the calendar task exits, whether it
	// rendered events or fell back to the fact of the day.
	FlagCalendar
)

// AllDomainFlags is the full set the refresh task waits on before it
// commits the framebuffer and powers the device down.
const AllDomainFlags = FlagLocation | FlagCurrentWeather | FlagForecast | FlagCalendar

// Barrier is a set of named completion flags shared by the cycle's tasks.
// Tasks raise their flag on exit regardless of success; waiters block until
// every flag they ask for has been raised at least once. There is no
// timeout: the refresh task must never fire on partial data, so a wedged
// fetch leaves the device to the hardware watchdog.
type Barrier struct {
	mu     sync.Mutex
	cond   *sync.Cond
	raised Flag
}

func New() *Barrier {
	b := &Barrier{}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Raise marks a flag (or a set of flags) as raised and wakes all waiters.
// Raising an already-raised flag is a no-op. Never blocks.
func (b *Barrier) Raise(f Flag) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.raised&f == f {
		return
	}
	b.raised |= f
	b.cond.Broadcast()
}

// AwaitAll blocks until every flag in set has been raised at least once
// since the last clear. The flags stay raised, so any number of waiters may
// pass the same prerequisite.
func (b *Barrier) AwaitAll(set Flag) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.raised&set != set {
		b.cond.Wait()
	}
}

// AwaitAllAndClear blocks like AwaitAll and then clears the awaited flags.
// Used exactly once per cycle, by the refresh task consuming the full
// completion set.
func (b *Barrier) AwaitAllAndClear(set Flag) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for b.raised&set != set {
		b.cond.Wait()
	}
	b.raised &^= set
}

// Raised reports whether every flag in set is currently raised.
func (b *Barrier) Raised(set Flag) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.raised&set == set
}
