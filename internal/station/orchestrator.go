package station

import (
	"context"
	"sync"
)

// Run starts the fixed task graph exactly once and returns after the
// terminal refresh has been dispatched. The graph is asymmetric: location
// runs first; current weather, forecast and calendar all gate on the
// location flag and otherwise run concurrently, serialized only through
// the shared network channel; refresh gates on all four.
//
// Run never retries: each task owns its failure policy and raises its
// completion flag on every exit path, so a failed fetch costs one stale
// widget, not the cycle. A task that wedges leaves refresh blocked with no
// timeout; recovering from that is the hardware watchdog's job, because
// half a refresh would freeze stale data next to fresh on the panel.
func (c *Cycle) Run(ctx context.Context) {
	var wg sync.WaitGroup

	start := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	start(func() { c.runLocationTask(ctx) })
	start(func() { c.runCurrentWeatherTask(ctx) })
	start(func() { c.runForecastTask(ctx) })
	start(func() { c.runCalendarTask(ctx) })
	start(c.runRefreshTask)

	wg.Wait()
}
