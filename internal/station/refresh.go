package station

import "github.com/ruimsramos/epaper-display/internal/barrier"

// runRefreshTask consumes the full completion set, commits the framebuffer
// to the panel and hands the device to the power controller. The commit is
// attempted exactly once per cycle; a commit error is logged, but the
// power-down transition proceeds regardless, since the next cycle starts
// from a clean slate anyway.
func (c *Cycle) runRefreshTask() {
	log := c.log.WithField("task", "refresh")

	c.flags.AwaitAllAndClear(barrier.AllDomainFlags)

	err := c.withFramebuffer(func() error {
		return c.renderer.Commit()
	})
	if err != nil {
		log.WithError(err).Error("committing framebuffer to panel")
	} else {
		log.Info("panel refreshed")
	}

	if err := c.power.DisconnectNetwork(); err != nil {
		log.WithError(err).Error("disconnecting network")
	}
	if err := c.power.EnterDeepSleep(c.cfg.SleepDuration); err != nil {
		log.WithError(err).Error("entering deep sleep")
	}
}
