// Package power drives the terminal power transition of a cycle.
package power

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Manager disconnects networking and puts the device into deep sleep. On
// the real device EnterDeepSleep does not return; this host build logs the
// transition and returns so the surrounding process can exit, which is the
// same full-restart semantic the firmware gets from waking up.
type Manager struct {
	log        *logrus.Entry
	disconnect func()
}

// New creates a Manager. disconnect tears down the outbound transport
// (e.g. closing idle connections); it may be nil.
func New(log *logrus.Entry, disconnect func()) *Manager {
	return &Manager{
		log:        log.WithField("component", "power"),
		disconnect: disconnect,
	}
}

func (m *Manager) DisconnectNetwork() error {
	m.log.Info("disconnecting network")
	if m.disconnect != nil {
		m.disconnect()
	}
	return nil
}

func (m *Manager) EnterDeepSleep(durationHint time.Duration) error {
	m.log.WithField("duration_hint", durationHint.String()).Info("entering deep sleep")
	return nil
}
