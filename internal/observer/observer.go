// Package observer provides the stock subscribers for a station dispatcher:
// a display, an alert forwarder and a statistics collector.
package observer

import (
	"log/slog"
	"sync/atomic"
)

// base carries identity and the activation toggle shared by every observer.
type base struct {
	name   string
	active atomic.Bool
	log    *slog.Logger
}

func (b *base) init(name, kind string, l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	b.name = name
	b.log = l.With("observer", name, "kind", kind)
	b.active.Store(true)
}

func (b *base) ID() string { return b.name }

func (b *base) Active() bool { return b.active.Load() }

// SetActive toggles delivery. Inactive observers are skipped by the dispatcher.
func (b *base) SetActive(active bool) {
	if b.active.Swap(active) == active {
		return
	}
	if active {
		b.log.Info("Observer activated")
	} else {
		b.log.Info("Observer deactivated")
	}
}
