package status

import (
	"log/slog"

	"github.com/1broseidon/tagtile/internal/wm"
)

// Fanout forwards every update and error to each sink in order.
type Fanout []wm.StatusSink

func (f Fanout) Update(status []wm.MonitorStatus) {
	for _, s := range f {
		s.Update(status)
	}
}

func (f Fanout) Error(err error) {
	for _, s := range f {
		s.Error(err)
	}
}

// DesktopPublisher exposes the current tag as an EWMH desktop.
type DesktopPublisher interface {
	SetCurrentDesktop(desktop int) error
}

// Desktops publishes the lowest active tag of the selected monitor as the
// current desktop, so pagers that only know EWMH follow the view.
type Desktops struct {
	pub    DesktopPublisher
	logger *slog.Logger
	last   int
}

func NewDesktops(pub DesktopPublisher, logger *slog.Logger) *Desktops {
	if logger == nil {
		logger = slog.Default()
	}
	return &Desktops{pub: pub, logger: logger, last: -1}
}

func (d *Desktops) Update(status []wm.MonitorStatus) {
	for _, st := range status {
		if !st.Selected || st.Active.IsZero() {
			continue
		}
		cur := st.Active.Lowest()
		if cur == d.last {
			return
		}
		if err := d.pub.SetCurrentDesktop(cur); err != nil {
			d.logger.Debug("failed to publish current desktop", "error", err)
			return
		}
		d.last = cur
		return
	}
}

func (d *Desktops) Error(error) {}
