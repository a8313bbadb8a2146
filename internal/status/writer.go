// Package status publishes the window manager state to status bars: a
// line protocol on a writer (usually stdout) and EWMH desktop hints.
package status

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/1broseidon/tagtile/internal/wm"
)

// Writer prints one block per monitor after every change:
//
//	<output> title <title>
//	<output> appid <appid>
//	<output> fullscreen <0|1>
//	<output> floating <0|1>
//	<output> selmon <0|1>
//	<output> tags <occupied> <active> <focused-client> <urgent>
//	<output> layout <symbol>
//
// Errors are printed as a single "error <message>" line.
type Writer struct {
	mu     sync.Mutex
	w      *bufio.Writer
	logger *slog.Logger
}

var _ wm.StatusSink = (*Writer)(nil)

func NewWriter(w io.Writer, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{w: bufio.NewWriter(w), logger: logger}
}

// Update writes the status blocks and flushes them as one write.
func (s *Writer) Update(status []wm.MonitorStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range status {
		s.line(st.Output, "title", oneLine(st.Title))
		s.line(st.Output, "appid", oneLine(st.AppID))
		s.line(st.Output, "fullscreen", flag(st.Fullscreen))
		s.line(st.Output, "floating", flag(st.Floating))
		s.line(st.Output, "selmon", flag(st.Selected))
		s.line(st.Output, "tags", fmt.Sprintf("%d %d %d %d",
			st.Occupied.Uint32(), st.Active.Uint32(), st.Focused.Uint32(), st.Urgent.Uint32()))
		s.line(st.Output, "layout", st.Layout)
	}
	s.flush()
}

// Error reports a user-visible error.
func (s *Writer) Error(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "error %s\n", oneLine(err.Error()))
	s.flush()
}

func (s *Writer) line(output, key, value string) {
	fmt.Fprintf(s.w, "%s %s %s\n", output, key, value)
}

func (s *Writer) flush() {
	if err := s.w.Flush(); err != nil {
		s.logger.Debug("status write failed", "error", err)
	}
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
