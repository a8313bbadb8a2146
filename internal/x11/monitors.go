package x11

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Output is an enabled RandR output with its position in the root window.
type Output struct {
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// Outputs lists the enabled outputs, one per active CRTC, ordered by
// position.
func (c *Connection) Outputs() ([]Output, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var outputs []Output
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("CRTC-%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		outputs = append(outputs, Output{
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}
	sort.Slice(outputs, func(i, j int) bool {
		if outputs[i].X != outputs[j].X {
			return outputs[i].X < outputs[j].X
		}
		return outputs[i].Y < outputs[j].Y
	})
	return outputs, nil
}

// WatchOutputs asks for RandR screen change notifications and calls fn on
// the event goroutine after each one.
func (c *Connection) WatchOutputs(fn func()) error {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return fmt.Errorf("randr init failed: %w", err)
	}
	err := randr.SelectInputChecked(c.XUtil.Conn(), c.Root, randr.NotifyMaskScreenChange).Check()
	if err != nil {
		return fmt.Errorf("select randr events: %w", err)
	}
	xevent.HookFun(func(_ *xgbutil.XUtil, ev interface{}) bool {
		if _, ok := ev.(randr.ScreenChangeNotifyEvent); ok {
			fn()
		}
		return true
	}).Connect(c.XUtil)
	return nil
}

// DiffOutputs compares two output lists by name. changed holds outputs
// present in both whose geometry differs.
func DiffOutputs(prev, curr []Output) (added, removed, changed []Output) {
	old := make(map[string]Output, len(prev))
	for _, o := range prev {
		old[o.Name] = o
	}
	seen := make(map[string]bool, len(curr))
	for _, o := range curr {
		seen[o.Name] = true
		p, ok := old[o.Name]
		switch {
		case !ok:
			added = append(added, o)
		case p != o:
			changed = append(changed, o)
		}
	}
	for _, o := range prev {
		if !seen[o.Name] {
			removed = append(removed, o)
		}
	}
	return added, removed, changed
}
