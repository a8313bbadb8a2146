package wm

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/1broseidon/tagtile/internal/bindings"
	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/platform"
	"github.com/1broseidon/tagtile/internal/scratch"
	"github.com/1broseidon/tagtile/internal/tags"
	"github.com/1broseidon/tagtile/internal/tiling"
)

type placement struct {
	Rect   tiling.Rect
	Border int
}

type fakeBackend struct {
	placed  map[platform.WindowID]placement
	shown   map[platform.WindowID]bool
	focused platform.WindowID
	closed  []platform.WindowID
	vts     []int
	hides   int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		placed: make(map[platform.WindowID]placement),
		shown:  make(map[platform.WindowID]bool),
	}
}

func (f *fakeBackend) Place(id platform.WindowID, r tiling.Rect, border int) error {
	f.placed[id] = placement{Rect: r, Border: border}
	return nil
}

func (f *fakeBackend) Show(id platform.WindowID) error {
	f.shown[id] = true
	return nil
}

func (f *fakeBackend) Hide(id platform.WindowID) error {
	f.shown[id] = false
	f.hides++
	return nil
}

func (f *fakeBackend) Focus(id platform.WindowID) error {
	f.focused = id
	return nil
}

func (f *fakeBackend) Close(id platform.WindowID) error {
	f.closed = append(f.closed, id)
	return nil
}

func (f *fakeBackend) ChangeVT(vt int) error {
	f.vts = append(f.vts, vt)
	return nil
}

func (f *fakeBackend) Windows() ([]platform.WindowID, error) {
	out := make([]platform.WindowID, 0, len(f.placed))
	for id := range f.placed {
		out = append(out, id)
	}
	return out, nil
}

type launch struct {
	Argv []string
	Key  rune
}

type fakeLauncher struct {
	launches []launch
	err      error
}

func (l *fakeLauncher) Spawn(argv []string, key rune) error {
	l.launches = append(l.launches, launch{Argv: argv, Key: key})
	return l.err
}

type fakeSink struct {
	last    []MonitorStatus
	updates int
	errs    []error
}

func (s *fakeSink) Update(status []MonitorStatus) {
	s.last = status
	s.updates++
}

func (s *fakeSink) Error(err error) { s.errs = append(s.errs, err) }

type fixture struct {
	m        *Manager
	backend  *fakeBackend
	launcher *fakeLauncher
	sink     *fakeSink
}

// newFixture builds a manager over a 1000x800 output named "A" with no bar
// and smart borders off, so tiled geometry equals the raw layout output.
func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Bar.Show = false
	cfg.SmartBorders = false
	if mutate != nil {
		mutate(cfg)
	}
	f := &fixture{backend: newFakeBackend(), launcher: &fakeLauncher{}, sink: &fakeSink{}}
	m, err := New(Options{
		Config:   cfg,
		Backend:  f.backend,
		Launcher: f.launcher,
		Status:   f.sink,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.m = m
	f.attach("A", 1000, 800)
	return f
}

func (f *fixture) attach(name string, w, h int) {
	f.m.Handle(platform.MonitorAttached{Output: platform.Output{Name: name, Width: w, Height: h}})
}

func (f *fixture) open(id platform.WindowID, appID string) *Client {
	f.m.Handle(platform.WindowAppeared{Window: platform.Window{ID: id, AppID: appID, Title: appID}})
	return f.m.Client(id)
}

func (f *fixture) dispatch(t *testing.T, a bindings.Action) {
	t.Helper()
	if err := f.m.Dispatch(a); err != nil {
		t.Fatalf("Dispatch(%s): %v", a, err)
	}
}

func TestNewRequiresBackend(t *testing.T) {
	if _, err := New(Options{}); !errors.Is(err, ErrNoBackend) {
		t.Fatalf("New() error = %v, want ErrNoBackend", err)
	}
}

func TestTileTwoWindows(t *testing.T) {
	f := newFixture(t, nil)
	f.open(1, "foot")
	f.open(2, "foot")

	if diff := cmp.Diff([]platform.WindowID{2, 1}, f.m.ClientIDs()); diff != "" {
		t.Fatalf("client order mismatch (-want +got):\n%s", diff)
	}
	want := map[platform.WindowID]placement{
		2: {Rect: tiling.Rect{X: 0, Y: 0, Width: 550, Height: 800}, Border: 1},
		1: {Rect: tiling.Rect{X: 550, Y: 0, Width: 450, Height: 800}, Border: 1},
	}
	if diff := cmp.Diff(want, f.backend.placed); diff != "" {
		t.Fatalf("placement mismatch (-want +got):\n%s", diff)
	}
	if f.m.Selected().ID != 2 || f.backend.focused != 2 {
		t.Fatalf("selected = %d, focused = %d, want newest window 2", f.m.Selected().ID, f.backend.focused)
	}
}

func TestSmartBordersSingleWindow(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.SmartBorders = true })
	f.open(1, "foot")
	if got := f.backend.placed[1]; got.Border != 0 || got.Rect.Width != 1000 {
		t.Fatalf("single window placement = %+v, want full width without border", got)
	}
	f.open(2, "foot")
	if got := f.backend.placed[1]; got.Border != 1 {
		t.Fatalf("border with two windows = %d, want 1", got.Border)
	}
}

func TestRuleAssignsTag(t *testing.T) {
	f := newFixture(t, nil)
	c := f.open(7, "mpv")

	if c.Tags != tags.Bit(3) {
		t.Fatalf("mpv tags = %s, want %s", c.Tags, tags.Bit(3))
	}
	if f.m.Visible(c) || f.backend.shown[7] {
		t.Fatal("mpv should not be visible while tag 1 is viewed")
	}
	if f.m.Selected() != nil {
		t.Fatalf("selected = %v, want none", f.m.Selected().ID)
	}

	f.dispatch(t, bindings.View{Tags: tags.Bit(3)})
	if !f.backend.shown[7] || f.m.Selected() != c {
		t.Fatal("viewing tag 4 should show and focus mpv")
	}
}

func TestViewAndViewPrev(t *testing.T) {
	f := newFixture(t, nil)
	mon := f.m.SelectedMonitor()

	f.dispatch(t, bindings.View{Tags: tags.Bit(1)})
	if mon.Tags() != tags.Bit(1) || mon.PrevTags() != tags.Bit(0) {
		t.Fatalf("after view: tags %s prev %s", mon.Tags(), mon.PrevTags())
	}
	// Viewing the current mask keeps the history intact.
	f.dispatch(t, bindings.View{Tags: tags.Bit(1)})
	if mon.PrevTags() != tags.Bit(0) {
		t.Fatalf("re-view changed prev to %s", mon.PrevTags())
	}
	f.dispatch(t, bindings.ViewPrev{})
	if mon.Tags() != tags.Bit(0) {
		t.Fatalf("viewprev tags = %s, want %s", mon.Tags(), tags.Bit(0))
	}
	f.dispatch(t, bindings.ViewPrev{})
	if mon.Tags() != tags.Bit(1) {
		t.Fatalf("second viewprev tags = %s, want %s", mon.Tags(), tags.Bit(1))
	}

	f.dispatch(t, bindings.View{Tags: tags.All})
	if mon.Tags() != tags.Full(9) {
		t.Fatalf("view all = %s, want %s", mon.Tags(), tags.Full(9))
	}
	f.dispatch(t, bindings.View{Tags: tags.Bit(20)})
	if mon.Tags() != tags.Full(9) {
		t.Fatal("viewing a tag outside the configured range must be ignored")
	}
}

func TestToggleViewSelfInverse(t *testing.T) {
	f := newFixture(t, nil)
	mon := f.m.SelectedMonitor()

	f.dispatch(t, bindings.ToggleView{Tags: tags.Bit(2)})
	if want := tags.Bit(0) | tags.Bit(2); mon.Tags() != want {
		t.Fatalf("toggleview = %s, want %s", mon.Tags(), want)
	}
	f.dispatch(t, bindings.ToggleView{Tags: tags.Bit(2)})
	if mon.Tags() != tags.Bit(0) {
		t.Fatalf("toggleview twice = %s, want %s", mon.Tags(), tags.Bit(0))
	}
	f.dispatch(t, bindings.ToggleView{Tags: tags.Bit(0)})
	if mon.Tags() != tags.Bit(0) {
		t.Fatalf("toggling the only tag left %s, want it kept", mon.Tags())
	}
}

func TestTagsNeverZero(t *testing.T) {
	f := newFixture(t, nil)
	c := f.open(1, "foot")

	f.dispatch(t, bindings.Tag{Tags: 0})
	f.dispatch(t, bindings.ToggleTag{Tags: tags.Bit(0)})
	f.dispatch(t, bindings.Tag{Tags: tags.Bit(30)})
	if c.Tags != tags.Bit(0) {
		t.Fatalf("client tags = %s, want %s", c.Tags, tags.Bit(0))
	}

	f.dispatch(t, bindings.ToggleTag{Tags: tags.Bit(4)})
	if want := tags.Bit(0) | tags.Bit(4); c.Tags != want {
		t.Fatalf("toggletag = %s, want %s", c.Tags, want)
	}
	f.dispatch(t, bindings.Tag{Tags: tags.Bit(5)})
	if c.Tags != tags.Bit(5) || f.m.Visible(c) {
		t.Fatalf("tag moved client to %s, visible=%v", c.Tags, f.m.Visible(c))
	}
	if f.m.Selected() != nil {
		t.Fatal("focus should leave a window moved off the view")
	}
}

func TestStickyWindowFollowsView(t *testing.T) {
	f := newFixture(t, nil)
	c := f.open(1, "foot")
	f.dispatch(t, bindings.Tag{Tags: tags.All})
	if !c.Tags.Sticky() {
		t.Fatalf("tags = %s, want sticky", c.Tags)
	}
	for _, i := range []int{3, 8} {
		f.dispatch(t, bindings.View{Tags: tags.Bit(i)})
		if !f.m.Visible(c) {
			t.Fatalf("sticky window hidden on tag %d", i+1)
		}
	}
}

func TestStatusOccupiedSkipsSticky(t *testing.T) {
	f := newFixture(t, nil)
	f.open(1, "foot")
	f.open(2, "firefox")
	f.dispatch(t, bindings.Tag{Tags: tags.All})
	f.dispatch(t, bindings.View{Tags: tags.Bit(4)})

	st := f.m.Status()
	if len(st) != 1 {
		t.Fatalf("status for %d monitors, want 1", len(st))
	}
	got := st[0]
	if got.Occupied != tags.Bit(0) {
		t.Fatalf("occupied = %s, want %s", got.Occupied, tags.Bit(0))
	}
	if got.Active != tags.Bit(4) || got.Title != "firefox" || !got.Selected {
		t.Fatalf("status = %+v", got)
	}
	if f.sink.updates == 0 || f.sink.last[0].Active != tags.Bit(4) {
		t.Fatal("status sink did not receive the latest state")
	}
}

func TestUrgencyReportedUntilFocused(t *testing.T) {
	f := newFixture(t, nil)
	f.open(1, "foot")
	f.open(2, "foot")
	f.dispatch(t, bindings.Tag{Tags: tags.Bit(2)})

	f.m.Handle(platform.UrgencyChanged{ID: 2, Urgent: true})
	if got := f.m.Status()[0].Urgent; got != tags.Bit(2) {
		t.Fatalf("urgent = %s, want %s", got, tags.Bit(2))
	}
	f.dispatch(t, bindings.View{Tags: tags.Bit(2)})
	if f.m.Client(2).Urgent {
		t.Fatal("focusing a window must clear its urgency")
	}
}

func TestFocusStackWraps(t *testing.T) {
	f := newFixture(t, nil)
	f.open(1, "foot")
	f.open(2, "foot")
	f.open(3, "foot")

	var got []platform.WindowID
	for i := 0; i < 3; i++ {
		f.dispatch(t, bindings.FocusStack{Delta: 1})
		got = append(got, f.m.Selected().ID)
	}
	if diff := cmp.Diff([]platform.WindowID{2, 1, 3}, got); diff != "" {
		t.Fatalf("focus order mismatch (-want +got):\n%s", diff)
	}
	f.dispatch(t, bindings.FocusStack{Delta: -1})
	if f.m.Selected().ID != 1 {
		t.Fatalf("focusstack -1 selected %d, want 1", f.m.Selected().ID)
	}
}

func TestZoomAndMoveStack(t *testing.T) {
	f := newFixture(t, nil)
	f.open(1, "foot")
	f.open(2, "foot")
	f.open(3, "foot")

	f.m.focus(f.m.Client(1))
	f.dispatch(t, bindings.Zoom{})
	if diff := cmp.Diff([]platform.WindowID{1, 3, 2}, f.m.ClientIDs()); diff != "" {
		t.Fatalf("zoom order mismatch (-want +got):\n%s", diff)
	}
	// Zooming the master promotes the next tiled window.
	f.dispatch(t, bindings.Zoom{})
	if diff := cmp.Diff([]platform.WindowID{3, 1, 2}, f.m.ClientIDs()); diff != "" {
		t.Fatalf("zoom on master mismatch (-want +got):\n%s", diff)
	}
	if f.backend.placed[3].Rect.X != 0 {
		t.Fatalf("promoted window at %s, want master column", f.backend.placed[3].Rect)
	}

	f.m.focus(f.m.Client(3))
	f.dispatch(t, bindings.MoveStack{Delta: 1})
	if diff := cmp.Diff([]platform.WindowID{1, 3, 2}, f.m.ClientIDs()); diff != "" {
		t.Fatalf("movestack order mismatch (-want +got):\n%s", diff)
	}
}

func TestMasterParameters(t *testing.T) {
	f := newFixture(t, nil)
	f.open(1, "foot")
	f.open(2, "foot")
	mon := f.m.SelectedMonitor()

	f.dispatch(t, bindings.SetMFact{Delta: 0.05})
	if mon.MFact < 0.599 || mon.MFact > 0.601 {
		t.Fatalf("mfact = %v, want 0.6", mon.MFact)
	}
	f.dispatch(t, bindings.SetMFact{Delta: 0.5, Absolute: true})
	if mon.MFact != 0.5 || f.backend.placed[2].Rect.Width != 500 {
		t.Fatalf("absolute mfact = %v, master width %d", mon.MFact, f.backend.placed[2].Rect.Width)
	}

	f.dispatch(t, bindings.IncNMaster{Delta: 1})
	if mon.NMaster != 2 || f.backend.placed[1].Rect.Width != 1000 {
		t.Fatalf("nmaster = %d, second window %s", mon.NMaster, f.backend.placed[1].Rect)
	}
	f.dispatch(t, bindings.IncNMaster{Delta: -5})
	if mon.NMaster != 0 {
		t.Fatalf("nmaster = %d, want clamped to 0", mon.NMaster)
	}
}

func TestSetLayoutSwapsPair(t *testing.T) {
	f := newFixture(t, nil)
	mon := f.m.SelectedMonitor()
	if mon.LayoutIndex() != 0 {
		t.Fatalf("initial layout = %d", mon.LayoutIndex())
	}

	f.dispatch(t, bindings.SetLayout{Index: 2})
	if mon.LayoutIndex() != 2 {
		t.Fatalf("layout = %d, want 2", mon.LayoutIndex())
	}
	f.dispatch(t, bindings.SetLayout{Index: -1})
	if mon.LayoutIndex() != 0 {
		t.Fatalf("layout after swap = %d, want 0", mon.LayoutIndex())
	}
	f.dispatch(t, bindings.SetLayout{Index: -1})
	if mon.LayoutIndex() != 2 {
		t.Fatalf("layout after second swap = %d, want 2", mon.LayoutIndex())
	}
	if err := f.m.Dispatch(bindings.SetLayout{Index: 9}); err == nil {
		t.Fatal("out-of-range layout should error")
	}
}

func TestMonocleAndFloatingLayouts(t *testing.T) {
	f := newFixture(t, nil)
	f.open(1, "foot")
	f.open(2, "foot")

	f.dispatch(t, bindings.SetLayout{Index: 2})
	for _, id := range []platform.WindowID{1, 2} {
		if got := f.backend.placed[id].Rect; got != (tiling.Rect{Width: 1000, Height: 800}) {
			t.Fatalf("monocle window %d at %s", id, got)
		}
	}

	f.dispatch(t, bindings.SetLayout{Index: 1})
	c := f.m.Client(2)
	if got := f.backend.placed[2].Rect; got != c.Float {
		t.Fatalf("floating layout placed %s, want stored float %s", got, c.Float)
	}
	f.dispatch(t, bindings.SetMFact{Delta: 0.1})
	if f.m.SelectedMonitor().MFact != 0.55 {
		t.Fatal("mfact must not change under the floating layout")
	}
}

func TestToggleFloatingKeepsGeometry(t *testing.T) {
	f := newFixture(t, nil)
	f.open(1, "foot")
	f.open(2, "foot")
	c := f.m.Client(2)
	before := c.Geom

	f.dispatch(t, bindings.ToggleFloating{})
	if !c.Floating || c.Float != before {
		t.Fatalf("floating=%v float=%s, want geometry %s kept", c.Floating, c.Float, before)
	}
	if got := f.backend.placed[1].Rect.Width; got != 1000 {
		t.Fatalf("remaining tiled window width = %d, want 1000", got)
	}
}

func TestFullscreenRequest(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Bar.Show = true })
	f.open(1, "foot")
	f.m.Handle(platform.FullscreenRequested{ID: 1, Fullscreen: true})

	want := placement{Rect: tiling.Rect{Width: 1000, Height: 800}}
	if got := f.backend.placed[1]; got != want {
		t.Fatalf("fullscreen placement = %+v, want %+v", got, want)
	}
	f.dispatch(t, bindings.ToggleFullscreen{})
	if got := f.backend.placed[1].Rect.Height; got != 768 {
		t.Fatalf("height after leaving fullscreen = %d, want work area 768", got)
	}
}

func TestToggleBar(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Bar.Show = true })
	f.open(1, "foot")
	if got := f.backend.placed[1].Rect.Height; got != 768 {
		t.Fatalf("height with bar = %d, want 768", got)
	}
	f.dispatch(t, bindings.ToggleBar{})
	if got := f.backend.placed[1].Rect.Height; got != 800 {
		t.Fatalf("height without bar = %d, want 800", got)
	}
}

func TestScratchpadLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	f.open(1, "foot")

	f.dispatch(t, bindings.ToggleScratch{Key: 't'})
	f.dispatch(t, bindings.ToggleScratch{Key: 't'})
	if len(f.launcher.launches) != 1 {
		t.Fatalf("launches = %d, want 1 while the spawn is pending", len(f.launcher.launches))
	}
	if got := f.launcher.launches[0]; got.Key != 't' || len(got.Argv) == 0 {
		t.Fatalf("launch = %+v", got)
	}

	pad := f.open(9, "ghostty.term")
	if pad.ScratchKey != 't' || !pad.Floating {
		t.Fatalf("scratch window key=%q floating=%v", pad.ScratchKey, pad.Floating)
	}
	if !f.backend.shown[9] || f.m.Selected() != pad {
		t.Fatal("scratch window should be shown and focused on arrival")
	}
	// The launching process may exit once the window exists.
	f.m.Handle(platform.SpawnFailed{Argv: []string{"ghostty"}, ScratchKey: 't', Err: errors.New("command exited")})
	if !f.m.pads.Visible('t') || len(f.sink.errs) != 0 {
		t.Fatalf("exit after the window arrived changed the pad: visible=%v errs=%v", f.m.pads.Visible('t'), f.sink.errs)
	}

	f.dispatch(t, bindings.ToggleScratch{Key: 't'})
	if f.backend.shown[9] || f.m.Selected().ID != 1 {
		t.Fatal("toggle should hide the pad and return focus")
	}
	// Hidden pads stay hidden across views.
	f.dispatch(t, bindings.View{Tags: tags.Bit(1)})
	f.dispatch(t, bindings.ViewPrev{})
	if f.backend.shown[9] {
		t.Fatal("view change revealed a hidden pad")
	}

	f.dispatch(t, bindings.ToggleScratch{Key: 't'})
	if !f.backend.shown[9] || f.m.Selected() != pad {
		t.Fatal("toggle should show the pad again")
	}
	if len(f.launcher.launches) != 1 {
		t.Fatal("a live pad must not spawn again")
	}

	f.m.Handle(platform.WindowDisappeared{ID: 9})
	f.dispatch(t, bindings.ToggleScratch{Key: 't'})
	if len(f.launcher.launches) != 2 {
		t.Fatalf("launches = %d, want a respawn after the window closed", len(f.launcher.launches))
	}
}

func TestScratchpadSpawnFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.launcher.err = errors.New("exec: not found")

	if err := f.m.Dispatch(bindings.ToggleScratch{Key: 't'}); err == nil {
		t.Fatal("expected spawn error")
	}
	if len(f.sink.errs) != 1 {
		t.Fatalf("reported errors = %d, want 1", len(f.sink.errs))
	}
	if pad, _ := f.m.pads.Get('t'); pad.State != scratch.Unspawned {
		t.Fatalf("pad state = %v, want unspawned", pad.State)
	}

	f.launcher.err = nil
	f.dispatch(t, bindings.ToggleScratch{Key: 't'})
	f.m.Handle(platform.SpawnFailed{Argv: []string{"ghostty"}, ScratchKey: 't', Err: errors.New("exit status 1")})
	if pad, _ := f.m.pads.Get('t'); pad.State != scratch.Unspawned {
		t.Fatalf("pad state after async failure = %v, want unspawned", pad.State)
	}
	f.dispatch(t, bindings.ToggleScratch{Key: 't'})
	if len(f.launcher.launches) != 3 {
		t.Fatalf("launches = %d, want 3", len(f.launcher.launches))
	}
}

func TestUnknownScratchpadErrors(t *testing.T) {
	f := newFixture(t, nil)
	err := f.m.Dispatch(bindings.ToggleScratch{Key: 'z'})
	if !errors.Is(err, scratch.ErrNoCommand) {
		t.Fatalf("error = %v, want ErrNoCommand", err)
	}
}

func TestKeyPassThrough(t *testing.T) {
	f := newFixture(t, nil)
	if f.m.Handle(platform.KeyPressed{Key: "a"}) {
		t.Fatal("unbound key must not be consumed")
	}
	if !f.m.Handle(platform.KeyPressed{Mods: bindings.ModLogo, Key: "2"}) {
		t.Fatal("bound key must be consumed")
	}
	if f.m.SelectedMonitor().Tags() != tags.Bit(1) {
		t.Fatal("mod+2 should view tag 2")
	}
	if !f.m.Handle(platform.KeyPressed{Mods: bindings.ModLogo | bindings.ModCaps, Key: "1"}) {
		t.Fatal("caps lock must not affect matching")
	}
	if !f.m.Handle(platform.KeyPressed{Mods: bindings.ModCtrl | bindings.ModAlt, Key: "XF86Switch_VT_3"}) {
		t.Fatal("vt key not consumed")
	}
	if diff := cmp.Diff([]int{3}, f.backend.vts); diff != "" {
		t.Fatalf("vt switches mismatch (-want +got):\n%s", diff)
	}
}

func TestSpawnKey(t *testing.T) {
	f := newFixture(t, nil)
	f.m.Handle(platform.KeyPressed{Mods: bindings.ModLogo, Key: "r"})
	if len(f.launcher.launches) != 1 || f.launcher.launches[0].Key != 0 {
		t.Fatalf("launches = %+v", f.launcher.launches)
	}
}

func TestKillClientAndQuit(t *testing.T) {
	f := newFixture(t, nil)
	f.open(4, "foot")
	f.dispatch(t, bindings.KillClient{})
	if diff := cmp.Diff([]platform.WindowID{4}, f.backend.closed); diff != "" {
		t.Fatalf("closed mismatch (-want +got):\n%s", diff)
	}
	if f.m.Client(4) == nil {
		t.Fatal("killclient must wait for the window to disappear")
	}
	f.m.Handle(platform.WindowDisappeared{ID: 4})
	if f.m.Client(4) != nil || f.m.Selected() != nil {
		t.Fatal("window still managed after disappearing")
	}

	f.m.Handle(platform.KeyPressed{Mods: bindings.ModLogo | bindings.ModShift, Key: "Q"})
	if !f.m.Done() {
		t.Fatal("quit did not mark the manager done")
	}
}

func TestTagBarClick(t *testing.T) {
	f := newFixture(t, nil)
	f.open(1, "foot")
	f.m.Handle(platform.ButtonPressed{Click: bindings.ClickTagBar, Button: bindings.ButtonLeft, Tag: 2})
	if f.m.SelectedMonitor().Tags() != tags.Bit(2) {
		t.Fatalf("tags = %s, want %s", f.m.SelectedMonitor().Tags(), tags.Bit(2))
	}
	f.m.Handle(platform.ButtonPressed{Click: bindings.ClickTagBar, Button: bindings.ButtonRight, Tag: 0})
	if want := tags.Bit(0) | tags.Bit(2); f.m.SelectedMonitor().Tags() != want {
		t.Fatalf("tags = %s, want %s", f.m.SelectedMonitor().Tags(), want)
	}
}

func TestPointerMoveFloatsWindow(t *testing.T) {
	f := newFixture(t, nil)
	c := f.open(1, "foot")

	f.m.Handle(platform.ButtonPressed{Click: bindings.ClickClient, Mods: bindings.ModLogo, Button: bindings.ButtonLeft, Window: 1, X: 100, Y: 100})
	if !c.Floating {
		t.Fatal("moving a tiled window should float it")
	}
	f.m.Handle(platform.PointerMoved{X: 150, Y: 130})
	want := tiling.Rect{X: 50, Y: 30, Width: 1000, Height: 800}
	if c.Float != want || f.backend.placed[1].Rect != want {
		t.Fatalf("float = %s, placed %s, want %s", c.Float, f.backend.placed[1].Rect, want)
	}
	f.m.Handle(platform.ButtonReleased{Button: bindings.ButtonLeft, X: 150, Y: 130})
	f.m.Handle(platform.PointerMoved{X: 300, Y: 300})
	if c.Float != want {
		t.Fatal("motion after release must not move the window")
	}
}

func TestPointerResizeDragsMaster(t *testing.T) {
	f := newFixture(t, nil)
	f.open(1, "foot")
	f.open(2, "foot")

	f.m.Handle(platform.ButtonPressed{Click: bindings.ClickClient, Mods: bindings.ModLogo, Button: bindings.ButtonRight, Window: 2, X: 100, Y: 100})
	f.m.Handle(platform.PointerMoved{X: 600, Y: 100})
	f.m.Handle(platform.ButtonReleased{Button: bindings.ButtonRight, X: 600, Y: 100})

	if f.m.Client(2).Floating {
		t.Fatal("resizing in the tile layout must keep the window tiled")
	}
	if got := f.m.SelectedMonitor().MFact; got < 0.599 || got > 0.601 {
		t.Fatalf("mfact = %v, want 0.6", got)
	}
	if got := f.backend.placed[2].Rect.Width; got != 600 {
		t.Fatalf("master width = %d, want 600", got)
	}
}

func TestPointerResizeFloating(t *testing.T) {
	f := newFixture(t, nil)
	c := f.open(1, "foot")
	f.dispatch(t, bindings.ToggleFloating{})
	start := c.Float

	f.m.Handle(platform.ButtonPressed{Click: bindings.ClickClient, Mods: bindings.ModLogo, Button: bindings.ButtonRight, Window: 1, X: 500, Y: 500})
	f.m.Handle(platform.PointerMoved{X: 400, Y: 450})
	if c.Float.Width != start.Width-100 || c.Float.Height != start.Height-50 {
		t.Fatalf("float = %s, started at %s", c.Float, start)
	}
	f.m.Handle(platform.PointerMoved{X: -5000, Y: -5000})
	if c.Float.Width != 1 || c.Float.Height != 1 {
		t.Fatalf("float = %s, want sizes clamped to 1", c.Float)
	}
}

func TestSloppyFocus(t *testing.T) {
	f := newFixture(t, nil)
	f.open(1, "foot")
	f.open(2, "foot")
	f.m.Handle(platform.PointerMoved{X: 800, Y: 400})
	if f.m.Selected().ID != 1 {
		t.Fatalf("selected = %d, want window under pointer", f.m.Selected().ID)
	}

	g := newFixture(t, func(c *config.Config) { c.SloppyFocus = false })
	g.open(1, "foot")
	g.open(2, "foot")
	g.m.Handle(platform.PointerMoved{X: 800, Y: 400})
	if g.m.Selected().ID != 2 {
		t.Fatal("focus followed the pointer with sloppy focus off")
	}
}

func TestMonitorsOrderedAndFocusMon(t *testing.T) {
	f := newFixture(t, nil)
	f.attach("B", 800, 600)

	mons := f.m.Monitors()
	if len(mons) != 2 || mons[0].Name != "A" || mons[1].Name != "B" {
		t.Fatalf("monitors = %v", monitorNames(mons))
	}
	if mons[1].Geom != (tiling.Rect{X: 1000, Y: 0, Width: 800, Height: 600}) {
		t.Fatalf("B geometry = %s", mons[1].Geom)
	}

	f.dispatch(t, bindings.FocusMon{Dir: bindings.Right})
	if f.m.SelectedMonitor().Name != "B" {
		t.Fatalf("selected monitor = %s, want B", f.m.SelectedMonitor().Name)
	}
	f.dispatch(t, bindings.FocusMon{Dir: bindings.Right})
	if f.m.SelectedMonitor().Name != "A" {
		t.Fatal("focusmon should wrap around")
	}
}

func TestTagMonTakesTargetTags(t *testing.T) {
	f := newFixture(t, nil)
	f.attach("B", 800, 600)
	f.dispatch(t, bindings.FocusMon{Dir: bindings.Right})
	f.dispatch(t, bindings.View{Tags: tags.Bit(6)})
	f.dispatch(t, bindings.FocusMon{Dir: bindings.Left})

	c := f.open(1, "foot")
	f.dispatch(t, bindings.TagMon{Dir: bindings.Right})
	if c.Mon.Name != "B" || c.Tags != tags.Bit(6) {
		t.Fatalf("client on %s with %s, want B with %s", c.Mon.Name, c.Tags, tags.Bit(6))
	}
	if got := f.backend.placed[1].Rect; got != (tiling.Rect{X: 1000, Y: 0, Width: 800, Height: 600}) {
		t.Fatalf("placed at %s", got)
	}
	if f.m.SelectedMonitor().Name != "A" {
		t.Fatal("tagmon must not move monitor focus")
	}
}

func TestDetachMovesClientsKeepingTags(t *testing.T) {
	f := newFixture(t, nil)
	f.attach("B", 800, 600)
	f.dispatch(t, bindings.FocusMon{Dir: bindings.Right})
	f.dispatch(t, bindings.View{Tags: tags.Bit(1)})
	f.open(1, "foot")
	f.open(2, "foot")

	f.m.Handle(platform.MonitorDetached{Name: "B"})
	if len(f.m.Monitors()) != 1 || f.m.SelectedMonitor().Name != "A" {
		t.Fatal("selected monitor should fall back to A")
	}
	for _, id := range []platform.WindowID{1, 2} {
		c := f.m.Client(id)
		if c.Mon.Name != "A" || c.Tags != tags.Bit(1) {
			t.Fatalf("client %d on %v with %s", id, c.Mon.Name, c.Tags)
		}
		if f.m.Visible(c) {
			t.Fatalf("client %d visible on A's tag 1", id)
		}
	}
	if diff := cmp.Diff([]platform.WindowID{2, 1}, f.m.ClientIDs()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestLastMonitorPoolsClients(t *testing.T) {
	f := newFixture(t, nil)
	f.open(1, "foot")
	f.open(2, "foot")
	f.dispatch(t, bindings.ToggleTag{Tags: tags.Bit(3)})

	f.m.Handle(platform.MonitorDetached{Name: "A"})
	if f.m.SelectedMonitor() != nil || f.m.Selected() != nil {
		t.Fatal("no monitor or client should be selected without outputs")
	}
	if len(f.m.Pool()) != 2 || f.backend.shown[1] || f.backend.shown[2] {
		t.Fatal("pooled clients must be hidden")
	}

	// A window appearing with no outputs waits in the pool too.
	f.open(3, "foot")
	if f.m.Client(3).Mon != nil {
		t.Fatal("window without outputs should be pooled")
	}

	f.attach("HDMI-1", 1920, 1080)
	if len(f.m.Pool()) != 0 {
		t.Fatalf("pool = %d after attach, want 0", len(f.m.Pool()))
	}
	if diff := cmp.Diff([]platform.WindowID{3, 2, 1}, f.m.ClientIDs()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if want := tags.Bit(0) | tags.Bit(3); f.m.Client(2).Tags != want {
		t.Fatalf("tags = %s, want %s", f.m.Client(2).Tags, want)
	}
	if !f.backend.shown[1] || !f.backend.shown[2] {
		t.Fatal("adopted clients on the viewed tag should be shown")
	}
}

func TestMonitorRuleApplied(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.MonitorRules = append([]config.MonitorRule{{
			Name: "DP-1", MFact: 0.7, NMaster: 2, Scale: 2, Layout: 2,
			Transform: tiling.Transform90, X: 0, Y: 900,
		}}, c.MonitorRules...)
	})
	f.attach("DP-1", 3840, 2160)
	mon := f.m.Monitor("DP-1")
	if mon == nil {
		t.Fatal("DP-1 not attached")
	}
	want := tiling.Rect{X: 0, Y: 900, Width: 1080, Height: 1920}
	if mon.Geom != want || mon.MFact != 0.7 || mon.NMaster != 2 || mon.LayoutIndex() != 2 {
		t.Fatalf("monitor = %+v", mon)
	}
	// Monocle as the primary layout pairs with tile as the alternate.
	f.dispatch(t, bindings.FocusMon{Dir: bindings.Right})
	f.dispatch(t, bindings.SetLayout{Index: -1})
	if mon.LayoutIndex() != 1 {
		t.Fatalf("alternate layout = %d, want 1", mon.LayoutIndex())
	}
}

func TestReloadClampsState(t *testing.T) {
	f := newFixture(t, nil)
	f.dispatch(t, bindings.View{Tags: tags.Bit(5)})
	c := f.open(1, "foot")
	f.dispatch(t, bindings.SetLayout{Index: 2})

	next := config.DefaultConfig()
	next.Bar.Show = false
	next.Tags = []string{"web", "code", "chat"}
	next.Layouts = next.Layouts[:1]
	next.Rules = nil
	next.Keys = nil
	next.Buttons = nil
	if err := f.m.Reload(next); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	mon := f.m.SelectedMonitor()
	if mon.Tags() != tags.Bit(0) || mon.LayoutIndex() != 0 {
		t.Fatalf("monitor tags %s layout %d", mon.Tags(), mon.LayoutIndex())
	}
	if c.Tags != tags.Bit(0) || !f.m.Visible(c) {
		t.Fatalf("client tags = %s visible=%v", c.Tags, f.m.Visible(c))
	}
	if f.m.Handle(platform.KeyPressed{Mods: bindings.ModLogo, Key: "1"}) {
		t.Fatal("old key table still active after reload")
	}

	bad := config.DefaultConfig()
	bad.Layouts = nil
	if err := f.m.Reload(bad); err == nil {
		t.Fatal("invalid config should be rejected")
	}
	if f.m.Config() != next {
		t.Fatal("rejected reload replaced the config")
	}
}

func TestSnapshots(t *testing.T) {
	f := newFixture(t, nil)
	f.open(1, "foot")
	f.open(2, "mpv")

	clients := f.m.ClientInfos()
	if len(clients) != 2 {
		t.Fatalf("clients = %d", len(clients))
	}
	if clients[0].AppID != "mpv" || clients[0].Tags != "4" || clients[0].Visible {
		t.Fatalf("mpv info = %+v", clients[0])
	}
	if !clients[1].Focused || clients[1].Monitor != "A" {
		t.Fatalf("foot info = %+v", clients[1])
	}

	mons := f.m.MonitorInfos()
	if len(mons) != 1 || mons[0].Clients != 2 || !mons[0].Selected || mons[0].Tags != "1" {
		t.Fatalf("monitors = %+v", mons)
	}
}

func monitorNames(mons []*Monitor) []string {
	out := make([]string, len(mons))
	for i, m := range mons {
		out[i] = m.Name
	}
	return out
}

func TestPositionedOutputKeepsServerLayout(t *testing.T) {
	f := newFixture(t, nil)
	f.m.Handle(platform.MonitorAttached{Output: platform.Output{
		Name: "B", Width: 800, Height: 600, X: 0, Y: 800, Positioned: true,
	}})

	b := f.m.Monitor("B")
	if b == nil {
		t.Fatal("monitor B not attached")
	}
	if diff := cmp.Diff(tiling.Rect{X: 0, Y: 800, Width: 800, Height: 600}, b.Geom); diff != "" {
		t.Fatalf("geometry mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "B"}, monitorNames(f.m.Monitors())); diff != "" {
		t.Fatalf("monitor order mismatch (-want +got):\n%s", diff)
	}
}

func TestPositionedOutputIgnoresScaleAndTransform(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.MonitorRules = append([]config.MonitorRule{
			{Name: "DP-2", MFact: 0.55, NMaster: 1, Scale: 1, Transform: tiling.Transform90, X: -1, Y: -1},
			{Name: "DP-3", MFact: 0.55, NMaster: 1, Scale: 2, Transform: tiling.TransformNormal, X: -1, Y: -1},
		}, c.MonitorRules...)
	})
	f.m.Handle(platform.MonitorAttached{Output: platform.Output{
		Name: "DP-2", Width: 1080, Height: 1920, X: 1000, Y: 0, Positioned: true,
	}})
	f.m.Handle(platform.MonitorAttached{Output: platform.Output{
		Name: "DP-3", Width: 3840, Height: 2160, X: 2080, Y: 0, Positioned: true,
	}})

	want := map[string]tiling.Rect{
		"DP-2": {X: 1000, Y: 0, Width: 1080, Height: 1920},
		"DP-3": {X: 2080, Y: 0, Width: 3840, Height: 2160},
	}
	for name, geom := range want {
		mon := f.m.Monitor(name)
		if mon == nil {
			t.Fatalf("%s not attached", name)
		}
		if diff := cmp.Diff(geom, mon.Geom); diff != "" {
			t.Fatalf("%s geometry mismatch (-want +got):\n%s", name, diff)
		}
	}
	if overlaps(f.m.Monitor("DP-2").Geom, f.m.Monitor("DP-3").Geom) {
		t.Fatal("positioned monitors overlap")
	}

	// Re-attaching after a mode change keeps the server size too.
	f.m.Handle(platform.MonitorAttached{Output: platform.Output{
		Name: "DP-3", Width: 2560, Height: 1440, X: 2080, Y: 0, Positioned: true,
	}})
	if got := f.m.Monitor("DP-3").Geom; got.Width != 2560 || got.Height != 1440 {
		t.Fatalf("DP-3 after mode change = %v", got)
	}
}

func TestBarClick(t *testing.T) {
	f := newFixture(t, nil)
	f.attach("B", 800, 600)

	consumed, err := f.m.BarClick("B", bindings.ClickTagBar, 0, bindings.ButtonLeft, 3)
	if err != nil || !consumed {
		t.Fatalf("BarClick = %v, %v", consumed, err)
	}
	if f.m.SelectedMonitor().Name != "B" {
		t.Fatalf("selected monitor = %s, want B", f.m.SelectedMonitor().Name)
	}
	if got := f.m.Monitor("B").Tags(); got != tags.Bit(3) {
		t.Fatalf("B tags = %s, want %s", got, tags.Bit(3))
	}
	if got := f.m.Monitor("A").Tags(); got != tags.Bit(0) {
		t.Fatalf("A tags changed to %s", got)
	}

	if _, err := f.m.BarClick("", bindings.ClickLtSymbol, 0, bindings.ButtonRight, 0); err != nil {
		t.Fatalf("ltsymbol click: %v", err)
	}
	if got := f.m.Monitor("B").LayoutIndex(); got != 2 {
		t.Fatalf("B layout = %d, want 2", got)
	}

	consumed, err = f.m.BarClick("", bindings.ClickStatus, 0, bindings.ButtonLeft, 0)
	if err != nil || consumed {
		t.Fatalf("unbound status click = %v, %v; want pass-through", consumed, err)
	}
}

func TestBarClickRejectsInvalidInput(t *testing.T) {
	f := newFixture(t, nil)
	cases := []struct {
		name    string
		monitor string
		click   bindings.Click
		tag     int
	}{
		{"client context", "", bindings.ClickClient, 0},
		{"root context", "", bindings.ClickRoot, 0},
		{"tag out of range", "", bindings.ClickTagBar, 9},
		{"negative tag", "", bindings.ClickTagBar, -1},
		{"unknown monitor", "HDMI-9", bindings.ClickTitle, 0},
	}
	for _, tc := range cases {
		if _, err := f.m.BarClick(tc.monitor, tc.click, 0, bindings.ButtonLeft, tc.tag); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
	if f.m.SelectedMonitor().Tags() != tags.Bit(0) {
		t.Fatal("rejected clicks must not change state")
	}
}
