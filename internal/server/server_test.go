package server

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	rerrors "github.com/mj1618/rotator/internal/errors"
	"github.com/mj1618/rotator/internal/link"
	"github.com/mj1618/rotator/internal/output"
	"github.com/mj1618/rotator/internal/platform"
	"github.com/mj1618/rotator/internal/schedule"
	"github.com/mj1618/rotator/internal/slots"
)

type countingWM struct {
	mu     sync.Mutex
	titles []string
	calls  int
}

func (w *countingWM) ListTitles(string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	return append([]string(nil), w.titles...), nil
}
func (w *countingWM) Find(string) (platform.Handle, error)              { return 1, nil }
func (w *countingWM) SetBounds(platform.Handle, platform.Bounds) error  { return nil }
func (w *countingWM) Minimize(platform.Handle) error                    { return nil }
func (w *countingWM) Restore(platform.Handle) error                     { return nil }
func (w *countingWM) IsMinimized(platform.Handle) (bool, error)         { return false, nil }
func (w *countingWM) RaiseAbove(platform.Handle, platform.Handle) error { return nil }
func (w *countingWM) Activate(platform.Handle) error                    { return nil }

type fakeAutomation struct {
	running  bool
	startErr error
	tick     schedule.TickResult
}

func (a *fakeAutomation) StartAutomation(context.Context) error {
	if a.startErr != nil {
		return a.startErr
	}
	a.running = true
	return nil
}

func (a *fakeAutomation) StopAutomation(context.Context) error {
	if !a.running {
		return rerrors.NewInvalidRequest("automation is not running")
	}
	a.running = false
	return nil
}

func (a *fakeAutomation) ResizeRandomWindow(context.Context) (schedule.TickResult, error) {
	return a.tick, nil
}

func (a *fakeAutomation) Status(context.Context) (schedule.Status, error) {
	return schedule.Status{Running: a.running, Pending: []int{1, 2}}, nil
}

func (a *fakeAutomation) Running() bool { return a.running }

func (a *fakeAutomation) PositionWindows(context.Context) ([]schedule.Placement, error) {
	return []schedule.Placement{{Slot: 1, Title: "Lineage2M - A"}}, nil
}

type fakeLink struct {
	sent []link.Token
	err  error
}

func (l *fakeLink) Send(tok link.Token) error {
	if l.err != nil {
		return l.err
	}
	l.sent = append(l.sent, tok)
	return nil
}
func (l *fakeLink) Connected() bool { return l.err == nil }
func (l *fakeLink) Port() string    { return "COM3" }

type fixture struct {
	srv  *Server
	auto *fakeAutomation
	reg  *slots.Registry
	wm   *countingWM
	lnk  *fakeLink
	file string
}

func newFixture(t *testing.T, ttl time.Duration) *fixture {
	t.Helper()
	f := &fixture{
		auto: &fakeAutomation{},
		reg:  slots.NewRegistry(4),
		wm:   &countingWM{titles: []string{"Lineage2M - A", "Lineage2M - B", "Notepad"}},
		lnk:  &fakeLink{},
		file: filepath.Join(t.TempDir(), "slots.json"),
	}
	f.srv = New(Config{Transport: "stdio", CacheTTL: ttl, WindowFilter: "lineage2m", SlotFile: f.file}, Deps{
		Automation: f.auto,
		Positioner: f.auto,
		Registry:   f.reg,
		Windows:    f.wm,
		Link:       f.lnk,
	})
	return f
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return tc.Text
}

func TestStartStop(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	res, err := f.srv.handleStart(ctx, call(nil))
	if err != nil || res.IsError {
		t.Fatalf("start failed: %v %s", err, text(t, res))
	}
	if !f.auto.running {
		t.Error("automation should be running")
	}

	res, _ = f.srv.handleStop(ctx, call(nil))
	if res.IsError {
		t.Fatalf("stop failed: %s", text(t, res))
	}
	res, _ = f.srv.handleStop(ctx, call(nil))
	if !res.IsError {
		t.Fatal("second stop should fail")
	}
	if !strings.Contains(text(t, res), "INVALID_REQUEST") {
		t.Errorf("expected error code in body, got %q", text(t, res))
	}
}

func TestStartCancelled(t *testing.T) {
	f := newFixture(t, 0)
	f.auto.startErr = rerrors.NewCancelled("start")
	res, _ := f.srv.handleStart(context.Background(), call(nil))
	if !res.IsError || !strings.Contains(text(t, res), "CANCELLED") {
		t.Errorf("expected CANCELLED, got %q", text(t, res))
	}
}

func TestAssignSlot(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	res, _ := f.srv.handleAssign(ctx, call(map[string]any{"slot": float64(2), "title": "Lineage2M - A"}))
	if res.IsError {
		t.Fatalf("assign failed: %s", text(t, res))
	}
	if title, _ := f.reg.Title(2); title != "Lineage2M - A" {
		t.Errorf("slot 2 = %q", title)
	}

	reloaded := slots.NewRegistry(4)
	if err := slots.Load(f.file, reloaded); err != nil {
		t.Fatal(err)
	}
	if title, _ := reloaded.Title(2); title != "Lineage2M - A" {
		t.Errorf("persisted slot 2 = %q", title)
	}

	res, _ = f.srv.handleAssign(ctx, call(map[string]any{"slot": float64(3), "title": "Lineage2M - A"}))
	if !res.IsError || !strings.Contains(text(t, res), "CONFLICT") {
		t.Errorf("expected CONFLICT, got %q", text(t, res))
	}
}

func TestAssignSlot_RejectedWhileRunning(t *testing.T) {
	f := newFixture(t, 0)
	f.auto.running = true
	res, _ := f.srv.handleAssign(context.Background(), call(map[string]any{"slot": float64(1), "title": "Lineage2M - A"}))
	if !res.IsError {
		t.Fatal("expected error while running")
	}
	if title, _ := f.reg.Title(1); title != "" {
		t.Errorf("slot should stay empty, got %q", title)
	}
}

func TestListWindows_ExcludesAssigned(t *testing.T) {
	f := newFixture(t, 0)
	if err := f.reg.Assign(1, "Lineage2M - A"); err != nil {
		t.Fatal(err)
	}

	res, _ := f.srv.handleListWindows(context.Background(), call(nil))
	out := text(t, res)
	if strings.Contains(out, "Lineage2M - A") {
		t.Errorf("assigned title should be excluded: %q", out)
	}
	if !strings.Contains(out, "Lineage2M - B") {
		t.Errorf("expected unassigned title: %q", out)
	}
	if strings.Contains(out, "Notepad") {
		t.Errorf("filter should drop Notepad: %q", out)
	}

	res, _ = f.srv.handleListWindows(context.Background(), call(map[string]any{"slot": float64(1)}))
	if !strings.Contains(text(t, res), "Lineage2M - A") {
		t.Errorf("slot's own title should be listed: %q", text(t, res))
	}
}

func TestRefreshSlots(t *testing.T) {
	f := newFixture(t, 0)
	_ = f.reg.Assign(1, "Lineage2M - A")
	_ = f.reg.Assign(2, "Lineage2M - Gone")

	res, _ := f.srv.handleRefresh(context.Background(), call(nil))
	if res.IsError {
		t.Fatalf("refresh failed: %s", text(t, res))
	}
	if _, ok := f.reg.Title(2); ok {
		t.Error("slot 2 should be cleared")
	}
	if title, _ := f.reg.Title(1); title != "Lineage2M - A" {
		t.Errorf("slot 1 = %q", title)
	}

	reloaded := slots.NewRegistry(4)
	if err := slots.Load(f.file, reloaded); err != nil {
		t.Fatal(err)
	}
	if _, ok := reloaded.Title(2); ok {
		t.Error("cleared slot should be persisted")
	}
	if title, _ := reloaded.Title(1); title != "Lineage2M - A" {
		t.Errorf("persisted slot 1 = %q", title)
	}
}

func TestRefreshSlots_JSONKeys(t *testing.T) {
	output.OutputFormat = output.FormatJSON
	defer func() { output.OutputFormat = output.FormatYAML }()

	f := newFixture(t, 0)
	_ = f.reg.Assign(2, "Lineage2M - Gone")
	res, _ := f.srv.handleRefresh(context.Background(), call(nil))
	out := text(t, res)
	if !strings.Contains(out, `"cleared"`) || !strings.Contains(out, `"slots"`) {
		t.Errorf("expected lower-case JSON keys, got %q", out)
	}
}

func TestSendCommand(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	res, _ := f.srv.handleSend(ctx, call(map[string]any{"token": "ENTER_GAME"}))
	if res.IsError {
		t.Fatalf("send failed: %s", text(t, res))
	}
	if len(f.lnk.sent) != 1 || f.lnk.sent[0] != link.EnterGame {
		t.Errorf("sent = %v", f.lnk.sent)
	}

	res, _ = f.srv.handleSend(ctx, call(map[string]any{"token": "jump"}))
	if !res.IsError || !strings.Contains(text(t, res), "UNKNOWN_TOKEN") {
		t.Errorf("expected UNKNOWN_TOKEN, got %q", text(t, res))
	}
	if len(f.lnk.sent) != 1 {
		t.Error("unknown token must not be sent")
	}
}

func TestSendCommand_NoLink(t *testing.T) {
	f := newFixture(t, 0)
	f.srv.deps.Link = nil
	res, _ := f.srv.handleSend(context.Background(), call(map[string]any{"token": "enter_game"}))
	if !res.IsError || !strings.Contains(text(t, res), "NOT_CONNECTED") {
		t.Errorf("expected NOT_CONNECTED, got %q", text(t, res))
	}
}

func TestClassify_NoDetector(t *testing.T) {
	f := newFixture(t, 0)
	res, _ := f.srv.handleClassify(context.Background(), call(nil))
	if !res.IsError {
		t.Error("expected error without detector")
	}
}

func TestStatus(t *testing.T) {
	f := newFixture(t, 0)
	res, _ := f.srv.handleStatus(context.Background(), call(nil))
	out := text(t, res)
	if !strings.Contains(out, "running: false") || !strings.Contains(out, "port: COM3") {
		t.Errorf("unexpected status: %q", out)
	}
}

func TestTitleCache(t *testing.T) {
	wm := &countingWM{titles: []string{"A"}}
	c := NewTitleCache(time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := c.Titles(wm, ""); err != nil {
			t.Fatal(err)
		}
	}
	if wm.calls != 1 {
		t.Errorf("expected 1 list call, got %d", wm.calls)
	}

	c.InvalidateAll()
	_, _ = c.Titles(wm, "")
	if wm.calls != 2 {
		t.Errorf("expected refetch after invalidate, got %d calls", wm.calls)
	}
}

func TestTitleCache_Disabled(t *testing.T) {
	wm := &countingWM{titles: []string{"A"}}
	c := NewTitleCache(0)
	_, _ = c.Titles(wm, "")
	_, _ = c.Titles(wm, "")
	if wm.calls != 2 {
		t.Errorf("ttl 0 should not cache, got %d calls", wm.calls)
	}
}

func TestParams(t *testing.T) {
	p := map[string]any{"s": "x", "n": float64(3), "b": true}
	if stringParam(p, "s", "") != "x" || stringParam(p, "missing", "d") != "d" {
		t.Error("stringParam")
	}
	if intParam(p, "n", 0) != 3 || intParam(p, "s", 7) != 7 {
		t.Error("intParam")
	}
	if !boolParam(p, "b", false) || boolParam(p, "missing", false) {
		t.Error("boolParam")
	}
}
