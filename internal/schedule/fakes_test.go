package schedule

import (
	"sync"
	"time"

	"github.com/mj1618/rotator/internal/link"
	"github.com/mj1618/rotator/internal/platform"
)

type raise struct {
	h, after platform.Handle
}

type fakeWM struct {
	mu          sync.Mutex
	handles     map[string]platform.Handle
	bounds      map[platform.Handle]platform.Bounds
	minimized   map[platform.Handle]bool
	restored    []platform.Handle
	activated   []platform.Handle
	raises      []raise
	minimizeErr map[platform.Handle]error
}

func newFakeWM(titles ...string) *fakeWM {
	wm := &fakeWM{
		handles:     map[string]platform.Handle{},
		bounds:      map[platform.Handle]platform.Bounds{},
		minimized:   map[platform.Handle]bool{},
		minimizeErr: map[platform.Handle]error{},
	}
	for i, t := range titles {
		wm.handles[t] = platform.Handle(100 + i)
	}
	return wm
}

func (f *fakeWM) ListTitles(string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for t := range f.handles {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeWM) Find(title string) (platform.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.handles[title]
	if !ok {
		return 0, platform.ErrWindowNotFound
	}
	return h, nil
}

func (f *fakeWM) SetBounds(h platform.Handle, b platform.Bounds) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bounds[h] = b
	return nil
}

func (f *fakeWM) Minimize(h platform.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.minimizeErr[h]; err != nil {
		return err
	}
	f.minimized[h] = true
	return nil
}

func (f *fakeWM) Restore(h platform.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.minimized[h] = false
	f.restored = append(f.restored, h)
	return nil
}

func (f *fakeWM) IsMinimized(h platform.Handle) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.minimized[h], nil
}

func (f *fakeWM) RaiseAbove(h, after platform.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raises = append(f.raises, raise{h, after})
	return nil
}

func (f *fakeWM) Activate(h platform.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activated = append(f.activated, h)
	return nil
}

func (f *fakeWM) close(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handles, title)
}

type fakeTimer struct {
	d         time.Duration
	name      string
	f         func()
	cancelled bool
}

type fakeTimers struct {
	mu    sync.Mutex
	armed []*fakeTimer
}

func (ft *fakeTimers) After(d time.Duration, name string, f func()) (func(), error) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{d: d, name: name, f: f}
	ft.armed = append(ft.armed, t)
	return func() {
		ft.mu.Lock()
		defer ft.mu.Unlock()
		t.cancelled = true
	}, nil
}

func (ft *fakeTimers) count() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return len(ft.armed)
}

// live counts armed timers that were never cancelled.
func (ft *fakeTimers) live() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	n := 0
	for _, t := range ft.armed {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func (ft *fakeTimers) last() *fakeTimer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	if len(ft.armed) == 0 {
		return nil
	}
	t := *ft.armed[len(ft.armed)-1]
	return &t
}

// fireLast runs the most recently armed timer's callback, as a timer
// goroutine would, even if it was cancelled.
func (ft *fakeTimers) fireLast() {
	ft.mu.Lock()
	t := ft.armed[len(ft.armed)-1]
	ft.mu.Unlock()
	t.f()
}

type recordingSender struct {
	mu   sync.Mutex
	sent []link.Token
}

func (s *recordingSender) Send(tok link.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, tok)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}
