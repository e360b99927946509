// Package schedule rotates focus across the assigned game windows on a timer.
package schedule

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"

	rerrors "github.com/mj1618/rotator/internal/errors"
	"github.com/mj1618/rotator/internal/link"
	"github.com/mj1618/rotator/internal/logfields"
	"github.com/mj1618/rotator/internal/metrics"
	"github.com/mj1618/rotator/internal/platform"
	"github.com/mj1618/rotator/internal/slots"
)

// CommandSender delivers a token to the microcontroller.
type CommandSender interface {
	Send(tok link.Token) error
}

// Picker returns a uniformly random index in [0, n).
type Picker func(n int) int

// State is the rotation bookkeeping. It is owned by a single Rotator and
// never shared.
type State struct {
	// Pending holds the slot ids not yet visited in the current cycle.
	Pending map[int]bool

	// PreviousFocus is the handle of the last window brought to the front.
	PreviousFocus platform.Handle

	// Cycle counts completed cycles since the last reset.
	Cycle int
}

// PendingIDs returns the pending slot ids in ascending order.
func (s State) PendingIDs() []int {
	ids := make([]int, 0, len(s.Pending))
	for id := range s.Pending {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// TickResult describes what one tick did.
type TickResult struct {
	// Reset is true when the cycle was complete and windows were repositioned.
	Reset bool `yaml:"reset,omitempty" json:"reset,omitempty"`

	Slot      int    `yaml:"slot,omitempty"  json:"slot,omitempty"`
	Title     string `yaml:"title,omitempty" json:"title,omitempty"`
	Remaining int    `yaml:"remaining"       json:"remaining"`
	Error     string `yaml:"error,omitempty" json:"error,omitempty"`

	Positioned []Placement `yaml:"positioned,omitempty" json:"positioned,omitempty"`
}

// Placement is the outcome of moving one window to its tile.
type Placement struct {
	Slot   int             `yaml:"slot"            json:"slot"`
	Title  string          `yaml:"title"           json:"title"`
	Bounds platform.Bounds `yaml:"bounds"          json:"bounds"`
	Error  string          `yaml:"error,omitempty" json:"error,omitempty"`
}

// Options configures a Rotator.
type Options struct {
	// Focus is where the chosen window is moved and how large it becomes.
	Focus platform.Bounds

	// TileFor returns the repositioning tile of a slot.
	TileFor func(slotID int) (platform.Bounds, bool)

	// Sender, when set with EnterOnRotation, receives ENTER_GAME after every visit.
	Sender          CommandSender
	EnterOnRotation bool

	Pick     Picker
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// Rotator performs scheduler ticks. It is not safe for concurrent use;
// Scheduler serializes access to it.
type Rotator struct {
	wm    platform.WindowManager
	reg   *slots.Registry
	opts  Options
	state State
}

// NewRotator creates a Rotator whose first cycle covers every slot
// assigned at construction.
func NewRotator(wm platform.WindowManager, reg *slots.Registry, opts Options) *Rotator {
	if opts.Pick == nil {
		opts.Pick = rand.IntN
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.TileFor == nil {
		opts.TileFor = func(int) (platform.Bounds, bool) { return platform.Bounds{}, false }
	}
	r := &Rotator{wm: wm, reg: reg, opts: opts}
	r.Reset()
	return r
}

// State returns a copy of the rotation state.
func (r *Rotator) State() State {
	s := r.state
	s.Pending = make(map[int]bool, len(r.state.Pending))
	for id := range r.state.Pending {
		s.Pending[id] = true
	}
	return s
}

// Reset starts a fresh cycle over every currently assigned slot.
func (r *Rotator) Reset() {
	r.state = State{Pending: r.assignedSet()}
	r.reg.ResetResized()
	r.opts.Recorder.SetPending(len(r.state.Pending))
}

func (r *Rotator) assignedSet() map[int]bool {
	set := map[int]bool{}
	for _, s := range r.reg.Assigned() {
		set[s.ID] = true
	}
	return set
}

// Tick visits one random pending window, or when none remain, refills the
// pending set and repositions every window.
func (r *Rotator) Tick() TickResult {
	assigned := r.assignedSet()
	var remaining []int
	for _, id := range r.state.PendingIDs() {
		if assigned[id] {
			remaining = append(remaining, id)
		} else {
			delete(r.state.Pending, id)
		}
	}

	if len(remaining) == 0 {
		r.opts.Logger.Info("No remaining windows to resize.")
		r.state.Pending = assigned
		r.state.Cycle++
		r.reg.ResetResized()
		placed := r.Position()
		r.opts.Recorder.IncCycleReset()
		r.opts.Recorder.IncTick(metrics.TickReset)
		r.opts.Recorder.SetPending(len(r.state.Pending))
		return TickResult{Reset: true, Remaining: len(r.state.Pending), Positioned: placed}
	}

	id := remaining[r.opts.Pick(len(remaining))]
	title, _ := r.reg.Title(id)
	delete(r.state.Pending, id)
	r.opts.Recorder.SetPending(len(r.state.Pending))
	res := TickResult{Slot: id, Title: title, Remaining: len(r.state.Pending)}

	if err := r.focus(id, title); err != nil {
		res.Error = err.Error()
		if rerrors.Is(err, rerrors.ErrWindowNotFound) {
			r.opts.Logger.Warn("No window found", logfields.Slot(id), logfields.Title(title))
			r.opts.Recorder.IncTick(metrics.TickNotFound)
		} else {
			r.opts.Logger.Error("Failed to activate window", logfields.Slot(id), logfields.Title(title), logfields.Error(err))
			r.opts.Recorder.IncTick(metrics.TickFailed)
		}
		return res
	}

	r.reg.SetResized(id, true)
	r.opts.Recorder.IncTick(metrics.TickVisited)
	r.opts.Logger.Info("Resized and activated", logfields.Slot(id), logfields.Title(title), logfields.Remaining(res.Remaining))

	if r.opts.EnterOnRotation && r.opts.Sender != nil {
		if err := r.opts.Sender.Send(link.EnterGame); err != nil {
			r.opts.Logger.Warn("Enter game not delivered", logfields.Slot(id), logfields.Error(err))
		}
	}
	return res
}

// focus brings the window of slot id to the front at the focus geometry
// and minimizes every other assigned window.
func (r *Rotator) focus(id int, title string) error {
	h, err := r.find(title)
	if err != nil {
		return err
	}
	if err := r.wm.SetBounds(h, r.opts.Focus); err != nil {
		return err
	}
	if minimized, err := r.wm.IsMinimized(h); err == nil && minimized {
		if err := r.wm.Restore(h); err != nil {
			return err
		}
	}

	for _, other := range r.reg.Assigned() {
		if other.ID == id {
			continue
		}
		oh, err := r.find(other.Title)
		if err == nil && oh == h {
			continue
		}
		if err == nil {
			err = r.wm.Minimize(oh)
		}
		if err != nil {
			r.opts.Logger.Warn("Error minimizing window", logfields.Slot(other.ID), logfields.Title(other.Title), logfields.Error(err))
		}
	}

	if err := r.wm.RaiseAbove(h, r.state.PreviousFocus); err != nil {
		return err
	}
	r.state.PreviousFocus = h
	return nil
}

func (r *Rotator) find(title string) (platform.Handle, error) {
	h, err := r.wm.Find(title)
	if errors.Is(err, platform.ErrWindowNotFound) {
		return 0, rerrors.NewWindowNotFound(title)
	}
	return h, err
}

// Position moves every assigned window to its tile. Failures are logged
// per window and reported in the result.
func (r *Rotator) Position() []Placement {
	var out []Placement
	for _, s := range r.reg.Assigned() {
		tile, ok := r.opts.TileFor(s.ID)
		if !ok {
			continue
		}
		p := Placement{Slot: s.ID, Title: s.Title, Bounds: tile}
		if err := r.place(s.Title, tile); err != nil {
			p.Error = err.Error()
			r.opts.Logger.Warn("Error positioning window", logfields.Slot(s.ID), logfields.Title(s.Title), logfields.Error(err))
		}
		out = append(out, p)
	}
	return out
}

func (r *Rotator) place(title string, tile platform.Bounds) error {
	h, err := r.find(title)
	if err != nil {
		return err
	}
	if err := r.wm.Restore(h); err != nil {
		return err
	}
	if err := r.wm.SetBounds(h, tile); err != nil {
		return err
	}
	return r.wm.Activate(h)
}
