package schedule

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	rerrors "github.com/mj1618/rotator/internal/errors"
	"github.com/mj1618/rotator/internal/logfields"
)

// ErrClosed is returned when the scheduler loop is not running.
var ErrClosed = errors.New("scheduler closed")

// Status is a point-in-time view of the scheduler.
type Status struct {
	Running       bool        `yaml:"running"                  json:"running"`
	RunID         string      `yaml:"run_id,omitempty"         json:"run_id,omitempty"`
	Cycle         int         `yaml:"cycle"                    json:"cycle"`
	Pending       []int       `yaml:"pending"                  json:"pending"`
	PreviousFocus uintptr     `yaml:"previous_focus,omitempty" json:"previous_focus,omitempty"`
	NextTick      *time.Time  `yaml:"next_tick,omitempty"      json:"next_tick,omitempty"`
	LastTick      *TickResult `yaml:"last_tick,omitempty"      json:"last_tick,omitempty"`
	LastStatus    string      `yaml:"last_status,omitempty"    json:"last_status,omitempty"`
}

type cmdKind int

const (
	cmdStart cmdKind = iota
	cmdStop
	cmdResize
	cmdPosition
	cmdStatus
)

type command struct {
	kind  cmdKind
	reply chan any
}

// Scheduler owns a Rotator and drives it from a single goroutine. Timers
// only post messages to that goroutine, so every tick, start and stop is
// serialized.
type Scheduler struct {
	rot           *Rotator
	timers        Timers
	shortInterval time.Duration
	longInterval  time.Duration
	logger        *slog.Logger

	cmds     chan command
	ticks    chan uint64
	observed chan string
	done     chan struct{}

	// owned by the loop goroutine
	running     bool
	gen         uint64
	runID       string
	cancelShort func()
	cancelLong  func()
	nextTick    time.Time
	lastTick    *TickResult
	lastStatus  string
}

// NewScheduler creates a stopped scheduler. Call Run to start its loop.
func NewScheduler(rot *Rotator, timers Timers, shortInterval, longInterval time.Duration) *Scheduler {
	return &Scheduler{
		rot:           rot,
		timers:        timers,
		shortInterval: shortInterval,
		longInterval:  longInterval,
		logger:        rot.opts.Logger,
		cmds:          make(chan command),
		ticks:         make(chan uint64, 1),
		observed:      make(chan string, 8),
		done:          make(chan struct{}),
	}
}

// Run processes commands until ctx is cancelled. Pending timers are
// cancelled on exit.
func (s *Scheduler) Run(ctx context.Context) error {
	defer close(s.done)
	defer s.cancelTimers()
	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-s.cmds:
			s.handle(c)
		case gen := <-s.ticks:
			if !s.running || gen != s.gen {
				s.logger.Debug("Ignoring stale tick", slog.Uint64("gen", gen))
				continue
			}
			s.tick()
		case status := <-s.observed:
			s.lastStatus = status
		}
	}
}

func (s *Scheduler) handle(c command) {
	switch c.kind {
	case cmdStart:
		c.reply <- s.start()
	case cmdStop:
		c.reply <- s.stop()
	case cmdResize:
		res := s.rot.Tick()
		s.lastTick = &res
		if s.running {
			// A tick already queued by the old timers is now stale.
			s.gen++
			s.arm(res)
		}
		c.reply <- res
	case cmdPosition:
		c.reply <- s.rot.Position()
	case cmdStatus:
		c.reply <- s.snapshot()
	}
}

func (s *Scheduler) start() error {
	if s.running {
		return rerrors.NewInvalidRequest("automation is already running")
	}
	s.gen++
	s.running = true
	s.runID = uuid.NewString()
	s.logger = s.rot.opts.Logger.With(logfields.RunID(s.runID))
	s.rot.Reset()
	s.logger.Info("Automation started", slog.Int("slots", len(s.rot.state.Pending)))
	s.tick()
	return nil
}

func (s *Scheduler) stop() error {
	if !s.running {
		return nil
	}
	s.gen++
	s.running = false
	s.cancelTimers()
	s.nextTick = time.Time{}
	s.logger.Info("All schedules stopped.")
	return nil
}

func (s *Scheduler) tick() {
	res := s.rot.Tick()
	s.lastTick = &res
	s.arm(res)
}

// arm schedules the next tick: the long interval after a reset, the short
// interval otherwise.
func (s *Scheduler) arm(res TickResult) {
	s.cancelTimers()
	d, name := s.shortInterval, "short"
	if res.Reset {
		d, name = s.longInterval, "long"
	}
	gen := s.gen
	cancel, err := s.timers.After(d, name, func() { s.fire(gen) })
	if err != nil {
		s.logger.Error("Failed to arm timer", slog.String("timer", name), logfields.Error(err))
		return
	}
	if res.Reset {
		s.cancelLong = cancel
	} else {
		s.cancelShort = cancel
	}
	s.nextTick = time.Now().Add(d)
	s.logger.Debug("Next tick armed", slog.String("timer", name), logfields.Delay(d.String()))
}

func (s *Scheduler) cancelTimers() {
	if s.cancelShort != nil {
		s.cancelShort()
		s.cancelShort = nil
	}
	if s.cancelLong != nil {
		s.cancelLong()
		s.cancelLong = nil
	}
}

func (s *Scheduler) snapshot() Status {
	st := s.rot.State()
	out := Status{
		Running:       s.running,
		RunID:         s.runID,
		Cycle:         st.Cycle,
		Pending:       st.PendingIDs(),
		PreviousFocus: uintptr(st.PreviousFocus),
		LastTick:      s.lastTick,
		LastStatus:    s.lastStatus,
	}
	if s.running && !s.nextTick.IsZero() {
		t := s.nextTick
		out.NextTick = &t
	}
	return out
}

// fire queues a tick for generation gen. Timer callbacks never block; if
// a tick is already queued the new one is redundant.
func (s *Scheduler) fire(gen uint64) {
	select {
	case s.ticks <- gen:
	default:
	}
}

func (s *Scheduler) call(ctx context.Context, kind cmdKind) (any, error) {
	c := command{kind: kind, reply: make(chan any, 1)}
	select {
	case s.cmds <- c:
	case <-s.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case v := <-c.reply:
		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Start resets the pending set to every assigned slot, runs the first tick
// and keeps ticking on the timers until Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	v, err := s.call(ctx, cmdStart)
	if err != nil {
		return err
	}
	if v != nil {
		return v.(error)
	}
	return nil
}

// Stop cancels both timers. A tick already in progress completes; no
// further ticks run.
func (s *Scheduler) Stop(ctx context.Context) error {
	v, err := s.call(ctx, cmdStop)
	if err != nil {
		return err
	}
	if v != nil {
		return v.(error)
	}
	return nil
}

// ResizeRandomWindow runs exactly one tick. While automation is running
// the timers are re-armed from this tick.
func (s *Scheduler) ResizeRandomWindow(ctx context.Context) (TickResult, error) {
	v, err := s.call(ctx, cmdResize)
	if err != nil {
		return TickResult{}, err
	}
	return v.(TickResult), nil
}

// PositionWindows moves every assigned window to its tile.
func (s *Scheduler) PositionWindows(ctx context.Context) ([]Placement, error) {
	v, err := s.call(ctx, cmdPosition)
	if err != nil {
		return nil, err
	}
	return v.([]Placement), nil
}

// Status reports the scheduler state.
func (s *Scheduler) Status(ctx context.Context) (Status, error) {
	v, err := s.call(ctx, cmdStatus)
	if err != nil {
		return Status{}, err
	}
	return v.(Status), nil
}

// Observe records the latest detected status without blocking. It is
// dropped if the loop is busy.
func (s *Scheduler) Observe(status string) bool {
	select {
	case s.observed <- status:
		return true
	default:
		return false
	}
}
