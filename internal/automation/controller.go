// Package automation owns the start/stop lifecycle that ties the scheduler,
// the detector and the slot registry together.
package automation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mj1618/rotator/internal/detect"
	rerrors "github.com/mj1618/rotator/internal/errors"
	"github.com/mj1618/rotator/internal/logfields"
	"github.com/mj1618/rotator/internal/logging"
	"github.com/mj1618/rotator/internal/schedule"
	"github.com/mj1618/rotator/internal/slots"
)

// Confirmation prompts passed to the Confirmer.
const (
	StartPrompt = "Are you sure you want to start automation?"
	StopPrompt  = "Are you sure you want to stop automation?"
)

// Options configures a Controller. Only Scheduler is required.
type Options struct {
	Scheduler *schedule.Scheduler
	Registry  *slots.Registry

	// SlotFile is where assignments are saved on start. Empty skips saving.
	SlotFile string

	// Poller runs while automation is active. Nil disables detection.
	Poller *detect.Poller

	Confirmer Confirmer
	UI        UIHooks

	// Session receives the log records of the run; it is flushed to
	// SessionFile on stop.
	Session     *logging.Recorder
	SessionFile string

	Logger *slog.Logger
}

// Controller exposes the externally invoked entry points.
type Controller struct {
	opts Options

	mu       sync.Mutex
	running  bool
	stopPoll context.CancelFunc
	pollDone chan struct{}
}

// New creates an idle Controller.
func New(opts Options) *Controller {
	if opts.Confirmer == nil {
		opts.Confirmer = AlwaysConfirm{}
	}
	if opts.UI == nil {
		opts.UI = NoopUI{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{opts: opts}
}

// Running reports whether automation is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// StartAutomation asks for confirmation, locks the UI, saves the slot
// assignments, starts detection and begins cycling. A declined prompt
// returns a CANCELLED error and changes nothing.
func (c *Controller) StartAutomation(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return rerrors.NewInvalidRequest("automation is already running")
	}
	ok, err := c.opts.Confirmer.Confirm(ctx, StartPrompt)
	if err != nil {
		return err
	}
	if !ok {
		c.opts.Logger.Info("Start cancelled")
		return rerrors.NewCancelled("start automation")
	}

	c.opts.UI.Lock()
	if c.opts.SlotFile != "" && c.opts.Registry != nil {
		if err := slots.Save(c.opts.SlotFile, c.opts.Registry); err != nil {
			c.opts.Logger.Error("Error saving data", logfields.Path(c.opts.SlotFile), logfields.Error(err))
		}
	}
	c.startPoller()

	// Once the scheduler accepts the command it starts cycling, so the
	// hand-off must not be abandoned halfway by the caller's cancellation.
	if err := c.opts.Scheduler.Start(context.WithoutCancel(ctx)); err != nil {
		c.stopPoller()
		c.opts.UI.Unlock()
		return err
	}
	c.running = true
	return nil
}

// StopAutomation asks for confirmation, stops the scheduler and the
// detector, unlocks the UI and flushes the session log.
func (c *Controller) StopAutomation(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return rerrors.NewInvalidRequest("automation is not running")
	}
	ok, err := c.opts.Confirmer.Confirm(ctx, StopPrompt)
	if err != nil {
		return err
	}
	if !ok {
		c.opts.Logger.Info("Stop cancelled")
		return rerrors.NewCancelled("stop automation")
	}

	if err := c.opts.Scheduler.Stop(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	c.stopPoller()
	c.running = false
	c.opts.UI.Unlock()
	return c.flushSession()
}

// ResizeRandomWindow runs one scheduler tick immediately.
func (c *Controller) ResizeRandomWindow(ctx context.Context) (schedule.TickResult, error) {
	return c.opts.Scheduler.ResizeRandomWindow(ctx)
}

// Status reports the scheduler state.
func (c *Controller) Status(ctx context.Context) (schedule.Status, error) {
	return c.opts.Scheduler.Status(ctx)
}

func (c *Controller) startPoller() {
	if c.opts.Poller == nil {
		return
	}
	results := c.opts.Poller.Subscribe(1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.opts.Poller.Run(ctx)
	}()
	go func() {
		for res := range results {
			c.opts.Scheduler.Observe(res.Status)
		}
	}()
	c.stopPoll = cancel
	c.pollDone = done
}

func (c *Controller) stopPoller() {
	if c.stopPoll == nil {
		return
	}
	c.stopPoll()
	<-c.pollDone
	c.stopPoll = nil
	c.pollDone = nil
}

func (c *Controller) flushSession() error {
	if c.opts.Session == nil || c.opts.SessionFile == "" {
		return nil
	}
	if err := c.opts.Session.FlushFile(c.opts.SessionFile); err != nil {
		c.opts.Logger.Error("Failed to flush session log", logfields.Path(c.opts.SessionFile), logfields.Error(err))
		return err
	}
	return nil
}
