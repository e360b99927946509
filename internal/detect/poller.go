package detect

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mj1618/rotator/internal/link"
	"github.com/mj1618/rotator/internal/logfields"
	"github.com/mj1618/rotator/internal/metrics"
)

// NoMatch is the message logged when no status is on screen.
const NoMatch = "No Matching"

// CommandSender delivers a token to the microcontroller.
type CommandSender interface {
	Send(tok link.Token) error
}

// PollerOptions configures a Poller.
type PollerOptions struct {
	// Interval is the minimum pause between classification passes. Zero
	// classifies back to back.
	Interval time.Duration

	// Sender receives the configured actions. Nil disables actions.
	Sender CommandSender

	// Actions maps a status name to the token sent when that status appears.
	Actions map[string]link.Token

	// EnterStatus is the status that sends ENTER_GAME when EnterOnDetection is set.
	EnterStatus      string
	EnterOnDetection bool
}

// Poller classifies the screen on its own goroutine and publishes results
// to subscribers without ever blocking on them.
type Poller struct {
	det  *Detector
	opts PollerOptions

	mu   sync.Mutex
	subs []chan Result
	last string
	seen bool

	dropped  atomic.Uint64
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewPoller creates a Poller over det.
func NewPoller(det *Detector, opts PollerOptions) *Poller {
	if opts.EnterStatus == "" {
		opts.EnterStatus = "Enter"
	}
	return &Poller{
		det:      det,
		opts:     opts,
		recorder: det.recorder,
		logger:   det.logger,
	}
}

// ParseActions converts a status → token-name table into tokens.
func ParseActions(raw map[string]string) (map[string]link.Token, error) {
	out := make(map[string]link.Token, len(raw))
	for status, name := range raw {
		tok, err := link.ParseToken(name)
		if err != nil {
			return nil, fmt.Errorf("action for %s: %w", status, err)
		}
		out[status] = tok
	}
	return out, nil
}

// Subscribe returns a channel that receives every published result. A
// subscriber that is not ready when a result is published misses it.
func (p *Poller) Subscribe(buffer int) <-chan Result {
	ch := make(chan Result, buffer)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()
	return ch
}

// Dropped returns the number of results not delivered to a busy subscriber.
func (p *Poller) Dropped() uint64 { return p.dropped.Load() }

// Run classifies until ctx is cancelled, then closes all subscriber channels.
func (p *Poller) Run(ctx context.Context) error {
	defer p.closeSubs()
	p.logger.Info("Detector started", slog.Duration("interval", p.opts.Interval))
	for {
		if ctx.Err() != nil {
			p.logger.Info("Detector stopped")
			return nil
		}
		p.Step()
		if p.opts.Interval <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			p.logger.Info("Detector stopped")
			return nil
		case <-time.After(p.opts.Interval):
		}
	}
}

// Step runs one classification pass: publish the result, and on a change of
// status log its message and fire the configured action.
func (p *Poller) Step() Result {
	res, _ := p.det.First()
	p.publish(res)

	p.mu.Lock()
	changed := !p.seen || res.Status != p.last
	p.last = res.Status
	p.seen = true
	p.mu.Unlock()
	if !changed {
		return res
	}

	if !res.Matched {
		p.logger.Info(NoMatch)
		return res
	}
	p.logger.Info(res.Message, logfields.Status(res.Status), logfields.Score(res.Score))
	p.fire(res.Status)
	return res
}

func (p *Poller) fire(status string) {
	if p.opts.Sender == nil {
		return
	}
	if p.opts.EnterOnDetection && status == p.opts.EnterStatus {
		p.send(link.EnterGame, status)
	}
	if tok, ok := p.opts.Actions[status]; ok {
		p.send(tok, status)
	}
}

func (p *Poller) send(tok link.Token, status string) {
	if err := p.opts.Sender.Send(tok); err != nil {
		p.logger.Warn("Action not delivered", logfields.Status(status), logfields.Token(tok.String()), logfields.Error(err))
	}
}

func (p *Poller) publish(res Result) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- res:
		default:
			p.dropped.Add(1)
			p.recorder.IncPublishDropped()
		}
	}
}

func (p *Poller) closeSubs() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.subs {
		close(ch)
	}
	p.subs = nil
}
