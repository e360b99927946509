package schedule

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Timers arms one-shot callbacks.
type Timers interface {
	// After runs f once after d. The returned cancel function prevents f
	// from running if it has not started yet.
	After(d time.Duration, name string, f func()) (cancel func(), err error)
}

// GocronTimers implements Timers with gocron one-time jobs.
type GocronTimers struct {
	scheduler gocron.Scheduler
}

// NewGocronTimers creates and starts a gocron scheduler.
func NewGocronTimers() (*GocronTimers, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	s.Start()
	return &GocronTimers{scheduler: s}, nil
}

func (g *GocronTimers) After(d time.Duration, name string, f func()) (func(), error) {
	job, err := g.scheduler.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(d))),
		gocron.NewTask(f),
		gocron.WithName(name),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s timer: %w", name, err)
	}
	id := job.ID()
	return func() { _ = g.scheduler.RemoveJob(id) }, nil
}

// Shutdown stops the underlying scheduler.
func (g *GocronTimers) Shutdown() error {
	return g.scheduler.Shutdown()
}
