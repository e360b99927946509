// Package metrics records rotator activity. Components default to
// NoopRecorder and receive a PrometheusRecorder when an endpoint is configured.
package metrics

// Recorder is implemented by every metrics backend.
type Recorder interface {
	IncTick(outcome TickOutcome)
	IncCycleReset()
	SetPending(n int)
	IncDetection(status string, matched bool)
	IncPublishDropped()
	IncCommand(token string, ok bool)
}

// TickOutcome labels how a scheduler tick ended.
type TickOutcome string

const (
	TickVisited  TickOutcome = "visited"
	TickNotFound TickOutcome = "window_not_found"
	TickFailed   TickOutcome = "failed"
	TickReset    TickOutcome = "reset"
	TickSkipped  TickOutcome = "skipped"
)

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) IncTick(TickOutcome)       {}
func (NoopRecorder) IncCycleReset()            {}
func (NoopRecorder) SetPending(int)            {}
func (NoopRecorder) IncDetection(string, bool) {}
func (NoopRecorder) IncPublishDropped()        {}
func (NoopRecorder) IncCommand(string, bool)   {}
