package metrics

import (
	"net/http"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	ticks      *prom.CounterVec
	resets     prom.Counter
	pending    prom.Gauge
	detections *prom.CounterVec
	dropped    prom.Counter
	commands   *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers the rotator metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		ticks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rotator",
			Name:      "ticks_total",
			Help:      "Scheduler ticks by outcome",
		}, []string{"outcome"}),
		resets: prom.NewCounter(prom.CounterOpts{
			Namespace: "rotator",
			Name:      "cycle_resets_total",
			Help:      "Completed rotation cycles",
		}),
		pending: prom.NewGauge(prom.GaugeOpts{
			Namespace: "rotator",
			Name:      "pending_slots",
			Help:      "Slots not yet visited in the current cycle",
		}),
		detections: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rotator",
			Name:      "detections_total",
			Help:      "Classification results by status",
		}, []string{"status", "matched"}),
		dropped: prom.NewCounter(prom.CounterOpts{
			Namespace: "rotator",
			Name:      "detections_dropped_total",
			Help:      "Detection results dropped because a subscriber was busy",
		}),
		commands: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rotator",
			Name:      "commands_total",
			Help:      "Command link sends by token and result",
		}, []string{"token", "result"}),
	}
	reg.MustRegister(pr.ticks, pr.resets, pr.pending, pr.detections, pr.dropped, pr.commands)
	return pr
}

func (p *PrometheusRecorder) IncTick(outcome TickOutcome) {
	p.ticks.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncCycleReset() { p.resets.Inc() }

func (p *PrometheusRecorder) SetPending(n int) { p.pending.Set(float64(n)) }

func (p *PrometheusRecorder) IncDetection(status string, matched bool) {
	p.detections.WithLabelValues(status, strconv.FormatBool(matched)).Inc()
}

func (p *PrometheusRecorder) IncPublishDropped() { p.dropped.Inc() }

func (p *PrometheusRecorder) IncCommand(token string, ok bool) {
	res := "failed"
	if ok {
		res = "success"
	}
	p.commands.WithLabelValues(token, res).Inc()
}

// HTTPHandler returns an http.Handler that serves metrics for reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
