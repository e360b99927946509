// Package detect classifies the current game screen by matching stored
// templates against captured regions.
package detect

import (
	"fmt"
	"log/slog"

	rerrors "github.com/mj1618/rotator/internal/errors"
	"github.com/mj1618/rotator/internal/logfields"
	"github.com/mj1618/rotator/internal/metrics"
	"github.com/mj1618/rotator/internal/platform"
	"github.com/mj1618/rotator/internal/template"
)

// Result is the outcome of classifying one status.
type Result struct {
	Status  string  `yaml:"status"            json:"status"`
	Matched bool    `yaml:"matched"           json:"matched"`
	Score   float64 `yaml:"score"             json:"score"`
	Message string  `yaml:"message,omitempty" json:"message,omitempty"`
}

// Detector captures template regions and scores them.
type Detector struct {
	shots    platform.Screenshotter
	store    *template.Store
	recorder metrics.Recorder
	logger   *slog.Logger
}

// New creates a Detector over the given screenshotter and template store.
func New(shots platform.Screenshotter, store *template.Store) *Detector {
	return &Detector{
		shots:    shots,
		store:    store,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
}

// WithRecorder sets the metrics recorder.
func (d *Detector) WithRecorder(r metrics.Recorder) *Detector {
	d.recorder = r
	return d
}

// WithLogger sets the logger.
func (d *Detector) WithLogger(l *slog.Logger) *Detector {
	d.logger = l
	return d
}

// Statuses returns the status names in classification order.
func (d *Detector) Statuses() []string { return d.store.Names() }

// Evaluate captures and scores one status. A capture failure is logged and
// reported as an unmatched result; only an unknown status is an error.
func (d *Detector) Evaluate(status string) (Result, error) {
	tmpl, ok := d.store.Get(status)
	if !ok {
		return Result{}, rerrors.NewInvalidRequest(fmt.Sprintf("unknown status %q", status))
	}
	res := Result{Status: status, Score: 1, Message: tmpl.Message}

	img, err := d.shots.CaptureRegion(tmpl.Region)
	if err != nil {
		cerr := rerrors.NewCapture(fmt.Sprintf("capture %s region %s", status, tmpl.Region), err)
		d.logger.Warn("Capture failed", logfields.Status(status), logfields.Error(cerr))
		d.recorder.IncDetection(status, false)
		return res, nil
	}
	res.Score = Score(template.ToGray(img), tmpl.Image)
	res.Matched = res.Score < tmpl.Threshold
	d.recorder.IncDetection(status, res.Matched)
	d.logger.Debug("Classified", logfields.Status(status), logfields.Score(res.Score), slog.Bool("matched", res.Matched))
	return res, nil
}

// Classify reports whether status is currently on screen.
func (d *Detector) Classify(status string) (bool, error) {
	res, err := d.Evaluate(status)
	if err != nil {
		return false, err
	}
	return res.Matched, nil
}

// ClassifyAll evaluates statuses in priority order and returns the first
// match. It returns "", false when nothing matches.
func (d *Detector) ClassifyAll() (string, bool) {
	res, ok := d.First()
	return res.Status, ok
}

// First is ClassifyAll returning the full result of the matching status.
func (d *Detector) First() (Result, bool) {
	for _, name := range d.store.Names() {
		res, err := d.Evaluate(name)
		if err != nil {
			continue
		}
		if res.Matched {
			return res, true
		}
	}
	return Result{}, false
}

// EvaluateAll scores every status without stopping at the first match.
func (d *Detector) EvaluateAll() []Result {
	names := d.store.Names()
	out := make([]Result, 0, len(names))
	for _, name := range names {
		res, err := d.Evaluate(name)
		if err != nil {
			continue
		}
		out = append(out, res)
	}
	return out
}
