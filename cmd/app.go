package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mj1618/rotator/internal/automation"
	"github.com/mj1618/rotator/internal/config"
	"github.com/mj1618/rotator/internal/detect"
	"github.com/mj1618/rotator/internal/link"
	"github.com/mj1618/rotator/internal/logfields"
	"github.com/mj1618/rotator/internal/metrics"
	"github.com/mj1618/rotator/internal/platform"
	"github.com/mj1618/rotator/internal/schedule"
	"github.com/mj1618/rotator/internal/slots"
	"github.com/mj1618/rotator/internal/template"
)

// appOptions selects which parts of the runtime a command needs.
type appOptions struct {
	// port overrides serial.port from the config. Empty leaves the link
	// disconnected unless the config names a port.
	port string

	// detection loads the status templates and builds the detector.
	detection bool

	confirmer automation.Confirmer
	ui        automation.UIHooks
}

// app is the wired runtime shared by the long-running commands.
type app struct {
	cfg        *config.Config
	provider   *platform.Provider
	registry   *slots.Registry
	detector   *detect.Detector
	poller     *detect.Poller
	link       *link.Link
	recorder   metrics.Recorder
	timers     *schedule.GocronTimers
	scheduler  *schedule.Scheduler
	controller *automation.Controller

	metricsSrv *http.Server
	cancel     context.CancelFunc
	done       chan struct{}
}

// newApp builds every component from cfg and starts the scheduler loop.
// Callers must call close.
func newApp(cfg *config.Config, opts appOptions) (*app, error) {
	provider, err := platform.NewProvider()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, provider: provider, recorder: metrics.NoopRecorder{}}

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		a.recorder = metrics.NewPrometheusRecorder(reg)
		a.metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.HTTPHandler(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := a.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("Metrics server stopped", logfields.Error(err))
			}
		}()
		slog.Info("Serving metrics", slog.String("addr", cfg.MetricsAddr))
	}

	a.registry = slots.NewRegistry(cfg.Slots)
	if err := slots.Load(cfg.SlotFile, a.registry); err != nil {
		a.shutdownMetrics()
		return nil, err
	}

	a.link = link.New(cfg.Serial.Baud, cfg.Serial.ReadTimeout,
		link.WithPortLister(provider.PortLister),
		link.WithRecorder(a.recorder),
	)
	port := opts.port
	if port == "" {
		port = cfg.Serial.Port
	}
	if port != "" {
		if err := a.link.Connect(port); err != nil {
			slog.Warn("Command link unavailable", logfields.Port(port), logfields.Error(err))
		}
	}

	if opts.detection {
		store, err := template.Load(cfg)
		if err != nil {
			a.shutdownMetrics()
			return nil, err
		}
		a.detector = detect.New(provider.Screenshotter, store).WithRecorder(a.recorder)
		if cfg.Poll.Enabled {
			actions, err := detect.ParseActions(cfg.Actions)
			if err != nil {
				a.shutdownMetrics()
				return nil, err
			}
			a.poller = detect.NewPoller(a.detector, detect.PollerOptions{
				Interval:         cfg.Poll.Interval,
				Sender:           a.link,
				Actions:          actions,
				EnterOnDetection: cfg.EnterGameTrigger.OnDetection(),
			})
		}
	}

	rot := schedule.NewRotator(provider.WindowManager, a.registry, schedule.Options{
		Focus:           cfg.Focus.Bounds(),
		TileFor:         cfg.TileFor,
		Sender:          a.link,
		EnterOnRotation: cfg.EnterGameTrigger.OnRotation(),
		Recorder:        a.recorder,
	})
	a.timers, err = schedule.NewGocronTimers()
	if err != nil {
		a.shutdownMetrics()
		return nil, err
	}
	a.scheduler = schedule.NewScheduler(rot, a.timers, cfg.ShortInterval, cfg.LongInterval)

	a.controller = automation.New(automation.Options{
		Scheduler:   a.scheduler,
		Registry:    a.registry,
		SlotFile:    cfg.SlotFile,
		Poller:      a.poller,
		Confirmer:   opts.confirmer,
		UI:          opts.ui,
		Session:     sessionLog,
		SessionFile: cfg.Log.Session,
	})

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})
	go func() {
		defer close(a.done)
		_ = a.scheduler.Run(ctx)
	}()
	return a, nil
}

// close stops the scheduler loop and releases the timers, the serial port
// and the metrics listener.
func (a *app) close() {
	a.cancel()
	<-a.done
	if err := a.timers.Shutdown(); err != nil {
		slog.Warn("Timer shutdown failed", logfields.Error(err))
	}
	if err := a.link.Disconnect(); err != nil {
		slog.Warn("Closing serial port failed", logfields.Error(err))
	}
	a.shutdownMetrics()
}

func (a *app) shutdownMetrics() {
	if a.metricsSrv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = a.metricsSrv.Shutdown(ctx)
}

// requireDetector reports a configuration error when no statuses are configured.
func (a *app) requireDetector() error {
	if a.detector == nil || len(a.detector.Statuses()) == 0 {
		return fmt.Errorf("no statuses configured in %s", rootConfigPath())
	}
	return nil
}

func rootConfigPath() string {
	path, _ := rootCmd.PersistentFlags().GetString("config")
	return path
}
