package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mj1618/rotator/internal/logfields"
	"github.com/mj1618/rotator/internal/server"
	"github.com/mj1618/rotator/internal/slots"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing rotator tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes the automation
controls as tools: start and stop automation, run a rotation tick, edit
slots, classify the screen and send command tokens.

Supported transports:
  stdio             Standard I/O (default)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  rotator serve
  rotator serve --transport streamable-http --port 8080
  rotator serve --cache-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Int("cache-ttl", 500, "Window list cache TTL in milliseconds (0 to disable)")
	serveCmd.Flags().String("serial-port", "", "Serial port for the command link (default: serial.port from config)")
	serveCmd.Flags().Bool("watch", true, "Reload slot assignments when the slot file changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")
	serialPort, _ := cmd.Flags().GetString("serial-port")
	watch, _ := cmd.Flags().GetBool("watch")

	a, err := newApp(appConfig, appOptions{port: serialPort, detection: true})
	if err != nil {
		return fmt.Errorf("failed to start rotator: %w", err)
	}
	defer a.close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	if watch {
		// Edits made on disk while automation runs are picked up on the
		// next tick, which intersects pending slots with the assigned ones.
		w, err := slots.NewWatcher(appConfig.SlotFile, a.registry, nil)
		if err != nil {
			return err
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				slog.Warn("Slot watcher stopped", logfields.Error(err))
			}
		}()
	}

	srv := server.New(server.Config{
		Transport:    transport,
		Port:         port,
		CacheTTL:     time.Duration(cacheTTLMs) * time.Millisecond,
		WindowFilter: appConfig.WindowFilter,
		SlotFile:     appConfig.SlotFile,
	}, server.Deps{
		Automation: a.controller,
		Positioner: a.scheduler,
		Registry:   a.registry,
		Windows:    a.provider.WindowManager,
		Detector:   a.detector,
		Link:       a.link,
	})

	err = srv.Serve()
	if a.controller.Running() {
		if stopErr := a.controller.StopAutomation(context.Background()); stopErr != nil {
			slog.Warn("Stopping automation failed", logfields.Error(stopErr))
		}
	}
	return err
}
