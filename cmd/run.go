package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mj1618/rotator/internal/automation"
	"github.com/mj1618/rotator/internal/logfields"
	"github.com/mj1618/rotator/internal/output"
	"github.com/mj1618/rotator/internal/slots"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start automation and rotate until interrupted",
	Long: `Start rotating focus across the assigned windows. One window is visited
every short_interval; after every assigned window has been visited once
the next cycle waits long_interval. Press Ctrl-C to stop.

Examples:
  rotator run
  rotator run --yes --port COM3
  rotator run --watch`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("yes", false, "Skip the start confirmation prompt")
	runCmd.Flags().String("port", "", "Serial port for the command link (default: serial.port from config)")
	runCmd.Flags().Bool("watch", false, "Reload slot assignments when the slot file changes")
	runCmd.Flags().Bool("poll", false, "Run the screen detector while rotating (overrides poll.enabled)")
}

// interruptConfirmer approves the stop prompt, since Ctrl-C already is
// the user's answer, and defers every other prompt.
type interruptConfirmer struct {
	next automation.Confirmer
}

func (c interruptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if prompt == automation.StopPrompt {
		return true, nil
	}
	return c.next.Confirm(ctx, prompt)
}

// logUI reports the slot editing lock in the log.
type logUI struct{}

func (logUI) Lock()   { slog.Info("Slot editing locked while automation runs") }
func (logUI) Unlock() { slog.Info("Slot editing unlocked") }

func runRun(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	port, _ := cmd.Flags().GetString("port")
	watch, _ := cmd.Flags().GetBool("watch")
	if poll, _ := cmd.Flags().GetBool("poll"); poll {
		appConfig.Poll.Enabled = true
	}

	var confirmer automation.Confirmer = automation.AlwaysConfirm{}
	if !yes {
		confirmer = automation.PromptConfirmer{In: os.Stdin, Out: os.Stderr}
	}

	a, err := newApp(appConfig, appOptions{
		port:      port,
		detection: appConfig.Poll.Enabled,
		confirmer: interruptConfirmer{next: confirmer},
		ui:        logUI{},
	})
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.controller.StartAutomation(ctx); err != nil {
		return err
	}

	if watch {
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

	<-ctx.Done()

	if err := a.controller.StopAutomation(context.Background()); err != nil {
		return err
	}
	st, err := a.controller.Status(context.Background())
	if err != nil {
		return err
	}
	return output.Print(st)
}
