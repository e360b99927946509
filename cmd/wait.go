package cmd

import (
	"fmt"
	"time"

	"github.com/mj1618/rotator/internal/output"
	"github.com/spf13/cobra"
)

// WaitResult is the output of a wait command.
type WaitResult struct {
	OK       bool   `yaml:"ok"                  json:"ok"`
	Action   string `yaml:"action"              json:"action"`
	Elapsed  string `yaml:"elapsed"             json:"elapsed"`
	Match    string `yaml:"match,omitempty"     json:"match,omitempty"`
	TimedOut bool   `yaml:"timed_out,omitempty" json:"timed_out,omitempty"`
}

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for a screen status to appear",
	Long:  "Classify the screen repeatedly until the given status matches or the timeout is reached.",
	RunE:  runWait,
}

func init() {
	detectCmd.AddCommand(waitCmd)
	waitCmd.Flags().String("for", "", "Status to wait for (required)")
	waitCmd.Flags().Bool("gone", false, "Invert: wait until the status NO LONGER matches")
	waitCmd.Flags().Int("timeout", 30, "Max seconds to wait")
	waitCmd.Flags().Int("interval", 500, "Polling interval in milliseconds")
	_ = waitCmd.MarkFlagRequired("for")
}

func runWait(cmd *cobra.Command, args []string) error {
	status, _ := cmd.Flags().GetString("for")
	gone, _ := cmd.Flags().GetBool("gone")
	timeoutSec, _ := cmd.Flags().GetInt("timeout")
	intervalMs, _ := cmd.Flags().GetInt("interval")

	a, err := newApp(appConfig, appOptions{detection: true})
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireDetector(); err != nil {
		return err
	}

	timeout := time.Duration(timeoutSec) * time.Second
	interval := time.Duration(intervalMs) * time.Millisecond
	deadline := time.Now().Add(timeout)
	start := time.Now()
	desc := describeWait(status, gone)

	for {
		matched, err := a.detector.Classify(status)
		if err != nil {
			return err
		}
		if matched != gone {
			return output.Print(WaitResult{
				OK:      true,
				Action:  "wait",
				Elapsed: fmt.Sprintf("%.1fs", time.Since(start).Seconds()),
				Match:   desc,
			})
		}

		if time.Now().After(deadline) {
			// Print the result, then return an error for non-zero exit code
			_ = output.Print(WaitResult{
				OK:       false,
				Action:   "wait",
				Elapsed:  fmt.Sprintf("%.1fs", time.Since(start).Seconds()),
				Match:    desc,
				TimedOut: true,
			})
			return fmt.Errorf("timed out waiting for condition: %s", desc)
		}

		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-time.After(interval):
		}
	}
}

// describeWait returns a human-readable description of what was waited for.
func describeWait(status string, gone bool) string {
	desc := fmt.Sprintf("status=%s", status)
	if gone {
		desc += " (gone)"
	}
	return desc
}
