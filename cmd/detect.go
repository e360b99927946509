package cmd

import (
	"github.com/mj1618/rotator/internal/detect"
	"github.com/mj1618/rotator/internal/output"
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Classify the current screen",
	Long: `Capture each status region and compare it with the status template.
Statuses are tried in config order; the first one under its threshold wins.`,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().String("status", "", "Only evaluate this status")
	detectCmd.Flags().Bool("all", false, "Report the score of every status")
}

// classification is the output of the detect command.
type classification struct {
	Match   string          `yaml:"match"             json:"match"`
	Message string          `yaml:"message,omitempty" json:"message,omitempty"`
	Results []detect.Result `yaml:"results,omitempty" json:"results,omitempty"`
}

func runDetect(cmd *cobra.Command, args []string) error {
	a, err := newApp(appConfig, appOptions{detection: true})
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireDetector(); err != nil {
		return err
	}

	if status, _ := cmd.Flags().GetString("status"); status != "" {
		res, err := a.detector.Evaluate(status)
		if err != nil {
			return err
		}
		return output.Print(res)
	}

	out := classification{Match: detect.NoMatch}
	if all, _ := cmd.Flags().GetBool("all"); all {
		out.Results = a.detector.EvaluateAll()
		for _, r := range out.Results {
			if r.Matched {
				out.Match, out.Message = r.Status, r.Message
				break
			}
		}
		return output.Print(out)
	}
	if res, ok := a.detector.First(); ok {
		out.Match, out.Message = res.Status, res.Message
	}
	return output.Print(out)
}
