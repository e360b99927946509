package cmd

import (
	"fmt"
	"sort"

	"github.com/mj1618/rotator/internal/output"
	"github.com/mj1618/rotator/internal/platform"
	"github.com/spf13/cobra"
)

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List game windows",
	Long:  "List visible top-level windows whose title contains the window filter, with the slot holding each.",
	RunE:  runWindows,
}

func init() {
	rootCmd.AddCommand(windowsCmd)
	windowsCmd.Flags().String("filter", "", "Case-insensitive title filter (default: window_filter from config)")
	windowsCmd.Flags().Bool("all", false, "List every visible window, ignoring the filter")
}

// windowEntry is the output for one listed window.
type windowEntry struct {
	Title string `yaml:"title"          json:"title"`
	Slot  int    `yaml:"slot,omitempty" json:"slot,omitempty"`
}

func runWindows(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	if provider.WindowManager == nil {
		return fmt.Errorf("window manager not available on this platform")
	}

	filter, _ := cmd.Flags().GetString("filter")
	all, _ := cmd.Flags().GetBool("all")
	if all {
		filter = ""
	} else if filter == "" {
		filter = appConfig.WindowFilter
	}

	titles, err := provider.WindowManager.ListTitles(filter)
	if err != nil {
		return err
	}
	sort.Strings(titles)

	held, err := heldTitles()
	if err != nil {
		return err
	}
	entries := make([]windowEntry, 0, len(titles))
	for _, t := range titles {
		entries = append(entries, windowEntry{Title: t, Slot: held[t]})
	}
	return output.Print(entries)
}
