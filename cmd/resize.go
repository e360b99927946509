package cmd

import (
	"github.com/mj1618/rotator/internal/output"
	"github.com/spf13/cobra"
)

var resizeCmd = &cobra.Command{
	Use:   "resize",
	Short: "Bring one random assigned window to the front",
	Long: `Run a single rotation tick: pick a random assigned window, move it to the
focus geometry, minimize the others and raise it. With one slot assigned
the same window is chosen every time.`,
	RunE: runResize,
}

var positionCmd = &cobra.Command{
	Use:   "position",
	Short: "Move every assigned window to its tile",
	Long:  "Restore every assigned window and move it to its tile in the 18-tile layout (two 3x3 grids of 384x200).",
	RunE:  runPosition,
}

func init() {
	rootCmd.AddCommand(resizeCmd, positionCmd)
	resizeCmd.Flags().String("port", "", "Serial port for ENTER_GAME after the visit (default: serial.port from config)")
}

func runResize(cmd *cobra.Command, args []string) error {
	port, _ := cmd.Flags().GetString("port")
	a, err := newApp(appConfig, appOptions{port: port})
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.controller.ResizeRandomWindow(cmd.Context())
	if err != nil {
		return err
	}
	return output.Print(res)
}

func runPosition(cmd *cobra.Command, args []string) error {
	a, err := newApp(appConfig, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	placed, err := a.scheduler.PositionWindows(cmd.Context())
	if err != nil {
		return err
	}
	return output.Print(placed)
}
