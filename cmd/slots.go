package cmd

import (
	"fmt"
	"strconv"

	"github.com/mj1618/rotator/internal/output"
	"github.com/mj1618/rotator/internal/platform"
	"github.com/mj1618/rotator/internal/slots"
	"github.com/spf13/cobra"
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Manage the window slot assignments",
	Long: `Show and edit which game window each slot holds. Assignments are
persisted to slot_file and loaded by run and serve.`,
	RunE: runSlotsList,
}

var slotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every slot",
	RunE:  runSlotsList,
}

var slotsAssignCmd = &cobra.Command{
	Use:   "assign <slot> <title>",
	Short: "Assign a window title to a slot",
	Args:  cobra.ExactArgs(2),
	RunE:  runSlotsAssign,
}

var slotsClearCmd = &cobra.Command{
	Use:   "clear <slot>",
	Short: "Unassign a slot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSlotsClear,
}

var slotsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Unassign slots whose window no longer exists",
	RunE:  runSlotsRefresh,
}

var slotsCandidatesCmd = &cobra.Command{
	Use:   "candidates <slot>",
	Short: "List the windows a slot may be assigned",
	Long:  "List live game windows not held by any other slot. The slot's own title is included.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSlotsCandidates,
}

func init() {
	rootCmd.AddCommand(slotsCmd)
	slotsCmd.AddCommand(slotsListCmd, slotsAssignCmd, slotsClearCmd, slotsRefreshCmd, slotsCandidatesCmd)
	slotsListCmd.Flags().Bool("assigned", false, "Only list assigned slots")
	slotsCandidatesCmd.Flags().String("search", "", "Narrow candidates to titles containing this text")
}

// loadRegistry reads the slot document into a fresh registry.
func loadRegistry() (*slots.Registry, error) {
	reg := slots.NewRegistry(appConfig.Slots)
	if err := slots.Load(appConfig.SlotFile, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// heldTitles maps each assigned title to its slot id.
func heldTitles() (map[string]int, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	held := make(map[string]int)
	for _, s := range reg.Assigned() {
		held[s.Title] = s.ID
	}
	return held, nil
}

func parseSlotID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid slot %q: %w", s, err)
	}
	return id, nil
}

func runSlotsList(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	if assigned, _ := cmd.Flags().GetBool("assigned"); assigned {
		list := reg.Assigned()
		if list == nil {
			list = []slots.Slot{}
		}
		return output.Print(list)
	}
	return output.Print(reg.Snapshot())
}

func runSlotsAssign(cmd *cobra.Command, args []string) error {
	id, err := parseSlotID(args[0])
	if err != nil {
		return err
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	if err := reg.Assign(id, args[1]); err != nil {
		return err
	}
	if err := slots.Save(appConfig.SlotFile, reg); err != nil {
		return err
	}
	return output.Print(reg.Snapshot()[id-1])
}

func runSlotsClear(cmd *cobra.Command, args []string) error {
	id, err := parseSlotID(args[0])
	if err != nil {
		return err
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	if err := reg.Clear(id); err != nil {
		return err
	}
	if err := slots.Save(appConfig.SlotFile, reg); err != nil {
		return err
	}
	return output.Print(reg.Snapshot()[id-1])
}

// refreshResult is the output of slots refresh.
type refreshResult struct {
	Cleared []int        `yaml:"cleared" json:"cleared"`
	Slots   []slots.Slot `yaml:"slots"   json:"slots"`
}

func runSlotsRefresh(cmd *cobra.Command, args []string) error {
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	live, err := provider.WindowManager.ListTitles("")
	if err != nil {
		return err
	}
	cleared := reg.Refresh(live)
	if len(cleared) > 0 {
		if err := slots.Save(appConfig.SlotFile, reg); err != nil {
			return err
		}
	}
	if cleared == nil {
		cleared = []int{}
	}
	return output.Print(refreshResult{Cleared: cleared, Slots: reg.Snapshot()})
}

func runSlotsCandidates(cmd *cobra.Command, args []string) error {
	id, err := parseSlotID(args[0])
	if err != nil {
		return err
	}
	search, _ := cmd.Flags().GetString("search")
	provider, err := platform.NewProvider()
	if err != nil {
		return err
	}
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	live, err := provider.WindowManager.ListTitles("")
	if err != nil {
		return err
	}
	titles := reg.Candidates(live, appConfig.WindowFilter, search, id)
	if titles == nil {
		titles = []string{}
	}
	return output.Print(titles)
}
