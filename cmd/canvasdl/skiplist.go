package main

import (
	"fmt"
	"strconv"

	"canvasdl/pkg/checkpoint"
	"canvasdl/pkg/ui"

	"github.com/spf13/cobra"
)

// skipListCmd represents the skiplist command
var skipListCmd = &cobra.Command{
	Use:     "skiplist",
	Aliases: []string{"skip"},
	Short:   "Inspect or extend the list of finished courses",
	Long: `The skip list records the ids of courses that were mirrored to the end.
'canvasdl sync' does not visit them again. Remove a line from the file to
have a course walked on the next run.`,
}

var skipListShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the recorded course ids",
	Args:  cobra.NoArgs,
	RunE:  runSkipListShow,
}

var skipListAddCmd = &cobra.Command{
	Use:     "add <course-id>...",
	Short:   "Record courses as finished without downloading them",
	Example: "  canvasdl skiplist add 1234 5678",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runSkipListAdd,
}

var skipListPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the location of the skip list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := skipListFromConfig()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), list.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(skipListCmd)
	skipListCmd.AddCommand(skipListShowCmd)
	skipListCmd.AddCommand(skipListAddCmd)
	skipListCmd.AddCommand(skipListPathCmd)
	skipListCmd.PersistentFlags().StringVar(&skipListPath, "skip-list", "", "file recording finished course ids")
}

func skipListFromConfig() (*checkpoint.SkipList, error) {
	cfg, err := loadConfig(map[string]interface{}{
		"skip-list": skipListPath,
		"log-level": logLevel,
	})
	if err != nil {
		return nil, err
	}
	return openSkipList(cfg)
}

func runSkipListShow(cmd *cobra.Command, args []string) error {
	list, err := skipListFromConfig()
	if err != nil {
		return err
	}
	ids, err := list.Load()
	if err != nil {
		return fmt.Errorf("failed to read skip list: %w", err)
	}

	out := cmd.OutOrStdout()
	for _, id := range checkpoint.Sorted(ids) {
		fmt.Fprintln(out, id)
	}
	return nil
}

// parseCourseIDs converts command line arguments to course ids
func parseCourseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid course id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func runSkipListAdd(cmd *cobra.Command, args []string) error {
	ids, err := parseCourseIDs(args)
	if err != nil {
		return err
	}

	list, err := skipListFromConfig()
	if err != nil {
		return err
	}
	if err := list.Append(ids...); err != nil {
		return fmt.Errorf("failed to update skip list: %w", err)
	}
	ui.PrintSuccess(fmt.Sprintf("Recorded %d courses in %s", len(ids), list.Path()))
	return nil
}
