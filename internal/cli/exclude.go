package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/modsync-tools/modsync/internal/utils"
)

var excludeCmd = &cobra.Command{
	Use:   "exclude",
	Short: "Manage per-modpack exclusions",
	Long: `Excluded paths are frozen out of sync: they are never added, updated,
or removed until the exclusion is lifted.`,
}

var excludeAddCmd = &cobra.Command{
	Use:   "add <modpack> <path>",
	Short: "Exclude a relative path from sync",
	Args:  cobra.ExactArgs(2),
	RunE:  runExcludeAdd,
}

var excludeRemoveCmd = &cobra.Command{
	Use:   "remove <modpack> <path>",
	Short: "Lift an exclusion",
	Args:  cobra.ExactArgs(2),
	RunE:  runExcludeRemove,
}

var excludeListCmd = &cobra.Command{
	Use:   "list <modpack>",
	Short: "List excluded paths for a modpack",
	Args:  cobra.ExactArgs(1),
	RunE:  runExcludeList,
}

func init() {
	rootCmd.AddCommand(excludeCmd)

	excludeCmd.AddCommand(excludeAddCmd)
	excludeCmd.AddCommand(excludeRemoveCmd)
	excludeCmd.AddCommand(excludeListCmd)
}

// exclusionListing renders a modpack's excluded paths
type exclusionListing struct {
	Modpack string   `json:"modpack"`
	Paths   []string `json:"paths"`
}

func (l exclusionListing) Headers() []string {
	return []string{"Path"}
}

func (l exclusionListing) Rows() [][]string {
	rows := make([][]string, 0, len(l.Paths))
	for _, p := range l.Paths {
		rows = append(rows, []string{p})
	}
	return rows
}

func (l exclusionListing) EmptyMessage() string {
	return "No exclusions for this modpack."
}

func runExcludeAdd(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	ctx := context.Background()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	engine, _, err := newEngine()
	if err != nil {
		return out.Fail("exclude.add", utils.NewCLIError(utils.ErrCodeConfigInvalid, err.Error()).Build())
	}
	defer engine.Close()

	if err := engine.AddExclusion(ctx, args[0], args[1]); err != nil {
		return out.Fail("exclude.add", utils.NewCLIError(utils.ErrCodeInvalidPath, err.Error()).WithPath(args[1]).Build())
	}

	paths, err := engine.ListExclusions(ctx, args[0])
	if err != nil {
		return out.Fail("exclude.add", utils.NewCLIError(utils.ErrCodeHistoryUnavailable, err.Error()).Build())
	}
	return out.WriteSuccess("exclude.add", exclusionListing{Modpack: args[0], Paths: paths})
}

func runExcludeRemove(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	ctx := context.Background()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	engine, _, err := newEngine()
	if err != nil {
		return out.Fail("exclude.remove", utils.NewCLIError(utils.ErrCodeConfigInvalid, err.Error()).Build())
	}
	defer engine.Close()

	removed, err := engine.RemoveExclusion(ctx, args[0], args[1])
	if err != nil {
		return out.Fail("exclude.remove", utils.NewCLIError(utils.ErrCodeHistoryUnavailable, err.Error()).Build())
	}
	if !removed {
		out.AddWarning(utils.ErrCodeInvalidPath, "path was not excluded: "+args[1], "warning")
	}

	paths, err := engine.ListExclusions(ctx, args[0])
	if err != nil {
		return out.Fail("exclude.remove", utils.NewCLIError(utils.ErrCodeHistoryUnavailable, err.Error()).Build())
	}
	return out.WriteSuccess("exclude.remove", exclusionListing{Modpack: args[0], Paths: paths})
}

func runExcludeList(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	ctx := context.Background()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	engine, _, err := newEngine()
	if err != nil {
		return out.Fail("exclude.list", utils.NewCLIError(utils.ErrCodeConfigInvalid, err.Error()).Build())
	}
	defer engine.Close()

	paths, err := engine.ListExclusions(ctx, args[0])
	if err != nil {
		return out.Fail("exclude.list", utils.NewCLIError(utils.ErrCodeHistoryUnavailable, err.Error()).Build())
	}
	return out.WriteSuccess("exclude.list", exclusionListing{Modpack: args[0], Paths: paths})
}
