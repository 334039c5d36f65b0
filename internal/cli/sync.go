package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/modsync-tools/modsync/internal/catalog"
	syncengine "github.com/modsync-tools/modsync/internal/sync"
	"github.com/modsync-tools/modsync/internal/sync/diff"
	"github.com/modsync-tools/modsync/internal/sync/executor"
	"github.com/modsync-tools/modsync/internal/utils"
)

var syncCmd = &cobra.Command{
	Use:   "sync <modpack>",
	Short: "Sync a modpack into the game directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runSync,
}

var statusCmd = &cobra.Command{
	Use:   "status <modpack>",
	Short: "Show pending changes for a modpack",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var (
	syncBackup  bool
	syncSkips   []string
	syncShowAll bool
)

func init() {
	syncCmd.Flags().BoolVar(&syncBackup, "backup", false, "Back up files before overwriting or removing them")
	syncCmd.Flags().StringArrayVar(&syncSkips, "skip", nil, "Relative path to leave untouched for this run (repeatable)")
	statusCmd.Flags().BoolVarP(&syncShowAll, "all", "a", false, "Include in-sync and excluded files")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
}

// changeListing renders a computed change set
type changeListing struct {
	Modpack string         `json:"modpack"`
	Actions []changeRow    `json:"actions"`
	Errors  []changeError  `json:"errors,omitempty"`
	Counts  map[string]int `json:"counts"`
}

type changeRow struct {
	Action string `json:"action"`
	Path   string `json:"path"`
	Size   int64  `json:"size,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type changeError struct {
	Side    string `json:"side"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (l changeListing) Headers() []string {
	return []string{"Action", "Path", "Size"}
}

func (l changeListing) Rows() [][]string {
	rows := make([][]string, 0, len(l.Actions))
	for _, a := range l.Actions {
		size := "-"
		if a.Size > 0 {
			size = humanize.Bytes(uint64(a.Size))
		}
		label := strings.ToUpper(a.Action)
		if a.Reason != "" {
			label = label + " (" + a.Reason + ")"
		}
		rows = append(rows, []string{label, truncate(a.Path, 60), size})
	}
	return rows
}

func (l changeListing) EmptyMessage() string {
	return "Nothing to sync, the modpack is up to date."
}

func buildChangeListing(plan syncengine.Plan, showAll bool) changeListing {
	listing := changeListing{
		Modpack: plan.Modpack,
		Actions: []changeRow{},
		Counts:  map[string]int{},
	}
	for kind, n := range diff.Counts(plan.Actions) {
		listing.Counts[string(kind)] = n
	}
	for _, a := range plan.Actions {
		if a.Type == diff.ActionSkip && !showAll {
			continue
		}
		row := changeRow{Action: string(a.Type), Path: a.Path, Reason: string(a.Reason)}
		if a.SourceSig != nil {
			row.Size = a.SourceSig.Size
		} else if a.TargetSig != nil {
			row.Size = a.TargetSig.Size
		}
		listing.Actions = append(listing.Actions, row)
	}
	for _, e := range plan.Errors {
		listing.Errors = append(listing.Errors, changeError{
			Side:    string(e.Side),
			Path:    e.Path,
			Message: e.Err.Error(),
		})
	}
	return listing
}

func diffErrorCode(err error) string {
	switch {
	case errors.Is(err, catalog.ErrRootNotFound):
		return utils.ErrCodeRootNotFound
	case errors.Is(err, catalog.ErrPackNotFound):
		return utils.ErrCodePackNotFound
	default:
		return utils.ErrCodeDiffFailed
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	ctx := context.Background()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	engine, _, err := newEngine()
	if err != nil {
		return out.Fail("status", utils.NewCLIError(utils.ErrCodeConfigInvalid, err.Error()).Build())
	}
	defer engine.Close()

	plan, err := engine.Diff(ctx, args[0])
	if err != nil {
		return out.Fail("status", utils.NewCLIError(diffErrorCode(err), err.Error()).WithPath(args[0]).Build())
	}

	for _, e := range plan.Errors {
		out.AddWarning(utils.ErrCodeDiffFailed, e.Error(), "warning")
	}
	return out.WriteSuccess("status", buildChangeListing(plan, syncShowAll))
}

// syncOutcome is the sync command payload
type syncOutcome struct {
	Modpack string      `json:"modpack"`
	Applied int         `json:"applied"`
	Skipped int         `json:"skipped"`
	Failed  int         `json:"failed"`
	DryRun  bool        `json:"dryRun,omitempty"`
	Results []resultRow `json:"results"`
}

type resultRow struct {
	Action  string `json:"action"`
	Path    string `json:"path"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
	Backup  string `json:"backup,omitempty"`
}

func (o syncOutcome) Headers() []string {
	return []string{"Action", "Path", "Outcome"}
}

func (o syncOutcome) Rows() [][]string {
	rows := make([][]string, 0, len(o.Results))
	for _, r := range o.Results {
		outcome := r.Outcome
		if r.Reason != "" {
			outcome = outcome + " (" + r.Reason + ")"
		}
		rows = append(rows, []string{strings.ToUpper(r.Action), truncate(r.Path, 60), outcome})
	}
	return rows
}

func (o syncOutcome) EmptyMessage() string {
	return "Nothing to sync, the modpack is up to date."
}

func runSync(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	ctx := context.Background()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	engine, cfg, err := newEngine()
	if err != nil {
		return out.Fail("sync", utils.NewCLIError(utils.ErrCodeConfigInvalid, err.Error()).Build())
	}
	defer engine.Close()

	if cmd.Flags().Changed("backup") {
		cfg.CreateBackups = syncBackup
	}

	plan, err := engine.Diff(ctx, args[0])
	if err != nil {
		return out.Fail("sync", utils.NewCLIError(diffErrorCode(err), err.Error()).WithPath(args[0]).Build())
	}
	for _, e := range plan.Errors {
		out.AddWarning(utils.ErrCodeDiffFailed, e.Error(), "warning")
	}

	pending := diff.Omit(plan.Pending(), syncSkips)
	if len(pending) == 0 {
		return out.WriteSuccess("sync", syncOutcome{Modpack: plan.Modpack, Results: []resultRow{}})
	}

	confirm := buildConfirm(flags.Yes, cfg.AutoConfirmUpdates, cfg.AutoConfirmRemovals, out)

	report, err := engine.Execute(ctx, plan.Modpack, pending, syncengine.ExecuteOptions{
		DryRun: flags.DryRun,
		Progress: func(done, total int, action diff.Action) {
			out.Verbose("[%d/%d] %s %s", done, total, action.Type, action.Path)
		},
	}, confirm)
	if err != nil {
		if report == nil {
			return out.Fail("sync", utils.NewCLIError(utils.ErrCodeTargetInaccessible, err.Error()).Build())
		}
		code := utils.ErrCodeHistoryUnavailable
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			code = utils.ErrCodeCancelled
		}
		out.AddWarning(code, err.Error(), "error")
	}

	outcome := syncOutcome{
		Modpack: plan.Modpack,
		Applied: report.Applied,
		Skipped: report.Skipped,
		Failed:  report.Failed,
		DryRun:  flags.DryRun,
		Results: make([]resultRow, 0, len(report.Results)),
	}
	for _, r := range report.Results {
		row := resultRow{
			Action:  string(r.Action.Type),
			Path:    r.Action.Path,
			Outcome: string(r.Outcome),
			Reason:  string(r.Reason),
			Backup:  r.Backup,
		}
		if r.Err != nil {
			out.AddWarning(utils.ErrCodePartialFailure, fmt.Sprintf("%s: %v", r.Action.Path, r.Err), "warning")
		}
		outcome.Results = append(outcome.Results, row)
	}

	if err := out.WriteSuccess("sync", outcome); err != nil {
		return err
	}
	if report.Failed > 0 {
		os.Exit(utils.ExitPartialFailure)
	}
	return nil
}

// buildConfirm produces the per-action confirmation callback. Adds never
// reach it; updates and removals prompt on the terminal unless answered
// globally by --yes or the configured auto-confirm flags.
func buildConfirm(yes, autoUpdates, autoRemovals bool, out *OutputWriter) executor.ConfirmFunc {
	reader := bufio.NewReader(os.Stdin)
	return func(action diff.Action) bool {
		if yes {
			return true
		}
		switch action.Type {
		case diff.ActionUpdate:
			if autoUpdates {
				return true
			}
		case diff.ActionRemove:
			if autoRemovals {
				return true
			}
		}

		fmt.Fprintf(os.Stderr, "%s %s? [y/N] ", strings.ToUpper(string(action.Type)), action.Path)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}
