package sync

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/modsync-tools/modsync/internal/catalog"
	"github.com/modsync-tools/modsync/internal/config"
	"github.com/modsync-tools/modsync/internal/logging"
	"github.com/modsync-tools/modsync/internal/sync/diff"
	"github.com/modsync-tools/modsync/internal/sync/executor"
	"github.com/modsync-tools/modsync/internal/sync/history"
	"github.com/modsync-tools/modsync/internal/sync/scanner"
)

// Engine ties the catalog, differ, executor, and history store together
// behind the calls a frontend needs. One instance serves an application
// session; it is not safe for concurrent syncs of the same modpack.
type Engine struct {
	cfg    *config.Config
	db     *history.DB
	logger logging.Logger
}

// Plan is one computed change set, ready for review
type Plan struct {
	Modpack string
	Actions []diff.Action
	Errors  []diff.EntryError
}

// Pending returns the plan's mutating actions in plan order
func (p Plan) Pending() []diff.Action {
	return diff.Pending(p.Actions)
}

func NewEngine(cfg *config.Config, db *history.DB, logger logging.Logger) *Engine {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Engine{cfg: cfg, db: db, logger: logger}
}

func (e *Engine) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	return e.db.Close()
}

// ListModpacks enumerates the modpacks under the configured instances root
func (e *Engine) ListModpacks() ([]catalog.Modpack, error) {
	return catalog.List(e.cfg.InstancesPath)
}

// Diff computes the change set for one modpack against the target tree.
//
// A failed history or exclusion load degrades to an empty baseline rather
// than aborting: the worst case is re-presenting already synced files as
// adds, never silently skipping something that needs attention. Stale
// history entries discovered during the diff are pruned before returning.
func (e *Engine) Diff(ctx context.Context, modpackName string) (Plan, error) {
	pack, err := catalog.Find(e.cfg.InstancesPath, modpackName)
	if err != nil {
		return Plan{}, err
	}

	prev, err := e.db.LoadHistory(ctx, pack.Name)
	if err != nil {
		e.logger.Warn("history load failed, using empty baseline",
			logging.F("modpack", pack.Name),
			logging.F("error", err.Error()))
		prev = make(map[string]history.Signature)
	}
	exclusions, err := e.db.LoadExclusions(ctx, pack.Name)
	if err != nil {
		e.logger.Warn("exclusion load failed, treating none as excluded",
			logging.F("modpack", pack.Name),
			logging.F("error", err.Error()))
		exclusions = nil
	}

	sourceEntries, sourceErrs, err := scanner.Scan(ctx, pack.Path, prev)
	if err != nil {
		return Plan{}, fmt.Errorf("source scan failed: %w", err)
	}
	targetEntries, targetErrs, err := scanner.Scan(ctx, e.cfg.GamePath, prev)
	if err != nil {
		return Plan{}, fmt.Errorf("target scan failed: %w", err)
	}

	result := diff.Compute(diff.Snapshot{
		Source:     sourceEntries,
		Target:     targetEntries,
		History:    prev,
		Exclusions: exclusions,
	})

	if len(result.Stale) > 0 {
		if err := e.db.PruneHistory(ctx, pack.Name, result.Stale); err != nil {
			e.logger.Warn("stale history prune failed",
				logging.F("modpack", pack.Name),
				logging.F("error", err.Error()))
		}
	}

	plan := Plan{Modpack: pack.Name, Actions: result.Actions}
	for _, se := range sourceErrs {
		plan.Errors = append(plan.Errors, diff.EntryError{Path: se.Path, Side: diff.SideSource, Err: se.Err})
	}
	for _, te := range targetErrs {
		plan.Errors = append(plan.Errors, diff.EntryError{Path: te.Path, Side: diff.SideTarget, Err: te.Err})
	}

	e.logger.Debug("diff computed",
		logging.F("modpack", pack.Name),
		logging.F("actions", len(plan.Actions)),
		logging.F("errors", len(plan.Errors)))

	return plan, nil
}

// ExecuteOptions adjusts one sync run beyond the configured defaults
type ExecuteOptions struct {
	DryRun   bool
	Progress executor.ProgressFunc
}

// Execute applies a reviewed action list and folds the outcome into the
// history store. The store is written once, after the run, with the delta
// earned by every successful action, including those that preceded a
// failure.
func (e *Engine) Execute(ctx context.Context, modpackName string, actions []diff.Action, opts ExecuteOptions, confirm executor.ConfirmFunc) (*executor.Report, error) {
	exec := executor.New(e.logger)
	report, err := exec.Execute(ctx, actions, executor.Options{
		Modpack:        modpackName,
		TargetRoot:     e.cfg.GamePath,
		CreateBackup:   e.cfg.CreateBackups,
		BackupRoot:     e.backupRoot(),
		PruneEmptyDirs: true,
		DryRun:         opts.DryRun,
		Progress:       opts.Progress,
	}, confirm)
	if report == nil {
		return nil, err
	}

	// A cut-short run still mutated the target, so its delta is recorded
	// even when the context was cancelled along the way.
	if !opts.DryRun {
		if dbErr := e.db.ApplyDelta(context.WithoutCancel(ctx), modpackName, report.Delta); dbErr != nil {
			return report, fmt.Errorf("history save failed: %w", dbErr)
		}
	}

	e.logger.Info("sync run finished",
		logging.F("modpack", modpackName),
		logging.F("applied", report.Applied),
		logging.F("skipped", report.Skipped),
		logging.F("failed", report.Failed))

	return report, err
}

// AddExclusion freezes a relative path out of future diffs for a modpack
func (e *Engine) AddExclusion(ctx context.Context, modpackName, relPath string) error {
	return e.db.AddExclusion(ctx, modpackName, relPath)
}

// RemoveExclusion lifts a previously added exclusion. It reports whether
// the path was actually excluded.
func (e *Engine) RemoveExclusion(ctx context.Context, modpackName, relPath string) (bool, error) {
	return e.db.RemoveExclusion(ctx, modpackName, relPath)
}

// ListExclusions returns a modpack's excluded paths in sorted order
func (e *Engine) ListExclusions(ctx context.Context, modpackName string) ([]string, error) {
	set, err := e.db.LoadExclusions(ctx, modpackName)
	if err != nil {
		return nil, err
	}
	return set.Paths(), nil
}

// LastSynced reports when a modpack was last synced, zero if never
func (e *Engine) LastSynced(ctx context.Context, modpackName string) (time.Time, error) {
	return e.db.LastSynced(ctx, modpackName)
}

func (e *Engine) backupRoot() string {
	if e.cfg.BackupDir != "" {
		return e.cfg.BackupDir
	}
	return filepath.Join(e.cfg.GamePath, ".modsync-backups")
}
