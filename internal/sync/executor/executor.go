package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/modsync-tools/modsync/internal/logging"
	"github.com/modsync-tools/modsync/internal/sync/diff"
	"github.com/modsync-tools/modsync/internal/sync/history"
	"github.com/modsync-tools/modsync/internal/utils"
)

// ConfirmFunc decides whether a single destructive action proceeds. It is
// called once per Update and once per Remove, never for Add. Returning
// false records the action as skipped by the user and leaves both the
// target file and its history entry untouched.
type ConfirmFunc func(diff.Action) bool

// ProgressFunc is notified after each action is resolved
type ProgressFunc func(done, total int, action diff.Action)

type Options struct {
	Modpack        string
	TargetRoot     string
	CreateBackup   bool
	BackupRoot     string
	PruneEmptyDirs bool
	DryRun         bool
	Progress       ProgressFunc
}

type Outcome string

const (
	OutcomeApplied       Outcome = "applied"
	OutcomeSkippedByUser Outcome = "skipped_by_user"
	OutcomeFailed        Outcome = "failed"
	OutcomePlanned       Outcome = "planned"
)

// FailureReason classifies why an individual action failed
type FailureReason string

const (
	FailurePermissionDenied FailureReason = "permission_denied"
	FailureDiskFull         FailureReason = "disk_full"
	FailurePathTooLong      FailureReason = "path_too_long"
	FailureBackupFailed     FailureReason = "backup_failed"
	FailureIO               FailureReason = "io_error"
)

// ActionResult records how one action of the plan resolved
type ActionResult struct {
	Action  diff.Action
	Outcome Outcome
	Reason  FailureReason
	Err     error
	Backup  string
}

// Report aggregates the outcome of one sync run. Delta carries the history
// mutations earned by every successful action; the caller persists it once
// after the run, even when later actions failed.
type Report struct {
	Results []ActionResult
	Delta   *history.Delta

	Applied int
	Skipped int
	Failed  int
}

type Executor struct {
	logger logging.Logger
}

func New(logger logging.Logger) *Executor {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &Executor{logger: logger}
}

// Execute applies a reviewed change set against the target tree. Actions
// arrive in plan order, adds and updates ahead of removes, and are applied
// sequentially in that order. One failed action is recorded and the run
// continues. A nil report means the target root itself was inaccessible;
// a cancelled context ends the run early with the report, and the delta,
// accumulated up to that point.
func (e *Executor) Execute(ctx context.Context, actions []diff.Action, opts Options, confirm ConfirmFunc) (*Report, error) {
	if err := checkTargetRoot(opts.TargetRoot); err != nil {
		return nil, fmt.Errorf("target root inaccessible: %w", err)
	}
	if confirm == nil {
		confirm = func(diff.Action) bool { return true }
	}

	report := &Report{Delta: history.NewDelta()}
	backupDir := ""
	if opts.CreateBackup {
		backupDir = filepath.Join(opts.BackupRoot, opts.Modpack, time.Now().Format(utils.BackupTimestampLayout))
	}

	var removedParents []string

	for i, action := range actions {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		var result ActionResult
		switch {
		case opts.DryRun:
			result = ActionResult{Action: action, Outcome: OutcomePlanned}
		default:
			result = e.apply(action, opts, backupDir, confirm, report.Delta)
		}

		switch result.Outcome {
		case OutcomeApplied:
			report.Applied++
			if action.Type == diff.ActionRemove {
				removedParents = append(removedParents, filepath.Dir(targetPath(action, opts.TargetRoot)))
			}
		case OutcomeSkippedByUser:
			report.Skipped++
		case OutcomeFailed:
			report.Failed++
			e.logger.Warn("sync action failed",
				logging.F("path", action.Path),
				logging.F("action", string(action.Type)),
				logging.F("reason", string(result.Reason)))
		}

		report.Results = append(report.Results, result)
		if opts.Progress != nil {
			opts.Progress(i+1, len(actions), action)
		}
	}

	if opts.PruneEmptyDirs && !opts.DryRun {
		pruneEmptyDirs(opts.TargetRoot, removedParents)
	}

	return report, nil
}

func (e *Executor) apply(action diff.Action, opts Options, backupDir string, confirm ConfirmFunc, delta *history.Delta) ActionResult {
	result := ActionResult{Action: action}

	dst := targetPath(action, opts.TargetRoot)

	switch action.Type {
	case diff.ActionAdd, diff.ActionUpdate:
		if action.Type == diff.ActionUpdate {
			if !confirm(action) {
				result.Outcome = OutcomeSkippedByUser
				return result
			}
			if opts.CreateBackup {
				backupPath, err := backupFile(dst, backupDir, action.Path)
				if err != nil {
					return failed(result, FailureBackupFailed, err)
				}
				result.Backup = backupPath
			}
		}
		if err := copyFile(action.SourcePath, dst); err != nil {
			return failed(result, classifyFailure(err), err)
		}
		sig, err := statSignature(dst, action.SourceSig)
		if err != nil {
			return failed(result, classifyFailure(err), err)
		}
		delta.Upserts[action.Path] = sig
		result.Outcome = OutcomeApplied

	case diff.ActionRemove:
		if !confirm(action) {
			result.Outcome = OutcomeSkippedByUser
			return result
		}
		if opts.CreateBackup {
			backupPath, err := backupFile(dst, backupDir, action.Path)
			if err != nil {
				return failed(result, FailureBackupFailed, err)
			}
			result.Backup = backupPath
		}
		if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
			return failed(result, classifyFailure(err), err)
		}
		delta.Deletes = append(delta.Deletes, action.Path)
		result.Outcome = OutcomeApplied

	default:
		// Skips are dropped by the caller before submission; tolerate
		// one slipping through rather than failing the run.
		result.Outcome = OutcomeSkippedByUser
	}

	return result
}

func failed(result ActionResult, reason FailureReason, err error) ActionResult {
	result.Outcome = OutcomeFailed
	result.Reason = reason
	result.Err = err
	return result
}

func targetPath(action diff.Action, targetRoot string) string {
	if action.TargetPath != "" {
		return action.TargetPath
	}
	return filepath.Join(targetRoot, filepath.FromSlash(action.Path))
}

func checkTargetRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}
	return nil
}

// statSignature records the signature of a freshly written target file.
// The source hash is authoritative for content; size and mtime come from
// the written copy so the next scan's fast path holds.
func statSignature(path string, sourceSig *history.Signature) (history.Signature, error) {
	info, err := os.Stat(path)
	if err != nil {
		return history.Signature{}, err
	}
	sig := history.Signature{Size: info.Size(), MTime: info.ModTime().Unix()}
	if sourceSig != nil {
		sig.Hash = sourceSig.Hash
	}
	return sig, nil
}

func copyFile(src, dst string) (err error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := in.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	buf := make([]byte, utils.CopyBufferSize)
	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func backupFile(target, backupDir, relPath string) (string, error) {
	if _, err := os.Stat(target); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	backupPath := filepath.Join(backupDir, filepath.FromSlash(relPath))
	if err := copyFile(target, backupPath); err != nil {
		return "", err
	}
	return backupPath, nil
}

func classifyFailure(err error) FailureReason {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return FailurePermissionDenied
	case errors.Is(err, syscall.ENOSPC):
		return FailureDiskFull
	case errors.Is(err, syscall.ENAMETOOLONG):
		return FailurePathTooLong
	default:
		return FailureIO
	}
}

// pruneEmptyDirs removes directories left empty by removals, walking up
// toward the target root but never deleting the root itself.
func pruneEmptyDirs(targetRoot string, dirs []string) {
	root, err := filepath.Abs(targetRoot)
	if err != nil {
		return
	}

	// Deepest first so a child is pruned before its parent is considered
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })

	for _, dir := range dirs {
		current, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		for current != root && isSubPath(root, current) {
			entries, err := os.ReadDir(current)
			if err != nil || len(entries) > 0 {
				break
			}
			if err := os.Remove(current); err != nil {
				break
			}
			current = filepath.Dir(current)
		}
	}
}

func isSubPath(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
