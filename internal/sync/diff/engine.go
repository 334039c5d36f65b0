package diff

import (
	"sort"

	"golang.org/x/exp/maps"

	"github.com/modsync-tools/modsync/internal/sync/exclude"
	"github.com/modsync-tools/modsync/internal/sync/history"
	"github.com/modsync-tools/modsync/internal/sync/scanner"
)

// Snapshot is the full input to one diff computation: both scanned trees,
// the recorded baseline, and the user's exclusions.
type Snapshot struct {
	Source     map[string]scanner.Entry
	Target     map[string]scanner.Entry
	History    map[string]history.Signature
	Exclusions *exclude.Set
}

// Result is a complete change set for one modpack.
//
// Actions holds exactly one action per relevant relative path, ordered so
// that every Add and Update precedes every Remove, with Skips trailing and
// each group sorted by path. Stale lists history paths gone from both
// trees; they carry no pending action and should be pruned from the store.
type Result struct {
	Actions []Action
	Errors  []EntryError
	Stale   []string
}

// Compute classifies every path in the union of the source tree and the
// tracked history against the target tree.
//
// A source file is an Add when the target lacks it, an Update when the
// target's content differs, and a Skip when in sync. A history path missing
// from the source becomes a Remove only while the target file still exists.
// Excluded paths are frozen: always Skip, never updated or removed.
func Compute(snapshot Snapshot) Result {
	var result Result

	sourcePaths := maps.Keys(snapshot.Source)
	sort.Strings(sourcePaths)

	var adds, updates, removes, skips []Action

	for _, p := range sourcePaths {
		src := snapshot.Source[p]
		srcSig := src.Signature()
		tgt, tgtOK := snapshot.Target[p]

		action := Action{
			Path:       p,
			SourcePath: src.AbsPath,
			SourceSig:  &srcSig,
		}
		if tgtOK {
			tgtSig := tgt.Signature()
			action.TargetPath = tgt.AbsPath
			action.TargetSig = &tgtSig
		}

		switch {
		case snapshot.Exclusions.Contains(p):
			action.Type = ActionSkip
			action.Reason = SkipReasonExcluded
			skips = append(skips, action)
		case !tgtOK:
			action.Type = ActionAdd
			adds = append(adds, action)
		case !srcSig.Equal(*action.TargetSig):
			action.Type = ActionUpdate
			updates = append(updates, action)
		default:
			action.Type = ActionSkip
			action.Reason = SkipReasonInSync
			skips = append(skips, action)
		}
	}

	historyPaths := maps.Keys(snapshot.History)
	sort.Strings(historyPaths)

	for _, p := range historyPaths {
		if _, inSource := snapshot.Source[p]; inSource {
			continue
		}
		tgt, tgtOK := snapshot.Target[p]
		if !tgtOK {
			// Gone from both trees: the user already removed it out of
			// band, so nothing is pending. The entry is pruned instead.
			result.Stale = append(result.Stale, p)
			continue
		}

		tgtSig := tgt.Signature()
		action := Action{
			Path:       p,
			TargetPath: tgt.AbsPath,
			TargetSig:  &tgtSig,
		}
		if snapshot.Exclusions.Contains(p) {
			action.Type = ActionSkip
			action.Reason = SkipReasonExcluded
			skips = append(skips, action)
			continue
		}
		action.Type = ActionRemove
		removes = append(removes, action)
	}

	result.Actions = make([]Action, 0, len(adds)+len(updates)+len(removes)+len(skips))
	result.Actions = append(result.Actions, adds...)
	result.Actions = append(result.Actions, updates...)
	result.Actions = append(result.Actions, removes...)

	sort.Slice(skips, func(i, j int) bool { return skips[i].Path < skips[j].Path })
	result.Actions = append(result.Actions, skips...)

	return result
}

// Pending filters a change set down to the actions that mutate the target,
// preserving order. This is the list a caller submits to the executor.
func Pending(actions []Action) []Action {
	pending := make([]Action, 0, len(actions))
	for _, action := range actions {
		if action.Type != ActionSkip {
			pending = append(pending, action)
		}
	}
	return pending
}

// Omit drops actions whose path matches one of the given relative paths,
// preserving order. Paths are normalized the same way exclusions are, so
// a caller may pass them exactly as typed on the command line.
func Omit(actions []Action, paths []string) []Action {
	if len(paths) == 0 {
		return actions
	}
	omitted := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		omitted[exclude.Normalize(p)] = struct{}{}
	}
	kept := make([]Action, 0, len(actions))
	for _, action := range actions {
		if _, ok := omitted[action.Path]; ok {
			continue
		}
		kept = append(kept, action)
	}
	return kept
}

// Counts tallies a change set by action type
func Counts(actions []Action) map[ActionType]int {
	counts := make(map[ActionType]int, 4)
	for _, action := range actions {
		counts[action.Type]++
	}
	return counts
}
