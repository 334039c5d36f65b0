package diff

import (
	"github.com/modsync-tools/modsync/internal/sync/history"
)

type ActionType string

const (
	ActionAdd    ActionType = "add"
	ActionUpdate ActionType = "update"
	ActionRemove ActionType = "remove"
	ActionSkip   ActionType = "skip"
)

// SkipReason explains why a path was classified Skip
type SkipReason string

const (
	SkipReasonExcluded SkipReason = "excluded"
	SkipReasonInSync   SkipReason = "in_sync"
)

// Action is one classified operation for a single relative path in a sync
// plan. SourcePath and TargetPath are absolute and set only when the file
// exists on the respective side.
type Action struct {
	Type       ActionType
	Path       string
	SourcePath string
	TargetPath string
	SourceSig  *history.Signature
	TargetSig  *history.Signature
	Reason     SkipReason
}

// Side identifies which tree an entry error came from
type Side string

const (
	SideSource Side = "source"
	SideTarget Side = "target"
)

// EntryError reports a single unreadable path encountered during a diff.
// One bad entry never aborts the diff; errors accompany the classified
// actions so a caller can show partial results.
type EntryError struct {
	Path string
	Side Side
	Err  error
}

func (e EntryError) Error() string {
	return string(e.Side) + " " + e.Path + ": " + e.Err.Error()
}

func (e EntryError) Unwrap() error { return e.Err }
