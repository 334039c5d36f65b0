package scanner

import "github.com/modsync-tools/modsync/internal/sync/history"

// Entry is one regular file found under a scanned root
type Entry struct {
	RelativePath string
	AbsPath      string
	Size         int64
	MTime        int64
	Hash         string
}

// Signature returns the content signature for this entry
func (e Entry) Signature() history.Signature {
	return history.Signature{Size: e.Size, MTime: e.MTime, Hash: e.Hash}
}

// EntryError records a file that could not be read during a scan. A single
// unreadable file never aborts the walk; errors are collected alongside the
// successfully scanned entries.
type EntryError struct {
	Path string
	Err  error
}

func (e EntryError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e EntryError) Unwrap() error {
	return e.Err
}
