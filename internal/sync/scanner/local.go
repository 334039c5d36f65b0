package scanner

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/zeebo/xxh3"

	"github.com/modsync-tools/modsync/internal/sync/history"
)

// Scan walks root recursively and returns an Entry for every regular file,
// keyed by slash-normalized relative path. Directories are structural only
// and symlinks are skipped. A missing root yields an empty result, which
// lets the differ treat an absent target tree as all-adds.
//
// prev supplies known signatures from a previous run: when size and mtime
// still match, the recorded hash is reused instead of re-reading the file.
func Scan(ctx context.Context, root string, prev map[string]history.Signature) (map[string]Entry, []EntryError, error) {
	entries := make(map[string]Entry)
	var entryErrs []EntryError

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return entries, nil, nil
	}

	err := filepath.WalkDir(root, func(current string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if walkErr != nil {
			if current == root {
				return walkErr
			}
			rel, relErr := filepath.Rel(root, current)
			if relErr != nil {
				rel = current
			}
			entryErrs = append(entryErrs, EntryError{Path: filepath.ToSlash(rel), Err: walkErr})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&os.ModeSymlink != 0 {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, current)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = path.Clean(filepath.ToSlash(rel))

		info, err := d.Info()
		if err != nil {
			entryErrs = append(entryErrs, EntryError{Path: rel, Err: err})
			return nil
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		entry := Entry{
			RelativePath: rel,
			AbsPath:      current,
			Size:         info.Size(),
			MTime:        info.ModTime().Unix(),
		}

		if prevSig, ok := prev[rel]; ok && prevSig.Size == entry.Size && prevSig.MTime == entry.MTime && prevSig.Hash != "" {
			entry.Hash = prevSig.Hash
		} else {
			hash, err := HashFile(current)
			if err != nil {
				entryErrs = append(entryErrs, EntryError{Path: rel, Err: err})
				return nil
			}
			entry.Hash = hash
		}

		entries[rel] = entry
		return nil
	})
	if err != nil {
		return nil, entryErrs, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	return entries, entryErrs, nil
}

// HashFile computes the xxh3-128 hex digest of a file's content
func HashFile(path string) (hash string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum128().Bytes()), nil
}
