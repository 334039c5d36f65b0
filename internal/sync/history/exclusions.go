package history

import (
	"context"
	"fmt"

	"github.com/modsync-tools/modsync/internal/sync/exclude"
)

// LoadExclusions returns the excluded paths for a modpack as a set.
func (d *DB) LoadExclusions(ctx context.Context, modpack string) (set *exclude.Set, err error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT relative_path FROM exclusions WHERE modpack = ?
	`, modpack)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	set = exclude.New()
	for rows.Next() {
		var rel string
		if err := rows.Scan(&rel); err != nil {
			return nil, err
		}
		set.Add(rel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// AddExclusion records a path as excluded from sync for a modpack.
// Adding an already excluded path is a no-op.
func (d *DB) AddExclusion(ctx context.Context, modpack, relPath string) error {
	rel := exclude.Normalize(relPath)
	if rel == "" || rel == "." {
		return fmt.Errorf("invalid exclusion path %q", relPath)
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO exclusions (modpack, relative_path) VALUES (?, ?)
		ON CONFLICT (modpack, relative_path) DO NOTHING
	`, modpack, rel)
	return err
}

// RemoveExclusion deletes an exclusion and reports whether it existed.
func (d *DB) RemoveExclusion(ctx context.Context, modpack, relPath string) (bool, error) {
	res, err := d.db.ExecContext(ctx, `
		DELETE FROM exclusions WHERE modpack = ? AND relative_path = ?
	`, modpack, exclude.Normalize(relPath))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
