package history

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// LoadHistory returns the recorded signatures for a modpack, keyed by
// relative path. An unknown modpack yields an empty map.
func (d *DB) LoadHistory(ctx context.Context, modpack string) (sigs map[string]Signature, err error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT relative_path, size, mtime, content_hash
		FROM entries WHERE modpack = ?
	`, modpack)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	sigs = make(map[string]Signature)
	for rows.Next() {
		var rel string
		var sig Signature
		if err := rows.Scan(&rel, &sig.Size, &sig.MTime, &sig.Hash); err != nil {
			return nil, err
		}
		sigs[rel] = sig
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sigs, nil
}

// ReplaceHistory overwrites the full entry set for a modpack in one
// transaction, recording now as the pack's last sync time.
func (d *DB) ReplaceHistory(ctx context.Context, modpack string, sigs map[string]Signature) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().Unix()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE modpack = ?`, modpack); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (modpack, relative_path, size, mtime, content_hash, synced_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for rel, sig := range sigs {
		if _, err := stmt.ExecContext(ctx, modpack, rel, sig.Size, sig.MTime, sig.Hash, now); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := touchModpack(ctx, tx, modpack, now); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// ApplyDelta folds the outcome of one sync run into the stored history:
// upserts for applied adds and updates, deletes for applied removals.
// The whole delta commits atomically together with the pack's sync time.
func (d *DB) ApplyDelta(ctx context.Context, modpack string, delta *Delta) (err error) {
	if delta.Empty() {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().Unix()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (modpack, relative_path, size, mtime, content_hash, synced_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (modpack, relative_path) DO UPDATE SET
			size = excluded.size,
			mtime = excluded.mtime,
			content_hash = excluded.content_hash,
			synced_at = excluded.synced_at
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for rel, sig := range delta.Upserts {
		if _, err := stmt.ExecContext(ctx, modpack, rel, sig.Size, sig.MTime, sig.Hash, now); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	for _, rel := range delta.Deletes {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE modpack = ? AND relative_path = ?`, modpack, rel); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := touchModpack(ctx, tx, modpack, now); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// PruneHistory drops the given stale paths for a modpack. Used when a file
// vanished from both trees outside of any sync run.
func (d *DB) PruneHistory(ctx context.Context, modpack string, paths []string) (err error) {
	if len(paths) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, rel := range paths {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE modpack = ? AND relative_path = ?`, modpack, rel); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LastSynced returns the pack's most recent sync time, or the zero time
// when the pack was never synced.
func (d *DB) LastSynced(ctx context.Context, modpack string) (time.Time, error) {
	var ts sql.NullInt64
	err := d.db.QueryRowContext(ctx, `SELECT last_synced FROM modpacks WHERE name = ?`, modpack).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return time.Unix(ts.Int64, 0), nil
}

func touchModpack(ctx context.Context, tx *sql.Tx, modpack string, ts int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO modpacks (name, last_synced) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET last_synced = excluded.last_synced
	`, modpack, ts)
	return err
}
