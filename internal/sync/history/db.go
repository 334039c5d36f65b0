package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	db *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	instance := &DB{db: db}
	if err := instance.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return instance, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, schemaSQL)
	return err
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS modpacks (
	name TEXT PRIMARY KEY,
	last_synced INTEGER
);

CREATE TABLE IF NOT EXISTS entries (
	modpack TEXT NOT NULL,
	relative_path TEXT NOT NULL,
	size INTEGER NOT NULL,
	mtime INTEGER NOT NULL,
	content_hash TEXT NOT NULL,
	synced_at INTEGER NOT NULL,
	PRIMARY KEY (modpack, relative_path),
	FOREIGN KEY (modpack) REFERENCES modpacks(name)
);

CREATE TABLE IF NOT EXISTS exclusions (
	modpack TEXT NOT NULL,
	relative_path TEXT NOT NULL,
	PRIMARY KEY (modpack, relative_path)
);

CREATE INDEX IF NOT EXISTS idx_entries_hash ON entries(modpack, content_hash);
`
