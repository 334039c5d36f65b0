package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modsync-tools/modsync/internal/sync/history"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return abs
}

func TestScan_MissingRoot(t *testing.T) {
	entries, entryErrs, err := Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 || len(entryErrs) != 0 {
		t.Fatalf("expected empty scan, got %d entries %d errors", len(entries), len(entryErrs))
	}
}

func TestScan_CollectsRegularFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "mods/alpha.jar", "alpha")
	writeFile(t, root, "mods/deep/beta.jar", "beta")
	writeFile(t, root, "config/settings.toml", "x=1")
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	entries, entryErrs, err := Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(entryErrs) != 0 {
		t.Fatalf("unexpected entry errors: %v", entryErrs)
	}
	want := []string{"config/settings.toml", "mods/alpha.jar", "mods/deep/beta.jar"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for _, rel := range want {
		e, ok := entries[rel]
		if !ok {
			t.Fatalf("missing entry %s", rel)
		}
		if e.Hash == "" {
			t.Errorf("entry %s has empty hash", rel)
		}
		if e.RelativePath != rel {
			t.Errorf("entry relative path = %q, want %q", e.RelativePath, rel)
		}
	}
}

func TestScan_SkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	target := writeFile(t, root, "real.jar", "real")
	if err := os.Symlink(target, filepath.Join(root, "link.jar")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	entries, _, err := Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if _, ok := entries["link.jar"]; ok {
		t.Error("symlink should not be scanned")
	}
	if _, ok := entries["real.jar"]; !ok {
		t.Error("regular file missing from scan")
	}
}

func TestScan_ReusesBaselineHash(t *testing.T) {
	root := t.TempDir()
	abs := writeFile(t, root, "mods/alpha.jar", "alpha")
	info, err := os.Stat(abs)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}

	prev := map[string]history.Signature{
		"mods/alpha.jar": {Size: info.Size(), MTime: info.ModTime().Unix(), Hash: "cached-hash"},
	}
	entries, _, err := Scan(context.Background(), root, prev)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if got := entries["mods/alpha.jar"].Hash; got != "cached-hash" {
		t.Errorf("expected cached hash to be reused, got %q", got)
	}
}

func TestScan_RehashesWhenStatChanges(t *testing.T) {
	root := t.TempDir()
	abs := writeFile(t, root, "mods/alpha.jar", "alpha v2")
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(abs, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	prev := map[string]history.Signature{
		"mods/alpha.jar": {Size: 5, MTime: time.Now().Unix(), Hash: "stale-hash"},
	}
	entries, _, err := Scan(context.Background(), root, prev)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	got := entries["mods/alpha.jar"].Hash
	if got == "stale-hash" || got == "" {
		t.Errorf("expected fresh hash, got %q", got)
	}
}

func TestScan_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.jar", "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := Scan(ctx, root, nil); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestHashFile_Deterministic(t *testing.T) {
	root := t.TempDir()
	a := writeFile(t, root, "a.bin", "same content")
	b := writeFile(t, root, "b.bin", "same content")
	c := writeFile(t, root, "c.bin", "other content")

	ha, err := HashFile(a)
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	hb, err := HashFile(b)
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}
	hc, err := HashFile(c)
	if err != nil {
		t.Fatalf("hash c: %v", err)
	}
	if ha != hb {
		t.Errorf("identical content hashed differently: %s vs %s", ha, hb)
	}
	if ha == hc {
		t.Error("distinct content produced identical hash")
	}
}

func TestEntrySignature(t *testing.T) {
	e := Entry{RelativePath: "mods/a.jar", Size: 42, MTime: 1700000000, Hash: "abc"}
	sig := e.Signature()
	if sig.Size != 42 || sig.MTime != 1700000000 || sig.Hash != "abc" {
		t.Errorf("signature mismatch: %+v", sig)
	}
}
