package history

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLoadHistory_UnknownModpack(t *testing.T) {
	db := openTestDB(t)
	sigs, err := db.LoadHistory(context.Background(), "nothere")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(sigs) != 0 {
		t.Fatalf("expected empty history, got %d entries", len(sigs))
	}
}

func TestReplaceHistory_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	want := map[string]Signature{
		"mods/alpha.jar":       {Size: 100, MTime: 1700000000, Hash: "aa"},
		"config/settings.toml": {Size: 20, MTime: 1700000001, Hash: "bb"},
	}
	if err := db.ReplaceHistory(ctx, "AllTheMods", want); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := db.LoadHistory(ctx, "AllTheMods")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for rel, sig := range want {
		if got[rel] != sig {
			t.Errorf("entry %s = %+v, want %+v", rel, got[rel], sig)
		}
	}

	ts, err := db.LastSynced(ctx, "AllTheMods")
	if err != nil {
		t.Fatalf("last synced: %v", err)
	}
	if ts.IsZero() {
		t.Error("expected last synced to be recorded")
	}
}

func TestReplaceHistory_Overwrites(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := map[string]Signature{"a.jar": {Size: 1, MTime: 1, Hash: "a"}}
	second := map[string]Signature{"b.jar": {Size: 2, MTime: 2, Hash: "b"}}
	if err := db.ReplaceHistory(ctx, "pack", first); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := db.ReplaceHistory(ctx, "pack", second); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := db.LoadHistory(ctx, "pack")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := got["a.jar"]; ok {
		t.Error("old entry should have been replaced")
	}
	if _, ok := got["b.jar"]; !ok {
		t.Error("new entry missing")
	}
}

func TestHistoryIsolatedPerModpack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceHistory(ctx, "packA", map[string]Signature{"a.jar": {Size: 1, MTime: 1, Hash: "a"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := db.ReplaceHistory(ctx, "packB", map[string]Signature{"b.jar": {Size: 2, MTime: 2, Hash: "b"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := db.LoadHistory(ctx, "packA")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry for packA, got %d", len(got))
	}
	if _, ok := got["b.jar"]; ok {
		t.Error("packB entry leaked into packA")
	}
}

func TestApplyDelta(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	base := map[string]Signature{
		"keep.jar":   {Size: 1, MTime: 1, Hash: "k"},
		"update.jar": {Size: 2, MTime: 2, Hash: "old"},
		"remove.jar": {Size: 3, MTime: 3, Hash: "r"},
	}
	if err := db.ReplaceHistory(ctx, "pack", base); err != nil {
		t.Fatalf("replace: %v", err)
	}

	delta := NewDelta()
	delta.Upserts["update.jar"] = Signature{Size: 22, MTime: 22, Hash: "new"}
	delta.Upserts["added.jar"] = Signature{Size: 4, MTime: 4, Hash: "a"}
	delta.Deletes = append(delta.Deletes, "remove.jar")
	if err := db.ApplyDelta(ctx, "pack", delta); err != nil {
		t.Fatalf("apply delta: %v", err)
	}

	got, err := db.LoadHistory(ctx, "pack")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got["update.jar"].Hash != "new" {
		t.Errorf("update not applied: %+v", got["update.jar"])
	}
	if _, ok := got["added.jar"]; !ok {
		t.Error("add not applied")
	}
	if _, ok := got["remove.jar"]; ok {
		t.Error("delete not applied")
	}
	if _, ok := got["keep.jar"]; !ok {
		t.Error("untouched entry lost")
	}
}

func TestApplyDelta_Empty(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.ApplyDelta(ctx, "pack", NewDelta()); err != nil {
		t.Fatalf("apply empty delta: %v", err)
	}
	ts, err := db.LastSynced(ctx, "pack")
	if err != nil {
		t.Fatalf("last synced: %v", err)
	}
	if !ts.IsZero() {
		t.Error("empty delta should not record a sync time")
	}
}

func TestPruneHistory(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceHistory(ctx, "pack", map[string]Signature{
		"stale.jar": {Size: 1, MTime: 1, Hash: "s"},
		"live.jar":  {Size: 2, MTime: 2, Hash: "l"},
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	if err := db.PruneHistory(ctx, "pack", []string{"stale.jar"}); err != nil {
		t.Fatalf("prune: %v", err)
	}

	got, err := db.LoadHistory(ctx, "pack")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := got["stale.jar"]; ok {
		t.Error("stale entry not pruned")
	}
	if _, ok := got["live.jar"]; !ok {
		t.Error("live entry lost")
	}
}

func TestExclusions(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.AddExclusion(ctx, "pack", "config\\local.toml"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := db.AddExclusion(ctx, "pack", "config/local.toml"); err != nil {
		t.Fatalf("duplicate add: %v", err)
	}

	set, err := db.LoadExclusions(ctx, "pack")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if set.Len() != 1 {
		t.Fatalf("expected 1 exclusion, got %d", set.Len())
	}
	if !set.Contains("config/local.toml") {
		t.Error("exclusion not normalized to slash form")
	}

	removed, err := db.RemoveExclusion(ctx, "pack", "config/local.toml")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !removed {
		t.Error("expected removal to report true")
	}
	removed, err = db.RemoveExclusion(ctx, "pack", "config/local.toml")
	if err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if removed {
		t.Error("second removal should report false")
	}
}

func TestAddExclusion_InvalidPath(t *testing.T) {
	db := openTestDB(t)
	if err := db.AddExclusion(context.Background(), "pack", "."); err == nil {
		t.Fatal("expected error for invalid path")
	}
}

func TestSignatureEqual(t *testing.T) {
	a := Signature{Size: 1, MTime: 100, Hash: "h1"}
	touched := Signature{Size: 1, MTime: 200, Hash: "h1"}
	changed := Signature{Size: 1, MTime: 200, Hash: "h2"}

	if !a.Equal(touched) {
		t.Error("same hash should compare equal despite mtime drift")
	}
	if a.Equal(changed) {
		t.Error("different hash should compare unequal")
	}

	noHashA := Signature{Size: 1, MTime: 100}
	noHashB := Signature{Size: 1, MTime: 100}
	noHashC := Signature{Size: 1, MTime: 101}
	if !noHashA.Equal(noHashB) {
		t.Error("hashless signatures with same stat should compare equal")
	}
	if noHashA.Equal(noHashC) {
		t.Error("hashless signatures with different mtime should compare unequal")
	}
}
