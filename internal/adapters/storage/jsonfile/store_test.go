package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs", "state.json")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, ok, err := store.Get(ctx, "acta-ui-storage"); err != nil || ok {
		t.Fatalf("expected missing key before first write, ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, "acta-ui-storage", `{"taskViewMode":"kanban"}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Set(ctx, "access_token", "abc"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	reopened, _ := Open(path)
	got, ok, err := reopened.Get(ctx, "acta-ui-storage")
	if err != nil || !ok || got != `{"taskViewMode":"kanban"}` {
		t.Fatalf("Get() = %q, %v, %v", got, ok, err)
	}
	if err := reopened.Delete(ctx, "access_token"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := store.Get(ctx, "access_token"); ok {
		t.Fatal("expected key removed")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files cleaned up, found %d entries", len(entries))
	}
}

func TestStoreReportsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	store, _ := Open(path)
	if _, _, err := store.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected decode error")
	}
}
