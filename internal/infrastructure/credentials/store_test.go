package credentials

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_PrepareAndDelete(t *testing.T) {
	store := NewFileStore(t.TempDir())

	dir, err := store.Prepare("inst-001")
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("Prepare() did not create directory: %v", err)
	}

	// Prepare is idempotent.
	if _, err := store.Prepare("inst-001"); err != nil {
		t.Fatalf("second Prepare() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "creds.json"), []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := store.Delete("inst-001"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("Delete() left directory behind: %v", err)
	}

	// Deleting an absent session is fine.
	if err := store.Delete("inst-001"); err != nil {
		t.Fatalf("Delete() of absent session error = %v", err)
	}
}

func TestFileStore_RejectsUnsafeIDs(t *testing.T) {
	store := NewFileStore(t.TempDir())

	for _, id := range []string{"", "..", "a/b", `a\b`} {
		if _, err := store.Prepare(id); err == nil {
			t.Errorf("Prepare(%q) expected error", id)
		}
		if err := store.Delete(id); err == nil {
			t.Errorf("Delete(%q) expected error", id)
		}
	}
}
