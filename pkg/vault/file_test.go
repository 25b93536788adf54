package vault

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/legalaipro/lexauth/core"
)

func newTestVault(t *testing.T) *FileVault {
	t.Helper()
	v, err := NewFileVault(filepath.Join(t.TempDir(), "nested", "access_token"))
	if err != nil {
		t.Fatalf("NewFileVault: %v", err)
	}
	return v
}

func TestFileVault_StoreLoadClear(t *testing.T) {
	v := newTestVault(t)

	if err := v.Store("t1"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	token, err := v.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if token != "t1" {
		t.Errorf("token = %q", token)
	}

	// overwrite
	if err := v.Store("t2"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if token, _ := v.Load(); token != "t2" {
		t.Errorf("token = %q, want t2", token)
	}

	if err := v.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := v.Load(); !errors.Is(err, core.ErrTokenNotFound) {
		t.Errorf("err after clear = %v, want ErrTokenNotFound", err)
	}
}

func TestFileVault_LoadMissing(t *testing.T) {
	v := newTestVault(t)
	if _, err := v.Load(); !errors.Is(err, core.ErrTokenNotFound) {
		t.Errorf("err = %v, want ErrTokenNotFound", err)
	}
}

func TestFileVault_LoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "access_token")
	if err := os.WriteFile(path, []byte("  \n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	v, err := NewFileVault(path)
	if err != nil {
		t.Fatalf("NewFileVault: %v", err)
	}
	if _, err := v.Load(); !errors.Is(err, core.ErrTokenNotFound) {
		t.Errorf("err = %v, want ErrTokenNotFound for blank file", err)
	}
}

func TestFileVault_ClearIdempotent(t *testing.T) {
	v := newTestVault(t)
	if err := v.Clear(); err != nil {
		t.Errorf("Clear on missing file: %v", err)
	}
	if err := v.Clear(); err != nil {
		t.Errorf("second Clear: %v", err)
	}
}

func TestFileVault_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "access_token")
	v, err := NewFileVault(path)
	if err != nil {
		t.Fatalf("NewFileVault: %v", err)
	}
	if err := v.Store("t1"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}
}

func TestNewFileVault_EmptyPath(t *testing.T) {
	if _, err := NewFileVault(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestFileVault_NoTempFileLeftBehind(t *testing.T) {
	v := newTestVault(t)
	if err := v.Store("t1"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(v.path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
