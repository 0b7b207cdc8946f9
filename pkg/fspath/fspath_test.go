// SPDX-License-Identifier: MPL-2.0

package fspath_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/modcurator/modcurator/pkg/fspath"
	"github.com/modcurator/modcurator/pkg/types"
)

func TestJoin(t *testing.T) {
	t.Parallel()

	got := fspath.Join(types.FilesystemPath("mods"), "patch", "descriptor.mod")
	want := types.FilesystemPath(filepath.Join("mods", "patch", "descriptor.mod"))
	if got != want {
		t.Errorf("Join() = %q, want %q", got, want)
	}
	if fspath.Dir(got) != types.FilesystemPath(filepath.Join("mods", "patch")) {
		t.Errorf("Dir() = %q", fspath.Dir(got))
	}
}

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := types.FilesystemPath(t.TempDir())
	target := fspath.Join(dir, "nested", "store.toml")

	if err := fspath.WriteFileAtomic(target, []byte("first"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	if err := fspath.WriteFileAtomic(target, []byte("second"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}

	data, err := os.ReadFile(string(target))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}

	entries, err := os.ReadDir(string(fspath.Dir(target)))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected no leftover temp files, got %d entries", len(entries))
	}

	if ok, _ := fspath.Exists(target); !ok {
		t.Error("Exists() = false after write")
	}
	if ok, err := fspath.Exists(fspath.Join(dir, "missing")); ok || err != nil {
		t.Errorf("Exists(missing) = %v, %v", ok, err)
	}
	if !fspath.IsDir(dir) || fspath.IsDir(target) {
		t.Error("unexpected IsDir results")
	}
}

func TestWriteFileAtomic_InvalidPath(t *testing.T) {
	t.Parallel()

	if err := fspath.WriteFileAtomic("", []byte("x"), 0o644); err == nil {
		t.Error("expected error for empty path")
	}
}
