package pack

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/certik/femhub-notebook/internal/errors"
)

// makeSourceTree lays out a minimal packageable source tree
func makeSourceTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"SPKG.txt":           "= femhub =\n\nMaintainer: nobody\n",
		"setup.py":           "version = '0.2.7',\n",
		"femhub/__init__.py": "",
		"femhub/core.py":     "print('hello')\n",
		"README":             "readme\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestBuilderBuild(t *testing.T) {
	src := makeSourceTree(t)
	out := t.TempDir()

	b := NewBuilder(src, out, Manifest{Name: "femhub", Version: "0.2.7"})
	result, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if result.SpkgPath != filepath.Join(out, "femhub-0.2.7.spkg") {
		t.Errorf("unexpected spkg path: %s", result.SpkgPath)
	}
	if result.Size <= 0 {
		t.Errorf("expected positive size, got %d", result.Size)
	}

	// Unpack the artifact and verify the spkg layout.
	unpacked := t.TempDir()
	if err := extractTarGz(result.SpkgPath, unpacked); err != nil {
		t.Fatalf("failed to extract spkg: %v", err)
	}
	root := filepath.Join(unpacked, "femhub-0.2.7")

	script, err := os.Stat(filepath.Join(root, "spkg-install"))
	if err != nil {
		t.Fatalf("spkg-install missing: %v", err)
	}
	if script.Mode().Perm()&0o100 == 0 {
		t.Errorf("spkg-install is not executable: %v", script.Mode())
	}

	meta, err := os.ReadFile(filepath.Join(root, "SPKG.txt"))
	if err != nil {
		t.Fatalf("SPKG.txt missing: %v", err)
	}
	if !strings.Contains(string(meta), "Maintainer") {
		t.Errorf("SPKG.txt content not copied: %q", meta)
	}

	payload, err := os.ReadFile(filepath.Join(root, "src", "femhub", "core.py"))
	if err != nil {
		t.Fatalf("payload missing under src/: %v", err)
	}
	if !strings.Contains(string(payload), "hello") {
		t.Errorf("payload content wrong: %q", payload)
	}
}

func TestBuilderMissingMetadata(t *testing.T) {
	src := makeSourceTree(t)
	if err := os.Remove(filepath.Join(src, "SPKG.txt")); err != nil {
		t.Fatal(err)
	}

	b := NewBuilder(src, t.TempDir(), Manifest{Name: "femhub", Version: "0.2.7"})
	_, err := b.Build(context.Background())
	if err == nil {
		t.Fatal("expected build to fail without SPKG.txt")
	}
	if code := errors.GetCode(err); code != errors.CodePackagingError {
		t.Errorf("expected packaging error code, got %s", code)
	}
	if !strings.Contains(err.Error(), "metadata") {
		t.Errorf("error should name the failed step: %v", err)
	}
}

func TestBuilderInvalidManifest(t *testing.T) {
	b := NewBuilder(t.TempDir(), t.TempDir(), Manifest{Name: "", Version: "1.0"})
	if _, err := b.Build(context.Background()); err == nil {
		t.Fatal("expected build to fail with empty package name")
	}
}

func TestBuilderMissingSource(t *testing.T) {
	b := NewBuilder(filepath.Join(t.TempDir(), "absent"), t.TempDir(), Manifest{Name: "x", Version: "1"})
	if _, err := b.Build(context.Background()); err == nil {
		t.Fatal("expected build to fail with missing source directory")
	}
}

func TestSdistExcludesVCSAndDist(t *testing.T) {
	src := makeSourceTree(t)
	for _, name := range []string{".git/config", "dist/old.tar.gz", "femhub/cache.pyc"} {
		path := filepath.Join(src, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out := t.TempDir()
	b := NewBuilder(src, out, Manifest{Name: "femhub", Version: "0.2.7"})
	result, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	unpacked := t.TempDir()
	if err := extractTarGz(result.SpkgPath, unpacked); err != nil {
		t.Fatalf("failed to extract spkg: %v", err)
	}
	for _, name := range []string{
		"femhub-0.2.7/src/.git",
		"femhub-0.2.7/src/dist",
		"femhub-0.2.7/src/femhub/cache.pyc",
	} {
		if _, err := os.Stat(filepath.Join(unpacked, name)); !os.IsNotExist(err) {
			t.Errorf("%s should have been excluded from the sdist", name)
		}
	}
}

func TestExtractTarGzRejectsTraversal(t *testing.T) {
	// Build a tarball by hand whose entry climbs out of the target.
	dir := t.TempDir()
	src := filepath.Join(dir, "payload")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "f"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	archive := filepath.Join(dir, "evil.tar.gz")
	if err := createTarGz(archive, src, "../escape", nil); err != nil {
		t.Fatalf("createTarGz: %v", err)
	}

	if err := extractTarGz(archive, filepath.Join(dir, "target")); err == nil {
		t.Fatal("expected traversal entry to be rejected")
	}
}
