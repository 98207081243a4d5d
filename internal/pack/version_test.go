package pack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/certik/femhub-notebook/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestReadSetupVersion(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		want     string
		wantErr  bool
		wantCode string
	}{
		{
			name: "standard setup file",
			content: `setup(name = 'femhub',
      version     = '0.2.7',   # single quotes required here
      description = 'notebook',
)`,
			want: "0.2.7",
		},
		{
			name:    "version on its own line",
			content: "version = '1.0'\n",
			want:    "1.0",
		},
		{
			name:     "no version line",
			content:  "setup(name = 'femhub')\n",
			wantErr:  true,
			wantCode: errors.CodeNotFound,
		},
		{
			name:     "unterminated quote",
			content:  "version = '0.2.7,\n",
			wantErr:  true,
			wantCode: errors.CodeInvalidInput,
		},
		{
			name:     "empty version string",
			content:  "version = '',\n",
			wantErr:  true,
			wantCode: errors.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "setup.py", tt.content)
			got, err := ReadSetupVersion(path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got version %q", got)
				}
				if code := errors.GetCode(err); code != tt.wantCode {
					t.Errorf("expected code %s, got %s", tt.wantCode, code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected version %q, got %q", tt.want, got)
			}
		})
	}
}

func TestReadSetupVersionMissingFile(t *testing.T) {
	_, err := ReadSetupVersion(filepath.Join(t.TempDir(), "no-such-file"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadManifest(t *testing.T) {
	path := writeFile(t, t.TempDir(), "package.yml", "name: femhub\nversion: 0.9.9\n")
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name != "femhub" || m.Version != "0.9.9" {
		t.Errorf("unexpected manifest: %+v", m)
	}
}

func TestLoadManifestMissingFields(t *testing.T) {
	path := writeFile(t, t.TempDir(), "package.yml", "name: femhub\n")
	if _, err := LoadManifest(path); err == nil {
		t.Fatal("expected error for manifest without version")
	}
}
