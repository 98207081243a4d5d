// Package pack builds spkg archives: the distributable package format of
// the notebook distribution. An spkg is a gzip-compressed tarball holding
// the payload under src/, an executable spkg-install script and an
// SPKG.txt metadata file.
package pack

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/certik/femhub-notebook/internal/errors"
	"github.com/certik/femhub-notebook/internal/log"
)

const (
	metadataFilename      = "SPKG.txt"
	installScriptFilename = "spkg-install"
)

// installScript is the generated spkg-install body. The original shipped
// packages are installed by running their setup from within src/.
const installScript = `#!/bin/sh
cd src
python setup.py install
`

// Result describes the built package
type Result struct {
	SpkgPath string
	Size     int64
	Name     string
	Version  string
}

// Builder runs the packaging pipeline for one source tree
type Builder struct {
	// SourceDir is the root of the tree to package. It must contain the
	// SPKG.txt metadata file.
	SourceDir string

	// OutputDir receives the final .spkg file
	OutputDir string

	// Manifest names the package. Fill it directly, via LoadManifest, or
	// via ReadSetupVersion on the source's setup file.
	Manifest Manifest

	// KeepWork leaves the working directory behind for inspection
	KeepWork bool

	logger *log.Logger
	work   string
}

// NewBuilder creates a builder with a default logger
func NewBuilder(sourceDir, outputDir string, manifest Manifest) *Builder {
	return &Builder{
		SourceDir: sourceDir,
		OutputDir: outputDir,
		Manifest:  manifest,
		logger:    log.NewDefault("pack"),
	}
}

// fullName is the "<name>-<version>" package directory convention
func (b *Builder) fullName() string {
	return fmt.Sprintf("%s-%s", b.Manifest.Name, b.Manifest.Version)
}

// Build runs every packaging step in order and returns the final artifact.
// Each step failure aborts the pipeline with an error naming the step.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	if err := b.Manifest.Validate(); err != nil {
		return nil, errors.PackagingError("validate", err)
	}
	if b.logger == nil {
		b.logger = log.NewDefault("pack")
	}

	work, err := os.MkdirTemp("", "spkg-dist-*")
	if err != nil {
		return nil, errors.PackagingError("workdir", err)
	}
	b.work = work
	if !b.KeepWork {
		defer os.RemoveAll(work)
	} else {
		b.logger.Info("keeping working directory %s", work)
	}

	steps := []struct {
		name string
		run  func(context.Context) error
	}{
		{"sdist", b.sdist},
		{"extract", b.extract},
		{"relocate", b.relocate},
		{"install-script", b.writeInstallScript},
		{"metadata", b.copyMetadata},
		{"spkg", b.buildSpkg},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, errors.PackagingError(step.name, err)
		}
		b.logger.Info("running step %s", step.name)
		if err := step.run(ctx); err != nil {
			return nil, errors.PackagingError(step.name, err)
		}
	}

	spkgPath := filepath.Join(b.OutputDir, b.fullName()+".spkg")
	info, err := os.Stat(spkgPath)
	if err != nil {
		return nil, errors.PackagingError("spkg", err)
	}
	b.logger.Info("built %s (%d bytes)", spkgPath, info.Size())
	return &Result{
		SpkgPath: spkgPath,
		Size:     info.Size(),
		Name:     b.Manifest.Name,
		Version:  b.Manifest.Version,
	}, nil
}

func (b *Builder) distDir() string   { return filepath.Join(b.work, "dist") }
func (b *Builder) sdistPath() string { return filepath.Join(b.distDir(), b.fullName()+".tar.gz") }
func (b *Builder) pkgDir() string    { return filepath.Join(b.work, b.fullName()) }

// sdist builds the source distribution tarball. The dist directory, VCS
// metadata and editor droppings are excluded from the payload.
func (b *Builder) sdist(ctx context.Context) error {
	if _, err := os.Stat(b.SourceDir); err != nil {
		return errors.Wrap(err, "source directory is not readable")
	}
	if err := os.MkdirAll(b.distDir(), 0o755); err != nil {
		return errors.Wrap(err, "failed to create dist directory")
	}
	skip := func(rel string) bool {
		base := rel
		if i := strings.LastIndex(rel, "/"); i != -1 {
			base = rel[i+1:]
		}
		switch base {
		case "dist", ".git", ".hg", ".svn", "__pycache__":
			return true
		}
		return strings.HasSuffix(base, ".pyc") || strings.HasSuffix(base, "~")
	}
	return createTarGz(b.sdistPath(), b.SourceDir, b.fullName(), skip)
}

// extract unpacks the sdist and checks the expected directory appeared
func (b *Builder) extract(ctx context.Context) error {
	if err := extractTarGz(b.sdistPath(), b.distDir()); err != nil {
		return err
	}
	extracted := filepath.Join(b.distDir(), b.fullName())
	if info, err := os.Stat(extracted); err != nil || !info.IsDir() {
		return errors.NotFound("extracted directory " + extracted)
	}
	return nil
}

// relocate moves the extracted tree into the spkg layout, where the
// payload lives under <name>-<version>/src/.
func (b *Builder) relocate(ctx context.Context) error {
	if err := os.MkdirAll(b.pkgDir(), 0o755); err != nil {
		return errors.Wrap(err, "failed to create package directory")
	}
	src := filepath.Join(b.distDir(), b.fullName())
	if err := os.Rename(src, filepath.Join(b.pkgDir(), "src")); err != nil {
		return errors.Wrap(err, "failed to move payload into src/")
	}
	return nil
}

func (b *Builder) writeInstallScript(ctx context.Context) error {
	path := filepath.Join(b.pkgDir(), installScriptFilename)
	if err := os.WriteFile(path, []byte(installScript), 0o755); err != nil {
		return errors.Wrap(err, "failed to write install script")
	}
	return nil
}

// copyMetadata copies SPKG.txt from the source tree into the package
// root. A missing metadata file aborts the build; the original packaging
// glue assumed it silently and produced broken packages.
func (b *Builder) copyMetadata(ctx context.Context) error {
	src := filepath.Join(b.SourceDir, metadataFilename)
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound(metadataFilename + " in " + b.SourceDir)
		}
		return errors.Wrap(err, "failed to open "+metadataFilename)
	}
	defer in.Close()

	out, err := os.Create(filepath.Join(b.pkgDir(), metadataFilename))
	if err != nil {
		return errors.Wrap(err, "failed to create "+metadataFilename)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return errors.Wrap(err, "failed to copy "+metadataFilename)
	}
	return out.Close()
}

// buildSpkg produces the final archive in the output directory
func (b *Builder) buildSpkg(ctx context.Context) error {
	if err := os.MkdirAll(b.OutputDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}
	spkgPath := filepath.Join(b.OutputDir, b.fullName()+".spkg")
	return createTarGz(spkgPath, b.pkgDir(), b.fullName(), nil)
}
