// Command spkg-dist builds a distributable .spkg archive from a source
// tree: it reads the package version, produces a source distribution,
// rearranges it into the spkg layout (payload under src/, generated
// spkg-install, copied SPKG.txt) and writes the final archive.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/certik/femhub-notebook/internal/errors"
	"github.com/certik/femhub-notebook/internal/pack"
)

func main() {
	var (
		sourceDir = flag.String("source", ".", "source tree to package")
		outputDir = flag.String("output", "dist", "directory receiving the .spkg file")
		name      = flag.String("name", "", "package name (defaults to the manifest or source directory name)")
		version   = flag.String("version", "", "package version (overrides manifest and setup file)")
		manifest  = flag.String("manifest", "", "package.yml manifest path")
		setup     = flag.String("setup", "", "setup file to read the version from (setup.py style)")
		keepWork  = flag.Bool("keep-work", false, "keep the working directory for inspection")
	)
	flag.Parse()

	m, err := resolveManifest(*sourceDir, *name, *version, *manifest, *setup)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spkg-dist: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	builder := pack.NewBuilder(*sourceDir, *outputDir, *m)
	builder.KeepWork = *keepWork
	result, err := builder.Build(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spkg-dist: %v (code %s)\n", err, errors.GetCode(err))
		os.Exit(1)
	}
	fmt.Printf("Built %s (%d bytes)\n", result.SpkgPath, result.Size)
}

// resolveManifest assembles the package name and version from the flags:
// an explicit manifest wins, then a setup file for the version, with
// direct -name/-version overrides applied last.
func resolveManifest(sourceDir, name, version, manifestPath, setupPath string) (*pack.Manifest, error) {
	m := &pack.Manifest{}

	if manifestPath != "" {
		loaded, err := pack.LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		m = loaded
	}
	if setupPath != "" {
		v, err := pack.ReadSetupVersion(setupPath)
		if err != nil {
			return nil, err
		}
		m.Version = v
	}
	if name != "" {
		m.Name = name
	}
	if version != "" {
		m.Version = version
	}
	if m.Name == "" {
		abs, err := filepath.Abs(sourceDir)
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve source directory")
		}
		m.Name = filepath.Base(abs)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
