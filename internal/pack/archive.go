package pack

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/certik/femhub-notebook/internal/errors"
)

// createTarGz writes a gzip-compressed tarball of srcDir to dstPath. Every
// entry is placed under prefix/ inside the archive. Files for which skip
// returns true (by slash-separated path relative to srcDir) are left out.
// Entries are written in sorted order so archives are reproducible.
func createTarGz(dstPath, srcDir, prefix string, skip func(rel string) bool) error {
	var files []string
	err := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if skip != nil && skip(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to walk source tree")
	}
	sort.Strings(files)

	out, err := os.Create(dstPath)
	if err != nil {
		return errors.Wrap(err, "failed to create archive file")
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	for _, rel := range files {
		if err := addTarEntry(tw, srcDir, rel, prefix); err != nil {
			tw.Close()
			gz.Close()
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return errors.Wrap(err, "failed to finish tar stream")
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, "failed to finish gzip stream")
	}
	return out.Close()
}

func addTarEntry(tw *tar.Writer, srcDir, rel, prefix string) error {
	full := filepath.Join(srcDir, filepath.FromSlash(rel))
	info, err := os.Lstat(full)
	if err != nil {
		return errors.Wrap(err, "failed to stat "+rel)
	}

	var link string
	if info.Mode()&os.ModeSymlink != 0 {
		if link, err = os.Readlink(full); err != nil {
			return errors.Wrap(err, "failed to read symlink "+rel)
		}
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return errors.Wrap(err, "failed to build header for "+rel)
	}
	hdr.Name = prefix + "/" + rel
	if info.IsDir() {
		hdr.Name += "/"
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return errors.Wrap(err, "failed to write header for "+rel)
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	f, err := os.Open(full)
	if err != nil {
		return errors.Wrap(err, "failed to open "+rel)
	}
	defer f.Close()
	if _, err := io.Copy(tw, f); err != nil {
		return errors.Wrap(err, "failed to copy "+rel)
	}
	return nil
}

// extractTarGz unpacks a gzip-compressed tarball into dstDir, refusing
// entries that would escape it.
func extractTarGz(srcPath, dstDir string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return errors.Wrap(err, "failed to open archive")
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrap(err, "failed to read gzip stream")
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "failed to read tar stream")
		}

		name := filepath.FromSlash(hdr.Name)
		target := filepath.Join(dstDir, name)
		if !strings.HasPrefix(target, filepath.Clean(dstDir)+string(os.PathSeparator)) {
			return errors.InvalidInput("archive entry escapes extraction directory: " + hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, hdr.FileInfo().Mode().Perm()); err != nil {
				return errors.Wrap(err, "failed to create directory "+hdr.Name)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return errors.Wrap(err, "failed to create parent for "+hdr.Name)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, hdr.FileInfo().Mode().Perm())
			if err != nil {
				return errors.Wrap(err, "failed to create "+hdr.Name)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return errors.Wrap(err, "failed to write "+hdr.Name)
			}
			if err := out.Close(); err != nil {
				return errors.Wrap(err, "failed to close "+hdr.Name)
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return errors.Wrap(err, "failed to create parent for "+hdr.Name)
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return errors.Wrap(err, "failed to create symlink "+hdr.Name)
			}
		default:
			// Other entry types (devices, fifos) have no place in a
			// source distribution.
			return errors.InvalidInput("unsupported archive entry type in " + hdr.Name)
		}
	}
}
