// Package fsstore keeps worksheets on the filesystem, one directory per
// worksheet under home/<username>/<id>/, with the document body stored as
// JSON. Deleted worksheets move to a trash area instead of being removed.
package fsstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/certik/femhub-notebook/domain/worksheet"
	"github.com/certik/femhub-notebook/internal/errors"
	"github.com/certik/femhub-notebook/ports"

	"golang.org/x/sync/errgroup"
)

const worksheetFilename = "worksheet.json"

// Store implements ports.WorksheetStore on a data directory
type Store struct {
	root string

	// Serializes id reservation per process; ids are also derived from
	// the directory listing so restarts stay consistent.
	idMu sync.Mutex
}

// New creates a store rooted at the given data directory, creating the
// home and trash areas if needed.
func New(root string) (*Store, error) {
	s := &Store{root: root}
	for _, dir := range []string{s.homePath(), s.trashPath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.StorageError("failed to create data directory", err)
		}
	}
	return s, nil
}

var _ ports.WorksheetStore = (*Store)(nil)

func (s *Store) homePath() string  { return filepath.Join(s.root, "home") }
func (s *Store) trashPath() string { return filepath.Join(s.root, "trash") }

func (s *Store) userPath(username string) string {
	return filepath.Join(s.homePath(), username)
}

func (s *Store) worksheetPath(username string, id int) string {
	return filepath.Join(s.userPath(username), strconv.Itoa(id))
}

// isSafe rejects path components that could escape the data directory
func isSafe(component string) bool {
	if component == "" || component == "." || component == ".." {
		return false
	}
	return !strings.ContainsAny(component, `/\`)
}

func checkUsername(username string) error {
	if !isSafe(username) {
		return errors.InvalidInput(fmt.Sprintf("unsafe username: %q", username))
	}
	return nil
}

// Save persists a worksheet atomically: the document is written to a
// temporary file in the worksheet directory and renamed into place.
func (s *Store) Save(ctx context.Context, ws *worksheet.Worksheet) error {
	if err := checkUsername(ws.Owner); err != nil {
		return err
	}
	dir := s.worksheetPath(ws.Owner, ws.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.StorageError("failed to create worksheet directory", err)
	}

	data, err := json.MarshalIndent(ws, "", "  ")
	if err != nil {
		return errors.StorageError("failed to encode worksheet", err)
	}

	tmp, err := os.CreateTemp(dir, worksheetFilename+".tmp*")
	if err != nil {
		return errors.StorageError("failed to create temp file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.StorageError("failed to write worksheet", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.StorageError("failed to close temp file", err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, worksheetFilename)); err != nil {
		os.Remove(tmpName)
		return errors.StorageError("failed to replace worksheet file", err)
	}
	return nil
}

// Load retrieves one worksheet
func (s *Store) Load(ctx context.Context, username string, id int) (*worksheet.Worksheet, error) {
	if err := checkUsername(username); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.worksheetPath(username, id), worksheetFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("worksheet %s/%d", username, id))
		}
		return nil, errors.StorageError("failed to read worksheet", err)
	}
	var ws worksheet.Worksheet
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, errors.StorageError("failed to decode worksheet", err)
	}
	return &ws, nil
}

// List returns a user's worksheets ordered by id. Directories that do not
// parse as worksheet ids are skipped.
func (s *Store) List(ctx context.Context, username string) ([]*worksheet.Worksheet, error) {
	if err := checkUsername(username); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.userPath(username))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.StorageError("failed to list worksheets", err)
	}

	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)

	sheets := make([]*worksheet.Worksheet, 0, len(ids))
	for _, id := range ids {
		ws, err := s.Load(ctx, username, id)
		if err != nil {
			if errors.HasCode(err, errors.CodeNotFound) {
				continue
			}
			return nil, err
		}
		sheets = append(sheets, ws)
	}
	return sheets, nil
}

// Users returns every username that owns a home directory, scanning user
// directories in parallel to skip the empty ones.
func (s *Store) Users(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.homePath())
	if err != nil {
		return nil, errors.StorageError("failed to list home directories", err)
	}

	var mu sync.Mutex
	var users []string
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sub, err := os.ReadDir(s.userPath(name))
			if err != nil {
				return errors.StorageError("failed to scan user directory", err)
			}
			if len(sub) == 0 {
				return nil
			}
			mu.Lock()
			users = append(users, name)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(users)
	return users, nil
}

// NextID allocates the next worksheet id for a user (highest existing + 1)
// and reserves it by creating the worksheet directory. The reservation
// means two callers can never be handed the same id, even when neither
// has saved yet; a reserved id with no document is skipped by List.
func (s *Store) NextID(ctx context.Context, username string) (int, error) {
	if err := checkUsername(username); err != nil {
		return 0, err
	}
	s.idMu.Lock()
	defer s.idMu.Unlock()

	if err := os.MkdirAll(s.userPath(username), 0o755); err != nil {
		return 0, errors.StorageError("failed to create user directory", err)
	}
	entries, err := os.ReadDir(s.userPath(username))
	if err != nil {
		return 0, errors.StorageError("failed to scan user directory", err)
	}
	max := 0
	for _, e := range entries {
		if id, err := strconv.Atoi(e.Name()); err == nil && id > max {
			max = id
		}
	}
	for id := max + 1; ; id++ {
		err := os.Mkdir(s.worksheetPath(username, id), 0o755)
		if err == nil {
			return id, nil
		}
		if !os.IsExist(err) {
			return 0, errors.StorageError("failed to reserve worksheet id", err)
		}
	}
}

// Trash moves a worksheet into the trash area under
// trash/<username>/<id>. An existing trashed worksheet with the same id
// is replaced.
func (s *Store) Trash(ctx context.Context, username string, id int) error {
	if err := checkUsername(username); err != nil {
		return err
	}
	src := s.worksheetPath(username, id)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound(fmt.Sprintf("worksheet %s/%d", username, id))
		}
		return errors.StorageError("failed to stat worksheet", err)
	}
	dstDir := filepath.Join(s.trashPath(), username)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return errors.StorageError("failed to create trash directory", err)
	}
	dst := filepath.Join(dstDir, strconv.Itoa(id))
	if err := os.RemoveAll(dst); err != nil {
		return errors.StorageError("failed to clear trash slot", err)
	}
	if err := os.Rename(src, dst); err != nil {
		return errors.StorageError("failed to move worksheet to trash", err)
	}
	return nil
}
