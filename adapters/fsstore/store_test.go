package fsstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/certik/femhub-notebook/domain/worksheet"
	"github.com/certik/femhub-notebook/internal/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func mustWorksheet(t *testing.T, owner string, id int, name string) *worksheet.Worksheet {
	t.Helper()
	ws, err := worksheet.New(owner, id, name)
	if err != nil {
		t.Fatalf("failed to create worksheet: %v", err)
	}
	return ws
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ws := mustWorksheet(t, "alice", 1, "First")
	ws.Cells[0].Input = "2+2"
	ws.AppendCell(worksheet.CellText, "notes")

	if err := s.Save(ctx, ws); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := s.Load(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Name != "First" {
		t.Errorf("expected name First, got %s", loaded.Name)
	}
	if len(loaded.Cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(loaded.Cells))
	}
	if loaded.Cells[0].Input != "2+2" {
		t.Errorf("cell input lost: %+v", loaded.Cells[0])
	}
}

func TestSaveOverwritesAtomically(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ws := mustWorksheet(t, "alice", 1, "v1")
	if err := s.Save(ctx, ws); err != nil {
		t.Fatal(err)
	}
	ws.Name = "v2"
	if err := s.Save(ctx, ws); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.Load(ctx, "alice", 1)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Name != "v2" {
		t.Errorf("expected v2, got %s", loaded.Name)
	}

	// No temp files may be left behind.
	entries, err := os.ReadDir(filepath.Join(s.root, "home", "alice", "1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only worksheet.json, found %d entries", len(entries))
	}
}

func TestLoadMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load(context.Background(), "alice", 99)
	if err == nil {
		t.Fatal("expected error for missing worksheet")
	}
	if !errors.HasCode(err, errors.CodeNotFound) {
		t.Errorf("expected not-found code, got %s", errors.GetCode(err))
	}
}

func TestListOrderedByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, id := range []int{3, 1, 2} {
		if err := s.Save(ctx, mustWorksheet(t, "alice", id, "w")); err != nil {
			t.Fatal(err)
		}
	}

	sheets, err := s.List(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(sheets) != 3 {
		t.Fatalf("expected 3 worksheets, got %d", len(sheets))
	}
	for i, want := range []int{1, 2, 3} {
		if sheets[i].ID != want {
			t.Errorf("position %d: expected id %d, got %d", i, want, sheets[i].ID)
		}
	}
}

func TestListUnknownUser(t *testing.T) {
	s := newTestStore(t)
	sheets, err := s.List(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheets) != 0 {
		t.Errorf("expected no worksheets, got %d", len(sheets))
	}
}

func TestNextID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.NextID(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 {
		t.Errorf("first id should be 1, got %d", id)
	}

	if err := s.Save(ctx, mustWorksheet(t, "alice", 5, "w")); err != nil {
		t.Fatal(err)
	}
	id, err = s.NextID(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if id != 6 {
		t.Errorf("expected id 6 after saving id 5, got %d", id)
	}
}

func TestNextIDReservesBeforeSave(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Both ids are handed out before either worksheet is saved, the
	// order a pair of in-flight creations produces.
	id1, err := s.NextID(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	id2, err := s.NextID(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if id1 == id2 {
		t.Fatalf("both allocations got id %d", id1)
	}

	if err := s.Save(ctx, mustWorksheet(t, "alice", id1, "first sheet")); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, mustWorksheet(t, "alice", id2, "second sheet")); err != nil {
		t.Fatal(err)
	}

	sheets, err := s.List(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(sheets) != 2 {
		t.Fatalf("expected both worksheets to survive, got %d", len(sheets))
	}
	if sheets[0].Name == sheets[1].Name {
		t.Errorf("one worksheet overwrote the other: %s", sheets[0].Name)
	}
}

func TestNextIDConcurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const n = 16
	ids := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.NextID(ctx, "alice")
			if err != nil {
				t.Errorf("NextID failed: %v", err)
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("id %d allocated twice", id)
		}
		seen[id] = true
	}
}

func TestListSkipsReservedIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.NextID(ctx, "alice"); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, mustWorksheet(t, "alice", 2, "w")); err != nil {
		t.Fatal(err)
	}

	sheets, err := s.List(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(sheets) != 1 || sheets[0].ID != 2 {
		t.Errorf("expected only the saved worksheet, got %+v", sheets)
	}
}

func TestTrash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.Save(ctx, mustWorksheet(t, "alice", 1, "w")); err != nil {
		t.Fatal(err)
	}

	if err := s.Trash(ctx, "alice", 1); err != nil {
		t.Fatalf("trash failed: %v", err)
	}
	if _, err := s.Load(ctx, "alice", 1); !errors.HasCode(err, errors.CodeNotFound) {
		t.Error("worksheet should be gone from home after trashing")
	}
	if _, err := os.Stat(filepath.Join(s.root, "trash", "alice", "1")); err != nil {
		t.Errorf("worksheet should exist in trash: %v", err)
	}

	if err := s.Trash(ctx, "alice", 1); !errors.HasCode(err, errors.CodeNotFound) {
		t.Error("trashing twice should report not found")
	}
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, owner := range []string{"carol", "alice", "bob"} {
		if err := s.Save(ctx, mustWorksheet(t, owner, 1, "w")); err != nil {
			t.Fatal(err)
		}
	}

	users, err := s.Users(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"alice", "bob", "carol"}
	if len(users) != len(want) {
		t.Fatalf("expected %d users, got %v", len(want), users)
	}
	for i := range want {
		if users[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], users[i])
		}
	}
}

func TestUnsafeUsernamesRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, username := range []string{"..", "a/b", "", `a\b`} {
		if _, err := s.Load(ctx, username, 1); err == nil {
			t.Errorf("Load should reject username %q", username)
		}
		if _, err := s.NextID(ctx, username); err == nil {
			t.Errorf("NextID should reject username %q", username)
		}
	}
}
