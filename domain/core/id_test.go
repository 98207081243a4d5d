package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 1000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}
}

func TestIDString(t *testing.T) {
	id := ID("test-123")
	if id.String() != "test-123" {
		t.Errorf("Expected String() to return 'test-123', got '%s'", id.String())
	}
}

func TestParseUserID(t *testing.T) {
	if _, err := ParseUserID(""); err == nil {
		t.Error("expected error for empty user ID")
	}
	id, err := ParseUserID("u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.String() != "u-1" {
		t.Errorf("expected u-1, got %s", id)
	}
}

func TestParseSessionID(t *testing.T) {
	if _, err := ParseSessionID("  "); err == nil {
		t.Error("expected error for blank session ID")
	}
}
