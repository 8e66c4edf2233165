package store

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/tomz197/astrds/internal/game"
)

var (
	_ game.HighScoreStore = (*Slot)(nil)
	_ game.HighScoreStore = (*Memory)(nil)
)

func openTemp(t *testing.T) *SQLite {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "scores.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "a", "b", "scores.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestSlotLoadEmpty(t *testing.T) {
	s := openTemp(t)
	slot, err := s.Slot("astrds_highscore")
	if err != nil {
		t.Fatalf("Slot() failed: %v", err)
	}
	score, err := slot.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if score != 0 {
		t.Errorf("Expected 0 for an empty slot, got %d", score)
	}
}

func TestSlotSaveKeepsBest(t *testing.T) {
	s := openTemp(t)
	slot, err := s.Slot("astrds_highscore")
	if err != nil {
		t.Fatalf("Slot() failed: %v", err)
	}

	for _, score := range []int{120, 80, 300, 250} {
		if err := slot.Save(score); err != nil {
			t.Fatalf("Save(%d) failed: %v", score, err)
		}
	}

	score, err := slot.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if score != 300 {
		t.Errorf("Expected 300, got %d", score)
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	s := openTemp(t)
	alice, _ := s.Slot("astrds:alice")
	bob, _ := s.Slot("astrds:bob")

	if err := alice.Save(500); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := bob.Save(40); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	if got, _ := alice.Load(); got != 500 {
		t.Errorf("alice = %d, want 500", got)
	}
	if got, _ := bob.Load(); got != 40 {
		t.Errorf("bob = %d, want 40", got)
	}

	entries, err := s.List(10)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Key != "astrds:alice" || entries[0].Score != 500 {
		t.Errorf("Expected alice first, got %+v", entries[0])
	}
}

func TestSlotPersistsAcrossOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "scores.db")

	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	slot, _ := s.Slot("astrds_highscore")
	if err := slot.Save(777); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	s.Close()

	s, err = Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()
	slot, _ = s.Slot("astrds_highscore")
	if got, _ := slot.Load(); got != 777 {
		t.Errorf("Expected 777 after reopen, got %d", got)
	}
}

func TestSlotEmptyKey(t *testing.T) {
	s := openTemp(t)
	if _, err := s.Slot(""); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("Expected ErrEmptyKey, got %v", err)
	}
}

func TestSlotConcurrentSaves(t *testing.T) {
	s := openTemp(t)
	slot, _ := s.Slot("shared")

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			if err := slot.Save(score * 10); err != nil {
				t.Errorf("Save() failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if got, _ := slot.Load(); got != 200 {
		t.Errorf("Expected 200, got %d", got)
	}
}

func TestClosedStoreReturnsErrors(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "scores.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	slot, _ := s.Slot("astrds_highscore")
	s.Close()

	if _, err := slot.Load(); err == nil {
		t.Error("Expected Load() to fail on a closed database")
	}
	if err := slot.Save(10); err == nil {
		t.Error("Expected Save() to fail on a closed database")
	}
}

func TestSessionWithSlot(t *testing.T) {
	s := openTemp(t)
	slot, _ := s.Slot("astrds_highscore")
	if err := slot.Save(900); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	session := game.New(game.Options{Store: slot})
	if session.HighScore() != 900 {
		t.Errorf("Expected session to load 900, got %d", session.HighScore())
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory(50)
	if err := m.Save(30); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if got, _ := m.Load(); got != 50 {
		t.Errorf("Expected 50, got %d", got)
	}
	if err := m.Save(80); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if got, _ := m.Load(); got != 80 {
		t.Errorf("Expected 80, got %d", got)
	}
}
