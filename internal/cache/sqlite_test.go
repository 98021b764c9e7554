package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_RoundTrip(t *testing.T) {
	s := openTestSQLite(t)

	want := memEntry("key-1", time.Now().Add(time.Hour))
	if err := s.Set(want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := s.Get("key-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected the entry to be present")
	}
	if got.Result.Content != want.Result.Content {
		t.Errorf("Content = %q, want %q", got.Result.Content, want.Result.Content)
	}
	if got.Result.Usage != want.Result.Usage {
		t.Errorf("Usage = %+v, want %+v", got.Result.Usage, want.Result.Usage)
	}
}

func TestSQLite_MissingKey(t *testing.T) {
	s := openTestSQLite(t)

	_, ok, err := s.Get("missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected a miss for an unknown key")
	}
}

func TestSQLite_ExpiredRowDeletedOnRead(t *testing.T) {
	s := openTestSQLite(t)

	if err := s.Set(memEntry("stale", time.Now().Add(-time.Minute))); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, ok, _ := s.Get("stale"); ok {
		t.Error("expired row should read as absent")
	}
	if n, _ := s.Len(); n != 0 {
		t.Errorf("Len = %d after expired read, want 0", n)
	}
}

func TestSQLite_Replace(t *testing.T) {
	s := openTestSQLite(t)
	future := time.Now().Add(time.Hour)

	first := memEntry("key-1", future)
	s.Set(first)

	second := memEntry("key-1", future)
	second.Result.Content = "replaced"
	if err := s.Set(second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, _ := s.Get("key-1")
	if !ok || got.Result.Content != "replaced" {
		t.Errorf("Content = %q, want %q", got.Result.Content, "replaced")
	}
	if n, _ := s.Len(); n != 1 {
		t.Errorf("Len = %d after replace, want 1", n)
	}
}

func TestSQLite_ClearExpiredOnly(t *testing.T) {
	s := openTestSQLite(t)

	s.Set(memEntry("stale", time.Now().Add(-time.Minute)))
	s.Set(memEntry("fresh", time.Now().Add(time.Hour)))

	if err := s.Clear(true); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n, _ := s.Len(); n != 1 {
		t.Errorf("Len = %d after expired-only clear, want 1", n)
	}

	if err := s.Clear(false); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n, _ := s.Len(); n != 0 {
		t.Errorf("Len = %d after full clear, want 0", n)
	}
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	if err := s.Set(memEntry("persist", time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s.Close()

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	if _, ok, _ := reopened.Get("persist"); !ok {
		t.Error("entry should survive a close and reopen")
	}
}
