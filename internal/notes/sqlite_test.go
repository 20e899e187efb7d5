package notes

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"build-streak-go/internal/models"
)

func setupNoteTestStore(t *testing.T) (*SQLiteStore, func()) {
	cfg := models.NotesConfig{
		SqlitePath:   ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  5 * time.Second,
	}

	store, err := NewSQLiteStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}

	cleanup := func() {
		store.Close()
	}

	return store, cleanup
}

func TestFindToday_NoEntry(t *testing.T) {
	store, cleanup := setupNoteTestStore(t)
	defer cleanup()

	entry, err := store.FindToday(context.Background(), "0xAbC")
	if err != nil {
		t.Fatalf("FindToday failed: %v", err)
	}
	if entry != nil {
		t.Errorf("Expected no entry, got %+v", entry)
	}
}

func TestAppendAndFindToday(t *testing.T) {
	store, cleanup := setupNoteTestStore(t)
	defer cleanup()

	ctx := context.Background()
	id, err := store.Append(ctx, "0xAbC", "shipped the parser")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if id == "" {
		t.Errorf("Expected a non-empty entry id")
	}

	entry, err := store.FindToday(ctx, "0xAbC")
	if err != nil {
		t.Fatalf("FindToday failed: %v", err)
	}
	if entry == nil {
		t.Fatalf("Expected today's entry, got nil")
	}
	if entry.ID != id {
		t.Errorf("Expected entry id %s, got %s", id, entry.ID)
	}
	if entry.Note != "shipped the parser" {
		t.Errorf("Expected note text preserved, got %q", entry.Note)
	}
	if entry.Date != Today() {
		t.Errorf("Expected date %s, got %s", Today(), entry.Date)
	}
}

func TestAppend_NormalizesAddress(t *testing.T) {
	store, cleanup := setupNoteTestStore(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := store.Append(ctx, "  0xABCDEF  ", "mixed case write"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	entry, err := store.FindToday(ctx, "0xabcdef")
	if err != nil {
		t.Fatalf("FindToday failed: %v", err)
	}
	if entry == nil {
		t.Fatalf("Expected lookup under the normalized address to find the entry")
	}
	if entry.OwnerAddress != "0xabcdef" {
		t.Errorf("Expected owner stored lowercase, got %q", entry.OwnerAddress)
	}
}

func TestAppend_EmptyNoteAllowed(t *testing.T) {
	store, cleanup := setupNoteTestStore(t)
	defer cleanup()

	if _, err := store.Append(context.Background(), "0xabc", ""); err != nil {
		t.Fatalf("Expected empty note to be accepted, got %v", err)
	}
}

func TestAppend_RejectsOverlongNote(t *testing.T) {
	store, cleanup := setupNoteTestStore(t)
	defer cleanup()

	long := strings.Repeat("x", models.MaxNoteLength+1)
	_, err := store.Append(context.Background(), "0xabc", long)
	if err == nil {
		t.Fatalf("Expected overlong note to be rejected")
	}
	if !errors.Is(err, ErrNoteTooLong) {
		t.Errorf("Expected ErrNoteTooLong, got %v", err)
	}

	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Errorf("Expected a *WriteError, got %T", err)
	}

	// The boundary itself is fine.
	exact := strings.Repeat("x", models.MaxNoteLength)
	if _, err := store.Append(context.Background(), "0xabc", exact); err != nil {
		t.Errorf("Expected %d-rune note to be accepted, got %v", models.MaxNoteLength, err)
	}
}

func TestAppend_LengthCountsRunesNotBytes(t *testing.T) {
	store, cleanup := setupNoteTestStore(t)
	defer cleanup()

	// 500 multibyte runes exceed 500 bytes but not the rune limit.
	note := strings.Repeat("é", models.MaxNoteLength)
	if _, err := store.Append(context.Background(), "0xabc", note); err != nil {
		t.Errorf("Expected multibyte note within the rune limit to be accepted, got %v", err)
	}
}

func TestAppend_AllowsDuplicateDays(t *testing.T) {
	store, cleanup := setupNoteTestStore(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := store.Append(ctx, "0xabc", "first"); err != nil {
		t.Fatalf("First append failed: %v", err)
	}
	if _, err := store.Append(ctx, "0xabc", "second"); err != nil {
		t.Fatalf("Expected duplicate-day append to be accepted, got %v", err)
	}

	entries, err := store.List(ctx, "0xabc")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected both entries kept, got %d", len(entries))
	}
}

func TestList_NewestFirstAndScoped(t *testing.T) {
	store, cleanup := setupNoteTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// created_at has second precision in sqlite, so order the rows manually.
	base := time.Now().Add(-3 * time.Hour)
	rows := []struct {
		owner string
		note  string
		at    time.Time
	}{
		{"0xabc", "oldest", base},
		{"0xabc", "middle", base.Add(time.Hour)},
		{"0xabc", "newest", base.Add(2 * time.Hour)},
		{"0xdef", "other owner", base.Add(90 * time.Minute)},
	}
	for i, r := range rows {
		_, err := store.db.ExecContext(ctx,
			`INSERT INTO daily_logs (id, owner_address, date, note, created_at) VALUES (?, ?, ?, ?, ?)`,
			string(rune('a'+i)), r.owner, DayKey(r.at), r.note, r.at)
		if err != nil {
			t.Fatalf("Failed to seed entry: %v", err)
		}
	}

	entries, err := store.List(ctx, "0xabc")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries for owner, got %d", len(entries))
	}
	want := []string{"newest", "middle", "oldest"}
	for i, entry := range entries {
		if entry.Note != want[i] {
			t.Errorf("Expected entry %d to be %q, got %q", i, want[i], entry.Note)
		}
	}
}

func TestList_EmptyHistory(t *testing.T) {
	store, cleanup := setupNoteTestStore(t)
	defer cleanup()

	entries, err := store.List(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty history, got %d entries", len(entries))
	}
}

func TestDayKey(t *testing.T) {
	at := time.Date(2026, time.August, 28, 23, 59, 0, 0, time.Local)
	if got := DayKey(at); got != "2026-08-28" {
		t.Errorf("Expected 2026-08-28, got %s", got)
	}
}
