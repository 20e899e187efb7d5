package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"build-streak-go/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrNoteTooLong = errors.New("note exceeds maximum length")
)

// ReadError wraps any failure to query the note store.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("note store read (%s): %v", e.Op, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps any failure to append to the note store, including
// rejected input.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("note store write (%s): %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Store is the contract every note backend (SQLite, Firestore) must satisfy.
// Entries are append-only. Append computes "today" at call time and inserts
// unconditionally — the one-note-per-day rule is enforced upstream by the
// synchronization controller, not here.
type Store interface {
	// Append records a note for (ownerAddress, today) and returns the new
	// entry's id.
	Append(ctx context.Context, ownerAddress, note string) (string, error)
	// FindToday returns today's entry for the address, or (nil, nil) when
	// none exists. If duplicates exist the backend's own first result wins.
	FindToday(ctx context.Context, ownerAddress string) (*models.DailyLogEntry, error)
	// List returns all entries for the address, newest first. Each call
	// re-queries the backend.
	List(ctx context.Context, ownerAddress string) ([]models.DailyLogEntry, error)
	Close()
}

// DayKey returns the calendar-date key for t in the local time zone.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Today returns the current local calendar-date key.
func Today() string {
	return DayKey(time.Now())
}

// NormalizeAddress lowercases a wallet address so all backends key entries
// consistently.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

func validateNote(note string) error {
	if utf8.RuneCountInString(note) > models.MaxNoteLength {
		return &WriteError{Op: "validate", Err: ErrNoteTooLong}
	}
	return nil
}
