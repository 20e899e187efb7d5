package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"build-streak-go/internal/models"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Compile-time check: *SQLiteStore must satisfy Store.
var _ Store = (*SQLiteStore)(nil)

const (
	querySelectEntry = `SELECT id, owner_address, date, note, created_at FROM daily_logs`

	queryInsertEntry = `INSERT INTO daily_logs (id, owner_address, date, note) VALUES (?, ?, ?, ?)`
	queryFindToday   = querySelectEntry + ` WHERE owner_address = ? AND date = ? ORDER BY created_at LIMIT 1`
	queryListEntries = querySelectEntry + ` WHERE owner_address = ? ORDER BY created_at DESC`
)

// SQLiteStore is the local/dev note backend.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, cfg models.NotesConfig) (*SQLiteStore, error) {
	if cfg.SqlitePath == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite note store", zap.String("file", cfg.SqlitePath))
	db, err := sql.Open("sqlite3", cfg.SqlitePath+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, closeErr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("SQLite note store initialized")
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Append-only daily log entries. No uniqueness constraint on
	-- (owner_address, date): the store accepts duplicates by contract and
	-- the controller's check-before-write is the only guard.
	CREATE TABLE IF NOT EXISTS daily_logs (
		id TEXT PRIMARY KEY,
		owner_address TEXT NOT NULL,
		date TEXT NOT NULL,
		note TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_daily_logs_owner_date ON daily_logs(owner_address, date);
	CREATE INDEX IF NOT EXISTS idx_daily_logs_owner_created ON daily_logs(owner_address, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close note store database", zap.Error(err))
	}
}

func (s *SQLiteStore) Append(ctx context.Context, ownerAddress, note string) (string, error) {
	if err := validateNote(note); err != nil {
		return "", err
	}

	id := uuid.New().String()
	today := Today()
	owner := NormalizeAddress(ownerAddress)

	if _, err := s.db.ExecContext(ctx, queryInsertEntry, id, owner, today, note); err != nil {
		return "", &WriteError{Op: "insert", Err: err}
	}

	zap.L().Info("Daily note recorded",
		zap.String("entry_id", id),
		zap.String("owner", owner),
		zap.String("date", today))
	return id, nil
}

func (s *SQLiteStore) FindToday(ctx context.Context, ownerAddress string) (*models.DailyLogEntry, error) {
	row := s.db.QueryRowContext(ctx, queryFindToday, NormalizeAddress(ownerAddress), Today())

	var entry models.DailyLogEntry
	err := row.Scan(&entry.ID, &entry.OwnerAddress, &entry.Date, &entry.Note, &entry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &ReadError{Op: "find_today", Err: err}
	}
	return &entry, nil
}

func (s *SQLiteStore) List(ctx context.Context, ownerAddress string) ([]models.DailyLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, queryListEntries, NormalizeAddress(ownerAddress))
	if err != nil {
		return nil, &ReadError{Op: "list", Err: err}
	}
	defer rows.Close()

	var entries []models.DailyLogEntry
	for rows.Next() {
		var entry models.DailyLogEntry
		if err := rows.Scan(&entry.ID, &entry.OwnerAddress, &entry.Date, &entry.Note, &entry.CreatedAt); err != nil {
			return nil, &ReadError{Op: "list", Err: err}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, &ReadError{Op: "list", Err: err}
	}
	return entries, nil
}
