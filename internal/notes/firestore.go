package notes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"build-streak-go/internal/models"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
)

// Compile-time check: *FirestoreStore must satisfy Store.
var _ Store = (*FirestoreStore)(nil)

// noteDoc mirrors the document shape of the hosted collection. Field names
// are part of the external contract and must not change.
type noteDoc struct {
	OwnerAddress string    `firestore:"userAddress"`
	Date         string    `firestore:"date"`
	Note         string    `firestore:"note"`
	CreatedAt    time.Time `firestore:"timestamp,serverTimestamp"`
}

// FirestoreStore is the managed document-store backend.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreStore(ctx context.Context, cfg models.NotesConfig) (*FirestoreStore, error) {
	if cfg.FirestoreProject == "" {
		return nil, fmt.Errorf("firestore project cannot be empty")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("firestore collection cannot be empty")
	}

	zap.L().Info("Connecting to Firestore note store",
		zap.String("project", cfg.FirestoreProject),
		zap.String("collection", cfg.Collection))
	client, err := firestore.NewClient(ctx, cfg.FirestoreProject)
	if err != nil {
		return nil, fmt.Errorf("unable to create firestore client: %w", err)
	}

	return &FirestoreStore{client: client, collection: cfg.Collection}, nil
}

func (s *FirestoreStore) Close() {
	if err := s.client.Close(); err != nil {
		zap.L().Warn("Failed to close firestore client", zap.Error(err))
	}
}

func (s *FirestoreStore) Append(ctx context.Context, ownerAddress, note string) (string, error) {
	if err := validateNote(note); err != nil {
		return "", err
	}

	owner := NormalizeAddress(ownerAddress)
	today := Today()

	ref, _, err := s.client.Collection(s.collection).Add(ctx, noteDoc{
		OwnerAddress: owner,
		Date:         today,
		Note:         note,
	})
	if err != nil {
		return "", &WriteError{Op: "insert", Err: err}
	}

	zap.L().Info("Daily note recorded",
		zap.String("entry_id", ref.ID),
		zap.String("owner", owner),
		zap.String("date", today))
	return ref.ID, nil
}

func (s *FirestoreStore) FindToday(ctx context.Context, ownerAddress string) (*models.DailyLogEntry, error) {
	iter := s.client.Collection(s.collection).
		Where("userAddress", "==", NormalizeAddress(ownerAddress)).
		Where("date", "==", Today()).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, nil
	}
	if err != nil {
		return nil, &ReadError{Op: "find_today", Err: err}
	}

	entry, err := decodeNoteDoc(snap)
	if err != nil {
		return nil, &ReadError{Op: "find_today", Err: err}
	}
	return entry, nil
}

func (s *FirestoreStore) List(ctx context.Context, ownerAddress string) ([]models.DailyLogEntry, error) {
	iter := s.client.Collection(s.collection).
		Where("userAddress", "==", NormalizeAddress(ownerAddress)).
		OrderBy("timestamp", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var entries []models.DailyLogEntry
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, &ReadError{Op: "list", Err: err}
		}
		entry, err := decodeNoteDoc(snap)
		if err != nil {
			return nil, &ReadError{Op: "list", Err: err}
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

func decodeNoteDoc(snap *firestore.DocumentSnapshot) (*models.DailyLogEntry, error) {
	var doc noteDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("unable to decode document %s: %w", snap.Ref.ID, err)
	}
	return &models.DailyLogEntry{
		ID:           snap.Ref.ID,
		OwnerAddress: doc.OwnerAddress,
		Date:         doc.Date,
		Note:         doc.Note,
		CreatedAt:    doc.CreatedAt,
	}, nil
}
