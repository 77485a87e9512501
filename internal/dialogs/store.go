package dialogs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"socialnet/internal/database"
	"socialnet/internal/model"
)

// Store persists dialogs and their messages. A dialog row is created
// lazily on the first message between a pair; the pair is unordered.
// Writes go to the master, list reads to a replica.
type Store struct {
	db *database.Cluster
}

func NewStore(db *database.Cluster) *Store {
	return &Store{db: db}
}

// SaveMessage appends a message to the dialog between sender and
// receiver, creating the dialog on first contact. Everything runs on
// the master so the lazily created dialog is immediately visible.
func (s *Store) SaveMessage(ctx context.Context, senderID, receiverID uuid.UUID, content string) error {
	startTime := time.Now()
	db := s.db.Master()

	dialogID, err := findDialog(ctx, db, senderID, receiverID)
	if errors.Is(err, sql.ErrNoRows) {
		dialogID, err = s.createDialog(ctx, senderID, receiverID)
	}
	if err != nil {
		return err
	}

	query := `
		INSERT INTO dialog_messages (id, dialog_id, user_id, content)
		VALUES ($1, $2, $3, $4)`

	if _, err := db.ExecContext(ctx, query, uuid.New(), dialogID, senderID, content); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	log.Printf("[DialogStore] SaveMessage OK: dialog=%s sender=%s duration=%v",
		dialogID, senderID, time.Since(startTime))
	return nil
}

// ListMessages returns a window of the dialog between the two users in
// send order. A pair that never talked has no messages.
func (s *Store) ListMessages(ctx context.Context, userID1, userID2 uuid.UUID, offset, limit int) ([]model.DialogMessage, error) {
	startTime := time.Now()
	db := s.db.Replica()

	dialogID, err := findDialog(ctx, db, userID1, userID2)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []model.DialogMessage{}, nil
		}
		return nil, err
	}

	query := `
		SELECT id, dialog_id, user_id, content
		FROM dialog_messages
		WHERE dialog_id = $1
		ORDER BY created_at, id
		OFFSET $2 LIMIT $3`

	messages := []model.DialogMessage{}
	if err := db.SelectContext(ctx, &messages, query, dialogID, offset, limit); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	log.Printf("[DialogStore] ListMessages OK: dialog=%s returned=%d duration=%v",
		dialogID, len(messages), time.Since(startTime))
	return messages, nil
}

func (s *Store) createDialog(ctx context.Context, userID1, userID2 uuid.UUID) (uuid.UUID, error) {
	id := uuid.New()

	query := `INSERT INTO dialogs (id, user_id1, user_id2) VALUES ($1, $2, $3)`
	if _, err := s.db.Master().ExecContext(ctx, query, id, userID1, userID2); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create dialog: %w", err)
	}

	log.Printf("[DialogStore] Dialog created: id=%s", id)
	return id, nil
}

// findDialog resolves the dialog id for an unordered user pair.
// Returns sql.ErrNoRows untouched so callers can branch on it.
func findDialog(ctx context.Context, db *sqlx.DB, userID1, userID2 uuid.UUID) (uuid.UUID, error) {
	query := `
		SELECT id FROM dialogs
		WHERE (user_id1 = $1 AND user_id2 = $2) OR (user_id1 = $2 AND user_id2 = $1)`

	var id uuid.UUID
	if err := db.GetContext(ctx, &id, query, userID1, userID2); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, err
		}
		return uuid.Nil, fmt.Errorf("failed to find dialog: %w", err)
	}
	return id, nil
}
