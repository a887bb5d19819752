package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"artisan/internal/model"
)

// MessageService persists conversation messages. Writes are idempotent
// upserts keyed by message id: a run that re-persists the same assistant
// message replaces its parts instead of duplicating the row.
type MessageService struct {
	db     *sql.DB
	driver string
}

func NewMessageService(db *sql.DB, driver string) *MessageService {
	return &MessageService{db: db, driver: driver}
}

func (s *MessageService) Upsert(ctx context.Context, msg *model.Message) error {
	if msg.ID == "" {
		return fmt.Errorf("message id is required")
	}
	if !msg.Role.Valid() {
		return fmt.Errorf("invalid message role: %s", msg.Role)
	}

	parts, err := json.Marshal(msg.Parts)
	if err != nil {
		return fmt.Errorf("marshal parts: %w", err)
	}
	metadata := msg.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, rebind(s.driver, `
		INSERT INTO messages (id, project_id, role, parts, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			parts = excluded.parts,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`),
		msg.ID, msg.ProjectID, msg.Role, string(parts), string(metadata), now, now)
	return err
}

// UpsertTx is Upsert inside an existing transaction.
func (s *MessageService) UpsertTx(ctx context.Context, tx *sql.Tx, msg *model.Message) error {
	if msg.ID == "" {
		return fmt.Errorf("message id is required")
	}
	parts, err := json.Marshal(msg.Parts)
	if err != nil {
		return fmt.Errorf("marshal parts: %w", err)
	}
	metadata := msg.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, rebind(s.driver, `
		INSERT INTO messages (id, project_id, role, parts, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			parts = excluded.parts,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`),
		msg.ID, msg.ProjectID, msg.Role, string(parts), string(metadata), now, now)
	return err
}

// ListByProject returns a project's messages in creation order.
func (s *MessageService) ListByProject(ctx context.Context, projectID string) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx, rebind(s.driver, `
		SELECT id, project_id, role, parts, metadata, created_at, updated_at
		FROM messages WHERE project_id = ?
		ORDER BY created_at ASC`), projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *msg)
	}
	return out, rows.Err()
}

func scanMessage(row rowScanner) (*model.Message, error) {
	var msg model.Message
	var parts, metadata string
	if err := row.Scan(&msg.ID, &msg.ProjectID, &msg.Role, &parts, &metadata, &msg.CreatedAt, &msg.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(parts), &msg.Parts); err != nil {
		return nil, fmt.Errorf("unmarshal parts for message %s: %w", msg.ID, err)
	}
	msg.Metadata = json.RawMessage(metadata)
	return &msg, nil
}
