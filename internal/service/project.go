package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"artisan/internal/model"
)

// ProjectService owns the project lifecycle: creation, ownership checks,
// and the submitted/streaming/ready/error status machine.
type ProjectService struct {
	db     *sql.DB
	driver string
}

func NewProjectService(db *sql.DB, driver string) *ProjectService {
	return &ProjectService{db: db, driver: driver}
}

func (s *ProjectService) Create(ctx context.Context, userID string) (*model.Project, error) {
	return s.CreateWithID(ctx, uuid.NewString(), userID)
}

// CreateWithID creates a project under a caller-chosen id. Clients mint the
// project id on their first generate request so the conversation URL is
// stable before the server ever sees it.
func (s *ProjectService) CreateWithID(ctx context.Context, id, userID string) (*model.Project, error) {
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, rebind(s.driver, `
		INSERT INTO projects (id, user_id, status, title, last_message_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		id, userID, model.ProjectStatusSubmitted, model.DefaultProjectTitle, now, now, now)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *ProjectService) Get(ctx context.Context, projectID string) (*model.Project, error) {
	row := s.db.QueryRowContext(ctx, rebind(s.driver, `
		SELECT id, user_id, stream_id, status, title, last_message_at, created_at, updated_at
		FROM projects WHERE id = ?`), projectID)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, &model.NotFoundError{Resource: "project", ID: projectID}
	}
	return p, err
}

// GetForUser loads a project and enforces ownership.
func (s *ProjectService) GetForUser(ctx context.Context, projectID, userID string) (*model.Project, error) {
	p, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, &model.AccessDeniedError{Resource: "project", ID: projectID}
	}
	return p, nil
}

func (s *ProjectService) ListForUser(ctx context.Context, userID string) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, rebind(s.driver, `
		SELECT id, user_id, stream_id, status, title, last_message_at, created_at, updated_at
		FROM projects WHERE user_id = ?
		ORDER BY last_message_at DESC`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *ProjectService) Delete(ctx context.Context, projectID, userID string) error {
	if _, err := s.GetForUser(ctx, projectID, userID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, rebind(s.driver, `
		DELETE FROM projects WHERE id = ? AND user_id = ?`), projectID, userID)
	return err
}

// MarkStreaming claims the project for a run: records the stream id and
// moves the project to streaming. The claim is status-conditional so two
// concurrent runs cannot interleave on one project; the loser gets a
// ConflictError.
func (s *ProjectService) MarkStreaming(ctx context.Context, projectID, streamID string) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, rebind(s.driver, `
		UPDATE projects SET status = ?, stream_id = ?, updated_at = ?
		WHERE id = ? AND status != ?`),
		model.ProjectStatusStreaming, streamID, now, projectID, model.ProjectStatusStreaming)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &model.ConflictError{Resource: "project", ID: projectID}
	}
	return nil
}

// MarkReady completes a run. The stream id stays on the row so a client can
// still replay the finished stream.
func (s *ProjectService) MarkReady(ctx context.Context, projectID string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, rebind(s.driver, `
		UPDATE projects SET status = ?, updated_at = ?
		WHERE id = ?`),
		model.ProjectStatusReady, now, projectID)
	return err
}

// MarkError fails a run and clears the stream id so stale resume attempts
// get rejected.
func (s *ProjectService) MarkError(ctx context.Context, projectID string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, rebind(s.driver, `
		UPDATE projects SET status = ?, stream_id = NULL, updated_at = ?
		WHERE id = ?`),
		model.ProjectStatusError, now, projectID)
	return err
}

func (s *ProjectService) SetTitle(ctx context.Context, projectID, title string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, rebind(s.driver, `
		UPDATE projects SET title = ?, updated_at = ?
		WHERE id = ?`),
		title, now, projectID)
	return err
}

func (s *ProjectService) TouchLastMessage(ctx context.Context, projectID string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, rebind(s.driver, `
		UPDATE projects SET last_message_at = ?, updated_at = ?
		WHERE id = ?`),
		now, now, projectID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*model.Project, error) {
	var p model.Project
	var streamID sql.NullString
	if err := row.Scan(&p.ID, &p.UserID, &streamID, &p.Status, &p.Title, &p.LastMessageAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if streamID.Valid {
		p.StreamID = &streamID.String
	}
	return &p, nil
}
