package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"artisan/internal/model"
)

// MediaService records uploaded generation outputs.
type MediaService struct {
	db     *sql.DB
	driver string
}

func NewMediaService(db *sql.DB, driver string) *MediaService {
	return &MediaService{db: db, driver: driver}
}

// InsertBatch persists the files produced by one tool call as one multi-row
// insert, so a bad row cannot leave part of the batch behind. IDs are
// assigned here when absent.
func (s *MediaService) InsertBatch(ctx context.Context, files []model.MediaFile) error {
	if len(files) == 0 {
		return nil
	}
	now := time.Now().UTC()

	var query strings.Builder
	query.WriteString(`INSERT INTO media_files (id, user_id, project_id, type, content_type, url, created_at, updated_at) VALUES `)
	args := make([]any, 0, len(files)*8)
	for i := range files {
		if files[i].ID == "" {
			files[i].ID = uuid.NewString()
		}
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args, files[i].ID, files[i].UserID, files[i].ProjectID, files[i].Kind, files[i].ContentType, files[i].URL, now, now)
	}

	_, err := s.db.ExecContext(ctx, rebind(s.driver, query.String()), args...)
	return err
}

func (s *MediaService) ListByProject(ctx context.Context, projectID string) ([]model.MediaFile, error) {
	rows, err := s.db.QueryContext(ctx, rebind(s.driver, `
		SELECT id, user_id, project_id, type, content_type, url, created_at, updated_at
		FROM media_files WHERE project_id = ?
		ORDER BY created_at ASC`), projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MediaFile
	for rows.Next() {
		var f model.MediaFile
		if err := rows.Scan(&f.ID, &f.UserID, &f.ProjectID, &f.Kind, &f.ContentType, &f.URL, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
