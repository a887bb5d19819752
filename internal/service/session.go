package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"artisan/internal/model"
)

const sessionTTL = 30 * 24 * time.Hour

// SessionService resolves bearer tokens to users and manages session rows.
type SessionService struct {
	db     *sql.DB
	driver string
}

func NewSessionService(db *sql.DB, driver string) *SessionService {
	return &SessionService{db: db, driver: driver}
}

// ValidateToken returns the user owning a live session token.
func (s *SessionService) ValidateToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}

	row := s.db.QueryRowContext(ctx, rebind(s.driver, `
		SELECT u.id, u.name, u.email, u.email_verified, u.image, u.created_at, u.updated_at, s.expires_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = ?`), token)

	var user model.User
	var image sql.NullString
	var expiresAt time.Time
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.EmailVerified, &image, &user.CreatedAt, &user.UpdatedAt, &expiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("unknown session token")
		}
		return nil, err
	}
	if image.Valid {
		user.Image = &image.String
	}
	if time.Now().UTC().After(expiresAt) {
		return nil, fmt.Errorf("session expired")
	}
	return &user, nil
}

// Create issues a new session for a user and returns its token.
func (s *SessionService) Create(ctx context.Context, userID string, ipAddress, userAgent *string) (*model.Session, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	session := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     hex.EncodeToString(tokenBytes),
		ExpiresAt: time.Now().UTC().Add(sessionTTL),
		IPAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, rebind(s.driver, `
		INSERT INTO sessions (id, user_id, token, expires_at, ip_address, user_agent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		session.ID, session.UserID, session.Token, session.ExpiresAt,
		session.IPAddress, session.UserAgent, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Revoke deletes a session by token.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, rebind(s.driver, `
		DELETE FROM sessions WHERE token = ?`), token)
	return err
}
