package service

import (
	"context"
	"testing"
	"time"
)

func TestSessionCreateAndValidate(t *testing.T) {
	database := setupTestDB(t)
	seedUser(t, database, "u1")
	svc := NewSessionService(database, "sqlite")
	ctx := context.Background()

	session, err := svc.Create(ctx, "u1", nil, nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.Token == "" {
		t.Fatal("session has empty token")
	}

	user, err := svc.ValidateToken(ctx, session.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("user id = %q", user.ID)
	}
}

func TestSessionValidateRejectsUnknownToken(t *testing.T) {
	database := setupTestDB(t)
	svc := NewSessionService(database, "sqlite")

	if _, err := svc.ValidateToken(context.Background(), "bogus"); err == nil {
		t.Fatal("expected error for unknown token")
	}
	if _, err := svc.ValidateToken(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestSessionValidateRejectsExpired(t *testing.T) {
	database := setupTestDB(t)
	seedUser(t, database, "u1")
	svc := NewSessionService(database, "sqlite")
	ctx := context.Background()

	session, err := svc.Create(ctx, "u1", nil, nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	expired := time.Now().UTC().Add(-time.Minute)
	if _, err := database.Exec(`UPDATE sessions SET expires_at = ? WHERE token = ?`, expired, session.Token); err != nil {
		t.Fatalf("backdate session: %v", err)
	}

	if _, err := svc.ValidateToken(ctx, session.Token); err == nil {
		t.Fatal("expected error for expired session")
	}
}

func TestSessionRevoke(t *testing.T) {
	database := setupTestDB(t)
	seedUser(t, database, "u1")
	svc := NewSessionService(database, "sqlite")
	ctx := context.Background()

	session, err := svc.Create(ctx, "u1", nil, nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if err := svc.Revoke(ctx, session.Token); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.ValidateToken(ctx, session.Token); err == nil {
		t.Fatal("expected error after revoke")
	}
}
