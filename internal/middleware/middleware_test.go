package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"artisan/internal/model"
)

func TestAuthInjectsUser(t *testing.T) {
	validate := func(_ context.Context, token string) (*model.User, error) {
		if token != "good-token" {
			return nil, errors.New("unknown token")
		}
		return &model.User{ID: "u1"}, nil
	}

	var seen *model.User
	handler := Auth(validate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if seen == nil || seen.ID != "u1" {
		t.Fatalf("user = %+v", seen)
	}
}

func TestAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	validate := func(_ context.Context, _ string) (*model.User, error) {
		return nil, errors.New("nope")
	}
	handler := Auth(validate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing header: status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("invalid token: status = %d", rec.Code)
	}
}

func TestTracePropagatesAndGeneratesIDs(t *testing.T) {
	var ctxID string
	handler := Trace(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = TraceIDFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace-Id", "trace-abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if ctxID != "trace-abc" || rec.Header().Get("X-Trace-Id") != "trace-abc" {
		t.Errorf("trace id not propagated: ctx=%q header=%q", ctxID, rec.Header().Get("X-Trace-Id"))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("X-Trace-Id") == "" {
		t.Error("trace id not generated")
	}
}

func TestTraceIDCarriesIntoDetachedContext(t *testing.T) {
	var runCtx context.Context
	handler := Trace(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The same hand-off the generate handler does for a detached run.
		runCtx = WithTraceID(context.Background(), TraceIDFromCtx(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, "trace-run")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got := TraceIDFromCtx(runCtx); got != "trace-run" {
		t.Errorf("detached ctx trace id = %q, want trace-run", got)
	}
	if got := TraceIDFromCtx(context.Background()); got != "" {
		t.Errorf("untraced ctx trace id = %q, want empty", got)
	}
}
