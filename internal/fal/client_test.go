package fal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSubscribeDecodesResult(t *testing.T) {
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"images":[{"url":"https://origin/a.png"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key")
	result, err := client.Subscribe(context.Background(), "fal-ai/imagen4/preview", map[string]any{"prompt": "a fox"})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if gotPath != "/fal-ai/imagen4/preview" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Key secret-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if _, ok := result["images"]; !ok {
		t.Errorf("result = %+v", result)
	}
}

func TestSubscribeClassifiesRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"too many requests"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k")
	_, err := client.Subscribe(context.Background(), "m", nil)

	var invocation *InvocationError
	if !errors.As(err, &invocation) {
		t.Fatalf("expected InvocationError, got %v", err)
	}
	if invocation.Kind != FailureRateLimited {
		t.Errorf("kind = %q", invocation.Kind)
	}
	if invocation.Status != http.StatusTooManyRequests {
		t.Errorf("status = %d", invocation.Status)
	}
}

func TestSubscribeClassifiesContentRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"prompt violates content policy"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k")
	_, err := client.Subscribe(context.Background(), "m", nil)

	var invocation *InvocationError
	if !errors.As(err, &invocation) {
		t.Fatalf("expected InvocationError, got %v", err)
	}
	if invocation.Kind != FailureContentRejected {
		t.Errorf("kind = %q", invocation.Kind)
	}
}

func TestSubscribeExtractsNestedErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model is overloaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k")
	_, err := client.Subscribe(context.Background(), "m", nil)

	var invocation *InvocationError
	if !errors.As(err, &invocation) {
		t.Fatalf("expected InvocationError, got %v", err)
	}
	if invocation.Message != "model is overloaded" {
		t.Errorf("message = %q", invocation.Message)
	}
}

func TestSubscribeSurfacesContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(srv.URL, "k")
	_, err := client.Subscribe(ctx, "m", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSubscribeRequiresModelID(t *testing.T) {
	client := NewClient("https://fal.run", "k")
	if _, err := client.Subscribe(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for blank model id")
	}
}
