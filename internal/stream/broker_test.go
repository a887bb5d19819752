package stream

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupBroker(t *testing.T) *Broker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewBroker(client)
}

func collect(t *testing.T, ch <-chan string, want int) []string {
	t.Helper()
	var out []string
	deadline := time.After(5 * time.Second)
	for len(out) < want {
		select {
		case payload, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, payload)
		case <-deadline:
			t.Fatalf("timed out after %d of %d events", len(out), want)
		}
	}
	return out
}

func TestBrokerReplaysFinishedStream(t *testing.T) {
	broker := setupBroker(t)
	ctx := context.Background()

	for _, payload := range []string{"one", "two", "three"} {
		if err := broker.Publish(ctx, "s1", payload); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	if err := broker.Close(ctx, "s1"); err != nil {
		t.Fatalf("close: %v", err)
	}

	ch, cancel, err := broker.Subscribe(ctx, "s1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	got := collect(t, ch, 3)
	if len(got) != 3 || got[0] != "one" || got[2] != "three" {
		t.Fatalf("replayed = %v", got)
	}
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected channel closed after terminator")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after terminator")
	}
}

func TestBrokerLiveTailAfterReplay(t *testing.T) {
	broker := setupBroker(t)
	ctx := context.Background()

	if err := broker.Publish(ctx, "s2", "historic"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	ch, cancel, err := broker.Subscribe(ctx, "s2")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	// Give the replay goroutine a beat, then publish live events.
	first := collect(t, ch, 1)
	if first[0] != "historic" {
		t.Fatalf("replay = %v", first)
	}

	if err := broker.Publish(ctx, "s2", "live-1"); err != nil {
		t.Fatalf("publish live: %v", err)
	}
	if err := broker.Publish(ctx, "s2", "live-2"); err != nil {
		t.Fatalf("publish live: %v", err)
	}
	live := collect(t, ch, 2)
	if live[0] != "live-1" || live[1] != "live-2" {
		t.Fatalf("live tail = %v", live)
	}

	if err := broker.Close(ctx, "s2"); err != nil {
		t.Fatalf("close: %v", err)
	}
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected channel closed after terminator")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after terminator")
	}
}

func TestBrokerExists(t *testing.T) {
	broker := setupBroker(t)
	ctx := context.Background()

	exists, err := broker.Exists(ctx, "nope")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatal("stream should not exist yet")
	}

	if err := broker.Publish(ctx, "s3", "x"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	exists, err = broker.Exists(ctx, "s3")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatal("stream should exist after publish")
	}
}

func TestSplitFramed(t *testing.T) {
	seq, payload, ok := splitFramed("42\n{\"type\":\"finish\"}")
	if !ok || seq != 42 || payload != `{"type":"finish"}` {
		t.Fatalf("splitFramed = %d %q %v", seq, payload, ok)
	}
	if _, _, ok := splitFramed("no-newline"); ok {
		t.Fatal("expected failure without frame separator")
	}
	if _, _, ok := splitFramed("abc\npayload"); ok {
		t.Fatal("expected failure with non-numeric seq")
	}
}
