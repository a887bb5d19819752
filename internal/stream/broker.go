// Package stream implements resumable run streams over Redis. Every event
// published to a stream is appended to a Redis list for replay and fanned
// out over pub/sub for live subscribers, so a client can reconnect at any
// point during or after a run and observe the full event sequence.
package stream

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Terminator is the sentinel payload appended when a stream closes.
const Terminator = "[DONE]"

const (
	defaultTTL    = 24 * time.Hour
	subscribeBuf  = 256
	channelPrefix = "stream:"
)

// Broker publishes and subscribes resumable event streams.
type Broker struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewBroker(client redis.UniversalClient) *Broker {
	return &Broker{client: client, ttl: defaultTTL}
}

func eventsKey(streamID string) string {
	return channelPrefix + streamID + ":events"
}

func channel(streamID string) string {
	return channelPrefix + streamID
}

// Publish appends payload to the stream's replay log and fans it out to
// live subscribers. Events carry their log position so a subscriber that
// replays the log can discard pub/sub duplicates.
func (b *Broker) Publish(ctx context.Context, streamID, payload string) error {
	key := eventsKey(streamID)

	seq, err := b.client.RPush(ctx, key, payload).Result()
	if err != nil {
		return fmt.Errorf("append stream event: %w", err)
	}
	if err := b.client.Expire(ctx, key, b.ttl).Err(); err != nil {
		return fmt.Errorf("expire stream log: %w", err)
	}

	framed := strconv.FormatInt(seq, 10) + "\n" + payload
	if err := b.client.Publish(ctx, channel(streamID), framed).Err(); err != nil {
		return fmt.Errorf("publish stream event: %w", err)
	}
	return nil
}

// Close terminates the stream. Subscribers receive the terminator and stop.
func (b *Broker) Close(ctx context.Context, streamID string) error {
	return b.Publish(ctx, streamID, Terminator)
}

// Exists reports whether the stream has a replay log.
func (b *Broker) Exists(ctx context.Context, streamID string) (bool, error) {
	n, err := b.client.Exists(ctx, eventsKey(streamID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Subscribe returns a channel that replays the stream's full history and
// then follows live events until the terminator arrives or ctx is
// cancelled. The returned cancel func must be called to release the
// pub/sub connection.
func (b *Broker) Subscribe(ctx context.Context, streamID string) (<-chan string, func(), error) {
	pubsub := b.client.Subscribe(ctx, channel(streamID))
	// Force the subscription onto the wire before replaying so no event
	// falls between replay and live tail.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe stream: %w", err)
	}

	history, err := b.client.LRange(ctx, eventsKey(streamID), 0, -1).Result()
	if err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("replay stream log: %w", err)
	}

	out := make(chan string, subscribeBuf)
	cancel := func() { _ = pubsub.Close() }

	go func() {
		defer close(out)

		lastSeq := int64(len(history))
		for _, payload := range history {
			if payload == Terminator {
				return
			}
			select {
			case out <- payload:
			case <-ctx.Done():
				return
			}
		}

		live := pubsub.Channel()
		for {
			select {
			case msg, ok := <-live:
				if !ok {
					return
				}
				seq, payload, ok := splitFramed(msg.Payload)
				if !ok || seq <= lastSeq {
					continue
				}
				lastSeq = seq
				if payload == Terminator {
					return
				}
				select {
				case out <- payload:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cancel, nil
}

func splitFramed(framed string) (int64, string, bool) {
	idx := strings.IndexByte(framed, '\n')
	if idx < 0 {
		return 0, "", false
	}
	seq, err := strconv.ParseInt(framed[:idx], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return seq, framed[idx+1:], true
}
