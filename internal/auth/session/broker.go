package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vinnesia/domainform-backend/internal/logging"
)

const eventChannelPrefix = "auth:events:" // Pub/Sub channel for session events: auth:events:{uid}

type EventType string

const (
	SignedIn  EventType = "signed_in"
	SignedOut EventType = "signed_out"
)

// Session is the identity attached to a sign-in event.
type Session struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
}

// Event reports an auth-state change for one user. Session is nil on sign-out.
type Event struct {
	Type    EventType `json:"type"`
	UID     string    `json:"uid"`
	Session *Session  `json:"session,omitempty"`
	At      time.Time `json:"at"`
}

// Broker delivers session events to subscribers of a user. The returned
// cancel function ends the subscription and closes the channel.
type Broker interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, uid string) (<-chan Event, func(), error)
}

func channel(uid string) string {
	return eventChannelPrefix + uid
}

// RedisBroker fans session events out through Redis Pub/Sub so every API
// instance sees them.
type RedisBroker struct {
	client *redis.Client
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

func (b *RedisBroker) Publish(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal session event: %w", err)
	}
	if err := b.client.Publish(ctx, channel(ev.UID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish session event: %w", err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, uid string) (<-chan Event, func(), error) {
	ps := b.client.Subscribe(ctx, channel(uid))
	// Wait for the subscription to be confirmed before returning
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to session events: %w", err)
	}

	out := make(chan Event, 4)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			ps.Close()
		})
	}

	go func() {
		defer close(out)
		logger := logging.New(ctx)
		msgs := ps.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				cancel()
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					logger.LogWarn("session.subscribe", "dropping malformed session event", "error", err.Error())
					continue
				}
				select {
				case out <- ev:
				case <-done:
					return
				}
			}
		}
	}()

	return out, cancel, nil
}

// LocalBroker delivers events within one process. Used when Redis is not configured.
type LocalBroker struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[string]map[chan Event]struct{})}
}

func (b *LocalBroker) Publish(_ context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[ev.UID] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (b *LocalBroker) Subscribe(_ context.Context, uid string) (<-chan Event, func(), error) {
	ch := make(chan Event, 4)

	b.mu.Lock()
	if b.subs[uid] == nil {
		b.subs[uid] = make(map[chan Event]struct{})
	}
	b.subs[uid][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[uid], ch)
			if len(b.subs[uid]) == 0 {
				delete(b.subs, uid)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}
