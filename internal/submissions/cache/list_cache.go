package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vinnesia/domainform-backend/internal/submissions/domain"
)

const (
	listKeyPrefix = "dash:list:" // Cached listing for a user: dash:list:{uid}[:{email}]
	defaultTTL    = 30 * time.Second
)

// ErrMiss is returned by Get when no listing is cached.
var ErrMiss = errors.New("listing not cached")

// ListCache keeps each user's submission listing in Redis
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListCache creates a cache whose entries expire after ttl.
func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ListCache{client: client, ttl: ttl}
}

// Key returns the Redis key of a listing. Email-widened listings get their own key.
func Key(opts domain.ListOptions) string {
	if opts.Email != "" {
		return listKeyPrefix + opts.UserID + ":" + strings.ToLower(opts.Email)
	}
	return listKeyPrefix + opts.UserID
}

func (c *ListCache) Get(ctx context.Context, opts domain.ListOptions) ([]domain.Submission, error) {
	data, err := c.client.Get(ctx, Key(opts)).Bytes()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get listing: %w", err)
	}

	var subs []domain.Submission
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal listing: %w", err)
	}
	return subs, nil
}

func (c *ListCache) Set(ctx context.Context, opts domain.ListOptions, subs []domain.Submission) error {
	data, err := json.Marshal(subs)
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}
	if err := c.client.Set(ctx, Key(opts), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache listing: %w", err)
	}
	return nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// Invalidate drops every cached listing of uid, plus the email-widened
// listings of any user that match email.
func (c *ListCache) Invalidate(ctx context.Context, uid, email string) error {
	keys := []string{listKeyPrefix + uid}

	patterns := []string{listKeyPrefix + globEscaper.Replace(uid) + ":*"}
	if email = strings.TrimSpace(email); email != "" {
		patterns = append(patterns, listKeyPrefix+"*:"+globEscaper.Replace(strings.ToLower(email)))
	}
	for _, pattern := range patterns {
		iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to scan listings: %w", err)
		}
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate listing: %w", err)
	}
	return nil
}
