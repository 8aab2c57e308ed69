package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultLimit    = 10
	defaultWindow   = 15 * time.Minute
	defaultCooldown = 2 * time.Minute
)

// Limiter is a Redis-backed fixed-window rate limiter keyed by IP and
// purpose, plus a per-email cooldown for verification-email sends.
type Limiter struct {
	client   *redis.Client
	limit    int64
	window   time.Duration
	cooldown time.Duration
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{
		client:   client,
		limit:    defaultLimit,
		window:   defaultWindow,
		cooldown: defaultCooldown,
	}
}

func ipKey(ip, purpose string) string {
	return fmt.Sprintf("ratelimit:%s:%s", purpose, ip)
}

func cooldownKey(email string) string {
	return fmt.Sprintf("email_cooldown:%s", email)
}

// Allow records one request for the ip/purpose pair and reports whether the
// window limit still holds. The window starts on the first request.
func (l *Limiter) Allow(ctx context.Context, ip, purpose string) (bool, error) {
	key := ipKey(ip, purpose)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record request: %w", err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set window expiry: %w", err)
		}
	}

	return count <= l.limit, nil
}

// CooldownActive reports whether the email recently triggered a send.
func (l *Limiter) CooldownActive(ctx context.Context, email string) (bool, error) {
	exists, err := l.client.Exists(ctx, cooldownKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check cooldown: %w", err)
	}
	return exists > 0, nil
}

// StartCooldown begins the per-email cooldown window.
func (l *Limiter) StartCooldown(ctx context.Context, email string) error {
	if err := l.client.Set(ctx, cooldownKey(email), "1", l.cooldown).Err(); err != nil {
		return fmt.Errorf("failed to set cooldown: %w", err)
	}
	return nil
}
