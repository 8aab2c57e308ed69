package auth

import (
	"context"
	"time"
)

// TokenService defines the interface for session token creation and
// validation. The default implementation is PasetoService (PASETO v4.local).
type TokenService interface {
	CreateToken(userID, name string, verified bool, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// EmailSender defines the interface for dispatching verification emails.
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, toEmail, name, code string) error
}

// RateLimiter guards the public endpoints. Limiter failures are fail-open:
// handlers log them and let the request through.
type RateLimiter interface {
	// Allow records a request for the ip/purpose pair and reports whether it
	// is still within the window limit.
	Allow(ctx context.Context, ip, purpose string) (bool, error)
	// CooldownActive reports whether the email recently triggered a send.
	CooldownActive(ctx context.Context, email string) (bool, error)
	// StartCooldown begins the per-email cooldown window.
	StartCooldown(ctx context.Context, email string) error
}
