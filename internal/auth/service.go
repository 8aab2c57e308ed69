package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Adnan2001Bin/task-management-application/internal/logging"
	"github.com/Adnan2001Bin/task-management-application/internal/user"
)

// Service handles the registration and authentication business logic.
type Service struct {
	repo                 user.Repository
	tokens               TokenService
	email                EmailSender
	logger               *logging.Logger
	verificationCodeTTL  time.Duration
	sessionTokenDuration time.Duration
}

func NewService(
	repo user.Repository,
	tokens TokenService,
	email EmailSender,
	logger *logging.Logger,
	verificationCodeTTL time.Duration,
	sessionTokenDuration time.Duration,
) *Service {
	return &Service{
		repo:                 repo,
		tokens:               tokens,
		email:                email,
		logger:               logger,
		verificationCodeTTL:  verificationCodeTTL,
		sessionTokenDuration: sessionTokenDuration,
	}
}

// CheckUsername reports whether the candidate name is available. The name is
// validated against the same schema registration uses; "taken" means any
// record with the name, verified or not, matching the unique index that would
// reject the insert. Read-only.
func (s *Service) CheckUsername(ctx context.Context, name string) (bool, error) {
	if msgs := user.ValidateName(name); len(msgs) > 0 {
		return false, &ValidationError{Messages: msgs}
	}

	exists, err := s.repo.NameExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to check name: %w", err)
	}
	return !exists, nil
}

// Register validates the input, persists an unverified user, and sends the
// verification email. A failed send does not roll the record back: the user
// is returned together with ErrEmailSendFailed so the caller can report
// degraded success and point at the resend endpoint.
func (s *Service) Register(ctx context.Context, in user.SignUpInput) (*user.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if msgs := user.ValidateSignUp(in); len(msgs) > 0 {
		return nil, &ValidationError{Messages: msgs}
	}

	passwordHash, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}
	expires := time.Now().Add(s.verificationCodeTTL)

	newUser := &user.User{
		Name:                    in.Name,
		Email:                   in.Email,
		PasswordHash:            passwordHash,
		VerificationCode:        &code,
		VerificationCodeExpires: &expires,
		IsVerified:              false,
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		if errors.Is(err, user.ErrDuplicateName) || errors.Is(err, user.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Sent synchronously so a transport failure can be surfaced to the
	// caller; the record stays either way and /resend-verification recovers.
	if err := s.email.SendVerificationEmail(ctx, newUser.Email, newUser.Name, code); err != nil {
		s.logger.Warn("failed to send verification email",
			"email", newUser.Email, "error", err.Error())
		return newUser, ErrEmailSendFailed
	}

	return newUser, nil
}

// Login authenticates by email or name and returns the user plus a session
// token. The password is verified before the verified flag is consulted, so
// the distinct unverified error is only ever reached with valid credentials.
func (s *Service) Login(ctx context.Context, identifier, password string) (*user.User, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	u, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if !verifyPassword(u.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	if !u.IsVerified {
		return nil, "", ErrNotVerified
	}

	token, err := s.tokens.CreateToken(u.ID.Hex(), u.Name, u.IsVerified, s.sessionTokenDuration)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session token: %w", err)
	}

	u.PasswordHash = ""
	return u, token, nil
}

// VerifyCode completes the registration handshake: a correct, unexpired code
// flips the user to verified and clears the code and expiry in one update.
func (s *Service) VerifyCode(ctx context.Context, name, code string) error {
	u, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if u.IsVerified {
		return ErrAlreadyVerified
	}
	if u.VerificationCode == nil || *u.VerificationCode != code {
		return ErrInvalidVerificationCode
	}
	if u.VerificationCodeExpires == nil || time.Now().After(*u.VerificationCodeExpires) {
		return ErrCodeExpired
	}

	if err := s.repo.MarkVerified(ctx, u.ID); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return nil
}

// ResendVerification issues a fresh code to an unverified account.
// Always returns nil to prevent email enumeration attacks.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.FindByIdentifier(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		s.logger.Warn("failed to get user for resend verification", "error", err.Error())
		return nil
	}

	if u.IsVerified {
		return nil
	}

	code, err := generateVerificationCode()
	if err != nil {
		s.logger.Warn("failed to generate verification code", "error", err.Error())
		return nil
	}
	expires := time.Now().Add(s.verificationCodeTTL)

	if err := s.repo.SetVerificationCode(ctx, u.ID, code, expires); err != nil {
		s.logger.Warn("failed to update verification code", "error", err.Error())
		return nil
	}

	// Fire-and-forget: the response is a constant either way.
	go func() {
		emailCtx := context.Background()
		if err := s.email.SendVerificationEmail(emailCtx, u.Email, u.Name, code); err != nil {
			s.logger.Warn("failed to resend verification email",
				"email", u.Email, "error", err.Error())
		}
	}()

	return nil
}
