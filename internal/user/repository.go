package user

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateName  = errors.New("username already exists")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository is the persistence contract for user records. The Mongo
// implementation backs production; an in-memory implementation with the same
// uniqueness semantics backs tests.
type Repository interface {
	// Create inserts a new user. Uniqueness of name and email is enforced by
	// the store itself; violations surface as ErrDuplicateName or
	// ErrDuplicateEmail.
	Create(ctx context.Context, u *User) error

	// FindByName retrieves a user by exact name.
	FindByName(ctx context.Context, name string) (*User, error)

	// FindByIdentifier retrieves a user whose email or name equals the
	// given identifier.
	FindByIdentifier(ctx context.Context, identifier string) (*User, error)

	// NameExists reports whether any record (verified or not) holds the name.
	NameExists(ctx context.Context, name string) (bool, error)

	// SetVerificationCode replaces the verification code and expiry for an
	// unverified user.
	SetVerificationCode(ctx context.Context, id primitive.ObjectID, code string, expires time.Time) error

	// MarkVerified flips the user to verified and clears the code and expiry,
	// so a record is never left in a partial state.
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
}
