package user

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is a mutex-guarded in-memory Repository with the same
// uniqueness semantics as the Mongo store. Create is atomic under the lock,
// so concurrent registrations of one name still produce exactly one winner.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]*User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[primitive.ObjectID]*User)}
}

func (r *MemoryRepository) Create(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Name == u.Name {
			return ErrDuplicateName
		}
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}

	now := time.Now()
	u.ID = primitive.NewObjectID()
	u.CreatedAt = now
	u.UpdatedAt = now

	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *MemoryRepository) FindByName(ctx context.Context, name string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Name == name {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == identifier || u.Name == identifier {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) NameExists(ctx context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) SetVerificationCode(ctx context.Context, id primitive.ObjectID, code string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.IsVerified {
		return ErrNotFound
	}

	u.VerificationCode = &code
	u.VerificationCodeExpires = &expires
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryRepository) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}

	u.IsVerified = true
	u.VerificationCode = nil
	u.VerificationCodeExpires = nil
	u.UpdatedAt = time.Now()
	return nil
}
