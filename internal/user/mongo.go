package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Adnan2001Bin/task-management-application/internal/database"
)

// MongoRepository persists users in MongoDB.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *database.Mongo) *MongoRepository {
	return &MongoRepository{coll: db.DB.Collection(database.UsersCollection)}
}

func (r *MongoRepository) Create(ctx context.Context, u *User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateKeyError(err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (r *MongoRepository) FindByName(ctx context.Context, name string) (*User, error) {
	var u User
	err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by name: %w", err)
	}
	return &u, nil
}

func (r *MongoRepository) FindByIdentifier(ctx context.Context, identifier string) (*User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": identifier},
		bson.M{"name": identifier},
	}}

	var u User
	err := r.coll.FindOne(ctx, filter).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by identifier: %w", err)
	}
	return &u, nil
}

func (r *MongoRepository) NameExists(ctx context.Context, name string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"name": name})
	if err != nil {
		return false, fmt.Errorf("failed to count users by name: %w", err)
	}
	return count > 0, nil
}

func (r *MongoRepository) SetVerificationCode(ctx context.Context, id primitive.ObjectID, code string, expires time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "isVerified": false},
		bson.M{"$set": bson.M{
			"verificationCode":        code,
			"verificationCodeExpires": expires,
			"updatedAt":               time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to set verification code: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"isVerified":              true,
			"verificationCode":        nil,
			"verificationCodeExpires": nil,
			"updatedAt":               time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// duplicateKeyError maps a unique-index violation to the sentinel for the
// offending field, identified by index name.
func duplicateKeyError(err error) error {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if strings.Contains(e.Message, "name_1") {
				return ErrDuplicateName
			}
			if strings.Contains(e.Message, "email_1") {
				return ErrDuplicateEmail
			}
		}
	}
	// Duplicate on an index we cannot identify; treat as the more common case.
	return ErrDuplicateName
}
