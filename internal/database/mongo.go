package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// UsersCollection is the collection holding user records.
const UsersCollection = "users"

// Mongo bundles the client and the application database handle. It is
// constructed once at startup and passed into repositories explicitly;
// there is no package-level connection state.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Connect opens a MongoDB connection and verifies it with a ping.
func Connect(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Mongo{
		Client: client,
		DB:     client.Database(database),
	}, nil
}

// EnsureIndexes creates the unique indexes that enforce name and email
// uniqueness at the store level. Registration relies on these rather than a
// read-then-write check, so concurrent sign-ups of the same name cannot race.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.DB.Collection(UsersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("name_1"),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_1"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from mongodb: %w", err)
	}
	return nil
}
