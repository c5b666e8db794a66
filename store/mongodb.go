package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(ctx context.Context, uri, dbName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &DB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (db *DB) Users() *mongo.Collection {
	return db.Database.Collection("users")
}

func (db *DB) UserRoles() *mongo.Collection {
	return db.Database.Collection("user_roles")
}

func (db *DB) Profiles() *mongo.Collection {
	return db.Database.Collection("profiles")
}

func (db *DB) Books() *mongo.Collection {
	return db.Database.Collection("books")
}

func (db *DB) Categories() *mongo.Collection {
	return db.Database.Collection("categories")
}

func (db *DB) BookIssues() *mongo.Collection {
	return db.Database.Collection("book_issues")
}

func (db *DB) ReadingHistory() *mongo.Collection {
	return db.Database.Collection("reading_history")
}

func (db *DB) UserPreferences() *mongo.Collection {
	return db.Database.Collection("user_preferences")
}

func (db *DB) Feedback() *mongo.Collection {
	return db.Database.Collection("feedback")
}

func (db *DB) Recommendations() *mongo.Collection {
	return db.Database.Collection("recommendations")
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}
