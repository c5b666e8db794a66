package store

import (
	"context"
	"time"

	"github.com/campuslib/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) PreferencesForUser(ctx context.Context, userID primitive.ObjectID) (*models.UserPreferences, error) {
	var p models.UserPreferences
	err := db.UserPreferences().FindOne(ctx, bson.M{"userId": userID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *DB) UpsertPreferences(ctx context.Context, p *models.UserPreferences) error {
	p.UpdatedAt = time.Now()
	_, err := db.UserPreferences().UpdateOne(ctx,
		bson.M{"userId": p.UserID},
		bson.M{"$set": bson.M{
			"favoriteGenres":  p.FavoriteGenres,
			"interests":       p.Interests,
			"preferredLength": p.PreferredLength,
			"readingPace":     p.ReadingPace,
			"updatedAt":       p.UpdatedAt,
		}, "$setOnInsert": bson.M{"userId": p.UserID}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (db *DB) InsertFeedback(ctx context.Context, f *models.Feedback) (primitive.ObjectID, error) {
	f.CreatedAt = time.Now()
	res, err := db.Feedback().InsertOne(ctx, f)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}
