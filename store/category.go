package store

import (
	"context"
	"time"

	"github.com/campuslib/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *DB) InsertCategory(ctx context.Context, c *models.Category) (primitive.ObjectID, error) {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	res, err := db.Categories().InsertOne(ctx, c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	cur, err := db.Categories().Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var categories []models.Category
	if err := cur.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (db *DB) UpdateCategory(ctx context.Context, id primitive.ObjectID, name, description string) (*models.Category, error) {
	set := bson.M{"updatedAt": time.Now()}
	if name != "" {
		set["name"] = name
	}
	if description != "" {
		set["description"] = description
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Category
	err := db.Categories().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *DB) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	_, err := db.Categories().DeleteOne(ctx, bson.M{"_id": id})
	return err
}
