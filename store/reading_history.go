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

// UpsertHistory writes the saved/rated state for a (user, book) pair. The
// upsert key keeps one row per pair so a re-save never duplicates.
func (db *DB) UpsertHistory(ctx context.Context, h *models.ReadingHistory) error {
	now := time.Now()
	set := bson.M{"status": h.Status, "updatedAt": now}
	if h.Rating != nil {
		set["rating"] = *h.Rating
	}
	if h.Notes != "" {
		set["notes"] = h.Notes
	}
	if h.StartedAt != nil {
		set["startedAt"] = *h.StartedAt
	}
	if h.CompletedAt != nil {
		set["completedAt"] = *h.CompletedAt
	}
	_, err := db.ReadingHistory().UpdateOne(ctx,
		bson.M{"userId": h.UserID, "bookId": h.BookID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"userId": h.UserID, "bookId": h.BookID, "createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (db *DB) DeleteHistory(ctx context.Context, userID, bookID primitive.ObjectID) error {
	_, err := db.ReadingHistory().DeleteOne(ctx, bson.M{"userId": userID, "bookId": bookID})
	return err
}

// HistoryForUser returns the user's reading history joined with book
// title/author, most recent first.
func (db *DB) HistoryForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.HistoryWithBook, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$sort", Value: bson.M{"updatedAt": -1}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": "books", "localField": "bookId", "foreignField": "_id", "as": "book",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{"path": "$book", "preserveNullAndEmptyArrays": true}}},
		bson.D{{Key: "$addFields", Value: bson.M{
			"bookTitle":  "$book.title",
			"bookAuthor": "$book.author",
		}}},
		bson.D{{Key: "$project", Value: bson.M{"book": 0}}},
	)
	cur, err := db.ReadingHistory().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var history []models.HistoryWithBook
	if err := cur.All(ctx, &history); err != nil {
		return nil, err
	}
	return history, nil
}
