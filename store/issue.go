package store

import (
	"context"
	"errors"
	"time"

	"github.com/campuslib/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoCopies is returned when a book has no available copies left to issue.
var ErrNoCopies = errors.New("no available copies")

// CreateIssue decrements the book's available copies (guarded so the count
// cannot go below zero) and records the issue.
func (db *DB) CreateIssue(ctx context.Context, issue *models.BookIssue) (primitive.ObjectID, error) {
	res, err := db.Books().UpdateOne(ctx,
		bson.M{"_id": issue.BookID, "availableCopies": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"availableCopies": -1}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if res.ModifiedCount == 0 {
		return primitive.NilObjectID, ErrNoCopies
	}
	now := time.Now()
	issue.Status = models.IssueStatusIssued
	issue.CreatedAt = now
	issue.UpdatedAt = now
	if issue.IssueDate.IsZero() {
		issue.IssueDate = now
	}
	ins, err := db.BookIssues().InsertOne(ctx, issue)
	if err != nil {
		// Put the copy back so a failed insert does not leak one.
		_, _ = db.Books().UpdateOne(ctx, bson.M{"_id": issue.BookID}, bson.M{"$inc": bson.M{"availableCopies": 1}})
		return primitive.NilObjectID, err
	}
	return ins.InsertedID.(primitive.ObjectID), nil
}

// ReturnIssue marks an open issue returned, stamps the return date, and
// frees the copy.
func (db *DB) ReturnIssue(ctx context.Context, issueID primitive.ObjectID) (*models.BookIssue, error) {
	now := time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var issue models.BookIssue
	err := db.BookIssues().FindOneAndUpdate(ctx,
		bson.M{"_id": issueID, "status": bson.M{"$in": []string{models.IssueStatusIssued, models.IssueStatusOverdue}}},
		bson.M{"$set": bson.M{"status": models.IssueStatusReturned, "returnDate": now, "updatedAt": now}},
		opts,
	).Decode(&issue)
	if err != nil {
		return nil, err
	}
	_, err = db.Books().UpdateOne(ctx,
		bson.M{"_id": issue.BookID},
		bson.M{"$inc": bson.M{"availableCopies": 1}, "$set": bson.M{"updatedAt": now}},
	)
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// MarkOverdue flags open issues whose due date has passed. Returns the
// number of issues flagged.
func (db *DB) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.BookIssues().UpdateMany(ctx,
		bson.M{"status": models.IssueStatusIssued, "dueDate": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": models.IssueStatusOverdue, "updatedAt": now}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// issueDetailsPipeline joins issues with book and borrower-profile display
// fields.
func issueDetailsPipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.M{"issueDate": -1}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "books", "localField": "bookId", "foreignField": "_id", "as": "book",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$book", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$lookup", Value: bson.M{
			"from": "profiles", "localField": "userId", "foreignField": "userId", "as": "profile",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$profile", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$addFields", Value: bson.M{
			"bookTitle":     "$book.title",
			"bookAuthor":    "$book.author",
			"borrowerName":  "$profile.fullName",
			"borrowerEmail": "$profile.email",
		}}},
		{{Key: "$project", Value: bson.M{"book": 0, "profile": 0}}},
	}
}

// IssuesByStatus returns issues in any of the given statuses, with display
// fields, most recent first.
func (db *DB) IssuesByStatus(ctx context.Context, statuses []string) ([]models.IssueWithDetails, error) {
	match := bson.M{"status": bson.M{"$in": statuses}}
	cur, err := db.BookIssues().Aggregate(ctx, issueDetailsPipeline(match))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var issues []models.IssueWithDetails
	if err := cur.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// TopBorrowedBooks counts issues per book over the whole history and
// returns the most-borrowed titles.
func (db *DB) TopBorrowedBooks(ctx context.Context, limit int64) ([]models.BorrowCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$bookId", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from": "books", "localField": "_id", "foreignField": "_id", "as": "book",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$book", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$addFields", Value: bson.M{
			"bookId": "$_id",
			"title":  "$book.title",
			"author": "$book.author",
		}}},
		{{Key: "$project", Value: bson.M{"book": 0}}},
	}
	cur, err := db.BookIssues().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var counts []models.BorrowCount
	if err := cur.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (db *DB) ListIssues(ctx context.Context) ([]models.IssueWithDetails, error) {
	cur, err := db.BookIssues().Aggregate(ctx, issueDetailsPipeline(bson.M{}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var issues []models.IssueWithDetails
	if err := cur.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

// OpenIssuesDueBy returns unreturned issues due on or before the deadline,
// with borrower and book details for reminder mail.
func (db *DB) OpenIssuesDueBy(ctx context.Context, deadline time.Time) ([]models.IssueWithDetails, error) {
	match := bson.M{
		"status":  bson.M{"$in": []string{models.IssueStatusIssued, models.IssueStatusOverdue}},
		"dueDate": bson.M{"$lte": deadline},
	}
	cur, err := db.BookIssues().Aggregate(ctx, issueDetailsPipeline(match))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var issues []models.IssueWithDetails
	if err := cur.All(ctx, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}
