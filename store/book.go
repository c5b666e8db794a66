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

// BookFilter narrows ListBooks. Zero values mean "any".
type BookFilter struct {
	Genre      string
	Department string
	CategoryID primitive.ObjectID
	Limit      int64
}

func (db *DB) InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error) {
	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now
	res, err := db.Books().InsertOne(ctx, book)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (db *DB) ListBooks(ctx context.Context, filter BookFilter) ([]models.Book, error) {
	q := bson.M{}
	if filter.Genre != "" {
		q["genre"] = filter.Genre
	}
	if filter.Department != "" {
		q["department"] = filter.Department
	}
	if !filter.CategoryID.IsZero() {
		q["categoryId"] = filter.CategoryID
	}
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}
	cur, err := db.Books().Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (db *DB) BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error) {
	var book models.Book
	err := db.Books().FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (db *DB) UpdateBook(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Book, error) {
	set["updatedAt"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var book models.Book
	err := db.Books().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&book)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// DeleteBook removes a book by ID and returns its S3 keys so the caller can
// clean up stored objects.
func (db *DB) DeleteBook(ctx context.Context, id primitive.ObjectID) (pdfS3Key, coverS3Key string, err error) {
	var book models.Book
	err = db.Books().FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&book)
	if err != nil {
		return "", "", err
	}
	return book.PDFS3Key, book.CoverS3Key, nil
}

// BooksByDepartmentSemester returns candidates sharing both department and
// semester, excluding one book id.
func (db *DB) BooksByDepartmentSemester(ctx context.Context, department string, semester int, excludeID primitive.ObjectID, limit int64) ([]models.Book, error) {
	q := bson.M{
		"department": department,
		"semester":   semester,
		"_id":        bson.M{"$ne": excludeID},
	}
	cur, err := db.Books().Find(ctx, q, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// BooksByDepartment returns candidates sharing a department (any semester),
// excluding one book id.
func (db *DB) BooksByDepartment(ctx context.Context, department string, excludeID primitive.ObjectID, limit int64) ([]models.Book, error) {
	q := bson.M{
		"department": department,
		"_id":        bson.M{"$ne": excludeID},
	}
	cur, err := db.Books().Find(ctx, q, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// TopRatedBooks returns up to limit books ordered by rating descending.
// Unrated books sort last.
func (db *DB) TopRatedBooks(ctx context.Context, limit int64) ([]models.Book, error) {
	opts := options.Find().SetSort(bson.M{"rating": -1}).SetLimit(limit)
	cur, err := db.Books().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var books []models.Book
	if err := cur.All(ctx, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// IsNotFound reports whether err is the driver's no-documents sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
