//go:build integration

package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/campuslib/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// testDB connects to the Mongo instance named by MONGODB_URI (localhost by
// default) and hands back a throwaway database that is dropped on cleanup.
func testDB(t *testing.T) *DB {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := NewMongoDB(ctx, uri, "library_store_test")
	if err != nil {
		t.Skipf("mongodb unavailable: %v", err)
	}
	require.NoError(t, db.Database.Drop(context.Background()))
	t.Cleanup(func() {
		_ = db.Database.Drop(context.Background())
		_ = db.Disconnect(context.Background())
	})
	return db
}

func TestCreateIssueRefusesWhenNoCopies(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	bookID, err := db.InsertBook(ctx, &models.Book{
		Title:           "Dune",
		Author:          "Frank Herbert",
		Genre:           "Sci-Fi",
		TotalCopies:     1,
		AvailableCopies: 1,
	})
	require.NoError(t, err)

	issue := &models.BookIssue{
		BookID:  bookID,
		UserID:  primitive.NewObjectID(),
		DueDate: time.Now().AddDate(0, 0, 14),
	}
	issueID, err := db.CreateIssue(ctx, issue)
	require.NoError(t, err)
	require.False(t, issueID.IsZero())

	book, err := db.BookByID(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 0, book.AvailableCopies)

	// The last copy is out; the guarded decrement must refuse.
	_, err = db.CreateIssue(ctx, &models.BookIssue{
		BookID:  bookID,
		UserID:  primitive.NewObjectID(),
		DueDate: time.Now().AddDate(0, 0, 14),
	})
	assert.ErrorIs(t, err, ErrNoCopies)

	returned, err := db.ReturnIssue(ctx, issueID)
	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)

	book, err = db.BookByID(ctx, bookID)
	require.NoError(t, err)
	assert.Equal(t, 1, book.AvailableCopies)
}

func TestUpsertHistoryKeepsOneRowPerBook(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	userID := primitive.NewObjectID()
	bookID := primitive.NewObjectID()

	require.NoError(t, db.UpsertHistory(ctx, &models.ReadingHistory{
		UserID: userID,
		BookID: bookID,
		Status: models.ReadingStatusWantToRead,
	}))

	rating := 5
	now := time.Now()
	require.NoError(t, db.UpsertHistory(ctx, &models.ReadingHistory{
		UserID:      userID,
		BookID:      bookID,
		Status:      models.ReadingStatusCompleted,
		Rating:      &rating,
		CompletedAt: &now,
	}))

	count, err := db.ReadingHistory().CountDocuments(ctx, bson.M{"userId": userID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var row models.ReadingHistory
	require.NoError(t, db.ReadingHistory().FindOne(ctx, bson.M{"userId": userID, "bookId": bookID}).Decode(&row))
	assert.Equal(t, models.ReadingStatusCompleted, row.Status)
	require.NotNil(t, row.Rating)
	assert.Equal(t, 5, *row.Rating)
	assert.False(t, row.CreatedAt.IsZero())
}
