package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reading status values.
const (
	ReadingStatusWantToRead = "want_to_read"
	ReadingStatusReading    = "reading"
	ReadingStatusCompleted  = "completed"
)

// ReadingHistory approximates a member's saved/rated state for one book.
// One row per (user, book); writes go through upserts.
type ReadingHistory struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	BookID      primitive.ObjectID `bson:"bookId" json:"bookId"`
	Status      string             `bson:"status" json:"status"`
	Rating      *int               `bson:"rating,omitempty" json:"rating,omitempty"` // 1..5
	StartedAt   *time.Time         `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HistoryWithBook joins a history row with book display fields.
type HistoryWithBook struct {
	ReadingHistory `bson:",inline"`
	BookTitle      string `bson:"bookTitle" json:"bookTitle"`
	BookAuthor     string `bson:"bookAuthor" json:"bookAuthor"`
}
