package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback is a like/dislike signal on a book, optionally tied to the
// recommendation that surfaced it. Write-only from the API.
type Feedback struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"userId" json:"userId"`
	BookID           primitive.ObjectID `bson:"bookId" json:"bookId"`
	FeedbackType     string             `bson:"feedbackType" json:"feedbackType"`
	RecommendationID primitive.ObjectID `bson:"recommendationId,omitempty" json:"recommendationId,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

// Recommendation is a stored suggestion for a user. Referenced by Feedback.
type Recommendation struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookID          primitive.ObjectID `bson:"bookId" json:"bookId"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Reason          string             `bson:"reason,omitempty" json:"reason,omitempty"`
	ConfidenceScore float64            `bson:"confidenceScore,omitempty" json:"confidenceScore,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}
