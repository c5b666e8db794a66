package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserPreferences struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	FavoriteGenres  []string           `bson:"favoriteGenres,omitempty" json:"favoriteGenres,omitempty"`
	Interests       []string           `bson:"interests,omitempty" json:"interests,omitempty"`
	PreferredLength string             `bson:"preferredLength,omitempty" json:"preferredLength,omitempty"`
	ReadingPace     string             `bson:"readingPace,omitempty" json:"readingPace,omitempty"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
