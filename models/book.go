package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Book struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Author          string             `bson:"author" json:"author"`
	Description     string             `bson:"description,omitempty" json:"description,omitempty"`
	Genre           string             `bson:"genre" json:"genre"`
	Rating          *float64           `bson:"rating,omitempty" json:"rating,omitempty"`
	PublishedYear   int                `bson:"publishedYear,omitempty" json:"publishedYear,omitempty"`
	CoverURL        string             `bson:"coverUrl,omitempty" json:"coverUrl,omitempty"`
	Department      string             `bson:"department,omitempty" json:"department,omitempty"`
	Semester        int                `bson:"semester,omitempty" json:"semester,omitempty"`
	CourseCode      string             `bson:"courseCode,omitempty" json:"courseCode,omitempty"`
	ISBN            string             `bson:"isbn,omitempty" json:"isbn,omitempty"`
	PDFURL          string             `bson:"pdfUrl,omitempty" json:"pdfUrl,omitempty"`
	PDFS3Key        string             `bson:"pdfS3Key,omitempty" json:"-"`
	CoverS3Key      string             `bson:"coverS3Key,omitempty" json:"-"`
	TotalCopies     int                `bson:"totalCopies" json:"totalCopies"`
	AvailableCopies int                `bson:"availableCopies" json:"availableCopies"`
	CategoryID      primitive.ObjectID `bson:"categoryId,omitempty" json:"categoryId,omitempty"`
	CreatedBy       primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
