package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Issue status values.
const (
	IssueStatusIssued   = "issued"
	IssueStatusReturned = "returned"
	IssueStatusOverdue  = "overdue"
)

// BookIssue records a physical copy lent to a member.
type BookIssue struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookID     primitive.ObjectID `bson:"bookId" json:"bookId"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	IssuedBy   primitive.ObjectID `bson:"issuedBy" json:"issuedBy"`
	IssueDate  time.Time          `bson:"issueDate" json:"issueDate"`
	DueDate    time.Time          `bson:"dueDate" json:"dueDate"`
	ReturnDate *time.Time         `bson:"returnDate,omitempty" json:"returnDate,omitempty"`
	Status     string             `bson:"status" json:"status"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// BorrowCount is one row of the top-borrowed report.
type BorrowCount struct {
	BookID primitive.ObjectID `bson:"bookId" json:"bookId"`
	Title  string             `bson:"title" json:"title"`
	Author string             `bson:"author" json:"author"`
	Count  int64              `bson:"count" json:"count"`
}

// IssueWithDetails joins an issue with borrower and book display fields for the staff list.
type IssueWithDetails struct {
	BookIssue     `bson:",inline"`
	BookTitle     string `bson:"bookTitle" json:"bookTitle"`
	BookAuthor    string `bson:"bookAuthor" json:"bookAuthor"`
	BorrowerName  string `bson:"borrowerName" json:"borrowerName"`
	BorrowerEmail string `bson:"borrowerEmail" json:"borrowerEmail"`
}
