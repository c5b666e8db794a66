package service

import (
	"context"
	"testing"

	"github.com/campuslib/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeRelatedStore struct {
	direct []models.Book
	broad  []models.Book
}

func (f *fakeRelatedStore) BooksByDepartmentSemester(ctx context.Context, department string, semester int, excludeID primitive.ObjectID, limit int64) ([]models.Book, error) {
	return capBooks(f.direct, limit), nil
}

func (f *fakeRelatedStore) BooksByDepartment(ctx context.Context, department string, excludeID primitive.ObjectID, limit int64) ([]models.Book, error) {
	return capBooks(f.broad, limit), nil
}

func capBooks(books []models.Book, limit int64) []models.Book {
	if int64(len(books)) > limit {
		return books[:limit]
	}
	return books
}

func book(title, genre string, semester int) models.Book {
	return models.Book{
		ID:         primitive.NewObjectID(),
		Title:      title,
		Genre:      genre,
		Department: "BS Computer Science",
		Semester:   semester,
	}
}

func TestRelatedBooksDirectMatches(t *testing.T) {
	ref := &models.Book{
		ID:         primitive.NewObjectID(),
		Department: "BS Computer Science",
		Semester:   3,
		Genre:      "Algorithms",
	}
	// 5 dept+semester siblings: 2 genre-matching, 3 not.
	direct := []models.Book{
		book("Databases 101", "Databases", 3),
		book("CLRS", "Algorithms", 3),
		book("Operating Systems", "Systems", 3),
		book("Algorithm Design", "Algorithms", 3),
		book("Networks", "Networks", 3),
	}
	got, err := RelatedBooks(context.Background(), &fakeRelatedStore{direct: direct}, ref)
	require.NoError(t, err)
	require.Len(t, got, 5)

	// Genre matches come first; original order otherwise preserved.
	assert.Equal(t, "CLRS", got[0].Title)
	assert.Equal(t, "Algorithm Design", got[1].Title)
	assert.Equal(t, "Databases 101", got[2].Title)
	assert.Equal(t, "Operating Systems", got[3].Title)
	assert.Equal(t, "Networks", got[4].Title)
	for _, b := range got {
		assert.NotEqual(t, ref.ID, b.ID)
	}
}

func TestRelatedBooksBroadensWhenThin(t *testing.T) {
	ref := &models.Book{
		ID:         primitive.NewObjectID(),
		Department: "BS Computer Science",
		Semester:   3,
		Genre:      "Algorithms",
	}
	// Only 2 direct siblings: below the threshold, so the department-wide
	// set wins even though the direct set is non-empty.
	store := &fakeRelatedStore{
		direct: []models.Book{
			book("CLRS", "Algorithms", 3),
			book("Networks", "Networks", 3),
		},
		broad: []models.Book{
			book("Compilers", "Compilers", 7),          // score 0
			book("Algorithm Design", "Algorithms", 5),  // score 1
			book("Databases 101", "Databases", 3),      // score 2
			book("CLRS", "Algorithms", 3),              // score 3
			book("Discrete Math", "Mathematics", 1),    // score 0
			book("Graph Algorithms", "Algorithms", 3),  // score 3
			book("Operating Systems", "Systems", 3),    // score 2
			book("Linear Algebra", "Mathematics", 2),   // score 0
			book("Another Algorithms Book", "Algorithms", 2), // beyond the 8 cap
			book("Yet Another", "Misc", 4),
		},
	}
	got, err := RelatedBooks(context.Background(), store, ref)
	require.NoError(t, err)
	require.Len(t, got, 8)

	// Weighted order: semester match is worth 2, genre match 1, stable ties.
	titles := make([]string, len(got))
	for i, b := range got {
		titles[i] = b.Title
	}
	assert.Equal(t, []string{
		"CLRS",
		"Graph Algorithms",
		"Databases 101",
		"Operating Systems",
		"Algorithm Design",
		"Compilers",
		"Discrete Math",
		"Linear Algebra",
	}, titles)
}

func TestRelatedBooksEmptyDepartment(t *testing.T) {
	ref := &models.Book{ID: primitive.NewObjectID(), Genre: "Algorithms", Semester: 3}
	got, err := RelatedBooks(context.Background(), &fakeRelatedStore{
		broad: []models.Book{book("Should not appear", "Algorithms", 3)},
	}, ref)
	require.NoError(t, err)
	assert.Empty(t, got)
}
