package service

import (
	"context"
	"sort"

	"github.com/campuslib/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const relatedLimit = 8

// minDirectMatches is the threshold below which the department+semester
// result set is considered too thin and the search broadens to the whole
// department.
const minDirectMatches = 4

// RelatedStore queries sibling candidates for the related-books panel.
type RelatedStore interface {
	BooksByDepartmentSemester(ctx context.Context, department string, semester int, excludeID primitive.ObjectID, limit int64) ([]models.Book, error)
	BooksByDepartment(ctx context.Context, department string, excludeID primitive.ObjectID, limit int64) ([]models.Book, error)
}

// RelatedBooks ranks up to 8 catalog siblings of ref, most relevant first.
// Books sharing both department and semester are preferred; when fewer
// than 4 exist the search broadens to the department and ranks by a
// weighted score (semester match 2, genre match 1).
//
// A book without a department has no meaningful siblings; the result is
// empty rather than matching every other department-less row.
func RelatedBooks(ctx context.Context, store RelatedStore, ref *models.Book) ([]models.Book, error) {
	if ref.Department == "" {
		return nil, nil
	}

	direct, err := store.BooksByDepartmentSemester(ctx, ref.Department, ref.Semester, ref.ID, relatedLimit)
	if err != nil {
		return nil, err
	}
	if len(direct) >= minDirectMatches {
		sort.SliceStable(direct, func(i, j int) bool {
			return direct[i].Genre == ref.Genre && direct[j].Genre != ref.Genre
		})
		return direct, nil
	}

	broad, err := store.BooksByDepartment(ctx, ref.Department, ref.ID, relatedLimit)
	if err != nil {
		return nil, err
	}
	score := func(b models.Book) int {
		s := 0
		if b.Semester == ref.Semester {
			s += 2
		}
		if b.Genre == ref.Genre {
			s++
		}
		return s
	}
	sort.SliceStable(broad, func(i, j int) bool {
		return score(broad[i]) > score(broad[j])
	})
	return broad, nil
}
