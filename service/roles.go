package service

import (
	"context"

	"github.com/campuslib/backend/logger"
	"github.com/campuslib/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleStore lists the raw role rows granted to a user.
type RoleStore interface {
	RolesForUser(ctx context.Context, userID primitive.ObjectID) ([]string, error)
}

// RoleResolver reduces a user's role rows to one effective role by fixed
// priority admin > staff > user.
type RoleResolver struct {
	Store RoleStore
	Log   *logger.Logger
}

// Resolve returns the effective role for a user id. An unauthenticated
// principal (zero id) has no role. A user with no role rows is still a
// member, so resolves to "user". A fetch error also resolves to "user":
// the lowest privilege tier rather than a lockout.
func (r *RoleResolver) Resolve(ctx context.Context, userID primitive.ObjectID) string {
	if userID.IsZero() {
		return ""
	}
	roles, err := r.Store.RolesForUser(ctx, userID)
	if err != nil {
		if r.Log != nil {
			r.Log.Warn("role fetch failed, defaulting to user", "userId", userID.Hex(), "error", err)
		}
		return models.RoleUser
	}
	if len(roles) == 0 {
		return models.RoleUser
	}
	hasStaff := false
	for _, role := range roles {
		switch role {
		case models.RoleAdmin:
			return models.RoleAdmin
		case models.RoleStaff:
			hasStaff = true
		}
	}
	if hasStaff {
		return models.RoleStaff
	}
	return models.RoleUser
}

func IsAdmin(role string) bool { return role == models.RoleAdmin }

func IsStaff(role string) bool {
	return role == models.RoleAdmin || role == models.RoleStaff
}

func IsUser(role string) bool { return role != "" }
