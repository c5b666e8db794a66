package service

import (
	"context"
	"errors"
	"testing"

	"github.com/campuslib/backend/logger"
	"github.com/campuslib/backend/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeRoleStore struct {
	roles []string
	err   error
}

func (f *fakeRoleStore) RolesForUser(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	return f.roles, f.err
}

func TestRoleResolverPriority(t *testing.T) {
	userID := primitive.NewObjectID()
	tests := []struct {
		name  string
		roles []string
		want  string
	}{
		{"admin wins outright", []string{"user", "admin", "staff"}, models.RoleAdmin},
		{"staff beats user", []string{"user", "staff"}, models.RoleStaff},
		{"only user rows", []string{"user", "user"}, models.RoleUser},
		{"no rows still a member", nil, models.RoleUser},
		{"unknown values fall through to user", []string{"librarian"}, models.RoleUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &RoleResolver{Store: &fakeRoleStore{roles: tt.roles}, Log: logger.NewNop()}
			assert.Equal(t, tt.want, r.Resolve(context.Background(), userID))
		})
	}
}

func TestRoleResolverUnauthenticated(t *testing.T) {
	r := &RoleResolver{Store: &fakeRoleStore{roles: []string{"admin"}}, Log: logger.NewNop()}
	assert.Equal(t, "", r.Resolve(context.Background(), primitive.NilObjectID))
}

func TestRoleResolverFailsOpen(t *testing.T) {
	// A fetch error downgrades to the lowest tier instead of locking out.
	r := &RoleResolver{Store: &fakeRoleStore{err: errors.New("store down")}, Log: logger.NewNop()}
	assert.Equal(t, models.RoleUser, r.Resolve(context.Background(), primitive.NewObjectID()))
}

func TestRoleHelpers(t *testing.T) {
	assert.True(t, IsAdmin(models.RoleAdmin))
	assert.False(t, IsAdmin(models.RoleStaff))
	assert.True(t, IsStaff(models.RoleAdmin))
	assert.True(t, IsStaff(models.RoleStaff))
	assert.False(t, IsStaff(models.RoleUser))
	assert.True(t, IsUser(models.RoleUser))
	assert.False(t, IsUser(""))
}
