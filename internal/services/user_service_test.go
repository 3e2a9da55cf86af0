package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus_backend/internal/models"
	"campus_backend/internal/repositories"
	"campus_backend/internal/services"
	"campus_backend/internal/services/dto"
	"campus_backend/internal/testutil"
	"campus_backend/pkg/apperrors"
)

func TestUpdateRole(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := services.NewUserService(repositories.NewUserRepository())
	ctx := context.Background()
	admin := testutil.CreateUser(t, db, models.UserRoleAdmin)
	moderator := testutil.CreateUser(t, db, models.UserRoleModerator)
	user := testutil.CreateUser(t, db, models.UserRoleBasic)

	resp, err := svc.UpdateRole(ctx, db, actorOf(admin), user.ID, models.UserRoleRecruiter)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleRecruiter, resp.Role)

	_, err = svc.UpdateRole(ctx, db, actorOf(moderator), user.ID, models.UserRoleAdmin)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)

	_, err = svc.UpdateRole(ctx, db, actorOf(admin), admin.ID, models.UserRoleBasic)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = svc.UpdateRole(ctx, db, actorOf(admin), user.ID, models.UserRole("Owner"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidRole)

	_, err = svc.UpdateRole(ctx, db, actorOf(admin), "missing", models.UserRoleBasic)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestListUsers(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := services.NewUserService(repositories.NewUserRepository())
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		testutil.CreateUser(t, db, models.UserRoleBasic)
	}
	recruiter := testutil.CreateUser(t, db, models.UserRoleRecruiter)

	all, err := svc.ListUsers(ctx, db, dto.ListUsersQuery{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, all.Users, 2)
	assert.Equal(t, int64(4), all.Total)

	recruiters, err := svc.ListUsers(ctx, db, dto.ListUsersQuery{Role: string(models.UserRoleRecruiter)})
	require.NoError(t, err)
	require.Len(t, recruiters.Users, 1)
	assert.Equal(t, recruiter.ID, recruiters.Users[0].ID)

	got, err := svc.GetUser(ctx, db, recruiter.ID)
	require.NoError(t, err)
	assert.Equal(t, recruiter.Username, got.Username)

	_, err = svc.GetUser(ctx, db, "missing")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
