package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus_backend/internal/auth"
	"campus_backend/internal/models"
	"campus_backend/internal/repositories"
	"campus_backend/internal/services"
	"campus_backend/internal/services/dto"
	"campus_backend/internal/testutil"
	"campus_backend/pkg/apperrors"
)

func newAuthService(t *testing.T) (services.AuthService, *auth.TokenManager) {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	return services.NewAuthService(repositories.NewUserRepository(), tokens), tokens
}

func signupRequest(username string) *dto.SignupRequest {
	return &dto.SignupRequest{
		Username:  username,
		Email:     username + "@Example.com",
		Password:  "secret123",
		FirstName: "Test",
		LastName:  "User",
	}
}

func TestSignupAndLogin(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc, tokens := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Signup(ctx, db, signupRequest("student"))
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, models.UserRoleBasic, resp.User.Role)
	assert.Equal(t, "student@example.com", resp.User.Email)

	claims, err := tokens.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, models.UserRoleBasic, claims.Role)

	for _, login := range []string{"student", "STUDENT@example.com"} {
		logged, err := svc.Login(ctx, db, &dto.LoginRequest{Login: login, Password: "secret123"})
		require.NoError(t, err, login)
		assert.Equal(t, resp.User.ID, logged.User.ID)
	}

	_, err = svc.Login(ctx, db, &dto.LoginRequest{Login: "student", Password: "wrong-pass1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, db, &dto.LoginRequest{Login: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	me, err := svc.Me(ctx, db, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "student", me.Username)
}

func TestSignupRules(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc, _ := newAuthService(t)
	ctx := context.Background()

	req := signupRequest("recruiter")
	req.Role = models.UserRoleRecruiter
	resp, err := svc.Signup(ctx, db, req)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleRecruiter, resp.User.Role)

	_, err = svc.Signup(ctx, db, signupRequest("recruiter"))
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	req = signupRequest("sneaky")
	req.Role = models.UserRoleAdmin
	_, err = svc.Signup(ctx, db, req)
	assert.ErrorIs(t, err, apperrors.ErrInvalidRole)

	req = signupRequest("weak")
	req.Password = "onlyletters"
	_, err = svc.Signup(ctx, db, req)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestLoginInactiveUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc, _ := newAuthService(t)
	user := testutil.CreateUser(t, db, models.UserRoleBasic)
	require.NoError(t, db.Model(user).Update("is_active", false).Error)

	_, err := svc.Login(context.Background(), db, &dto.LoginRequest{Login: user.Email, Password: testutil.DefaultPassword})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestSeedFirstAdmin(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc, _ := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.SeedFirstAdmin(ctx, db, "Admin@Campus.test", "admin", "adminpass1"))
	require.NoError(t, svc.SeedFirstAdmin(ctx, db, "admin@campus.test", "admin", "adminpass1"))

	var admins []models.User
	require.NoError(t, db.Where("role = ?", models.UserRoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin@campus.test", admins[0].Email)

	resp, err := svc.Login(ctx, db, &dto.LoginRequest{Login: "admin", Password: "adminpass1"})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleAdmin, resp.User.Role)

	assert.NoError(t, svc.SeedFirstAdmin(ctx, db, "", "admin", ""))
}
