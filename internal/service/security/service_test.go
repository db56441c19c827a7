package security

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "covtrack/internal/db"
	"covtrack/internal/db/repository"
	"covtrack/internal/domain"
)

const testSecret = "test-secret-not-for-production"

func setup(t *testing.T) *Service {
	t.Helper()
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	users := repository.NewUserRepo(writeDB, readDB)
	history := repository.NewHistoryRepo(writeDB, readDB)
	return NewService(users, history, []byte(testSecret), time.Hour)
}

func TestService_LoginRoundTrip(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "alice", "alice@example.com", "hunter2hunter2", domain.RoleAdmin)
	require.NoError(t, err)

	token, user, err := svc.Login(ctx, "alice", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "alice", claims["sub"])
	assert.Equal(t, domain.RoleAdmin, claims["role"])
}

func TestService_LoginRejectsBadCredentials(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "alice", "alice@example.com", "hunter2hunter2", domain.RoleAdmin)
	require.NoError(t, err)

	var denied *domain.AccessDeniedError
	_, _, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorAs(t, err, &denied)
	_, _, err = svc.Login(ctx, "nobody", "hunter2hunter2")
	assert.ErrorAs(t, err, &denied)
}

func TestService_CreateUserValidation(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	var invalid *domain.ValidationError
	_, err := svc.CreateUser(ctx, "bob", "bob@example.com", "short", domain.RoleViewer)
	assert.ErrorAs(t, err, &invalid)
	_, err = svc.CreateUser(ctx, "", "bob@example.com", "longenough", domain.RoleViewer)
	assert.ErrorAs(t, err, &invalid)
	_, err = svc.CreateUser(ctx, "bob", "bob@example.com", "longenough", "overlord")
	assert.ErrorAs(t, err, &invalid)
}

func TestService_GuardsSelfAndLastAdmin(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	admin, err := svc.CreateUser(ctx, "alice", "alice@example.com", "hunter2hunter2", domain.RoleAdmin)
	require.NoError(t, err)
	viewer, err := svc.CreateUser(ctx, "bob", "bob@example.com", "hunter2hunter2", domain.RoleViewer)
	require.NoError(t, err)

	asAlice := domain.WithPrincipal(ctx, domain.ContextPrincipal{Name: "alice", Role: domain.RoleAdmin})

	var invalid *domain.ValidationError
	assert.ErrorAs(t, svc.DeleteUser(asAlice, admin.ID), &invalid)
	assert.ErrorAs(t, svc.SetRole(asAlice, admin.ID, domain.RoleViewer), &invalid)

	// Another admin cannot demote the last one either.
	asBob := domain.WithPrincipal(ctx, domain.ContextPrincipal{Name: "bob", Role: domain.RoleAdmin})
	assert.ErrorAs(t, svc.SetRole(asBob, admin.ID, domain.RoleViewer), &invalid)
	assert.ErrorAs(t, svc.DeleteUser(asBob, admin.ID), &invalid)

	// Deleting the viewer is fine.
	require.NoError(t, svc.DeleteUser(asAlice, viewer.ID))

	// With a second admin present, the first may be demoted.
	_, err = svc.CreateUser(ctx, "carol", "carol@example.com", "hunter2hunter2", domain.RoleAdmin)
	require.NoError(t, err)
	require.NoError(t, svc.SetRole(asBob, admin.ID, domain.RoleViewer))
}
