package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/transport"
)

func TestUserService_CreateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.Users.CreateUser(ctx, transport.AdminCreateUserRequest{
		Name: "Ops", Email: "Ops@Example.com", Password: "secret1", Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "ops@example.com", u.Email)

	_, err = env.Users.CreateUser(ctx, transport.AdminCreateUserRequest{
		Name: "Ops", Email: "ops@example.com", Password: "secret1",
	})
	require.ErrorIs(t, err, ErrConflict)

	_, err = env.Users.CreateUser(ctx, transport.AdminCreateUserRequest{
		Name: "X", Email: "x@example.com", Password: "secret1", Role: "root",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUserService_UpdateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "member@example.com", models.RoleUser)

	updated, err := env.Users.UpdateUser(ctx, u.ID, transport.AdminUpdateUserRequest{Role: ptr(models.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	_, err = env.Users.UpdateUser(ctx, u.ID, transport.AdminUpdateUserRequest{Role: ptr(models.Role("root"))})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Users.UpdateUser(ctx, uuid.New(), transport.AdminUpdateUserRequest{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_DeleteUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedUser(t, "admin@example.com", models.RoleAdmin)
	member := env.seedUser(t, "member@example.com", models.RoleUser)
	a := env.seedArticle(t, "Lamp", 10, 2, 0, "lamp.jpg")

	_, err := env.Cart.Add(ctx, member.ID, a.ID, 1)
	require.NoError(t, err)

	require.ErrorIs(t, env.Users.DeleteUser(ctx, admin.ID, admin.ID), ErrValidation)

	require.NoError(t, env.Users.DeleteUser(ctx, admin.ID, member.ID))
	require.ErrorIs(t, env.Users.DeleteUser(ctx, admin.ID, member.ID), ErrNotFound)

	users, err := env.Users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, admin.ID, users[0].ID)
}
