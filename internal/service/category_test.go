package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Create(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	c, err := env.Categories.Create(ctx, "  Books ")
	require.NoError(t, err)
	assert.Equal(t, "Books", c.Name)

	_, err = env.Categories.Create(ctx, "BOOKS")
	require.ErrorIs(t, err, ErrConflict)

	_, err = env.Categories.Create(ctx, " ")
	require.ErrorIs(t, err, ErrValidation)

	list, err := env.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCategoryService_Delete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	used, err := env.Categories.Create(ctx, "Home")
	require.NoError(t, err)
	empty, err := env.Categories.Create(ctx, "Garden")
	require.NoError(t, err)
	env.seedArticle(t, "Lamp", 10, 1, 0, "lamp.jpg")

	require.ErrorIs(t, env.Categories.Delete(ctx, used.ID), ErrConflict)
	require.NoError(t, env.Categories.Delete(ctx, empty.ID))
	require.ErrorIs(t, env.Categories.Delete(ctx, empty.ID), ErrNotFound)
	require.ErrorIs(t, env.Categories.Delete(ctx, uuid.New()), ErrNotFound)
}

func TestCategoryService_Resolve(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Categories.Create(ctx, "Home")
	require.NoError(t, err)

	c, err := env.Categories.Resolve(ctx, "hOmE")
	require.NoError(t, err)
	assert.Equal(t, "Home", c.Name)

	_, err = env.Categories.Resolve(ctx, "Toys")
	require.ErrorIs(t, err, ErrValidation)
}
