package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/transport"
)

func articleReq(images ...string) transport.CreateArticleRequest {
	return transport.CreateArticleRequest{
		Title:       "Desk",
		Description: "Oak desk",
		Price:       ptr(decimal.RequireFromString("149.90")),
		Condition:   "very_good",
		Category:    "furniture",
		Images:      images,
	}
}

func newCatalogEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	_, err := env.Categories.Create(context.Background(), "Furniture")
	require.NoError(t, err)
	return env
}

func TestCatalogService_Create(t *testing.T) {
	env := newCatalogEnv(t)
	ctx := context.Background()

	a, err := env.Catalog.Create(ctx, uuid.Nil, articleReq("a.jpg", "b.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "Furniture", a.Category)
	assert.Equal(t, 1, a.Stock)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, a.ImageRefs())
	assert.Equal(t, "a.jpg", a.MainImage())

	got, err := env.Catalog.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, got.ImageRefs())
	assert.True(t, got.Price.Equal(decimal.RequireFromString("149.90")))
}

func TestCatalogService_Create_ImageCount(t *testing.T) {
	env := newCatalogEnv(t)
	ctx := context.Background()

	_, err := env.Catalog.Create(ctx, uuid.Nil, articleReq())
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Catalog.Create(ctx, uuid.Nil, articleReq("1", "2", "3", "4", "5", "6"))
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Catalog.Create(ctx, uuid.Nil, articleReq("1", "2", "3", "4", "5"))
	require.NoError(t, err)
}

func TestCatalogService_Create_ClampsMainImage(t *testing.T) {
	env := newCatalogEnv(t)
	ctx := context.Background()

	tests := []struct {
		index int
		want  int
	}{
		{index: -1, want: 0},
		{index: 1, want: 1},
		{index: 10, want: 2},
	}
	for _, tt := range tests {
		req := articleReq("a.jpg", "b.jpg", "c.jpg")
		req.MainImageIndex = tt.index
		a, err := env.Catalog.Create(ctx, uuid.Nil, req)
		require.NoError(t, err)
		assert.Equal(t, tt.want, a.MainImageIndex, "index %d", tt.index)
	}
}

func TestCatalogService_Create_Validation(t *testing.T) {
	env := newCatalogEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		mut  func(r *transport.CreateArticleRequest)
	}{
		{name: "unknown category", mut: func(r *transport.CreateArticleRequest) { r.Category = "garden" }},
		{name: "unknown condition", mut: func(r *transport.CreateArticleRequest) { r.Condition = "broken" }},
		{name: "negative price", mut: func(r *transport.CreateArticleRequest) { r.Price = ptr(decimal.NewFromInt(-1)) }},
		{name: "missing price", mut: func(r *transport.CreateArticleRequest) { r.Price = nil }},
		{name: "negative stock", mut: func(r *transport.CreateArticleRequest) { r.Stock = ptr(-1) }},
		{name: "blank title", mut: func(r *transport.CreateArticleRequest) { r.Title = "  " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := articleReq("a.jpg")
			tt.mut(&req)
			_, err := env.Catalog.Create(ctx, uuid.Nil, req)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCatalogService_Update_KeepAndNewImages(t *testing.T) {
	env := newCatalogEnv(t)
	ctx := context.Background()

	a, err := env.Catalog.Create(ctx, uuid.Nil, articleReq("a.jpg", "b.jpg", "c.jpg"))
	require.NoError(t, err)
	// c.jpg is shared with another listing and must survive
	_, err = env.Catalog.Create(ctx, uuid.Nil, articleReq("c.jpg"))
	require.NoError(t, err)

	updated, err := env.Catalog.Update(ctx, a.ID, transport.UpdateArticleRequest{
		KeepImages:     &[]string{"a.jpg"},
		NewImages:      []string{"d.jpg"},
		MainImageIndex: ptr(7),
		Stock:          ptr(4),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "d.jpg"}, updated.ImageRefs())
	assert.Equal(t, 1, updated.MainImageIndex)
	assert.Equal(t, 4, updated.Stock)
	assert.Equal(t, []string{"b.jpg"}, env.Store.Deleted())

	got, err := env.Catalog.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "d.jpg"}, got.ImageRefs())
}

func TestCatalogService_Update_Rejects(t *testing.T) {
	env := newCatalogEnv(t)
	ctx := context.Background()

	a, err := env.Catalog.Create(ctx, uuid.Nil, articleReq("a.jpg"))
	require.NoError(t, err)

	_, err = env.Catalog.Update(ctx, a.ID, transport.UpdateArticleRequest{KeepImages: &[]string{"other.jpg"}})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Catalog.Update(ctx, a.ID, transport.UpdateArticleRequest{KeepImages: &[]string{}})
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Catalog.Update(ctx, a.ID, transport.UpdateArticleRequest{
		NewImages: []string{"2", "3", "4", "5", "6"},
	})
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, env.Store.Deleted())
}

func TestCatalogService_Delete_ReleasesImages(t *testing.T) {
	env := newCatalogEnv(t)
	ctx := context.Background()

	a, err := env.Catalog.Create(ctx, uuid.Nil, articleReq("x.jpg", "y.jpg"))
	require.NoError(t, err)
	env.Store.fail["y.jpg"] = true

	require.NoError(t, env.Catalog.Delete(ctx, a.ID))
	assert.Equal(t, []string{"x.jpg"}, env.Store.Deleted())

	_, err = env.Catalog.Get(ctx, a.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, env.Catalog.Delete(ctx, a.ID), ErrNotFound)
}

func TestCatalogService_SearchDisabled(t *testing.T) {
	env := newCatalogEnv(t)

	_, _, err := env.Catalog.Search(context.Background(), "  ", 0, 10)
	require.ErrorIs(t, err, ErrValidation)

	_, _, err = env.Catalog.Search(context.Background(), "desk", 0, 10)
	require.Error(t, err)
}
