package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/notify"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/search"
	"github.com/Skotchmaster/marketplace/internal/testutil"
)

type fakeStore struct {
	mu      sync.Mutex
	deleted []string
	fail    map[string]bool
}

func (f *fakeStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	return "mem://" + filename, nil
}

func (f *fakeStore) Delete(ctx context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[ref] {
		return errors.New("provider unavailable")
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeStore) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type recNotifier struct {
	notify.Nop
	mu         sync.Mutex
	registered []models.User
	placed     []models.Order
	statuses   []models.OrderStatus
	active     []uuid.UUID
}

func (n *recNotifier) UserRegistered(_ context.Context, u models.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.registered = append(n.registered, u)
}

func (n *recNotifier) UserActive(_ context.Context, id uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.active = append(n.active, id)
}

func (n *recNotifier) OrderPlaced(_ context.Context, _ models.User, o models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placed = append(n.placed, o)
}

func (n *recNotifier) OrderStatusChanged(_ context.Context, o models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, o.Status)
}

type testEnv struct {
	Repo       *repo.GormRepo
	Store      *fakeStore
	Notifier   *recNotifier
	Auth       *AuthService
	Users      *UserService
	Categories *CategoryService
	Catalog    *CatalogService
	Cart       *CartService
	Orders     *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	store := &fakeStore{fail: map[string]bool{}}
	n := &recNotifier{}
	images := &ImageReleaser{Repo: r, Store: store}
	categories := &CategoryService{Repo: r}

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return &testEnv{
		Repo:       r,
		Store:      store,
		Notifier:   n,
		Auth:       &AuthService{Repo: r, JWTSecret: []byte("test-jwt-secret"), TokenTTL: time.Hour, Notifier: n},
		Users:      &UserService{Repo: r},
		Categories: categories,
		Catalog:    &CatalogService{Repo: r, Categories: categories, Images: images, Index: search.Nop{}},
		Cart:       &CartService{Repo: r},
		Orders:     &OrderService{Repo: r, Images: images, Index: search.Nop{}, Notifier: n, IDs: node},
	}
}

func (env *testEnv) seedArticle(t *testing.T, title string, price int64, stock int, main int, refs ...string) *models.Article {
	t.Helper()
	a := &models.Article{
		Title:          title,
		Description:    title + " description",
		Price:          decimal.NewFromInt(price),
		Condition:      models.ConditionGood,
		Category:       "Home",
		Stock:          stock,
		MainImageIndex: main,
	}
	a.SetImages(refs)
	require.NoError(t, env.Repo.CreateArticle(context.Background(), a))
	return a
}

func (env *testEnv) seedUser(t *testing.T, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Name: "Test", Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, env.Repo.CreateUser(context.Background(), u))
	return u
}

func ptr[T any](v T) *T { return &v }
