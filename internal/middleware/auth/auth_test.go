package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/tokens"
)

var secret = []byte("middleware-test-secret")

type fakeUsers map[uuid.UUID]*models.User

func (f fakeUsers) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func token(t *testing.T, sub string, role models.Role, exp time.Time) string {
	t.Helper()
	tkn, err := tokens.CreateAccessToken(secret, sub, string(role), exp)
	require.NoError(t, err)
	return tkn
}

func newServer(users fakeUsers) *echo.Echo {
	m := NewAuth(secret, users)
	e := echo.New()
	h := func(c echo.Context) error {
		id, _ := UserID(c)
		return c.String(http.StatusOK, id.String())
	}
	e.GET("/me", h, m.RequireAuth)
	e.GET("/admin", h, m.RequireAdmin)
	e.GET("/ws", h, m.RequireAuthWS)
	return e
}

func do(e *echo.Echo, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	member := &models.User{ID: uuid.New(), Role: models.RoleUser}
	e := newServer(fakeUsers{member.ID: member})
	exp := time.Now().Add(time.Hour)

	rec := do(e, "/me", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, "/me", "garbage")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, "/me", token(t, member.ID.String(), models.RoleUser, time.Now().Add(-time.Minute)))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, "/me", token(t, uuid.NewString(), models.RoleUser, exp))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, "/me", token(t, member.ID.String(), models.RoleUser, exp))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, member.ID.String(), rec.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	member := &models.User{ID: uuid.New(), Role: models.RoleUser}
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	e := newServer(fakeUsers{member.ID: member, admin.ID: admin})
	exp := time.Now().Add(time.Hour)

	// a forged role claim does not grant admin access
	rec := do(e, "/admin", token(t, member.ID.String(), models.RoleAdmin, exp))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, "/admin", token(t, admin.ID.String(), models.RoleAdmin, exp))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthWS_QueryToken(t *testing.T) {
	member := &models.User{ID: uuid.New(), Role: models.RoleUser}
	e := newServer(fakeUsers{member.ID: member})
	tkn := token(t, member.ID.String(), models.RoleUser, time.Now().Add(time.Hour))

	rec := do(e, "/ws?token="+tkn, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, "/me?token="+tkn, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
