package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/jwtmiddleware"
	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/models"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type ValidatorFunc func(user *models.User) error

type Auth struct {
	users  UserLookup
	header echo.MiddlewareFunc
	query  echo.MiddlewareFunc
}

func NewAuth(secret []byte, users UserLookup) *Auth {
	return &Auth{
		users:  users,
		header: jwtmiddleware.JWTMiddleware(secret, jwtmiddleware.HeaderLookup),
		query:  jwtmiddleware.JWTMiddleware(secret, jwtmiddleware.HeaderOrQueryLookup),
	}
}

func (m *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.header(m.loadUser(next, nil))
}

func (m *Auth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.header(m.loadUser(next, func(user *models.User) error {
		if user.Role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	}))
}

// RequireAuthWS also accepts the token as a ?token= query parameter.
func (m *Auth) RequireAuthWS(next echo.HandlerFunc) echo.HandlerFunc {
	return m.query(m.loadUser(next, nil))
}

// loadUser resolves the token subject to a stored account. The role is taken
// from the account, not from the token.
func (m *Auth) loadUser(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		claims, ok := jwtmiddleware.Claims(c)
		if !ok || claims.Subject == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "token has no subject")
		}
		id, err := uuid.Parse(claims.Subject)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
		}

		user, err := m.users.GetUserByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "user no longer exists")
			}
			logging.FromContext(ctx).Error("auth_lookup_error", "user_id", id, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
		}

		if validator != nil {
			if err := validator(user); err != nil {
				return err
			}
		}

		c.Set(CtxUserID, user.ID)
		c.Set(CtxRole, user.Role)
		return next(c)
	}
}

func UserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(CtxUserID).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func IsAdmin(c echo.Context) bool {
	role, _ := c.Get(CtxRole).(models.Role)
	return role == models.RoleAdmin
}
