package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/marketplace/internal/middleware/auth"
	"github.com/Skotchmaster/marketplace/internal/util"
)

var errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")

func currentUser(c echo.Context) (uuid.UUID, error) {
	id, ok := authmw.UserID(c)
	if !ok {
		return uuid.Nil, errUnauthorized
	}
	return id, nil
}

func paramUUID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errors.New("invalid " + name)
	}
	return id, nil
}

type pageParams struct {
	Page   int
	Offset int
	Limit  int
}

func readPage(c echo.Context) pageParams {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	if page < 1 {
		page = 1
	}
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)
	return pageParams{Page: page, Offset: offset, Limit: limit}
}
