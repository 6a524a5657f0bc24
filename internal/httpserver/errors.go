package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/search"
	"github.com/Skotchmaster/marketplace/internal/service"
)

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

var statusBySentinel = []struct {
	err  error
	code int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusBadRequest},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrUnauthenticated, http.StatusUnauthorized},
	{service.ErrInsufficientStock, http.StatusBadRequest},
}

// classify maps a service error to a status code and a client-facing message.
func classify(err error) (int, string) {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.code, detail(err, s.err)
		}
	}
	if errors.Is(err, search.ErrDisabled) {
		return http.StatusServiceUnavailable, "search is not available"
	}
	return http.StatusInternalServerError, "internal error"
}

// detail strips the leading "<sentinel>: " from a wrapped service error.
func detail(err, sentinel error) string {
	msg := strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}

// serviceError logs a failed service call and turns it into an HTTP error.
func serviceError(l *slog.Logger, event string, err error) error {
	code, msg := classify(err)
	if code >= http.StatusInternalServerError {
		l.Error(event, "status", code, "reason", msg, "error", err)
	} else {
		l.Warn(event, "status", code, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(code, msg).SetInternal(err)
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	he := echo.NewHTTPError(http.StatusBadRequest, reason)
	if err != nil {
		he = he.SetInternal(err)
	}
	return he
}

// ErrorHandler renders every error as {"message": ...}. Outside production
// the underlying error is added under "error".
func ErrorHandler(production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		body := errorBody{Message: "internal error"}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				body.Message = msg
			} else {
				body.Message = http.StatusText(code)
			}
			if he.Internal != nil {
				body.Error = he.Internal.Error()
			}
		} else {
			body.Error = err.Error()
		}
		if production {
			body.Error = ""
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			logging.FromContext(c.Request().Context()).Error("write_error_response", "error", err)
		}
	}
}
