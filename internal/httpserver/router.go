package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	authmw "github.com/Skotchmaster/marketplace/internal/middleware/auth"
)

// uploadBodyLimit covers five 5MB images plus the form fields.
const uploadBodyLimit = "30M"

type Deps struct {
	Auth *authmw.Auth

	AuthHandler     *AuthHTTP
	ArticleHandler  *ArticleHTTP
	CategoryHandler *CategoryHTTP
	CartHandler     *CartHTTP
	OrderHandler    *OrderHTTP
	PresenceHandler *PresenceHTTP

	// UploadDir is served under UploadPath when images are kept on local disk.
	UploadDir  string
	UploadPath string

	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	if d.UploadDir != "" && d.UploadPath != "" {
		e.Static(d.UploadPath, d.UploadDir)
	}

	requireAuth := d.Auth.RequireAuth
	requireAdmin := d.Auth.RequireAdmin
	bodyLimit := middleware.BodyLimit(uploadBodyLimit)

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/me", d.AuthHandler.Me, requireAuth)
	auth.PUT("/me", d.AuthHandler.UpdateMe, requireAuth)
	auth.POST("/activity", d.AuthHandler.Activity, requireAuth)

	users := auth.Group("/admin/users", requireAdmin)
	users.GET("", d.AuthHandler.ListUsers)
	users.POST("", d.AuthHandler.CreateUser)
	users.PUT("/:id", d.AuthHandler.UpdateUser)
	users.DELETE("/:id", d.AuthHandler.DeleteUser)

	articles := e.Group("/articles")
	articles.GET("", d.ArticleHandler.List)
	articles.GET("/search", d.ArticleHandler.Search)
	articles.GET("/export.csv", d.ArticleHandler.ExportCSV, requireAdmin)
	articles.GET("/:id", d.ArticleHandler.Get)
	articles.POST("", d.ArticleHandler.Create, bodyLimit, requireAdmin)
	articles.PUT("/:id", d.ArticleHandler.Update, bodyLimit, requireAdmin)
	articles.DELETE("/:id", d.ArticleHandler.Delete, requireAdmin)

	categories := e.Group("/categories")
	categories.GET("", d.CategoryHandler.List)
	categories.POST("", d.CategoryHandler.Create, requireAdmin)
	categories.DELETE("/:id", d.CategoryHandler.Delete, requireAdmin)

	cart := e.Group("/cart", requireAuth)
	cart.GET("", d.CartHandler.Get)
	cart.POST("/add", d.CartHandler.Add)
	cart.DELETE("/remove/:id", d.CartHandler.Remove)
	cart.DELETE("/clear", d.CartHandler.Clear)

	orders := e.Group("/orders")
	orders.POST("", d.OrderHandler.Create, requireAuth)
	orders.GET("/my-orders", d.OrderHandler.Mine, requireAuth)
	orders.GET("/export.xlsx", d.OrderHandler.ExportXLSX, requireAdmin)
	orders.GET("", d.OrderHandler.List, requireAdmin)
	orders.GET("/:id", d.OrderHandler.Get, requireAuth)
	orders.PUT("/:id/status", d.OrderHandler.UpdateStatus, requireAdmin)
	orders.DELETE("/:id", d.OrderHandler.Delete, requireAdmin)

	e.GET("/ws/presence", d.PresenceHandler.Serve, d.Auth.RequireAuthWS)
}
