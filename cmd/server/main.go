package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/marketplace/internal/config"
	pkgdb "github.com/Skotchmaster/marketplace/internal/db"
	"github.com/Skotchmaster/marketplace/internal/httpserver"
	"github.com/Skotchmaster/marketplace/internal/jobs"
	"github.com/Skotchmaster/marketplace/internal/logging"
	authmw "github.com/Skotchmaster/marketplace/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/marketplace/internal/middleware/logging"
	"github.com/Skotchmaster/marketplace/internal/notify"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(cfg.LogLevel, cfg.LogFile).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}
	if err := pkgdb.Migrate(initCtx, db); err != nil {
		cancel()
		log.Fatalf("db migrate: %v", err)
	}
	comps, err := buildComponents(initCtx, cfg, logger)
	cancel()
	if err != nil {
		log.Fatalf("init components: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		log.Fatalf("snowflake: %v", err)
	}
	notifier, err := notify.NewAsync(comps.notifiers, cfg.NotifyWorkers)
	if err != nil {
		log.Fatalf("notify pool: %v", err)
	}

	gormRepo := &repo.GormRepo{DB: db}
	images := &service.ImageReleaser{Repo: gormRepo, Store: comps.store}
	categories := &service.CategoryService{Repo: gormRepo}

	authSvc := &service.AuthService{
		Repo:      gormRepo,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
		Notifier:  notifier,
	}
	catalogSvc := &service.CatalogService{
		Repo:       gormRepo,
		Categories: categories,
		Images:     images,
		Index:      comps.index,
	}
	orderSvc := &service.OrderService{
		Repo:     gormRepo,
		Images:   images,
		Index:    comps.index,
		Notifier: notifier,
		IDs:      node,
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler(cfg.IsProduction())
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		Auth:            authmw.NewAuth(cfg.JWTSecret, gormRepo),
		AuthHandler:     &httpserver.AuthHTTP{Svc: authSvc, Users: &service.UserService{Repo: gormRepo}},
		ArticleHandler:  &httpserver.ArticleHTTP{Svc: catalogSvc, Store: comps.store, Images: images},
		CategoryHandler: &httpserver.CategoryHTTP{Svc: categories},
		CartHandler:     &httpserver.CartHTTP{Svc: &service.CartService{Repo: gormRepo}},
		OrderHandler:    &httpserver.OrderHTTP{Svc: orderSvc},
		PresenceHandler: &httpserver.PresenceHTTP{Hub: comps.hub},
		UploadDir:       comps.uploadDir,
		UploadPath:      comps.uploadPath,
		Ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	scheduler := jobs.NewScheduler(logger)
	if err := scheduler.Add("presence_sweep", "@every 1m", jobs.PresenceSweep(comps.hub)); err != nil {
		log.Fatalf("schedule presence sweep: %v", err)
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       60 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	scheduler.Stop(shutdownCtx)
	if err := notifier.Close(5 * time.Second); err != nil {
		logger.Error("notify pool close error", "error", err)
	}
	comps.close(logger)

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
