package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/Skotchmaster/marketplace/internal/config"
	"github.com/Skotchmaster/marketplace/internal/es"
	"github.com/Skotchmaster/marketplace/internal/media"
	"github.com/Skotchmaster/marketplace/internal/mykafka"
	"github.com/Skotchmaster/marketplace/internal/notify"
	"github.com/Skotchmaster/marketplace/internal/presence"
	"github.com/Skotchmaster/marketplace/internal/search"
)

type closer struct {
	name string
	fn   func() error
}

// components holds the optional backends selected by configuration.
type components struct {
	store      media.Store
	uploadDir  string
	uploadPath string

	index   search.Indexer
	tracker presence.Tracker
	hub     *presence.Hub

	notifiers notify.Multi

	closers []closer
}

func (c *components) close(l *slog.Logger) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].fn(); err != nil {
			l.Error("close_error", "component", c.closers[i].name, "error", err)
		}
	}
}

func buildComponents(ctx context.Context, cfg config.Config, l *slog.Logger) (*components, error) {
	c := &components{index: search.Nop{}}

	if cfg.GCSBucket != "" {
		gcs, err := media.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentials)
		if err != nil {
			return nil, err
		}
		c.store = gcs
		c.closers = append(c.closers, closer{"gcs", gcs.Close})
		l.Info("image store", "backend", "gcs", "bucket", cfg.GCSBucket)
	} else {
		local, err := media.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		u, err := url.Parse(cfg.PublicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse PUBLIC_BASE_URL: %w", err)
		}
		c.store = local
		c.uploadDir = cfg.UploadDir
		c.uploadPath = u.Path
		l.Info("image store", "backend", "local", "dir", cfg.UploadDir)
	}

	if cfg.ESURL != "" {
		client, err := es.NewClient(es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword}, l)
		if err != nil {
			return nil, err
		}
		c.index = search.NewElastic(client, cfg.ESIndex)
	}

	if cfg.RedisAddr != "" {
		rt, err := presence.NewRedisTracker(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.OnlineWindow)
		if err != nil {
			return nil, err
		}
		c.tracker = rt
		c.closers = append(c.closers, closer{"redis", rt.Close})
	} else {
		c.tracker = presence.NewMemoryTracker(cfg.OnlineWindow)
	}
	c.hub = presence.NewHub(c.tracker)

	c.notifiers = notify.Multi{&notify.Presence{Hub: c.hub}}
	if len(cfg.KafkaBrokers) > 0 {
		producer := mykafka.NewProducer(cfg.KafkaBrokers)
		c.notifiers = append(c.notifiers, notify.NewKafka(producer))
		c.closers = append(c.closers, closer{"kafka", producer.Close})
	}
	if cfg.SMTPHost != "" {
		c.notifiers = append(c.notifiers, notify.NewSMTPMail(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom))
	}

	return c, nil
}
