// Package jobs runs the periodic background tasks of the server.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/presence"
)

const jobTimeout = 30 * time.Second

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

func NewScheduler(l *slog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithParser(cronParser)),
		log:  l,
	}
}

// Add registers fn under spec. Each run gets its own bounded context and a
// panic in fn is logged instead of killing the scheduler.
func (s *Scheduler) Add(name, spec string, fn func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		l := s.log.With("job", name)
		defer func() {
			if r := recover(); r != nil {
				l.Error("job_panic", "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(logging.IntoContext(context.Background(), l), jobTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			l.Warn("job_error", "error", err)
		}
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

// PresenceSweep forgets users past the online window and pushes the new
// online list to websocket clients.
func PresenceSweep(hub *presence.Hub) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := hub.Tracker().Sweep(ctx); err != nil {
			return err
		}
		return hub.Broadcast(ctx)
	}
}
