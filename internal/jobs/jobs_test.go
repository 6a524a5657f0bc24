package jobs

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/presence"
)

func TestScheduler_RunsAndSurvivesPanics(t *testing.T) {
	s := NewScheduler(logging.NewWithWriter("error", io.Discard))

	var ok, failed int32
	require.NoError(t, s.Add("ok", "@every 1s", func(ctx context.Context) error {
		atomic.AddInt32(&ok, 1)
		return nil
	}))
	require.NoError(t, s.Add("failing", "@every 1s", func(ctx context.Context) error {
		if atomic.AddInt32(&failed, 1) == 1 {
			panic("boom")
		}
		return errors.New("still failing")
	}))
	require.Error(t, s.Add("bad", "not a spec", func(ctx context.Context) error { return nil }))

	s.Start()
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&ok) >= 2 && atomic.LoadInt32(&failed) >= 2
	}, 5*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestPresenceSweep(t *testing.T) {
	tracker := presence.NewMemoryTracker(time.Nanosecond)
	hub := presence.NewHub(tracker)
	ctx := context.Background()

	require.NoError(t, tracker.Touch(ctx, uuid.New()))
	time.Sleep(time.Millisecond)

	require.NoError(t, PresenceSweep(hub)(ctx))

	online, err := tracker.Online(ctx)
	require.NoError(t, err)
	require.Empty(t, online)
}
