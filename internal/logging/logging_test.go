package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("warn", &buf)

	l.Info("hidden")
	require.Zero(t, buf.Len())

	l.Warn("create_order_error", "status", 400)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "create_order_error", rec["msg"])
	require.EqualValues(t, 400, rec["status"])
}

func TestContextRoundTrip(t *testing.T) {
	l := NewWithWriter("info", &bytes.Buffer{})
	ctx := IntoContext(context.Background(), l)

	require.Same(t, l, FromContext(ctx))
	require.Same(t, slog.Default(), FromContext(context.Background()))
}
