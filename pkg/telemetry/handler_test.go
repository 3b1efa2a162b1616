package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/ktbn/pkg/types"
)

func newHandler(t *testing.T) (*ParquetHandler, string) {
	t.Helper()
	dir := t.TempDir()
	h, err := NewParquetHandler(slog.NewTextHandler(io.Discard, nil), dir)
	require.NoError(t, err)
	return h, dir
}

func parquetFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".parquet") {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out
}

func TestOnlyErrorsAreBuffered(t *testing.T) {
	h, dir := newHandler(t)
	logger := slog.New(h)

	logger.Info("routine", "n", 1)
	logger.Warn("odd", "n", 2)
	require.NoError(t, h.Flush())
	assert.Empty(t, parquetFiles(t, dir))

	logger.Error("broken", "n", 3)
	require.NoError(t, h.Flush())
	assert.Len(t, parquetFiles(t, dir), 1)
}

func TestFlushOnEmptyBufferWritesNothing(t *testing.T) {
	h, dir := newHandler(t)
	require.NoError(t, h.Flush())
	assert.Empty(t, parquetFiles(t, dir))
}

func TestContextTagsAreCaptured(t *testing.T) {
	h, dir := newHandler(t)
	logger := slog.New(h)

	ctx := context.WithValue(context.Background(), types.ContextKeyNetworkID, "weather")
	ctx = context.WithValue(ctx, types.ContextKeyOperation, "unroll")
	ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "http")
	logger.ErrorContext(ctx, "unroll failed", "slices", 1)

	h.mu.Lock()
	require.Len(t, h.buffer, 1)
	record := h.buffer[0]
	h.mu.Unlock()

	assert.Equal(t, "unroll failed", record.Message)
	assert.Equal(t, "ERROR", record.Level)
	assert.Equal(t, "weather", record.NetworkID)
	assert.Equal(t, "unroll", record.Operation)
	assert.Equal(t, "http", record.RequestSource)
	assert.NotEmpty(t, record.ID)
	assert.Contains(t, record.Attributes, `"slices":1`)

	require.NoError(t, h.Flush())
	files := parquetFiles(t, dir)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestWithAttrsKeepsForwarding(t *testing.T) {
	h, _ := newHandler(t)
	child := h.WithAttrs([]slog.Attr{slog.String("component", "unroller")})
	logger := slog.New(child)
	logger.Error("boom")

	ph, ok := child.(*ParquetHandler)
	require.True(t, ok)
	require.NoError(t, ph.Flush())
}

func TestEnabledDelegates(t *testing.T) {
	dir := t.TempDir()
	next := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn})
	h, err := NewParquetHandler(next, dir)
	require.NoError(t, err)

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}
