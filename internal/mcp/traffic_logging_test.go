package mcp

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

// toolCalls returns the attributes of every logged tool call.
func (h *recordingHandler) toolCalls() []map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []map[string]any
	for _, r := range h.records {
		if r.Message != "mcp tool call" {
			continue
		}
		attrs := map[string]any{"level": r.Level}
		r.Attrs(func(a slog.Attr) bool {
			attrs[a.Key] = a.Value.Any()
			return true
		})
		out = append(out, attrs)
	}
	return out
}

func TestTrafficLogging_ToolCalls(t *testing.T) {
	h := &recordingHandler{}
	session := connect(t, NewServer(Config{
		Services:      newStubServices(),
		TransportMode: "stdio",
		Logger:        slog.New(h),
	}))

	res := callTool(t, session, "get_stats", map[string]any{}, nil)
	require.False(t, res.IsError, resultText(res))
	res = callTool(t, session, "process_attendance", map[string]any{}, nil)
	require.True(t, res.IsError)

	calls := h.toolCalls()
	require.Len(t, calls, 2)

	assert.Equal(t, "get_stats", calls[0]["tool"])
	assert.Equal(t, "inbound", calls[0]["direction"])
	assert.Equal(t, slog.LevelInfo, calls[0]["level"])
	assert.Contains(t, calls[0], "duration")
	assert.NotContains(t, calls[0], "tool_error")

	assert.Equal(t, "process_attendance", calls[1]["tool"])
	assert.Equal(t, slog.LevelWarn, calls[1]["level"])
	assert.Contains(t, calls[1]["tool_error"], "VENUE_NOT_FOUND")
}

func TestTrafficLogging_NilLogger(t *testing.T) {
	session := connect(t, NewServer(Config{Services: newStubServices(), TransportMode: "stdio"}))

	res := callTool(t, session, "get_stats", map[string]any{}, nil)
	require.False(t, res.IsError, resultText(res))
}
