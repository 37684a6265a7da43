package mcp

import (
	"context"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// trafficLoggingMiddleware records every tool invocation at info level with
// the tool name, how long it took, and whether the dashboard operation behind
// it failed. Protocol chatter such as initialize or tools/list is only logged
// at debug level.
func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			tool := toolName(req)
			if tool == "" {
				if !logger.Enabled(ctx, slog.LevelDebug) {
					return next(ctx, method, req)
				}
				result, err := next(ctx, method, req)
				attrs := []any{"direction", direction, "method", method, "session_id", sessionID(req)}
				if err != nil {
					attrs = append(attrs, "error", err)
				}
				logger.DebugContext(ctx, "mcp request", attrs...)
				return result, err
			}

			start := time.Now()
			result, err := next(ctx, method, req)
			attrs := []any{
				"direction", direction,
				"tool", tool,
				"session_id", sessionID(req),
				"duration", time.Since(start),
			}
			level := slog.LevelInfo
			switch res, _ := result.(*sdkmcp.CallToolResult); {
			case err != nil:
				level = slog.LevelWarn
				attrs = append(attrs, "error", err)
			case res != nil && res.IsError:
				level = slog.LevelWarn
				attrs = append(attrs, "tool_error", toolErrorText(res))
			}
			logger.Log(ctx, level, "mcp tool call", attrs...)
			return result, err
		}
	}
}

// toolName returns the tool a tools/call request targets, or "" for any
// other request.
func toolName(req sdkmcp.Request) string {
	switch p := safeParams(req).(type) {
	case *sdkmcp.CallToolParamsRaw:
		if p != nil {
			return p.Name
		}
	case *sdkmcp.CallToolParams:
		if p != nil {
			return p.Name
		}
	}
	return ""
}

func toolErrorText(res *sdkmcp.CallToolResult) string {
	for _, c := range res.Content {
		if text, ok := c.(*sdkmcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

func sessionID(req sdkmcp.Request) (id string) {
	if req == nil {
		return ""
	}
	// Some requests carry a typed nil session.
	defer func() { _ = recover() }()
	session := req.GetSession()
	if session == nil {
		return ""
	}
	return session.ID()
}

func safeParams(req sdkmcp.Request) (params any) {
	if req == nil {
		return nil
	}
	defer func() { _ = recover() }()
	return req.GetParams()
}
