// Package app assembles the domain services, storage, and HTTP surfaces
// from configuration.
package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mewoai/mewoai/internal/config"
	"github.com/mewoai/mewoai/internal/domain/announce"
	"github.com/mewoai/mewoai/internal/domain/attendance"
	"github.com/mewoai/mewoai/internal/domain/member"
	"github.com/mewoai/mewoai/internal/domain/sweep"
	"github.com/mewoai/mewoai/internal/mcp"
	"github.com/mewoai/mewoai/internal/metrics"
	"github.com/mewoai/mewoai/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Store is the member record store every service shares.
type Store interface {
	member.Repository
	attendance.Repository
	sweep.Repository
}

// Platform is the chat platform seen by the domain services.
type Platform interface {
	member.RoleManager
	attendance.Presence
	announce.Messenger
}

// Services holds the wired domain services.
type Services struct {
	Members    *member.Service
	Attendance *attendance.Processor
	Announce   *announce.Service
	Sweeper    *sweep.Sweeper
}

// NewServices wires the domain services over store and platform. m may be nil.
func NewServices(store Store, platform Platform, cfg config.Config, logger *slog.Logger, m *metrics.Metrics) *Services {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	roles := cfg.Roles.Roles()
	return &Services{
		Members: member.NewService(store, platform, roles, logger.With("component", "member"),
			member.WithMetrics(m)),
		Attendance: attendance.NewProcessor(store, platform, platform, roles, logger.With("component", "attendance"),
			attendance.WithMetrics(m)),
		Announce: announce.NewService(platform, logger.With("component", "announce"),
			announce.WithUploadDir(cfg.Dashboard.UploadDir),
			announce.WithMetrics(m)),
		Sweeper: sweep.New(store, platform, roles, logger.With("component", "sweep"),
			sweep.WithInterval(cfg.Sweep.Interval),
			sweep.WithMetrics(m)),
	}
}

// NewMCPServer builds the MCP tool server. mode is "stdio" or "http".
func NewMCPServer(svc *Services, cfg config.Config, mode, version string, logger *slog.Logger) *sdkmcp.Server {
	return mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Members:    svc.Members,
			Attendance: svc.Attendance,
			Announce:   svc.Announce,
		},
		Token:         cfg.MCP.Token,
		TransportMode: mode,
		Version:       version,
		Logger:        logger,
	})
}

// NewHandler builds the dashboard router. The MCP endpoint is mounted when
// enabled; metricsHandler is mounted at /metrics when non-nil.
func NewHandler(svc *Services, cfg config.Config, version string, metricsHandler http.Handler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var mcpHandler http.Handler
	if cfg.MCP.Enabled {
		server := NewMCPServer(svc, cfg, "http", version, logger.With("component", "mcp"))
		mcpHandler = sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return server },
			&sdkmcp.StreamableHTTPOptions{
				SessionTimeout: 30 * time.Minute,
				Logger:         logger,
			},
		)
	}

	return transport.NewServer(transport.Services{
		Members:    svc.Members,
		Attendance: svc.Attendance,
		Announce:   svc.Announce,
	}, transport.Options{
		Username: cfg.Dashboard.Username,
		Password: cfg.Dashboard.Password,
		MCP:      mcpHandler,
		Metrics:  metricsHandler,
		Logger:   logger.With("component", "http"),
	})
}
