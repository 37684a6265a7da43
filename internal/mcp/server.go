package mcp

import (
	"context"
	"log/slog"

	"github.com/mewoai/mewoai/internal/domain/announce"
	"github.com/mewoai/mewoai/internal/domain/attendance"
	"github.com/mewoai/mewoai/internal/domain/member"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// MemberService defines member operations needed by MCP.
type MemberService interface {
	Stats(ctx context.Context) (*member.Stats, error)
	Candidates(ctx context.Context, limit int) ([]member.Member, error)
	Promote(ctx context.Context, userID string) error
}

// AttendanceService runs attendance passes.
type AttendanceService interface {
	Process(ctx context.Context) (*attendance.Report, error)
}

// AnnounceService lists announcement targets.
type AnnounceService interface {
	Channels(ctx context.Context) ([]announce.Channel, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Members    MemberService
	Attendance AttendanceService
	Announce   AnnounceService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Token         string
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "mewoai",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is local only, so the token is never checked there.
	if cfg.TransportMode != "stdio" && cfg.Token != "" {
		server.AddReceivingMiddleware(authMiddleware(cfg.Token))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services)

	return server
}
