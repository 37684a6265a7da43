package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mewoai/mewoai/internal/domain/announce"
	"github.com/mewoai/mewoai/internal/domain/attendance"
	"github.com/mewoai/mewoai/internal/domain/member"
	"github.com/mewoai/mewoai/internal/validation"
)

// DefaultMaxUpload bounds the announcement form, attachment included.
const DefaultMaxUpload = 10 << 20

// CandidateLimit is the number of promotion candidates shown.
const CandidateLimit = 10

// MemberService defines member operations the dashboard needs.
type MemberService interface {
	Stats(ctx context.Context) (*member.Stats, error)
	Candidates(ctx context.Context, limit int) ([]member.Member, error)
	Promote(ctx context.Context, userID string) error
}

// AttendanceService runs attendance passes.
type AttendanceService interface {
	Process(ctx context.Context) (*attendance.Report, error)
}

// AnnounceService posts announcements.
type AnnounceService interface {
	Channels(ctx context.Context) ([]announce.Channel, error)
	Post(ctx context.Context, a announce.Announcement) error
}

// Services contains the domain services behind the dashboard.
type Services struct {
	Members    MemberService
	Attendance AttendanceService
	Announce   AnnounceService
}

// Options configures the router.
type Options struct {
	Username  string
	Password  string
	MaxUpload int64
	// MCP and Metrics are mounted when set.
	MCP     http.Handler
	Metrics http.Handler
	Logger  *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	services  Services
	pages     *pages
	validator *validation.Validator
	maxUpload int64
	logger    *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(services Services, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxUpload := opts.MaxUpload
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}

	srv := &Server{
		services:  services,
		pages:     mustParsePages(),
		validator: validation.New(),
		maxUpload: maxUpload,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}

	r.Group(func(r chi.Router) {
		r.Use(BasicAuth(opts.Username, opts.Password))

		r.Get("/", srv.handleDashboard)
		r.Get("/upload", srv.handleUploadForm)
		r.Post("/post-info", srv.handlePostInfo)
		r.Get("/absen", srv.handleAttendanceForm)
		r.Post("/proses-absen", srv.handleProcessAttendance)
		r.Get("/security", srv.handleSecurity)
		r.Post("/promote", srv.handlePromote)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
