// Package testserver runs the full dashboard and MCP stack over an in-memory
// store and a scripted chat platform.
package testserver

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/mewoai/mewoai/internal/app"
	"github.com/mewoai/mewoai/internal/config"
	"github.com/mewoai/mewoai/internal/sqlite"
	"github.com/stretchr/testify/require"
)

// Role identifiers configured on every test server.
const (
	RoleMember = "role-member"
	RoleWarn1  = "role-warn1"
	RoleWarn2  = "role-warn2"
	RoleWarn3  = "role-warn3"
	RoleExpert = "role-expert"
)

type TestServer struct {
	Server   *httptest.Server
	Store    *sqlite.MemberRepository
	Platform *Platform
	Services *app.Services
	Config   config.Config
}

// New starts a server. mutate may adjust the configuration before wiring.
func New(t *testing.T, mutate func(*config.Config)) *TestServer {
	t.Helper()

	cfg := config.Default()
	cfg.DB.Path = ":memory:"
	cfg.Dashboard.UploadDir = t.TempDir()
	cfg.Roles = config.RolesConfig{
		Member: RoleMember,
		Warn1:  RoleWarn1,
		Warn2:  RoleWarn2,
		Warn3:  RoleWarn3,
		Expert: RoleExpert,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	store, closeStore, err := app.OpenStore(context.Background(), cfg.DB, nil)
	require.NoError(t, err)

	platform := NewPlatform()
	services := app.NewServices(store, platform, cfg, nil, nil)
	server := httptest.NewServer(app.NewHandler(services, cfg, "test", nil, nil))

	t.Cleanup(func() {
		server.Close()
		_ = closeStore(context.Background())
	})

	repo, ok := store.(*sqlite.MemberRepository)
	require.True(t, ok, "test server expects the sqlite store")

	return &TestServer{
		Server:   server,
		Store:    repo,
		Platform: platform,
		Services: services,
		Config:   cfg,
	}
}

// URL joins path onto the server address.
func (ts *TestServer) URL(path string) string {
	return ts.Server.URL + path
}
