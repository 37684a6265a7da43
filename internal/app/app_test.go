package app_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/mewoai/mewoai/internal/config"
	"github.com/mewoai/mewoai/internal/domain/attendance"
	"github.com/mewoai/mewoai/internal/domain/member"
	"github.com/mewoai/mewoai/internal/testserver"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noRedirect(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

func TestMemberLifecycle(t *testing.T) {
	ts := testserver.New(t, nil)
	ctx := context.Background()
	svc := ts.Services

	m, err := svc.Members.Register(ctx, "100", "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, m.XP)
	assert.Equal(t, []string{testserver.RoleMember}, ts.Platform.Roles("100"))

	_, err = svc.Members.Register(ctx, "100", "alice")
	require.ErrorIs(t, err, member.ErrAlreadyRegistered)

	acc, err := svc.Members.AccrueActivity(ctx, member.Activity{UserID: "100", HasMedia: true})
	require.NoError(t, err)
	assert.Equal(t, member.MediaXP, acc.XPAwarded)

	acc, err = svc.Members.AccrueActivity(ctx, member.Activity{UserID: "100", HasMedia: true})
	require.NoError(t, err)
	assert.True(t, acc.Suppressed)

	got, err := ts.Store.Get(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, 15, got.XP)

	// Four earlier absences put the next one on the escalation boundary.
	for range 4 {
		_, err = ts.Store.RecordAbsence(ctx, "100", attendance.AbsencePenalty)
		require.NoError(t, err)
	}
	before := time.Now()
	report, err := svc.Attendance.Process(ctx)
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, attendance.StatusEscalated, report.Entries[0].Status)
	assert.Equal(t, "ABSENT -> WARNING LEVEL 1", report.Entries[0].Label)

	got, err = ts.Store.Get(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, 1, got.WarnCount)
	assert.Equal(t, 5, got.TotalAbsences)
	assert.Zero(t, got.XP)
	require.NotNil(t, got.WarningExpiry)
	assert.WithinDuration(t, before.Add(48*time.Hour), *got.WarningExpiry, time.Minute)
	assert.Equal(t, []string{testserver.RoleWarn1}, ts.Platform.Roles("100"))

	released, err := svc.Sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, released)

	require.NoError(t, ts.Store.SetWarning(ctx, "100", 1, time.Now().Add(-time.Minute)))

	released, err = svc.Sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	got, err = ts.Store.Get(ctx, "100")
	require.NoError(t, err)
	assert.Nil(t, got.WarningExpiry)
	assert.Equal(t, 1, got.WarnCount)
	assert.Equal(t, []string{testserver.RoleMember}, ts.Platform.Roles("100"))

	// A released member is not released again.
	calls := ts.Platform.RoleCalls()
	released, err = svc.Sweeper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, released)
	assert.Equal(t, calls, ts.Platform.RoleCalls())
	assert.Equal(t, []string{testserver.RoleMember}, ts.Platform.Roles("100"))
}

func TestAttendance_PresentAndExcused(t *testing.T) {
	ts := testserver.New(t, nil)
	ctx := context.Background()
	svc := ts.Services

	for _, id := range []string{"1", "2", "3"} {
		_, err := svc.Members.Register(ctx, id, "user"+id)
		require.NoError(t, err)
	}
	_, err := svc.Members.RequestLeave(ctx, "2", "user2", "exams")
	require.NoError(t, err)
	_, err = svc.Members.RequestLeave(ctx, "1", "user1", "late")
	require.NoError(t, err)
	ts.Platform.SetPresent("1")

	report, err := svc.Attendance.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Present)
	assert.Equal(t, 1, report.Excused)
	assert.Equal(t, 1, report.Absent)

	for _, id := range []string{"1", "2"} {
		got, err := ts.Store.Get(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, got.LeaveReason, id)
		assert.Zero(t, got.TotalAbsences, id)
	}
	got, err := ts.Store.Get(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalAbsences)

	// The excuse is consumed, so the next pass counts user 2 absent.
	report, err = svc.Attendance.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Absent)
}

func TestDashboard_EndToEnd(t *testing.T) {
	ts := testserver.New(t, func(cfg *config.Config) {
		cfg.Dashboard.Username = "admin"
		cfg.Dashboard.Password = "pw"
	})
	ctx := context.Background()
	_, err := ts.Services.Members.Register(ctx, "200", "bob")
	require.NoError(t, err)
	_, err = ts.Services.Members.AccrueActivity(ctx, member.Activity{UserID: "200"})
	require.NoError(t, err)

	client := &http.Client{CheckRedirect: noRedirect}
	do := func(method, path string, form url.Values) *http.Response {
		t.Helper()
		req, err := http.NewRequest(method, ts.URL(path), strings.NewReader(form.Encode()))
		require.NoError(t, err)
		req.SetBasicAuth("admin", "pw")
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
		resp, err := client.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resp, err := http.Get(ts.URL("/"))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(http.MethodPost, "/post-info", url.Values{
		"targetChannel": {"chan-general"},
		"judul":         {"Weekly meetup"},
		"pesan":         {"See you there"},
		"tipe":          {"Event"},
		"mentionType":   {"@everyone"},
	})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	sent := ts.Platform.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "chan-general", sent[0].ChannelID)
	assert.Equal(t, "@everyone", sent[0].Message.Content)
	assert.Equal(t, "Weekly meetup", sent[0].Message.Embed.Title)

	resp = do(http.MethodPost, "/proses-absen", url.Values{})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	got, err := ts.Store.Get(ctx, "200")
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalAbsences)

	resp = do(http.MethodPost, "/promote", url.Values{"userId": {"200"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	got, err = ts.Store.Get(ctx, "200")
	require.NoError(t, err)
	assert.Zero(t, got.XP)
	assert.Contains(t, ts.Platform.Roles("200"), testserver.RoleExpert)

	resp = do(http.MethodPost, "/promote", url.Values{"userId": {"999"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	ts.Platform.RemoveVenue()
	resp = do(http.MethodPost, "/proses-absen", url.Values{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMCP_OverHTTP(t *testing.T) {
	ts := testserver.New(t, nil)
	ctx := context.Background()
	_, err := ts.Services.Members.Register(ctx, "300", "carol")
	require.NoError(t, err)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test", Version: "0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{Endpoint: ts.URL("/mcp")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "get_stats", Arguments: map[string]any{}})
	require.NoError(t, err)
	require.False(t, res.IsError)

	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var stats struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Equal(t, 1, stats.Total)
}

func TestMCP_Disabled(t *testing.T) {
	ts := testserver.New(t, func(cfg *config.Config) { cfg.MCP.Enabled = false })

	resp, err := http.Post(ts.URL("/mcp"), "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
