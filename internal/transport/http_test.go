package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mewoai/mewoai/internal/domain/announce"
	"github.com/mewoai/mewoai/internal/domain/attendance"
	"github.com/mewoai/mewoai/internal/domain/member"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMembers struct {
	stats     *member.Stats
	promoted  []string
	promoErr  error
	limitSeen int
}

func (s *stubMembers) Stats(context.Context) (*member.Stats, error) { return s.stats, nil }

func (s *stubMembers) Candidates(_ context.Context, limit int) ([]member.Member, error) {
	s.limitSeen = limit
	return []member.Member{{UserID: "111", DisplayName: "alice", XP: 80}}, nil
}

func (s *stubMembers) Promote(_ context.Context, userID string) error {
	if s.promoErr != nil {
		return s.promoErr
	}
	s.promoted = append(s.promoted, userID)
	return nil
}

type stubAttendance struct {
	report *attendance.Report
	err    error
}

func (s *stubAttendance) Process(context.Context) (*attendance.Report, error) {
	return s.report, s.err
}

type stubAnnounce struct {
	posted []announce.Announcement
	err    error
}

func (s *stubAnnounce) Channels(context.Context) ([]announce.Channel, error) {
	return []announce.Channel{{ID: "c1", Name: "general"}}, nil
}

func (s *stubAnnounce) Post(_ context.Context, a announce.Announcement) error {
	if s.err != nil {
		return s.err
	}
	s.posted = append(s.posted, a)
	return nil
}

type fixture struct {
	members    *stubMembers
	attendance *stubAttendance
	announce   *stubAnnounce
	handler    http.Handler
}

func newFixture(opts Options) *fixture {
	f := &fixture{
		members:    &stubMembers{stats: &member.Stats{Total: 7, Warned: 2, Top: &member.Member{UserID: "111", DisplayName: "alice", XP: 80}}},
		attendance: &stubAttendance{},
		announce:   &stubAnnounce{},
	}
	f.handler = NewServer(Services{Members: f.members, Attendance: f.attendance, Announce: f.announce}, opts)
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHTTPServer_Health(t *testing.T) {
	f := newFixture(Options{Username: "admin", Password: "pw"})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestHTTPServer_BasicAuth(t *testing.T) {
	f := newFixture(Options{Username: "admin", Password: "pw"})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("admin", "pw")
	rec = f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPServer_Dashboard(t *testing.T) {
	f := newFixture(Options{})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="stat-total">7<`)
	assert.Contains(t, body, `id="stat-warned">2<`)
	assert.Contains(t, body, `id="stat-top">alice<`)
}

func TestHTTPServer_UploadForm(t *testing.T) {
	f := newFixture(Options{})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/upload", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<option value="c1">#general</option>`)
	assert.Contains(t, rec.Body.String(), "Showcase")
}

func TestHTTPServer_PostInfoMultipart(t *testing.T) {
	f := newFixture(Options{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("targetChannel", "c1"))
	require.NoError(t, mw.WriteField("judul", "Meetup"))
	require.NoError(t, mw.WriteField("pesan", "Friday at 8"))
	require.NoError(t, mw.WriteField("tipe", "Event"))
	require.NoError(t, mw.WriteField("mentionType", "@here"))
	fw, err := mw.CreateFormFile("gambar", "poster.PNG")
	require.NoError(t, err)
	_, err = io.WriteString(fw, "image-bytes")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/post-info", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := f.do(req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	require.Len(t, f.announce.posted, 1)

	posted := f.announce.posted[0]
	assert.Equal(t, "c1", posted.ChannelID)
	assert.Equal(t, "Meetup", posted.Title)
	assert.Equal(t, "Event", posted.Category)
	assert.Equal(t, "@here", posted.Mention)
	require.NotNil(t, posted.Attachment)
	assert.Equal(t, "poster.PNG", posted.Attachment.Name)
	assert.Equal(t, "image-bytes", string(posted.Attachment.Data))
}

func TestHTTPServer_PostInfoValidation(t *testing.T) {
	f := newFixture(Options{})

	rec := f.do(postForm("/post-info", url.Values{"targetChannel": {"c1"}, "judul": {" "}}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "judul cannot be blank")

	rec = f.do(postForm("/post-info", url.Values{"targetChannel": {"c1"}, "judul": {"Hi"}, "mentionType": {"@someone"}}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.announce.posted)
}

func TestHTTPServer_PostInfoErrors(t *testing.T) {
	f := newFixture(Options{})
	valid := url.Values{"targetChannel": {"c9"}, "judul": {"Hi"}}

	f.announce.err = announce.ErrChannelNotFound
	rec := f.do(postForm("/post-info", valid))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f.announce.err = errors.New("discord down")
	rec = f.do(postForm("/post-info", valid))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHTTPServer_ProcessAttendance(t *testing.T) {
	f := newFixture(Options{})
	f.attendance.report = &attendance.Report{
		ID: "run-1",
		Entries: []attendance.Entry{
			{UserID: "1", DisplayName: "alice", Status: attendance.StatusPresent, Label: "PRESENT"},
			{UserID: "2", DisplayName: "bob", Status: attendance.StatusEscalated, Label: "ABSENT -> WARNING LEVEL 1", TotalAbsences: 5},
		},
		Present:   1,
		Escalated: 1,
	}

	rec := f.do(httptest.NewRequest(http.MethodGet, "/absen", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(httptest.NewRequest(http.MethodPost, "/proses-absen", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "PRESENT")
	assert.Contains(t, body, "ABSENT -&gt; WARNING LEVEL 1")
	assert.Contains(t, body, "text-success")

	f.attendance.err = attendance.ErrVenueNotFound
	rec = f.do(httptest.NewRequest(http.MethodPost, "/proses-absen", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "venue channel was not found")
}

func TestHTTPServer_SecurityAndPromote(t *testing.T) {
	f := newFixture(Options{})

	rec := f.do(httptest.NewRequest(http.MethodGet, "/security", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, CandidateLimit, f.members.limitSeen)
	assert.Contains(t, rec.Body.String(), `value="111"`)

	rec = f.do(postForm("/promote", url.Values{"userId": {"111"}}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/security", rec.Header().Get("Location"))
	assert.Equal(t, []string{"111"}, f.members.promoted)

	rec = f.do(postForm("/promote", url.Values{"userId": {""}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.members.promoErr = member.ErrMemberNotFound
	rec = f.do(postForm("/promote", url.Values{"userId": {"222"}}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Member not found.")

	f.members.promoErr = member.ErrRoleUpdateFailed
	rec = f.do(postForm("/promote", url.Values{"userId": {"222"}}))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHTTPServer_MountsOptionalHandlers(t *testing.T) {
	called := 0
	stub := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called++
		w.WriteHeader(http.StatusTeapot)
	})
	f := newFixture(Options{Username: "admin", Password: "pw", MCP: stub, Metrics: stub})

	rec := f.do(httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	rec = f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 2, called)

	f = newFixture(Options{})
	rec = f.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
