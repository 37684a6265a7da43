package transport

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/mewoai/mewoai/internal/domain/announce"
	"github.com/mewoai/mewoai/internal/domain/attendance"
	"github.com/mewoai/mewoai/internal/domain/member"
)

// announcementForm mirrors the fields of the upload page.
type announcementForm struct {
	ChannelID string `form:"targetChannel" validate:"notblank"`
	Title     string `form:"judul" validate:"notblank,max=256"`
	Body      string `form:"pesan" validate:"max=4096"`
	Category  string `form:"tipe" validate:"omitempty,oneof=Info Warning Event Showcase"`
	Mention   string `form:"mentionType" validate:"omitempty,oneof=@everyone @here"`
}

type promoteForm struct {
	UserID string `form:"userId" validate:"notblank,numeric"`
}

type uploadData struct {
	Channels   []announce.Channel
	Categories []string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.services.Members.Stats(r.Context())
	if err != nil {
		s.serverError(w, "loading stats failed", err)
		return
	}
	s.render(w, http.StatusOK, "dashboard", view{Page: "home", Title: "Dashboard", Data: stats})
}

func (s *Server) handleUploadForm(w http.ResponseWriter, r *http.Request) {
	s.renderUploadForm(w, r, http.StatusOK, "")
}

func (s *Server) renderUploadForm(w http.ResponseWriter, r *http.Request, status int, formErr string) {
	channels, err := s.services.Announce.Channels(r.Context())
	if err != nil {
		s.logger.Warn("listing channels failed", "error", err)
		channels = nil
		if formErr == "" {
			formErr = "Could not load the channel list."
		}
	}
	s.render(w, status, "upload", view{
		Page:  "upload",
		Title: "Announce",
		Error: formErr,
		Data:  uploadData{Channels: channels, Categories: announce.Categories},
	})
}

func (s *Server) handlePostInfo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.renderUploadForm(w, r, http.StatusBadRequest, "The form could not be read. Is the attachment too large?")
		return
	}

	form := announcementForm{
		ChannelID: r.FormValue("targetChannel"),
		Title:     strings.TrimSpace(r.FormValue("judul")),
		Body:      r.FormValue("pesan"),
		Category:  r.FormValue("tipe"),
		Mention:   r.FormValue("mentionType"),
	}
	if err := s.validator.Struct(form); err != nil {
		s.renderUploadForm(w, r, http.StatusBadRequest, s.validator.Message(err))
		return
	}

	attachment, err := readAttachment(r, "gambar")
	if err != nil {
		s.renderUploadForm(w, r, http.StatusBadRequest, "The attachment could not be read.")
		return
	}

	err = s.services.Announce.Post(r.Context(), announce.Announcement{
		ChannelID:  form.ChannelID,
		Title:      form.Title,
		Body:       form.Body,
		Category:   form.Category,
		Mention:    form.Mention,
		Attachment: attachment,
	})
	switch {
	case err == nil:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case errors.Is(err, announce.ErrChannelNotFound):
		s.renderUploadForm(w, r, http.StatusNotFound, "Channel not found.")
	case errors.Is(err, announce.ErrInvalidInput):
		s.renderUploadForm(w, r, http.StatusBadRequest, "Invalid announcement.")
	default:
		s.logger.Error("posting announcement failed", "channel_id", form.ChannelID, "error", err)
		s.renderUploadForm(w, r, http.StatusBadGateway, "Sending the announcement failed.")
	}
}

// readAttachment returns the uploaded file under field, or nil when none was sent.
func readAttachment(r *http.Request, field string) (*announce.Attachment, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &announce.Attachment{
		Name:        header.Filename,
		ContentType: contentType(header),
		Data:        data,
	}, nil
}

func contentType(h *multipart.FileHeader) string {
	if ct := h.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (s *Server) handleAttendanceForm(w http.ResponseWriter, _ *http.Request) {
	s.render(w, http.StatusOK, "absen", view{Page: "absen", Title: "Attendance"})
}

func (s *Server) handleProcessAttendance(w http.ResponseWriter, r *http.Request) {
	report, err := s.services.Attendance.Process(r.Context())
	if err != nil {
		if errors.Is(err, attendance.ErrVenueNotFound) {
			s.render(w, http.StatusNotFound, "message", view{Page: "absen", Title: "Attendance", Data: "The venue channel was not found."})
			return
		}
		s.serverError(w, "attendance failed", err)
		return
	}
	s.render(w, http.StatusOK, "report", view{Page: "absen", Title: "Attendance report", Data: report})
}

func (s *Server) handleSecurity(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.services.Members.Candidates(r.Context(), CandidateLimit)
	if err != nil {
		s.serverError(w, "loading candidates failed", err)
		return
	}
	s.render(w, http.StatusOK, "security", view{Page: "security", Title: "Security", Data: candidates})
}

func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request) {
	form := promoteForm{UserID: strings.TrimSpace(r.FormValue("userId"))}
	if err := s.validator.Struct(form); err != nil {
		s.render(w, http.StatusBadRequest, "message", view{Page: "security", Title: "Security", Data: s.validator.Message(err)})
		return
	}

	err := s.services.Members.Promote(r.Context(), form.UserID)
	switch {
	case err == nil:
		http.Redirect(w, r, "/security", http.StatusSeeOther)
	case errors.Is(err, member.ErrMemberNotFound):
		s.render(w, http.StatusNotFound, "message", view{Page: "security", Title: "Security", Data: "Member not found."})
	case errors.Is(err, member.ErrRoleUpdateFailed):
		s.logger.Warn("promotion rejected by discord", "user_id", form.UserID, "error", err)
		s.render(w, http.StatusBadGateway, "message", view{Page: "security", Title: "Security", Data: "Discord rejected the role change. XP was not reset."})
	default:
		s.serverError(w, "promotion failed", err)
	}
}

func (s *Server) render(w http.ResponseWriter, status int, name string, v view) {
	if err := s.pages.render(w, status, name, v); err != nil {
		s.logger.Error("rendering page failed", "page", name, "error", err)
	}
}

func (s *Server) serverError(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, "error", err)
	s.render(w, http.StatusInternalServerError, "message", view{Title: "Error", Data: "Something went wrong."})
}
