package announce

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mewoai/mewoai/internal/metrics"
)

// Service posts dashboard announcements.
type Service struct {
	messenger Messenger
	uploadDir string
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithUploadDir keeps a copy of every attachment under dir.
func WithUploadDir(dir string) Option {
	return func(s *Service) { s.uploadDir = dir }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates an announcement service.
func NewService(messenger Messenger, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		messenger: messenger,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Channels lists the channels an announcement can target.
func (s *Service) Channels(ctx context.Context) ([]Channel, error) {
	channels, err := s.messenger.Channels(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}
	return channels, nil
}

// Post validates and sends an announcement.
func (s *Service) Post(ctx context.Context, a Announcement) error {
	if strings.TrimSpace(a.ChannelID) == "" || strings.TrimSpace(a.Title) == "" {
		return ErrInvalidInput
	}
	switch a.Mention {
	case MentionNone, MentionEveryone, MentionHere:
	default:
		return ErrInvalidInput
	}

	channels, err := s.Channels(ctx)
	if err != nil {
		return err
	}
	if !containsChannel(channels, a.ChannelID) {
		return ErrChannelNotFound
	}

	category := a.Category
	if category == "" {
		category = "Info"
	}
	msg := Message{
		Content: a.Mention,
		Embed: Embed{
			Title:       a.Title,
			Description: a.Body,
			Color:       ColorFor(category),
			Footer:      "MeWoai • " + category,
			Timestamp:   s.now(),
		},
	}

	if a.Attachment != nil && len(a.Attachment.Data) > 0 {
		file, err := s.store(*a.Attachment)
		if err != nil {
			return err
		}
		msg.Files = []Attachment{file}
	}

	if err := s.messenger.Send(ctx, a.ChannelID, msg); err != nil {
		return fmt.Errorf("sending announcement: %w", err)
	}
	s.metrics.Announced()
	s.logger.Info("announcement posted", "channel_id", a.ChannelID, "category", category, "files", len(msg.Files))
	return nil
}

// store renames the attachment to a generated name and writes it to the upload dir.
func (s *Service) store(file Attachment) (Attachment, error) {
	file.Name = uuid.NewString() + strings.ToLower(filepath.Ext(file.Name))
	if s.uploadDir == "" {
		return file, nil
	}
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return Attachment{}, fmt.Errorf("preparing upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.uploadDir, file.Name), file.Data, 0o644); err != nil {
		return Attachment{}, fmt.Errorf("saving upload: %w", err)
	}
	return file, nil
}

func containsChannel(channels []Channel, id string) bool {
	for _, c := range channels {
		if c.ID == id {
			return true
		}
	}
	return false
}
