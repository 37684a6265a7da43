package member

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mewoai/mewoai/internal/metrics"
	"github.com/mewoai/mewoai/internal/repository"
)

const (
	// TextXP is awarded for a plain message.
	TextXP = 5
	// MediaXP is awarded for a message carrying attachments.
	MediaXP = 15
	// MediaCooldown is the minimum gap between two rewarded media messages.
	MediaCooldown = 2 * time.Minute
)

// Service handles member registration, leave notes, and activity accrual.
type Service struct {
	repo    Repository
	roles   RoleManager
	roleIDs Roles
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
	locks   *identityLocks
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a new member service.
func NewService(repo Repository, roles RoleManager, roleIDs Roles, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		repo:    repo,
		roles:   roles,
		roleIDs: roleIDs,
		logger:  logger,
		now:     time.Now,
		locks:   newIdentityLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a record for a new identity and grants the base membership role.
func (s *Service) Register(ctx context.Context, userID, displayName string) (*Member, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	unlock := s.locks.lock(userID)
	defer unlock()

	_, err := s.repo.Get(ctx, userID)
	if err == nil {
		return nil, ErrAlreadyRegistered
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("loading member: %w", err)
	}

	m := &Member{
		UserID:      userID,
		DisplayName: displayName,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("creating member: %w", err)
	}
	s.metrics.Registered()

	if err := s.roles.AddRole(ctx, userID, s.roleIDs.Member); err != nil {
		s.metrics.RoleFailure("add")
		s.logger.Warn("granting member role failed", "user_id", userID, "error", err)
	}
	s.logger.Info("member registered", "user_id", userID, "name", displayName)
	return m, nil
}

// GetOrCreate returns the record for userID, creating a default one when absent.
func (s *Service) GetOrCreate(ctx context.Context, userID, displayName string) (*Member, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	unlock := s.locks.lock(userID)
	defer unlock()
	return s.getOrCreate(ctx, userID, displayName)
}

func (s *Service) getOrCreate(ctx context.Context, userID, displayName string) (*Member, error) {
	m, err := s.repo.Get(ctx, userID)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("loading member: %w", err)
	}

	m = &Member{
		UserID:      userID,
		DisplayName: displayName,
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		if !errors.Is(err, repository.ErrAlreadyExists) {
			return nil, fmt.Errorf("creating member: %w", err)
		}
		// Another process created it first.
		existing, getErr := s.repo.Get(ctx, userID)
		if getErr != nil {
			return nil, fmt.Errorf("loading member: %w", getErr)
		}
		return existing, nil
	}
	return m, nil
}

// RequestLeave files an excused-absence note for the next attendance pass.
func (s *Service) RequestLeave(ctx context.Context, userID, displayName, reason string) (*Member, error) {
	reason = strings.TrimSpace(reason)
	if strings.TrimSpace(userID) == "" || reason == "" {
		return nil, ErrInvalidInput
	}
	unlock := s.locks.lock(userID)
	defer unlock()

	m, err := s.getOrCreate(ctx, userID, displayName)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.repo.UpdateLeave(ctx, userID, displayName, reason, now); err != nil {
		return nil, fmt.Errorf("saving leave: %w", err)
	}
	m.DisplayName = displayName
	m.LeaveReason = &reason
	m.LeaveRequestedAt = &now
	s.logger.Info("leave recorded", "user_id", userID, "reason", reason)
	return m, nil
}

// AccrueActivity awards xp for a chat message and applies the media throttle.
// Unregistered users and bots are ignored.
func (s *Service) AccrueActivity(ctx context.Context, act Activity) (Accrual, error) {
	if act.Bot || act.UserID == "" {
		return Accrual{}, nil
	}
	unlock := s.locks.lock(act.UserID)
	defer unlock()

	m, err := s.repo.Get(ctx, act.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Accrual{}, nil
		}
		return Accrual{}, fmt.Errorf("loading member: %w", err)
	}

	result := Accrual{Registered: true}
	var mediaAt *time.Time
	if act.HasMedia {
		now := s.now()
		if m.LastMediaAt != nil && now.Sub(*m.LastMediaAt) < MediaCooldown {
			result.Suppressed = true
			s.metrics.MediaSuppressed()
			return result, nil
		}
		mediaAt = &now
		result.XPAwarded = MediaXP
	} else {
		result.XPAwarded = TextXP
	}

	if err := s.repo.AddXP(ctx, act.UserID, result.XPAwarded, mediaAt); err != nil {
		return Accrual{}, fmt.Errorf("adding xp: %w", err)
	}
	s.metrics.AddXP(result.XPAwarded)
	return result, nil
}

// Stats returns the dashboard aggregates.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting members: %w", err)
	}
	warned, err := s.repo.CountWarned(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting warned members: %w", err)
	}
	top, err := s.repo.TopByXP(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("loading top member: %w", err)
	}

	stats := &Stats{Total: total, Warned: warned}
	if len(top) > 0 {
		stats.Top = &top[0]
	}
	return stats, nil
}

// Candidates returns the highest-xp members, best first.
func (s *Service) Candidates(ctx context.Context, limit int) ([]Member, error) {
	if limit <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.TopByXP(ctx, limit)
}

// Promote grants the elevated role and resets the member's xp.
func (s *Service) Promote(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidInput
	}
	unlock := s.locks.lock(userID)
	defer unlock()

	if _, err := s.repo.Get(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("loading member: %w", err)
	}

	if err := s.roles.AddRole(ctx, userID, s.roleIDs.Expert); err != nil {
		s.metrics.RoleFailure("add")
		s.logger.Warn("granting expert role failed", "user_id", userID, "error", err)
		return fmt.Errorf("%w: %v", ErrRoleUpdateFailed, err)
	}

	if err := s.repo.ResetXP(ctx, userID); err != nil {
		return fmt.Errorf("resetting xp: %w", err)
	}
	s.logger.Info("member promoted", "user_id", userID)
	return nil
}
