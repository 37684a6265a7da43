// Package sweep reverts warning punishments whose expiry has passed.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mewoai/mewoai/internal/domain/member"
	"github.com/mewoai/mewoai/internal/metrics"
)

// DefaultInterval is the time between two sweeps.
const DefaultInterval = time.Minute

// Sweeper restores the base role of members whose punishment lapsed.
type Sweeper struct {
	repo     Repository
	roles    RoleManager
	roleIDs  member.Roles
	interval time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Sweeper.
type Option func(*Sweeper)

// WithInterval sets the tick interval.
func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) { s.metrics = m }
}

// New creates a sweeper.
func New(repo Repository, roles RoleManager, roleIDs member.Roles, logger *slog.Logger, opts ...Option) *Sweeper {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Sweeper{
		repo:     repo,
		roles:    roles,
		roleIDs:  roleIDs,
		interval: DefaultInterval,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps every interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("sweep failed", "error", err)
			}
		}
	}
}

// RunOnce releases every member whose warning expiry is at or before now and
// returns how many timers were cleared.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	expired, err := s.repo.ListExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("listing expired warnings: %w", err)
	}

	released := 0
	for _, m := range expired {
		if err := s.roles.RemoveRoles(ctx, m.UserID, s.roleIDs.Warnings()...); err != nil {
			s.metrics.RoleFailure("remove")
			s.logger.Warn("revoking warning roles failed", "user_id", m.UserID, "error", err)
		}
		if err := s.roles.AddRole(ctx, m.UserID, s.roleIDs.Member); err != nil {
			s.metrics.RoleFailure("add")
			s.logger.Warn("restoring member role failed", "user_id", m.UserID, "error", err)
		}

		if err := s.repo.ClearWarningExpiry(ctx, m.UserID); err != nil {
			s.metrics.StoreFailure("sweep")
			s.logger.Error("clearing warning expiry failed", "user_id", m.UserID, "error", err)
			continue
		}
		released++
		s.metrics.Released()
		s.logger.Info("punishment lapsed, member role restored", "user_id", m.UserID, "name", m.DisplayName)
	}
	return released, nil
}
