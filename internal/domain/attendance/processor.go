package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mewoai/mewoai/internal/domain/member"
	"github.com/mewoai/mewoai/internal/domain/warning"
	"github.com/mewoai/mewoai/internal/metrics"
)

// Processor runs attendance passes over every member record.
type Processor struct {
	repo     Repository
	presence Presence
	roles    RoleManager
	roleIDs  member.Roles
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// NewProcessor creates an attendance processor.
func NewProcessor(repo Repository, presence Presence, roles RoleManager, roleIDs member.Roles, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p := &Processor{
		repo:     repo,
		presence: presence,
		roles:    roles,
		roleIDs:  roleIDs,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process classifies every member as present, excused, or absent and applies
// the consequences. A failure on one member never stops the pass.
func (p *Processor) Process(ctx context.Context) (*Report, error) {
	present, err := p.presence.Present(ctx)
	if err != nil {
		if errors.Is(err, ErrVenueNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("loading venue presence: %w", err)
	}

	members, err := p.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}

	// A started pass runs to completion even when the caller goes away.
	ctx = context.WithoutCancel(ctx)

	report := &Report{
		ID:        uuid.NewString(),
		StartedAt: p.now(),
	}
	logger := p.logger.With("run_id", report.ID)
	logger.Info("attendance started", "members", len(members), "present", len(present))

	for i := range members {
		report.add(p.processMember(ctx, logger, &members[i], present))
	}

	report.FinishedAt = p.now()
	logger.Info("attendance finished",
		"present", report.Present,
		"excused", report.Excused,
		"absent", report.Absent,
		"escalated", report.Escalated,
		"failed", report.Failed,
	)
	return report, nil
}

func (p *Processor) processMember(ctx context.Context, logger *slog.Logger, m *member.Member, present map[string]struct{}) Entry {
	entry := Entry{UserID: m.UserID, DisplayName: m.DisplayName}

	var saveErr error
	switch _, ok := present[m.UserID]; {
	case ok:
		entry.Status = StatusPresent
		saveErr = p.repo.ClearLeave(ctx, m.UserID)
	case m.OnLeave():
		entry.Status = StatusExcused
		entry.Label = label(StatusExcused, *m.LeaveReason, 0, 0)
		saveErr = p.repo.ClearLeave(ctx, m.UserID)
	default:
		entry.Status = StatusAbsent
		m, saveErr = p.recordAbsence(ctx, logger, m, &entry)
	}

	entry.TotalAbsences = m.TotalAbsences
	entry.XP = m.XP
	if entry.Label == "" {
		entry.Label = label(entry.Status, "", m.TotalAbsences, entry.Tier)
	}
	p.metrics.Attendance(string(entry.Status))

	if saveErr != nil {
		entry.Error = saveErr.Error()
		p.metrics.StoreFailure("attendance")
		logger.Error("saving attendance failed", "user_id", m.UserID, "error", saveErr)
	}
	return entry
}

// recordAbsence applies the penalty against the stored record and escalates
// when the new total lands on a boundary. On a failed write the snapshot is
// returned unchanged.
func (p *Processor) recordAbsence(ctx context.Context, logger *slog.Logger, m *member.Member, entry *Entry) (*member.Member, error) {
	updated, err := p.repo.RecordAbsence(ctx, m.UserID, AbsencePenalty)
	if err != nil {
		return m, err
	}

	outcome := warning.Escalate(updated.TotalAbsences, updated.WarnCount)
	if !outcome.Escalated() {
		return updated, nil
	}

	entry.Status = StatusEscalated
	entry.Tier = outcome.Tier
	expiry := p.now().Add(outcome.Duration)
	// Roles are only swapped once the expiry is stored, so the sweeper can
	// always undo them.
	if err := p.repo.SetWarning(ctx, m.UserID, outcome.Tier, expiry); err != nil {
		return updated, err
	}
	updated.WarnCount = outcome.Tier
	updated.WarningExpiry = &expiry
	p.punish(ctx, logger, m.UserID, outcome.Tier)
	p.metrics.Escalated(outcome.Tier)
	return updated, nil
}

// punish swaps the member role for the warning role of tier. Role failures
// are logged and otherwise ignored.
func (p *Processor) punish(ctx context.Context, logger *slog.Logger, userID string, tier int) {
	if err := p.roles.RemoveRoles(ctx, userID, p.roleIDs.Member); err != nil {
		p.metrics.RoleFailure("remove")
		logger.Warn("revoking member role failed", "user_id", userID, "error", err)
	}
	if err := p.roles.RemoveRoles(ctx, userID, p.roleIDs.Warnings()...); err != nil {
		p.metrics.RoleFailure("remove")
		logger.Warn("revoking warning roles failed", "user_id", userID, "error", err)
	}
	if err := p.roles.AddRole(ctx, userID, p.roleIDs.ForTier(tier)); err != nil {
		p.metrics.RoleFailure("add")
		logger.Warn("granting warning role failed", "user_id", userID, "tier", tier, "error", err)
	}
}
