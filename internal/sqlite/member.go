package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mewoai/mewoai/internal/domain/member"
	"github.com/mewoai/mewoai/internal/repository"
)

const memberColumns = `
	user_id, display_name, warn_count, total_absences, xp,
	last_media_at, leave_reason, leave_requested_at, warning_expiry, created_at
`

// MemberRepository stores member records in SQLite
type MemberRepository struct {
	db *DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// Create inserts a new member record
func (r *MemberRepository) Create(ctx context.Context, m *member.Member) error {
	query := `
		INSERT INTO members (` + memberColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := m.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		m.UserID,
		m.DisplayName,
		m.WarnCount,
		m.TotalAbsences,
		m.XP,
		toMillis(m.LastMediaAt),
		toNullString(m.LeaveReason),
		toMillis(m.LeaveRequestedAt),
		toMillis(m.WarningExpiry),
		createdAt.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create member: %w", err)
	}

	m.CreatedAt = time.UnixMilli(createdAt.UnixMilli())
	return nil
}

// Get retrieves a member by user ID
func (r *MemberRepository) Get(ctx context.Context, userID string) (*member.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE user_id = ?`

	m, err := scanMember(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

// List returns every member ordered by registration time
func (r *MemberRepository) List(ctx context.Context) ([]member.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY created_at ASC, user_id ASC`
	return r.queryMembers(ctx, "list members", query)
}

// ListExpired returns members whose warning expiry is at or before now
func (r *MemberRepository) ListExpired(ctx context.Context, now time.Time) ([]member.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE warning_expiry IS NOT NULL AND warning_expiry <= ?
		ORDER BY warning_expiry ASC
	`
	return r.queryMembers(ctx, "list expired members", query, now.UnixMilli())
}

// TopByXP returns the members with the most xp, best first
func (r *MemberRepository) TopByXP(ctx context.Context, limit int) ([]member.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		ORDER BY xp DESC, created_at ASC
		LIMIT ?
	`
	return r.queryMembers(ctx, "list top members", query, limit)
}

// Count returns the number of registered members
func (r *MemberRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return n, nil
}

// CountWarned returns the number of members with at least one warning
func (r *MemberRepository) CountWarned(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM members WHERE warn_count > 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count warned members: %w", err)
	}
	return n, nil
}

// UpdateLeave stores a leave note and refreshes the cached display name
func (r *MemberRepository) UpdateLeave(ctx context.Context, userID, displayName, reason string, at time.Time) error {
	query := `
		UPDATE members
		SET leave_reason = ?, leave_requested_at = ?, display_name = ?
		WHERE user_id = ?
	`
	return r.exec(ctx, "update leave", query, reason, at.UnixMilli(), displayName, userID)
}

// AddXP atomically adds delta to the member's xp, recording mediaAt when set
func (r *MemberRepository) AddXP(ctx context.Context, userID string, delta int, mediaAt *time.Time) error {
	query := `
		UPDATE members
		SET xp = MAX(0, xp + ?), last_media_at = COALESCE(?, last_media_at)
		WHERE user_id = ?
	`
	return r.exec(ctx, "add xp", query, delta, toMillis(mediaAt), userID)
}

// ResetXP sets the member's xp to zero
func (r *MemberRepository) ResetXP(ctx context.Context, userID string) error {
	return r.exec(ctx, "reset xp", `UPDATE members SET xp = 0 WHERE user_id = ?`, userID)
}

// ClearLeave consumes the member's leave note
func (r *MemberRepository) ClearLeave(ctx context.Context, userID string) error {
	return r.exec(ctx, "clear leave", `UPDATE members SET leave_reason = NULL WHERE user_id = ?`, userID)
}

// RecordAbsence counts one absence and deducts penalty xp in a single
// statement, returning the updated row
func (r *MemberRepository) RecordAbsence(ctx context.Context, userID string, penalty int) (*member.Member, error) {
	query := `
		UPDATE members
		SET total_absences = total_absences + 1, xp = MAX(0, xp - ?)
		WHERE user_id = ?
		RETURNING ` + memberColumns

	m, err := scanMember(r.db.QueryRowContext(ctx, query, penalty, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record absence: %w", err)
	}
	return m, nil
}

// SetWarning stores the warning tier and when its punishment lapses
func (r *MemberRepository) SetWarning(ctx context.Context, userID string, warnCount int, expiry time.Time) error {
	return r.exec(ctx, "set warning", `UPDATE members SET warn_count = ?, warning_expiry = ? WHERE user_id = ?`,
		warnCount, expiry.UnixMilli(), userID)
}

// ClearWarningExpiry removes the punishment timer
func (r *MemberRepository) ClearWarningExpiry(ctx context.Context, userID string) error {
	return r.exec(ctx, "clear warning expiry", `UPDATE members SET warning_expiry = NULL WHERE user_id = ?`, userID)
}

func (r *MemberRepository) exec(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *MemberRepository) queryMembers(ctx context.Context, op, query string, args ...any) ([]member.Member, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	members := []member.Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}
	return members, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(row scanner) (*member.Member, error) {
	var m member.Member
	var lastMediaAt, leaveRequestedAt, warningExpiry sql.NullInt64
	var leaveReason sql.NullString
	var createdAt int64

	err := row.Scan(
		&m.UserID,
		&m.DisplayName,
		&m.WarnCount,
		&m.TotalAbsences,
		&m.XP,
		&lastMediaAt,
		&leaveReason,
		&leaveRequestedAt,
		&warningExpiry,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	m.LastMediaAt = fromMillis(lastMediaAt)
	m.LeaveRequestedAt = fromMillis(leaveRequestedAt)
	m.WarningExpiry = fromMillis(warningExpiry)
	if leaveReason.Valid {
		m.LeaveReason = &leaveReason.String
	}
	m.CreatedAt = time.UnixMilli(createdAt)
	return &m, nil
}

func toMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func fromMillis(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64)
	return &t
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
