package attendance

import (
	"context"
	"time"

	"github.com/mewoai/mewoai/internal/domain/member"
)

// Repository provides the record access an attendance pass needs.
type Repository interface {
	List(ctx context.Context) ([]member.Member, error)
	ClearLeave(ctx context.Context, userID string) error
	// RecordAbsence adds one absence and removes penalty xp, floored at zero,
	// relative to the stored values, and returns the updated record.
	RecordAbsence(ctx context.Context, userID string, penalty int) (*member.Member, error)
	SetWarning(ctx context.Context, userID string, warnCount int, expiry time.Time) error
}

// Presence reports who is currently in the venue.
type Presence interface {
	Present(ctx context.Context) (map[string]struct{}, error)
}

// RoleManager grants and revokes platform roles.
type RoleManager interface {
	AddRole(ctx context.Context, userID, roleID string) error
	RemoveRoles(ctx context.Context, userID string, roleIDs ...string) error
}
