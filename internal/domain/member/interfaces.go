package member

import (
	"context"
	"time"
)

// Repository provides persistence for member records.
type Repository interface {
	Create(ctx context.Context, m *Member) error
	Get(ctx context.Context, userID string) (*Member, error)
	UpdateLeave(ctx context.Context, userID, displayName, reason string, at time.Time) error
	AddXP(ctx context.Context, userID string, delta int, mediaAt *time.Time) error
	ResetXP(ctx context.Context, userID string) error
	TopByXP(ctx context.Context, limit int) ([]Member, error)
	Count(ctx context.Context) (int, error)
	CountWarned(ctx context.Context) (int, error)
}

// RoleManager grants and revokes platform roles.
type RoleManager interface {
	AddRole(ctx context.Context, userID, roleID string) error
	RemoveRoles(ctx context.Context, userID string, roleIDs ...string) error
}
