package sweep

import (
	"context"
	"time"

	"github.com/mewoai/mewoai/internal/domain/member"
)

// Repository provides the record access the sweeper needs.
type Repository interface {
	ListExpired(ctx context.Context, now time.Time) ([]member.Member, error)
	ClearWarningExpiry(ctx context.Context, userID string) error
}

// RoleManager grants and revokes platform roles.
type RoleManager interface {
	AddRole(ctx context.Context, userID, roleID string) error
	RemoveRoles(ctx context.Context, userID string, roleIDs ...string) error
}
