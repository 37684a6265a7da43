package member

import "time"

// Member is the persistent record kept for every registered user.
type Member struct {
	UserID           string     `json:"user_id"`
	DisplayName      string     `json:"display_name"`
	WarnCount        int        `json:"warn_count"`
	TotalAbsences    int        `json:"total_absences"`
	XP               int        `json:"xp"`
	LastMediaAt      *time.Time `json:"last_media_at,omitempty"`
	LeaveReason      *string    `json:"leave_reason,omitempty"`
	LeaveRequestedAt *time.Time `json:"leave_requested_at,omitempty"`
	WarningExpiry    *time.Time `json:"warning_expiry,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// OnLeave reports whether the member filed a leave note that has not been consumed yet.
func (m *Member) OnLeave() bool {
	return m.LeaveReason != nil
}

// Punished reports whether a warning punishment is still pending release.
func (m *Member) Punished() bool {
	return m.WarningExpiry != nil
}

// Roles holds the platform role identifiers the bot grants and revokes.
type Roles struct {
	Member string
	Warn1  string
	Warn2  string
	Warn3  string
	Expert string
}

// Warnings returns every tier-warning role, skipping unset ones.
func (r Roles) Warnings() []string {
	var ids []string
	for _, id := range []string{r.Warn1, r.Warn2, r.Warn3} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ForTier returns the warning role for a tier. Tiers above three share the last role.
func (r Roles) ForTier(tier int) string {
	switch {
	case tier <= 0:
		return ""
	case tier == 1:
		return r.Warn1
	case tier == 2:
		return r.Warn2
	default:
		return r.Warn3
	}
}

// Activity describes one inbound chat message for xp accrual.
type Activity struct {
	UserID   string
	Bot      bool
	HasMedia bool
}

// Accrual is the result of processing an Activity.
type Accrual struct {
	Registered bool
	Suppressed bool
	XPAwarded  int
}

// Stats holds the dashboard aggregate counters.
type Stats struct {
	Total  int     `json:"total"`
	Warned int     `json:"warned"`
	Top    *Member `json:"top,omitempty"`
}
