package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/mewoai/mewoai/internal/domain/member"
	"github.com/mewoai/mewoai/internal/repository"
	"github.com/stretchr/testify/require"
)

func createMember(t *testing.T, repo *MemberRepository, userID string, xp int, createdAt time.Time) {
	t.Helper()
	err := repo.Create(context.Background(), &member.Member{
		UserID:      userID,
		DisplayName: "name-" + userID,
		XP:          xp,
		CreatedAt:   createdAt,
	})
	require.NoError(t, err)
}

func TestMemberRepository_CreateGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	createMember(t, repo, "u1", 0, now)

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "u1", got.UserID)
	require.Equal(t, "name-u1", got.DisplayName)
	require.Zero(t, got.XP)
	require.Zero(t, got.WarnCount)
	require.Nil(t, got.LeaveReason)
	require.Nil(t, got.WarningExpiry)
	require.True(t, got.CreatedAt.Equal(now))

	_, err = repo.Get(ctx, "missing")
	require.Equal(t, repository.ErrNotFound, err)
}

func TestMemberRepository_CreateDuplicate(t *testing.T) {
	db := NewTestDB(t)
	repo := NewMemberRepository(db)

	createMember(t, repo, "u1", 0, time.Now())
	err := repo.Create(context.Background(), &member.Member{UserID: "u1"})
	require.Equal(t, repository.ErrAlreadyExists, err)
}

func TestMemberRepository_Leave(t *testing.T) {
	db := NewTestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()
	at := time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC)

	createMember(t, repo, "u1", 0, time.Now())
	require.NoError(t, repo.UpdateLeave(ctx, "u1", "alice", "exam", at))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "alice", got.DisplayName)
	require.Equal(t, "exam", *got.LeaveReason)
	require.True(t, got.LeaveRequestedAt.Equal(at))

	require.NoError(t, repo.ClearLeave(ctx, "u1"))
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.Nil(t, got.LeaveReason)
	require.NotNil(t, got.LeaveRequestedAt)

	require.Equal(t, repository.ErrNotFound, repo.UpdateLeave(ctx, "missing", "x", "y", at))
}

func TestMemberRepository_AddXP(t *testing.T) {
	db := NewTestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()
	mediaAt := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	createMember(t, repo, "u1", 0, time.Now())
	require.NoError(t, repo.AddXP(ctx, "u1", 15, &mediaAt))
	require.NoError(t, repo.AddXP(ctx, "u1", 5, nil))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 20, got.XP)
	require.NotNil(t, got.LastMediaAt)
	require.True(t, got.LastMediaAt.Equal(mediaAt))

	require.NoError(t, repo.ResetXP(ctx, "u1"))
	got, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.Zero(t, got.XP)
}

func TestMemberRepository_RecordAbsenceIsRelative(t *testing.T) {
	db := NewTestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 10, 3, 12, 0, 0, 0, time.UTC)

	createMember(t, repo, "u1", 25, now)

	got, err := repo.RecordAbsence(ctx, "u1", 10)
	require.NoError(t, err)
	require.Equal(t, 1, got.TotalAbsences)
	require.Equal(t, 15, got.XP)

	// xp earned between two absences survives the second write.
	require.NoError(t, repo.AddXP(ctx, "u1", 3, nil))
	got, err = repo.RecordAbsence(ctx, "u1", 10)
	require.NoError(t, err)
	require.Equal(t, 2, got.TotalAbsences)
	require.Equal(t, 8, got.XP)

	got, err = repo.RecordAbsence(ctx, "u1", 10)
	require.NoError(t, err)
	require.Equal(t, 3, got.TotalAbsences)
	require.Zero(t, got.XP)

	stored, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, got, stored)

	_, err = repo.RecordAbsence(ctx, "missing", 10)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemberRepository_SetWarningAndExpiry(t *testing.T) {
	db := NewTestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 10, 3, 12, 0, 0, 0, time.UTC)

	createMember(t, repo, "u1", 30, now)
	createMember(t, repo, "u2", 30, now)
	createMember(t, repo, "u3", 30, now)
	for _, id := range []string{"u1", "u2", "u3"} {
		_, err := repo.RecordAbsence(ctx, id, 10)
		require.NoError(t, err)
	}

	require.NoError(t, repo.SetWarning(ctx, "u1", 1, now.Add(-time.Hour)))
	require.NoError(t, repo.SetWarning(ctx, "u2", 1, now.Add(time.Hour)))
	require.NoError(t, repo.SetWarning(ctx, "u3", 1, now))
	require.ErrorIs(t, repo.SetWarning(ctx, "missing", 1, now), repository.ErrNotFound)

	expired, err := repo.ListExpired(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 2)
	require.Equal(t, "u1", expired[0].UserID)
	require.Equal(t, "u3", expired[1].UserID)
	require.Equal(t, 1, expired[0].WarnCount)
	require.Equal(t, 1, expired[0].TotalAbsences)
	require.Equal(t, 20, expired[0].XP)

	require.NoError(t, repo.ClearWarningExpiry(ctx, "u1"))
	require.NoError(t, repo.ClearWarningExpiry(ctx, "u3"))

	expired, err = repo.ListExpired(ctx, now)
	require.NoError(t, err)
	require.Empty(t, expired)

	warned, err := repo.CountWarned(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, warned)
}

func TestMemberRepository_TopByXPAndCount(t *testing.T) {
	db := NewTestDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	createMember(t, repo, "low", 10, base)
	createMember(t, repo, "high", 90, base.Add(time.Minute))
	createMember(t, repo, "mid", 50, base.Add(2*time.Minute))

	top, err := repo.TopByXP(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, "high", top[0].UserID)
	require.Equal(t, "mid", top[1].UserID)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"low", "high", "mid"}, []string{all[0].UserID, all[1].UserID, all[2].UserID})
}
