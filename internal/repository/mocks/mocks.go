package mocks

import (
	"context"
	"time"

	"github.com/mewoai/mewoai/internal/domain/announce"
	"github.com/mewoai/mewoai/internal/domain/member"
	"github.com/stretchr/testify/mock"
)

// MemberRepository is a mock for the member record store.
type MemberRepository struct {
	mock.Mock
}

func (m *MemberRepository) Create(ctx context.Context, rec *member.Member) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MemberRepository) Get(ctx context.Context, userID string) (*member.Member, error) {
	args := m.Called(ctx, userID)
	if rec, ok := args.Get(0).(*member.Member); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MemberRepository) UpdateLeave(ctx context.Context, userID, displayName, reason string, at time.Time) error {
	args := m.Called(ctx, userID, displayName, reason, at)
	return args.Error(0)
}

func (m *MemberRepository) AddXP(ctx context.Context, userID string, delta int, mediaAt *time.Time) error {
	args := m.Called(ctx, userID, delta, mediaAt)
	return args.Error(0)
}

func (m *MemberRepository) ResetXP(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MemberRepository) TopByXP(ctx context.Context, limit int) ([]member.Member, error) {
	args := m.Called(ctx, limit)
	if list, ok := args.Get(0).([]member.Member); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MemberRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MemberRepository) CountWarned(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MemberRepository) List(ctx context.Context) ([]member.Member, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]member.Member); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MemberRepository) ClearLeave(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MemberRepository) RecordAbsence(ctx context.Context, userID string, penalty int) (*member.Member, error) {
	args := m.Called(ctx, userID, penalty)
	if rec, ok := args.Get(0).(*member.Member); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MemberRepository) SetWarning(ctx context.Context, userID string, warnCount int, expiry time.Time) error {
	args := m.Called(ctx, userID, warnCount, expiry)
	return args.Error(0)
}

func (m *MemberRepository) ListExpired(ctx context.Context, now time.Time) ([]member.Member, error) {
	args := m.Called(ctx, now)
	if list, ok := args.Get(0).([]member.Member); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MemberRepository) ClearWarningExpiry(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// RoleManager is a mock for the platform role system.
type RoleManager struct {
	mock.Mock
}

func (m *RoleManager) AddRole(ctx context.Context, userID, roleID string) error {
	args := m.Called(ctx, userID, roleID)
	return args.Error(0)
}

func (m *RoleManager) RemoveRoles(ctx context.Context, userID string, roleIDs ...string) error {
	args := m.Called(ctx, userID, roleIDs)
	return args.Error(0)
}

// Presence is a mock for venue presence lookups.
type Presence struct {
	mock.Mock
}

func (m *Presence) Present(ctx context.Context) (map[string]struct{}, error) {
	args := m.Called(ctx)
	if set, ok := args.Get(0).(map[string]struct{}); ok {
		return set, args.Error(1)
	}
	return nil, args.Error(1)
}

// Messenger is a mock for outbound chat messages.
type Messenger struct {
	mock.Mock
}

func (m *Messenger) Channels(ctx context.Context) ([]announce.Channel, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]announce.Channel); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Messenger) Send(ctx context.Context, channelID string, msg announce.Message) error {
	args := m.Called(ctx, channelID, msg)
	return args.Error(0)
}
