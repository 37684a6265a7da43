package testserver

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/mewoai/mewoai/internal/domain/announce"
	"github.com/mewoai/mewoai/internal/domain/attendance"
)

// Sent is one message delivered through the Platform.
type Sent struct {
	ChannelID string
	Message   announce.Message
}

// Platform is an in-memory chat platform. It records role changes and sent
// messages and reports a scripted venue roster.
type Platform struct {
	mu       sync.Mutex
	roles    map[string]map[string]bool
	present  map[string]struct{}
	noVenue  bool
	channels []announce.Channel
	sent     []Sent
	// roleCalls counts AddRole and RemoveRoles invocations.
	roleCalls int
}

func NewPlatform() *Platform {
	return &Platform{
		roles:    make(map[string]map[string]bool),
		present:  make(map[string]struct{}),
		channels: []announce.Channel{{ID: "chan-general", Name: "general"}},
	}
}

func (p *Platform) AddRole(_ context.Context, userID, roleID string) error {
	if roleID == "" {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roleCalls++
	if p.roles[userID] == nil {
		p.roles[userID] = make(map[string]bool)
	}
	p.roles[userID][roleID] = true
	return nil
}

func (p *Platform) RemoveRoles(_ context.Context, userID string, roleIDs ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roleCalls++
	for _, id := range roleIDs {
		delete(p.roles[userID], id)
	}
	return nil
}

func (p *Platform) Present(context.Context) (map[string]struct{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.noVenue {
		return nil, attendance.ErrVenueNotFound
	}
	return maps.Clone(p.present), nil
}

func (p *Platform) Channels(context.Context) ([]announce.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.channels), nil
}

func (p *Platform) Send(_ context.Context, channelID string, msg announce.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, Sent{ChannelID: channelID, Message: msg})
	return nil
}

// SetPresent replaces the venue roster.
func (p *Platform) SetPresent(userIDs ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.present = make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		p.present[id] = struct{}{}
	}
}

// RemoveVenue makes Present fail as if the venue channel was deleted.
func (p *Platform) RemoveVenue() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.noVenue = true
}

// Roles returns the roles userID currently holds, sorted.
func (p *Platform) Roles(userID string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Sorted(maps.Keys(p.roles[userID]))
}

// RoleCalls reports how many role changes were requested so far.
func (p *Platform) RoleCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roleCalls
}

func (p *Platform) Sent() []Sent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.sent)
}
