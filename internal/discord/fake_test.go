package discord

import (
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
)

var errFake = errors.New("discord unavailable")

type roleCall struct {
	UserID string
	RoleID string
}

// fakeSession records REST calls instead of hitting the API.
type fakeSession struct {
	mu sync.Mutex

	channels    []*discordgo.Channel
	failAdd     bool
	failRemove  map[string]bool
	added       []roleCall
	removed     []roleCall
	bans        []string
	sent        []*discordgo.MessageSend
	notices     []string
	deleted     []string
	responses   []*discordgo.InteractionResponse
	overwritten []*discordgo.ApplicationCommand
}

func (f *fakeSession) GuildMemberRoleAdd(_, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdd {
		return errFake
	}
	f.added = append(f.added, roleCall{userID, roleID})
	return nil
}

func (f *fakeSession) GuildMemberRoleRemove(_, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRemove[roleID] {
		return errFake
	}
	f.removed = append(f.removed, roleCall{userID, roleID})
	return nil
}

func (f *fakeSession) GuildChannels(string, ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.channels == nil {
		return nil, errFake
	}
	return f.channels, nil
}

func (f *fakeSession) GuildBanCreateWithReason(_, userID, _ string, _ int, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bans = append(f.bans, userID)
	return nil
}

func (f *fakeSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notices = append(f.notices, content)
	return &discordgo.Message{ID: "notice-1", ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return &discordgo.Message{ID: "msg-1", ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageDelete(_, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) ApplicationCommandBulkOverwrite(_, _ string, commands []*discordgo.ApplicationCommand, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overwritten = commands
	return commands, nil
}

func (f *fakeSession) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeSession) lastResponse() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		return ""
	}
	return f.responses[len(f.responses)-1].Data.Content
}
