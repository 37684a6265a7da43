package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Intents needed for commands, message accrual, and venue presence.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent |
	discordgo.IntentsGuildVoiceStates

// Session is the subset of the discordgo REST API the bot calls.
type Session interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

var _ Session = (*discordgo.Session)(nil)

// NewSession creates a bot session with the intents the bot relies on. The
// gateway is not opened.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	s.Identify.Intents = Intents
	s.StateEnabled = true
	s.State.TrackVoice = true
	s.State.TrackChannels = true
	return s, nil
}

// Open connects the gateway and blocks until guildID has arrived in the state
// cache, so venue presence is known before the first attendance pass.
func Open(ctx context.Context, s *discordgo.Session, guildID string) error {
	ready := make(chan struct{})
	var once sync.Once
	remove := s.AddHandler(func(_ *discordgo.Session, g *discordgo.GuildCreate) {
		if g.ID == guildID {
			once.Do(func() { close(ready) })
		}
	})
	defer remove()

	if err := s.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w", err)
	}
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		_ = s.Close()
		return fmt.Errorf("waiting for guild %s: %w", guildID, ctx.Err())
	}
}
