package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mewoai/mewoai/internal/domain/announce"
	"github.com/mewoai/mewoai/internal/domain/attendance"
)

// Client adapts a discordgo session to the role, presence, and messaging
// interfaces the domain packages consume.
type Client struct {
	session Session
	state   *discordgo.State
	guildID string
	venue   string
	logger  *slog.Logger
}

// NewClient creates a Client scoped to one guild. venue is the name of the
// channel attendance is taken in.
func NewClient(session Session, state *discordgo.State, guildID, venue string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		session: session,
		state:   state,
		guildID: guildID,
		venue:   venue,
		logger:  logger,
	}
}

// AddRole grants roleID to the user. An unset role is a no-op.
func (c *Client) AddRole(ctx context.Context, userID, roleID string) error {
	if roleID == "" {
		return nil
	}
	if err := c.session.GuildMemberRoleAdd(c.guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("adding role %s to %s: %w", roleID, userID, err)
	}
	return nil
}

// RemoveRoles revokes every listed role, attempting all of them even when
// one fails.
func (c *Client) RemoveRoles(ctx context.Context, userID string, roleIDs ...string) error {
	var errs []error
	for _, roleID := range roleIDs {
		if roleID == "" {
			continue
		}
		if err := c.session.GuildMemberRoleRemove(c.guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
			errs = append(errs, fmt.Errorf("removing role %s from %s: %w", roleID, userID, err))
		}
	}
	return errors.Join(errs...)
}

// Present returns the users currently connected to the venue channel.
func (c *Client) Present(ctx context.Context) (map[string]struct{}, error) {
	guild, err := c.state.Guild(c.guildID)
	if err != nil {
		if errors.Is(err, discordgo.ErrStateNotFound) {
			return nil, attendance.ErrVenueNotFound
		}
		return nil, fmt.Errorf("loading guild state: %w", err)
	}

	c.state.RLock()
	defer c.state.RUnlock()

	var venueID string
	for _, ch := range guild.Channels {
		if ch.Name == c.venue {
			venueID = ch.ID
			break
		}
	}
	if venueID == "" {
		return nil, attendance.ErrVenueNotFound
	}

	present := make(map[string]struct{})
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == venueID {
			present[vs.UserID] = struct{}{}
		}
	}
	return present, nil
}

// Channels lists the guild's text and announcement channels in display order.
func (c *Client) Channels(ctx context.Context) ([]announce.Channel, error) {
	chs, err := c.session.GuildChannels(c.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("listing guild channels: %w", err)
	}

	chs = slices.DeleteFunc(slices.Clone(chs), func(ch *discordgo.Channel) bool {
		return ch.Type != discordgo.ChannelTypeGuildText && ch.Type != discordgo.ChannelTypeGuildNews
	})
	slices.SortStableFunc(chs, func(a, b *discordgo.Channel) int {
		return a.Position - b.Position
	})

	channels := make([]announce.Channel, 0, len(chs))
	for _, ch := range chs {
		channels = append(channels, announce.Channel{ID: ch.ID, Name: ch.Name})
	}
	return channels, nil
}

// Send posts msg to the channel as an embed, with any attached files.
func (c *Client) Send(ctx context.Context, channelID string, msg announce.Message) error {
	data := &discordgo.MessageSend{
		Content: msg.Content,
		Embeds:  []*discordgo.MessageEmbed{toEmbed(msg.Embed)},
	}
	if msg.Content != "" {
		data.AllowedMentions = &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeEveryone},
		}
	}
	for _, f := range msg.Files {
		data.Files = append(data.Files, &discordgo.File{
			Name:        f.Name,
			ContentType: f.ContentType,
			Reader:      bytes.NewReader(f.Data),
		})
	}

	if _, err := c.session.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("sending message to %s: %w", channelID, err)
	}
	return nil
}

// Ban removes the user from the guild.
func (c *Client) Ban(ctx context.Context, userID, reason string) error {
	if err := c.session.GuildBanCreateWithReason(c.guildID, userID, reason, 0, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("banning %s: %w", userID, err)
	}
	c.logger.Info("member banned", "user_id", userID, "reason", reason)
	return nil
}

func toEmbed(e announce.Embed) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	if e.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	if !e.Timestamp.IsZero() {
		embed.Timestamp = e.Timestamp.Format(time.RFC3339)
	}
	return embed
}
