package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/mewoai/mewoai/internal/domain/member"
	"github.com/mewoai/mewoai/internal/validation"
)

// DefaultNoticeTTL is how long the media throttle notice stays visible.
const DefaultNoticeTTL = 3 * time.Second

// Bot turns gateway events into member service calls.
type Bot struct {
	session   Session
	client    *Client
	members   *member.Service
	validator *validation.Validator
	noticeTTL time.Duration
	logger    *slog.Logger
}

// BotOption configures a Bot.
type BotOption func(*Bot)

// WithNoticeTTL overrides how long throttle notices are kept.
func WithNoticeTTL(d time.Duration) BotOption {
	return func(b *Bot) { b.noticeTTL = d }
}

// NewBot creates a Bot.
func NewBot(session Session, client *Client, members *member.Service, logger *slog.Logger, opts ...BotOption) *Bot {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	b := &Bot{
		session:   session,
		client:    client,
		members:   members,
		validator: validation.New(),
		noticeTTL: DefaultNoticeTTL,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Handlers returns the gateway callbacks to register with AddHandler. Each
// callback runs with ctx so shutdown cancels in-flight work.
func (b *Bot) Handlers(ctx context.Context) []any {
	return []any{
		func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
			b.HandleInteraction(ctx, i.Interaction)
		},
		func(_ *discordgo.Session, m *discordgo.MessageCreate) {
			b.HandleMessage(ctx, m.Message)
		},
	}
}

type leaveInput struct {
	Reason string `json:"alasan" validate:"notblank,max=500"`
}

// HandleInteraction dispatches a slash command.
func (b *Bot) HandleInteraction(ctx context.Context, i *discordgo.Interaction) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	user := interactionUser(i)
	if user == nil {
		return
	}

	data := i.ApplicationCommandData()
	logger := b.logger.With("command", data.Name, "user_id", user.ID)
	logger.Debug("command received")

	var reply string
	switch data.Name {
	case CommandRegister:
		reply = b.register(ctx, logger, user, displayName(i))
	case CommandLeave:
		reply = b.requestLeave(ctx, logger, user, displayName(i), stringOption(data.Options, optionReason))
	case CommandBan:
		reply = b.ban(ctx, logger, i, userOption(data.Options, optionTarget))
	default:
		return
	}

	b.respond(logger, i, reply)
}

func (b *Bot) register(ctx context.Context, logger *slog.Logger, user *discordgo.User, name string) string {
	_, err := b.members.Register(ctx, user.ID, name)
	switch {
	case err == nil:
		return "✅ Registered, member role granted!"
	case errors.Is(err, member.ErrAlreadyRegistered):
		return "❌ You are already registered!"
	default:
		logger.Error("registration failed", "error", err)
		return "❌ Registration failed, try again later."
	}
}

func (b *Bot) requestLeave(ctx context.Context, logger *slog.Logger, user *discordgo.User, name, reason string) string {
	in := leaveInput{Reason: reason}
	if err := b.validator.Struct(in); err != nil {
		return "❌ " + b.validator.Message(err)
	}

	_, err := b.members.RequestLeave(ctx, user.ID, name, in.Reason)
	switch {
	case err == nil:
		return fmt.Sprintf("✅ Leave recorded: %q.", in.Reason)
	case errors.Is(err, member.ErrInvalidInput):
		return "❌ A reason is required."
	default:
		logger.Error("leave request failed", "error", err)
		return "❌ Could not record your leave, try again later."
	}
}

func (b *Bot) ban(ctx context.Context, logger *slog.Logger, i *discordgo.Interaction, targetID string) string {
	if i.Member == nil || i.Member.Permissions&discordgo.PermissionBanMembers == 0 {
		return "❌ You are not allowed to ban members."
	}
	if targetID == "" {
		return "❌ A target is required."
	}
	if err := b.client.Ban(ctx, targetID, "banned by "+i.Member.User.ID); err != nil {
		logger.Error("ban failed", "target_id", targetID, "error", err)
		return "❌ Ban failed."
	}
	return fmt.Sprintf("🔨 <@%s> has been banned.", targetID)
}

func (b *Bot) respond(logger *slog.Logger, i *discordgo.Interaction, content string) {
	err := b.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		logger.Warn("responding to interaction failed", "error", err)
	}
}

// HandleMessage awards xp for guild messages and enforces the media throttle.
func (b *Bot) HandleMessage(ctx context.Context, m *discordgo.Message) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	logger := b.logger.With("user_id", m.Author.ID, "channel_id", m.ChannelID)

	result, err := b.members.AccrueActivity(ctx, member.Activity{
		UserID:   m.Author.ID,
		Bot:      m.Author.Bot,
		HasMedia: len(m.Attachments) > 0,
	})
	if err != nil {
		logger.Error("xp accrual failed", "error", err)
		return
	}
	if !result.Suppressed {
		if result.XPAwarded > 0 {
			logger.Debug("xp awarded", "xp", result.XPAwarded)
		}
		return
	}

	if err := b.session.ChannelMessageDelete(m.ChannelID, m.ID, discordgo.WithContext(ctx)); err != nil {
		logger.Warn("deleting throttled message failed", "message_id", m.ID, "error", err)
	}

	notice, err := b.session.ChannelMessageSend(m.ChannelID,
		fmt.Sprintf("⚠️ <@%s>, wait 2 minutes before sending another image!", m.Author.ID),
		discordgo.WithContext(ctx))
	if err != nil {
		logger.Warn("sending throttle notice failed", "error", err)
		return
	}
	time.AfterFunc(b.noticeTTL, func() {
		if err := b.session.ChannelMessageDelete(notice.ChannelID, notice.ID); err != nil {
			logger.Warn("deleting throttle notice failed", "message_id", notice.ID, "error", err)
		}
	})
}

func interactionUser(i *discordgo.Interaction) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func displayName(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.DisplayName()
	}
	if i.User != nil {
		return i.User.DisplayName()
	}
	return ""
}

func stringOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, o := range opts {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionString {
			return o.StringValue()
		}
	}
	return ""
}

func userOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, o := range opts {
		if o.Name == name && o.Type == discordgo.ApplicationCommandOptionUser {
			return o.UserValue(nil).ID
		}
	}
	return ""
}
