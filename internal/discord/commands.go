package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Slash command names.
const (
	CommandRegister = "regis"
	CommandLeave    = "izin"
	CommandBan      = "ban"

	optionReason = "alasan"
	optionTarget = "target"
)

// Commands returns the slash commands the bot serves.
func Commands() []*discordgo.ApplicationCommand {
	banPermission := int64(discordgo.PermissionBanMembers)
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandRegister,
			Description: "Register with MeWoai",
		},
		{
			Name:        CommandLeave,
			Description: "Request leave from the next attendance",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optionReason,
					Description: "Reason for the leave",
					Required:    true,
				},
			},
		},
		{
			Name:                     CommandBan,
			Description:              "Admin only",
			DefaultMemberPermissions: &banPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        optionTarget,
					Description: "Member to ban",
					Required:    true,
				},
			},
		},
	}
}

// SyncCommands replaces the guild's slash commands with Commands.
func SyncCommands(ctx context.Context, s Session, appID, guildID string) ([]*discordgo.ApplicationCommand, error) {
	created, err := s.ApplicationCommandBulkOverwrite(appID, guildID, Commands(), discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("syncing slash commands: %w", err)
	}
	return created, nil
}
