// Package mod - /mod kick command
package mod

import (
	"context"
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// createKickCommand creates the /mod kick subcommand
func createKickCommand() *discord.Command {
	return discord.NewCommand(
		"kick",
		"Expulsa a un usuario del servidor",
		"mod",
		kickHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a expulsar",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón de la expulsión",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionKickMembers).
		WithBotPermissions(discordgo.PermissionKickMembers).RequiresDatabase()
}

// kickHandler handles the /mod kick command
func kickHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}

	reason := ctx.GetStringOption("razon")
	if reason == "" {
		reason = "Sin razón especificada"
	}

	if err := ctx.Defer(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		svc := moderation.Get()
		if svc == nil {
			ctx.EditReply("❌ El servicio de moderación no está disponible.")
			return
		}

		r, err := svc.Create(context.Background(), moderation.CreateRequest{
			Kind:        models.KindKick,
			GuildID:     ctx.Interaction.GuildID,
			UserID:      user.ID,
			ModeratorID: ctx.User().ID,
			Reason:      reason,
		})
		if err != nil {
			if enfErr, ok := moderation.AsEnforcement(err); ok {
				logger.Warn(fmt.Sprintf("Kick registrado pero sin aplicar: %v", err), "CMD-Kick")
				ctx.EditReply(fmt.Sprintf("⚠️ La expulsión fue registrada pero Discord la rechazó: %v", enfErr.Err))
				return
			}
			logger.Error(fmt.Sprintf("Error creando kick: %v", err), "CMD-Kick")
			ctx.EditReply(fmt.Sprintf("❌ Error al expulsar: %v", err))
			return
		}

		ctx.EditReplyEmbed(reprimandEmbed(ctx, r, user))
	}()

	return nil
}
