// Package mod - /mod mute command
package mod

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// createMuteCommand creates the /mod mute subcommand
func createMuteCommand() *discord.Command {
	return discord.NewCommand(
		"mute",
		"Silencia a un usuario temporalmente",
		"mod",
		muteHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a silenciar",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "duracion",
			Description: "Duración en minutos",
			Required:    false,
			MinValue:    func() *float64 { v := 1.0; return &v }(),
			MaxValue:    40320, // 28 days max
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón del silencio",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).
		WithBotPermissions(discordgo.PermissionModerateMembers).RequiresDatabase()
}

// muteHandler handles the /mod mute command
func muteHandler(ctx *discord.CommandContext) error {
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

		req := moderation.CreateRequest{
			Kind:        models.KindMute,
			GuildID:     ctx.Interaction.GuildID,
			UserID:      user.ID,
			ModeratorID: ctx.User().ID,
			Reason:      reason,
		}
		if minutes := ctx.GetIntOption("duracion"); minutes > 0 {
			length := time.Duration(minutes) * time.Minute
			req.Length = &length
		}

		r, err := svc.Create(context.Background(), req)
		if err != nil {
			if enfErr, ok := moderation.AsEnforcement(err); ok {
				// Record saved, timeout failed
				logger.Warn(fmt.Sprintf("Mute registrado pero sin aplicar: %v", err), "CMD-Mute")
				ctx.EditReply(fmt.Sprintf("⚠️ El silencio fue registrado pero Discord rechazó el timeout: %v", enfErr.Err))
				return
			}
			logger.Error(fmt.Sprintf("Error creando mute: %v", err), "CMD-Mute")
			ctx.EditReply(fmt.Sprintf("❌ Error al silenciar: %v", err))
			return
		}

		ctx.EditReplyEmbed(reprimandEmbed(ctx, r, user))
	}()

	return nil
}
