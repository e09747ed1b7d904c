// Package mod - /mod ban command
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

// createBanCommand creates the /mod ban subcommand
func createBanCommand() *discord.Command {
	return discord.NewCommand(
		"ban",
		"Banea a un usuario del servidor",
		"mod",
		banHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a banear",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón del ban",
			Required:    false,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "dias",
			Description: "Días de mensajes a eliminar (0-7)",
			Required:    false,
			MinValue:    func() *float64 { v := 0.0; return &v }(),
			MaxValue:    7,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "duracion",
			Description: "Horas hasta que el ban expire (opcional, indefinido si se omite)",
			Required:    false,
			MinValue:    func() *float64 { v := 1.0; return &v }(),
		},
	).WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers).RequiresDatabase()
}

// banHandler handles the /mod ban command
func banHandler(ctx *discord.CommandContext) error {
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
			Kind:        models.KindBan,
			GuildID:     ctx.Interaction.GuildID,
			UserID:      user.ID,
			ModeratorID: ctx.User().ID,
			Reason:      reason,
			DeleteDays:  uint(ctx.GetIntOption("dias")),
		}
		if hours := ctx.GetIntOption("duracion"); hours > 0 {
			length := time.Duration(hours) * time.Hour
			req.Length = &length
		}

		r, err := svc.Create(context.Background(), req)
		if err != nil {
			if enfErr, ok := moderation.AsEnforcement(err); ok {
				logger.Warn(fmt.Sprintf("Ban registrado pero sin aplicar: %v", err), "CMD-Ban")
				ctx.EditReply(fmt.Sprintf("⚠️ El ban fue registrado pero Discord lo rechazó: %v", enfErr.Err))
				return
			}
			logger.Error(fmt.Sprintf("Error creando ban: %v", err), "CMD-Ban")
			ctx.EditReply(fmt.Sprintf("❌ Error al banear: %v", err))
			return
		}

		ctx.EditReplyEmbed(reprimandEmbed(ctx, r, user))
	}()

	return nil
}
