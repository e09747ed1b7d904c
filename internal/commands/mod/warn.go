// Package mod - /mod warn command
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

// createWarnCommand creates the /mod warn subcommand
func createWarnCommand() *discord.Command {
	return discord.NewCommand(
		"warn",
		"Advierte a un usuario",
		"mod",
		warnHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario a advertir",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón de la advertencia",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "peso",
			Description: "Peso de la advertencia (por defecto 1)",
			Required:    false,
			MinValue:    func() *float64 { v := 1.0; return &v }(),
			MaxValue:    10,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "duracion",
			Description: "Minutos hasta que expire (opcional)",
			Required:    false,
			MinValue:    func() *float64 { v := 1.0; return &v }(),
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "categoria",
			Description: "Categoría de moderación (opcional)",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionModerateMembers).RequiresDatabase()
}

// warnHandler handles the /mod warn command
func warnHandler(ctx *discord.CommandContext) error {
	user := ctx.GetUserOption("usuario")
	if user == nil {
		return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
	}

	reason := ctx.GetStringOption("razon")
	if reason == "" {
		return ctx.ReplyEphemeral("❌ Debes especificar una razón.")
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
			Kind:        models.KindWarning,
			GuildID:     ctx.Interaction.GuildID,
			UserID:      user.ID,
			ModeratorID: ctx.User().ID,
			Reason:      reason,
			Category:    ctx.GetStringOption("categoria"),
			Count:       uint(ctx.GetIntOption("peso")),
		}
		if minutes := ctx.GetIntOption("duracion"); minutes > 0 {
			length := time.Duration(minutes) * time.Minute
			req.Length = &length
		}

		bg := context.Background()
		r, err := svc.Create(bg, req)
		if err != nil {
			logger.Error(fmt.Sprintf("Error creando advertencia: %v", err), "CMD-Warn")
			ctx.EditReply(fmt.Sprintf("❌ Error al advertir: %v", err))
			return
		}

		ctx.EditReplyEmbed(reprimandEmbed(ctx, r, user))

		secondary, err := svc.ApplyTriggerCascade(bg, r)
		if err != nil {
			logger.Error(fmt.Sprintf("Error evaluando triggers: %v", err), "CMD-Warn")
			return
		}
		if secondary != nil {
			_, _ = ctx.Session.ChannelMessageSendEmbed(ctx.Interaction.ChannelID, cascadeEmbed(secondary, user))
		}
	}()

	return nil
}
