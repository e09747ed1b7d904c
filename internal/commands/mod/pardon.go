// Package mod - /mod pardon, /mod delete and /mod hide commands
package mod

import (
	"context"
	"fmt"
	"time"

	stderrors "errors"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// createPardonCommand creates the /mod pardon subcommand
func createPardonCommand() *discord.Command {
	return discord.NewCommand(
		"pardon",
		"Perdona una amonestación de un usuario",
		"mod",
		statusHandler(models.StatusPardoned, "✅ Amonestación perdonada"),
	).WithOptions(reprimandIDOptions("Amonestación a perdonar")...).
		WithUserPermissions(discordgo.PermissionModerateMembers).
		WithAutoComplete(reprimandAutoComplete).RequiresDatabase()
}

// createDeleteCommand creates the /mod delete subcommand
func createDeleteCommand() *discord.Command {
	return discord.NewCommand(
		"delete",
		"Elimina una amonestación del historial visible",
		"mod",
		statusHandler(models.StatusDeleted, "🗑️ Amonestación eliminada"),
	).WithOptions(reprimandIDOptions("Amonestación a eliminar")...).
		WithUserPermissions(discordgo.PermissionModerateMembers).
		WithAutoComplete(reprimandAutoComplete).RequiresDatabase()
}

// createHideCommand creates the /mod hide subcommand
func createHideCommand() *discord.Command {
	return discord.NewCommand(
		"hide",
		"Oculta una amonestación sin eliminarla",
		"mod",
		statusHandler(models.StatusHidden, "🙈 Amonestación oculta"),
	).WithOptions(reprimandIDOptions("Amonestación a ocultar")...).
		WithUserPermissions(discordgo.PermissionModerateMembers).
		WithAutoComplete(reprimandAutoComplete).RequiresDatabase()
}

func reprimandIDOptions(idDescription string) []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario objetivo",
			Required:    true,
		},
		{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "id",
			Description:  idDescription,
			Required:     true,
			Autocomplete: true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: "Razón del cambio",
			Required:    false,
		},
	}
}

// statusHandler builds the shared handler for status transitions.
func statusHandler(status models.ReprimandStatus, successTitle string) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		targetUser := ctx.GetUserOption("usuario")
		reprimandID := ctx.GetStringOption("id")

		if targetUser == nil {
			return ctx.ReplyEphemeral("❌ Debes especificar un usuario válido.")
		}
		if reprimandID == "" {
			return ctx.ReplyEphemeral("❌ Debes especificar el ID de la amonestación.")
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

			r, err := svc.Modify(context.Background(), ctx.Interaction.GuildID, reprimandID, moderation.ModifyRequest{
				Status:  status,
				ActorID: ctx.User().ID,
				Reason:  reason,
			})
			if err != nil {
				switch {
				case stderrors.Is(err, moderation.ErrNotFound):
					ctx.EditReply("❌ No se encontró una amonestación con ese ID.")
				case stderrors.Is(err, moderation.ErrInvalidTransition):
					ctx.EditReply(fmt.Sprintf("❌ Transición no permitida: %v", err))
				default:
					logger.Error(fmt.Sprintf("Error modificando reprimand %s: %v", reprimandID, err), "CMD-Pardon")
					ctx.EditReply("❌ Error al actualizar la amonestación.")
				}
				return
			}

			ctx.EditReplyEmbed(&discordgo.MessageEmbed{
				Title: successTitle,
				Description: fmt.Sprintf(
					"> **Usuario:** %s\n> **Tipo:** %s\n> **Razón original:** %s\n> **Razón del cambio:** %s\n> **ID:** `%s`",
					targetUser.String(), kindTitle(r.Kind), r.Reason, reason, r.ID),
				Color: 0x00FF00, // Green
				Footer: &discordgo.MessageEmbedFooter{
					Text:    fmt.Sprintf("Solicitado por %s", ctx.User().String()),
					IconURL: ctx.User().AvatarURL(""),
				},
				Timestamp: time.Now().Format(time.RFC3339),
			})
		}()

		return nil
	}
}

// reprimandAutoComplete offers the target user's reprimand ids.
func reprimandAutoComplete(ctx *discord.CommandContext) {
	go func() {
		defer errors.RecoverMiddleware()()

		targetUser := ctx.GetUserOption("usuario")
		if targetUser == nil {
			return
		}

		svc := moderation.Get()
		if svc == nil {
			return
		}

		history, err := svc.History(context.Background(), ctx.Interaction.GuildID, targetUser.ID)
		if err != nil || len(history) == 0 {
			return
		}

		choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, 25)
		for i := len(history) - 1; i >= 0 && len(choices) < 25; i-- {
			r := history[i]
			if r.Status == models.StatusDeleted {
				continue
			}
			name := fmt.Sprintf("%s [%s] - %s", kindTitle(r.Kind), statusLabel(r.Status), r.Reason)
			if len(name) > 100 {
				name = name[:97] + "..."
			}
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  name,
				Value: r.ID,
			})
		}

		ctx.SendAutoCompleteChoices(choices)
	}()
}
