// Package mod - /mod note and /mod notice commands
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

// createNoteCommand creates the /mod note subcommand. Notes are internal
// annotations: they never count toward escalation.
func createNoteCommand() *discord.Command {
	return discord.NewCommand(
		"note",
		"Añade una nota interna sobre un usuario",
		"mod",
		noteRecorder(models.KindNote),
	).WithOptions(noteOptions("Contenido de la nota")...).
		WithUserPermissions(discordgo.PermissionModerateMembers).RequiresDatabase()
}

// createNoticeCommand creates the /mod notice subcommand. Notices are
// formal observations visible to the member.
func createNoticeCommand() *discord.Command {
	return discord.NewCommand(
		"notice",
		"Registra un aviso formal sobre un usuario",
		"mod",
		noteRecorder(models.KindNotice),
	).WithOptions(noteOptions("Contenido del aviso")...).
		WithUserPermissions(discordgo.PermissionModerateMembers).RequiresDatabase()
}

func noteOptions(reasonDescription string) []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario objetivo",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "razon",
			Description: reasonDescription,
			Required:    true,
		},
	}
}

// noteRecorder builds the shared handler for note-like reprimands.
func noteRecorder(kind models.ReprimandKind) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		user := ctx.GetUserOption("usuario")
		if user == nil {
			return ctx.ReplyEphemeral("❌ Debes especificar un usuario.")
		}

		reason := ctx.GetStringOption("razon")
		if reason == "" {
			return ctx.ReplyEphemeral("❌ Debes especificar el contenido.")
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
				Kind:        kind,
				GuildID:     ctx.Interaction.GuildID,
				UserID:      user.ID,
				ModeratorID: ctx.User().ID,
				Reason:      reason,
			})
			if err != nil {
				logger.Error(fmt.Sprintf("Error creando %s: %v", kind, err), "CMD-Note")
				ctx.EditReply(fmt.Sprintf("❌ Error al registrar: %v", err))
				return
			}

			ctx.EditReplyEmbed(reprimandEmbed(ctx, r, user))
		}()

		return nil
	}
}
