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

// createWarningsCommand creates the /mod warns subcommand
func createWarningsCommand() *discord.Command {
	return discord.NewCommand(
		"warns",
		"Historial de amonestaciones de un usuario",
		"mod",
		warningsHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "[STAFF] Usuario a buscar (opcional)",
			Required:    false,
		},
	).RequiresDatabase()
}

func warningsHandler(ctx *discord.CommandContext) error {
	// Goroutine para no bloquear el hilo principal
	go func() {
		defer errors.RecoverMiddleware()()

		// 1. Determinar objetivo y permisos
		targetUser := ctx.GetUserOption("usuario")
		isSelf := false

		perms, err := ctx.Session.UserChannelPermissions(ctx.User().ID, ctx.Interaction.ChannelID)
		if err != nil {
			perms = 0
		}
		isModerator := (perms & discordgo.PermissionManageMessages) != 0

		if targetUser == nil {
			targetUser = ctx.User()
			isSelf = true
		}

		// Si intenta ver el historial de otro y no es moderador
		if !isSelf && !isModerator {
			ctx.ReplyEphemeral("❌ No tienes permisos para ver el historial de otro usuario.")
			return
		}

		// 2. Feedback inicial (efímero)
		embedLoading := &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("🔖 - Historial de %s", targetUser.Username),
			Description: "Espere un momento mientras obtenemos el historial...",
			Color:       0x3498DB, // Blue
			Footer: &discordgo.MessageEmbedFooter{
				Text:    "💫 - Developed by PancyStudios",
				IconURL: ctx.Guild().IconURL(""),
			},
		}

		if err := ctx.ReplyEphemeralEmbed(embedLoading); err != nil {
			logger.Error(fmt.Sprintf("Error enviando reply inicial warns: %v", err), "CMD-Warns")
			return
		}

		// 3. Consultar historial
		svc := moderation.Get()
		if svc == nil {
			ctx.EditReply("❌ El servicio de moderación no está disponible.")
			return
		}

		history, err := svc.History(context.Background(), ctx.Interaction.GuildID, targetUser.ID)
		if err != nil {
			logger.Error(fmt.Sprintf("Error DB Warns: %v", err), "CMD-Warns")
			ctx.EditReply("❌ Error al consultar la base de datos.")
			return
		}

		// Los miembros solo ven sus entradas visibles; el staff lo ve todo
		visible := make([]models.Reprimand, 0, len(history))
		var totalWeight uint
		for _, r := range history {
			if !isModerator && (r.Status == models.StatusDeleted || r.Status == models.StatusHidden) {
				continue
			}
			if r.Kind == models.KindWarning && r.Status.Counts(false) {
				totalWeight += r.Count
			}
			visible = append(visible, r)
		}

		if len(visible) == 0 {
			ctx.EditReplyEmbed(&discordgo.MessageEmbed{
				Title:       fmt.Sprintf("🔖 - Historial de %s", targetUser.Username),
				Color:       0x00FF00, // Green
				Description: fmt.Sprintf("No se han encontrado amonestaciones del usuario en este servidor\n\n> 💫 - **Peso de advertencias:** 0\n> 🕒 - **Fecha de consulta:** <t:%d>", time.Now().Unix()),
				Footer: &discordgo.MessageEmbedFooter{
					Text:    "💫 - Developed by PancyStudios",
					IconURL: ctx.Guild().IconURL(""),
				},
			})
			return
		}

		// 4. Construir la lista
		embedList := &discordgo.MessageEmbed{
			Title: fmt.Sprintf("🔖 - Historial de %s (%s)", targetUser.Username, targetUser.ID),
			Color: 0xFFA500, // Orange
			Footer: &discordgo.MessageEmbedFooter{
				Text:    "💫 - Developed by PancyStudios",
				IconURL: ctx.Guild().IconURL(""),
			},
		}

		var description string
		shown := 0
		for _, r := range visible {
			if shown >= 15 {
				description += fmt.Sprintf("> ... y %d más\n\n", len(visible)-shown)
				break
			}
			shown++

			modName := "Oculto"
			if isModerator {
				modName = fmt.Sprintf("<@%s>", r.Action.ModeratorID)
			}

			line := fmt.Sprintf("> %s [%s] <t:%d:d>\n> **Razón:** %s\n> **Moderador:** %s\n> **ID:** `%s`\n",
				kindTitle(r.Kind), statusLabel(r.Status), r.StartedAt.Unix(), r.Reason, modName, r.ID)
			if r.Kind == models.KindWarning && r.Count > 1 {
				line += fmt.Sprintf("> **Peso:** %d\n", r.Count)
			}
			if r.ExpireAt != nil && r.EndedAt == nil {
				line += fmt.Sprintf("> **Expira:** <t:%d:R>\n", r.ExpireAt.Unix())
			}
			description += line + "\n"
		}

		description += fmt.Sprintf("> 💫 - **Peso de advertencias:** %d \n> 🕒 - **Fecha de consulta:** <t:%d>", totalWeight, time.Now().Unix())
		embedList.Description = description

		// 5. Enviar respuesta final
		ctx.EditReplyEmbed(embedList)
	}()

	return nil
}
