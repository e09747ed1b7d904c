// Package mod - /mod trigger add|list|remove commands
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
	"github.com/google/uuid"
)

// createTriggerAddCommand creates the /mod trigger add subcommand
func createTriggerAddCommand() *discord.Command {
	return discord.NewCommand(
		"add",
		"Configura un trigger de escalado automático",
		"mod",
		triggerAddHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "tipo",
			Description: "Sanción que aplica el trigger",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Advertencia", Value: string(models.TriggerWarning)},
				{Name: "Aviso", Value: string(models.TriggerNotice)},
				{Name: "Silencio", Value: string(models.TriggerMute)},
				{Name: "Baneo", Value: string(models.TriggerBan)},
				{Name: "Expulsión", Value: string(models.TriggerKick)},
			},
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "cantidad",
			Description: "Umbral de advertencias que dispara el trigger",
			Required:    true,
			MinValue:    func() *float64 { v := 1.0; return &v }(),
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "modo",
			Description: "Cuándo se dispara el trigger",
			Required:    false,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Exacto (solo al alcanzar el umbral)", Value: string(models.ModeExact)},
				{Name: "Retroactivo (al alcanzar o superar)", Value: string(models.ModeRetroactive)},
			},
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "duracion",
			Description: "Minutos de silencio cuando el trigger aplica un mute",
			Required:    false,
			MinValue:    func() *float64 { v := 1.0; return &v }(),
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "dias",
			Description: "Días de mensajes a eliminar cuando el trigger banea (0-7)",
			Required:    false,
			MinValue:    func() *float64 { v := 0.0; return &v }(),
			MaxValue:    7,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "categoria",
			Description: "Categoría a la que se limita el trigger (opcional)",
			Required:    false,
		},
	).WithUserPermissions(discordgo.PermissionAdministrator).RequiresDatabase()
}

func triggerAddHandler(ctx *discord.CommandContext) error {
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

		mode := models.TriggerMode(ctx.GetStringOption("modo"))
		if mode == "" {
			mode = models.ModeExact
		}

		trigger := &models.Trigger{
			ID:       uuid.New().String(),
			GuildID:  ctx.Interaction.GuildID,
			Kind:     models.TriggerKind(ctx.GetStringOption("tipo")),
			Mode:     mode,
			Amount:   uint(ctx.GetIntOption("cantidad")),
			Category: ctx.GetStringOption("categoria"),
			IsActive: true,
			Action: models.ModerationAction{
				ModeratorID: ctx.User().ID,
				GuildID:     ctx.Interaction.GuildID,
				Reason:      "Trigger configurado",
				Date:        time.Now(),
			},
			DeleteDays: uint(ctx.GetIntOption("dias")),
		}
		if minutes := ctx.GetIntOption("duracion"); minutes > 0 {
			length := time.Duration(minutes) * time.Minute
			trigger.Length = &length
		}

		if err := trigger.Validate(); err != nil {
			ctx.EditReply(fmt.Sprintf("❌ Trigger inválido: %v", err))
			return
		}

		if err := svc.Store().SaveTrigger(context.Background(), trigger); err != nil {
			logger.Error(fmt.Sprintf("Error guardando trigger: %v", err), "CMD-Trigger")
			ctx.EditReply("❌ Error al guardar el trigger.")
			return
		}

		ctx.EditReplyEmbed(&discordgo.MessageEmbed{
			Title: "⚡ Trigger configurado",
			Description: fmt.Sprintf(
				"> **Sanción:** %s\n> **Umbral:** %d advertencias\n> **Modo:** %s\n> **ID:** `%s`",
				trigger.Kind, trigger.Amount, trigger.Mode, trigger.ID),
			Color:     0x9B59B6, // Purple
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}()

	return nil
}

// createTriggerListCommand creates the /mod trigger list subcommand
func createTriggerListCommand() *discord.Command {
	return discord.NewCommand(
		"list",
		"Lista los triggers configurados en el servidor",
		"mod",
		triggerListHandler,
	).WithUserPermissions(discordgo.PermissionModerateMembers).RequiresDatabase()
}

func triggerListHandler(ctx *discord.CommandContext) error {
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

		triggers, err := svc.Store().Triggers(context.Background(), ctx.Interaction.GuildID)
		if err != nil {
			logger.Error(fmt.Sprintf("Error consultando triggers: %v", err), "CMD-Trigger")
			ctx.EditReply("❌ Error al consultar los triggers.")
			return
		}

		if len(triggers) == 0 {
			ctx.EditReply("ℹ️ No hay triggers configurados en este servidor.")
			return
		}

		var description string
		for _, t := range triggers {
			state := "🟢"
			if !t.IsActive {
				state = "🔴"
			}
			category := t.Category
			if category == models.CategoryAll {
				category = "global"
			}
			description += fmt.Sprintf("> %s **%s** al llegar a **%d** (%s, %s)\n> 🆔 `%s`\n\n",
				state, t.Kind, t.Amount, t.Mode, category, t.ID)
		}

		ctx.EditReplyEmbed(&discordgo.MessageEmbed{
			Title:       "⚡ Triggers del servidor",
			Description: description,
			Color:       0x9B59B6, // Purple
		})
	}()

	return nil
}

// createTriggerRemoveCommand creates the /mod trigger remove subcommand
func createTriggerRemoveCommand() *discord.Command {
	return discord.NewCommand(
		"remove",
		"Elimina un trigger del servidor",
		"mod",
		triggerRemoveHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "id",
			Description: "ID del trigger a eliminar",
			Required:    true,
		},
	).WithUserPermissions(discordgo.PermissionAdministrator).RequiresDatabase()
}

func triggerRemoveHandler(ctx *discord.CommandContext) error {
	triggerID := ctx.GetStringOption("id")
	if triggerID == "" {
		return ctx.ReplyEphemeral("❌ Debes especificar el ID del trigger.")
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

		// Las amonestaciones ya producidas por el trigger no se tocan
		if err := svc.Store().RemoveTrigger(context.Background(), ctx.Interaction.GuildID, triggerID); err != nil {
			logger.Error(fmt.Sprintf("Error eliminando trigger %s: %v", triggerID, err), "CMD-Trigger")
			ctx.EditReply("❌ Error al eliminar el trigger.")
			return
		}

		ctx.EditReply(fmt.Sprintf("✅ Trigger `%s` eliminado.", triggerID))
	}()

	return nil
}
