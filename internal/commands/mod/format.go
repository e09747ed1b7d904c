// Package mod - presentation helpers shared by the moderation commands
package mod

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

// kindTitle returns the embed title fragment for a reprimand kind.
func kindTitle(kind models.ReprimandKind) string {
	switch kind {
	case models.KindNote:
		return "📝 Nota"
	case models.KindNotice:
		return "📢 Aviso"
	case models.KindWarning:
		return "⚠️ Advertencia"
	case models.KindMute:
		return "🔇 Silencio"
	case models.KindBan:
		return "🔨 Baneo"
	case models.KindKick:
		return "👢 Expulsión"
	case models.KindCensored:
		return "🔒 Censura"
	default:
		return "❓ Desconocido"
	}
}

// kindColor returns the embed color for a reprimand kind.
func kindColor(kind models.ReprimandKind) int {
	switch kind {
	case models.KindNote:
		return 0x3498DB // Blue
	case models.KindNotice:
		return 0x1ABC9C // Teal
	case models.KindWarning:
		return 0xF1C40F // Gold
	case models.KindMute:
		return 0xE67E22 // Orange
	case models.KindBan:
		return 0xE74C3C // Red
	case models.KindKick:
		return 0xC0392B // Dark Red
	case models.KindCensored:
		return 0x9B59B6 // Purple
	default:
		return 0x95A5A6 // Grey
	}
}

// statusLabel returns the human label for a lifecycle status.
func statusLabel(status models.ReprimandStatus) string {
	switch status {
	case models.StatusAdded:
		return "Activa"
	case models.StatusUpdated:
		return "Actualizada"
	case models.StatusExpired:
		return "Expirada"
	case models.StatusPardoned:
		return "Perdonada"
	case models.StatusDeleted:
		return "Eliminada"
	case models.StatusHidden:
		return "Oculta"
	default:
		return "Desconocida"
	}
}

// formatDuration renders a duration the way moderators read it.
func formatDuration(d time.Duration) string {
	if d >= 24*time.Hour {
		days := int(d.Hours()) / 24
		hours := int(d.Hours()) % 24
		if hours == 0 {
			return fmt.Sprintf("%dd", days)
		}
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if d >= time.Hour {
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}

// reprimandEmbed builds the standard confirmation embed for a freshly
// issued reprimand.
func reprimandEmbed(ctx *discord.CommandContext, r *models.Reprimand, target *discordgo.User) *discordgo.MessageEmbed {
	description := fmt.Sprintf("> **Usuario:** %s\n> **Razón:** %s\n> **Moderador:** <@%s>",
		target.Username, r.Reason, r.Action.ModeratorID)

	if r.Kind == models.KindWarning {
		description += fmt.Sprintf("\n> **Peso:** %d", r.Count)
	}
	if r.ExpireAt != nil {
		description += fmt.Sprintf("\n> **Expira:** <t:%d:R>", r.ExpireAt.Unix())
	}
	description += fmt.Sprintf("\n\n> 🕒 <t:%d:F>\n> 🆔 `%s`", r.StartedAt.Unix(), r.ID)

	return &discordgo.MessageEmbed{
		Title:       kindTitle(r.Kind),
		Description: description,
		Color:       kindColor(r.Kind),
		Footer: &discordgo.MessageEmbedFooter{
			Text:    "💫 - Developed by PancyStudios",
			IconURL: ctx.Client.Session.State.User.AvatarURL(""),
		},
		Timestamp: r.StartedAt.Format(time.RFC3339),
	}
}

// cascadeEmbed builds the follow-up embed announcing an auto-escalation.
func cascadeEmbed(secondary *models.Reprimand, target *discordgo.User) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("⚡ Escalado automático: %s", kindTitle(secondary.Kind)),
		Description: fmt.Sprintf(
			"> **Usuario:** %s\n> El umbral de advertencias fue alcanzado y se aplicó una sanción automática.\n> 🆔 `%s`",
			target.Username, secondary.ID),
		Color:     kindColor(secondary.Kind),
		Timestamp: secondary.StartedAt.Format(time.RFC3339),
	}
}
