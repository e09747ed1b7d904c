// Package events provides event handlers for moderation events
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/PancyStudios/PancyModGo/pkg/moderation"
	"github.com/bwmarrin/discordgo"
)

// RegisterModerationEvents registers handlers that reconcile moderation
// actions done directly through Discord (outside the bot's commands)
// into the reprimand history.
func RegisterModerationEvents(client *discord.ExtendedClient) {
	client.EventHandler.OnGuildBanAdd(onGuildBanAdd)
	client.EventHandler.OnGuildBanRemove(onGuildBanRemove)
}

// onGuildBanAdd records bans issued outside the bot
func onGuildBanAdd(s *discordgo.Session, b *discordgo.GuildBanAdd) {
	svc := moderation.Get()
	if svc == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	history, err := svc.History(ctx, b.GuildID, b.User.ID)
	if err != nil {
		logger.Error(fmt.Sprintf("Error consultando historial de %s: %v", b.User.ID, err), "ModEvents")
		return
	}
	for i := range history {
		r := &history[i]
		if r.Kind == models.KindBan && !r.Status.IsTerminal() {
			// The ban came from the bot itself, already on the books.
			return
		}
	}

	logger.Info(fmt.Sprintf("🔨 Baneo externo detectado: %s en servidor %s", b.User.ID, b.GuildID), "ModEvents")

	// The platform already applied the ban; At skips re-enforcement.
	now := time.Now()
	_, err = svc.Create(ctx, moderation.CreateRequest{
		Kind:        models.KindBan,
		GuildID:     b.GuildID,
		UserID:      b.User.ID,
		ModeratorID: config.Get().SystemActorID,
		Reason:      "[External Ban]",
		At:          &now,
	})
	if err != nil {
		logger.Error(fmt.Sprintf("Error registrando baneo externo de %s: %v", b.User.ID, err), "ModEvents")
	}
}

// onGuildBanRemove closes the open ban reprimand when someone unbans
// through Discord directly
func onGuildBanRemove(s *discordgo.Session, b *discordgo.GuildBanRemove) {
	svc := moderation.Get()
	if svc == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	history, err := svc.History(ctx, b.GuildID, b.User.ID)
	if err != nil {
		logger.Error(fmt.Sprintf("Error consultando historial de %s: %v", b.User.ID, err), "ModEvents")
		return
	}

	for i := range history {
		r := &history[i]
		if r.Kind != models.KindBan || r.Status.IsTerminal() {
			continue
		}

		logger.Info(fmt.Sprintf("🔓 Desbaneo externo detectado: %s en servidor %s", b.User.ID, b.GuildID), "ModEvents")

		// The platform already lifted the ban; At skips the unban call.
		now := time.Now()
		_, err := svc.Modify(ctx, r.GuildID, r.ID, moderation.ModifyRequest{
			Status:  models.StatusPardoned,
			ActorID: config.Get().SystemActorID,
			Reason:  "[External Unban]",
			At:      &now,
		})
		if err != nil {
			logger.Error(fmt.Sprintf("Error cerrando baneo %s: %v", r.ID, err), "ModEvents")
		}
		return
	}
}
