// Package events provides a registry for organizing bot events.
// Events are organized by category (guild, member, moderation, etc.)
package events

import (
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
)

// RegisterAll registers all events with the Discord client
// Add your event registration calls here
func RegisterAll(client *discord.ExtendedClient) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	// Ready event (bot startup)
	RegisterReadyEvent(client)

	// Guild events (server join/leave)
	RegisterGuildEvents(client)

	// Member events (join/leave/update)
	RegisterMemberEvents(client)

	// Shard lifecycle events
	RegisterShardEvents(client)

	// Moderation reconciliation events (external bans/unbans)
	RegisterModerationEvents(client)

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
}
