// Package commands provides a registry for organizing bot commands.
// Commands are organized in subdirectories by category (util, mod, etc.)
package commands

import (
	"github.com/PancyStudios/PancyModGo/internal/commands/mod"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
)

// RegisterAll registers all commands with the Discord client
// Add your command registration calls here
func RegisterAll(client *discord.ExtendedClient) {
	// Utility commands
	RegisterUtilCommands(client)

	// Moderation commands (/mod warn, /mod mute, /mod ban, /mod trigger ...)
	mod.RegisterModCommands(client)

	// Add more categories here as needed:
	// RegisterFunCommands(client)
}
