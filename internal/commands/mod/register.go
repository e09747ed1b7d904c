// Package mod provides moderation commands organized as subcommands under /mod
// Each command is in its own file for better organization
package mod

import (
	"github.com/PancyStudios/PancyModGo/pkg/discord"
)

// RegisterModCommands registers all moderation commands as /mod subcommands
func RegisterModCommands(client *discord.ExtendedClient) {
	// Create individual subcommands (each can be in its own file)
	banCmd := createBanCommand()
	kickCmd := createKickCommand()
	warnCmd := createWarnCommand()
	muteCmd := createMuteCommand()
	noteCmd := createNoteCommand()
	noticeCmd := createNoticeCommand()
	warningsCmd := createWarningsCommand()
	pardonCmd := createPardonCommand()
	deleteCmd := createDeleteCommand()
	hideCmd := createHideCommand()

	// Build the /mod command group with all subcommands
	modGroup := client.CommandHandler.BuildCommandGroup(
		"mod",
		"Comandos de moderación",
		banCmd,
		kickCmd,
		warnCmd,
		muteCmd,
		noteCmd,
		noticeCmd,
		warningsCmd,
		pardonCmd,
		deleteCmd,
		hideCmd,
	)

	// Attach the /mod trigger subcommand group
	triggerGroup := client.CommandHandler.BuildSubcommandGroup(
		"mod",
		"trigger",
		"Gestiona los triggers de escalado automático",
		createTriggerAddCommand(),
		createTriggerListCommand(),
		createTriggerRemoveCommand(),
	)
	modGroup.Options = append(modGroup.Options, triggerGroup)

	// Register the command group
	client.CommandHandler.AddGlobalCommand(modGroup)
}
