// Package commands provides utility commands for the bot.
package commands

import (
	"fmt"

	"github.com/PancyStudios/PancyModGo/pkg/database"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
)

// RegisterUtilCommands registers all utility commands
func RegisterUtilCommands(client *discord.ExtendedClient) {
	// Ping command
	pingCmd := discord.NewCommand(
		"ping",
		"Comprueba la latencia del bot",
		"util",
		func(ctx *discord.CommandContext) error {
			latency := ctx.Client.Session.HeartbeatLatency().Milliseconds()
			return ctx.Reply(fmt.Sprintf("🏓 Pong! Latencia: %dms", latency))
		},
	)
	client.CommandHandler.RegisterCommand(pingCmd)
	client.CommandHandler.AddGlobalCommand(pingCmd.ToApplicationCommand())

	// Status command
	statusCmd := discord.NewCommand(
		"status",
		"Muestra el estado del bot",
		"util",
		func(ctx *discord.CommandContext) error {
			db := database.Get()
			dbStatus, _ := db.GetStatus()

			return ctx.Reply(fmt.Sprintf(
				"📊 **Estado del Bot**\n"+
					"• Bot: 🟢 Online\n"+
					"• Base de datos: %s\n"+
					"• Servidores: %d",
				dbStatus,
				ctx.Client.GuildCount(),
			))
		},
	)
	client.CommandHandler.RegisterCommand(statusCmd)
	client.CommandHandler.AddGlobalCommand(statusCmd.ToApplicationCommand())

	// Help command
	helpCmd := discord.NewCommand(
		"help",
		"Muestra información de ayuda",
		"util",
		func(ctx *discord.CommandContext) error {
			return ctx.Reply(
				"📖 **Ayuda de PancyMod Go**\n\n" +
					"**Comandos disponibles:**\n" +
					"• `/ping` - Comprueba la latencia\n" +
					"• `/status` - Estado del bot\n" +
					"• `/mod warn <usuario> <razon>` - Advierte a un usuario\n" +
					"• `/mod mute <usuario> [duracion]` - Silencia a un usuario\n" +
					"• `/mod ban <usuario>` - Banea a un usuario\n" +
					"• `/mod kick <usuario>` - Expulsa a un usuario\n" +
					"• `/mod note <usuario> <razon>` - Nota interna\n" +
					"• `/mod warns [usuario]` - Historial de amonestaciones\n" +
					"• `/mod pardon <usuario> <id>` - Perdona una amonestación\n" +
					"• `/mod trigger add` - Configura escalado automático",
			)
		},
	)
	client.CommandHandler.RegisterCommand(helpCmd)
	client.CommandHandler.AddGlobalCommand(helpCmd.ToApplicationCommand())
}
