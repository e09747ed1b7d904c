// Package discord provides the platform enforcer for moderation actions.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// maxTimeout is the longest communication timeout Discord accepts.
// Indefinite mutes are clamped to it; the expiry scheduler re-applies
// nothing because the record itself carries no ExpireAt.
const maxTimeout = 28 * 24 * time.Hour

// Enforcer applies moderation decisions on Discord. Mutes use the
// communication timeout feature instead of a mute role.
type Enforcer struct {
	client *ExtendedClient
}

// NewEnforcer creates an Enforcer bound to the given client.
func NewEnforcer(client *ExtendedClient) *Enforcer {
	return &Enforcer{client: client}
}

// Mute times out a member until the given instant. A nil until is
// clamped to Discord's maximum timeout window.
func (e *Enforcer) Mute(ctx context.Context, guildID, userID string, until *time.Time) error {
	target := time.Now().Add(maxTimeout)
	if until != nil {
		target = *until
		if remaining := time.Until(target); remaining > maxTimeout {
			target = time.Now().Add(maxTimeout)
		}
	}

	err := e.client.Session.GuildMemberTimeout(guildID, userID, &target, discordgo.WithContext(ctx))
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo aplicar timeout a %s en %s: %v", userID, guildID, err), "Enforcer")
		return err
	}
	return nil
}

// Unmute clears a member's communication timeout.
func (e *Enforcer) Unmute(ctx context.Context, guildID, userID string) error {
	err := e.client.Session.GuildMemberTimeout(guildID, userID, nil, discordgo.WithContext(ctx))
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo quitar el timeout de %s en %s: %v", userID, guildID, err), "Enforcer")
		return err
	}
	return nil
}

// Ban bans a member, pruning up to deleteDays days of messages.
func (e *Enforcer) Ban(ctx context.Context, guildID, userID string, deleteDays uint, reason string) error {
	if deleteDays > 7 {
		deleteDays = 7
	}
	err := e.client.Session.GuildBanCreateWithReason(guildID, userID, reason, int(deleteDays), discordgo.WithContext(ctx))
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo banear a %s en %s: %v", userID, guildID, err), "Enforcer")
		return err
	}
	return nil
}

// Unban lifts a member's ban.
func (e *Enforcer) Unban(ctx context.Context, guildID, userID string) error {
	err := e.client.Session.GuildBanDelete(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo desbanear a %s en %s: %v", userID, guildID, err), "Enforcer")
		return err
	}
	return nil
}

// Kick removes a member from the guild.
func (e *Enforcer) Kick(ctx context.Context, guildID, userID string, reason string) error {
	err := e.client.Session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo expulsar a %s de %s: %v", userID, guildID, err), "Enforcer")
		return err
	}
	return nil
}
