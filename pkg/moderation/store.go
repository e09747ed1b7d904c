// Package moderation implements the reprimand lifecycle, the trigger
// evaluation engine, the expiry scheduler and the import reconciler.
// Storage, platform enforcement and event delivery are collaborators
// supplied through interfaces.
package moderation

import (
	"context"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/models"
)

// Store is the persistence collaborator. Implementations must provide
// read-your-writes consistency within one logical operation.
type Store interface {
	// GetUser returns the tracked member, or nil when unknown.
	GetUser(ctx context.Context, guildID, userID string) (*models.GuildUserEntity, error)
	// TrackUser idempotently registers a member so reprimands can
	// reference it.
	TrackUser(ctx context.Context, guildID, userID string) (*models.GuildUserEntity, error)

	// History returns the member's full reprimand history ordered by
	// StartedAt ascending. Callers filter statuses themselves: audit
	// queries include Deleted entries, escalation counts do not.
	History(ctx context.Context, guildID, userID string) ([]models.Reprimand, error)

	GetReprimand(ctx context.Context, guildID, id string) (*models.Reprimand, error)
	// FindByExternalID resolves an imported record's stable source id,
	// or nil when the record was never imported.
	FindByExternalID(ctx context.Context, guildID, externalID string) (*models.Reprimand, error)
	// SaveReprimand upserts the reprimand.
	SaveReprimand(ctx context.Context, r *models.Reprimand) error

	// DueExpirable returns every non-terminal expirable reprimand whose
	// ExpireAt is at or before the given instant.
	DueExpirable(ctx context.Context, before time.Time) ([]models.Reprimand, error)

	Triggers(ctx context.Context, guildID string) ([]models.Trigger, error)
	SaveTrigger(ctx context.Context, t *models.Trigger) error
	RemoveTrigger(ctx context.Context, guildID, id string) error
}

// Enforcer applies reprimands on the chat platform. Failures are
// surfaced as EnforcementError but never roll back the record.
type Enforcer interface {
	Mute(ctx context.Context, guildID, userID string, until *time.Time) error
	Unmute(ctx context.Context, guildID, userID string) error
	Ban(ctx context.Context, guildID, userID string, deleteDays uint, reason string) error
	Unban(ctx context.Context, guildID, userID string) error
	Kick(ctx context.Context, guildID, userID string, reason string) error
}

// Notifier receives reprimand lifecycle events for external consumers
// (moderation log channels, MQTT bridges). Best effort.
type Notifier interface {
	ReprimandChanged(r *models.Reprimand)
}

// Clock supplies the current time. Injectable for tests.
type Clock func() time.Time
