// Package models provides the data structures persisted by the bot.
package models

import (
	"fmt"
	"time"
)

// ReprimandKind identifies the concrete kind of a reprimand.
// The set is closed; every switch over it must carry an error default
// so an unknown kind is never silently dropped.
type ReprimandKind string

const (
	KindNote     ReprimandKind = "note"
	KindNotice   ReprimandKind = "notice"
	KindWarning  ReprimandKind = "warning"
	KindMute     ReprimandKind = "mute"
	KindBan      ReprimandKind = "ban"
	KindKick     ReprimandKind = "kick"
	KindCensored ReprimandKind = "censored"
)

// ReprimandKinds lists every valid reprimand kind.
var ReprimandKinds = []ReprimandKind{
	KindNote, KindNotice, KindWarning, KindMute, KindBan, KindKick, KindCensored,
}

// Valid reports whether k is a known reprimand kind.
func (k ReprimandKind) Valid() bool {
	switch k {
	case KindNote, KindNotice, KindWarning, KindMute, KindBan, KindKick, KindCensored:
		return true
	default:
		return false
	}
}

// ReprimandStatus is the lifecycle status of a reprimand.
type ReprimandStatus string

const (
	StatusUnknown  ReprimandStatus = ""
	StatusAdded    ReprimandStatus = "added"
	StatusUpdated  ReprimandStatus = "updated"
	StatusExpired  ReprimandStatus = "expired"
	StatusPardoned ReprimandStatus = "pardoned"
	StatusDeleted  ReprimandStatus = "deleted"
	StatusHidden   ReprimandStatus = "hidden"
)

// IsTerminal reports whether the status closes the reprimand's lifecycle.
// Terminal reprimands only accept a further transition to Deleted.
func (s ReprimandStatus) IsTerminal() bool {
	switch s {
	case StatusExpired, StatusPardoned, StatusDeleted:
		return true
	default:
		return false
	}
}

// Counts reports whether a reprimand in this status contributes to
// escalation counts. Hidden and Pardoned entries only count when the
// caller asks for them explicitly (countHidden).
func (s ReprimandStatus) Counts(countHidden bool) bool {
	if s == StatusDeleted || s == StatusUnknown {
		return false
	}
	if countHidden {
		return true
	}
	return s == StatusAdded || s == StatusUpdated
}

// CategoryAll is the empty category: the reprimand or trigger applies
// globally instead of being scoped to one moderation category.
const CategoryAll = ""

// ModerationAction records who did something, where, why and when.
type ModerationAction struct {
	ModeratorID string    `bson:"moderatorId" json:"moderatorId"`
	GuildID     string    `bson:"guildId" json:"guildId"`
	Reason      string    `bson:"reason" json:"reason"`
	Date        time.Time `bson:"date" json:"date"`
}

// Reprimand is a single disciplinary record against a guild member.
// Reprimands are never physically removed; Deleted and Hidden are
// status values. All status changes go through the moderation service.
type Reprimand struct {
	ID      string `bson:"_id" json:"id"`
	GuildID string `bson:"guildId" json:"guildId"`
	UserID  string `bson:"userId" json:"userId"`

	Kind     ReprimandKind   `bson:"kind" json:"kind"`
	Status   ReprimandStatus `bson:"status" json:"status"`
	Category string          `bson:"category,omitempty" json:"category,omitempty"`
	Reason   string          `bson:"reason" json:"reason"`

	// Action is the creating action; ModifiedAction is the most recent
	// status-changing modification and is overwritten on each change.
	Action         ModerationAction  `bson:"action" json:"action"`
	ModifiedAction *ModerationAction `bson:"modifiedAction,omitempty" json:"modifiedAction,omitempty"`

	// TriggerID back-references the trigger that produced this reprimand.
	// Empty for manually issued reprimands. Trigger-produced reprimands
	// never cascade again.
	TriggerID string `bson:"triggerId,omitempty" json:"triggerId,omitempty"`

	// ExternalID is the stable id of the record in the source system when
	// the reprimand was imported. Used to keep imports idempotent.
	ExternalID string `bson:"externalId,omitempty" json:"externalId,omitempty"`

	// Count is the point weight of a warning (>= 1). Zero for other kinds.
	Count uint `bson:"count,omitempty" json:"count,omitempty"`

	// DeleteDays is the message prune window of a ban.
	DeleteDays uint `bson:"deleteDays,omitempty" json:"deleteDays,omitempty"`

	// CensoredContent holds the offending message of a censor.
	CensoredContent string `bson:"censoredContent,omitempty" json:"censoredContent,omitempty"`

	StartedAt time.Time      `bson:"startedAt" json:"startedAt"`
	EndedAt   *time.Time     `bson:"endedAt,omitempty" json:"endedAt,omitempty"`
	ExpireAt  *time.Time     `bson:"expireAt,omitempty" json:"expireAt,omitempty"`
	Length    *time.Duration `bson:"length,omitempty" json:"length,omitempty"`
}

// Expirable reports whether this reprimand is time-boxed. Mutes and bans
// always are; a warning is expirable only when it was given a duration.
func (r *Reprimand) Expirable() bool {
	switch r.Kind {
	case KindMute, KindBan:
		return true
	case KindWarning:
		return r.ExpireAt != nil
	default:
		return false
	}
}

// IsActive reports whether the reprimand is still in force at now.
func (r *Reprimand) IsActive(now time.Time) bool {
	if r.EndedAt == nil {
		return true
	}
	return r.ExpireAt != nil && r.ExpireAt.After(now)
}

// Validate checks the construction invariants of a reprimand.
func (r *Reprimand) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("invalid reprimand kind %q", r.Kind)
	}
	if r.Status == StatusUnknown {
		return fmt.Errorf("reprimand %s has unknown status", r.ID)
	}
	if r.GuildID == "" || r.UserID == "" {
		return fmt.Errorf("reprimand %s is missing guild or user", r.ID)
	}
	if r.Kind == KindWarning && r.Count < 1 {
		return fmt.Errorf("warning %s has count %d, want >= 1", r.ID, r.Count)
	}
	if r.EndedAt != nil && !r.Status.IsTerminal() {
		return fmt.Errorf("reprimand %s has EndedAt but non-terminal status %s", r.ID, r.Status)
	}
	return nil
}

// InCategory reports whether the reprimand belongs to the given
// category. The global category matches everything.
func (r *Reprimand) InCategory(category string) bool {
	if category == CategoryAll {
		return true
	}
	return r.Category == category
}
