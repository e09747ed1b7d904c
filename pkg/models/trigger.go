package models

import (
	"fmt"
	"time"
)

// TriggerKind is the kind of reprimand a trigger produces when it fires.
type TriggerKind string

const (
	TriggerWarning TriggerKind = "warning"
	TriggerNotice  TriggerKind = "notice"
	TriggerMute    TriggerKind = "mute"
	TriggerBan     TriggerKind = "ban"
	TriggerKick    TriggerKind = "kick"
)

// Valid reports whether k is a known trigger kind.
func (k TriggerKind) Valid() bool {
	switch k {
	case TriggerWarning, TriggerNotice, TriggerMute, TriggerBan, TriggerKick:
		return true
	default:
		return false
	}
}

// Reprimand returns the reprimand kind this trigger creates.
func (k TriggerKind) Reprimand() (ReprimandKind, error) {
	switch k {
	case TriggerWarning:
		return KindWarning, nil
	case TriggerNotice:
		return KindNotice, nil
	case TriggerMute:
		return KindMute, nil
	case TriggerBan:
		return KindBan, nil
	case TriggerKick:
		return KindKick, nil
	default:
		return "", fmt.Errorf("unknown trigger kind %q", k)
	}
}

// TriggerMode controls how a trigger's threshold is compared.
type TriggerMode string

const (
	// ModeExact fires only when the count equals the threshold exactly.
	ModeExact TriggerMode = "exact"
	// ModeRetroactive fires once the count reaches or exceeds the threshold.
	ModeRetroactive TriggerMode = "retroactive"
)

// Trigger is a configured auto-escalation rule owned by one guild.
// Once a member's reprimand count crosses Amount, a secondary reprimand
// of the trigger's kind is created automatically.
type Trigger struct {
	ID      string `bson:"_id" json:"id"`
	GuildID string `bson:"guildId" json:"guildId"`

	Kind     TriggerKind `bson:"kind" json:"kind"`
	Mode     TriggerMode `bson:"mode" json:"mode"`
	Amount   uint        `bson:"amount" json:"amount"`
	Category string      `bson:"category,omitempty" json:"category,omitempty"`
	IsActive bool        `bson:"isActive" json:"isActive"`

	// Action records who configured the trigger.
	Action ModerationAction `bson:"action" json:"action"`

	// Length is the mute duration applied when a mute trigger fires.
	// Nil means indefinite.
	Length *time.Duration `bson:"length,omitempty" json:"length,omitempty"`

	// DeleteDays is the message prune window applied when a ban trigger fires.
	DeleteDays uint `bson:"deleteDays,omitempty" json:"deleteDays,omitempty"`
}

// IsTriggered reports whether the given count satisfies the trigger's
// threshold under its mode.
func (t *Trigger) IsTriggered(count uint) bool {
	switch t.Mode {
	case ModeExact:
		return count == t.Amount
	case ModeRetroactive:
		return count >= t.Amount
	default:
		return false
	}
}

// AppliesTo reports whether the trigger is in scope for the given
// category. Global triggers are always included.
func (t *Trigger) AppliesTo(category string) bool {
	if t.Category == CategoryAll {
		return true
	}
	return t.Category == category
}

// Validate checks the construction invariants of a trigger.
func (t *Trigger) Validate() error {
	if !t.Kind.Valid() {
		return fmt.Errorf("invalid trigger kind %q", t.Kind)
	}
	if t.Mode != ModeExact && t.Mode != ModeRetroactive {
		return fmt.Errorf("invalid trigger mode %q", t.Mode)
	}
	if t.Amount < 1 {
		return fmt.Errorf("trigger %s has amount %d, want >= 1", t.ID, t.Amount)
	}
	if t.GuildID == "" {
		return fmt.Errorf("trigger %s is missing guild", t.ID)
	}
	return nil
}
