package models

import "time"

// GuildUserEntity tracks a member inside one guild so reprimands can
// reference them. It is a query root, not mutable business state: the
// member's reprimand history lives in the reprimands collection keyed
// by (guildId, userId).
type GuildUserEntity struct {
	UserID    string    `bson:"userId" json:"userId"`
	GuildID   string    `bson:"guildId" json:"guildId"`
	Username  string    `bson:"username,omitempty" json:"username,omitempty"`
	TrackedAt time.Time `bson:"trackedAt" json:"trackedAt"`
}
