package models

import (
	"testing"
	"time"
)

func TestStatusIsTerminal(t *testing.T) {
	terminal := []ReprimandStatus{StatusExpired, StatusPardoned, StatusDeleted}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("Expected %s to be terminal", s)
		}
	}

	open := []ReprimandStatus{StatusAdded, StatusUpdated, StatusHidden, StatusUnknown}
	for _, s := range open {
		if s.IsTerminal() {
			t.Errorf("Expected %s to not be terminal", s)
		}
	}
}

func TestStatusCounts(t *testing.T) {
	tests := []struct {
		status      ReprimandStatus
		countHidden bool
		expected    bool
	}{
		{StatusAdded, false, true},
		{StatusUpdated, false, true},
		{StatusExpired, false, false},
		{StatusPardoned, false, false},
		{StatusHidden, false, false},
		{StatusDeleted, false, false},
		{StatusAdded, true, true},
		{StatusExpired, true, true},
		{StatusPardoned, true, true},
		{StatusHidden, true, true},
		{StatusDeleted, true, false},
		{StatusUnknown, true, false},
	}

	for _, tt := range tests {
		if got := tt.status.Counts(tt.countHidden); got != tt.expected {
			t.Errorf("Counts(%v) for %s = %v, expected %v", tt.countHidden, tt.status, got, tt.expected)
		}
	}
}

func TestKindValid(t *testing.T) {
	for _, k := range ReprimandKinds {
		if !k.Valid() {
			t.Errorf("Expected kind %s to be valid", k)
		}
	}
	if ReprimandKind("timeout").Valid() {
		t.Error("Expected unknown kind to be invalid")
	}
}

func TestExpirable(t *testing.T) {
	expireAt := time.Now().Add(time.Hour)

	mute := Reprimand{Kind: KindMute}
	if !mute.Expirable() {
		t.Error("Expected mutes to always be expirable")
	}

	ban := Reprimand{Kind: KindBan}
	if !ban.Expirable() {
		t.Error("Expected bans to always be expirable")
	}

	warning := Reprimand{Kind: KindWarning}
	if warning.Expirable() {
		t.Error("Expected warning without ExpireAt to not be expirable")
	}
	warning.ExpireAt = &expireAt
	if !warning.Expirable() {
		t.Error("Expected warning with ExpireAt to be expirable")
	}

	note := Reprimand{Kind: KindNote, ExpireAt: &expireAt}
	if note.Expirable() {
		t.Error("Expected notes to never be expirable")
	}
}

func TestReprimandValidate(t *testing.T) {
	valid := Reprimand{
		ID:      "r1",
		GuildID: "g1",
		UserID:  "u1",
		Kind:    KindWarning,
		Status:  StatusAdded,
		Count:   1,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid reprimand, got error: %v", err)
	}

	zeroCount := valid
	zeroCount.Count = 0
	if err := zeroCount.Validate(); err == nil {
		t.Error("Expected error for warning with zero count")
	}

	noGuild := valid
	noGuild.GuildID = ""
	if err := noGuild.Validate(); err == nil {
		t.Error("Expected error for missing guild")
	}

	badKind := valid
	badKind.Kind = "timeout"
	if err := badKind.Validate(); err == nil {
		t.Error("Expected error for unknown kind")
	}

	now := time.Now()
	endedOpen := valid
	endedOpen.EndedAt = &now
	if err := endedOpen.Validate(); err == nil {
		t.Error("Expected error for EndedAt on non-terminal status")
	}
	endedOpen.Status = StatusExpired
	endedOpen.Kind = KindMute
	endedOpen.Count = 0
	if err := endedOpen.Validate(); err != nil {
		t.Errorf("Expected closed mute to be valid, got: %v", err)
	}
}

func TestInCategory(t *testing.T) {
	r := Reprimand{Category: "spam"}
	if !r.InCategory(CategoryAll) {
		t.Error("Expected global category to match everything")
	}
	if !r.InCategory("spam") {
		t.Error("Expected matching category to apply")
	}
	if r.InCategory("toxicity") {
		t.Error("Expected different category to not apply")
	}
}
