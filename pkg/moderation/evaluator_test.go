package moderation

import (
	"testing"

	"github.com/PancyStudios/PancyModGo/pkg/models"
)

func warning(id string, count uint, status models.ReprimandStatus, category string) models.Reprimand {
	return models.Reprimand{
		ID:       id,
		GuildID:  "g1",
		UserID:   "u1",
		Kind:     models.KindWarning,
		Status:   status,
		Category: category,
		Count:    count,
	}
}

func TestEvaluateWeightedWarningCount(t *testing.T) {
	history := []models.Reprimand{
		warning("r1", 2, models.StatusAdded, ""),
		warning("r2", 1, models.StatusAdded, ""),
	}
	pool := []models.Trigger{
		{ID: "t1", GuildID: "g1", Kind: models.TriggerMute, Mode: models.ModeExact, Amount: 3, IsActive: true},
	}

	got := Evaluate(history, models.CategoryAll, false, pool)
	if got == nil || got.ID != "t1" {
		t.Fatalf("Expected t1 to fire on weight 3, got %v", got)
	}
}

func TestEvaluateRecordCountForNonWarningTriggers(t *testing.T) {
	// Mute triggers count warning records, not their weight.
	history := []models.Reprimand{
		warning("r1", 5, models.StatusAdded, ""),
		warning("r2", 5, models.StatusAdded, ""),
	}
	pool := []models.Trigger{
		{ID: "t1", GuildID: "g1", Kind: models.TriggerMute, Mode: models.ModeExact, Amount: 2, IsActive: true},
		{ID: "t2", GuildID: "g1", Kind: models.TriggerWarning, Mode: models.ModeExact, Amount: 2, IsActive: true},
	}

	got := Evaluate(history, models.CategoryAll, false, pool)
	if got == nil || got.ID != "t1" {
		t.Fatalf("Expected t1 (2 records), got %v", got)
	}
}

func TestEvaluateExactVsRetroactive(t *testing.T) {
	history := []models.Reprimand{
		warning("r1", 1, models.StatusAdded, ""),
		warning("r2", 1, models.StatusAdded, ""),
		warning("r3", 1, models.StatusAdded, ""),
		warning("r4", 1, models.StatusAdded, ""),
	}
	pool := []models.Trigger{
		{ID: "exact", GuildID: "g1", Kind: models.TriggerMute, Mode: models.ModeExact, Amount: 3, IsActive: true},
		{ID: "retro", GuildID: "g1", Kind: models.TriggerMute, Mode: models.ModeRetroactive, Amount: 3, IsActive: true},
	}

	// Count is 4: the exact trigger missed its instant, the retroactive
	// one still fires.
	got := Evaluate(history, models.CategoryAll, false, pool)
	if got == nil || got.ID != "retro" {
		t.Fatalf("Expected retroactive trigger, got %v", got)
	}
}

func TestEvaluateHighestAmountWins(t *testing.T) {
	history := []models.Reprimand{
		warning("r1", 3, models.StatusAdded, ""),
		warning("r2", 3, models.StatusAdded, ""),
	}
	pool := []models.Trigger{
		{ID: "harsh", GuildID: "g1", Kind: models.TriggerWarning, Mode: models.ModeRetroactive, Amount: 3, IsActive: true},
		{ID: "mild", GuildID: "g1", Kind: models.TriggerBan, Mode: models.ModeRetroactive, Amount: 2, IsActive: true},
	}

	// Both fire (weight 6 >= 3, records 2 >= 2); the greater Amount wins.
	got := Evaluate(history, models.CategoryAll, false, pool)
	if got == nil || got.ID != "harsh" {
		t.Fatalf("Expected the trigger with the greater amount, got %v", got)
	}
}

func TestEvaluateEqualAmountTieBreaksByID(t *testing.T) {
	history := []models.Reprimand{
		warning("r1", 1, models.StatusAdded, ""),
		warning("r2", 1, models.StatusAdded, ""),
	}
	pool := []models.Trigger{
		{ID: "bbb", GuildID: "g1", Kind: models.TriggerMute, Mode: models.ModeRetroactive, Amount: 2, IsActive: true},
		{ID: "aaa", GuildID: "g1", Kind: models.TriggerKick, Mode: models.ModeRetroactive, Amount: 2, IsActive: true},
	}

	for i := 0; i < 10; i++ {
		got := Evaluate(history, models.CategoryAll, false, pool)
		if got == nil || got.ID != "aaa" {
			t.Fatalf("Expected deterministic winner aaa, got %v", got)
		}
	}
}

func TestEvaluateCountHidden(t *testing.T) {
	history := []models.Reprimand{
		warning("r1", 1, models.StatusAdded, ""),
		warning("r2", 1, models.StatusPardoned, ""),
		warning("r3", 1, models.StatusHidden, ""),
		warning("r4", 1, models.StatusDeleted, ""),
	}
	pool := []models.Trigger{
		{ID: "t1", GuildID: "g1", Kind: models.TriggerMute, Mode: models.ModeRetroactive, Amount: 3, IsActive: true},
	}

	if got := Evaluate(history, models.CategoryAll, false, pool); got != nil {
		t.Fatalf("Expected no trigger when hidden entries do not count, got %v", got)
	}

	// Pardoned and Hidden now count, Deleted still never does.
	got := Evaluate(history, models.CategoryAll, true, pool)
	if got == nil || got.ID != "t1" {
		t.Fatalf("Expected trigger to fire with countHidden, got %v", got)
	}
}

func TestEvaluateCategoryScoping(t *testing.T) {
	history := []models.Reprimand{
		warning("r1", 1, models.StatusAdded, "spam"),
		warning("r2", 1, models.StatusAdded, "toxicity"),
		warning("r3", 1, models.StatusAdded, ""),
	}
	pool := []models.Trigger{
		{ID: "spam", GuildID: "g1", Kind: models.TriggerMute, Mode: models.ModeRetroactive, Amount: 2, Category: "spam", IsActive: true},
		{ID: "global", GuildID: "g1", Kind: models.TriggerKick, Mode: models.ModeRetroactive, Amount: 3, IsActive: true},
	}

	// Evaluating in the spam category: the scoped trigger only counts its
	// category (1 warning, does not fire), the global one counts all 3.
	got := Evaluate(history, "spam", false, pool)
	if got == nil || got.ID != "global" {
		t.Fatalf("Expected the global trigger, got %v", got)
	}

	// The scoped trigger is out of scope for a different category.
	history = append(history, warning("r4", 1, models.StatusAdded, "spam"))
	if got := Evaluate(history, "toxicity", false, pool[:1]); got != nil {
		t.Fatalf("Expected scoped trigger to stay out of scope, got %v", got)
	}
}

func TestEvaluateExcludesOwnOutput(t *testing.T) {
	cascaded := warning("r3", 1, models.StatusAdded, "")
	cascaded.TriggerID = "t1"

	history := []models.Reprimand{
		warning("r1", 1, models.StatusAdded, ""),
		warning("r2", 1, models.StatusAdded, ""),
		cascaded,
	}
	pool := []models.Trigger{
		{ID: "t1", GuildID: "g1", Kind: models.TriggerWarning, Mode: models.ModeExact, Amount: 3, IsActive: true},
		{ID: "t2", GuildID: "g1", Kind: models.TriggerMute, Mode: models.ModeExact, Amount: 3, IsActive: true},
	}

	// t1 ignores its own output (count 2); t2 sees all 3 records.
	got := Evaluate(history, models.CategoryAll, false, pool)
	if got == nil || got.ID != "t2" {
		t.Fatalf("Expected t2 which counts the cascaded warning, got %v", got)
	}
}

func TestEvaluateInactiveTriggerIgnored(t *testing.T) {
	history := []models.Reprimand{warning("r1", 5, models.StatusAdded, "")}
	pool := []models.Trigger{
		{ID: "t1", GuildID: "g1", Kind: models.TriggerMute, Mode: models.ModeRetroactive, Amount: 1, IsActive: false},
	}

	if got := Evaluate(history, models.CategoryAll, false, pool); got != nil {
		t.Fatalf("Expected inactive trigger to never fire, got %v", got)
	}
}
