package moderation

import (
	"sort"

	"github.com/PancyStudios/PancyModGo/pkg/models"
)

// Evaluate decides whether any trigger in the pool fires for the given
// reprimand history, and returns the winning one or nil.
//
// Triggers escalate on the member's warning accumulation: warning-kind
// triggers compare against the weighted warning count (sum of Count),
// every other kind against the number of warning records. Deleted
// reprimands never count; whether Pardoned and Hidden ones do is the
// caller's choice through countHidden. Reprimands produced by a trigger
// are excluded from that same trigger's count but included for others.
//
// Among satisfied triggers the greatest Amount wins, so escalation
// always prefers the harshest applicable rule. Equal amounts are broken
// by id so the result is fully deterministic: the same history and pool
// always yield the same trigger.
//
// Pure function: no side effects, never blocks.
func Evaluate(history []models.Reprimand, category string, countHidden bool, pool []models.Trigger) *models.Trigger {
	candidates := make([]models.Trigger, 0, len(pool))
	for _, t := range pool {
		if !t.IsActive || !t.AppliesTo(category) {
			continue
		}
		if t.IsTriggered(tally(history, &t, countHidden)) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Amount != candidates[j].Amount {
			return candidates[i].Amount > candidates[j].Amount
		}
		return candidates[i].ID < candidates[j].ID
	})
	return &candidates[0]
}

// tally computes the warning accumulation the trigger is compared
// against.
func tally(history []models.Reprimand, t *models.Trigger, countHidden bool) uint {
	var count uint
	for i := range history {
		r := &history[i]
		if r.Kind != models.KindWarning {
			continue
		}
		if !r.Status.Counts(countHidden) {
			continue
		}
		// Scoped triggers count their own category; global triggers count
		// every category.
		if t.Category != models.CategoryAll && r.Category != t.Category {
			continue
		}
		if r.TriggerID == t.ID && t.ID != "" {
			continue
		}
		if t.Kind == models.TriggerWarning {
			count += r.Count
		} else {
			count++
		}
	}
	return count
}
