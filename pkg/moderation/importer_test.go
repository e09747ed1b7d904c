package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/models"
)

func importBase(clock *fakeClock) time.Time {
	return clock.Now().Add(-60 * 24 * time.Hour)
}

func TestImportBasicBatch(t *testing.T) {
	clock := newFakeClock()
	svc, _, enforcer, _ := newTestService(clock)
	ctx := context.Background()
	base := importBase(clock)

	records := []Record{
		{ExternalID: "e1", UserID: "u1", ModeratorID: "mod", Reason: "spam", Action: ActionWarn, Timestamp: base},
		{ExternalID: "e2", UserID: "u1", ModeratorID: "mod", Reason: "flooding", Action: ActionMute, Timestamp: base.Add(time.Hour)},
		{ExternalID: "e3", UserID: "u1", ModeratorID: "mod", Reason: "appealed", Action: ActionUnmute, Timestamp: base.Add(2 * time.Hour)},
	}

	result, err := NewReconciler(svc).Run(ctx, "g1", records)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Imported != 3 || result.Skipped != 0 || len(result.Failed) != 0 {
		t.Fatalf("Expected 3 imported, got %+v", result)
	}

	history, _ := svc.History(ctx, "g1", "u1")
	if len(history) != 2 {
		t.Fatalf("Expected 2 reprimands, got %d", len(history))
	}

	mute := history[1]
	if mute.Kind != models.KindMute {
		t.Fatalf("Expected the second entry to be the mute, got %s", mute.Kind)
	}
	if mute.Status != models.StatusPardoned {
		t.Errorf("Expected a human unmute to pardon, got %s", mute.Status)
	}
	if mute.EndedAt == nil || !mute.EndedAt.Equal(base.Add(2*time.Hour)) {
		t.Errorf("Expected EndedAt at the unmute instant, got %v", mute.EndedAt)
	}

	if calls := enforcer.Calls(); len(calls) != 0 {
		t.Errorf("Expected imports to never touch the platform, got %v", calls)
	}
}

func TestImportSystemCloserExpires(t *testing.T) {
	clock := newFakeClock()
	svc, _, _, _ := newTestService(clock)
	ctx := context.Background()
	base := importBase(clock)

	records := []Record{
		{ExternalID: "e1", UserID: "u1", ModeratorID: "mod", Reason: "raiding", Action: ActionBan, Timestamp: base},
		{ExternalID: "e2", UserID: "u1", Reason: "ban ran out", Action: ActionUnban, Timestamp: base.Add(24 * time.Hour)},
	}

	if _, err := NewReconciler(svc).Run(ctx, "g1", records); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	history, _ := svc.History(ctx, "g1", "u1")
	if len(history) != 1 || history[0].Status != models.StatusExpired {
		t.Fatalf("Expected a system unban to expire the ban, got %v", history)
	}
}

func TestImportOutOfOrderRecords(t *testing.T) {
	clock := newFakeClock()
	svc, _, _, _ := newTestService(clock)
	ctx := context.Background()
	base := importBase(clock)

	// The unmute arrives before its mute; chronological replay must
	// still match them.
	records := []Record{
		{ExternalID: "e2", UserID: "u1", ModeratorID: "mod", Reason: "appealed", Action: ActionUnmute, Timestamp: base.Add(time.Hour)},
		{ExternalID: "e1", UserID: "u1", ModeratorID: "mod", Reason: "flooding", Action: ActionMute, Timestamp: base},
	}

	result, err := NewReconciler(svc).Run(ctx, "g1", records)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Imported != 2 || len(result.Failed) != 0 {
		t.Fatalf("Expected both records to apply, got %+v", result)
	}

	history, _ := svc.History(ctx, "g1", "u1")
	if len(history) != 1 || history[0].Status != models.StatusPardoned {
		t.Fatalf("Expected the mute to be closed, got %v", history)
	}
}

func TestImportUnmatchedCloserFails(t *testing.T) {
	clock := newFakeClock()
	svc, _, _, _ := newTestService(clock)
	ctx := context.Background()
	base := importBase(clock)

	records := []Record{
		{ExternalID: "e1", UserID: "u1", ModeratorID: "mod", Reason: "no ban for this", Action: ActionUnban, Timestamp: base},
	}

	result, err := NewReconciler(svc).Run(ctx, "g1", records)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Imported != 0 || len(result.Failed) != 1 {
		t.Fatalf("Expected the orphan unban to fail, got %+v", result)
	}
	if result.Failed[0].ExternalID != "e1" {
		t.Errorf("Expected the failed record to be reported, got %v", result.Failed)
	}
}

func TestImportUnknownActionFails(t *testing.T) {
	clock := newFakeClock()
	svc, _, _, _ := newTestService(clock)
	base := importBase(clock)

	records := []Record{
		{ExternalID: "e1", UserID: "u1", Reason: "???", Action: "slap", Timestamp: base},
	}

	result, err := NewReconciler(svc).Run(context.Background(), "g1", records)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(result.Failed) != 1 {
		t.Fatalf("Expected the unknown action to fail, got %+v", result)
	}
}

func TestImportRerunIsIdempotent(t *testing.T) {
	clock := newFakeClock()
	svc, _, _, _ := newTestService(clock)
	ctx := context.Background()
	base := importBase(clock)

	records := []Record{
		{ExternalID: "e1", UserID: "u1", ModeratorID: "mod", Reason: "spam", Action: ActionWarn, Timestamp: base},
		{ExternalID: "e2", UserID: "u1", ModeratorID: "mod", Reason: "flooding", Action: ActionMute, Timestamp: base.Add(time.Hour)},
		{ExternalID: "e3", UserID: "u1", ModeratorID: "mod", Reason: "appealed", Action: ActionUnmute, Timestamp: base.Add(2 * time.Hour)},
	}

	rc := NewReconciler(svc)
	if _, err := rc.Run(ctx, "g1", records); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	result, err := rc.Run(ctx, "g1", records)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Imported != 0 || len(result.Failed) != 0 {
		t.Errorf("Expected a rerun to import nothing and fail nothing, got %+v", result)
	}
	if result.Skipped != 3 {
		t.Errorf("Expected all 3 records to be skipped, got %d", result.Skipped)
	}

	history, _ := svc.History(ctx, "g1", "u1")
	if len(history) != 2 {
		t.Fatalf("Expected the rerun to add no reprimands, got %d", len(history))
	}
}

func TestImportClosesSilentOpenRestrictions(t *testing.T) {
	clock := newFakeClock()
	svc, _, _, _ := newTestService(clock)
	ctx := context.Background()
	base := importBase(clock)

	// The source log ends with the mute still open.
	records := []Record{
		{ExternalID: "e1", UserID: "u1", ModeratorID: "mod", Reason: "flooding", Action: ActionMute, Timestamp: base},
	}

	if _, err := NewReconciler(svc).Run(ctx, "g1", records); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	history, _ := svc.History(ctx, "g1", "u1")
	if len(history) != 1 {
		t.Fatalf("Expected 1 reprimand, got %d", len(history))
	}
	mute := history[0]
	if mute.Status != models.StatusExpired {
		t.Errorf("Expected the open mute to be expired at batch end, got %s", mute.Status)
	}
	if mute.EndedAt == nil || !mute.EndedAt.Equal(clock.Now()) {
		t.Errorf("Expected EndedAt now, got %v", mute.EndedAt)
	}
	if mute.ModifiedAction == nil || mute.ModifiedAction.Reason != ExpiredReason {
		t.Errorf("Expected the expiry reason, got %v", mute.ModifiedAction)
	}
}

func TestImportMissingModeratorUsesSystemActor(t *testing.T) {
	clock := newFakeClock()
	svc, _, _, _ := newTestService(clock)
	ctx := context.Background()
	base := importBase(clock)

	records := []Record{
		{ExternalID: "e1", UserID: "u1", Reason: "spam", Action: ActionWarn, Timestamp: base},
	}

	if _, err := NewReconciler(svc).Run(ctx, "g1", records); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	history, _ := svc.History(ctx, "g1", "u1")
	if len(history) != 1 || history[0].Action.ModeratorID != "system" {
		t.Fatalf("Expected the system actor as moderator, got %v", history)
	}
}
