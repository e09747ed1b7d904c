package moderation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/models"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeEnforcer records platform calls and can be told to fail.
type fakeEnforcer struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (f *fakeEnforcer) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.fail {
		return errors.New("platform rejected the action")
	}
	return nil
}

func (f *fakeEnforcer) Mute(_ context.Context, _, userID string, _ *time.Time) error {
	return f.record("mute:" + userID)
}

func (f *fakeEnforcer) Unmute(_ context.Context, _, userID string) error {
	return f.record("unmute:" + userID)
}

func (f *fakeEnforcer) Ban(_ context.Context, _, userID string, _ uint, _ string) error {
	return f.record("ban:" + userID)
}

func (f *fakeEnforcer) Unban(_ context.Context, _, userID string) error {
	return f.record("unban:" + userID)
}

func (f *fakeEnforcer) Kick(_ context.Context, _, userID string, _ string) error {
	return f.record("kick:" + userID)
}

func (f *fakeEnforcer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// fakeNotifier counts lifecycle events.
type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) ReprimandChanged(r *models.Reprimand) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, string(r.Kind)+":"+string(r.Status))
}

func (f *fakeNotifier) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func newTestService(clock *fakeClock) (*Service, *MemoryStore, *fakeEnforcer, *fakeNotifier) {
	store := NewMemoryStore()
	enforcer := &fakeEnforcer{}
	notifier := &fakeNotifier{}
	svc := NewService(store, enforcer, notifier, Options{
		SystemActorID: "system",
		Clock:         clock.Now,
	})
	return svc, store, enforcer, notifier
}

func TestCreateWarningDefaults(t *testing.T) {
	clock := newFakeClock()
	svc, _, _, notifier := newTestService(clock)
	ctx := context.Background()

	r, err := svc.Create(ctx, CreateRequest{
		Kind:        models.KindWarning,
		GuildID:     "g1",
		UserID:      "u1",
		ModeratorID: "mod",
		Reason:      "spamming",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if r.Status != models.StatusAdded {
		t.Errorf("Expected status added, got %s", r.Status)
	}
	if r.Count != 1 {
		t.Errorf("Expected warning weight to default to 1, got %d", r.Count)
	}
	if !r.StartedAt.Equal(clock.Now()) {
		t.Errorf("Expected StartedAt %v, got %v", clock.Now(), r.StartedAt)
	}
	if r.ExpireAt != nil {
		t.Error("Expected no ExpireAt on an indefinite warning")
	}
	if notifier.Count() != 1 {
		t.Errorf("Expected 1 lifecycle event, got %d", notifier.Count())
	}
}

func TestCreateWithLengthSetsExpireAt(t *testing.T) {
	clock := newFakeClock()
	svc, _, enforcer, _ := newTestService(clock)
	length := 2 * time.Hour

	r, err := svc.Create(context.Background(), CreateRequest{
		Kind:        models.KindMute,
		GuildID:     "g1",
		UserID:      "u1",
		ModeratorID: "mod",
		Reason:      "flooding",
		Length:      &length,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := clock.Now().Add(length)
	if r.ExpireAt == nil || !r.ExpireAt.Equal(expected) {
		t.Errorf("Expected ExpireAt %v, got %v", expected, r.ExpireAt)
	}

	calls := enforcer.Calls()
	if len(calls) != 1 || calls[0] != "mute:u1" {
		t.Errorf("Expected a single mute call, got %v", calls)
	}
}

func TestCreateInvalidKind(t *testing.T) {
	svc, _, _, _ := newTestService(newFakeClock())

	_, err := svc.Create(context.Background(), CreateRequest{
		Kind:    "timeout",
		GuildID: "g1",
		UserID:  "u1",
	})
	if err == nil {
		t.Fatal("Expected error for unknown kind")
	}
}

func TestCreateTracksUnknownSubject(t *testing.T) {
	svc, store, _, _ := newTestService(newFakeClock())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{
		Kind:    models.KindNote,
		GuildID: "g1",
		UserID:  "nuevo",
		Reason:  "first contact",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	user, err := store.GetUser(ctx, "g1", "nuevo")
	if err != nil || user == nil {
		t.Fatalf("Expected subject to be tracked, got %v, %v", user, err)
	}
}

func TestEnforcementFailureKeepsRecord(t *testing.T) {
	svc, store, enforcer, _ := newTestService(newFakeClock())
	enforcer.fail = true
	ctx := context.Background()

	r, err := svc.Create(ctx, CreateRequest{
		Kind:        models.KindBan,
		GuildID:     "g1",
		UserID:      "u1",
		ModeratorID: "mod",
		Reason:      "raiding",
	})
	if err == nil {
		t.Fatal("Expected an enforcement error")
	}
	enfErr, ok := AsEnforcement(err)
	if !ok {
		t.Fatalf("Expected *EnforcementError, got %T: %v", err, err)
	}
	if enfErr.Kind != models.KindBan {
		t.Errorf("Expected failing kind ban, got %s", enfErr.Kind)
	}
	if r == nil {
		t.Fatal("Expected the reprimand to still be returned")
	}

	saved, err := store.GetReprimand(ctx, "g1", r.ID)
	if err != nil || saved == nil {
		t.Fatalf("Expected the record to be persisted, got %v, %v", saved, err)
	}
}

func TestHistoricalCreateSkipsEnforcement(t *testing.T) {
	clock := newFakeClock()
	svc, _, enforcer, _ := newTestService(clock)
	at := clock.Now().Add(-30 * 24 * time.Hour)

	_, err := svc.Create(context.Background(), CreateRequest{
		Kind:       models.KindMute,
		GuildID:    "g1",
		UserID:     "u1",
		Reason:     "imported",
		ExternalID: "ext-1",
		At:         &at,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if calls := enforcer.Calls(); len(calls) != 0 {
		t.Errorf("Expected no platform calls for a historical record, got %v", calls)
	}
}

func TestModifyPardonClosesAndLifts(t *testing.T) {
	clock := newFakeClock()
	svc, _, enforcer, _ := newTestService(clock)
	ctx := context.Background()
	length := time.Hour

	r, err := svc.Create(ctx, CreateRequest{
		Kind:        models.KindMute,
		GuildID:     "g1",
		UserID:      "u1",
		ModeratorID: "mod",
		Reason:      "flooding",
		Length:      &length,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	clock.Advance(10 * time.Minute)
	updated, err := svc.Modify(ctx, "g1", r.ID, ModifyRequest{
		Status:  models.StatusPardoned,
		ActorID: "mod2",
		Reason:  "appealed",
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if updated.Status != models.StatusPardoned {
		t.Errorf("Expected status pardoned, got %s", updated.Status)
	}
	if updated.EndedAt == nil || !updated.EndedAt.Equal(clock.Now()) {
		t.Errorf("Expected EndedAt %v, got %v", clock.Now(), updated.EndedAt)
	}
	if updated.Length == nil || *updated.Length != 10*time.Minute {
		t.Errorf("Expected served length 10m, got %v", updated.Length)
	}
	if updated.ModifiedAction == nil || updated.ModifiedAction.ModeratorID != "mod2" {
		t.Errorf("Expected ModifiedAction by mod2, got %v", updated.ModifiedAction)
	}

	calls := enforcer.Calls()
	if len(calls) != 2 || calls[1] != "unmute:u1" {
		t.Errorf("Expected the mute to be lifted, got %v", calls)
	}
}

func TestModifyTerminalOnlyAcceptsDeleted(t *testing.T) {
	clock := newFakeClock()
	svc, _, _, _ := newTestService(clock)
	ctx := context.Background()
	length := time.Hour

	r, _ := svc.Create(ctx, CreateRequest{
		Kind:    models.KindMute,
		GuildID: "g1",
		UserID:  "u1",
		Reason:  "flooding",
		Length:  &length,
	})
	if _, err := svc.Modify(ctx, "g1", r.ID, ModifyRequest{Status: models.StatusPardoned, ActorID: "mod"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	_, err := svc.Modify(ctx, "g1", r.ID, ModifyRequest{Status: models.StatusUpdated, ActorID: "mod"})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition reopening a pardoned reprimand, got %v", err)
	}

	if _, err := svc.Modify(ctx, "g1", r.ID, ModifyRequest{Status: models.StatusDeleted, ActorID: "mod"}); err != nil {
		t.Errorf("Expected terminal -> deleted to be allowed, got %v", err)
	}

	_, err = svc.Modify(ctx, "g1", r.ID, ModifyRequest{Status: models.StatusDeleted, ActorID: "mod"})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected double delete to be rejected, got %v", err)
	}
}

func TestModifyRejectsExpiringNonExpirable(t *testing.T) {
	svc, _, _, _ := newTestService(newFakeClock())
	ctx := context.Background()

	r, _ := svc.Create(ctx, CreateRequest{
		Kind:    models.KindNote,
		GuildID: "g1",
		UserID:  "u1",
		Reason:  "context",
	})

	_, err := svc.Modify(ctx, "g1", r.ID, ModifyRequest{Status: models.StatusExpired, ActorID: "system"})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition expiring a note, got %v", err)
	}
}

func TestModifyUnknownID(t *testing.T) {
	svc, _, _, _ := newTestService(newFakeClock())

	_, err := svc.Modify(context.Background(), "g1", "missing", ModifyRequest{
		Status:  models.StatusPardoned,
		ActorID: "mod",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLateExpiryEndsAtScheduledInstant(t *testing.T) {
	clock := newFakeClock()
	svc, _, _, _ := newTestService(clock)
	ctx := context.Background()
	length := time.Hour

	r, _ := svc.Create(ctx, CreateRequest{
		Kind:    models.KindMute,
		GuildID: "g1",
		UserID:  "u1",
		Reason:  "flooding",
		Length:  &length,
	})
	scheduled := *r.ExpireAt

	// The expiry is noticed two hours late.
	clock.Advance(3 * time.Hour)
	updated, err := svc.Modify(ctx, "g1", r.ID, ModifyRequest{
		Status:  models.StatusExpired,
		ActorID: "system",
		Reason:  ExpiredReason,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if updated.EndedAt == nil || !updated.EndedAt.Equal(scheduled) {
		t.Errorf("Expected EndedAt %v (scheduled), got %v", scheduled, updated.EndedAt)
	}
}

func TestDeleteKeepsRecordForAudit(t *testing.T) {
	svc, _, _, _ := newTestService(newFakeClock())
	ctx := context.Background()

	r, _ := svc.Create(ctx, CreateRequest{
		Kind:    models.KindWarning,
		GuildID: "g1",
		UserID:  "u1",
		Reason:  "spamming",
	})

	if err := svc.Delete(ctx, "g1", r.ID, "mod"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	history, err := svc.History(ctx, "g1", "u1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(history) != 1 || history[0].Status != models.StatusDeleted {
		t.Fatalf("Expected one deleted entry in history, got %v", history)
	}
}

func TestCascadeFiresOnce(t *testing.T) {
	svc, store, enforcer, _ := newTestService(newFakeClock())
	ctx := context.Background()

	length := 30 * time.Minute
	err := store.SaveTrigger(ctx, &models.Trigger{
		ID:       "t1",
		GuildID:  "g1",
		Kind:     models.TriggerMute,
		Mode:     models.ModeRetroactive,
		Amount:   2,
		IsActive: true,
		Length:   &length,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	first, _ := svc.Create(ctx, CreateRequest{
		Kind: models.KindWarning, GuildID: "g1", UserID: "u1", ModeratorID: "mod", Reason: "spam 1",
	})
	if secondary, _ := svc.ApplyTriggerCascade(ctx, first); secondary != nil {
		t.Fatalf("Expected no cascade below the threshold, got %v", secondary)
	}

	second, _ := svc.Create(ctx, CreateRequest{
		Kind: models.KindWarning, GuildID: "g1", UserID: "u1", ModeratorID: "mod", Reason: "spam 2",
	})
	secondary, err := svc.ApplyTriggerCascade(ctx, second)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if secondary == nil {
		t.Fatal("Expected the trigger to fire")
	}
	if secondary.Kind != models.KindMute {
		t.Errorf("Expected a mute, got %s", secondary.Kind)
	}
	if secondary.TriggerID != "t1" {
		t.Errorf("Expected trigger back-reference t1, got %q", secondary.TriggerID)
	}
	if secondary.Reason != TriggeredReason {
		t.Errorf("Expected reason %q, got %q", TriggeredReason, secondary.Reason)
	}
	if secondary.Action.ModeratorID != "system" {
		t.Errorf("Expected the system actor, got %q", secondary.Action.ModeratorID)
	}
	if secondary.ExpireAt == nil {
		t.Error("Expected the cascaded mute to carry the trigger's length")
	}
	if calls := enforcer.Calls(); len(calls) != 1 || calls[0] != "mute:u1" {
		t.Errorf("Expected the cascaded mute to be enforced, got %v", calls)
	}

	// The threshold was already handled; a further warning does not fire
	// the same trigger again while its output is on the books.
	third, _ := svc.Create(ctx, CreateRequest{
		Kind: models.KindWarning, GuildID: "g1", UserID: "u1", ModeratorID: "mod", Reason: "spam 3",
	})
	if again, _ := svc.ApplyTriggerCascade(ctx, third); again != nil {
		t.Fatalf("Expected suppression while the cascaded mute is live, got %v", again)
	}
}

func TestCascadeOutputNeverCascades(t *testing.T) {
	svc, store, _, _ := newTestService(newFakeClock())
	ctx := context.Background()

	_ = store.SaveTrigger(ctx, &models.Trigger{
		ID: "t1", GuildID: "g1", Kind: models.TriggerWarning,
		Mode: models.ModeRetroactive, Amount: 1, IsActive: true,
	})

	r, _ := svc.Create(ctx, CreateRequest{
		Kind: models.KindWarning, GuildID: "g1", UserID: "u1", Reason: "spam",
	})
	secondary, err := svc.ApplyTriggerCascade(ctx, r)
	if err != nil || secondary == nil {
		t.Fatalf("Expected the trigger to fire, got %v, %v", secondary, err)
	}

	tertiary, err := svc.ApplyTriggerCascade(ctx, secondary)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if tertiary != nil {
		t.Fatalf("Expected cascade output to never cascade again, got %v", tertiary)
	}
}

func TestConcurrentCascadeSingleFire(t *testing.T) {
	svc, store, _, _ := newTestService(newFakeClock())
	ctx := context.Background()

	_ = store.SaveTrigger(ctx, &models.Trigger{
		ID: "t1", GuildID: "g1", Kind: models.TriggerKick,
		Mode: models.ModeRetroactive, Amount: 3, IsActive: true,
	})

	const workers = 8
	var wg sync.WaitGroup
	fired := make(chan *models.Reprimand, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			r, err := svc.Create(ctx, CreateRequest{
				Kind: models.KindWarning, GuildID: "g1", UserID: "u1",
				ModeratorID: "mod", Reason: fmt.Sprintf("spam %d", n),
			})
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			secondary, err := svc.ApplyTriggerCascade(ctx, r)
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			if secondary != nil {
				fired <- secondary
			}
		}(i)
	}
	wg.Wait()
	close(fired)

	var count int
	for range fired {
		count++
	}
	if count != 1 {
		t.Fatalf("Expected exactly one cascade across racing events, got %d", count)
	}
}

func TestEnsureTrackedIdempotent(t *testing.T) {
	svc, store, _, _ := newTestService(newFakeClock())
	ctx := context.Background()

	if err := svc.EnsureTracked(ctx, "g1", "u1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	first, _ := store.GetUser(ctx, "g1", "u1")

	if err := svc.EnsureTracked(ctx, "g1", "u1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, _ := store.GetUser(ctx, "g1", "u1")

	if first == nil || second == nil || !first.TrackedAt.Equal(second.TrackedAt) {
		t.Errorf("Expected tracking to be idempotent, got %v and %v", first, second)
	}
}
