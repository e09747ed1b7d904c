package moderation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"github.com/google/uuid"
)

// ExpiredReason is the reason stamped on automatic expirations, both by
// the scheduler and by the import reconciler.
const ExpiredReason = "[Reprimand Expired]"

// TriggeredReason is the reason stamped on cascade-created reprimands.
const TriggeredReason = "[Warning Trigger]"

// Options configures the moderation service.
type Options struct {
	// SystemActorID identifies automatic actions (expiry, import
	// closure). A closer with this actor expires instead of pardons.
	SystemActorID string
	// CountHidden controls whether Pardoned/Hidden reprimands count
	// toward escalation.
	CountHidden bool
	// LockIdle is the idle window after which per-subject locks are
	// evicted.
	LockIdle time.Duration
	// Clock overrides the time source. Defaults to time.Now.
	Clock Clock
}

// Service is the reprimand lifecycle manager. All mutating operations on
// one (guild, user) pair are serialized through a per-subject lock, so
// two racing events can never fire the same trigger twice or interleave
// status transitions.
type Service struct {
	store    Store
	enforcer Enforcer
	notifier Notifier
	opts     Options
	now      Clock
	locks    *subjectLocks
}

var (
	service *Service
	svcOnce sync.Once
)

// Init initializes the global moderation service.
func Init(store Store, enforcer Enforcer, notifier Notifier, opts Options) *Service {
	svcOnce.Do(func() {
		service = NewService(store, enforcer, notifier, opts)
	})
	return service
}

// Get returns the global moderation service.
func Get() *Service {
	return service
}

// NewService creates a moderation service. enforcer and notifier may be
// nil (batch import has no platform to enforce on).
func NewService(store Store, enforcer Enforcer, notifier Notifier, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.LockIdle <= 0 {
		opts.LockIdle = 10 * time.Minute
	}
	return &Service{
		store:    store,
		enforcer: enforcer,
		notifier: notifier,
		opts:     opts,
		now:      opts.Clock,
		locks:    newSubjectLocks(opts.LockIdle),
	}
}

// Store exposes the persistence collaborator for read-only consumers
// (web API, history commands).
func (s *Service) Store() Store { return s.store }

// CreateRequest describes a reprimand to create.
type CreateRequest struct {
	Kind        models.ReprimandKind
	GuildID     string
	UserID      string
	ModeratorID string
	Reason      string
	Category    string

	// Length time-boxes an expirable reprimand. Nil means indefinite.
	Length *time.Duration

	// Count is the warning weight; defaults to 1 for warnings.
	Count uint
	// DeleteDays is the ban message prune window.
	DeleteDays uint
	// CensoredContent is the offending message for censors.
	CensoredContent string

	// TriggerID marks the reprimand as cascade-created. Set by
	// ApplyTriggerCascade, never by callers.
	TriggerID string
	// ExternalID is the stable source id of an imported record.
	ExternalID string
	// At backdates the reprimand to a historical instant (import).
	// Historical reprimands skip platform enforcement.
	At *time.Time
}

// Create constructs a new reprimand in Added status, persists it, and
// applies the platform side effect for mute/ban/kick kinds. An unknown
// subject is tracked once and retried before giving up. The returned
// error may be an *EnforcementError, in which case the reprimand was
// still persisted.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Reprimand, error) {
	unlock := s.locks.Lock(req.GuildID, req.UserID)
	defer unlock()

	return s.createLocked(ctx, req)
}

// createLocked is Create's body; the caller holds the subject lock.
func (s *Service) createLocked(ctx context.Context, req CreateRequest) (*models.Reprimand, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("create: invalid reprimand kind %q", req.Kind)
	}

	if err := s.ensureTracked(ctx, req.GuildID, req.UserID); err != nil {
		return nil, err
	}

	now := s.now()
	startedAt := now
	if req.At != nil {
		startedAt = *req.At
	}

	r := &models.Reprimand{
		ID:      uuid.New().String(),
		GuildID: req.GuildID,
		UserID:  req.UserID,

		Kind:     req.Kind,
		Status:   models.StatusAdded,
		Category: req.Category,
		Reason:   req.Reason,

		Action: models.ModerationAction{
			ModeratorID: req.ModeratorID,
			GuildID:     req.GuildID,
			Reason:      req.Reason,
			Date:        startedAt,
		},

		TriggerID:       req.TriggerID,
		ExternalID:      req.ExternalID,
		DeleteDays:      req.DeleteDays,
		CensoredContent: req.CensoredContent,
		StartedAt:       startedAt,
	}

	if req.Kind == models.KindWarning {
		r.Count = req.Count
		if r.Count < 1 {
			r.Count = 1
		}
	}
	if req.Length != nil {
		expireAt := startedAt.Add(*req.Length)
		r.ExpireAt = &expireAt
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.SaveReprimand(ctx, r); err != nil {
		return nil, fmt.Errorf("create: persisting reprimand: %w", err)
	}
	s.notify(r)

	// Historical records are already enforced (or long moot) on the
	// source system; re-punishing on import would be wrong.
	if req.At != nil {
		return r, nil
	}
	if err := s.enforce(ctx, r); err != nil {
		return r, err
	}
	return r, nil
}

// ApplyTriggerCascade evaluates the subject's updated history against
// the guild's trigger pool and, when one fires, creates the secondary
// reprimand it specifies. Cascade-created reprimands never cascade
// again, and a trigger that already produced a live reprimand for the
// subject is not fired a second time. Returns nil when no cascade
// happened.
func (s *Service) ApplyTriggerCascade(ctx context.Context, r *models.Reprimand) (*models.Reprimand, error) {
	if r.TriggerID != "" {
		// Trigger-caused reprimands are non-triggering by construction.
		return nil, nil
	}

	unlock := s.locks.Lock(r.GuildID, r.UserID)
	defer unlock()

	history, err := s.store.History(ctx, r.GuildID, r.UserID)
	if err != nil {
		return nil, fmt.Errorf("cascade: loading history: %w", err)
	}
	pool, err := s.store.Triggers(ctx, r.GuildID)
	if err != nil {
		return nil, fmt.Errorf("cascade: loading triggers: %w", err)
	}

	trigger := Evaluate(history, r.Category, s.opts.CountHidden, pool)
	if trigger == nil {
		logger.Debug(fmt.Sprintf("No trigger fired for %s in guild %s", r.UserID, r.GuildID), "Moderation")
		return nil, nil
	}

	// A threshold is crossed once. If the trigger already produced a
	// reprimand that is still on the books, this crossing was handled.
	for i := range history {
		prev := &history[i]
		if prev.TriggerID == trigger.ID && prev.Status != models.StatusDeleted {
			logger.Debug(fmt.Sprintf("Trigger %s already fired for %s, skipping cascade", trigger.ID, r.UserID), "Moderation")
			return nil, nil
		}
	}

	kind, err := trigger.Kind.Reprimand()
	if err != nil {
		return nil, err
	}

	req := CreateRequest{
		Kind:        kind,
		GuildID:     r.GuildID,
		UserID:      r.UserID,
		ModeratorID: s.opts.SystemActorID,
		Reason:      TriggeredReason,
		Category:    trigger.Category,
		TriggerID:   trigger.ID,
	}
	switch trigger.Kind {
	case models.TriggerMute:
		req.Length = trigger.Length
	case models.TriggerBan:
		req.DeleteDays = trigger.DeleteDays
	case models.TriggerWarning:
		req.Count = 1
	case models.TriggerNotice, models.TriggerKick:
		// no extra parameters
	default:
		return nil, fmt.Errorf("cascade: unknown trigger kind %q", trigger.Kind)
	}

	logger.Info(fmt.Sprintf("Trigger %s (amount %d) fired for %s in guild %s, creating %s",
		trigger.ID, trigger.Amount, r.UserID, r.GuildID, kind), "Moderation")

	// The subject lock is held; create inline without re-locking.
	return s.createLocked(ctx, req)
}

// ModifyRequest describes a status transition.
type ModifyRequest struct {
	Status  models.ReprimandStatus
	ActorID string
	Reason  string
	// At backdates the transition (import closure). EndedAt for
	// expirations still prefers the original ExpireAt when it is in
	// the past.
	At *time.Time
}

// Modify applies a status transition to the reprimand with the given id.
// Transitions that violate the state machine return ErrInvalidTransition
// and perform no mutation. Re-entering Updated overwrites ModifiedAction
// rather than stacking history.
func (s *Service) Modify(ctx context.Context, guildID, id string, req ModifyRequest) (*models.Reprimand, error) {
	r, err := s.store.GetReprimand(ctx, guildID, id)
	if err != nil {
		return nil, fmt.Errorf("modify: loading reprimand: %w", err)
	}
	if r == nil {
		return nil, ErrNotFound
	}

	unlock := s.locks.Lock(r.GuildID, r.UserID)
	defer unlock()

	// Re-read under the lock; a concurrent transition may have won.
	r, err = s.store.GetReprimand(ctx, guildID, id)
	if err != nil {
		return nil, fmt.Errorf("modify: reloading reprimand: %w", err)
	}
	if r == nil {
		return nil, ErrNotFound
	}

	return s.modifyLocked(ctx, r, req)
}

// modifyLocked applies the transition to an already-loaded reprimand.
// The caller holds the subject lock.
func (s *Service) modifyLocked(ctx context.Context, r *models.Reprimand, req ModifyRequest) (*models.Reprimand, error) {
	if err := s.checkTransition(r, req.Status); err != nil {
		return nil, err
	}

	now := s.now()
	at := now
	if req.At != nil {
		at = *req.At
	}

	r.Status = req.Status
	r.ModifiedAction = &models.ModerationAction{
		ModeratorID: req.ActorID,
		GuildID:     r.GuildID,
		Reason:      req.Reason,
		Date:        now,
	}

	if r.Expirable() && (req.Status == models.StatusExpired || req.Status == models.StatusPardoned) {
		ended := at
		// An expiry fired late still closes the reprimand at its
		// scheduled instant, not at the tick that noticed it.
		if req.Status == models.StatusExpired && r.ExpireAt != nil && r.ExpireAt.Before(at) {
			ended = *r.ExpireAt
		}
		r.EndedAt = &ended
		length := ended.Sub(r.StartedAt)
		r.Length = &length
	}

	if err := s.store.SaveReprimand(ctx, r); err != nil {
		return nil, fmt.Errorf("modify: persisting reprimand: %w", err)
	}
	s.notify(r)

	// Lift the platform restriction when a mute or ban closes.
	if req.At == nil && (req.Status == models.StatusExpired || req.Status == models.StatusPardoned) {
		s.lift(ctx, r)
	}
	return r, nil
}

// Delete marks the reprimand Deleted. The record is kept for audit;
// escalation counts exclude it.
func (s *Service) Delete(ctx context.Context, guildID, id, actorID string) error {
	_, err := s.Modify(ctx, guildID, id, ModifyRequest{
		Status:  models.StatusDeleted,
		ActorID: actorID,
		Reason:  "[Reprimand Deleted]",
	})
	return err
}

// EnsureTracked idempotently registers a member so reprimands can
// reference it.
func (s *Service) EnsureTracked(ctx context.Context, guildID, userID string) error {
	_, err := s.store.TrackUser(ctx, guildID, userID)
	return err
}

// History returns the member's reprimand history. Deleted entries are
// included for audit purposes.
func (s *Service) History(ctx context.Context, guildID, userID string) ([]models.Reprimand, error) {
	return s.store.History(ctx, guildID, userID)
}

// checkTransition validates the state machine:
//
//	Added   -> Expired | Pardoned | Updated | Deleted | Hidden
//	Updated -> Updated | Expired | Pardoned | Deleted | Hidden
//	Hidden  -> Hidden | Updated | Expired | Pardoned | Deleted
//	terminal (Expired, Pardoned, Deleted) -> Deleted only
//
// Only expirable reprimands may reach Expired.
func (s *Service) checkTransition(r *models.Reprimand, to models.ReprimandStatus) error {
	switch to {
	case models.StatusAdded, models.StatusUnknown:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, to)
	case models.StatusExpired:
		if !r.Expirable() {
			return fmt.Errorf("%w: %s reprimand cannot expire", ErrInvalidTransition, r.Kind)
		}
	}
	if r.Status.IsTerminal() && to != models.StatusDeleted {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, r.Status)
	}
	if r.Status == models.StatusDeleted && to == models.StatusDeleted {
		return fmt.Errorf("%w: already deleted", ErrInvalidTransition)
	}
	return nil
}

// ensureTracked resolves the subject, tracking it once before giving up.
func (s *Service) ensureTracked(ctx context.Context, guildID, userID string) error {
	user, err := s.store.GetUser(ctx, guildID, userID)
	if err != nil {
		return fmt.Errorf("resolving subject: %w", err)
	}
	if user != nil {
		return nil
	}

	if _, err := s.store.TrackUser(ctx, guildID, userID); err != nil {
		return fmt.Errorf("%w: %s in guild %s: %v", ErrUnknownSubject, userID, guildID, err)
	}
	user, err = s.store.GetUser(ctx, guildID, userID)
	if err != nil || user == nil {
		return fmt.Errorf("%w: %s in guild %s", ErrUnknownSubject, userID, guildID)
	}
	return nil
}

// enforce applies the platform side effect for the reprimand's kind.
func (s *Service) enforce(ctx context.Context, r *models.Reprimand) error {
	if s.enforcer == nil {
		return nil
	}

	var err error
	switch r.Kind {
	case models.KindMute:
		err = s.enforcer.Mute(ctx, r.GuildID, r.UserID, r.ExpireAt)
	case models.KindBan:
		err = s.enforcer.Ban(ctx, r.GuildID, r.UserID, r.DeleteDays, r.Reason)
	case models.KindKick:
		err = s.enforcer.Kick(ctx, r.GuildID, r.UserID, r.Reason)
	case models.KindNote, models.KindNotice, models.KindWarning, models.KindCensored:
		return nil
	default:
		return fmt.Errorf("enforce: unknown reprimand kind %q", r.Kind)
	}

	if err != nil {
		logger.Warn(fmt.Sprintf("Enforcement of %s %s failed for %s: %v", r.Kind, r.ID, r.UserID, err), "Moderation")
		return &EnforcementError{Kind: r.Kind, Err: err}
	}
	return nil
}

// lift undoes the platform restriction of a closed mute or ban.
func (s *Service) lift(ctx context.Context, r *models.Reprimand) {
	if s.enforcer == nil {
		return
	}

	var err error
	switch r.Kind {
	case models.KindMute:
		err = s.enforcer.Unmute(ctx, r.GuildID, r.UserID)
	case models.KindBan:
		err = s.enforcer.Unban(ctx, r.GuildID, r.UserID)
	default:
		return
	}
	if err != nil {
		logger.Warn(fmt.Sprintf("Lifting %s %s failed for %s: %v", r.Kind, r.ID, r.UserID, err), "Moderation")
	}
}

func (s *Service) notify(r *models.Reprimand) {
	if s.notifier != nil {
		s.notifier.ReprimandChanged(r)
	}
}
