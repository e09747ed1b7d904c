package moderation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
)

// RecordAction is the action kind of an imported moderation record.
type RecordAction string

const (
	ActionWarn   RecordAction = "warn"
	ActionNote   RecordAction = "note"
	ActionNotice RecordAction = "notice"
	ActionMute   RecordAction = "mute"
	ActionUnmute RecordAction = "unmute"
	ActionBan    RecordAction = "ban"
	ActionKick   RecordAction = "kick"
	ActionUnban  RecordAction = "unban"
)

// Record is one pre-parsed moderation entry from an external system.
type Record struct {
	ExternalID  string       `json:"externalId"`
	UserID      string       `json:"userId"`
	ModeratorID string       `json:"moderatorId,omitempty"`
	Reason      string       `json:"reason"`
	Action      RecordAction `json:"action"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Result summarizes an import run. Failed collects the records whose
// referenced prior reprimand could not be found, or whose action kind
// is unknown; the batch itself always completes.
type Result struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Failed   []Record `json:"failed"`
}

// Reconciler replays external moderation history through the lifecycle
// manager. Records are applied in chronological order because later
// entries may close earlier ones (an unmute must find its mute).
type Reconciler struct {
	svc *Service
}

// NewReconciler creates an import reconciler on top of the service.
func NewReconciler(svc *Service) *Reconciler {
	return &Reconciler{svc: svc}
}

// Run imports the batch into the given guild. Re-running the same batch
// is idempotent when the source provides stable external ids. Imported
// reprimands never cascade triggers and never touch the platform.
func (rc *Reconciler) Run(ctx context.Context, guildID string, records []Record) (*Result, error) {
	// The source stream does not guarantee sub-second ordering; stable
	// sort keeps input order for equal timestamps.
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	result := &Result{}

	// Open reprimands by subject, scoped to this run only.
	openMutes := make(map[string]*models.Reprimand)
	openBans := make(map[string]*models.Reprimand)

	for _, rec := range sorted {
		if rec.ExternalID != "" {
			existing, err := rc.svc.Store().FindByExternalID(ctx, guildID, rec.ExternalID)
			if err != nil {
				return result, fmt.Errorf("import: checking external id %s: %w", rec.ExternalID, err)
			}
			if existing != nil {
				result.Skipped++
				// A previously imported mute/ban may still be closed by a
				// later record in this batch.
				if existing.EndedAt == nil {
					switch existing.Kind {
					case models.KindMute:
						openMutes[existing.UserID] = existing
					case models.KindBan:
						openBans[existing.UserID] = existing
					}
				}
				continue
			}
		}

		switch rec.Action {
		case ActionUnmute, ActionUnban:
			if err := rc.close(ctx, guildID, rec, openMutes, openBans, result); err != nil {
				return result, err
			}
		case ActionWarn, ActionNote, ActionNotice, ActionMute, ActionBan, ActionKick:
			if err := rc.create(ctx, guildID, rec, openMutes, openBans, result); err != nil {
				return result, err
			}
		default:
			logger.Warn(fmt.Sprintf("Unknown action %q in record %s", rec.Action, rec.ExternalID), "Import")
			result.Failed = append(result.Failed, rec)
		}
	}

	// The source log went silent on these; silence does not mean the
	// restriction is still active here, so close them as of now.
	now := rc.svc.now()
	for user, open := range openMutes {
		logger.Debug(fmt.Sprintf("Expiring mute for %s which had no unmute entry", user), "Import")
		rc.expireOpen(ctx, open, now)
	}
	for user, open := range openBans {
		logger.Debug(fmt.Sprintf("Expiring ban for %s which had no unban entry", user), "Import")
		rc.expireOpen(ctx, open, now)
	}

	logger.Success(fmt.Sprintf("Import finished: %d imported, %d skipped, %d failed",
		result.Imported, result.Skipped, len(result.Failed)), "Import")
	return result, nil
}

// create imports an opening record and registers mutes/bans in the open
// indices.
func (rc *Reconciler) create(ctx context.Context, guildID string, rec Record,
	openMutes, openBans map[string]*models.Reprimand, result *Result) error {

	kind, err := recordKind(rec.Action)
	if err != nil {
		result.Failed = append(result.Failed, rec)
		return nil
	}

	moderator := rec.ModeratorID
	if moderator == "" {
		moderator = rc.svc.opts.SystemActorID
	}

	at := rec.Timestamp
	r, err := rc.svc.Create(ctx, CreateRequest{
		Kind:        kind,
		GuildID:     guildID,
		UserID:      rec.UserID,
		ModeratorID: moderator,
		Reason:      rec.Reason,
		ExternalID:  rec.ExternalID,
		At:          &at,
	})
	if err != nil {
		if errors.Is(err, ErrUnknownSubject) {
			result.Failed = append(result.Failed, rec)
			return nil
		}
		return fmt.Errorf("import: creating %s for %s: %w", kind, rec.UserID, err)
	}

	switch kind {
	case models.KindMute:
		openMutes[rec.UserID] = r
	case models.KindBan:
		openBans[rec.UserID] = r
	}
	result.Imported++
	return nil
}

// close resolves an unmute/unban against the matching open entry. The
// closer's identity decides the status: the system actor means the
// restriction ran out, a human means it was lifted early.
func (rc *Reconciler) close(ctx context.Context, guildID string, rec Record,
	openMutes, openBans map[string]*models.Reprimand, result *Result) error {

	var open *models.Reprimand
	kind := models.KindMute
	switch rec.Action {
	case ActionUnmute:
		open = openMutes[rec.UserID]
		delete(openMutes, rec.UserID)
	case ActionUnban:
		kind = models.KindBan
		open = openBans[rec.UserID]
		delete(openBans, rec.UserID)
	}
	if open == nil {
		// Closers carry no stable id of their own. On a rerun the target
		// is already closed at this exact instant, so match it against
		// history before failing the record.
		history, err := rc.svc.Store().History(ctx, guildID, rec.UserID)
		if err != nil {
			return fmt.Errorf("import: loading history for %s: %w", rec.UserID, err)
		}
		for i := range history {
			prev := &history[i]
			if prev.Kind == kind && prev.EndedAt != nil && prev.EndedAt.Equal(rec.Timestamp) {
				result.Skipped++
				return nil
			}
		}
		logger.Warn(fmt.Sprintf("No open reprimand for %s record on %s", rec.Action, rec.UserID), "Import")
		result.Failed = append(result.Failed, rec)
		return nil
	}

	status := models.StatusPardoned
	if rec.ModeratorID == "" || rec.ModeratorID == rc.svc.opts.SystemActorID {
		status = models.StatusExpired
	}

	at := rec.Timestamp
	_, err := rc.svc.Modify(ctx, open.GuildID, open.ID, ModifyRequest{
		Status:  status,
		ActorID: rec.ModeratorID,
		Reason:  rec.Reason,
		At:      &at,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			// Already closed; treat the closer as handled.
			result.Skipped++
			return nil
		}
		return fmt.Errorf("import: closing %s for %s: %w", open.Kind, rec.UserID, err)
	}
	result.Imported++
	return nil
}

// expireOpen closes a still-open entry as of now with the system actor.
func (rc *Reconciler) expireOpen(ctx context.Context, open *models.Reprimand, now time.Time) {
	_, err := rc.svc.Modify(ctx, open.GuildID, open.ID, ModifyRequest{
		Status:  models.StatusExpired,
		ActorID: rc.svc.opts.SystemActorID,
		Reason:  ExpiredReason,
		At:      &now,
	})
	if err != nil && !errors.Is(err, ErrInvalidTransition) {
		logger.Error(fmt.Sprintf("Expiring open %s %s failed: %v", open.Kind, open.ID, err), "Import")
	}
}

// recordKind maps an opening record action to the reprimand kind it
// creates.
func recordKind(action RecordAction) (models.ReprimandKind, error) {
	switch action {
	case ActionWarn:
		return models.KindWarning, nil
	case ActionNote:
		return models.KindNote, nil
	case ActionNotice:
		return models.KindNotice, nil
	case ActionMute:
		return models.KindMute, nil
	case ActionBan:
		return models.KindBan, nil
	case ActionKick:
		return models.KindKick, nil
	default:
		return "", fmt.Errorf("unknown record action %q", action)
	}
}
