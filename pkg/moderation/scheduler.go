package moderation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
)

// Scheduler drives expirable reprimands to Expired at or shortly after
// their ExpireAt. It keeps no state of its own: the persisted ExpireAt
// is the schedule, so it survives restarts by construction. Transitions
// race safely against moderators because Modify's terminal-status guard
// turns duplicate expiry attempts into no-ops, and a reprimand pardoned
// before its due time is simply found terminal and skipped on the next
// pass.
type Scheduler struct {
	svc       *Service
	interval  time.Duration
	lookahead time.Duration
	stop      chan struct{}
	stopOnce  sync.Once
	now       Clock
}

// NewScheduler creates a scheduler polling at interval and querying
// reprimands due within lookahead.
func NewScheduler(svc *Service, interval, lookahead time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	if lookahead < 0 {
		lookahead = 0
	}
	return &Scheduler{
		svc:       svc,
		interval:  interval,
		lookahead: lookahead,
		stop:      make(chan struct{}),
		now:       svc.now,
	}
}

// Start runs the polling loop until Stop is called or ctx is done. An
// immediate pass picks up anything that came due while the process was
// down.
func (sc *Scheduler) Start(ctx context.Context) {
	go func() {
		if err := sc.Tick(ctx); err != nil {
			logger.Error(fmt.Sprintf("Expiry pass failed: %v", err), "Scheduler")
		}

		ticker := time.NewTicker(sc.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := sc.Tick(ctx); err != nil {
					logger.Error(fmt.Sprintf("Expiry pass failed: %v", err), "Scheduler")
				}
			case <-sc.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	logger.System(fmt.Sprintf("Expiry scheduler started (interval %s, lookahead %s)", sc.interval, sc.lookahead), "Scheduler")
}

// Stop interrupts the loop at the next poll boundary. In-flight
// transitions complete; none are left half applied.
func (sc *Scheduler) Stop() {
	sc.stopOnce.Do(func() { close(sc.stop) })
}

// Tick performs a single expiry pass. Exported so startup and tests can
// run passes synchronously.
func (sc *Scheduler) Tick(ctx context.Context) error {
	now := sc.now()
	due, err := sc.svc.Store().DueExpirable(ctx, now.Add(sc.lookahead))
	if err != nil {
		return fmt.Errorf("querying due reprimands: %w", err)
	}

	for i := range due {
		r := &due[i]
		if r.ExpireAt == nil || r.ExpireAt.After(now) {
			// Within lookahead but not due yet.
			continue
		}

		_, err := sc.svc.Modify(ctx, r.GuildID, r.ID, ModifyRequest{
			Status:  models.StatusExpired,
			ActorID: sc.svc.opts.SystemActorID,
			Reason:  ExpiredReason,
		})
		switch {
		case err == nil:
			logger.Info(fmt.Sprintf("Expired %s %s for %s in guild %s", r.Kind, r.ID, r.UserID, r.GuildID), "Scheduler")
		case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNotFound):
			// Already closed by a concurrent pass or a moderator.
		default:
			logger.Error(fmt.Sprintf("Expiring %s failed: %v", r.ID, err), "Scheduler")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}
