package moderation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/models"
)

// MemoryStore is an in-memory Store. It backs tests and dry-run imports;
// production wiring uses the MongoDB store in pkg/database.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]*models.GuildUserEntity
	reprimands map[string]*models.Reprimand
	triggers   map[string]*models.Trigger
	now        Clock
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]*models.GuildUserEntity),
		reprimands: make(map[string]*models.Reprimand),
		triggers:   make(map[string]*models.Trigger),
		now:        time.Now,
	}
}

func key(guildID, userID string) string { return guildID + ":" + userID }

// GetUser returns the tracked member or nil.
func (m *MemoryStore) GetUser(_ context.Context, guildID, userID string) (*models.GuildUserEntity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[key(guildID, userID)]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

// TrackUser idempotently registers a member.
func (m *MemoryStore) TrackUser(_ context.Context, guildID, userID string) (*models.GuildUserEntity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(guildID, userID)
	if user, ok := m.users[k]; ok {
		copied := *user
		return &copied, nil
	}
	user := &models.GuildUserEntity{
		UserID:    userID,
		GuildID:   guildID,
		TrackedAt: m.now(),
	}
	m.users[k] = user
	copied := *user
	return &copied, nil
}

// History returns the member's reprimands ordered by StartedAt.
func (m *MemoryStore) History(_ context.Context, guildID, userID string) ([]models.Reprimand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var history []models.Reprimand
	for _, r := range m.reprimands {
		if r.GuildID == guildID && r.UserID == userID {
			history = append(history, *r)
		}
	}
	sort.Slice(history, func(i, j int) bool {
		if history[i].StartedAt.Equal(history[j].StartedAt) {
			return history[i].ID < history[j].ID
		}
		return history[i].StartedAt.Before(history[j].StartedAt)
	})
	return history, nil
}

// GetReprimand returns the reprimand or nil.
func (m *MemoryStore) GetReprimand(_ context.Context, guildID, id string) (*models.Reprimand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reprimands[id]
	if !ok || r.GuildID != guildID {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

// FindByExternalID resolves an imported record's source id or nil.
func (m *MemoryStore) FindByExternalID(_ context.Context, guildID, externalID string) (*models.Reprimand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.reprimands {
		if r.GuildID == guildID && r.ExternalID == externalID {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

// SaveReprimand upserts the reprimand.
func (m *MemoryStore) SaveReprimand(_ context.Context, r *models.Reprimand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *r
	m.reprimands[r.ID] = &copied
	return nil
}

// DueExpirable returns non-terminal expirable reprimands due before the
// given instant.
func (m *MemoryStore) DueExpirable(_ context.Context, before time.Time) ([]models.Reprimand, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var due []models.Reprimand
	for _, r := range m.reprimands {
		if r.Status.IsTerminal() || !r.Expirable() {
			continue
		}
		if r.ExpireAt == nil || r.ExpireAt.After(before) {
			continue
		}
		due = append(due, *r)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}

// Triggers returns the guild's configured triggers.
func (m *MemoryStore) Triggers(_ context.Context, guildID string) ([]models.Trigger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var pool []models.Trigger
	for _, t := range m.triggers {
		if t.GuildID == guildID {
			pool = append(pool, *t)
		}
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool, nil
}

// SaveTrigger upserts the trigger.
func (m *MemoryStore) SaveTrigger(_ context.Context, t *models.Trigger) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *t
	m.triggers[t.ID] = &copied
	return nil
}

// RemoveTrigger deletes the trigger configuration.
func (m *MemoryStore) RemoveTrigger(_ context.Context, guildID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.triggers[id]; ok && t.GuildID == guildID {
		delete(m.triggers, id)
	}
	return nil
}
