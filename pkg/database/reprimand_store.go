// Package database provides the MongoDB-backed moderation store.
package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the moderation store.
const (
	CollectionReprimands = "reprimands"
	CollectionTriggers   = "triggers"
	CollectionGuildUsers = "guild_users"
)

// ModerationStore persists reprimands, triggers and tracked guild members
// in MongoDB. It implements the moderation service's Store interface.
//
// Reprimand reads and writes go straight to the collection: histories are
// multi-document queries the shared LRU cache cannot serve, and stale
// reads here would break the lifecycle invariants. Triggers and guild
// users go through the cached DataManagers.
type ModerationStore struct {
	db         *Database
	triggers   *DataManager[models.Trigger]
	guildUsers *DataManager[models.GuildUserEntity]
	reprimands *mongo.Collection
}

// NewModerationStore creates a ModerationStore backed by the given database.
func NewModerationStore(db *Database) *ModerationStore {
	if GlobalTriggerDM == nil || GlobalGuildUserDM == nil {
		InitGlobalDataManagers(db)
	}
	return &ModerationStore{
		db:         db,
		triggers:   GlobalTriggerDM,
		guildUsers: GlobalGuildUserDM,
		reprimands: db.GetCollection(CollectionReprimands),
	}
}

// EnsureIndexes creates the indexes the store's queries rely on.
func (s *ModerationStore) EnsureIndexes(ctx context.Context) error {
	if s.reprimands == nil {
		return fmt.Errorf("database not connected")
	}

	_, err := s.reprimands.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "userId", Value: 1}, {Key: "startedAt", Value: 1}}},
		{Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "externalId", Value: 1}}},
		{Keys: bson.D{{Key: "expireAt", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return err
	}

	triggerCol := s.db.GetCollection(CollectionTriggers)
	if triggerCol != nil {
		_, err = triggerCol.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "guildId", Value: 1}},
		})
	}
	return err
}

// GetUser returns a tracked guild member, or nil when unknown.
func (s *ModerationStore) GetUser(ctx context.Context, guildID, userID string) (*models.GuildUserEntity, error) {
	return s.guildUsers.Get(bson.M{"guildId": guildID, "userId": userID})
}

// TrackUser registers a guild member if it is not tracked yet.
func (s *ModerationStore) TrackUser(ctx context.Context, guildID, userID string) (*models.GuildUserEntity, error) {
	existing, err := s.guildUsers.Get(bson.M{"guildId": guildID, "userId": userID})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	entity := models.GuildUserEntity{
		UserID:    userID,
		GuildID:   guildID,
		TrackedAt: time.Now(),
	}
	saved, err := s.guildUsers.Set(bson.M{"guildId": guildID, "userId": userID}, entity)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		// DB offline, write queued. Hand back the in-memory entity so the
		// caller can proceed.
		return &entity, nil
	}
	return saved, nil
}

// History returns a member's full reprimand history ordered by StartedAt
// ascending, ties broken by id.
func (s *ModerationStore) History(ctx context.Context, guildID, userID string) ([]models.Reprimand, error) {
	if !s.db.Connected() || s.reprimands == nil {
		return nil, fmt.Errorf("database not connected")
	}

	opts := options.Find().SetSort(bson.D{{Key: "startedAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.reprimands.Find(ctx, bson.M{"guildId": guildID, "userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []models.Reprimand
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GetReprimand returns one reprimand by id, or nil when it does not exist.
func (s *ModerationStore) GetReprimand(ctx context.Context, guildID, id string) (*models.Reprimand, error) {
	if !s.db.Connected() || s.reprimands == nil {
		return nil, fmt.Errorf("database not connected")
	}

	var result models.Reprimand
	err := s.reprimands.FindOne(ctx, bson.M{"_id": id, "guildId": guildID}).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// FindByExternalID resolves an imported record by its source system id.
func (s *ModerationStore) FindByExternalID(ctx context.Context, guildID, externalID string) (*models.Reprimand, error) {
	if !s.db.Connected() || s.reprimands == nil {
		return nil, fmt.Errorf("database not connected")
	}

	var result models.Reprimand
	err := s.reprimands.FindOne(ctx, bson.M{"guildId": guildID, "externalId": externalID}).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveReprimand upserts a reprimand by id.
func (s *ModerationStore) SaveReprimand(ctx context.Context, r *models.Reprimand) error {
	if !s.db.Connected() || s.reprimands == nil {
		logger.Warn("DB offline. Encolando escritura para 'reprimands'", "ModStore")
		s.db.AddToWriteQueue(QueuedOperation{
			CollectionName: CollectionReprimands,
			Query:          bson.M{"_id": r.ID},
			Operation:      "set",
			Data:           r,
		})
		return nil
	}

	opts := options.Replace().SetUpsert(true)
	_, err := s.reprimands.ReplaceOne(ctx, bson.M{"_id": r.ID}, r, opts)
	if err != nil {
		logger.Error(fmt.Sprintf("Error al guardar reprimand %s. Encolando por seguridad.", r.ID), "ModStore")
		s.db.AddToWriteQueue(QueuedOperation{
			CollectionName: CollectionReprimands,
			Query:          bson.M{"_id": r.ID},
			Operation:      "set",
			Data:           r,
		})
	}
	return err
}

// DueExpirable returns every non-terminal expirable reprimand whose
// ExpireAt is at or before the given instant.
func (s *ModerationStore) DueExpirable(ctx context.Context, before time.Time) ([]models.Reprimand, error) {
	if !s.db.Connected() || s.reprimands == nil {
		return nil, fmt.Errorf("database not connected")
	}

	query := bson.M{
		"expireAt": bson.M{"$lte": before},
		"status": bson.M{"$in": []models.ReprimandStatus{
			models.StatusAdded, models.StatusUpdated, models.StatusHidden,
		}},
		"kind": bson.M{"$in": []models.ReprimandKind{
			models.KindMute, models.KindBan, models.KindWarning,
		}},
	}

	opts := options.Find().SetSort(bson.D{{Key: "expireAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.reprimands.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []models.Reprimand
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Triggers returns every trigger configured for a guild, ordered by id.
func (s *ModerationStore) Triggers(ctx context.Context, guildID string) ([]models.Trigger, error) {
	docs, err := s.triggers.GetAll(bson.M{"guildId": guildID})
	if err != nil {
		return nil, err
	}

	results := make([]models.Trigger, 0, len(docs))
	for _, doc := range docs {
		results = append(results, *doc)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

// SaveTrigger upserts a trigger.
func (s *ModerationStore) SaveTrigger(ctx context.Context, t *models.Trigger) error {
	_, err := s.triggers.Set(bson.M{"_id": t.ID}, t)
	return err
}

// RemoveTrigger deletes a trigger. Removing a trigger never touches the
// reprimands it produced.
func (s *ModerationStore) RemoveTrigger(ctx context.Context, guildID, id string) error {
	return s.triggers.Delete(bson.M{"_id": id, "guildId": guildID})
}
