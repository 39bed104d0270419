package repository

import (
	"context"
	"fmt"
	"time"

	appterrors "agendly/internal/appointments/errors"
	"agendly/pkg/config"
	"agendly/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SlotLockRepository provides operations for advisory slot locks
type SlotLockRepository interface {
	Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	Delete(ctx context.Context, lockID string) error
}

type mongoSlotLockRepository struct {
	collection *mongo.Collection
}

func NewSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		collection: db.Collection("Slot_locks"),
	}
}

// Returns ErrSlotLocked if the lock already exists
func (r *mongoSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %s", appterrors.ErrSlotLocked, lock.ID)
		}
		return nil, err
	}

	return lock, nil
}

// Delete removes an advisory lock
func (r *mongoSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
