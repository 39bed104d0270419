package repository

import (
	"context"
	"fmt"
	"time"

	remindererrors "agendly/internal/reminders/errors"
	"agendly/pkg/config"
	"agendly/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName = "Reminder_logs"
)

// ReminderLogRepository persists reminder dedupe markers. The unique
// index on (appointment_id, type) is the actual dedupe mechanism, the
// repository just translates the duplicate-key error.
type ReminderLogRepository interface {
	Create(ctx context.Context, entry *model.ReminderLog) error
	Delete(ctx context.Context, appointmentID string, reminderType string) error
}

type mongoReminderLogRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoReminderLogRepository(cfg *config.Config) ReminderLogRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoReminderLogRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoReminderLogRepository) Create(ctx context.Context, entry *model.ReminderLog) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	entry.SentAt = time.Now().UTC()
	_, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return remindererrors.ErrAlreadyLogged
		}
		return fmt.Errorf("failed to record reminder: %w", err)
	}
	return nil
}

// Delete removes a marker so a reminder whose publish failed can be
// retried on the next sweep.
func (r *mongoReminderLogRepository) Delete(ctx context.Context, appointmentID string, reminderType string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{
		"appointment_id": appointmentID,
		"type":           reminderType,
	})
	if err != nil {
		return fmt.Errorf("failed to delete reminder marker: %w", err)
	}
	return nil
}
