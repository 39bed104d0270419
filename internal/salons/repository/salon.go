package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	salonerrors "agendly/internal/salons/errors"
	"agendly/pkg/config"
	"agendly/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	SalonCollectionName = "Salons"
)

// SalonRepository is the read side of the salon calendar config. Salon
// management lives in another service, the booking engine only looks
// up working hours, holidays and timezone.
type SalonRepository interface {
	FindByID(ctx context.Context, id string) (*model.Salon, error)
}

type mongoSalonRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSalonRepository(cfg *config.Config) SalonRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoSalonRepository{
		cfg:        cfg,
		collection: db.Collection(SalonCollectionName),
	}
}

func (r *mongoSalonRepository) FindByID(ctx context.Context, id string) (*model.Salon, error) {
	ctx, cancel := readTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", salonerrors.ErrInvalidID, id)
	}

	var salon model.Salon
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&salon)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, salonerrors.ErrSalonNotFound
		}
		return nil, fmt.Errorf("failed to find salon: %w", err)
	}

	return &salon, nil
}

// readTimeout mirrors the appointment repository's timeout handling for
// the read-only lookups in this package. Lookups inside a booking
// transaction keep the SessionContext untouched.
func readTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}
