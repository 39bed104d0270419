package repository

import (
	"context"
	"errors"
	"fmt"

	salonerrors "agendly/internal/salons/errors"
	"agendly/pkg/config"
	"agendly/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	ServiceCollectionName = "Services"
)

// ServiceRepository looks up bookable services, primarily to resolve
// the appointment duration at booking time.
type ServiceRepository interface {
	FindByID(ctx context.Context, id string) (*model.Service, error)
}

type mongoServiceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoServiceRepository(cfg *config.Config) ServiceRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoServiceRepository{
		cfg:        cfg,
		collection: db.Collection(ServiceCollectionName),
	}
}

func (r *mongoServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	ctx, cancel := readTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", salonerrors.ErrInvalidID, id)
	}

	var service model.Service
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&service)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, salonerrors.ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}

	return &service, nil
}
