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
	StaffCollectionName = "Staff_profiles"
)

// StaffRepository looks up staff availability profiles for the
// availability check.
type StaffRepository interface {
	FindByID(ctx context.Context, id string) (*model.StaffProfile, error)
}

type mongoStaffRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoStaffRepository(cfg *config.Config) StaffRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoStaffRepository{
		cfg:        cfg,
		collection: db.Collection(StaffCollectionName),
	}
}

func (r *mongoStaffRepository) FindByID(ctx context.Context, id string) (*model.StaffProfile, error) {
	ctx, cancel := readTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", salonerrors.ErrInvalidID, id)
	}

	var staff model.StaffProfile
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&staff)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, salonerrors.ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to find staff profile: %w", err)
	}

	return &staff, nil
}
