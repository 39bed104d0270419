package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"agendly/internal/migrations/mongo/validators"
)

var (
	AppointmentsIndexes = []mongo.IndexModel{
		// overlap scan: staff + active status over a time range
		{Keys: bson.D{
			{Key: "staff_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "start_time", Value: 1},
			{Key: "end_time", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "salon_id", Value: 1},
			{Key: "start_time", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "client_id", Value: 1},
			{Key: "start_time", Value: 1},
		}},
		// reminder sweep: active appointments by start bucket
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "start_time", Value: 1},
		}},
	}

	SalonsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	}

	ServicesIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "salon_id", Value: 1},
			{Key: "is_active", Value: 1},
		}},
	}

	StaffProfilesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "salon_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}

	SlotLocksIndexes = []mongo.IndexModel{
		// expired locks reaped by the TTL monitor
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	ReminderLogsIndexes = []mongo.IndexModel{
		// dedupe guarantee: one marker per appointment and reminder type
		{
			Keys: bson.D{
				{Key: "appointment_id", Value: 1},
				{Key: "type", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("🚀 Running Agendly Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Appointments": {
			Indexes:   AppointmentsIndexes,
			Validator: validators.AppointmentValidator,
		},
		"Salons": {
			Indexes:   SalonsIndexes,
			Validator: validators.SalonValidator,
		},
		"Services": {
			Indexes:   ServicesIndexes,
			Validator: validators.ServiceValidator,
		},
		"Staff_profiles": {
			Indexes:   StaffProfilesIndexes,
			Validator: validators.StaffProfileValidator,
		},
		"Slot_locks": {
			Indexes:   SlotLocksIndexes,
			Validator: validators.SlotLockValidator,
		},
		"Reminder_logs": {
			Indexes:   ReminderLogsIndexes,
			Validator: validators.ReminderLogValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		fmt.Printf("ℹ️ Collection %s already exists — updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}
