package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	appterrors "agendly/internal/appointments/errors"
	"agendly/pkg/config"
	mongotx "agendly/pkg/db/mongo"
	"agendly/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Appointments"
)

// ListFilter narrows appointment listings. Zero-value fields are not
// applied.
type ListFilter struct {
	SalonID  string
	StaffID  string
	ClientID string
	Status   string
	From     *time.Time
	To       *time.Time
}

// StatusUpdate carries the fields written alongside a status change.
type StatusUpdate struct {
	Status       string
	CancelReason string
	CanceledBy   string
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	FindOverlapping(ctx context.Context, staffID string, window model.TimeWindow, excludeID string) ([]*model.Appointment, error)
	FindStartingBetween(ctx context.Context, from, to time.Time) ([]*model.Appointment, error)
	Find(ctx context.Context, filter ListFilter, limit int, offset int64) ([]*model.Appointment, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
	UpdateStatus(ctx context.Context, id string, fromStatus string, update StatusUpdate) error
	UpdateWindow(ctx context.Context, id string, fromStatus string, fromStart time.Time, window model.TimeWindow) error
	UpdateCalendarEventID(ctx context.Context, id string, eventID string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context
// unchanged with a no-op cancel function, as wrapping SessionContext breaks
// transaction semantics.
func (r *mongoAppointmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	appt.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, appt)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		appt.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	var appt model.Appointment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return &appt, nil
}

// FindOverlapping returns active appointments for the staff member whose
// booked window intersects the candidate window. Both interval bounds
// are applied, so appointments swallowing the candidate are matched too.
func (r *mongoAppointmentRepository) FindOverlapping(ctx context.Context, staffID string, window model.TimeWindow, excludeID string) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"staff_id":   staffID,
		"status":     bson.M{"$in": model.ActiveStatuses},
		"start_time": bson.M{"$lt": window.End},
		"end_time":   bson.M{"$gt": window.Start},
	}
	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", appterrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []*model.Appointment
	if err = cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping appointments: %w", err)
	}

	return appts, nil
}

// FindStartingBetween returns active appointments whose start time falls
// inside [from, to). Used by the reminder sweep.
func (r *mongoAppointmentRepository) FindStartingBetween(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"status":     bson.M{"$in": model.ActiveStatuses},
		"start_time": bson.M{"$gte": from, "$lt": to},
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments in range: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []*model.Appointment
	if err = cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments in range: %w", err)
	}

	return appts, nil
}

func (r *mongoAppointmentRepository) Find(ctx context.Context, filter ListFilter, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: sortOrder(filter)}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildListFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []*model.Appointment
	if err = cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}

	return appts, nil
}

func (r *mongoAppointmentRepository) Count(ctx context.Context, filter ListFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildListFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

// Client history reads newest first; salon and staff views read in
// schedule order.
func sortOrder(f ListFilter) int {
	if f.ClientID != "" {
		return -1
	}
	return 1
}

func buildListFilter(f ListFilter) bson.M {
	filter := bson.M{}
	if f.SalonID != "" {
		filter["salon_id"] = f.SalonID
	}
	if f.StaffID != "" {
		filter["staff_id"] = f.StaffID
	}
	if f.ClientID != "" {
		filter["client_id"] = f.ClientID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.From != nil || f.To != nil {
		timeFilter := bson.M{}
		if f.From != nil {
			timeFilter["$gte"] = *f.From
		}
		if f.To != nil {
			timeFilter["$lt"] = *f.To
		}
		filter["start_time"] = timeFilter
	}
	return filter
}

// UpdateStatus performs a compare-and-set on the status field. The
// filter matches both the id and the expected current status, so a
// MatchedCount of zero on an existing document means the status moved
// underneath the caller.
func (r *mongoAppointmentRepository) UpdateStatus(ctx context.Context, id string, fromStatus string, update StatusUpdate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	set := bson.M{"status": update.Status}
	if update.CancelReason != "" {
		set["cancel_reason"] = update.CancelReason
	}
	if update.CanceledBy != "" {
		set["canceled_by"] = update.CanceledBy
	}

	filter := bson.M{"_id": objectID, "status": fromStatus}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	if result.MatchedCount == 0 {
		return appterrors.ErrStaleStatus
	}

	return nil
}

// UpdateWindow moves the appointment to a new time slot. The filter
// matches the expected status and start, so two racing reschedules of
// the same appointment cannot both commit.
func (r *mongoAppointmentRepository) UpdateWindow(ctx context.Context, id string, fromStatus string, fromStart time.Time, window model.TimeWindow) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": fromStatus, "start_time": fromStart}
	update := bson.M{"$set": bson.M{
		"start_time": window.Start,
		"end_time":   window.End,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to reschedule appointment: %w", err)
	}

	if result.MatchedCount == 0 {
		return appterrors.ErrStaleStatus
	}

	return nil
}

func (r *mongoAppointmentRepository) UpdateCalendarEventID(ctx context.Context, id string, eventID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appterrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"calendar_event_id": eventID}},
	)
	if err != nil {
		return fmt.Errorf("failed to set calendar event id: %w", err)
	}

	if result.MatchedCount == 0 {
		return appterrors.ErrNotFound
	}

	return nil
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
