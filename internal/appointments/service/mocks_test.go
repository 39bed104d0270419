package service

import (
	"context"
	"time"

	"agendly/internal/appointments/repository"
	"agendly/internal/appointments/validator"
	"agendly/pkg/config"
	mongotx "agendly/pkg/db/mongo"
	"agendly/pkg/logger"
	"agendly/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// Mock repositories for testing

type mockAppointmentRepository struct {
	createFunc              func(ctx context.Context, appt *model.Appointment) error
	findByIDFunc            func(ctx context.Context, id string) (*model.Appointment, error)
	findOverlappingFunc     func(ctx context.Context, staffID string, window model.TimeWindow, excludeID string) ([]*model.Appointment, error)
	findStartingBetweenFunc func(ctx context.Context, from, to time.Time) ([]*model.Appointment, error)
	findFunc                func(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Appointment, error)
	countFunc               func(ctx context.Context, filter repository.ListFilter) (int64, error)
	updateStatusFunc        func(ctx context.Context, id string, fromStatus string, update repository.StatusUpdate) error
	updateWindowFunc        func(ctx context.Context, id string, fromStatus string, fromStart time.Time, window model.TimeWindow) error
	updateCalendarFunc      func(ctx context.Context, id string, eventID string) error
}

func (m *mockAppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, appt)
	}
	appt.ID = "65f0000000000000000000aa"
	return nil
}

func (m *mockAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockAppointmentRepository) FindOverlapping(ctx context.Context, staffID string, window model.TimeWindow, excludeID string) ([]*model.Appointment, error) {
	if m.findOverlappingFunc != nil {
		return m.findOverlappingFunc(ctx, staffID, window, excludeID)
	}
	return nil, nil
}

func (m *mockAppointmentRepository) FindStartingBetween(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
	if m.findStartingBetweenFunc != nil {
		return m.findStartingBetweenFunc(ctx, from, to)
	}
	return nil, nil
}

func (m *mockAppointmentRepository) Find(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Appointment, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, filter, limit, offset)
	}
	return []*model.Appointment{}, nil
}

func (m *mockAppointmentRepository) Count(ctx context.Context, filter repository.ListFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockAppointmentRepository) UpdateStatus(ctx context.Context, id string, fromStatus string, update repository.StatusUpdate) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, fromStatus, update)
	}
	return nil
}

func (m *mockAppointmentRepository) UpdateWindow(ctx context.Context, id string, fromStatus string, fromStart time.Time, window model.TimeWindow) error {
	if m.updateWindowFunc != nil {
		return m.updateWindowFunc(ctx, id, fromStatus, fromStart, window)
	}
	return nil
}

func (m *mockAppointmentRepository) UpdateCalendarEventID(ctx context.Context, id string, eventID string) error {
	if m.updateCalendarFunc != nil {
		return m.updateCalendarFunc(ctx, id, eventID)
	}
	return nil
}

func (m *mockAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	var sessCtx mongo.SessionContext
	return fn(sessCtx)
}

type mockSlotLockRepository struct {
	createFunc func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error)
	deleteFunc func(ctx context.Context, lockID string) error
	created    []string
	deleted    []string
}

func (m *mockSlotLockRepository) Create(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	m.created = append(m.created, lock.ID)
	return lock, nil
}

func (m *mockSlotLockRepository) Delete(ctx context.Context, lockID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, lockID)
	}
	m.deleted = append(m.deleted, lockID)
	return nil
}

type mockSalonRepository struct {
	salon *model.Salon
	err   error
}

func (m *mockSalonRepository) FindByID(ctx context.Context, id string) (*model.Salon, error) {
	return m.salon, m.err
}

type mockServiceRepository struct {
	service *model.Service
	err     error
}

func (m *mockServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	return m.service, m.err
}

type mockStaffRepository struct {
	staff *model.StaffProfile
	err   error
}

func (m *mockStaffRepository) FindByID(ctx context.Context, id string) (*model.StaffProfile, error) {
	return m.staff, m.err
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	created     []*model.Appointment
	rescheduled []*model.Appointment
	statuses    []string
	reminders   []string
	publishErr  error
}

func (p *recordingPublisher) AppointmentCreated(ctx context.Context, appt *model.Appointment) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.created = append(p.created, appt)
	return nil
}

func (p *recordingPublisher) AppointmentRescheduled(ctx context.Context, appt *model.Appointment, previousStart time.Time) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.rescheduled = append(p.rescheduled, appt)
	return nil
}

func (p *recordingPublisher) StatusChanged(ctx context.Context, appt *model.Appointment, previousStatus string) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.statuses = append(p.statuses, previousStatus+"->"+appt.Status)
	return nil
}

func (p *recordingPublisher) ReminderDue(ctx context.Context, appt *model.Appointment, reminderType string) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.reminders = append(p.reminders, reminderType)
	return nil
}

// --- Test fixtures ---

const (
	testSalonID   = "65f000000000000000000001"
	testStaffID   = "65f000000000000000000002"
	testClientID  = "65f000000000000000000003"
	testServiceID = "65f000000000000000000004"
	testApptID    = "65f0000000000000000000aa"
)

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     logger.ERROR,
		Format:    logger.TEXT,
		AddSource: false,
		Service:   "test",
	})
	return &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		SlotLockTTL:  10 * time.Second,
	}
}

func testValidator(cfg *config.Config) *validator.AppointmentValidator {
	return validator.NewAppointmentValidator(cfg.Log)
}

func openSalon() *model.Salon {
	return &model.Salon{
		ID:           testSalonID,
		Name:         "Main Street Salon",
		WorkingHours: model.DayFrame{Start: "00:00", End: "23:59"},
		TimeZone:     "UTC",
	}
}

func alwaysOnStaff() *model.StaffProfile {
	wh := make([]model.WorkHours, 7)
	for day := 0; day < 7; day++ {
		wh[day] = model.WorkHours{DayOfWeek: day, Start: "00:00", End: "23:59"}
	}
	return &model.StaffProfile{
		ID:        testStaffID,
		SalonID:   testSalonID,
		WorkHours: wh,
	}
}

func activeService(durationMin int) *model.Service {
	return &model.Service{
		ID:          testServiceID,
		SalonID:     testSalonID,
		Name:        "Haircut",
		Category:    "Hair",
		DurationMin: durationMin,
		IsActive:    true,
	}
}
