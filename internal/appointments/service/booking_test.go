package service

import (
	"context"
	"strings"
	"testing"
	"time"

	appterrors "agendly/internal/appointments/errors"
	"agendly/internal/appointments/repository"
	"agendly/pkg/errors"
	"agendly/pkg/model"
)

// futureNoon returns noon UTC two days from now, safely inside any
// 00:00-23:59 day frame.
func futureNoon() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC).AddDate(0, 0, 2)
}

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		SalonID:   testSalonID,
		StaffID:   testStaffID,
		ClientID:  testClientID,
		ServiceID: testServiceID,
		StartTime: futureNoon(),
		Source:    model.SourceApp,
		CreatedBy: "user-1",
	}
}

func newBookingService(
	repo *mockAppointmentRepository,
	locks *mockSlotLockRepository,
	publisher *recordingPublisher,
) *bookingService {
	cfg := testConfig()
	return &bookingService{
		repo:      repo,
		lockRepo:  locks,
		salonRepo: &mockSalonRepository{salon: openSalon()},
		svcRepo:   &mockServiceRepository{service: activeService(45)},
		staffRepo: &mockStaffRepository{staff: alwaysOnStaff()},
		validator: testValidator(cfg),
		publisher: publisher,
		cfg:       cfg,
	}
}

func TestBook_Success(t *testing.T) {
	repo := &mockAppointmentRepository{}
	locks := &mockSlotLockRepository{}
	publisher := &recordingPublisher{}
	svc := newBookingService(repo, locks, publisher)

	req := validRequest()
	appt, err := svc.Book(context.Background(), req)
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	if appt.Status != model.StatusPending {
		t.Errorf("status = %q, want %q", appt.Status, model.StatusPending)
	}
	if want := req.StartTime.Add(45 * time.Minute); !appt.EndTime.Equal(want) {
		t.Errorf("end time = %v, want %v (derived from service duration)", appt.EndTime, want)
	}
	if appt.ID == "" {
		t.Error("expected appointment ID to be set after insert")
	}
	if len(locks.created) != 1 || len(locks.deleted) != 1 {
		t.Errorf("lock created %d times, deleted %d times, want 1/1", len(locks.created), len(locks.deleted))
	}
	if locks.created[0] != locks.deleted[0] {
		t.Errorf("released lock %q, acquired %q", locks.deleted[0], locks.created[0])
	}
	if len(publisher.created) != 1 {
		t.Fatalf("expected 1 created event, got %d", len(publisher.created))
	}
}

func TestBook_SlotConflict(t *testing.T) {
	existing := &model.Appointment{
		ID:        "65f0000000000000000000bb",
		StaffID:   testStaffID,
		StartTime: futureNoon().Add(-15 * time.Minute),
		EndTime:   futureNoon().Add(30 * time.Minute),
		Status:    model.StatusConfirmed,
	}
	repo := &mockAppointmentRepository{
		findOverlappingFunc: func(ctx context.Context, staffID string, window model.TimeWindow, excludeID string) ([]*model.Appointment, error) {
			return []*model.Appointment{existing}, nil
		},
	}
	locks := &mockSlotLockRepository{}
	publisher := &recordingPublisher{}
	svc := newBookingService(repo, locks, publisher)

	_, err := svc.Book(context.Background(), validRequest())
	if !errors.HasCode(err, errors.CodeSlotConflict) {
		t.Fatalf("expected SLOT_CONFLICT, got %v", err)
	}
	if len(publisher.created) != 0 {
		t.Error("no event should be published on conflict")
	}
	if len(locks.deleted) != 1 {
		t.Error("lock must be released even when the transaction fails")
	}
}

func TestBook_SlotUnavailable(t *testing.T) {
	repo := &mockAppointmentRepository{}
	locks := &mockSlotLockRepository{}
	publisher := &recordingPublisher{}
	svc := newBookingService(repo, locks, publisher)
	svc.salonRepo = &mockSalonRepository{salon: &model.Salon{
		ID:           testSalonID,
		WorkingHours: model.DayFrame{Start: "09:00", End: "10:00"},
		TimeZone:     "UTC",
	}}

	_, err := svc.Book(context.Background(), validRequest())
	if !errors.HasCode(err, errors.CodeSlotUnavailable) {
		t.Fatalf("expected SLOT_UNAVAILABLE, got %v", err)
	}

	appErr := errors.AsAppError(err)
	if reason := appErr.Details["reason"]; reason != "outside_salon_hours" {
		t.Errorf("reason = %v, want outside_salon_hours", reason)
	}
}

func TestBook_LockHeldByAnotherRequest(t *testing.T) {
	locks := &mockSlotLockRepository{
		createFunc: func(ctx context.Context, lock *model.SlotLock) (*model.SlotLock, error) {
			return nil, appterrors.ErrSlotLocked
		},
	}
	svc := newBookingService(&mockAppointmentRepository{}, locks, &recordingPublisher{})

	_, err := svc.Book(context.Background(), validRequest())
	if !errors.HasCode(err, errors.CodeSlotConflict) {
		t.Fatalf("expected SLOT_CONFLICT for held lock, got %v", err)
	}
}

func TestBook_InactiveService(t *testing.T) {
	svc := newBookingService(&mockAppointmentRepository{}, &mockSlotLockRepository{}, &recordingPublisher{})
	inactive := activeService(45)
	inactive.IsActive = false
	svc.svcRepo = &mockServiceRepository{service: inactive}

	_, err := svc.Book(context.Background(), validRequest())
	if !errors.HasCode(err, errors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT for inactive service, got %v", err)
	}
}

func TestBook_StaffFromAnotherSalon(t *testing.T) {
	svc := newBookingService(&mockAppointmentRepository{}, &mockSlotLockRepository{}, &recordingPublisher{})
	stranger := alwaysOnStaff()
	stranger.SalonID = "65f0000000000000000000ff"
	svc.staffRepo = &mockStaffRepository{staff: stranger}

	_, err := svc.Book(context.Background(), validRequest())
	if !errors.HasCode(err, errors.CodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT for foreign staff, got %v", err)
	}
}

func TestBook_ValidationFailure(t *testing.T) {
	svc := newBookingService(&mockAppointmentRepository{}, &mockSlotLockRepository{}, &recordingPublisher{})

	req := validRequest()
	req.Source = "carrier-pigeon"
	_, err := svc.Book(context.Background(), req)
	if !errors.HasCode(err, errors.CodeValidation) {
		t.Fatalf("expected VALIDATION error, got %v", err)
	}
}

func TestBook_EventPublishFailureDoesNotFailBooking(t *testing.T) {
	repo := &mockAppointmentRepository{}
	publisher := &recordingPublisher{publishErr: context.DeadlineExceeded}
	svc := newBookingService(repo, &mockSlotLockRepository{}, publisher)

	appt, err := svc.Book(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("booking must succeed even when the event bus is down: %v", err)
	}
	if appt.ID == "" {
		t.Error("expected persisted appointment")
	}
}

func TestReschedule_Success(t *testing.T) {
	start := futureNoon()
	stored := &model.Appointment{
		ID:        testApptID,
		SalonID:   testSalonID,
		StaffID:   testStaffID,
		ClientID:  testClientID,
		ServiceID: testServiceID,
		StartTime: start,
		EndTime:   start.Add(45 * time.Minute),
		Status:    model.StatusConfirmed,
	}
	var capturedExclude string
	var capturedFromStart time.Time
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			copy := *stored
			return &copy, nil
		},
		findOverlappingFunc: func(ctx context.Context, staffID string, window model.TimeWindow, excludeID string) ([]*model.Appointment, error) {
			capturedExclude = excludeID
			return nil, nil
		},
		updateWindowFunc: func(ctx context.Context, id string, fromStatus string, fromStart time.Time, window model.TimeWindow) error {
			capturedFromStart = fromStart
			return nil
		},
	}
	publisher := &recordingPublisher{}
	svc := newBookingService(repo, &mockSlotLockRepository{}, publisher)

	newStart := start.Add(2 * time.Hour)
	appt, err := svc.Reschedule(context.Background(), testApptID, &model.RescheduleRequest{StartTime: newStart, Actor: "client-1"})
	if err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}

	if !appt.StartTime.Equal(newStart) {
		t.Errorf("start = %v, want %v", appt.StartTime, newStart)
	}
	if want := newStart.Add(45 * time.Minute); !appt.EndTime.Equal(want) {
		t.Errorf("end = %v, want %v", appt.EndTime, want)
	}
	if capturedExclude != testApptID {
		t.Errorf("overlap scan must exclude the appointment itself, excluded %q", capturedExclude)
	}
	if !capturedFromStart.Equal(start) {
		t.Errorf("CAS expected-start = %v, want %v", capturedFromStart, start)
	}
	if len(publisher.rescheduled) != 1 {
		t.Errorf("expected 1 rescheduled event, got %d", len(publisher.rescheduled))
	}
}

func TestReschedule_LostRace(t *testing.T) {
	start := futureNoon()
	stored := &model.Appointment{
		ID:        testApptID,
		SalonID:   testSalonID,
		StaffID:   testStaffID,
		ClientID:  testClientID,
		ServiceID: testServiceID,
		StartTime: start,
		EndTime:   start.Add(45 * time.Minute),
		Status:    model.StatusConfirmed,
	}
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			copy := *stored
			return &copy, nil
		},
		updateWindowFunc: func(ctx context.Context, id string, fromStatus string, fromStart time.Time, window model.TimeWindow) error {
			// a concurrent reschedule already moved the start
			return appterrors.ErrStaleStatus
		},
	}
	publisher := &recordingPublisher{}
	svc := newBookingService(repo, &mockSlotLockRepository{}, publisher)

	_, err := svc.Reschedule(context.Background(), testApptID, &model.RescheduleRequest{
		StartTime: start.Add(2 * time.Hour),
		Actor:     "client-1",
	})
	if !errors.HasCode(err, errors.CodeStaleState) {
		t.Fatalf("expected STALE_STATE when the window moved underneath, got %v", err)
	}
	if len(publisher.rescheduled) != 0 {
		t.Error("no event should be published for a lost reschedule race")
	}
}

func TestReschedule_TerminalAppointment(t *testing.T) {
	stored := &model.Appointment{
		ID:        testApptID,
		SalonID:   testSalonID,
		StaffID:   testStaffID,
		ServiceID: testServiceID,
		Status:    model.StatusCanceled,
	}
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return stored, nil
		},
	}
	svc := newBookingService(repo, &mockSlotLockRepository{}, &recordingPublisher{})

	_, err := svc.Reschedule(context.Background(), testApptID, &model.RescheduleRequest{StartTime: futureNoon(), Actor: "client-1"})
	if !errors.HasCode(err, errors.CodeConflict) {
		t.Fatalf("expected CONFLICT for terminal appointment, got %v", err)
	}
}

func TestList_PropagatesCountAndResults(t *testing.T) {
	repo := &mockAppointmentRepository{
		countFunc: func(ctx context.Context, filter repository.ListFilter) (int64, error) {
			return 42, nil
		},
		findFunc: func(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Appointment, error) {
			return []*model.Appointment{{ID: testApptID}}, nil
		},
	}
	svc := newBookingService(repo, &mockSlotLockRepository{}, &recordingPublisher{})

	appts, count, err := svc.List(context.Background(), repository.ListFilter{SalonID: testSalonID}, 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if count != 42 {
		t.Errorf("count = %d, want 42", count)
	}
	if len(appts) != 1 {
		t.Errorf("got %d appointments, want 1", len(appts))
	}
}

func TestBook_LockReferencesStaffAndSlot(t *testing.T) {
	locks := &mockSlotLockRepository{}
	svc := newBookingService(&mockAppointmentRepository{}, locks, &recordingPublisher{})

	req := validRequest()
	if _, err := svc.Book(context.Background(), req); err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	wantPrefix := "slot_lock_" + testStaffID
	if len(locks.created) != 1 || !strings.HasPrefix(locks.created[0], wantPrefix) {
		t.Errorf("lock id %v, want prefix %q", locks.created, wantPrefix)
	}
}
