package service

import (
	"context"
	"testing"

	appterrors "agendly/internal/appointments/errors"
	"agendly/internal/appointments/repository"
	"agendly/pkg/errors"
	"agendly/pkg/model"
)

func newLifecycleService(repo *mockAppointmentRepository, publisher *recordingPublisher) *lifecycleService {
	cfg := testConfig()
	return &lifecycleService{
		repo:      repo,
		validator: testValidator(cfg),
		publisher: publisher,
		cfg:       cfg,
	}
}

func storedAppointment(status string) *model.Appointment {
	return &model.Appointment{
		ID:       testApptID,
		SalonID:  testSalonID,
		StaffID:  testStaffID,
		ClientID: testClientID,
		Status:   status,
	}
}

func TestChangeStatus_LegalTransition(t *testing.T) {
	var capturedFrom string
	var capturedUpdate repository.StatusUpdate
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return storedAppointment(model.StatusPending), nil
		},
		updateStatusFunc: func(ctx context.Context, id string, fromStatus string, update repository.StatusUpdate) error {
			capturedFrom = fromStatus
			capturedUpdate = update
			return nil
		},
	}
	publisher := &recordingPublisher{}
	svc := newLifecycleService(repo, publisher)

	appt, err := svc.ChangeStatus(context.Background(), testApptID, &model.StatusChangeRequest{
		Status: model.StatusConfirmed,
		Actor:  "owner-1",
	})
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}

	if appt.Status != model.StatusConfirmed {
		t.Errorf("status = %q, want confirmed", appt.Status)
	}
	if capturedFrom != model.StatusPending {
		t.Errorf("CAS expected-status = %q, want pending", capturedFrom)
	}
	if capturedUpdate.CancelReason != "" || capturedUpdate.CanceledBy != "" {
		t.Error("cancel fields must stay empty for non-cancel transitions")
	}
	if len(publisher.statuses) != 1 || publisher.statuses[0] != "pending->confirmed" {
		t.Errorf("published %v, want [pending->confirmed]", publisher.statuses)
	}
}

func TestChangeStatus_IllegalTransition(t *testing.T) {
	updateCalled := false
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return storedAppointment(model.StatusConfirmed), nil
		},
		updateStatusFunc: func(ctx context.Context, id string, fromStatus string, update repository.StatusUpdate) error {
			updateCalled = true
			return nil
		},
	}
	svc := newLifecycleService(repo, &recordingPublisher{})

	_, err := svc.ChangeStatus(context.Background(), testApptID, &model.StatusChangeRequest{
		Status: model.StatusPending,
		Actor:  "owner-1",
	})
	if !errors.HasCode(err, errors.CodeIllegalTransition) {
		t.Fatalf("expected ILLEGAL_TRANSITION, got %v", err)
	}
	if updateCalled {
		t.Error("repository must not be written for an illegal transition")
	}

	appErr := errors.AsAppError(err)
	if appErr.Details["from"] != model.StatusConfirmed || appErr.Details["to"] != model.StatusPending {
		t.Errorf("details = %v, want from/to recorded", appErr.Details)
	}
}

func TestChangeStatus_CancelFromTerminal(t *testing.T) {
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return storedAppointment(model.StatusDone), nil
		},
	}
	svc := newLifecycleService(repo, &recordingPublisher{})

	_, err := svc.ChangeStatus(context.Background(), testApptID, &model.StatusChangeRequest{
		Status: model.StatusCanceled,
		Actor:  "client-1",
		Reason: "changed my mind",
	})
	if !errors.HasCode(err, errors.CodeIllegalTransition) {
		t.Fatalf("expected ILLEGAL_TRANSITION for done->canceled, got %v", err)
	}
}

func TestChangeStatus_CancelRecordsReasonAndActor(t *testing.T) {
	var captured repository.StatusUpdate
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return storedAppointment(model.StatusConfirmed), nil
		},
		updateStatusFunc: func(ctx context.Context, id string, fromStatus string, update repository.StatusUpdate) error {
			captured = update
			return nil
		},
	}
	svc := newLifecycleService(repo, &recordingPublisher{})

	appt, err := svc.ChangeStatus(context.Background(), testApptID, &model.StatusChangeRequest{
		Status: model.StatusCanceled,
		Actor:  "client-1",
		Reason: "running late",
	})
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}

	if captured.CancelReason != "running late" || captured.CanceledBy != "client-1" {
		t.Errorf("cancel fields = %+v, want reason and actor recorded", captured)
	}
	if appt.CancelReason != "running late" {
		t.Errorf("returned appointment missing cancel reason")
	}
}

func TestChangeStatus_CancelReasonIsOptional(t *testing.T) {
	var captured repository.StatusUpdate
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return storedAppointment(model.StatusConfirmed), nil
		},
		updateStatusFunc: func(ctx context.Context, id string, fromStatus string, update repository.StatusUpdate) error {
			captured = update
			return nil
		},
	}
	svc := newLifecycleService(repo, &recordingPublisher{})

	appt, err := svc.ChangeStatus(context.Background(), testApptID, &model.StatusChangeRequest{
		Status: model.StatusCanceled,
		Actor:  "owner-1",
	})
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}

	if appt.Status != model.StatusCanceled {
		t.Errorf("status = %q, want canceled", appt.Status)
	}
	if captured.CancelReason != "" {
		t.Errorf("cancel reason = %q, want empty", captured.CancelReason)
	}
	if captured.CanceledBy != "owner-1" {
		t.Errorf("canceled by = %q, want actor recorded", captured.CanceledBy)
	}
}

func TestChangeStatus_StaleState(t *testing.T) {
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return storedAppointment(model.StatusPending), nil
		},
		updateStatusFunc: func(ctx context.Context, id string, fromStatus string, update repository.StatusUpdate) error {
			return appterrors.ErrStaleStatus
		},
	}
	publisher := &recordingPublisher{}
	svc := newLifecycleService(repo, publisher)

	_, err := svc.ChangeStatus(context.Background(), testApptID, &model.StatusChangeRequest{
		Status: model.StatusConfirmed,
		Actor:  "owner-1",
	})
	if !errors.HasCode(err, errors.CodeStaleState) {
		t.Fatalf("expected STALE_STATE when the CAS misses, got %v", err)
	}
	if len(publisher.statuses) != 0 {
		t.Error("no event should be published when the write is lost")
	}
}

func TestChangeStatus_NotFound(t *testing.T) {
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return nil, appterrors.ErrNotFound
		},
	}
	svc := newLifecycleService(repo, &recordingPublisher{})

	_, err := svc.ChangeStatus(context.Background(), testApptID, &model.StatusChangeRequest{
		Status: model.StatusConfirmed,
		Actor:  "owner-1",
	})
	if !errors.HasCode(err, errors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
