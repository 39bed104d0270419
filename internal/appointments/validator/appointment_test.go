package validator

import (
	"strings"
	"testing"
	"time"

	"agendly/pkg/logger"
	"agendly/pkg/model"
)

func newTestValidator(t *testing.T) *AppointmentValidator {
	t.Helper()
	log := logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT})
	return NewAppointmentValidator(log)
}

func validBookingRequest() *model.BookingRequest {
	return &model.BookingRequest{
		SalonID:   "65f000000000000000000001",
		StaffID:   "65f000000000000000000002",
		ClientID:  "65f000000000000000000003",
		ServiceID: "65f000000000000000000004",
		StartTime: time.Now().Add(24 * time.Hour),
		Source:    model.SourceApp,
		CreatedBy: "user-1",
	}
}

func TestValidateBooking(t *testing.T) {
	v := newTestValidator(t)

	if err := v.ValidateBooking(validBookingRequest()); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*model.BookingRequest)
		wantMsg string
	}{
		{"missing salon", func(r *model.BookingRequest) { r.SalonID = "" }, "SalonID is required"},
		{"malformed staff id", func(r *model.BookingRequest) { r.StaffID = "not-an-oid" }, "valid MongoDB ObjectID"},
		{"unknown source", func(r *model.BookingRequest) { r.Source = "fax" }, "must be one of"},
		{"past start", func(r *model.BookingRequest) { r.StartTime = time.Now().Add(-time.Hour) }, "cannot be in the past"},
		{"notes too long", func(r *model.BookingRequest) { r.Notes = strings.Repeat("x", 501) }, "must be at most 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validBookingRequest()
			tt.mutate(req)
			err := v.ValidateBooking(req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestValidateStatusChange(t *testing.T) {
	v := newTestValidator(t)

	if err := v.ValidateStatusChange(&model.StatusChangeRequest{Status: model.StatusConfirmed, Actor: "owner-1"}); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	if err := v.ValidateStatusChange(&model.StatusChangeRequest{Status: "cancelled", Actor: "owner-1"}); err == nil {
		t.Error("expected rejection of misspelled status")
	}

	if err := v.ValidateStatusChange(&model.StatusChangeRequest{Status: model.StatusDone}); err == nil {
		t.Error("expected rejection of missing actor")
	}
}

func TestValidateReschedule(t *testing.T) {
	v := newTestValidator(t)

	if err := v.ValidateReschedule(&model.RescheduleRequest{StartTime: time.Now().Add(time.Hour), Actor: "client-1"}); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	if err := v.ValidateReschedule(&model.RescheduleRequest{StartTime: time.Now().Add(-time.Minute), Actor: "client-1"}); err == nil {
		t.Error("expected rejection of past start time")
	}
}

func TestValidTimeOfDayTag(t *testing.T) {
	v := newTestValidator(t)

	type frame struct {
		Start string `validate:"required,valid_time_of_day"`
	}

	for _, ok := range []string{"00:00", "08:30", "23:59"} {
		if err := v.validate.Struct(&frame{Start: ok}); err != nil {
			t.Errorf("%q rejected: %v", ok, err)
		}
	}
	for _, bad := range []string{"24:00", "8:30", "12:5", "noon", ""} {
		if err := v.validate.Struct(&frame{Start: bad}); err == nil {
			t.Errorf("%q accepted, want rejection", bad)
		}
	}
}
