package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agendly/internal/appointments/repository"
	apperrors "agendly/pkg/errors"
	"agendly/pkg/logger"
	"agendly/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// Mock services for testing
type mockBookingService struct {
	bookFunc func(ctx context.Context, req *model.BookingRequest) (*model.Appointment, error)
	listFunc func(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Appointment, int64, error)
}

func (m *mockBookingService) Book(ctx context.Context, req *model.BookingRequest) (*model.Appointment, error) {
	if m.bookFunc != nil {
		return m.bookFunc(ctx, req)
	}
	return &model.Appointment{ID: "65f0000000000000000000aa"}, nil
}

func (m *mockBookingService) Reschedule(ctx context.Context, id string, req *model.RescheduleRequest) (*model.Appointment, error) {
	return nil, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	return nil, apperrors.NotFoundWithID("Appointment", id)
}

func (m *mockBookingService) List(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Appointment, int64, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter, limit, offset)
	}
	return []*model.Appointment{}, 0, nil
}

type mockLifecycleService struct {
	changeStatusFunc func(ctx context.Context, id string, req *model.StatusChangeRequest) (*model.Appointment, error)
}

func (m *mockLifecycleService) ChangeStatus(ctx context.Context, id string, req *model.StatusChangeRequest) (*model.Appointment, error) {
	if m.changeStatusFunc != nil {
		return m.changeStatusFunc(ctx, id, req)
	}
	return &model.Appointment{ID: id, Status: req.Status}, nil
}

func testHandler(booking *mockBookingService, lifecycle *mockLifecycleService) *AppointmentHandler {
	log := logger.New(logger.Config{
		Level:     logger.ERROR,
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return NewAppointmentHandler(booking, lifecycle, log)
}

func TestBook_InvalidBody(t *testing.T) {
	h := testHandler(&mockBookingService{}, &mockLifecycleService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	h.Book(rec, req, nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestBook_ConflictMapsTo409(t *testing.T) {
	booking := &mockBookingService{
		bookFunc: func(ctx context.Context, req *model.BookingRequest) (*model.Appointment, error) {
			return nil, apperrors.SlotConflict("Slot overlaps with an existing appointment")
		},
	}
	h := testHandler(booking, &mockLifecycleService{})

	body, _ := json.Marshal(model.BookingRequest{
		SalonID:   "65f000000000000000000001",
		StaffID:   "65f000000000000000000002",
		ClientID:  "65f000000000000000000003",
		ServiceID: "65f000000000000000000004",
		StartTime: time.Now().Add(24 * time.Hour),
		Source:    model.SourceApp,
		CreatedBy: "user-1",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()

	h.Book(rec, req, nil)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != apperrors.CodeSlotConflict {
		t.Errorf("code = %q, want %q", resp.Code, apperrors.CodeSlotConflict)
	}
}

func TestBook_Created(t *testing.T) {
	h := testHandler(&mockBookingService{}, &mockLifecycleService{})

	body, _ := json.Marshal(model.BookingRequest{StartTime: time.Now().Add(time.Hour)})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()

	h.Book(rec, req, nil)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}

func TestList_FilterPassedThrough(t *testing.T) {
	var captured repository.ListFilter
	booking := &mockBookingService{
		listFunc: func(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Appointment, int64, error) {
			captured = filter
			return []*model.Appointment{}, 0, nil
		},
	}
	h := testHandler(booking, &mockLifecycleService{})

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/appointments?staff_id=st1&status=confirmed&from=2026-09-01T00:00:00Z&to=2026-09-02T00:00:00Z", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if captured.StaffID != "st1" || captured.Status != "confirmed" {
		t.Errorf("filter = %+v, query parameters not forwarded", captured)
	}
	if captured.From == nil || captured.To == nil {
		t.Error("time range not forwarded")
	}
}

func TestList_RequiresExactlyOneScope(t *testing.T) {
	listCalled := false
	booking := &mockBookingService{
		listFunc: func(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Appointment, int64, error) {
			listCalled = true
			return []*model.Appointment{}, 0, nil
		},
	}
	h := testHandler(booking, &mockLifecycleService{})

	tests := []struct {
		name  string
		query string
	}{
		{"no scope", ""},
		{"two scopes", "?salon_id=s1&staff_id=st1"},
		{"all scopes", "?salon_id=s1&staff_id=st1&client_id=c1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments"+tt.query, nil)
			rec := httptest.NewRecorder()

			h.List(rec, req, nil)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			var resp struct {
				Code string `json:"code"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Code != apperrors.CodeInvalidInput {
				t.Errorf("code = %q, want %q", resp.Code, apperrors.CodeInvalidInput)
			}
		})
	}
	if listCalled {
		t.Error("list service must not be called without a valid scope")
	}
}

func TestList_InvalidTimeRange(t *testing.T) {
	h := testHandler(&mockBookingService{}, &mockLifecycleService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments?from=tomorrow", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req, nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestChangeStatus_IllegalTransitionMapsTo409(t *testing.T) {
	lifecycle := &mockLifecycleService{
		changeStatusFunc: func(ctx context.Context, id string, req *model.StatusChangeRequest) (*model.Appointment, error) {
			return nil, apperrors.IllegalTransition(model.StatusDone, model.StatusCanceled)
		},
	}
	h := testHandler(&mockBookingService{}, lifecycle)

	body, _ := json.Marshal(model.StatusChangeRequest{Status: model.StatusCanceled, Actor: "client-1", Reason: "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments/id/65f0000000000000000000aa/status", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()

	h.ChangeStatus(rec, req, httprouter.Params{{Key: "id", Value: "65f0000000000000000000aa"}})

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestGetByID_NotFoundMapsTo404(t *testing.T) {
	h := testHandler(&mockBookingService{}, &mockLifecycleService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/id/65f0000000000000000000aa", nil)
	rec := httptest.NewRecorder()

	h.GetByID(rec, req, httprouter.Params{{Key: "id", Value: "65f0000000000000000000aa"}})

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
