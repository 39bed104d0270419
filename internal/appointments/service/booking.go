package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	appterrors "agendly/internal/appointments/errors"
	"agendly/internal/appointments/repository"
	"agendly/internal/appointments/validator"
	"agendly/internal/availability"
	"agendly/internal/events"
	salonerrors "agendly/internal/salons/errors"
	salonrepo "agendly/internal/salons/repository"
	"agendly/pkg/config"
	apperrors "agendly/pkg/errors"
	"agendly/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Book(ctx context.Context, req *model.BookingRequest) (*model.Appointment, error)
	Reschedule(ctx context.Context, id string, req *model.RescheduleRequest) (*model.Appointment, error)
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	List(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Appointment, int64, error)
}

type bookingService struct {
	repo      repository.AppointmentRepository
	lockRepo  repository.SlotLockRepository
	salonRepo salonrepo.SalonRepository
	svcRepo   salonrepo.ServiceRepository
	staffRepo salonrepo.StaffRepository
	validator *validator.AppointmentValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.AppointmentRepository,
	lockRepo repository.SlotLockRepository,
	salonRepo salonrepo.SalonRepository,
	svcRepo salonrepo.ServiceRepository,
	staffRepo salonrepo.StaffRepository,
	validator *validator.AppointmentValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		salonRepo: salonRepo,
		svcRepo:   svcRepo,
		staffRepo: staffRepo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Book reserves a slot atomically. The advisory lock narrows the race
// window between concurrent requests for the same slot, the transaction
// re-checks availability and conflicts before the insert so the lock is
// an optimization, not the correctness mechanism.
func (s *bookingService) Book(ctx context.Context, req *model.BookingRequest) (*model.Appointment, error) {
	if err := s.validator.ValidateBooking(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	refs, err := s.resolveReferences(ctx, req.SalonID, req.StaffID, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !refs.service.IsActive {
		return nil, apperrors.InvalidInput("Service is no longer offered")
	}
	if refs.staff.SalonID != req.SalonID {
		return nil, apperrors.InvalidInput("Staff member does not belong to this salon")
	}

	appt := &model.Appointment{
		SalonID:   req.SalonID,
		StaffID:   req.StaffID,
		ClientID:  req.ClientID,
		ServiceID: req.ServiceID,
		StartTime: req.StartTime.UTC(),
		EndTime:   req.StartTime.UTC().Add(refs.service.Duration()),
		Status:    model.StatusPending,
		Notes:     req.Notes,
		Source:    req.Source,
		CreatedBy: req.CreatedBy,
	}

	lockID, err := s.acquireSlotLock(ctx, appt.StaffID, appt.StartTime)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkSlot(sessCtx, refs.salon, refs.staff, appt.Window(), ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, appt); err != nil {
			return apperrors.Internal("Failed to create appointment", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to book appointment", "error", err)
		return nil, err
	}

	if err := s.publisher.AppointmentCreated(ctx, appt); err != nil {
		s.cfg.Log.Warn("Failed to publish appointment.created event", "id", appt.ID, "error", err)
	}

	s.cfg.Log.Info("Appointment booked",
		"id", appt.ID,
		"salon_id", appt.SalonID,
		"staff_id", appt.StaffID,
		"start_time", appt.StartTime,
	)
	return appt, nil
}

// Reschedule moves a non-terminal appointment to a new start time. The
// end time is re-derived from the current service duration and the new
// slot goes through the same availability and conflict checks as a
// fresh booking, with the appointment itself excluded from the overlap
// scan.
func (s *bookingService) Reschedule(ctx context.Context, id string, req *model.RescheduleRequest) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}
	if err := s.validator.ValidateReschedule(req); err != nil {
		s.cfg.Log.Warn("Reschedule validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Reschedule validation failed", map[string]any{"error": err.Error()})
	}

	appt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if model.IsTerminalStatus(appt.Status) {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot reschedule an appointment in status %q", appt.Status))
	}

	refs, err := s.resolveReferences(ctx, appt.SalonID, appt.StaffID, appt.ServiceID)
	if err != nil {
		return nil, err
	}

	previousStart := appt.StartTime
	newWindow := model.TimeWindow{
		Start: req.StartTime.UTC(),
		End:   req.StartTime.UTC().Add(refs.service.Duration()),
	}

	lockID, err := s.acquireSlotLock(ctx, appt.StaffID, newWindow.Start)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.checkSlot(sessCtx, refs.salon, refs.staff, newWindow, appt.ID); err != nil {
			return err
		}
		if err := s.repo.UpdateWindow(sessCtx, appt.ID, appt.Status, previousStart, newWindow); err != nil {
			if errors.Is(err, appterrors.ErrStaleStatus) {
				return apperrors.StaleState("Appointment", appt.ID)
			}
			return apperrors.Internal("Failed to reschedule appointment", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to reschedule appointment", "id", id, "error", err)
		return nil, err
	}

	appt.StartTime = newWindow.Start
	appt.EndTime = newWindow.End

	if err := s.publisher.AppointmentRescheduled(ctx, appt, previousStart); err != nil {
		s.cfg.Log.Warn("Failed to publish appointment.rescheduled event", "id", appt.ID, "error", err)
	}

	s.cfg.Log.Info("Appointment rescheduled",
		"id", appt.ID,
		"previous_start", previousStart,
		"start_time", appt.StartTime,
	)
	return appt, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		if errors.Is(err, appterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid appointment ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve appointment", err)
	}

	return appt, nil
}

func (s *bookingService) List(ctx context.Context, filter repository.ListFilter, limit int, offset int64) ([]*model.Appointment, int64, error) {
	var count int64
	var appts []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count appointments", "error", errCount)
			errCount = apperrors.Internal("Failed to count appointments", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		appts, errFind = s.repo.Find(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list appointments", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve appointments", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return appts, count, nil
}

// --- Helpers ---

type bookingRefs struct {
	salon   *model.Salon
	service *model.Service
	staff   *model.StaffProfile
}

func (s *bookingService) resolveReferences(ctx context.Context, salonID, staffID, serviceID string) (*bookingRefs, error) {
	salon, err := s.salonRepo.FindByID(ctx, salonID)
	if err != nil {
		return nil, translateLookupErr(err, "Salon", salonID)
	}
	service, err := s.svcRepo.FindByID(ctx, serviceID)
	if err != nil {
		return nil, translateLookupErr(err, "Service", serviceID)
	}
	staff, err := s.staffRepo.FindByID(ctx, staffID)
	if err != nil {
		return nil, translateLookupErr(err, "Staff profile", staffID)
	}
	return &bookingRefs{salon: salon, service: service, staff: staff}, nil
}

func translateLookupErr(err error, resource, id string) error {
	switch {
	case errors.Is(err, salonerrors.ErrSalonNotFound),
		errors.Is(err, salonerrors.ErrServiceNotFound),
		errors.Is(err, salonerrors.ErrStaffNotFound):
		return apperrors.NotFoundWithID(resource, id)
	case errors.Is(err, salonerrors.ErrInvalidID):
		return apperrors.InvalidInput(fmt.Sprintf("Invalid %s ID format", resource))
	default:
		return apperrors.Internal(fmt.Sprintf("Failed to look up %s", resource), err)
	}
}

// checkSlot runs the availability rules and the overlap scan against
// the candidate window. Runs inside the booking transaction so the
// decision and the write are atomic.
func (s *bookingService) checkSlot(ctx context.Context, salon *model.Salon, staff *model.StaffProfile, window model.TimeWindow, excludeID string) error {
	result, err := availability.Check(salon, staff, window)
	if err != nil {
		return apperrors.Internal("Failed to evaluate availability", err)
	}
	if !result.Available {
		return apperrors.SlotUnavailable(result.Reason)
	}

	existing, err := s.repo.FindOverlapping(ctx, staff.ID, window, excludeID)
	if err != nil {
		return apperrors.Internal("Failed to check existing appointments", err)
	}
	for _, other := range existing {
		if other.Window().Overlaps(window) {
			return apperrors.SlotConflict(fmt.Sprintf(
				"Slot overlaps with an existing appointment (%s - %s)",
				other.StartTime.Format(time.RFC3339),
				other.EndTime.Format(time.RFC3339),
			))
		}
	}
	return nil
}

// acquireSlotLock creates an advisory lock for the staff/start slot.
// Returns the lock ID if successful, or a conflict error if another
// request holds the lock.
func (s *bookingService) acquireSlotLock(ctx context.Context, staffID string, startTime time.Time) (string, error) {
	lockID := fmt.Sprintf("slot_lock_%s_%d", staffID, startTime.Unix())

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if errors.Is(err, appterrors.ErrSlotLocked) {
			return "", apperrors.SlotConflict("This slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

// releaseSlotLock removes the advisory lock
func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
