package service

import (
	"context"
	"errors"

	appterrors "agendly/internal/appointments/errors"
	"agendly/internal/appointments/repository"
	"agendly/internal/appointments/validator"
	"agendly/internal/events"
	"agendly/pkg/config"
	apperrors "agendly/pkg/errors"
	"agendly/pkg/model"
)

// LifecycleService is the only writer of the status field. Every status
// change passes through the transition table and a compare-and-set on
// the expected current status.
type LifecycleService interface {
	ChangeStatus(ctx context.Context, id string, req *model.StatusChangeRequest) (*model.Appointment, error)
}

type lifecycleService struct {
	repo      repository.AppointmentRepository
	validator *validator.AppointmentValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewLifecycleService(
	repo repository.AppointmentRepository,
	validator *validator.AppointmentValidator,
	publisher events.Publisher,
	cfg *config.Config,
) LifecycleService {
	return &lifecycleService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *lifecycleService) ChangeStatus(ctx context.Context, id string, req *model.StatusChangeRequest) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}
	if err := s.validator.ValidateStatusChange(req); err != nil {
		s.cfg.Log.Warn("Status change validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Status change validation failed", map[string]any{"error": err.Error()})
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

	previousStatus := appt.Status
	if !model.CanTransition(previousStatus, req.Status) {
		return nil, apperrors.IllegalTransition(previousStatus, req.Status)
	}

	update := repository.StatusUpdate{Status: req.Status}
	if req.Status == model.StatusCanceled {
		update.CancelReason = req.Reason
		update.CanceledBy = req.Actor
	}

	if err := s.repo.UpdateStatus(ctx, id, previousStatus, update); err != nil {
		if errors.Is(err, appterrors.ErrStaleStatus) {
			return nil, apperrors.StaleState("Appointment", id)
		}
		return nil, apperrors.Internal("Failed to update appointment status", err)
	}

	appt.Status = req.Status
	appt.CancelReason = update.CancelReason
	appt.CanceledBy = update.CanceledBy

	if err := s.publisher.StatusChanged(ctx, appt, previousStatus); err != nil {
		s.cfg.Log.Warn("Failed to publish status change event",
			"id", id,
			"status", req.Status,
			"error", err,
		)
	}

	s.cfg.Log.Info("Appointment status changed",
		"id", id,
		"from", previousStatus,
		"to", req.Status,
		"actor", req.Actor,
	)
	return appt, nil
}
