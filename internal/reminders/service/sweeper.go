package service

import (
	"context"
	"errors"
	"time"

	apptrepo "agendly/internal/appointments/repository"
	"agendly/internal/events"
	remindererrors "agendly/internal/reminders/errors"
	"agendly/internal/reminders/repository"
	"agendly/pkg/config"
	"agendly/pkg/model"
)

// SweepStats summarizes one sweep run.
type SweepStats struct {
	Scanned    int
	Dispatched int
	Skipped    int
	Failed     int
}

type SweeperService interface {
	RunSweep(ctx context.Context, now time.Time) (SweepStats, error)
	Run(ctx context.Context) error
}

type sweeperService struct {
	apptRepo  apptrepo.AppointmentRepository
	logRepo   repository.ReminderLogRepository
	publisher events.Publisher
	cfg       *config.Config
}

func NewSweeperService(
	apptRepo apptrepo.AppointmentRepository,
	logRepo repository.ReminderLogRepository,
	publisher events.Publisher,
	cfg *config.Config,
) SweeperService {
	return &sweeperService{
		apptRepo:  apptRepo,
		logRepo:   logRepo,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Run sweeps immediately, then on every tick until the context is
// canceled.
func (s *sweeperService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.ReminderSweepInterval)
	defer ticker.Stop()

	s.sweepAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweepAndLog(ctx)
		}
	}
}

func (s *sweeperService) sweepAndLog(ctx context.Context) {
	stats, err := s.RunSweep(ctx, time.Now().UTC())
	if err != nil {
		s.cfg.Log.Error("Reminder sweep failed", "error", err)
		return
	}
	s.cfg.Log.Info("Reminder sweep completed",
		"scanned", stats.Scanned,
		"dispatched", stats.Dispatched,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
}

// RunSweep dispatches due reminders for both lead times. Each lead
// looks at the bucket of appointments starting [now+lead, now+lead+bucket).
// The persisted marker makes dispatch idempotent: overlapping sweeps
// and restarts cannot double-send.
func (s *sweeperService) RunSweep(ctx context.Context, now time.Time) (SweepStats, error) {
	var stats SweepStats

	leads := []struct {
		reminderType string
		lead         time.Duration
	}{
		{model.ReminderDayBefore, s.cfg.DayBeforeLead},
		{model.ReminderHourBefore, s.cfg.HourBeforeLead},
	}

	for _, l := range leads {
		from := now.Add(l.lead)
		to := from.Add(s.cfg.ReminderBucket)

		appts, err := s.apptRepo.FindStartingBetween(ctx, from, to)
		if err != nil {
			return stats, err
		}
		stats.Scanned += len(appts)

		for _, appt := range appts {
			switch s.dispatch(ctx, appt, l.reminderType) {
			case dispatchSent:
				stats.Dispatched++
			case dispatchSkipped:
				stats.Skipped++
			case dispatchFailed:
				stats.Failed++
			}
		}
	}

	return stats, nil
}

type dispatchResult int

const (
	dispatchSent dispatchResult = iota
	dispatchSkipped
	dispatchFailed
)

// dispatch claims the marker first, then publishes. A failed publish
// releases the marker so the next sweep tries again.
func (s *sweeperService) dispatch(ctx context.Context, appt *model.Appointment, reminderType string) dispatchResult {
	err := s.logRepo.Create(ctx, &model.ReminderLog{
		AppointmentID: appt.ID,
		Type:          reminderType,
	})
	if err != nil {
		if errors.Is(err, remindererrors.ErrAlreadyLogged) {
			return dispatchSkipped
		}
		s.cfg.Log.Error("Failed to record reminder marker",
			"appointment_id", appt.ID,
			"type", reminderType,
			"error", err,
		)
		return dispatchFailed
	}

	if err := s.publisher.ReminderDue(ctx, appt, reminderType); err != nil {
		s.cfg.Log.Error("Failed to publish reminder event",
			"appointment_id", appt.ID,
			"type", reminderType,
			"error", err,
		)
		if delErr := s.logRepo.Delete(ctx, appt.ID, reminderType); delErr != nil {
			s.cfg.Log.Error("Failed to release reminder marker after publish failure",
				"appointment_id", appt.ID,
				"type", reminderType,
				"error", delErr,
			)
		}
		return dispatchFailed
	}

	return dispatchSent
}
