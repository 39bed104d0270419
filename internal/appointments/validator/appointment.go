package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"agendly/pkg/logger"
	"agendly/pkg/model"

	"github.com/go-playground/validator/v10"
)

var (
	timeOfDayRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type AppointmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAppointmentValidator(log *logger.Logger) *AppointmentValidator {
	v := validator.New()

	if err := v.RegisterValidation("valid_time_of_day", validateTimeOfDay); err != nil {
		log.Fatal("Failed to register 'valid_time_of_day' validator",
			"error", err,
		)
	}

	log.Info("Appointment validator initialized successfully")

	return &AppointmentValidator{
		validate: v,
		logger:   log,
	}
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	return timeOfDayRegex.MatchString(fl.Field().String())
}

func (v *AppointmentValidator) ValidateBooking(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if req.StartTime.Before(time.Now()) {
		return ValidationErrors{
			ValidationError{
				Field:   "StartTime",
				Message: "start_time cannot be in the past",
			},
		}
	}

	return nil
}

func (v *AppointmentValidator) ValidateStatusChange(req *model.StatusChangeRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *AppointmentValidator) ValidateReschedule(req *model.RescheduleRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if req.StartTime.Before(time.Now()) {
		return ValidationErrors{
			ValidationError{
				Field:   "StartTime",
				Message: "start_time cannot be in the past",
			},
		}
	}

	return nil
}

func (v *AppointmentValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "valid_time_of_day":
			message = fmt.Sprintf("%s must be a 24-hour HH:MM time", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
