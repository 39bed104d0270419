package handler

import (
	"encoding/json"
	"net/http"

	"agendly/internal/appointments/repository"
	"agendly/internal/appointments/service"
	apperrors "agendly/pkg/errors"
	httputil "agendly/pkg/http"
	"agendly/pkg/logger"
	"agendly/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AppointmentHandler struct {
	booking   service.BookingService
	lifecycle service.LifecycleService
	log       *logger.Logger
}

func NewAppointmentHandler(booking service.BookingService, lifecycle service.LifecycleService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		booking:   booking,
		lifecycle: lifecycle,
		log:       log,
	}
}

func (h *AppointmentHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Book", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	appt, err := h.booking.Book(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Book", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, appt); err != nil {
		h.log.Error("failed to write created response", "handler", "Book", "operation", "WriteCreated", "error", err)
	}
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	appt, err := h.booking.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, appt); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	from, to, err := httputil.ExtractTimeRange(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	query := r.URL.Query()
	filter := repository.ListFilter{
		SalonID:  query.Get("salon_id"),
		StaffID:  query.Get("staff_id"),
		ClientID: query.Get("client_id"),
		Status:   query.Get("status"),
		From:     from,
		To:       to,
	}

	ids := 0
	for _, id := range []string{filter.SalonID, filter.StaffID, filter.ClientID} {
		if id != "" {
			ids++
		}
	}
	if ids != 1 {
		err := apperrors.InvalidInput("Exactly one of salon_id, staff_id or client_id is required")
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	appts, total, err := h.booking.List(r.Context(), filter, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "List", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, appts, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *AppointmentHandler) ChangeStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req model.StatusChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ChangeStatus", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	appt, err := h.lifecycle.ChangeStatus(r.Context(), id, &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ChangeStatus", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, appt); err != nil {
		h.log.Error("failed to write success response", "handler", "ChangeStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) Reschedule(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req model.RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Reschedule", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	appt, err := h.booking.Reschedule(r.Context(), id, &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Reschedule", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, appt); err != nil {
		h.log.Error("failed to write success response", "handler", "Reschedule", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments", h.Book)
	router.GET("/api/v1/appointments", h.List)
	router.GET("/api/v1/appointments/id/:id", h.GetByID)
	router.POST("/api/v1/appointments/id/:id/status", h.ChangeStatus)
	router.POST("/api/v1/appointments/id/:id/reschedule", h.Reschedule)
}
