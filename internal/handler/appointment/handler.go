package appointment

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medbook/appointment-api/internal/handler"
	"github.com/medbook/appointment-api/internal/model"
	"github.com/medbook/appointment-api/internal/service/appointment"
	apperrors "github.com/medbook/appointment-api/pkg/errors"
	"github.com/medbook/appointment-api/pkg/httputil"
	"github.com/medbook/appointment-api/pkg/validator"
)

type Handler struct {
	service   *appointment.Service
	validator *validator.Validator
}

func NewHandler(service *appointment.Service, v *validator.Validator) *Handler {
	return &Handler{service: service, validator: v}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("/book", h.Book)
		appointments.PATCH("/respond/:id", h.Respond)
		appointments.GET("", h.List)
		appointments.GET("/next-slot", h.NextSlot)
	}
}

// Book creates a PENDING appointment for the caller. A slot conflict comes
// back as 409 with the next free time in the payload.
func (h *Handler) Book(c *gin.Context) {
	userID, err := handler.CallerID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body"))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	appt, err := h.service.Book(c.Request.Context(), userID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, appt)
}

// Respond applies a doctor's ACCEPT, REJECT or RESCHEDULE decision.
func (h *Handler) Respond(c *gin.Context) {
	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid appointment ID"))
		return
	}

	var req model.RespondAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body"))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	appt, err := h.service.Respond(c.Request.Context(), appointmentID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appt)
}

// List returns the caller's appointments, patient or doctor side depending
// on their role.
func (h *Handler) List(c *gin.Context) {
	userID, err := handler.CallerID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appts, err := h.service.GetAppointments(c.Request.Context(), userID, handler.CallerRole(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, appts)
}

// NextSlot returns the earliest free slot on the doctor's hourly grid.
func (h *Handler) NextSlot(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid doctor ID"))
		return
	}

	slot, err := h.service.NextAvailableSlot(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{
		"doctor_id": doctorID,
		"slot":      slot,
	})
}
