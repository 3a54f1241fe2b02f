package patient

import (
	"github.com/gin-gonic/gin"

	"github.com/medbook/appointment-api/internal/handler"
	"github.com/medbook/appointment-api/internal/model"
	"github.com/medbook/appointment-api/internal/service/patient"
	apperrors "github.com/medbook/appointment-api/pkg/errors"
	"github.com/medbook/appointment-api/pkg/httputil"
	"github.com/medbook/appointment-api/pkg/validator"
)

type Handler struct {
	service   *patient.Service
	validator *validator.Validator
}

func NewHandler(service *patient.Service, v *validator.Validator) *Handler {
	return &Handler{service: service, validator: v}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("/entries", h.AddEntry)
		patients.GET("/entries", h.ListEntries)
	}
}

// AddEntry adds a person to the caller's patient account, either the account
// holder or a family member.
func (h *Handler) AddEntry(c *gin.Context) {
	userID, err := handler.CallerID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.CreatePatientEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body"))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	entry := &model.PatientEntry{
		UserID:      userID,
		Name:        req.Name,
		DateOfBirth: req.DateOfBirth,
		Relation:    model.PatientRelation(req.Relation),
		Email:       req.Email,
	}
	if err := h.service.AddEntry(c.Request.Context(), entry); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, entry)
}

func (h *Handler) ListEntries(c *gin.Context) {
	userID, err := handler.CallerID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	entries, err := h.service.ListEntries(c.Request.Context(), userID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, entries)
}
