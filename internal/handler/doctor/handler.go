package doctor

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medbook/appointment-api/internal/handler"
	"github.com/medbook/appointment-api/internal/model"
	"github.com/medbook/appointment-api/internal/service/doctor"
	apperrors "github.com/medbook/appointment-api/pkg/errors"
	"github.com/medbook/appointment-api/pkg/httputil"
	"github.com/medbook/appointment-api/pkg/validator"
)

type Handler struct {
	service   *doctor.Service
	validator *validator.Validator
}

func NewHandler(service *doctor.Service, v *validator.Validator) *Handler {
	return &Handler{service: service, validator: v}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.POST("", h.Register)
		doctors.GET("/:id", h.Get)
	}
}

// Register creates the caller's doctor profile.
func (h *Handler) Register(c *gin.Context) {
	userID, err := handler.CallerID(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.RegisterDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid request body"))
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		httputil.RespondWithError(c, apperrors.Validation(err.Error()))
		return
	}

	doc := &model.Doctor{
		UserID:    userID,
		Name:      req.Name,
		Specialty: req.Specialty,
		Email:     req.Email,
		Fee:       req.Fee,
		City:      req.City,
	}
	if err := h.service.Register(c.Request.Context(), doc); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, doc)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Validation("invalid doctor ID"))
		return
	}

	doc, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, doc)
}
