package prescription

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/prescription"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

type Handler struct {
	svc *prescription.Service
}

func NewHandler(svc *prescription.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	prescriptions := r.Group("/prescriptions")
	{
		prescriptions.GET("", middleware.RequireRole(model.RolePatient, model.RoleStaff), h.List)
		prescriptions.PUT("/:id", h.Update)
		prescriptions.DELETE("/:id", h.Delete)
	}

	patients := r.Group("/patients/:id/prescriptions", middleware.RequireRole(model.RoleDoctor))
	{
		patients.GET("", h.ListForPatient)
		patients.POST("", h.Manage)
	}
}

func (h *Handler) List(c *gin.Context) {
	principal, _ := handler.CurrentPrincipal(c)
	list, err := h.svc.List(c.Request.Context(), principal)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

func (h *Handler) ListForPatient(c *gin.Context) {
	patientID, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	principal, _ := handler.CurrentPrincipal(c)
	view, err := h.svc.ListForPatient(c.Request.Context(), principal, patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(view))
}

// Manage dispatches on the action field. The body is read once and cached so the form can
// be bound from it again for create and update.
func (h *Handler) Manage(c *gin.Context) {
	patientID, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	var req model.ManagePrescriptionRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		handler.RespondError(c, handler.BindingError(err))
		return
	}
	action, err := model.ParsePrescriptionAction(req.Action)
	if err != nil {
		handler.RespondError(c, errors.Validation("action", err.Error()))
		return
	}

	var id uuid.UUID
	if action != model.PrescriptionActionCreate {
		if id, err = uuid.Parse(req.PrescriptionID); err != nil {
			handler.RespondError(c, errors.Validation("prescription_id", "is required"))
			return
		}
	}

	principal, _ := handler.CurrentPrincipal(c)
	ctx := c.Request.Context()

	switch action {
	case model.PrescriptionActionCreate, model.PrescriptionActionUpdate:
		var form model.PrescriptionForm
		if err := c.ShouldBindBodyWith(&form, binding.JSON); err != nil {
			handler.RespondError(c, handler.BindingError(err))
			return
		}

		var (
			p      *model.Prescription
			status = http.StatusOK
		)
		if action == model.PrescriptionActionCreate {
			p, err = h.svc.Create(ctx, principal, patientID, &form)
			status = http.StatusCreated
		} else {
			p, err = h.svc.Update(ctx, principal, patientID, id, &form)
		}
		if err != nil {
			handler.RespondError(c, err)
			return
		}
		c.JSON(status, handler.NewSuccessResponse(p))

	case model.PrescriptionActionDelete:
		if err := h.svc.Delete(ctx, principal, patientID, id); err != nil {
			handler.RespondError(c, err)
			return
		}
		resp := handler.NewSuccessResponse(nil)
		resp.Message = "prescription deleted"
		c.JSON(http.StatusOK, resp)
	}
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var form model.PrescriptionForm
	if !handler.BindJSON(c, &form) {
		return
	}

	principal, _ := handler.CurrentPrincipal(c)
	p, err := h.svc.Update(c.Request.Context(), principal, uuid.Nil, id, &form)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	principal, _ := handler.CurrentPrincipal(c)
	if err := h.svc.Delete(c.Request.Context(), principal, uuid.Nil, id); err != nil {
		handler.RespondError(c, err)
		return
	}

	resp := handler.NewSuccessResponse(nil)
	resp.Message = "prescription deleted"
	resp.Redirect = principal.DashboardPath()
	c.JSON(http.StatusOK, resp)
}
