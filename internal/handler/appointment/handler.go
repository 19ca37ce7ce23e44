package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/appointment"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", middleware.RequireRole(model.RolePatient), h.Book)
		appointments.GET("/manage", middleware.RequireRole(model.RoleDoctor), h.List)
		appointments.POST("/manage", middleware.RequireRole(model.RoleDoctor), h.Manage)
		appointments.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Book(c *gin.Context) {
	var req model.BookAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	principal, _ := handler.CurrentPrincipal(c)
	appt, err := h.service.Book(c.Request.Context(), principal, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	resp := handler.NewSuccessResponse(appt)
	resp.Message = "appointment booked"
	resp.Redirect = principal.DashboardPath()
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) List(c *gin.Context) {
	principal, _ := handler.CurrentPrincipal(c)
	list, err := h.service.ListForDoctor(c.Request.Context(), principal)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

func (h *Handler) Manage(c *gin.Context) {
	var req model.ManageAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	principal, _ := handler.CurrentPrincipal(c)
	appt, err := h.service.Manage(c.Request.Context(), principal, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appt))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	principal, _ := handler.CurrentPrincipal(c)
	if err := h.service.Delete(c.Request.Context(), principal, id); err != nil {
		handler.RespondError(c, err)
		return
	}

	resp := handler.NewSuccessResponse(nil)
	resp.Message = "appointment deleted"
	resp.Redirect = principal.DashboardPath()
	c.JSON(http.StatusOK, resp)
}
