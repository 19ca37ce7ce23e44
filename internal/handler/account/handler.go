package account

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/account"
)

type Handler struct {
	svc *account.Service
}

func NewHandler(svc *account.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/doctors", h.ListDoctors)

	staffOnly := r.Group("", middleware.RequireRole(model.RoleStaff))
	{
		staffOnly.POST("/doctors", h.add(model.RoleDoctor))
		staffOnly.DELETE("/doctors/:id", h.delete("doctor deleted", h.svc.DeleteDoctor))
		staffOnly.POST("/staff", h.add(model.RoleStaff))
		staffOnly.DELETE("/staff/:id", h.delete("staff member deleted", h.svc.DeleteStaff))
	}
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.svc.ListDoctors(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) add(role model.RoleKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := account.NewRequest(role)
		if err != nil {
			handler.RespondError(c, err)
			return
		}
		if !handler.BindJSON(c, req) {
			return
		}

		principal, _ := handler.CurrentPrincipal(c)
		created, err := h.svc.AddAccount(c.Request.Context(), principal, req)
		if err != nil {
			handler.RespondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
	}
}

type deleteFunc func(ctx context.Context, actor model.Principal, id uuid.UUID) error

func (h *Handler) delete(message string, fn deleteFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := handler.ParamUUID(c, "id")
		if !ok {
			return
		}

		principal, _ := handler.CurrentPrincipal(c)
		if err := fn(c.Request.Context(), principal, id); err != nil {
			handler.RespondError(c, err)
			return
		}

		resp := handler.NewSuccessResponse(nil)
		resp.Message = message
		resp.Redirect = principal.DashboardPath()
		c.JSON(http.StatusOK, resp)
	}
}
