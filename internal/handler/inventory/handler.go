package inventory

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/policy"
	"github.com/jwalitptl/hospital-api/internal/service/inventory"
)

type Handler struct {
	svc *inventory.Service
}

func NewHandler(svc *inventory.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	items := r.Group("/inventory", middleware.RequirePolicy(policy.ManageInventory))
	{
		items.GET("", h.List)
		items.POST("", h.Create)
		items.PUT("/:id", h.Update)
		items.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	principal, _ := handler.CurrentPrincipal(c)
	items, err := h.svc.List(c.Request.Context(), principal)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(items))
}

func (h *Handler) Create(c *gin.Context) {
	var req model.InventoryRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	principal, _ := handler.CurrentPrincipal(c)
	item, err := h.svc.Create(c.Request.Context(), principal, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(item))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.InventoryRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	principal, _ := handler.CurrentPrincipal(c)
	item, err := h.svc.Update(c.Request.Context(), principal, id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(item))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	principal, _ := handler.CurrentPrincipal(c)
	if err := h.svc.Delete(c.Request.Context(), principal, id); err != nil {
		handler.RespondError(c, err)
		return
	}

	resp := handler.NewSuccessResponse(nil)
	resp.Message = "inventory item deleted"
	resp.Redirect = principal.DashboardPath()
	c.JSON(http.StatusOK, resp)
}
