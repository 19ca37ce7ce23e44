package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/billing"
)

type Handler struct {
	svc *billing.Service
}

func NewHandler(svc *billing.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/prescriptions/:id/bills", h.Generate)
	r.GET("/bills", middleware.RequireRole(model.RolePatient, model.RoleStaff), h.List)
	r.DELETE("/bills/:id", h.Delete)
}

func (h *Handler) Generate(c *gin.Context) {
	prescriptionID, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.GenerateBillRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	principal, _ := handler.CurrentPrincipal(c)
	bill, err := h.svc.Generate(c.Request.Context(), principal, prescriptionID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	resp := handler.NewSuccessResponse(bill)
	resp.Message = "bill generated"
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) List(c *gin.Context) {
	principal, _ := handler.CurrentPrincipal(c)
	bills, err := h.svc.List(c.Request.Context(), principal)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(bills))
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
	resp.Message = "bill deleted"
	resp.Redirect = principal.DashboardPath()
	c.JSON(http.StatusOK, resp)
}
