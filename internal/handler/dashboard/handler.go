package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/dashboard"
)

type Handler struct {
	svc *dashboard.Service
}

func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.Own)
	r.GET("/dashboard/:role", h.Get)
}

// Own serves the caller's dashboard; identities without a profile go home.
func (h *Handler) Own(c *gin.Context) {
	principal, _ := handler.CurrentPrincipal(c)
	if principal.Role == model.RoleUnassigned {
		resp := handler.NewSuccessResponse(nil)
		resp.Message = "no role assigned to this account"
		resp.Redirect = model.HomePath
		c.JSON(http.StatusOK, resp)
		return
	}
	h.serve(c, principal, principal.Role)
}

func (h *Handler) Get(c *gin.Context) {
	principal, _ := handler.CurrentPrincipal(c)
	h.serve(c, principal, model.RoleKind(c.Param("role")))
}

func (h *Handler) serve(c *gin.Context, principal model.Principal, role model.RoleKind) {
	data, err := h.svc.Get(c.Request.Context(), principal, role)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(data))
}
