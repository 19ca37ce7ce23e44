package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/service/account"
	"github.com/jwalitptl/hospital-api/internal/service/auth"
)

type Handler struct {
	svc      *auth.Service
	accounts *account.Service
}

func NewHandler(svc *auth.Service, accounts *account.Service) *Handler {
	return &Handler{svc: svc, accounts: accounts}
}

// RegisterRoutes mounts the public auth routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/register/:role", h.Register)
		auth.POST("/login", h.Login)
	}
}

// RegisterProtectedRoutes mounts routes that need a session.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/auth/logout", h.Logout)
}

func (h *Handler) Register(c *gin.Context) {
	req, err := account.NewRequest(model.RoleKind(c.Param("role")))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	if !handler.BindJSON(c, req) {
		return
	}

	created, err := h.accounts.Register(c.Request.Context(), req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	resp := handler.NewSuccessResponse(created)
	resp.Message = "account created, please log in"
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	login, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	resp := handler.NewSuccessResponse(login)
	resp.Redirect = login.Redirect
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	principal, _ := handler.CurrentPrincipal(c)
	if err := h.svc.Logout(c.Request.Context(), principal); err != nil {
		handler.RespondError(c, err)
		return
	}

	resp := handler.NewSuccessResponse(nil)
	resp.Message = "logged out"
	resp.Redirect = model.HomePath
	c.JSON(http.StatusOK, resp)
}
