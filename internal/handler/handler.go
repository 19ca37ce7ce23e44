package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/model"
)

// Pinger is satisfied by the repository store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the public, non-domain routes.
type Handler struct {
	db Pinger
}

func NewHandler(db Pinger) *Handler {
	return &Handler{db: db}
}

// Home is the neutral landing route; signed-in callers are told where their dashboard is.
func (h *Handler) Home(c *gin.Context) {
	data := gin.H{"service": "hospital-api"}
	resp := NewSuccessResponse(data)
	if p, ok := CurrentPrincipal(c); ok {
		data["username"] = p.Username
		data["role"] = p.Role
		if p.Role != model.RoleUnassigned {
			resp.Redirect = p.DashboardPath()
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
		"time":   time.Now(),
	})
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
			"time":   time.Now(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now(),
	})
}
