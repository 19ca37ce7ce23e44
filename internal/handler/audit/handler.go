package audit

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/handler"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/policy"
	"github.com/jwalitptl/hospital-api/internal/service/audit"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

const maxLimit = 1000

type Handler struct {
	service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	logs := r.Group("/audit-logs", middleware.RequirePolicy(policy.ViewAuditLog))
	{
		logs.GET("", h.ListLogs)
		logs.GET("/export", h.ExportLogs)
	}
}

func (h *Handler) ListLogs(c *gin.Context) {
	logs, ok := h.list(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(logs))
}

func (h *Handler) ExportLogs(c *gin.Context) {
	logs, ok := h.list(c)
	if !ok {
		return
	}

	filename := fmt.Sprintf("audit_logs_%s.csv", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Status(http.StatusOK)

	writer := csv.NewWriter(c.Writer)
	_ = writer.Write([]string{"ID", "Identity ID", "Role", "Action", "Entity Type", "Entity ID", "Created At"})
	for _, l := range logs {
		_ = writer.Write([]string{
			l.ID.String(),
			l.IdentityID.String(),
			string(l.Role),
			l.Action,
			l.EntityType,
			l.EntityID.String(),
			l.CreatedAt.Format(time.RFC3339),
		})
	}
	writer.Flush()
}

func (h *Handler) list(c *gin.Context) ([]*model.AuditLog, bool) {
	filters, err := parseFilters(c)
	if err != nil {
		handler.RespondError(c, err)
		return nil, false
	}

	principal, _ := handler.CurrentPrincipal(c)
	logs, err := h.service.List(c.Request.Context(), principal, filters)
	if err != nil {
		handler.RespondError(c, err)
		return nil, false
	}
	return logs, true
}

func parseFilters(c *gin.Context) (*model.AuditFilters, error) {
	filters := &model.AuditFilters{
		EntityType: c.Query("entity_type"),
		Limit:      100,
	}
	if raw := c.Query("identity_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.Validation("identity_id", "must be a valid id")
		}
		filters.IdentityID = id
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxLimit {
			return nil, errors.Validation("limit", fmt.Sprintf("must be between 1 and %d", maxLimit))
		}
		filters.Limit = limit
	}
	return filters, nil
}
