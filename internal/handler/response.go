package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/errors"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Status   string            `json:"status"`
	Message  string            `json:"message,omitempty"`
	Data     interface{}       `json:"data,omitempty"`
	Errors   map[string]string `json:"errors,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

const (
	ContextPrincipal = "principal"
	ContextRequestID = "request_id"
)

func SetPrincipal(c *gin.Context, p model.Principal) {
	c.Set(ContextPrincipal, p)
}

// CurrentPrincipal returns the authenticated actor; ok is false on public routes.
func CurrentPrincipal(c *gin.Context) (model.Principal, bool) {
	v, exists := c.Get(ContextPrincipal)
	if !exists {
		return model.Principal{}, false
	}
	p, ok := v.(model.Principal)
	return p, ok
}

// RespondUnauthorized sends the 401 every protected route returns without a valid session.
func RespondUnauthorized(c *gin.Context, message string) {
	resp := NewErrorResponse(message)
	resp.Redirect = model.HomePath
	c.AbortWithStatusJSON(http.StatusUnauthorized, resp)
}

// RespondError maps err onto the envelope. Forbidden replies point the actor back at their
// own dashboard; unexpected errors are hidden.
func RespondError(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.Internal(err)
	}

	status := appErr.StatusCode()
	resp := NewErrorResponse(appErr.Message)
	resp.Errors = appErr.Fields

	switch status {
	case http.StatusUnauthorized:
		resp.Redirect = model.HomePath
	case http.StatusForbidden:
		p, _ := CurrentPrincipal(c)
		resp.Redirect = p.DashboardPath()
	case http.StatusInternalServerError:
		resp.Message = "internal server error"
		// logged by the error middleware
		_ = c.Error(err)
	}

	c.AbortWithStatusJSON(status, resp)
}

// BindJSON binds the body into dst and answers 400 with per-field reasons on failure.
func BindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, BindingError(err))
		return false
	}
	return true
}

// BindingError turns validator output into a validation AppError keyed by JSON field name.
func BindingError(err error) error {
	return errors.FromValidator(err)
}

// ParamUUID parses a path parameter, answering 400 when it is not a UUID.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, errors.Validation(name, "must be a valid id"))
		return uuid.Nil, false
	}
	return id, true
}
