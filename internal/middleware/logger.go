package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-api/internal/handler"
)

// Logger logs one line per request. Bodies are never logged; they carry passwords and
// medical data.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}

		event = event.
			Str("request_id", c.GetString(handler.ContextRequestID)).
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_agent", c.Request.UserAgent())
		if p, ok := handler.CurrentPrincipal(c); ok {
			event = event.Str("identity_id", p.IdentityID.String()).Str("role", string(p.Role))
		}

		switch {
		case status >= 500:
			event.Msg("Server error")
		case status >= 400:
			event.Msg("Client error")
		default:
			event.Msg("Request processed")
		}
	}
}
