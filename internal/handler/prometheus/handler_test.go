package prometheus

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := New("hms")

	r := gin.New()
	r.Use(h.Middleware())
	r.GET("/appointments/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", h.Handler())

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/appointments/"+id, nil))
		require.Equal(t, http.StatusNotFound, w.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(
		h.Metrics().HTTPRequests.WithLabelValues(http.MethodGet, "/appointments/:id", "404")))
	assert.Equal(t, 2.0, testutil.ToFloat64(
		h.Metrics().HTTPErrors.WithLabelValues(http.MethodGet, "/appointments/:id", "404")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hms_api_http_requests_total")
}
