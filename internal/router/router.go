package router

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-api/internal/handler"
	accounthandler "github.com/jwalitptl/hospital-api/internal/handler/account"
	appointmenthandler "github.com/jwalitptl/hospital-api/internal/handler/appointment"
	audithandler "github.com/jwalitptl/hospital-api/internal/handler/audit"
	authhandler "github.com/jwalitptl/hospital-api/internal/handler/auth"
	billinghandler "github.com/jwalitptl/hospital-api/internal/handler/billing"
	dashboardhandler "github.com/jwalitptl/hospital-api/internal/handler/dashboard"
	inventoryhandler "github.com/jwalitptl/hospital-api/internal/handler/inventory"
	prescriptionhandler "github.com/jwalitptl/hospital-api/internal/handler/prescription"
	prometheushandler "github.com/jwalitptl/hospital-api/internal/handler/prometheus"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/service/account"
	"github.com/jwalitptl/hospital-api/internal/service/appointment"
	"github.com/jwalitptl/hospital-api/internal/service/audit"
	"github.com/jwalitptl/hospital-api/internal/service/auth"
	"github.com/jwalitptl/hospital-api/internal/service/billing"
	"github.com/jwalitptl/hospital-api/internal/service/dashboard"
	"github.com/jwalitptl/hospital-api/internal/service/inventory"
	"github.com/jwalitptl/hospital-api/internal/service/prescription"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth          *auth.Service
	Accounts      *account.Service
	Appointments  *appointment.Service
	Prescriptions *prescription.Service
	Billing       *billing.Service
	Inventory     *inventory.Service
	Dashboard     *dashboard.Service
	Audit         *audit.Service
}

type RouterConfig struct {
	Mode             string
	CORS             middleware.CORSConfig
	Security         middleware.SecurityConfig
	SizeLimit        middleware.SizeLimitConfig
	RateLimit        *middleware.RateLimiterConfig
	MetricsNamespace string
	ExposeMetrics    bool
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	h       *handler.Handler
	authH   *authhandler.Handler
	promH   *prometheushandler.Handler
	domainH []Handler
	config  RouterConfig
}

func NewRouter(svcs Services, db handler.Pinger, config RouterConfig) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	middleware.RegisterValidators()

	engine := gin.New()
	if config.MetricsNamespace == "" {
		config.MetricsNamespace = "hms"
	}

	r := &Router{
		engine: engine,
		auth:   middleware.NewAuthMiddleware(svcs.Auth),
		h:      handler.NewHandler(db),
		authH:  authhandler.NewHandler(svcs.Auth, svcs.Accounts),
		promH:  prometheushandler.New(config.MetricsNamespace),
		config: config,
		domainH: []Handler{
			dashboardhandler.NewHandler(svcs.Dashboard),
			accounthandler.NewHandler(svcs.Accounts),
			appointmenthandler.NewHandler(svcs.Appointments),
			prescriptionhandler.NewHandler(svcs.Prescriptions),
			billinghandler.NewHandler(svcs.Billing),
			inventoryhandler.NewHandler(svcs.Inventory),
			audithandler.NewHandler(svcs.Audit),
		},
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.promH.Middleware(),
		middleware.SecurityHeaders(config.Security),
		middleware.CORS(config.CORS),
	)
	if config.RateLimit != nil {
		engine.Use(middleware.NewRateLimiter(*config.RateLimit).RateLimit())
	}
	if config.SizeLimit.MaxBodySize > 0 {
		engine.Use(middleware.SizeLimit(config.SizeLimit))
	}

	r.setup()
	return r
}

func (r *Router) setup() {
	if r.config.ExposeMetrics {
		r.engine.GET("/metrics", r.promH.Handler())
	}

	api := r.engine.Group("/api/v1")
	r.setupHealthCheck(api)
	r.setupPublicRoutes(api)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())
	r.setupProtectedRoutes(protected)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
	}
}

func (r *Router) setupPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/", r.auth.Optional(), r.h.Home)
	r.authH.RegisterRoutes(rg)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	r.authH.RegisterProtectedRoutes(rg)
	for _, h := range r.domainH {
		h.RegisterRoutes(rg)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Metrics exposes the HTTP metrics so other components can share the registry.
func (r *Router) Metrics() *metrics.Metrics {
	return r.promH.Metrics()
}
