package app

import (
	"net/http"
	"time"

	"go-employee/internal/config"
	"go-employee/internal/employee"
	"go-employee/internal/middleware"
	"go-employee/internal/shared/apperror"
	"go-employee/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const BannerMessage = "Employee Management API is working!"

type HealthResponse struct {
	Status    string  `json:"status"`
	Uptime    float64 `json:"uptime"`
	Timestamp string  `json:"timestamp"`
}

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	employeeService employee.Service,
	rdb *redis.Client,
	reg *prometheus.Registry,
) {
	httpMetrics := middleware.NewHTTPMetrics(reg)

	router.Use(
		middleware.RequestContext(zap.L().Named("http")),
		middleware.CORS(cfg.CORSOrigin),
		httpMetrics.Middleware(),
	)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	if cfg.UploadsDir != "" {
		router.Static("/uploads", cfg.UploadsDir)
	}

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService)

	// --- Routes Registration ---
	api := router.Group("/api")
	{
		api.GET("", banner)
		api.GET("/", banner)
		api.GET("/health", health(time.Now()))
		employee.RegisterRoutes(api, employeeHandler, rdb)
	}

	router.NoRoute(notFound)
}

func newMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func banner(c *gin.Context) {
	response.Message(c, http.StatusOK, BannerMessage)
}

func notFound(c *gin.Context) {
	response.AbortWithError(c, apperror.ToHTTP(apperror.ErrNotFound))
}

func health(startedAt time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		response.Success(c, http.StatusOK, HealthResponse{
			Status:    "ok",
			Uptime:    now.Sub(startedAt).Seconds(),
			Timestamp: now.UTC().Format(time.RFC3339),
		})
	}
}
