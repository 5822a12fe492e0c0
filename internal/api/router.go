// Package api wires the HTTP routes of the tracker.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Ramouth/BiomeQuest-sub000/internal/api/tracker"
	"github.com/Ramouth/BiomeQuest-sub000/internal/config"
	"github.com/Ramouth/BiomeQuest-sub000/pkg/logger"
)

// HealthChecker is a dependency checked by /health.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Dependencies are the components the router serves.
type Dependencies struct {
	Handler  *tracker.Handler
	Database HealthChecker
	Cache    HealthChecker // optional
	Metrics  config.PrometheusConfig
	Log      *logger.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Logging(deps.Log))

	router.GET("/health", healthHandler(deps))

	if deps.Metrics.Enabled {
		path := deps.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		router.GET(path, gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/api/v1")
	deps.Handler.Register(v1)

	return router
}

func healthHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{}
		status := http.StatusOK

		if err := deps.Database.Health(ctx); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}

		if deps.Cache != nil {
			if err := deps.Cache.Health(ctx); err != nil {
				// The cache is optional: report it without failing the check.
				checks["cache"] = err.Error()
			} else {
				checks["cache"] = "ok"
			}
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":    state,
			"checks":    checks,
			"timestamp": time.Now().UTC(),
		})
	}
}
