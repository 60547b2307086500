package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter wires the seating routes, health check and metrics endpoint
func NewRouter(h *SeatingHandler, gatherer prometheus.Gatherer, logger zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/guests", h.GetGuests)

		tableRoutes := apiV1.Group("/tables")
		{
			tableRoutes.GET("", h.GetTables)
			tableRoutes.GET("/:id/seats", h.GetTableSeats)
		}

		apiV1.GET("/geometry/capacity", h.GetCapacity)

		seatingRoutes := apiV1.Group("/seating")
		{
			seatingRoutes.POST("/auto-assign", h.AutoAssign)
			seatingRoutes.GET("/violations", h.GetViolations)
			seatingRoutes.POST("/assign", h.Assign)
			seatingRoutes.POST("/unassign", h.Unassign)
			seatingRoutes.POST("/swap", h.Swap)
			seatingRoutes.POST("/bulk-assign", h.BulkAssign)
		}
	}

	return router
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		evt := logger.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			evt = logger.Error()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Handled request")
	}
}
