// Package api wires the HTM engine's Gin REST surface: middleware,
// health check, and the network-engine routes.
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/htm-project/cortical-api/internal/handlers"
)

// Router assembles the engine's HTTP surface on top of a NetworkHandler.
type Router struct {
	networkHandler *handlers.NetworkHandler
}

// NewRouter creates a Router bound to networkHandler.
func NewRouter(networkHandler *handlers.NetworkHandler) *Router {
	return &Router{networkHandler: networkHandler}
}

// SetupRoutes applies middleware and registers every route on engine.
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(gin.Recovery())
	engine.Use(CORSMiddleware())
	engine.Use(LoggingMiddleware())

	engine.GET("/health", HealthCheck)
	engine.GET("/health/ready", HealthCheck)
	engine.GET("/health/live", HealthCheck)
	engine.GET("/", r.handleRoot)

	r.networkHandler.RegisterRoutes(engine)
}

func (r *Router) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "HTM Cortical Learning Engine API",
		"version": "1.0.0",
		"status":  "running",
		"endpoints": gin.H{
			"health":   "/health",
			"networks": "/api/v1/networks",
		},
	})
}

// HealthCheck reports process liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// LoggingMiddleware formats each request into one compact log line.
func LoggingMiddleware() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[%s] %s %s %d %s %s\n",
			param.TimeStamp.Format("2006/01/02 - 15:04:05"),
			param.Method,
			param.Path,
			param.StatusCode,
			param.Latency,
			param.ClientIP,
		)
	})
}

// CORSMiddleware permits cross-origin requests from any client.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusOK)
			c.Abort()
			return
		}
		c.Next()
	}
}
