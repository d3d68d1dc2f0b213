package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP server with all routes configured.
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	if apiAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(apiAccessKey))
		{
			api.GET("/articles", handler.APIListArticles)
			api.POST("/articles/fetch", handler.APIFetchArticles)

			api.GET("/filters", handler.APIListFilters)
			api.POST("/filters", handler.APICreateFilter)
			api.GET("/filters/:id", handler.APIGetFilter)
			api.PUT("/filters/:id", handler.APIUpdateFilter)
			api.DELETE("/filters/:id", handler.APIDeleteFilter)
			api.POST("/filters/:id/apply", handler.APIApplyFilter)

			api.GET("/alerts", handler.APIListAlerts)
			api.POST("/alerts", handler.APICreateAlert)
			api.GET("/alerts/:id", handler.APIGetAlert)
			api.PUT("/alerts/:id", handler.APIUpdateAlert)
			api.DELETE("/alerts/:id", handler.APIDeleteAlert)
			api.POST("/alerts/:id/test", handler.APITestAlert)
			api.POST("/alerts/process", handler.APIProcessAlerts)

			api.GET("/history", handler.APIListDispatches)
		}
		slog.Info("API endpoints enabled with authentication")
	} else {
		slog.Info("API endpoints disabled (API_ACCESS_KEY not set)")
	}

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"health": "/health",
			"stats":  "/stats",
		}

		if apiAccessKey != "" {
			endpoints["articles"] = "/api/articles (requires X-API-Key header)"
			endpoints["filters"] = "/api/filters (requires X-API-Key header)"
			endpoints["alerts"] = "/api/alerts (requires X-API-Key header)"
			endpoints["process"] = "/api/alerts/process (POST, requires X-API-Key header)"
			endpoints["history"] = "/api/history (requires X-API-Key header)"
		}

		c.JSON(200, gin.H{
			"service":     "News Alert",
			"description": "News ingestion with keyword-filtered email alerts",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
