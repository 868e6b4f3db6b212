package http

import (
	"embed"
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go.geoview.io/geoview/internal/usecase"
)

//go:embed ui/index.html
var uiFS embed.FS

// SetupRouter creates and configures the Gin router.
func SetupRouter(session *usecase.Session) *gin.Engine {

	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Get allowed origins from environment variable.
	// Default to allow all origins if not specified.
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	// Create handler.
	handler := NewHandler(session)

	// The viewer page itself.
	router.GET("/", func(c *gin.Context) {
		page, err := uiFS.ReadFile("ui/index.html")
		if err != nil {
			c.String(http.StatusInternalServerError, "UI page missing")
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	v1.POST("/open", handler.OpenFile)
	v1.GET("/metadata", handler.GetMetadata)
	v1.GET("/variables", handler.GetVariables)
	v1.POST("/variables/select", handler.SelectVariable)

	plot := v1.Group("/plot")
	plot.POST("", handler.ConfirmPlan)
	plot.POST("/step", handler.Step)
	plot.GET("/frame", handler.GetFramePNG)
	plot.GET("/legend", handler.GetLegendPNG)
	plot.GET("/probe", handler.Probe)

	v1.POST("/home", handler.Home)
	v1.GET("/history", handler.GetHistory)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
