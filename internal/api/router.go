// Package api wires the gin router for the fare prediction service.
package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fare-predict/internal/api/handlers"
	"fare-predict/internal/api/middleware"
	"fare-predict/internal/data"
	"fare-predict/internal/predict"
	"fare-predict/internal/web"
)

// Deps are the collaborators the router serves. Adapter is required.
type Deps struct {
	Adapter        *predict.Adapter
	Dataset        *data.Dataset
	Logger         *zap.Logger
	AllowedOrigins []string
}

// NewRouter builds the gin engine with middleware, the HTML form and the JSON API.
func NewRouter(deps Deps) (*gin.Engine, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)

	// Apply middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS(deps.AllowedOrigins))

	// Initialize handlers
	pageHandler := handlers.NewPageHandler(deps.Adapter, logger)
	predictHandler := handlers.NewPredictHandler(deps.Adapter, logger)
	featureHandler := handlers.NewFeatureHandler()
	datasetHandler := handlers.NewDatasetHandler(deps.Dataset)

	router.GET("/health", handlers.Health(deps.Adapter))

	// Form
	router.GET("/", pageHandler.Index)
	router.POST("/predict", pageHandler.Submit)

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/predict", predictHandler.Predict)
		v1.POST("/vector", predictHandler.Assemble)
		v1.GET("/features", featureHandler.ListFeatures)
		v1.GET("/dataset", datasetHandler.Summary)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
			return
		}
		c.Redirect(http.StatusFound, "/")
	})

	return router, nil
}
