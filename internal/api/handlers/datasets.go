package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fare-predict/internal/api/models"
	"fare-predict/internal/data"
	"fare-predict/internal/predict"
)

// DatasetHandler reports on the optional local dataset.
type DatasetHandler struct {
	dataset *data.Dataset
}

// NewDatasetHandler creates a new dataset handler. A nil dataset is reported as disabled.
func NewDatasetHandler(dataset *data.Dataset) *DatasetHandler {
	if dataset == nil {
		dataset = data.NewDataset(nil, nil)
	}
	return &DatasetHandler{dataset: dataset}
}

// Summary handles GET /api/v1/dataset
func (h *DatasetHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, h.dataset.Summary())
}

// Health handles GET /health
func Health(adapter *predict.Adapter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:         "ok",
			ModelAvailable: adapter.Available(),
			Diagnostic:     adapter.Diagnostic(),
		})
	}
}
