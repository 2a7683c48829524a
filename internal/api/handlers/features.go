package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fare-predict/internal/api/models"
	"fare-predict/internal/model"
)

// FeatureHandler describes the input fields.
type FeatureHandler struct{}

// NewFeatureHandler creates a new feature handler
func NewFeatureHandler() *FeatureHandler {
	return &FeatureHandler{}
}

// ListFeatures handles GET /api/v1/features
func (h *FeatureHandler) ListFeatures(c *gin.Context) {
	features := make([]models.FeatureInfo, 0, model.VectorLen)
	for i, f := range model.Fields {
		info := models.FeatureInfo{
			Position: i + 1,
			Name:     f.Name,
			Label:    f.Label,
			Type:     string(f.Kind),
			Default:  f.Default,
		}
		if f.Bounded {
			lo, hi := f.Min, f.Max
			info.Min = &lo
			info.Max = &hi
		}
		features = append(features, info)
	}
	c.JSON(http.StatusOK, gin.H{"features": features, "count": len(features)})
}
