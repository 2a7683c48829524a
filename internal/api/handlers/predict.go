package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fare-predict/internal/api/models"
	"fare-predict/internal/collector"
	"fare-predict/internal/model"
	"fare-predict/internal/predict"
)

// PredictHandler serves the JSON prediction endpoints.
type PredictHandler struct {
	adapter *predict.Adapter
	logger  *zap.Logger
}

// NewPredictHandler creates a new prediction handler
func NewPredictHandler(adapter *predict.Adapter, logger *zap.Logger) *PredictHandler {
	return &PredictHandler{adapter: adapter, logger: logger}
}

// Predict handles POST /api/v1/predict
func (h *PredictHandler) Predict(c *gin.Context) {
	if !h.adapter.Available() {
		writeError(c, http.StatusServiceUnavailable, "MODEL_UNAVAILABLE", h.adapter.Diagnostic(), nil)
		return
	}

	v, ok := h.bindVector(c)
	if !ok {
		return
	}

	res, err := h.adapter.Predict(c.Request.Context(), v)
	if err != nil {
		h.writePredictError(c, res, err)
		return
	}

	c.JSON(http.StatusOK, models.PredictResponse{
		Fare:      float64(res.Fare),
		Formatted: res.Formatted,
		Message:   res.Message(),
		Features:  model.VectorLen,
		Vector:    res.Vector.Row(),
	})
}

// Assemble handles POST /api/v1/vector. It validates and orders the inputs
// without calling the model.
func (h *PredictHandler) Assemble(c *gin.Context) {
	v, ok := h.bindVector(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.VectorResponse{
		Features: model.VectorLen,
		Vector:   v.Row(),
		Values:   v.Map(),
	})
}

func (h *PredictHandler) bindVector(c *gin.Context) (model.FeatureVector, bool) {
	var req models.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return model.FeatureVector{}, false
	}
	values, err := req.Values()
	if err != nil {
		writeInputError(c, err)
		return model.FeatureVector{}, false
	}
	col := collector.New()
	if err := col.Apply(values); err != nil {
		writeInputError(c, err)
		return model.FeatureVector{}, false
	}
	return col.Snapshot(), true
}

func (h *PredictHandler) writePredictError(c *gin.Context, res model.PredictionResult, err error) {
	var (
		ierr *predict.InferenceError
		uerr *predict.ModelUnavailableError
	)
	switch {
	case errors.Is(err, predict.ErrPredictionInProgress):
		writeError(c, http.StatusConflict, "PREDICTION_IN_PROGRESS", err.Error(), nil)
	case errors.As(err, &uerr):
		writeError(c, http.StatusServiceUnavailable, "MODEL_UNAVAILABLE", uerr.Diagnostic, nil)
	case errors.As(err, &ierr):
		writeError(c, http.StatusUnprocessableEntity, "INFERENCE_FAILED", res.Message(), map[string]interface{}{
			"cause":  ierr.Err.Error(),
			"vector": res.Vector.Row(),
		})
	default:
		writeInputError(c, err)
	}
}

func writeInputError(c *gin.Context, err error) {
	details := map[string]interface{}{}
	var (
		re *model.RangeError
		ue *model.UnknownFieldError
		pe *model.ParseError
	)
	switch {
	case errors.As(err, &re):
		details["field"] = re.Field
	case errors.As(err, &ue):
		details["field"] = ue.Name
	case errors.As(err, &pe):
		details["field"] = pe.Field
	}
	writeError(c, http.StatusBadRequest, "INVALID_INPUT", err.Error(), details)
}

func writeError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	if len(details) == 0 {
		details = nil
	}
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
