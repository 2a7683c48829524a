package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fare-predict/internal/collector"
	"fare-predict/internal/model"
	"fare-predict/internal/predict"
	"fare-predict/internal/web"
)

const pageTitle = "Airline Fare Prediction App"

// PageHandler serves the HTML form.
type PageHandler struct {
	adapter *predict.Adapter
	logger  *zap.Logger
}

// NewPageHandler creates a new form page handler
func NewPageHandler(adapter *predict.Adapter, logger *zap.Logger) *PageHandler {
	return &PageHandler{adapter: adapter, logger: logger}
}

// Index handles GET /
func (h *PageHandler) Index(c *gin.Context) {
	col := collector.New()
	page := h.newPage(col.Display(), nil)
	if !h.adapter.Available() {
		c.HTML(http.StatusServiceUnavailable, "index.html", page)
		return
	}
	h.echoVector(&page, col.Snapshot())
	c.HTML(http.StatusOK, "index.html", page)
}

// Submit handles POST /predict, the form trigger.
func (h *PageHandler) Submit(c *gin.Context) {
	if !h.adapter.Available() {
		c.HTML(http.StatusServiceUnavailable, "index.html", h.newPage(collector.New().Display(), nil))
		return
	}

	col := collector.New()
	raw := make(map[string]string, model.VectorLen)
	fieldErrs := map[string]string{}
	for _, f := range model.Fields {
		in := c.PostForm(f.Name)
		raw[f.Name] = in
		if err := col.SetString(f.Name, in); err != nil {
			fieldErrs[f.Name] = err.Error()
		}
	}
	if len(fieldErrs) > 0 {
		page := h.newPage(raw, fieldErrs)
		page.FormError = "Please correct the highlighted fields."
		c.HTML(http.StatusBadRequest, "index.html", page)
		return
	}

	// Re-render what the user typed so a failed prediction can be retried as-is.
	for name, shown := range col.Display() {
		if raw[name] == "" {
			raw[name] = shown
		}
	}
	page := h.newPage(raw, nil)
	v := col.Snapshot()
	h.echoVector(&page, v)

	res, err := h.adapter.Predict(c.Request.Context(), v)
	switch {
	case err == nil:
		page.Result = res.Message()
		c.HTML(http.StatusOK, "index.html", page)
	case errors.Is(err, predict.ErrPredictionInProgress):
		page.Error = "A prediction is already in progress. Please wait and try again."
		c.HTML(http.StatusConflict, "index.html", page)
	default:
		h.logger.Warn("form prediction failed", zap.Error(err))
		page.Error = res.Message()
		c.HTML(http.StatusOK, "index.html", page)
	}
}

func (h *PageHandler) newPage(values map[string]string, errs map[string]string) web.Page {
	page := web.Page{
		Title:      pageTitle,
		Available:  h.adapter.Available(),
		Diagnostic: h.adapter.Diagnostic(),
		Fields:     make([]web.FieldView, 0, model.VectorLen),
	}
	for _, f := range model.Fields {
		fv := web.FieldView{
			Name:    f.Name,
			Label:   f.Label,
			Value:   values[f.Name],
			Step:    f.Step(),
			Bounded: f.Bounded,
			Error:   errs[f.Name],
		}
		if f.Bounded {
			fv.Min = f.FormatValue(f.Min)
			fv.Max = f.FormatValue(f.Max)
		}
		page.Fields = append(page.Fields, fv)
	}
	return page
}

func (h *PageHandler) echoVector(page *web.Page, v model.FeatureVector) {
	page.FeatureCount = len(v)
	page.Vector = v.String()
}
