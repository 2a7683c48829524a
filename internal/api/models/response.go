package models

// PredictResponse is returned by a successful prediction.
type PredictResponse struct {
	Fare      float64   `json:"fare"`
	Formatted string    `json:"formatted"` // e.g. "$312.46"
	Message   string    `json:"message"`
	Features  int       `json:"features"`
	Vector    []float64 `json:"vector"`
}

// VectorResponse is the assembled vector without a prediction.
type VectorResponse struct {
	Features int                `json:"features"`
	Vector   []float64          `json:"vector"`
	Values   map[string]float64 `json:"values"`
}

// FeatureInfo describes one input field.
type FeatureInfo struct {
	Position int      `json:"position"`
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Type     string   `json:"type"` // "float", "int"
	Default  float64  `json:"default"`
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
}

// HealthResponse reports liveness and whether predictions can be served.
type HealthResponse struct {
	Status         string `json:"status"`
	ModelAvailable bool   `json:"model_available"`
	Diagnostic     string `json:"diagnostic,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
