package inference

import (
	"context"
	"encoding/json"
	"errors"
	"os"
)

// Linear is an ordinary least squares model: intercept + coefficients · row.
type Linear struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// LoadLinear reads a JSON linear model from path.
func LoadLinear(path string) (*Linear, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Linear
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, err
	}
	if len(m.Coefficients) == 0 {
		return nil, errors.New("linear model has no coefficients")
	}
	return &m, nil
}

func (m *Linear) Predict(ctx context.Context, rows [][]float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		if err := checkRow(i, row, len(m.Coefficients)); err != nil {
			return nil, err
		}
		y := m.Intercept
		for j, x := range row {
			y += m.Coefficients[j] * x
		}
		out[i] = y
	}
	return out, nil
}
