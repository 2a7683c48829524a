package models

import (
	"encoding/json"
	"sort"
	"strconv"

	"fare-predict/internal/model"
)

// PredictRequest is the JSON body for POST /api/v1/predict and /api/v1/vector:
// an object of feature name to number, e.g. {"quarter": 2, "year": 2010}.
// Omitted or null fields take their defaults.
type PredictRequest map[string]json.Number

// Values returns the provided fields keyed by feature name. Names are not
// checked here; the collector rejects unknown ones.
func (r PredictRequest) Values() (map[string]float64, error) {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]float64, len(r))
	for _, name := range names {
		n := r[name]
		if n == "" {
			continue
		}
		v, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return nil, &model.ParseError{Field: name, Input: string(n), Kind: model.KindFloat}
		}
		out[name] = v
	}
	return out, nil
}
