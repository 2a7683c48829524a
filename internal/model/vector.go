package model

import (
	"fmt"
	"strconv"
	"strings"
)

// FeatureVector is the ordered input row for one prediction.
// It is a value type: copies never alias, and the length is fixed at VectorLen.
type FeatureVector [VectorLen]float64

// DefaultVector returns a vector holding every field's default.
func DefaultVector() FeatureVector {
	var v FeatureVector
	for i, f := range Fields {
		v[i] = f.Default
	}
	return v
}

// Row returns a fresh slice copy of the vector, in model order.
func (v FeatureVector) Row() []float64 {
	row := make([]float64, VectorLen)
	copy(row, v[:])
	return row
}

// Get returns the value of the named field.
func (v FeatureVector) Get(name string) (float64, error) {
	i, ok := FieldIndex(name)
	if !ok {
		return 0, &UnknownFieldError{Name: name}
	}
	return v[i], nil
}

// Validate re-checks every position against its field.
func (v FeatureVector) Validate() error {
	for i, f := range Fields {
		if err := f.Check(v[i]); err != nil {
			return err
		}
	}
	return nil
}

// Map returns the vector keyed by field name.
func (v FeatureVector) Map() map[string]float64 {
	out := make(map[string]float64, VectorLen)
	for i, f := range Fields {
		out[f.Name] = v[i]
	}
	return out
}

// String renders the vector as a single bracketed row, e.g. [[0.8 0.5 250 2 ...]].
func (v FeatureVector) String() string {
	parts := make([]string, VectorLen)
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprintf("[[%s]]", strings.Join(parts, " "))
}

// VectorFromRow builds a vector from a model-ordered row.
func VectorFromRow(row []float64) (FeatureVector, error) {
	var v FeatureVector
	if len(row) != VectorLen {
		return v, fmt.Errorf("expected %d features, got %d", VectorLen, len(row))
	}
	copy(v[:], row)
	if err := v.Validate(); err != nil {
		return FeatureVector{}, err
	}
	return v, nil
}
