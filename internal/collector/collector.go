// Package collector holds the current values of the twelve fare inputs.
//
// Each input is validated on entry: a value outside a field's bounds is
// rejected and the previous value is kept, so a snapshot can never carry
// an out-of-range quarter or year.
package collector

import (
	"strconv"
	"strings"

	"fare-predict/internal/model"
)

// Collector is the input state for one session. It is not safe for
// concurrent use; each request or prompt session owns its own.
type Collector struct {
	values model.FeatureVector
}

// New returns a collector initialised with every field's default.
func New() *Collector {
	return &Collector{values: model.DefaultVector()}
}

// Set stores v for the named field if the field accepts it.
func (c *Collector) Set(name string, v float64) error {
	i, ok := model.FieldIndex(name)
	if !ok {
		return &model.UnknownFieldError{Name: name}
	}
	if err := model.Fields[i].Check(v); err != nil {
		return err
	}
	c.values[i] = v
	return nil
}

// SetString parses raw text for the named field and stores it.
// Empty input restores the field's default.
func (c *Collector) SetString(name, raw string) error {
	f, err := model.LookupField(name)
	if err != nil {
		return err
	}
	v, err := Parse(f, raw)
	if err != nil {
		return err
	}
	return c.Set(name, v)
}

// Apply sets several fields at once. Either all values are stored or,
// on the first rejected value, none are.
func (c *Collector) Apply(values map[string]float64) error {
	next := c.values
	for name, v := range values {
		i, ok := model.FieldIndex(name)
		if !ok {
			return &model.UnknownFieldError{Name: name}
		}
		if err := model.Fields[i].Check(v); err != nil {
			return err
		}
		next[i] = v
	}
	c.values = next
	return nil
}

// Reset restores every field to its default.
func (c *Collector) Reset() {
	c.values = model.DefaultVector()
}

// Snapshot returns the current values as a vector. It never triggers a prediction.
func (c *Collector) Snapshot() model.FeatureVector {
	return c.values
}

// Values returns the current values keyed by field name.
func (c *Collector) Values() map[string]float64 {
	return c.values.Map()
}

// Display returns the current values formatted for their input controls.
func (c *Collector) Display() map[string]string {
	out := make(map[string]string, model.VectorLen)
	for i, f := range model.Fields {
		out[f.Name] = f.FormatValue(c.values[i])
	}
	return out
}

// Parse reads raw text as a value of the field's kind.
func Parse(f model.Field, raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return f.Default, nil
	}
	if f.Kind == model.KindInt {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, &model.ParseError{Field: f.Name, Input: raw, Kind: f.Kind}
		}
		return float64(n), nil
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &model.ParseError{Field: f.Name, Input: raw, Kind: f.Kind}
	}
	return x, nil
}
