package model

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the numeric type a field accepts.
type Kind string

const (
	KindFloat Kind = "float"
	KindInt   Kind = "int"
)

// VectorLen is the number of features the fare model consumes.
const VectorLen = 12

// Field describes one position of the feature vector.
// Bounds are inclusive and only enforced when Bounded is set.
type Field struct {
	Name    string
	Label   string
	Kind    Kind
	Default float64
	Bounded bool
	Min     float64
	Max     float64
}

// Fields is the feature table in the order the model expects.
// Keep this order stable; the model reads the row purely by index.
var Fields = [VectorLen]Field{
	{Name: "lf_ms", Label: "Enter lf_ms:", Kind: KindFloat},
	{Name: "large_ms", Label: "Enter large_ms:", Kind: KindFloat},
	{Name: "fare_lg", Label: "Enter fare_lg:", Kind: KindFloat},
	{Name: "quarter", Label: "Enter quarter:", Kind: KindInt, Default: 1, Bounded: true, Min: 1, Max: 4},
	{Name: "fare_low", Label: "Enter fare_low:", Kind: KindFloat},
	{Name: "year", Label: "Enter Year:", Kind: KindInt, Default: 1993, Bounded: true, Min: 1993, Max: 2024},
	{Name: "feature_7", Label: "Enter feature_7:", Kind: KindFloat},
	{Name: "feature_8", Label: "Enter feature_8:", Kind: KindFloat},
	{Name: "feature_9", Label: "Enter feature_9:", Kind: KindFloat},
	{Name: "feature_10", Label: "Enter feature_10:", Kind: KindFloat},
	{Name: "feature_11", Label: "Enter feature_11:", Kind: KindFloat},
	{Name: "feature_12", Label: "Enter feature_12:", Kind: KindFloat},
}

var fieldIndex = func() map[string]int {
	m := make(map[string]int, VectorLen)
	for i, f := range Fields {
		m[f.Name] = i
	}
	return m
}()

// FieldIndex returns the vector position of the named field.
func FieldIndex(name string) (int, bool) {
	i, ok := fieldIndex[name]
	return i, ok
}

// LookupField returns the descriptor for name.
func LookupField(name string) (Field, error) {
	i, ok := fieldIndex[name]
	if !ok {
		return Field{}, &UnknownFieldError{Name: name}
	}
	return Fields[i], nil
}

// Check reports whether v is acceptable for the field.
func (f Field) Check(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &RangeError{Field: f.Name, Value: v, Reason: "must be a finite number"}
	}
	if f.Kind == KindInt && v != math.Trunc(v) {
		return &RangeError{Field: f.Name, Value: v, Reason: "must be a whole number"}
	}
	if f.Bounded && (v < f.Min || v > f.Max) {
		return &RangeError{
			Field:  f.Name,
			Value:  v,
			Reason: fmt.Sprintf("must be between %s and %s", f.FormatValue(f.Min), f.FormatValue(f.Max)),
		}
	}
	return nil
}

// FormatValue renders v the way an input control for this field shows it.
func (f Field) FormatValue(v float64) string {
	if f.Kind == KindInt {
		return fmt.Sprintf("%d", int64(v))
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if back, _ := strconv.ParseFloat(s, 64); back != v {
		// keep full precision rather than silently rounding user input
		s = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return s
}

// Step is the HTML input step for the field.
func (f Field) Step() string {
	if f.Kind == KindInt {
		return "1"
	}
	return "any"
}
