package model

import (
	"fmt"
	"strconv"
)

// RangeError is returned when a value is rejected by a field's constraints.
type RangeError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s=%s %s", e.Field, strconv.FormatFloat(e.Value, 'g', -1, 64), e.Reason)
}

// UnknownFieldError is returned for names that are not part of the feature table.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown feature %q", e.Name)
}

// ParseError is returned when text input cannot be read as the field's kind.
type ParseError struct {
	Field string
	Input string
	Kind  Kind
}

func (e *ParseError) Error() string {
	if e.Kind == KindInt {
		return fmt.Sprintf("%s: %q is not a whole number", e.Field, e.Input)
	}
	return fmt.Sprintf("%s: %q is not a number", e.Field, e.Input)
}
