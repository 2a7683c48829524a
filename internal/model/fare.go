package model

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var usd = message.NewPrinter(language.AmericanEnglish)

// Fare is a predicted ticket price in US dollars.
type Fare float64

// String formats the fare as dollars with exactly two decimals, e.g. $1,312.46.
// Rounding is the correctly rounded decimal of the binary value, ties to even.
func (f Fare) String() string {
	v := float64(f)
	s := usd.Sprintf("%.2f", math.Abs(v))
	// the sign follows the rounded amount, so -0.001 is $0.00
	if v < 0 && s != "0.00" {
		return "-$" + s
	}
	return "$" + s
}

// PredictionResult is the outcome of one trigger: a fare or an error message.
type PredictionResult struct {
	Fare      Fare          `json:"fare"`
	Formatted string        `json:"formatted"`
	Vector    FeatureVector `json:"vector"`
	Error     string        `json:"error,omitempty"`
}

// OK reports whether the result carries a fare.
func (r PredictionResult) OK() bool {
	return r.Error == ""
}

// Message is the one-line text shown to the user for this result.
func (r PredictionResult) Message() string {
	if r.Error != "" {
		return "Error in prediction: " + r.Error
	}
	return "Predicted Fare: " + r.Formatted
}
