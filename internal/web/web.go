// Package web holds the HTML form served at the site root.
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// FieldView is one labelled numeric input on the form.
type FieldView struct {
	Name    string
	Label   string
	Value   string
	Step    string
	Bounded bool
	Min     string
	Max     string
	Error   string
}

// Page is the data rendered by index.html.
type Page struct {
	Title      string
	Available  bool
	Diagnostic string
	Fields     []FieldView
	FormError  string

	// Debug echo of the assembled vector.
	FeatureCount int
	Vector       string

	// Exactly one of these is set after a trigger.
	Result string
	Error  string
}
