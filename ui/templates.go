package ui

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// renderTemplate executes a template into a buffer first so that a failing
// template never leaves a half written page
func (a *App) renderTemplate(w http.ResponseWriter, status int, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		a.logger.Error().Err(err).Str("template", templateName).Msg("template rendering failed")
		http.Error(w, "Template rendering failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		a.logger.Warn().Err(err).Str("template", templateName).Msg("failed to write response")
	}
}

// writeJSON encodes v before any header is sent, so an encoding failure
// still produces a proper 500
func (a *App) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		a.logger.Error().Err(err).Msg("json encoding failed")
		http.Error(w, "JSON encoding failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		a.logger.Warn().Err(err).Msg("failed to write response")
	}
}
