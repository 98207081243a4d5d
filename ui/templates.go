package ui

import (
	"bytes"
	"net/http"
)

// renderTemplate executes a template with the given data. The output is
// buffered first so a rendering error can still produce a clean 500
// instead of a half-written page.
func (s *Server) renderTemplate(w http.ResponseWriter, templateName string, data map[string]interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		s.logger.Error("template error for %s: %v", templateName, err)
		http.Error(w, "Template rendering failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("error writing template response: %v", err)
	}
}

// pageContext returns the base template data every page shares
func (s *Server) pageContext(username string) map[string]interface{} {
	return map[string]interface{}{
		"SiteName":         s.cfg.SiteName,
		"Version":          s.cfg.Version,
		"Username":         username,
		"JSMath":           s.cfg.JSMath,
		"JSMathImageFonts": s.cfg.JSMathImageFonts,
		"JSMathMacros":     s.cfg.JSMathMacros,
		"TinyMCE":          s.cfg.JEditableTinyMCE,
	}
}
