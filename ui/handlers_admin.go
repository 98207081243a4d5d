package ui

import (
	"net/http"

	"github.com/certik/femhub-notebook/internal/report"
)

// handleAdminReport renders the usage report page
func (s *Server) handleAdminReport(w http.ResponseWriter, r *http.Request) {
	rep, err := report.Build(r.Context(), s.store)
	if err != nil {
		s.logger.Error("failed to build usage report: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	data := s.pageContext(currentUser(r))
	data["Report"] = rep
	s.renderTemplate(w, "admin_report.html", data)
}

// handleAdminReportXLSX downloads the usage report as a spreadsheet
func (s *Server) handleAdminReportXLSX(w http.ResponseWriter, r *http.Request) {
	rep, err := report.Build(r.Context(), s.store)
	if err != nil {
		s.logger.Error("failed to build usage report: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="notebook-usage.xlsx"`)
	if err := report.WriteXLSX(rep, w); err != nil {
		s.logger.Error("failed to write usage report: %v", err)
	}
}
