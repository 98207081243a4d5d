package ui

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/certik/femhub-notebook/domain/worksheet"
	"github.com/certik/femhub-notebook/internal/errors"
	"github.com/certik/femhub-notebook/internal/jsmath"
)

// menuEntry is one item of a topbar dropdown
type menuEntry struct {
	Label  string
	Action string
}

// topbarMenus are the static worksheet menus. The actions are handled by
// the page script.
var topbarMenus = []struct {
	Name    string
	Entries []menuEntry
}{
	{"File", []menuEntry{
		{"Load worksheet from a file...", "upload"},
		{"Save worksheet to a file...", "download"},
		{"Print", "print"},
		{"Rename worksheet", "rename"},
		{"Copy worksheet", "copy"},
		{"Delete worksheet", "delete"},
	}},
	{"Action", []menuEntry{
		{"Interrupt", "interrupt"},
		{"Restart worksheet", "restart"},
		{"Save and quit worksheet", "save_quit"},
		{"Delete all output", "delete_output"},
	}},
	{"Data", []menuEntry{
		{"Upload data file...", "upload_data"},
	}},
	{"Help", []menuEntry{
		{"Documentation", "doc"},
		{"Report a problem", "report"},
	}},
}

// handleIndex sends the user to their worksheet list
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/home/"+currentUser(r), http.StatusSeeOther)
}

// ownerOrAdmin checks that the logged-in user may touch owner's worksheets
func (s *Server) ownerOrAdmin(r *http.Request, owner string) bool {
	username := currentUser(r)
	if username == owner {
		return true
	}
	u, err := s.users.GetByUsername(r.Context(), username)
	return err == nil && u.IsAdmin()
}

// handleWorksheetList renders a user's worksheet list
func (s *Server) handleWorksheetList(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "user")
	if !s.ownerOrAdmin(r, owner) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	sheets, err := s.store.List(r.Context(), owner)
	if err != nil {
		s.logger.Error("failed to list worksheets for %s: %v", owner, err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	data := s.pageContext(currentUser(r))
	data["Owner"] = owner
	data["Worksheets"] = sheets
	s.renderTemplate(w, "worksheet_list.html", data)
}

// handleNewWorksheet creates a worksheet and opens it
func (s *Server) handleNewWorksheet(w http.ResponseWriter, r *http.Request) {
	username := currentUser(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	name := r.PostFormValue("name")
	if strings.TrimSpace(name) == "" {
		name = "Untitled"
	}

	id, err := s.store.NextID(r.Context(), username)
	if err != nil {
		s.logger.Error("failed to allocate worksheet id: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	ws, err := worksheet.New(username, id, name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.store.Save(r.Context(), ws); err != nil {
		s.logger.Error("failed to save new worksheet: %v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/home/%s/%d/", username, id), http.StatusSeeOther)
}

// renderedCell is a cell prepared for the worksheet template
type renderedCell struct {
	ID     int
	IsText bool
	Input  string
	Output string
}

// handleWorksheetPage renders the worksheet editing page
func (s *Server) handleWorksheetPage(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "user")
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if !s.ownerOrAdmin(r, owner) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	ws, err := s.store.Load(r.Context(), owner, id)
	if err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to load worksheet %s/%d: %v", owner, id, err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	cells := make([]renderedCell, 0, len(ws.Cells))
	for i := range ws.Cells {
		c := &ws.Cells[i]
		cells = append(cells, renderedCell{
			ID:     c.ID,
			IsText: c.IsText(),
			Input:  c.Input,
			Output: jsmath.MathParse(c.HTML()),
		})
	}

	data := s.pageContext(currentUser(r))
	data["Worksheet"] = ws.Name
	data["WorksheetFilename"] = ws.Filename()
	data["Owner"] = owner
	data["ID"] = ws.ID
	data["Cells"] = cells
	data["Published"] = ws.Published
	data["Menus"] = topbarMenus
	s.renderTemplate(w, "worksheet.html", data)
}

// handleWorksheetSave updates the worksheet name and cell inputs from the
// submitted form. Cell fields are named cell_<id>.
func (s *Server) handleWorksheetSave(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "user")
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if !s.ownerOrAdmin(r, owner) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	ws, err := s.store.Load(r.Context(), owner, id)
	if err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to load worksheet %s/%d: %v", owner, id, err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	if name := r.PostFormValue("name"); name != "" {
		if err := ws.Rename(name); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	for key, values := range r.PostForm {
		if !strings.HasPrefix(key, "cell_") || len(values) == 0 {
			continue
		}
		cellID, err := strconv.Atoi(strings.TrimPrefix(key, "cell_"))
		if err != nil {
			continue
		}
		if c := ws.Cell(cellID); c != nil {
			c.Input = values[0]
		}
	}
	ws.Touch(currentUser(r))

	if err := s.store.Save(r.Context(), ws); err != nil {
		s.logger.Error("failed to save worksheet %s/%d: %v", owner, id, err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/home/%s/%d/", owner, id), http.StatusSeeOther)
}

// handleWorksheetDelete moves a worksheet to the trash
func (s *Server) handleWorksheetDelete(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "user")
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if !s.ownerOrAdmin(r, owner) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if err := s.store.Trash(r.Context(), owner, id); err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to trash worksheet %s/%d: %v", owner, id, err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/home/"+owner, http.StatusSeeOther)
}
