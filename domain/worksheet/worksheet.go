package worksheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/certik/femhub-notebook/internal/errors"
)

// Worksheet represents a user-authored notebook document: an ordered list
// of cells owned by one account, addressed as "<owner>/<id>".
type Worksheet struct {
	Owner      string    `json:"owner"`
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	System     string    `json:"system"`
	Published  bool      `json:"published"`
	Cells      []Cell    `json:"cells"`
	LastEdited time.Time `json:"last_edited"`
	LastUser   string    `json:"last_user"`
}

// New creates a worksheet with a single blank compute cell, the way a
// freshly opened notebook page starts out.
func New(owner string, id int, name string) (*Worksheet, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	ws := &Worksheet{
		Owner:      owner,
		ID:         id,
		Name:       strings.TrimSpace(name),
		System:     "sage",
		LastEdited: time.Now(),
		LastUser:   owner,
	}
	ws.Cells = []Cell{NewCell(1, CellCompute, "")}
	return ws, nil
}

// ValidateName checks a worksheet display name
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.InvalidInput("worksheet name cannot be empty")
	}
	return nil
}

// Filename returns the canonical "<owner>/<id>" address of the worksheet
func (ws *Worksheet) Filename() string {
	return fmt.Sprintf("%s/%d", ws.Owner, ws.ID)
}

// Rename changes the display name
func (ws *Worksheet) Rename(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	ws.Name = strings.TrimSpace(name)
	return nil
}

// NextCellID returns one more than the highest cell ID in use
func (ws *Worksheet) NextCellID() int {
	max := 0
	for _, c := range ws.Cells {
		if c.ID > max {
			max = c.ID
		}
	}
	return max + 1
}

// AppendCell adds a cell of the given type at the end and returns it
func (ws *Worksheet) AppendCell(typ CellType, input string) *Cell {
	c := NewCell(ws.NextCellID(), typ, input)
	ws.Cells = append(ws.Cells, c)
	return &ws.Cells[len(ws.Cells)-1]
}

// InsertCellAfter inserts a new cell directly after the cell with the given
// ID. If no such cell exists the new cell goes at the end.
func (ws *Worksheet) InsertCellAfter(afterID int, typ CellType, input string) *Cell {
	c := NewCell(ws.NextCellID(), typ, input)
	for i := range ws.Cells {
		if ws.Cells[i].ID == afterID {
			ws.Cells = append(ws.Cells[:i+1], append([]Cell{c}, ws.Cells[i+1:]...)...)
			return &ws.Cells[i+1]
		}
	}
	ws.Cells = append(ws.Cells, c)
	return &ws.Cells[len(ws.Cells)-1]
}

// Cell returns the cell with the given ID, or nil
func (ws *Worksheet) Cell(id int) *Cell {
	for i := range ws.Cells {
		if ws.Cells[i].ID == id {
			return &ws.Cells[i]
		}
	}
	return nil
}

// DeleteCell removes the cell with the given ID. The last remaining cell
// is never removed; a worksheet always has at least one cell.
func (ws *Worksheet) DeleteCell(id int) bool {
	if len(ws.Cells) <= 1 {
		return false
	}
	for i := range ws.Cells {
		if ws.Cells[i].ID == id {
			ws.Cells = append(ws.Cells[:i], ws.Cells[i+1:]...)
			return true
		}
	}
	return false
}

// Touch records an edit by the given user
func (ws *Worksheet) Touch(username string) {
	ws.LastEdited = time.Now()
	ws.LastUser = username
}

// Text returns the plain-text export of the worksheet: the name on the
// first line, then each cell's input separated by delimiter lines.
func (ws *Worksheet) Text() string {
	var b strings.Builder
	b.WriteString(ws.Name)
	b.WriteString("\n")
	for _, c := range ws.Cells {
		b.WriteString("{{{\n")
		b.WriteString(c.Input)
		if !strings.HasSuffix(c.Input, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("}}}\n")
	}
	return b.String()
}
