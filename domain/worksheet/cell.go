package worksheet

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// CellType distinguishes compute cells (input/output pairs) from text
// cells (markdown rendered inline).
type CellType string

const (
	CellCompute CellType = "compute"
	CellText    CellType = "text"
)

// Cell is one entry of a worksheet
type Cell struct {
	ID     int      `json:"id"`
	Type   CellType `json:"type"`
	Input  string   `json:"input"`
	Output string   `json:"output,omitempty"`
}

// NewCell creates a cell
func NewCell(id int, typ CellType, input string) Cell {
	return Cell{ID: id, Type: typ, Input: input}
}

// IsText reports whether this is a text cell
func (c *Cell) IsText() bool {
	return c.Type == CellText
}

// HTML returns the cell body for page rendering. Text cells are rendered
// from markdown; compute cells return their stored output unchanged.
func (c *Cell) HTML() string {
	if !c.IsText() {
		return c.Output
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.NoEmptyLineBeforeBlock)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.ToHTML([]byte(c.Input), p, renderer))
}
