package ports

import (
	"context"

	"github.com/certik/femhub-notebook/domain/worksheet"
)

// WorksheetStore defines the interface for worksheet persistence. The
// canonical implementation keeps worksheets on the filesystem under
// home/<username>/<id>/.
type WorksheetStore interface {
	// Save persists a worksheet atomically
	Save(ctx context.Context, ws *worksheet.Worksheet) error

	// Load retrieves one worksheet
	Load(ctx context.Context, username string, id int) (*worksheet.Worksheet, error)

	// List returns a user's worksheets ordered by id
	List(ctx context.Context, username string) ([]*worksheet.Worksheet, error)

	// Users returns every username that owns at least one worksheet
	Users(ctx context.Context) ([]string, error)

	// NextID allocates the next worksheet id for a user
	NextID(ctx context.Context, username string) (int, error)

	// Trash moves a worksheet out of the user's home into the trash area
	Trash(ctx context.Context, username string, id int) error
}
