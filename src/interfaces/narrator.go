package interfaces

import (
	"astrografia/src/models"
	"context"
)

// -----------------------------------------------------------------------------
// INarrator turns a chart or a free-text perspective into markdown.
// -----------------------------------------------------------------------------

type INarrator interface {
	Name() string

	// -----------------------------------------------------------------------------

	Generate(ctx context.Context, req models.MNarrativeRequest) (string, error)
}
