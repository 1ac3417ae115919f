package interfaces

import (
	"astrografia/src/models"
	"context"
)

// -----------------------------------------------------------------------------
// IChartCache is a bounded store of raw charts keyed by the full request tuple.
// Implementations must be safe for concurrent use.
// -----------------------------------------------------------------------------

type IChartCache interface {
	Get(ctx context.Context, key string) (*models.MRawChart, bool)

	// -----------------------------------------------------------------------------

	Add(ctx context.Context, key string, chart *models.MRawChart)

	// -----------------------------------------------------------------------------

	Len() int

	// -----------------------------------------------------------------------------

	Purge(ctx context.Context)
}
