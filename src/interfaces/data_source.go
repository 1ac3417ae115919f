package interfaces

import (
	"astrografia/src/models"
	"context"
	"sync"
)

// -----------------------------------------------------------------------------
// IDataSource produces sky snapshots on its own schedule.
// -----------------------------------------------------------------------------

type IDataSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// Start begins producing snapshots
	// ctx: controls the lifecycle (cancellation stops the source)
	// outputChan: channel to push snapshots to
	// wg: WaitGroup to signal when the source has fully stopped
	Start(ctx context.Context, outputChan chan<- *models.MSkySnapshot, wg *sync.WaitGroup) error

	// -----------------------------------------------------------------------------

	// Stop terminates the source; cancelling the context passed to Start does the same.
	Stop() error
}
