package interfaces

import "astrografia/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defines the interface for sharing sky snapshots with connected clients.
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast queues a snapshot for every subscriber and records it as latest.
	Broadcast(snapshot *models.MSkySnapshot)

	// -----------------------------------------------------------------------------
	// UpdateAllDatas records the snapshot as latest state without broadcasting.
	UpdateAllDatas(snapshot *models.MSkySnapshot)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
