package interfaces

import (
	"astrografia/src/models"
	"context"
)

// -----------------------------------------------------------------------------
// IEphemeris computes raw body longitudes and house cusps for a birth moment.
// -----------------------------------------------------------------------------

type IEphemeris interface {

	// Name identifies the adapter ("meeus", "remote", "approx", ...)
	Name() string

	// -----------------------------------------------------------------------------

	// ComputeRaw returns longitudes for the configured body list and the house cusps.
	ComputeRaw(ctx context.Context, birth models.MBirthData) (*models.MRawChart, error)
}
