package interfaces

import (
	"astrografia/src/models"
	"context"
)

// -----------------------------------------------------------------------------
// IGeocoder resolves a place name to coordinates.
// -----------------------------------------------------------------------------

type IGeocoder interface {
	Geocode(ctx context.Context, place string) (*models.MGeoLocation, error)
}
