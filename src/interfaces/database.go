package interfaces

import (
	"astrografia/src/models"
	"context"
)

// -----------------------------------------------------------------------------
// IDatabase defines the contract for storage operations.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize opens the connection and creates missing tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// CreateUser stores a new account. Duplicate emails yield a ConflictError.
	CreateUser(ctx context.Context, email, passwordHash string) (*models.MUser, error)

	// -----------------------------------------------------------------------------

	GetUserByEmail(ctx context.Context, email string) (*models.MUser, error)

	// -----------------------------------------------------------------------------

	GetUserByID(ctx context.Context, id int64) (*models.MUser, error)

	// -----------------------------------------------------------------------------

	// CreatePerspective stores a perspective with its generated interpretation.
	CreatePerspective(ctx context.Context, userID int64, text, responseMD string) (*models.MPerspective, error)

	// -----------------------------------------------------------------------------

	// ListPerspectives returns one page of the user's perspectives, newest first.
	ListPerspectives(ctx context.Context, userID int64, page, perPage int) (*models.MPerspectivePage, error)

	// -----------------------------------------------------------------------------

	// GetPerspective returns a perspective owned by userID or a NotFoundError.
	GetPerspective(ctx context.Context, userID, id int64) (*models.MPerspective, error)

	// -----------------------------------------------------------------------------

	Ping(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
