package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"astrografia/src/helpers"
	"astrografia/src/logger"
	"astrografia/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *AsyncSQLiteDB {
	t.Helper()
	cfg := &models.MConfig{Storage: models.MStorageConfig{
		DBType: "sqlite",
		DBPath: filepath.Join(t.TempDir(), "test.db"),
	}}
	db, err := NewAsyncSQLiteDB(cfg, logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	t.Cleanup(func() { db.Close() })
	return db
}

// -----------------------------------------------------------------------------

func TestUsers(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u, err := db.CreateUser(ctx, "ana@example.com", "hash")
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	_, err = db.CreateUser(ctx, "ana@example.com", "other")
	assert.True(t, helpers.IsConflict(err), "got %v", err)

	byEmail, err := db.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "hash", byEmail.PasswordHash)

	byID, err := db.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", byID.Email)

	_, err = db.GetUserByEmail(ctx, "nobody@example.com")
	assert.True(t, helpers.IsNotFound(err))
	_, err = db.GetUserByID(ctx, 999)
	assert.True(t, helpers.IsNotFound(err))
}

func TestInitializeIsRepeatable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.CreateUser(ctx, "keep@example.com", "hash")
	require.NoError(t, err)

	require.NoError(t, db.createTables())
	_, err = db.GetUserByEmail(ctx, "keep@example.com")
	assert.NoError(t, err)
}

func TestPerspectivePagination(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	u, err := db.CreateUser(ctx, "p@example.com", "hash")
	require.NoError(t, err)
	for i := 1; i <= 25; i++ {
		_, err := db.CreatePerspective(ctx, u.ID, fmt.Sprintf("text %d", i), "md")
		require.NoError(t, err)
	}

	first, err := db.ListPerspectives(ctx, u.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, first.Total)
	assert.Equal(t, 3, first.Pages)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrev)
	require.Len(t, first.Perspectives, 10)
	assert.Equal(t, "text 25", first.Perspectives[0].Text)

	last, err := db.ListPerspectives(ctx, u.ID, 3, 10)
	require.NoError(t, err)
	assert.Len(t, last.Perspectives, 5)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrev)
	assert.Equal(t, "text 1", last.Perspectives[4].Text)

	beyond, err := db.ListPerspectives(ctx, u.ID, 9, 10)
	require.NoError(t, err)
	assert.Empty(t, beyond.Perspectives)
	assert.NotNil(t, beyond.Perspectives)
}

func TestPerspectivesAreScopedToOwner(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	owner, _ := db.CreateUser(ctx, "owner@example.com", "hash")
	other, _ := db.CreateUser(ctx, "other@example.com", "hash")

	p, err := db.CreatePerspective(ctx, owner.ID, "my question", "## answer")
	require.NoError(t, err)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := db.GetPerspective(ctx, owner.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "## answer", got.ResponseMD)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))

	_, err = db.GetPerspective(ctx, other.ID, p.ID)
	assert.True(t, helpers.IsNotFound(err))

	page, err := db.ListPerspectives(ctx, other.ID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Zero(t, page.Pages)
}

func TestPing(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, db.Ping(context.Background()))

	fresh, _ := NewAsyncSQLiteDB(&models.MConfig{}, logger.NewNop())
	assert.Error(t, fresh.Ping(context.Background()))
}

// -----------------------------------------------------------------------------

func TestNormalizePage(t *testing.T) {
	page, per := NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPerPage, per)

	_, per = NormalizePage(2, 500)
	assert.Equal(t, MaxPerPage, per)
}

func TestRebindDollar(t *testing.T) {
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", rebindDollar("SELECT 1 WHERE a = ? AND b = ?"))
}

func TestSchemaName(t *testing.T) {
	assert.Equal(t, "astrografia_api", schemaName("Astrografia API"))
	assert.Equal(t, "astrografia", schemaName(""))
}

func TestNewDatabase(t *testing.T) {
	db, err := NewDatabase(&models.MConfig{Storage: models.MStorageConfig{DBType: "postgres"}}, logger.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &PostgresDB{}, db)

	_, err = NewDatabase(&models.MConfig{Storage: models.MStorageConfig{DBType: "mysql"}}, logger.NewNop())
	assert.Error(t, err)
}
