package repository

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polygon-service/internal/config"
	"polygon-service/internal/db"
	"polygon-service/internal/model"
)

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env.local")
	os.Exit(m.Run())
}

func newPostgresRepo(t *testing.T) *PolygonRepository {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	log := zerolog.Nop()
	require.NoError(t, db.RunMigrations(dsn, log))

	database, err := db.New(config.DBConfig{DSN: dsn, MaxOpenConns: 4, MaxIdleConns: 4}, log)
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return NewPolygonRepository(database)
}

func TestPostgres_PolygonLifecycle(t *testing.T) {
	r := newPostgresRepo(t)
	ctx := context.Background()

	created := mustCreate(t, r, "integration", points(0, 0, 4, 0, 0, 4))
	t.Cleanup(func() { _, _ = r.Delete(context.Background(), created.ID) })

	found, err := r.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.Points, found.Points)
	assert.True(t, created.CreatedAt.Equal(found.CreatedAt), "created %s, fetched %s", created.CreatedAt, found.CreatedAt)

	updated, err := r.Update(ctx, created.ID, model.PolygonPatch{
		Fields: model.PolygonFieldName,
		Name:   "renamed",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, created.Points, updated.Points)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

	deleted, err := r.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestPostgres_NameTooLongIsDataError(t *testing.T) {
	r := newPostgresRepo(t)

	err := r.Create(context.Background(), &model.Polygon{
		Name:   strings.Repeat("n", 300),
		Points: points(0, 0, 1, 0, 0, 1),
	})

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, StorageErrorData, storageErr.Kind)
	assert.Contains(t, err.Error(), "value too long")
}
