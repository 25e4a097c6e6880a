package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableMigrations(t *testing.T) {
	migrations, err := AvailableMigrations()
	require.NoError(t, err)

	require.Len(t, migrations, 2)
	assert.Equal(t, uint(1), migrations[0].Version)
	assert.Equal(t, "create_polygons", migrations[0].Identifier)
	assert.Equal(t, uint(2), migrations[1].Version)
	assert.Equal(t, "polygons_created_at_index", migrations[1].Identifier)
}

func TestEveryUpMigrationHasDown(t *testing.T) {
	ups, err := migrationFiles.ReadDir(migrationsDir)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, entry := range ups {
		names[entry.Name()] = true
	}
	for _, m := range []string{"000001_create_polygons", "000002_polygons_created_at_index"} {
		assert.True(t, names[m+".up.sql"], m)
		assert.True(t, names[m+".down.sql"], m)
	}
}
