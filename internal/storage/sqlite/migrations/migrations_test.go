package migrations_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/slok/opsdesk/internal/storage/sqlite/migrations"
)

func TestMigrator(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	m, err := migrations.NewMigrator(migrations.MigratorConfig{DB: db})
	require.NoError(err)

	v, dirty, err := m.Version(ctx)
	require.NoError(err)
	assert.Equal(uint(0), v)
	assert.False(dirty)

	require.NoError(m.Up(ctx))
	require.NoError(m.Up(ctx), "migrating twice should be a no-op")

	v, dirty, err = m.Version(ctx)
	require.NoError(err)
	assert.Equal(uint(2), v)
	assert.False(dirty)

	for _, table := range []string{"tasks", "payload_type_c2_profiles"} {
		var n int
		require.NoError(db.QueryRow(`SELECT count(*) FROM ` + table).Scan(&n))
		assert.Equal(0, n)
	}

	require.NoError(m.Down(ctx))
	for _, table := range []string{"tasks", "payload_type_c2_profiles"} {
		_, err = db.Exec(`SELECT count(*) FROM ` + table)
		assert.Error(err)
	}
}

func TestMigratorWithoutDB(t *testing.T) {
	_, err := migrations.NewMigrator(migrations.MigratorConfig{})
	assert.Error(t, err)
}
