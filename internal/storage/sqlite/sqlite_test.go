package sqlite_test

import (
	"testing"

	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/storage/sqlite"
	"github.com/slok/opsdesk/internal/storage/sqlite/sqlitetest"
)

type fixture = sqlitetest.Fixture

func newRepo(t *testing.T, pub changefeed.Publisher) *sqlite.Repository {
	return sqlitetest.NewRepository(t, pub)
}

func newFixture(t *testing.T, repo *sqlite.Repository, name string) fixture {
	return sqlitetest.NewFixture(t, repo, name)
}
