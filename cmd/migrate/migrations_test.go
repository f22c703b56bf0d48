package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libraryapi/internal/testutil"
)

func TestCollectMigrations_ParsesMigrationsDir(t *testing.T) {
	migrations, err := goose.CollectMigrations(testutil.MigrationsDir(), 0, goose.MaxVersion)

	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	for i, m := range migrations {
		assert.Equal(t, int64(i+1), m.Version, "migration versions must be sequential")
	}
}

func TestSQLMigrations_HaveGooseDirectives(t *testing.T) {
	dir := testutil.MigrationsDir()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)

		s := string(b)
		assert.Contains(t, s, "-- +goose Up", e.Name())
		assert.Contains(t, s, "-- +goose Down", e.Name())
	}
}

func TestMigrations_DeclareNamedConstraints(t *testing.T) {
	var all strings.Builder
	entries, err := os.ReadDir(testutil.MigrationsDir())
	require.NoError(t, err)
	for _, e := range entries {
		b, err := os.ReadFile(filepath.Join(testutil.MigrationsDir(), e.Name()))
		require.NoError(t, err)
		all.Write(b)
	}

	// Repositories translate violations by these names.
	for _, name := range []string{"books_isbn_key", "loans_open_book_key", "loans_book_id_fkey"} {
		assert.Contains(t, all.String(), name)
	}
}
