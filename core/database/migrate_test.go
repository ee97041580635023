package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppliedBetween(t *testing.T) {
	files := []string{"0001_request_counter.up.sql", "0002_requests.up.sql", "0003_requests_index.up.sql"}

	assert.Equal(t, []string{"0002_requests.up.sql", "0003_requests_index.up.sql"}, appliedBetween(files, 1, 3))
	assert.Empty(t, appliedBetween(files, 3, 3))
	assert.Equal(t, uint64(2), parseVersion("0002_requests.up.sql"))
	assert.Zero(t, parseVersion("readme.md"))
}

func TestListMigrationFilesSkipsDownAndDirs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_b.up.sql", "0001_a.up.sql", "0001_a.down.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "0003_dir.up.sql"), 0o755))

	assert.Equal(t, []string{"0001_a.up.sql", "0002_b.up.sql"}, listMigrationFiles(dir))
}

func TestConfigConnectionStrings(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "bot", Password: "pw", Name: "intake"}

	assert.True(t, cfg.Enabled())
	assert.Equal(t, "user=bot password=pw host=db port=5432 dbname=intake sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://bot:pw@db:5432/intake?sslmode=disable", cfg.URL())
	assert.False(t, Config{}.Enabled())
	assert.True(t, RedisConfig{Addr: "localhost:6379"}.Enabled())
}
