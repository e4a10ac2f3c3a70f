package templatestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/rostercheck/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "wrong-course-email-template")
	require.NoError(t, err)
	assert.False(t, ok, "unset key should report absent")

	require.NoError(t, s.Set(ctx, "wrong-course-email-template", "$student_name さん"))
	require.NoError(t, s.Set(ctx, "no-course-email-template", ""))

	v, ok, err := s.Get(ctx, "wrong-course-email-template")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "$student_name さん", v)

	v, ok, err = s.Get(ctx, "no-course-email-template")
	require.NoError(t, err)
	assert.True(t, ok, "empty value is still set")
	assert.Equal(t, "", v)

	require.NoError(t, s.Set(ctx, "wrong-course-email-template", "replaced"))
	v, _, err = s.Get(ctx, "wrong-course-email-template")
	require.NoError(t, err)
	assert.Equal(t, "replaced", v)
}

func TestMemory(t *testing.T) {
	s := NewMemory()
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "templates.db")
	s, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	exerciseStore(t, s)
	require.NoError(t, s.Close())

	// Values survive reopening the file.
	reopened, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get(context.Background(), "wrong-course-email-template")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "replaced", v)
}

func TestPostgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	s, err := OpenPostgres(context.Background(), config.StoreConfig{
		DatabaseURL: url,
		MaxConns:    2,
		MinConns:    0,
	})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.pool.Exec(context.Background(), `DELETE FROM email_templates`)
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.StoreConfig{Backend: config.StoreMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, config.StoreConfig{
		Backend:    config.StoreSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "t.db"),
	})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, config.StoreConfig{Backend: "redis"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template store")
}
