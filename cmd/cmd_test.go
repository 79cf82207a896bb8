package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/miniblog/auth"
	"github.com/cppla/miniblog/config"
	"github.com/cppla/miniblog/repositories/gormstore"
	"github.com/cppla/miniblog/repositories/postgrest"
)

func TestCommandTree(t *testing.T) {
	root := NewRootCmd()

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", serve.Name())
	assert.NotNil(t, serve.Flags().Lookup("migrate"))

	down, _, err := root.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	assert.Equal(t, "1", down.Flags().Lookup("steps").DefValue)
}

func TestNewVerifier(t *testing.T) {
	v := newVerifier(config.AppConfig{AuthProvider: config.AuthProviderJWT, JWTSecret: "s"})
	assert.IsType(t, &auth.JWTVerifier{}, v)

	v = newVerifier(config.AppConfig{AuthProvider: config.AuthProviderSupabase, SupabaseURL: "https://x.supabase.co", SupabaseKey: "k"})
	assert.IsType(t, &auth.SupabaseVerifier{}, v)
}

func TestOpenBackend(t *testing.T) {
	b, closeFn, err := openBackend(config.AppConfig{
		StorageDriver: config.DriverPostgREST,
		SupabaseURL:   "https://x.supabase.co",
		SupabaseKey:   "k",
	}, true, nil)
	require.NoError(t, err)
	closeFn()
	assert.IsType(t, &postgrest.Store{}, b)

	b, closeFn, err = openBackend(config.AppConfig{
		StorageDriver: config.DriverSQLite,
		DatabaseURL:   "file:cmdtest?mode=memory&cache=shared",
		LogLevel:      "silent",
	}, true, nil)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &gormstore.Store{}, b)
}

func TestMigrateRejectsNonPostgres(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", config.DriverSQLite)
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("AUTH_PROVIDER", config.AuthProviderJWT)
	t.Setenv("JWT_SECRET", "s")

	root := NewRootCmd()
	root.SetArgs([]string{"--config", t.TempDir(), "migrate", "up"})
	assert.ErrorIs(t, root.Execute(), errNotPostgres)
}
