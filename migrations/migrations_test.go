package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/blog?sslmode=disable": "pgx5://u:p@db:5432/blog?sslmode=disable",
		"postgresql://db/blog":                        "pgx5://db/blog",
		"pgx5://db/blog":                              "pgx5://db/blog",
	}
	for in, want := range tests {
		assert.Equal(t, want, driverURL(in))
	}
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(files, "sql")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}
	}
	assert.Equal(t, ups, downs)
}

func TestSchemaEnablesRowLevelSecurity(t *testing.T) {
	up, err := fs.ReadFile(files, "sql/000001_create_posts_and_comments.up.sql")
	require.NoError(t, err)

	sql := string(up)
	for _, table := range []string{"posts", "comments"} {
		assert.Contains(t, sql, "ALTER TABLE "+table+" ENABLE ROW LEVEL SECURITY")
		assert.Contains(t, sql, "GRANT SELECT, INSERT, UPDATE, DELETE ON posts, comments TO authenticated")
	}
}

func TestDownRejectsNonPositiveSteps(t *testing.T) {
	assert.Error(t, Down("postgres://unused", 0, nil))
}
