package migrate

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSource_EmbeddedMigrations(t *testing.T) {
	src, err := Source()
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	require.EqualValues(t, 1, first)

	r, ident, err := src.ReadUp(first)
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, "init", ident)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	for _, table := range []string{"permissions", "roles", "users", "role_permissions", "user_roles", "user_permissions"} {
		require.True(t, strings.Contains(string(body), "CREATE TABLE IF NOT EXISTS "+table+" "), table)
	}

	down, _, err := src.ReadDown(first)
	require.NoError(t, err)
	require.NoError(t, down.Close())
}
