package sqlstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	pg := &Dialect{NumberedParams: true}
	require.Equal(t,
		"UPDATE users SET name = $1 WHERE id = $2",
		pg.rebind("UPDATE users SET name = ? WHERE id = ?"))
	require.Equal(t, "SELECT 1", pg.rebind("SELECT 1"))

	lite := &Dialect{}
	require.Equal(t, "WHERE id = ?", lite.rebind("WHERE id = ?"))
}

func TestTags(t *testing.T) {
	require.Equal(t, []string{}, splitTags(""))
	require.Equal(t, []string{"a", "b"}, splitTags(joinTags([]string{"a", "b"})))
}
