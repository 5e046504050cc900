package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNamesAreOrdered(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)

	assert.Equal(t, "0001_users.sql", names[0])
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}

func TestMigrationsCreateDomainTables(t *testing.T) {
	names, err := migrationNames()
	require.NoError(t, err)

	var all string
	for _, name := range names {
		body, err := migrationFiles.ReadFile("migrations/" + name)
		require.NoError(t, err)
		all += string(body)
	}

	for _, table := range []string{"users", "calendar_connections", "couples", "couple_invitations", "notifications"} {
		assert.Contains(t, all, "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
}
