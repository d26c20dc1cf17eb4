package database

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := fs.Glob(migrationsFS, "migrations/*_"+suffix+".sql")
	require.NoError(t, err)
	require.Len(t, matches, 1, suffix)
	data, err := fs.ReadFile(migrationsFS, matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestMigrationsHaveGooseSections(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, e := range entries {
		data, err := fs.ReadFile(migrationsFS, migrationsDir+"/"+e.Name())
		require.NoError(t, err)
		assert.Contains(t, string(data), "-- +goose Up", e.Name())
		assert.Contains(t, string(data), "-- +goose Down", e.Name())
	}
}

func TestTicketMigrationConstraints(t *testing.T) {
	content := readMigration(t, "create_tickets")
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS tickets",
		"CHECK (status IN ('open', 'in_progress', 'resolved', 'closed'))",
		"FOREIGN KEY (client_id) REFERENCES clients(id)",
		"FOREIGN KEY (ticket_id) REFERENCES tickets(id) ON DELETE CASCADE",
		"attachments text[] NOT NULL DEFAULT '{}'",
		"DROP TABLE IF EXISTS ticket_comments",
	} {
		assert.True(t, strings.Contains(content, sub), "missing %q", sub)
	}
}

func TestProfileMigrationRoles(t *testing.T) {
	content := readMigration(t, "create_accounts_profiles")
	assert.Contains(t, content, "CHECK (role IN ('client', 'technician', 'admin', 'manager'))")
	assert.Contains(t, content, "CONSTRAINT accounts_email_key UNIQUE (email)")
}
