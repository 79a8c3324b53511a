package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add users table", "add_users_table"},
		{"Add-Users-Table", "add_users_table"},
		{"add__users__table", "add_users_table"},
		{"Add Users 123", "add_users_123"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()

	first, err := Create(dir, "create users")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_create_users.up.sql"), first.UpPath)
	assert.Equal(t, filepath.Join(dir, "000001_create_users.down.sql"), first.DownPath)

	content, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "-- create_users")

	second, err := Create(dir, "Add-Orders")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.FileExists(t, second.DownPath)

	t.Run("rejects names without usable characters", func(t *testing.T) {
		_, err := Create(dir, "!!!")
		assert.Error(t, err)
	})
}

func TestList(t *testing.T) {
	t.Run("missing directory is empty", func(t *testing.T) {
		files, err := List(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("orders by version and skips stray files", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"000010_late.up.sql", "000010_late.down.sql",
			"000002_early.up.sql", "000002_early.down.sql",
			"notes.md", "bad_name.up.sql",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
		}

		files, err := List(dir)
		require.NoError(t, err)
		require.Len(t, files, 2)
		assert.Equal(t, uint(2), files[0].Version)
		assert.Equal(t, "early", files[0].Name)
		assert.Equal(t, uint(10), files[1].Version)
	})
}

func TestRepositoryMigrations_ArePairedAndContiguous(t *testing.T) {
	dir := filepath.Join("..", "..", "..", "migrations")
	files, err := List(dir)
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for i, f := range files {
		assert.Equal(t, uint(i+1), f.Version, "migration %s out of sequence", f.Name)
		assert.FileExists(t, f.DownPath)
	}
}
