package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotcli/internal/config"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	return path
}

func TestFindExcelFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.xlsx")
	touch(t, dir, "a.XLSX")
	touch(t, dir, "c.xls")
	touch(t, dir, "notes.txt")
	touch(t, dir, "~$b.xlsx") // Excel lock file
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	d := NewDiscovery(dir)
	files, err := d.FindExcelFiles(".")
	require.NoError(t, err)
	require.Len(t, files, 3)

	// Sorted by name for deterministic batches
	assert.Equal(t, "a.XLSX", files[0].Name)
	assert.Equal(t, "b.xlsx", files[1].Name)
	assert.Equal(t, "c.xls", files[2].Name)
}

func TestFindExcelFilesMissingDir(t *testing.T) {
	d := NewDiscovery(t.TempDir())
	_, err := d.FindExcelFiles("absent")
	require.Error(t, err)
}

func TestLocateRequiredSources(t *testing.T) {
	dir := t.TempDir()
	required := config.RequiredSourceFiles()

	// All but the last required source present
	for _, name := range required[:len(required)-1] {
		touch(t, dir, name)
	}
	touch(t, dir, "unrelated.xlsx")

	d := NewDiscovery(dir)
	found, missing, err := d.LocateRequiredSources(".")
	require.NoError(t, err)

	assert.Len(t, found, len(required)-1)
	assert.Equal(t, []string{required[len(required)-1]}, missing)

	t.Run("complete set", func(t *testing.T) {
		touch(t, dir, required[len(required)-1])
		found, missing, err := d.LocateRequiredSources(".")
		require.NoError(t, err)
		assert.Empty(t, missing)
		assert.Len(t, found, len(required))
	})
}
