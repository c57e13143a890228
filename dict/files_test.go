package dict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWriteLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, WriteLines(path, []string{"a", "b"}))
	lines, err := ReadLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(data))
}

func TestLatestTime(t *testing.T) {
	caseDir := t.TempDir()
	for _, name := range []string{"0", "0.5", "12", "system", "processor0"} {
		require.NoError(t, os.Mkdir(filepath.Join(caseDir, name), 0755))
	}
	assert.Equal(t, "12", LatestTime(caseDir))
	assert.Equal(t, []string{"processor0"}, ProcessorDirs(caseDir))

	for _, name := range []string{"0", "3.25"} {
		require.NoError(t, os.Mkdir(filepath.Join(caseDir, "processor0", name), 0755))
	}
	assert.Equal(t, "3.25", LatestTimeParallel(caseDir))

	assert.Equal(t, "0", LatestTime(t.TempDir()))
}
