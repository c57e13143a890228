package meshdict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlDictDefaults(t *testing.T) {
	d, err := NewControlDict(t.TempDir(), "buoyantSimpleFoam")
	require.NoError(t, err)
	assert.Equal(t, "buoyantSimpleFoam", d.Application)
	assert.Equal(t, "latestTime", d.StartFrom)
	assert.Equal(t, 1e6, d.EndTime)
	assert.Equal(t, "adjustableRunTime", d.WriteControl)
	assert.Equal(t, 8.0, d.WritePrecision)
	assert.Equal(t, "yes", d.AdjustTimeStep)
	assert.Equal(t, 1.0, d.MaxCo)
	assert.Equal(t, 10.0, d.MaxDi)
	assert.True(t, d.RunTimeModifiable)
}

func TestControlDictSaveAndReload(t *testing.T) {
	caseDir := newMeshCase(t)
	d, err := NewControlDict(caseDir, "buoyantSimpleFoam")
	require.NoError(t, err)
	d.EndTime = 500
	d.MaxCo = 0.5
	require.NoError(t, d.Save())

	data, err := os.ReadFile(filepath.Join(caseDir, "system", "controlDict"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "application       buoyantSimpleFoam;")
	assert.Contains(t, content, "endTime           500;")
	assert.Contains(t, content, "maxCo             0.5;")
	assert.Contains(t, content, "#includeFunc  probes")

	// A rebuilt dictionary picks the saved values back up over its defaults.
	d2, err := NewControlDict(caseDir, "laplacianFoam")
	require.NoError(t, err)
	assert.Equal(t, "buoyantSimpleFoam", d2.Application)
	assert.Equal(t, 500.0, d2.EndTime)
	assert.Equal(t, 0.5, d2.MaxCo)
}

func TestControlDictOverlayFromManualFile(t *testing.T) {
	caseDir := newMeshCase(t)
	content := "application chtMultiRegionFoam;\nendTime     250;\nrunTimeModifiable false;\n"
	require.NoError(t, os.WriteFile(filepath.Join(caseDir, "system", "controlDict"), []byte(content), 0644))

	d, err := NewControlDict(caseDir, "buoyantSimpleFoam")
	require.NoError(t, err)
	assert.Equal(t, "chtMultiRegionFoam", d.Application)
	assert.Equal(t, 250.0, d.EndTime)
	assert.False(t, d.RunTimeModifiable)
	// Entries absent from the file keep their defaults.
	assert.Equal(t, "latestTime", d.StartFrom)
}
