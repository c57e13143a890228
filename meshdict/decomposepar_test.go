package meshdict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecomposeParDictMethodValidation(t *testing.T) {
	_, err := NewDecomposeParDict(t.TempDir(), 4, "scotch")
	assert.Error(t, err)

	d, err := NewDecomposeParDict(t.TempDir(), 4, "simple")
	require.NoError(t, err)
	assert.Equal(t, 4, d.NumOfDomains)
	assert.Equal(t, [3]int{1, 1, 1}, d.Simple.N)
	assert.Equal(t, 0.001, d.Simple.Delta)
	assert.Equal(t, "xyz", d.Hierarchical.Order)
}

func TestDivideDomainSplitsLongestAxis(t *testing.T) {
	d, err := NewDecomposeParDict(t.TempDir(), 6, "simple")
	require.NoError(t, err)

	d.DivideDomain([3]float64{2, 5, 3})
	assert.Equal(t, [3]int{1, 6, 1}, d.Simple.N)
	assert.Equal(t, [3]int{1, 6, 1}, d.Hierarchical.N)

	d.DivideDomain([3]float64{9, 5, 3})
	assert.Equal(t, [3]int{6, 1, 1}, d.Simple.N)
}

func TestDecomposeParDictSave(t *testing.T) {
	caseDir := newMeshCase(t)
	d, err := NewDecomposeParDict(caseDir, 4, "simple")
	require.NoError(t, err)
	d.DivideDomain([3]float64{2, 5, 3})
	require.NoError(t, d.Save())

	data, err := os.ReadFile(filepath.Join(caseDir, "system", "decomposeParDict"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "numberOfSubdomains  4;")
	assert.Contains(t, content, "method simple;")
	assert.Contains(t, content, "simpleCoeffs\n{\n    n     (1 4 1);\n    delta 0.001;\n}")
	assert.Contains(t, content, "hierarchicalCoeffs\n{\n    n     (1 4 1);\n    delta 0.001;\n    order xyz;\n}")
}

func TestDecomposeParDictRegionsMirrored(t *testing.T) {
	caseDir := newMeshCase(t)
	require.NoError(t, os.Mkdir(filepath.Join(caseDir, "system", "heater"), 0755))

	d, err := NewDecomposeParDict(caseDir, 2, "simple", "heater")
	require.NoError(t, err)
	require.NoError(t, d.Save())

	root, err := os.ReadFile(filepath.Join(caseDir, "system", "decomposeParDict"))
	require.NoError(t, err)
	region, err := os.ReadFile(filepath.Join(caseDir, "system", "heater", "decomposeParDict"))
	require.NoError(t, err)
	assert.Equal(t, root, region)
}

func TestDecomposeParDictOverlayFromDisk(t *testing.T) {
	caseDir := newMeshCase(t)
	d, err := NewDecomposeParDict(caseDir, 8, "hierarchical")
	require.NoError(t, err)
	d.DivideDomain([3]float64{1, 1, 4})
	d.Hierarchical.Order = "zyx"
	d.Simple.Delta = 0.01
	require.NoError(t, d.Save())

	d2, err := NewDecomposeParDict(caseDir, 2, "simple")
	require.NoError(t, err)
	assert.Equal(t, 8, d2.NumOfDomains)
	assert.Equal(t, "hierarchical", d2.Method)
	assert.Equal(t, [3]int{1, 1, 8}, d2.Simple.N)
	assert.Equal(t, [3]int{1, 1, 8}, d2.Hierarchical.N)
	assert.Equal(t, 0.01, d2.Simple.Delta)
	assert.Equal(t, "zyx", d2.Hierarchical.Order)
}
