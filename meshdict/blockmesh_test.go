package meshdict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foamlab/casekit/geometry"
)

func newMeshCase(t *testing.T) string {
	t.Helper()
	caseDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(caseDir, "system"), 0755))
	return caseDir
}

func TestAddBoxValidation(t *testing.T) {
	d := NewBlockMeshDict(t.TempDir())
	err := d.AddBox(geometry.Vec{0, 0, 0}, geometry.Vec{1, 0, 1}, "flat")
	assert.Error(t, err)
	err = d.AddBox(geometry.Vec{0, 0, 0}, geometry.Vec{-1, 1, 1}, "inverted")
	assert.Error(t, err)
	assert.Empty(t, d.Blocks())
}

func TestAddBoxCellCounts(t *testing.T) {
	d := NewBlockMeshDict(t.TempDir())
	require.NoError(t, d.AddBox(geometry.Vec{0, 0, 0}, geometry.Vec{3, 4, 2.5}, "room"))
	require.Len(t, d.Blocks(), 1)

	b := d.Blocks()[0]
	assert.Equal(t, [8]int{0, 1, 2, 3, 4, 5, 6, 7}, b.Vertices)
	assert.Equal(t, [3]int{1, 1, 1}, b.Grading)
	// Default quality 50 sits at the calibration midpoint.
	assert.Equal(t, [3]int{5, 7, 4}, b.Cells)
}

func TestMeshQualityMonotonicity(t *testing.T) {
	d := NewBlockMeshDict(t.TempDir())
	require.NoError(t, d.AddBox(geometry.Vec{0, 0, 0}, geometry.Vec{3, 4, 2.5}, "room"))
	b := d.Blocks()[0]

	var prev [3]int
	for i, q := range []float64{0, 25, 50, 75, 100} {
		require.NoError(t, d.SetMeshQuality(q))
		for axis := 0; axis < 3; axis++ {
			assert.GreaterOrEqual(t, b.Cells[axis], 1)
			if i > 0 {
				assert.GreaterOrEqual(t, b.Cells[axis], prev[axis], "quality %v axis %d", q, axis)
			}
		}
		prev = b.Cells
	}

	assert.Error(t, d.SetMeshQuality(-1))
	assert.Error(t, d.SetMeshQuality(101))
	assert.Equal(t, 100.0, d.MeshQuality(), "a rejected quality must not stick")
}

func TestBlockSizeEndpoints(t *testing.T) {
	d := NewBlockMeshDict(t.TempDir())
	require.NoError(t, d.AddBox(geometry.Vec{0, 0, 0}, geometry.Vec{3, 3, 3}, ""))
	// maxDim 3: the calibration spans 0.1 to 0.7 of a third of it.
	assert.InDelta(t, 0.7, d.BlockSize(0), 1e-9)
	assert.InDelta(t, 0.4, d.BlockSize(50), 1e-9)
	assert.InDelta(t, 0.1, d.BlockSize(100), 1e-9)
}

func TestVertexDedupAcrossBlocks(t *testing.T) {
	d := NewBlockMeshDict(t.TempDir())
	require.NoError(t, d.AddBox(geometry.Vec{0, 0, 0}, geometry.Vec{1, 1, 1}, "a"))
	require.NoError(t, d.AddBox(geometry.Vec{1, 0, 0}, geometry.Vec{2, 1, 1}, "b"))
	// The shared x=1 face contributes its four corners once.
	assert.Len(t, d.verts, 12)
	assert.Equal(t, [8]int{1, 8, 9, 2, 5, 10, 11, 6}, d.Blocks()[1].Vertices)
}

func TestAddBoxRescalesCalibration(t *testing.T) {
	d := NewBlockMeshDict(t.TempDir())
	require.NoError(t, d.AddBox(geometry.Vec{0, 0, 0}, geometry.Vec{3, 3, 3}, "small"))
	before := d.Blocks()[0].Cells
	// A much larger block coarsens the shared cell size, so the first
	// block's counts shrink.
	require.NoError(t, d.AddBox(geometry.Vec{0, 0, 0}, geometry.Vec{30, 30, 30}, "big"))
	after := d.Blocks()[0].Cells
	for axis := 0; axis < 3; axis++ {
		assert.Less(t, after[axis], before[axis], "axis %d", axis)
	}
}

func TestBlockMeshSave(t *testing.T) {
	caseDir := newMeshCase(t)
	d := NewBlockMeshDict(caseDir)
	require.NoError(t, d.AddBox(geometry.Vec{0, 0, 0}, geometry.Vec{3, 4, 2.5}, "room"))
	require.NoError(t, d.Save())

	data, err := os.ReadFile(filepath.Join(caseDir, "system", "blockMeshDict"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "object      blockMeshDict;")
	assert.Contains(t, content, "scale   1;")
	assert.Contains(t, content, "    ( 0 0 0 )\n")
	assert.Contains(t, content, "    ( 3 4 2.5 )\n")
	assert.Contains(t, content, "hex (0 1 2 3 4 5 6 7) room (5 7 4) simpleGrading (1 1 1)")
	assert.Contains(t, content, "defaultPatch")
}
