package meshdict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foamlab/casekit/geometry"
)

func TestPartitionedMeshEntries(t *testing.T) {
	m := NewSnappyPartitionedMesh("fluid", "fluid")
	assert.Equal(t, "fluid", m.MeshName())
	assert.Equal(t, "fluid.stl", m.stlFile, "the extension is appended when missing")

	m.AddRegions(
		&SnappyRegion{Name: "walls", RegionType: "wall", RefinementLevel: 1},
		&SnappyRegion{Name: "door", RegionType: "patch", RefinementLevel: 2},
	)

	assert.Equal(t,
		"fluid\n{\n    type triSurfaceMesh;\n    file \"fluid.stl\";\n\n    regions\n    {\n"+
			"        walls { name walls; }\n"+
			"        door  { name door; }\n"+
			"    }\n}",
		m.geometryEntry())
	assert.Equal(t,
		"fluid\n{\n    level (0 0);\n    regions\n    {\n"+
			"        walls { level (1 1); patchInfo { type wall; } }\n"+
			"        door  { level (2 2); patchInfo { type patch; } }\n"+
			"    }\n}",
		m.refinementEntry())
}

func TestPartitionedMeshRegionReplacement(t *testing.T) {
	m := NewSnappyPartitionedMesh("fluid", "fluid.stl")
	m.AddRegions(&SnappyRegion{Name: "walls", RegionType: "wall"})
	m.AddRegions(&SnappyRegion{Name: "walls", RegionType: "patch", RefinementLevel: 3})

	r, ok := m.Region("walls")
	require.True(t, ok)
	assert.Equal(t, "patch", r.RegionType)
	assert.Equal(t, 3, r.RefinementLevel)
	assert.Len(t, m.regionOrder, 1)
}

func TestCellZoneMeshDefaults(t *testing.T) {
	m := NewSnappyCellZoneMesh("fluidToHeater", "heater.stl", 2)
	assert.Equal(t, "fluidToHeater", m.FaceZone)
	assert.Equal(t, "heater", m.CellZone)
	assert.Equal(t, "inside", m.CellZoneInside)

	assert.Equal(t,
		"fluidToHeater\n{\n    type triSurfaceMesh;\n    file \"heater.stl\";\n}",
		m.geometryEntry())
	assert.Equal(t,
		"fluidToHeater\n{\n"+
			"    level          (2 2);\n"+
			"    faceZone       fluidToHeater;\n"+
			"    cellZone       heater;\n"+
			"    cellZoneInside inside;\n"+
			"}",
		m.refinementEntry())
}

func TestCellZoneMeshInsidePoint(t *testing.T) {
	m := NewSnappyCellZoneMesh("fluidToHeater", "heater.stl", 0)
	m.UseInsidePoint(geometry.Vec{1, 2.5, 3})
	assert.Equal(t, "insidePoint", m.CellZoneInside)
	assert.Contains(t, m.refinementEntry(), "    cellZoneInside insidePoint;\n")
	assert.Contains(t, m.refinementEntry(), "    insidePoint    (1 2.5 3);\n")
}

func TestSnappyHexMeshDictSave(t *testing.T) {
	caseDir := newMeshCase(t)
	d := NewSnappyHexMeshDict(caseDir)
	assert.True(t, d.CastellatedMesh)

	fluid := NewSnappyPartitionedMesh("fluid", "fluid.stl")
	fluid.AddRegions(&SnappyRegion{Name: "walls", RegionType: "wall", RefinementLevel: 1})
	heater := NewSnappyCellZoneMesh("fluidToHeater", "heater.stl", 1)
	d.AddMeshes(fluid, heater)
	d.LocationInMesh = geometry.Vec{1.5, 2, 1.25}

	require.NoError(t, d.Save())
	data, err := os.ReadFile(filepath.Join(caseDir, "system", "snappyHexMeshDict"))
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, `#includeEtc "caseDicts/mesh/generation/snappyHexMeshDict.cfg"`)
	assert.Contains(t, content, "castellatedMesh true;")
	assert.Contains(t, content, "snap            false;")
	assert.Contains(t, content, "addLayers       false;")
	assert.Contains(t, content, "nCellsBetweenLevels 1;")
	assert.Contains(t, content, "locationInMesh (1.5 2 1.25);")
	// Geometry entries sit one level deep, refinement surfaces two.
	assert.Contains(t, content, "    fluid\n    {\n        type triSurfaceMesh;")
	assert.Contains(t, content, "        fluidToHeater\n        {\n            level          (1 1);")

	mesh, ok := d.Mesh("fluid")
	require.True(t, ok)
	assert.Equal(t, "fluid", mesh.MeshName())
}

func TestSnappyHexMeshDictRemove(t *testing.T) {
	d := NewSnappyHexMeshDict(t.TempDir())
	d.AddMeshes(
		NewSnappyPartitionedMesh("fluid", "fluid.stl"),
		NewSnappyCellZoneMesh("fluidToHeater", "heater.stl", 1),
	)
	d.Remove("fluid")
	_, ok := d.Mesh("fluid")
	assert.False(t, ok)
	assert.Equal(t, []string{"fluidToHeater"}, d.meshOrder)

	d.Remove("missing")
	assert.Len(t, d.meshOrder, 1)
}
