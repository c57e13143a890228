package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foamlab/casekit/CaseParameters"
	"github.com/foamlab/casekit/geometry"
)

func roomCase(t *testing.T) *CaseParameters.CaseParameters {
	t.Helper()
	return &CaseParameters.CaseParameters{
		Name:         "room",
		CaseDir:      filepath.Join(t.TempDir(), "room.case"),
		Solver:       "chtMultiRegionFoam",
		MeshQuality:  50,
		Parallel:     true,
		NumOfDomains: 4,
		EndTime:      1000,
		Objects: map[string]CaseParameters.ObjectParameters{
			"walls": {
				Type:       geometry.BoxShape,
				Dimensions: [3]float64{3, 4, 2.5},
				Location:   [3]float64{0, 0, 0},
			},
			"heater": {
				Type:       geometry.BoxShape,
				Dimensions: [3]float64{1, 0.2, 0.3},
				Location:   [3]float64{1, 1, 0},
				Material:   "copper",
				Refinement: 2,
			},
		},
	}
}

func TestRunMeshWritesCaseTree(t *testing.T) {
	cp := roomCase(t)
	require.NoError(t, RunMesh(cp))

	for _, rel := range []string{
		"constant/triSurface/walls.stl",
		"constant/triSurface/heater.stl",
		"constant/triSurface/fluid.stl",
		"system/blockMeshDict",
		"system/snappyHexMeshDict",
		"system/controlDict",
		"system/decomposeParDict",
	} {
		_, err := os.Stat(filepath.Join(cp.CaseDir, rel))
		assert.NoError(t, err, rel)
	}

	read := func(rel string) string {
		data, err := os.ReadFile(filepath.Join(cp.CaseDir, rel))
		require.NoError(t, err, rel)
		return string(data)
	}

	// Solids are renamed after their object, and the fluid file combines
	// every non-material object.
	walls := read("constant/triSurface/walls.stl")
	assert.Contains(t, walls, "solid walls")
	assert.NotContains(t, walls, "solid heater")
	fluid := read("constant/triSurface/fluid.stl")
	assert.Contains(t, fluid, "solid walls")
	assert.NotContains(t, fluid, "solid heater")

	snappy := read("system/snappyHexMeshDict")
	assert.Contains(t, snappy, "fluid.stl")
	assert.Contains(t, snappy, "fluidToheater")
	assert.Contains(t, snappy, "cellZone       heater;")
	assert.Contains(t, snappy, "cellZoneInside insidePoint;")
	assert.Contains(t, snappy, "insidePoint    (1.5 1.1 0.15);")
	// The background block centre: geometry spans (0,0,0)-(3,4,2.5), padded
	// by one on each side.
	assert.Contains(t, snappy, "locationInMesh (1.5 2 1.25);")

	control := read("system/controlDict")
	assert.Contains(t, control, "application       chtMultiRegionFoam;")
	assert.Contains(t, control, "endTime           1000;")

	decompose := read("system/decomposeParDict")
	assert.Contains(t, decompose, "numberOfSubdomains  4;")
	// Padded bounds are 5 x 6 x 4.5, so the split goes along y.
	assert.Contains(t, decompose, "n     (1 4 1);")
}

func TestRunMeshSkipsDecompositionWhenSerial(t *testing.T) {
	cp := roomCase(t)
	cp.Parallel = false
	require.NoError(t, RunMesh(cp))
	_, err := os.Stat(filepath.Join(cp.CaseDir, "system", "decomposeParDict"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunMeshRejectsUnknownObjectType(t *testing.T) {
	cp := roomCase(t)
	cp.Objects["lamp"] = CaseParameters.ObjectParameters{Type: "sphere"}
	assert.Error(t, RunMesh(cp))
}

func TestBuildObjectKinds(t *testing.T) {
	a := geometry.NewArena()
	s, err := buildObject(a, "walls", CaseParameters.ObjectParameters{
		Type:       geometry.BoxShape,
		Dimensions: [3]float64{1, 1, 1},
	})
	require.NoError(t, err)
	assert.Equal(t, geometry.BoxShape, s.Type)

	s, err = buildObject(a, "door", CaseParameters.ObjectParameters{
		Type:       geometry.PatchShape,
		Dimensions: [3]float64{1, 0, 1},
		FacingZero: true,
	})
	require.NoError(t, err)
	assert.Equal(t, geometry.PatchShape, s.Type)

	_, err = buildObject(a, "bad", CaseParameters.ObjectParameters{Type: "stl", STLPath: "missing.stl"})
	assert.Error(t, err)
}
