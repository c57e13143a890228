package meshdict

import (
	"fmt"
	"os"
	"strings"

	"github.com/foamlab/casekit/dict"
	"github.com/foamlab/casekit/geometry"
)

const snappyTemplate = `/*--------------------------------*- C++ -*----------------------------------*\
| =========                 |                                                 |
| \\      /  F ield         | OpenFOAM: The Open Source CFD Toolbox           |
|  \\    /   O peration     | Version:  v2106                                 |
|   \\  /    A nd           | Website:  www.openfoam.com                      |
|    \\/     M anipulation  |                                                 |
\*---------------------------------------------------------------------------*/
FoamFile
{
    version     2.0;
    format      ascii;
    class       dictionary;
    object      snappyHexMeshDict;
}
// * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * //

#includeEtc "caseDicts/mesh/generation/snappyHexMeshDict.cfg"

castellatedMesh %s;
snap            %s;
addLayers       %s;

geometry
{
%s}

castellatedMeshControls
{
    refinementSurfaces
    {
%s    }

    nCellsBetweenLevels %d;

    refinementRegions
    {
        %s
    }
    locationInMesh (%s %s %s);
}

addLayersControls
{
    relativeSizes       %s;
    minThickness        %d;
    finalLayerThickness %d;
    expansionRatio      %d;
    layers
    {}
}

// ************************************************************************* //
`

func ofBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// SnappyMesh is one named entry of the geometry and refinementSurfaces
// sections: either a partitioned mesh carrying named regions, or a cell zone
// carved out of the background mesh.
type SnappyMesh interface {
	MeshName() string
	geometryEntry() string
	refinementEntry() string
}

// SnappyRegion is a named wall or patch region of a partitioned mesh, with a
// refinement level.
type SnappyRegion struct {
	Name            string
	RegionType      string
	RefinementLevel int
}

func (r *SnappyRegion) geometryEntry() string {
	return fmt.Sprintf("{ name %s; }", r.Name)
}

func (r *SnappyRegion) refinementEntry() string {
	return fmt.Sprintf("{ level (%d %d); patchInfo { type %s; } }",
		r.RefinementLevel, r.RefinementLevel, r.RegionType)
}

// SnappyPartitionedMesh is a triangulated surface splitting the domain into
// named regions.
type SnappyPartitionedMesh struct {
	Name            string
	RefinementLevel int
	MaterialType    string
	Material        string

	stlFile     string
	regions     map[string]*SnappyRegion
	regionOrder []string
	maxNameLen  int
}

// NewSnappyPartitionedMesh creates a partitioned mesh over an STL file.
func NewSnappyPartitionedMesh(name, stlName string) *SnappyPartitionedMesh {
	if !strings.Contains(stlName, ".stl") {
		stlName += ".stl"
	}
	return &SnappyPartitionedMesh{
		Name:         name,
		MaterialType: "fluid",
		Material:     "air",
		stlFile:      stlName,
		regions:      make(map[string]*SnappyRegion),
	}
}

// MeshName returns the partitioned mesh name.
func (m *SnappyPartitionedMesh) MeshName() string { return m.Name }

// AddRegions registers regions under the partitioned mesh, keeping insertion
// order for rendering.
func (m *SnappyPartitionedMesh) AddRegions(regions ...*SnappyRegion) {
	for _, r := range regions {
		if _, ok := m.regions[r.Name]; !ok {
			m.regionOrder = append(m.regionOrder, r.Name)
		}
		m.regions[r.Name] = r
		if len(r.Name) >= m.maxNameLen {
			m.maxNameLen = len(r.Name) + 1
		}
	}
}

// Region returns a registered region by name.
func (m *SnappyPartitionedMesh) Region(name string) (*SnappyRegion, bool) {
	r, ok := m.regions[name]
	return r, ok
}

func (m *SnappyPartitionedMesh) regionLines(entry func(*SnappyRegion) string) string {
	var sb strings.Builder
	for _, name := range m.regionOrder {
		r := m.regions[name]
		fmt.Fprintf(&sb, "        %s%s%s\n", name, strings.Repeat(" ", m.maxNameLen-len(name)), entry(r))
	}
	return sb.String()
}

func (m *SnappyPartitionedMesh) geometryEntry() string {
	return fmt.Sprintf("%s\n{\n    type triSurfaceMesh;\n    file \"%s\";\n\n    regions\n    {\n%s    }\n}",
		m.Name, m.stlFile, m.regionLines((*SnappyRegion).geometryEntry))
}

func (m *SnappyPartitionedMesh) refinementEntry() string {
	return fmt.Sprintf("%s\n{\n    level (%d %d);\n    regions\n    {\n%s    }\n}",
		m.Name, m.RefinementLevel, m.RefinementLevel,
		m.regionLines((*SnappyRegion).refinementEntry))
}

// SnappyCellZoneMesh carves a named cell zone out of the mesh, bounded by an
// STL surface, with an optional inside point.
type SnappyCellZoneMesh struct {
	Name            string
	RefinementLevel int
	FaceZone        string
	CellZone        string
	CellZoneInside  string
	InsidePoint     *geometry.Vec
	MaterialType    string
	Material        string

	stlFile string
}

// NewSnappyCellZoneMesh creates a cell zone entry. The default face zone is
// the entry name and the default cell zone is the lowercased tail of a
// "<mesh>To<zone>" style name.
func NewSnappyCellZoneMesh(name, stlName string, refinementLevel int) *SnappyCellZoneMesh {
	parts := strings.Split(name, "To")
	return &SnappyCellZoneMesh{
		Name:            name,
		RefinementLevel: refinementLevel,
		FaceZone:        name,
		CellZone:        strings.ToLower(parts[len(parts)-1]),
		CellZoneInside:  "inside",
		MaterialType:    "solid",
		Material:        "copper",
		stlFile:         stlName,
	}
}

// MeshName returns the cell zone entry name.
func (m *SnappyCellZoneMesh) MeshName() string { return m.Name }

// UseInsidePoint switches the zone to insidePoint selection.
func (m *SnappyCellZoneMesh) UseInsidePoint(p geometry.Vec) {
	m.CellZoneInside = "insidePoint"
	m.InsidePoint = &p
}

func (m *SnappyCellZoneMesh) geometryEntry() string {
	return fmt.Sprintf("%s\n{\n    type triSurfaceMesh;\n    file \"%s\";\n}", m.Name, m.stlFile)
}

func (m *SnappyCellZoneMesh) refinementEntry() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n{\n", m.Name)
	fmt.Fprintf(&sb, "    level          (%d %d);\n", m.RefinementLevel, m.RefinementLevel)
	fmt.Fprintf(&sb, "    faceZone       %s;\n", m.FaceZone)
	fmt.Fprintf(&sb, "    cellZone       %s;\n", m.CellZone)
	fmt.Fprintf(&sb, "    cellZoneInside %s;\n", m.CellZoneInside)
	if m.CellZoneInside == "insidePoint" && m.InsidePoint != nil {
		p := *m.InsidePoint
		fmt.Fprintf(&sb, "    insidePoint    (%s %s %s);\n",
			dict.FormatFloat(p[0]), dict.FormatFloat(p[1]), dict.FormatFloat(p[2]))
	}
	sb.WriteString("}")
	return sb.String()
}

// SnappyHexMeshDict assembles the castellation/snapping control dictionary
// over the registered meshes.
type SnappyHexMeshDict struct {
	CastellatedMesh     bool
	Snap                bool
	AddLayers           bool
	NCellsBetweenLevels int
	RefinementRegions   string
	LocationInMesh      geometry.Vec
	RelativeSizes       bool
	MinThickness        int
	FinalLayerThickness int
	ExpansionRatio      int

	caseDir   string
	meshes    map[string]SnappyMesh
	meshOrder []string
}

// NewSnappyHexMeshDict creates the builder with castellation enabled and
// snapping/layers off.
func NewSnappyHexMeshDict(caseDir string) *SnappyHexMeshDict {
	return &SnappyHexMeshDict{
		CastellatedMesh:     true,
		NCellsBetweenLevels: 1,
		RelativeSizes:       true,
		MinThickness:        1,
		FinalLayerThickness: 1,
		ExpansionRatio:      1,
		caseDir:             caseDir,
		meshes:              make(map[string]SnappyMesh),
	}
}

// AddMeshes registers partitioned or cell-zone meshes, keeping insertion
// order for rendering.
func (d *SnappyHexMeshDict) AddMeshes(meshes ...SnappyMesh) {
	for _, m := range meshes {
		if _, ok := d.meshes[m.MeshName()]; !ok {
			d.meshOrder = append(d.meshOrder, m.MeshName())
		}
		d.meshes[m.MeshName()] = m
	}
}

// Remove drops a registered mesh; removing an unknown name is a no-op.
func (d *SnappyHexMeshDict) Remove(name string) {
	if _, ok := d.meshes[name]; !ok {
		return
	}
	delete(d.meshes, name)
	for i, n := range d.meshOrder {
		if n == name {
			d.meshOrder = append(d.meshOrder[:i], d.meshOrder[i+1:]...)
			break
		}
	}
}

// Mesh returns a registered mesh by name.
func (d *SnappyHexMeshDict) Mesh(name string) (SnappyMesh, bool) {
	m, ok := d.meshes[name]
	return m, ok
}

// Save renders the dictionary into <case>/system/snappyHexMeshDict.
func (d *SnappyHexMeshDict) Save() error {
	var geo, ref strings.Builder
	for _, name := range d.meshOrder {
		m := d.meshes[name]
		geo.WriteString("    " + strings.ReplaceAll(m.geometryEntry(), "\n", "\n    ") + "\n")
		ref.WriteString("        " + strings.ReplaceAll(m.refinementEntry(), "\n", "\n        ") + "\n")
	}
	out := fmt.Sprintf(snappyTemplate,
		ofBool(d.CastellatedMesh), ofBool(d.Snap), ofBool(d.AddLayers),
		geo.String(), ref.String(), d.NCellsBetweenLevels, d.RefinementRegions,
		dict.FormatFloat(d.LocationInMesh[0]), dict.FormatFloat(d.LocationInMesh[1]), dict.FormatFloat(d.LocationInMesh[2]),
		ofBool(d.RelativeSizes), d.MinThickness, d.FinalLayerThickness, d.ExpansionRatio)
	return os.WriteFile(d.caseDir+"/system/snappyHexMeshDict", []byte(out), 0644)
}
