// Package meshdict builds the dictionary files an external mesh generator
// consumes: the background block mesh, the castellation/snapping control
// dictionary, solver run control and domain decomposition.
package meshdict

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/foamlab/casekit/dict"
	"github.com/foamlab/casekit/geometry"
)

const blockMeshTemplate = `/*--------------------------------*- C++ -*----------------------------------*\
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
    object      blockMeshDict;
}
// * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * //

scale   %d;

vertices
(
%s);

blocks
(
%s);

edges
(
%s);

defaultPatch
{
    type empty;
    name default;
}

boundary
(
%s);

// ************************************************************************* //
`

// Vertex is a deduplicated block-mesh corner with a stable 0-based tag, as
// the external tool numbers them.
type Vertex struct {
	ID     int
	Coords geometry.Vec
}

func (v Vertex) String() string {
	return fmt.Sprintf("( %s %s %s )",
		dict.FormatFloat(v.Coords[0]), dict.FormatFloat(v.Coords[1]), dict.FormatFloat(v.Coords[2]))
}

// Block is one hex block: eight vertex tags in the fixed corner order
// (bottom face CCW from the min corner, then top face CCW), per-axis cell
// counts and expansion ratios.
type Block struct {
	Name     string
	Vertices [8]int
	Cells    [3]int
	Grading  [3]int
	extent   geometry.Vec
}

func (b *Block) String() string {
	ids := make([]string, 8)
	for i, id := range b.Vertices {
		ids[i] = fmt.Sprintf("%d", id)
	}
	name := ""
	if b.Name != "" {
		name = b.Name + " "
	}
	return fmt.Sprintf("hex (%s) %s(%d %d %d) simpleGrading (%d %d %d)",
		strings.Join(ids, " "), name,
		b.Cells[0], b.Cells[1], b.Cells[2],
		b.Grading[0], b.Grading[1], b.Grading[2])
}

// BlockMeshDict assembles the background block mesh. Cell counts follow a
// mesh-quality percentage: quality 0 uses the largest block size, quality 100
// the smallest, with a least-squares line through the 0/50/100 calibration
// points in between. The size calibration is re-derived from each newly added
// block's largest dimension, so adding a block rescales the whole dictionary.
type BlockMeshDict struct {
	Scale int

	caseDir string
	verts   []Vertex
	vertIdx map[geometry.Vec]int
	blocks  []*Block

	quality          float64
	minSize, maxSize float64
}

// NewBlockMeshDict creates an empty background-mesh builder at 50% quality.
func NewBlockMeshDict(caseDir string) *BlockMeshDict {
	return &BlockMeshDict{
		Scale:   1,
		caseDir: caseDir,
		vertIdx: make(map[geometry.Vec]int),
		quality: 50,
	}
}

func (d *BlockMeshDict) vertex(c geometry.Vec) int {
	if id, ok := d.vertIdx[c]; ok {
		return id
	}
	id := len(d.verts)
	d.verts = append(d.verts, Vertex{ID: id, Coords: c})
	d.vertIdx[c] = id
	return id
}

// AddBox registers a cuboid block between two corners and recomputes the cell
// sizing basis from its largest dimension.
func (d *BlockMeshDict) AddBox(min, max geometry.Vec, name string) error {
	extent := max.Sub(min)
	for axis, e := range extent {
		if e <= 0 {
			return fmt.Errorf("block %q: max must exceed min on every axis, axis %d extent is %s",
				name, axis, dict.FormatFloat(e))
		}
	}
	b := &Block{
		Name: name,
		Vertices: [8]int{
			d.vertex(geometry.Vec{min[0], min[1], min[2]}),
			d.vertex(geometry.Vec{max[0], min[1], min[2]}),
			d.vertex(geometry.Vec{max[0], max[1], min[2]}),
			d.vertex(geometry.Vec{min[0], max[1], min[2]}),
			d.vertex(geometry.Vec{min[0], min[1], max[2]}),
			d.vertex(geometry.Vec{max[0], min[1], max[2]}),
			d.vertex(geometry.Vec{max[0], max[1], max[2]}),
			d.vertex(geometry.Vec{min[0], max[1], max[2]}),
		},
		Grading: [3]int{1, 1, 1},
		extent:  extent,
	}
	d.blocks = append(d.blocks, b)

	maxDim := extent[0]
	if extent[1] > maxDim {
		maxDim = extent[1]
	}
	if extent[2] > maxDim {
		maxDim = extent[2]
	}
	d.minSize = 0.1 * maxDim / 3
	d.maxSize = 0.7 * maxDim / 3
	d.recompute()
	return nil
}

// SetMeshQuality sets the quality percentage and recomputes every block's
// per-axis cell counts.
func (d *BlockMeshDict) SetMeshQuality(quality float64) error {
	if quality < 0 || quality > 100 {
		return fmt.Errorf("mesh quality must be within [0, 100], got %s", dict.FormatFloat(quality))
	}
	d.quality = quality
	d.recompute()
	return nil
}

// MeshQuality returns the current quality percentage.
func (d *BlockMeshDict) MeshQuality() float64 { return d.quality }

// BlockSize returns the cell edge size the current calibration assigns to a
// quality percentage.
func (d *BlockMeshDict) BlockSize(quality float64) float64 {
	avg := (d.minSize + d.maxSize) / 2
	alpha, beta := stat.LinearRegression(
		[]float64{0, 50, 100},
		[]float64{d.maxSize, avg, d.minSize},
		nil, false)
	return alpha + beta*quality
}

// Blocks returns the registered blocks.
func (d *BlockMeshDict) Blocks() []*Block { return d.blocks }

func (d *BlockMeshDict) recompute() {
	if len(d.blocks) == 0 {
		return
	}
	size := d.BlockSize(d.quality)
	for _, b := range d.blocks {
		for axis := 0; axis < 3; axis++ {
			cells := int(math.Floor(b.extent[axis] / size))
			if cells < 1 {
				cells = 1
			}
			b.Cells[axis] = cells
		}
	}
}

// Save renders the dictionary into <case>/system/blockMeshDict.
func (d *BlockMeshDict) Save() error {
	var verts, blocks strings.Builder
	for _, v := range d.verts {
		verts.WriteString("    " + v.String() + "\n")
	}
	for _, b := range d.blocks {
		blocks.WriteString("    " + b.String() + "\n")
	}
	out := fmt.Sprintf(blockMeshTemplate, d.Scale, verts.String(), blocks.String(), "", "")
	return os.WriteFile(d.caseDir+"/system/blockMeshDict", []byte(out), 0644)
}
