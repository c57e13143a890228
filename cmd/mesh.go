/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/foamlab/casekit/CaseParameters"
	"github.com/foamlab/casekit/geometry"
	"github.com/foamlab/casekit/meshdict"
)

// backgroundPadding is the margin added around the combined geometry when
// sizing the background mesh block.
const backgroundPadding = 1.0

// MeshCmd represents the mesh command
var MeshCmd = &cobra.Command{
	Use:   "mesh",
	Short: "Generate geometry and mesh dictionaries for a case",
	Long: `
Realizes the case objects as surface geometry, writes their STL files and
assembles blockMeshDict, snappyHexMeshDict, controlDict and decomposeParDict,

casekit mesh -P case.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("mesh called")
		paramFile, err := cmd.Flags().GetString("paramFile")
		if err != nil {
			panic(err)
		}
		cp := processCaseInput(paramFile)
		if err := RunMesh(cp); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(MeshCmd)
	MeshCmd.Flags().StringP("paramFile", "P", "", "case parameters file in YAML format")
}

func processCaseInput(paramFile string) (cp *CaseParameters.CaseParameters) {
	if len(paramFile) == 0 {
		err := fmt.Errorf("must supply a case parameters file (-P, --paramFile) in YAML format")
		fmt.Printf("error: %s\n", err.Error())
		exampleFile := `
########################################
Name: "room"
CaseDir: "room.case"
Solver: chtMultiRegionFoam
MeshQuality: 50
Parallel: true
NumOfDomains: 4
Objects:
  walls:
    Type: box
    Dimensions: [3, 4, 2.5]
    Location: [0, 0, 0]
  heater:
    Type: box
    Dimensions: [1, 0.2, 0.3]
    Location: [1, 1, 0]
    Material: copper
    Refinement: 2
########################################
`
		fmt.Printf("Example case parameters file:%s", exampleFile)
		os.Exit(1)
	}
	data, err := os.ReadFile(paramFile)
	if err != nil {
		fmt.Printf("error reading parameters file: %s\n", err.Error())
		os.Exit(1)
	}
	cp = &CaseParameters.CaseParameters{}
	if err := cp.Parse(data); err != nil {
		fmt.Printf("error parsing parameters file: %s\n", err.Error())
		os.Exit(1)
	}
	cp.Print()
	return cp
}

// RunMesh realizes the case objects inside a fresh arena and writes every
// mesh generation dictionary of the case.
func RunMesh(cp *CaseParameters.CaseParameters) error {
	arena := geometry.NewArena()

	names := make([]string, 0, len(cp.Objects))
	for name := range cp.Objects {
		names = append(names, name)
	}
	sort.Strings(names)

	shapes := make(map[string]*geometry.Shape, len(names))
	for _, name := range names {
		shape, err := buildObject(arena, name, cp.Objects[name])
		if err != nil {
			return err
		}
		shapes[name] = shape
	}

	triDir := cp.CaseDir + "/constant/triSurface"
	var fluidSTLs []string
	for _, name := range names {
		path, err := geometry.WriteShapeSTL(shapes[name], triDir)
		if err != nil {
			return err
		}
		if err := geometry.RenameSolids(path, name); err != nil {
			return err
		}
		if cp.Objects[name].Material == "" {
			fluidSTLs = append(fluidSTLs, path)
		}
		fmt.Printf("wrote %s\n", path)
	}

	min, max := caseBounds(shapes, names)
	pad := geometry.Vec{backgroundPadding, backgroundPadding, backgroundPadding}
	bgMin, bgMax := min.Sub(pad), max.Add(pad)

	if err := os.MkdirAll(cp.CaseDir+"/system", 0755); err != nil {
		return err
	}

	blockMesh := meshdict.NewBlockMeshDict(cp.CaseDir)
	if err := blockMesh.AddBox(bgMin, bgMax, ""); err != nil {
		return err
	}
	if err := blockMesh.SetMeshQuality(cp.MeshQuality); err != nil {
		return err
	}
	if err := blockMesh.Save(); err != nil {
		return err
	}

	snappy := meshdict.NewSnappyHexMeshDict(cp.CaseDir)
	if len(fluidSTLs) > 0 {
		fluidPath := triDir + "/fluid.stl"
		if err := geometry.CombineSTLs(fluidPath, fluidSTLs...); err != nil {
			return err
		}
		fluid := meshdict.NewSnappyPartitionedMesh("fluid", "fluid.stl")
		for _, name := range names {
			if cp.Objects[name].Material != "" {
				continue
			}
			fluid.AddRegions(&meshdict.SnappyRegion{
				Name:            name,
				RegionType:      "wall",
				RefinementLevel: cp.Objects[name].Refinement,
			})
		}
		snappy.AddMeshes(fluid)
	}
	for _, name := range names {
		obj := cp.Objects[name]
		if obj.Material == "" {
			continue
		}
		zone := meshdict.NewSnappyCellZoneMesh("fluidTo"+name, name+".stl", obj.Refinement)
		zone.Material = obj.Material
		zone.UseInsidePoint(shapes[name].Center)
		snappy.AddMeshes(zone)
	}
	snappy.LocationInMesh = bgMin.Add(bgMax).Scale(0.5)
	if err := snappy.Save(); err != nil {
		return err
	}

	controlDict, err := meshdict.NewControlDict(cp.CaseDir, cp.Solver)
	if err != nil {
		return err
	}
	if cp.EndTime > 0 {
		controlDict.EndTime = cp.EndTime
	}
	if err := controlDict.Save(); err != nil {
		return err
	}

	if cp.Parallel {
		decompose, err := meshdict.NewDecomposeParDict(cp.CaseDir, cp.NumOfDomains, "simple")
		if err != nil {
			return err
		}
		decompose.DivideDomain([3]float64(bgMax.Sub(bgMin)))
		if err := decompose.Save(); err != nil {
			return err
		}
	}
	return nil
}

func buildObject(arena *geometry.Arena, name string, obj CaseParameters.ObjectParameters) (*geometry.Shape, error) {
	dims := geometry.Vec(obj.Dimensions)
	loc := geometry.Vec(obj.Location)
	rot := geometry.Vec(obj.Rotation)
	switch obj.Type {
	case geometry.BoxShape:
		return geometry.BuildBox(arena, name, dims, loc, rot)
	case geometry.PatchShape:
		return geometry.BuildPatch(arena, name, dims, loc, rot, obj.FacingZero)
	case geometry.TriMeshShape:
		return geometry.ImportSTL(arena, name, obj.STLPath)
	}
	return nil, fmt.Errorf("object %q: geometry type %q is not defined, available types are: [%s %s %s]",
		name, obj.Type, geometry.PatchShape, geometry.BoxShape, geometry.TriMeshShape)
}

func caseBounds(shapes map[string]*geometry.Shape, names []string) (min, max geometry.Vec) {
	first := true
	for _, name := range names {
		smin, smax := shapes[name].Bounds()
		if first {
			min, max = smin, smax
			first = false
			continue
		}
		for i := 0; i < 3; i++ {
			if smin[i] < min[i] {
				min[i] = smin[i]
			}
			if smax[i] > max[i] {
				max[i] = smax[i]
			}
		}
	}
	return min, max
}
