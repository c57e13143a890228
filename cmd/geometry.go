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
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foamlab/casekit/geometry"
)

// GeometryCmd represents the geometry command
var GeometryCmd = &cobra.Command{
	Use:   "geometry",
	Short: "Build a single shape and write it as an STL file",
	Long: `
Builds a box, a flat surface patch, or re-exports an imported STL model,

casekit geometry -t box -n walls -d 3,4,2.5 -o room.case/constant/triSurface`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("geometry called")
		name, _ := cmd.Flags().GetString("name")
		shapeType, _ := cmd.Flags().GetString("type")
		dimStr, _ := cmd.Flags().GetString("dimensions")
		locStr, _ := cmd.Flags().GetString("location")
		rotStr, _ := cmd.Flags().GetString("rotation")
		facingZero, _ := cmd.Flags().GetBool("facingZero")
		stlPath, _ := cmd.Flags().GetString("stlFile")
		outDir, _ := cmd.Flags().GetString("outDir")
		if err := runGeometry(name, shapeType, dimStr, locStr, rotStr, facingZero, stlPath, outDir); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(GeometryCmd)
	GeometryCmd.Flags().StringP("name", "n", "shape", "shape name, used for the file and the solid token")
	GeometryCmd.Flags().StringP("type", "t", "box", "shape type: surface, box or stl")
	GeometryCmd.Flags().StringP("dimensions", "d", "1,1,1", "dimensions x,y,z")
	GeometryCmd.Flags().StringP("location", "l", "0,0,0", "location x,y,z")
	GeometryCmd.Flags().StringP("rotation", "r", "0,0,0", "rotation angles in degrees x,y,z")
	GeometryCmd.Flags().Bool("facingZero", true, "surface normal towards the origin (surface type)")
	GeometryCmd.Flags().StringP("stlFile", "F", "", "input STL file (stl type)")
	GeometryCmd.Flags().StringP("outDir", "o", ".", "output directory")
}

func runGeometry(name, shapeType, dimStr, locStr, rotStr string, facingZero bool, stlPath, outDir string) error {
	dims, err := parseTriple(dimStr)
	if err != nil {
		return fmt.Errorf("bad dimensions: %v", err)
	}
	loc, err := parseTriple(locStr)
	if err != nil {
		return fmt.Errorf("bad location: %v", err)
	}
	rot, err := parseTriple(rotStr)
	if err != nil {
		return fmt.Errorf("bad rotation: %v", err)
	}

	arena := geometry.NewArena()
	var shape *geometry.Shape
	switch shapeType {
	case geometry.BoxShape:
		shape, err = geometry.BuildBox(arena, name, dims, loc, rot)
	case geometry.PatchShape:
		shape, err = geometry.BuildPatch(arena, name, dims, loc, rot, facingZero)
	case geometry.TriMeshShape:
		if stlPath == "" {
			return fmt.Errorf("must supply an input STL file (-F, --stlFile) for the stl type")
		}
		shape, err = geometry.ImportSTL(arena, name, stlPath)
	default:
		return fmt.Errorf("geometry type %q is not defined, available types are: [%s %s %s]",
			shapeType, geometry.PatchShape, geometry.BoxShape, geometry.TriMeshShape)
	}
	if err != nil {
		return err
	}

	path, err := geometry.WriteShapeSTL(shape, outDir)
	if err != nil {
		return err
	}
	if err := geometry.RenameSolids(path, name); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func parseTriple(s string) (geometry.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return geometry.Vec{}, fmt.Errorf("expected 3 comma-separated values, got %q", s)
	}
	var v geometry.Vec
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geometry.Vec{}, fmt.Errorf("bad value %q", p)
		}
		v[i] = f
	}
	return v, nil
}
