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

	"github.com/spf13/cobra"

	"github.com/foamlab/casekit/boundary"
	"github.com/foamlab/casekit/dict"
)

// BoundaryCmd represents the boundary command
var BoundaryCmd = &cobra.Command{
	Use:   "boundary",
	Short: "Add or patch boundary conditions of a case field",
	Long: `
Adds a boundary block to a field's time-zero dictionary, or patches a value
of an existing boundary in the latest result-time file in place,

casekit boundary -C room.case -f T -p heater -t fixedValue -v 330
casekit boundary -C room.case -f T -p heater -a value -v 350 --latest`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("boundary called")
		opts := &boundaryOpts{}
		var err error
		if opts.caseDir, err = cmd.Flags().GetString("case"); err != nil {
			panic(err)
		}
		opts.field, _ = cmd.Flags().GetString("field")
		opts.region, _ = cmd.Flags().GetString("region")
		opts.patch, _ = cmd.Flags().GetString("patch")
		opts.typeName, _ = cmd.Flags().GetString("type")
		opts.attr, _ = cmd.Flags().GetString("attr")
		opts.value, _ = cmd.Flags().GetString("value")
		opts.uniform, _ = cmd.Flags().GetBool("uniform")
		opts.latest, _ = cmd.Flags().GetBool("latest")
		opts.timeStep, _ = cmd.Flags().GetString("time")
		opts.parallel, _ = cmd.Flags().GetBool("parallel")
		if err := runBoundary(opts); err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
	},
}

type boundaryOpts struct {
	caseDir  string
	field    string
	region   string
	patch    string
	typeName string
	attr     string
	value    string
	uniform  bool
	latest   bool
	timeStep string
	parallel bool
}

func init() {
	rootCmd.AddCommand(BoundaryCmd)
	BoundaryCmd.Flags().StringP("case", "C", "", "case directory")
	BoundaryCmd.Flags().StringP("field", "f", "", "field name (T, U, p, ...)")
	BoundaryCmd.Flags().StringP("region", "r", "", "region name for multi-region cases")
	BoundaryCmd.Flags().StringP("patch", "p", "", "boundary patch name")
	BoundaryCmd.Flags().StringP("type", "t", "", "boundary type name, adds a new boundary block when set")
	BoundaryCmd.Flags().StringP("attr", "a", "value", "attribute to set")
	BoundaryCmd.Flags().StringP("value", "v", "", "attribute value: number, symbol or \"(x y z)\"")
	BoundaryCmd.Flags().BoolP("uniform", "u", true, "mark the value attribute uniform")
	BoundaryCmd.Flags().Bool("latest", false, "patch the latest result-time file instead of time zero")
	BoundaryCmd.Flags().String("time", "", "result time to patch (implies --latest)")
	BoundaryCmd.Flags().Bool("parallel", false, "case is domain-decomposed")
}

func runBoundary(opts *boundaryOpts) error {
	if opts.caseDir == "" || opts.field == "" || opts.patch == "" {
		return fmt.Errorf("must supply a case directory (-C), a field (-f) and a patch (-p)")
	}
	cond, err := boundary.ForField(opts.caseDir, opts.field, opts.region)
	if err != nil {
		return err
	}

	if opts.typeName != "" {
		attrs := map[string]dict.Value{}
		if opts.value != "" {
			attrs[opts.attr] = dict.ParseToken(opts.value)
		}
		if err := cond.AddInitialBoundary(opts.patch, opts.typeName, opts.uniform, attrs); err != nil {
			return err
		}
		fmt.Printf("added boundary %s to %s\n", opts.patch, cond.Path())
		return nil
	}

	if opts.timeStep != "" {
		opts.latest = true
	}
	if !opts.latest {
		b, ok := cond.Initial[opts.patch]
		if !ok {
			return fmt.Errorf("boundary %q not present in %s", opts.patch, cond.Path())
		}
		b.SetAttr(opts.attr, dict.ParseToken(opts.value))
		if err := cond.SaveInitialBoundary(opts.patch); err != nil {
			return err
		}
		fmt.Printf("patched %s of boundary %s in %s\n", opts.attr, opts.patch, cond.Path())
		return nil
	}

	timeStep := opts.timeStep
	if timeStep == "" {
		if opts.parallel {
			timeStep = dict.LatestTimeParallel(opts.caseDir)
		} else {
			timeStep = dict.LatestTime(opts.caseDir)
		}
	}
	if err := cond.UpdateLatestBoundaries(timeStep, opts.parallel); err != nil {
		return err
	}
	b, ok := cond.Latest[opts.patch]
	if !ok {
		return fmt.Errorf("boundary %q not present at time %s", opts.patch, timeStep)
	}
	b.SetAttr(opts.attr, dict.ParseToken(opts.value))
	if err := cond.SaveLatestBoundaries(opts.parallel); err != nil {
		return err
	}
	fmt.Printf("patched %s of boundary %s at time %s\n", opts.attr, opts.patch, timeStep)
	return nil
}
