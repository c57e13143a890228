package meshdict

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/foamlab/casekit/dict"
)

const decomposeTemplate = `/*--------------------------------*- C++ -*----------------------------------*\
  =========                 |
  \\      /  F ield         | OpenFOAM: The Open Source CFD Toolbox
   \\    /   O peration     | Website:  https://openfoam.org
    \\  /    A nd           | Version:  7
     \\/     M anipulation  |
\*---------------------------------------------------------------------------*/
FoamFile
{
    version     2.0;
    format      ascii;
    class       dictionary;
    object      decomposeParDict;
}
// * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * //
numberOfSubdomains  %d;

method %s;

%s
%s
// ************************************************************************* //
`

// DecomposeMethods lists the supported domain decomposition methods.
var DecomposeMethods = []string{"simple", "hierarchical"}

// SimpleCoeffs are the coefficients of the simple decomposition method: parts
// per axis and the cell skew factor.
type SimpleCoeffs struct {
	N     [3]int
	Delta float64
}

func (c SimpleCoeffs) render(name string, extra ...[2]string) string {
	entries := [][2]string{
		{"n", fmt.Sprintf("(%d %d %d)", c.N[0], c.N[1], c.N[2])},
		{"delta", dict.FormatFloat(c.Delta)},
	}
	entries = append(entries, extra...)
	width := 0
	for _, e := range entries {
		if len(e[0]) >= width {
			width = len(e[0]) + 1
		}
	}
	var sb strings.Builder
	sb.WriteString(name + "\n{\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "    %s%s%s;\n", e[0], strings.Repeat(" ", width-len(e[0])), e[1])
	}
	sb.WriteString("}\n")
	return sb.String()
}

// HierarchicalCoeffs extend SimpleCoeffs with the axis traversal order.
type HierarchicalCoeffs struct {
	SimpleCoeffs
	Order string
}

// DecomposeParDict is the domain decomposition dictionary, written to the
// case system directory and mirrored into each region's system subdirectory.
type DecomposeParDict struct {
	NumOfDomains int
	Method       string
	Regions      []string
	Simple       SimpleCoeffs
	Hierarchical HierarchicalCoeffs

	caseDir string
}

// NewDecomposeParDict creates the decomposition builder, overlaying any
// coefficients already on disk.
func NewDecomposeParDict(caseDir string, numOfDomains int, method string, regions ...string) (*DecomposeParDict, error) {
	known := false
	for _, m := range DecomposeMethods {
		if m == method {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("decomposition method %q does not exist, available methods are: %v",
			method, DecomposeMethods)
	}
	d := &DecomposeParDict{
		NumOfDomains: numOfDomains,
		Method:       method,
		Regions:      regions,
		Simple:       SimpleCoeffs{N: [3]int{1, 1, 1}, Delta: 0.001},
		Hierarchical: HierarchicalCoeffs{
			SimpleCoeffs: SimpleCoeffs{N: [3]int{1, 1, 1}, Delta: 0.001},
			Order:        "xyz",
		},
		caseDir: caseDir,
	}
	if err := d.parse(); err != nil {
		return nil, err
	}
	return d, nil
}

var (
	subdomainsRe = regexp.MustCompile(`numberOfSubdomains\s+(\d+);`)
	methodRe     = regexp.MustCompile(`method\s+(\w+);`)
	coeffsNRe    = regexp.MustCompile(`(?m)^ *n\s+\(([^;]*)\);`)
	deltaRe      = regexp.MustCompile(`(?m)^ *delta\s+([^;]*);`)
	orderRe      = regexp.MustCompile(`(?m)^ *order\s+([^;]*);`)
)

func (d *DecomposeParDict) parse() error {
	data, err := os.ReadFile(d.caseDir + "/system/decomposeParDict")
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	text := string(data)
	if m := subdomainsRe.FindStringSubmatch(text); m != nil {
		d.NumOfDomains, _ = strconv.Atoi(m[1])
	}
	if m := methodRe.FindStringSubmatch(text); m != nil {
		d.Method = m[1]
	}
	blockRe := func(name string) string {
		re := regexp.MustCompile(fmt.Sprintf(`(?m)^ *%s\s+\{\s+[^}]*}`, name))
		return re.FindString(text)
	}
	if block := blockRe("simpleCoeffs"); block != "" {
		parseCoeffs(block, &d.Simple)
	}
	if block := blockRe("hierarchicalCoeffs"); block != "" {
		parseCoeffs(block, &d.Hierarchical.SimpleCoeffs)
		if m := orderRe.FindStringSubmatch(block); m != nil {
			d.Hierarchical.Order = m[1]
		}
	}
	return nil
}

func parseCoeffs(block string, c *SimpleCoeffs) {
	if m := coeffsNRe.FindStringSubmatch(block); m != nil {
		fields := strings.Fields(m[1])
		for i := 0; i < 3 && i < len(fields); i++ {
			if v, err := strconv.Atoi(fields[i]); err == nil {
				c.N[i] = v
			}
		}
	}
	if m := deltaRe.FindStringSubmatch(block); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			c.Delta = v
		}
	}
}

// DivideDomain splits the domain along its longest side into NumOfDomains
// parts.
func (d *DecomposeParDict) DivideDomain(dimensions [3]float64) {
	longest := 0
	for axis := 1; axis < 3; axis++ {
		if dimensions[axis] > dimensions[longest] {
			longest = axis
		}
	}
	n := [3]int{1, 1, 1}
	n[longest] = d.NumOfDomains
	d.Simple.N = n
	d.Hierarchical.N = n
}

// Save renders the dictionary into <case>/system/decomposeParDict and into
// each region's system subdirectory.
func (d *DecomposeParDict) Save() error {
	out := fmt.Sprintf(decomposeTemplate, d.NumOfDomains, d.Method,
		d.Simple.render("simpleCoeffs"),
		d.Hierarchical.render("hierarchicalCoeffs", [2]string{"order", d.Hierarchical.Order}))
	for _, region := range d.Regions {
		if err := os.WriteFile(d.caseDir+"/system/"+region+"/decomposeParDict", []byte(out), 0644); err != nil {
			return err
		}
	}
	return os.WriteFile(d.caseDir+"/system/decomposeParDict", []byte(out), 0644)
}
