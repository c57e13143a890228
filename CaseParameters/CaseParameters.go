package CaseParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// ObjectParameters describes one simulated object to realize as geometry:
// a box, a flat surface patch, or an imported STL model.
type ObjectParameters struct {
	Type       string     `yaml:"Type"`
	Dimensions [3]float64 `yaml:"Dimensions"`
	Location   [3]float64 `yaml:"Location"`
	Rotation   [3]float64 `yaml:"Rotation"`
	FacingZero bool       `yaml:"FacingZero"`
	STLPath    string     `yaml:"STLPath"`
	Refinement int        `yaml:"Refinement"`
	Material   string     `yaml:"Material"`
}

// Parameters obtained from the YAML case file
type CaseParameters struct {
	Name         string                      `yaml:"Name"`
	CaseDir      string                      `yaml:"CaseDir"`
	Solver       string                      `yaml:"Solver"`
	Region       string                      `yaml:"Region"`
	MeshQuality  float64                     `yaml:"MeshQuality"`
	Parallel     bool                        `yaml:"Parallel"`
	NumOfDomains int                         `yaml:"NumOfDomains"`
	EndTime      float64                     `yaml:"EndTime"`
	Objects      map[string]ObjectParameters `yaml:"Objects"`
	// First key is field name (T, U, ...), second is patch name, third is attribute name
	BCs map[string]map[string]map[string]string `yaml:"BCs"`
}

func (cp *CaseParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, cp)
}

func (cp *CaseParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Name\n", cp.Name)
	fmt.Printf("\"%s\"\t\t= CaseDir\n", cp.CaseDir)
	fmt.Printf("[%s]\t\t\t= Solver\n", cp.Solver)
	fmt.Printf("%8.2f\t\t= MeshQuality\n", cp.MeshQuality)
	fmt.Printf("[%t]\t\t\t= Parallel\n", cp.Parallel)
	fmt.Printf("[%d]\t\t\t\t= NumOfDomains\n", cp.NumOfDomains)
	keys := make([]string, len(cp.Objects))
	i := 0
	for k := range cp.Objects {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("Objects[%s] = %v\n", key, cp.Objects[key])
	}
	keys = keys[:0]
	for k := range cp.BCs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, cp.BCs[key])
	}
}
