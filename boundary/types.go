package boundary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/foamlab/casekit/dict"
)

// Category groups boundary condition type names by role.
type Category int

const (
	Geometric Category = iota
	General
	Inlet
	Outlet
	Wall
	Coupled
)

func (c Category) String() string {
	switch c {
	case Geometric:
		return "geometric"
	case General:
		return "general"
	case Inlet:
		return "inlet"
	case Outlet:
		return "outlet"
	case Wall:
		return "wall"
	case Coupled:
		return "coupled"
	}
	return "unknown"
}

var geometricTypes = []string{
	"empty",
	"processor",
	"symmetryPlane",
	"wedge",
}

var generalTypes = []string{
	"fixedValue",
	"fixedGradient",
	"mixed",
	"codedFixedValue",
	"uniformFixedValue",
	"zeroGradient",
	"calculated",
}

var inletTypes = []string{
	"outletInlet",
	"flowRateInletVelocity",
	"turbulentDigitalFilterInlet",
	"turbulentDFSEMInlet",
	"fanPressure",
	"turbulentIntensityKineticEnergyInlet",
	"turbulentMixingLengthDissipationRateInlet",
	"turbulentMixingLengthFrequencyInlet",
	"atmBoundaryLayerInletEpsilon",
	"atmBoundaryLayerInletK",
	"atmBoundaryLayerInletOmega",
	"atmBoundaryLayerInletVelocity",
}

var outletTypes = []string{
	"inletOutlet",
	"pressureInletOutletVelocity",
	"fanPressure",
	"totalPressure",
	"totalTemperature",
}

var wallTypes = []string{
	"noSlip",
	"translatingWallVelocity",
	"movingWallVelocity",
	"atmTurbulentHeatFluxTemperature",
	"atmAlphatkWallFunction",
	"atmEpsilonWallFunction",
	"atmNutkWallFunction",
	"atmNutUWallFunction",
	"atmNutWallFunction",
	"atmOmegaWallFunction",
	"epsilonWallFunction",
	"kLowReWallFunction",
	"kqRWallFunction",
	"nutkRoughWallFunction",
	"nutkWallFunction",
	"nutLowReWallFunction",
	"nutUBlendedWallFunction",
	"nutURoughWallFunction",
	"nutUSpaldingWallFunction",
	"nutUTabulatedWallFunction",
	"nutUWallFunction",
	"nutWallFunction",
	"omegaWallFunction",
	"compressible::alphatWallFunction",
	"compressible::epsilonWallFunction",
	"fixedFluxPressure",
}

var coupledTypes = []string{
	"cyclicAMI",
	"cyclic",
	"fan",
	"compressible::turbulentTemperatureCoupledBaffleMixed",
}

// categoryOf maps every known type name to its category. fanPressure appears
// in both the inlet and outlet lists; the category only drives grouping, not
// attribute validation, so the first registration wins.
var categoryOf = map[string]Category{}

func init() {
	for cat, names := range map[Category][]string{
		Geometric: geometricTypes,
		General:   generalTypes,
		Inlet:     inletTypes,
		Outlet:    outletTypes,
		Wall:      wallTypes,
		Coupled:   coupledTypes,
	} {
		for _, name := range names {
			if _, ok := categoryOf[name]; !ok {
				categoryOf[name] = cat
			}
		}
	}
}

// attrSpec declares the attribute contract of one concrete type name. Type
// names that are accepted but bind no attributes (pass-through placeholders)
// simply have no entry here.
type attrSpec struct {
	required []string
	optional []string
}

var typeAttrs = map[string]attrSpec{
	// General
	"fixedValue": {required: []string{"value"}},
	"calculated": {required: []string{"value"}},

	// Inlet
	"outletInlet": {
		required: []string{"outletValue", "value"},
		optional: []string{"phi"},
	},
	"flowRateInletVelocity": {
		required: []string{"value"},
		optional: []string{"volumetricFlowRate", "massFlowRate"},
	},

	// Outlet
	"inletOutlet": {
		required: []string{"value", "inletValue"},
		optional: []string{"phi"},
	},
	"pressureInletOutletVelocity": {
		required: []string{"value", "tangentialVelocity"},
		optional: []string{"phi"},
	},

	// Wall
	"compressible::alphatWallFunction":  {required: []string{"value"}},
	"compressible::epsilonWallFunction": {required: []string{"value"}},
	"fixedFluxPressure":                 {required: []string{"value"}},

	// Coupled
	"compressible::turbulentTemperatureCoupledBaffleMixed": {
		required: []string{"value", "Tnbr", "kappaMethod", "kappa"},
	},
}

// flowRateInletVelocity needs value plus at least one of the flow-rate
// attributes; checked separately in New.
var eitherOf = map[string][]string{
	"flowRateInletVelocity": {"volumetricFlowRate", "massFlowRate"},
}

// KnownTypeNames returns the sorted closed set of accepted type names.
func KnownTypeNames() []string {
	names := make([]string, 0, len(categoryOf))
	for name := range categoryOf {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Boundary is one boundary-patch condition: a type name from the closed set
// plus its named attributes. Uniform marks the value attribute as a uniform
// field. dirty tracks attributes modified after parse so positional saves can
// leave untouched file lines alone.
type Boundary struct {
	Type     string
	Category Category
	Uniform  bool
	attrs    map[string]dict.Value
	dirty    map[string]bool
}

// New constructs a Boundary, validating the type name against the closed set
// and the attributes against the type's contract.
func New(typeName string, uniform bool, attrs map[string]dict.Value) (*Boundary, error) {
	cat, ok := categoryOf[typeName]
	if !ok {
		return nil, fmt.Errorf("unknown boundary type %q, known types are: %v",
			typeName, KnownTypeNames())
	}
	b := &Boundary{
		Type:     typeName,
		Category: cat,
		Uniform:  uniform,
		attrs:    make(map[string]dict.Value, len(attrs)),
		dirty:    make(map[string]bool),
	}
	for name, v := range attrs {
		b.attrs[name] = v
		b.dirty[name] = true
	}
	if spec, ok := typeAttrs[typeName]; ok {
		for _, req := range spec.required {
			if _, ok := b.attrs[req]; !ok {
				return nil, fmt.Errorf("boundary type %q: missing required attribute %q",
					typeName, req)
			}
		}
	}
	if alts, ok := eitherOf[typeName]; ok {
		found := false
		for _, alt := range alts {
			if _, ok := b.attrs[alt]; ok {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("boundary type %q: one of %v is required",
				typeName, alts)
		}
	}
	return b, nil
}

// newParsed builds an empty boundary shell during file parsing; attributes
// arrive one line at a time and skip contract validation, matching how the
// file is trusted as-is.
func newParsed(typeName string) (*Boundary, error) {
	cat, ok := categoryOf[typeName]
	if !ok {
		return nil, fmt.Errorf("unknown boundary type %q in file", typeName)
	}
	return &Boundary{
		Type:     typeName,
		Category: cat,
		attrs:    make(map[string]dict.Value),
		dirty:    make(map[string]bool),
	}, nil
}

// Attr returns the named attribute value.
func (b *Boundary) Attr(name string) (dict.Value, bool) {
	v, ok := b.attrs[name]
	return v, ok
}

// SetAttr sets an attribute and marks it dirty for positional saves.
func (b *Boundary) SetAttr(name string, v dict.Value) {
	b.attrs[name] = v
	b.dirty[name] = true
}

// RemoveAttr drops an attribute; positional saves delete its file line.
func (b *Boundary) RemoveAttr(name string) {
	delete(b.attrs, name)
	delete(b.dirty, name)
}

// AttrNames returns the attribute names in sorted order.
func (b *Boundary) AttrNames() []string {
	names := make([]string, 0, len(b.attrs))
	for name := range b.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b *Boundary) setParsed(name string, v dict.Value) {
	b.attrs[name] = v
}

func (b *Boundary) isDirty(name string) bool {
	return b.dirty[name]
}

// uniformPrefix is the prefix applied to the value attribute of uniform
// fields.
const uniformPrefix = "uniform "

// Render produces the attribute block as it appears in a dictionary file,
// starting with "{" on its own line and attribute lines indented four spaces.
// type renders first, the remaining attributes alphabetically and aligned.
func (b *Boundary) Render() string {
	names := b.AttrNames()
	width := len("type")
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}
	width++

	var sb strings.Builder
	sb.WriteString("\n{")
	fmt.Fprintf(&sb, "\n    type%s%s;", strings.Repeat(" ", width-len("type")), b.Type)
	for _, name := range names {
		v := b.attrs[name]
		prefix := ""
		if b.Uniform && name == "value" {
			prefix = uniformPrefix
		}
		fmt.Fprintf(&sb, "\n    %s%s%s%s;",
			name, strings.Repeat(" ", width-len(name)), prefix, v.String())
	}
	sb.WriteString("\n}")
	return sb.String()
}
