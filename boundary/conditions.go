package boundary

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/foamlab/casekit/dict"
)

// Sentinel marks the single valid insertion point for new boundary blocks.
// Exactly one per file; it is placed immediately before the closing brace of
// boundaryField on first parse and never removed.
const Sentinel = "// next"

// wildcardPatch is the on-disk spelling of the catch-all boundary patch; it
// is aliased to a plain name in memory.
const (
	wildcardPatch = `".*"`
	wildcardAlias = "other_boundaries"
)

const fileTemplate = `/*--------------------------------*- C++ -*----------------------------------*\
  =========                 |
  \\      /  F ield         | OpenFOAM: The Open Source CFD Toolbox
   \\    /   O peration     | Website:  https://openfoam.org
    \\  /    A nd           | Version:  7
\*---------------------------------------------------------------------------*/
FoamFile
{
    version     2.0;
    format      ascii;
    class       %s;%s
    object      %s;
}
// * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * //

dimensions      %s;

boundaryField
{
%s
    #includeEtc "caseDicts/setConstraintTypes"
}

// ************************************************************************* //`

// State tracks the lifecycle of a field dictionary file.
type State int

const (
	Unopened State = iota
	Parsed
	Patched
)

// FieldValue is an internalField entry: a value plus its uniformity flag.
type FieldValue struct {
	Value   dict.Value
	Uniform bool
	dirty   bool
}

// Set replaces the value and marks it for the next positional save.
func (f *FieldValue) Set(v dict.Value) {
	f.Value = v
	f.dirty = true
}

type blockRange struct {
	start, end int // inclusive, name line through closing brace
}

var (
	nameRe     = regexp.MustCompile(`^ *([a-zA-Z][a-zA-Z0-9_.-]*|"\.\*")\s*$`)
	typeRe     = regexp.MustCompile(`^\s*type\s+([\w:]+);\s*$`)
	tokenAlt   = fmt.Sprintf(`%s|%s|\$?[\w.:]+`, dict.VectorPattern, dict.NumberPattern)
	paramRe    = regexp.MustCompile(fmt.Sprintf(`^\s*([\w:]+)\s+(uniform\s+)?(%s)\s*;\s*$`, tokenAlt))
	internalRe = regexp.MustCompile(fmt.Sprintf(`^\s*internalField\s+(uniform\s+)?(%s)\s*;`, tokenAlt))
	listRe     = regexp.MustCompile(`(internalField|value)\s+(nonuniform\s+)?List<(scalar|vector)>\s*(\d*)`)
)

// Condition is the codec over one field dictionary file (e.g. 0/fluid/T).
// Initial mirrors the time-zero file; Latest is populated on demand from a
// result-time file and is not kept in sync automatically.
type Condition struct {
	caseDir string
	field   string
	region  string
	class   string
	dims    string
	path    string

	latestPath string
	LatestTime string

	State          State
	Initial        map[string]*Boundary
	Latest         map[string]*Boundary
	InternalField  *FieldValue
	LatestInternal *FieldValue

	ranges   map[string]blockRange
	sentinel int
}

// fieldDefs carries the value class and physical dimensions of the fields
// this domain configures.
var fieldDefs = map[string]struct{ class, dims string }{
	"T":            {"volScalarField", "[0 0 0 1 0 0 0]"},
	"U":            {"volVectorField", "[0 1 -1 0 0 0 0]"},
	"p":            {"volScalarField", "[1 -1 -2 0 0 0 0]"},
	"p_rgh":        {"volScalarField", "[1 -1 -2 0 0 0 0]"},
	"alphat":       {"volScalarField", "[1 -1 -1 0 0 0 0]"},
	"epsilon":      {"volScalarField", "[0 2 -3 0 0 0 0]"},
	"k":            {"volScalarField", "[0 2 -2 0 0 0 0]"},
	"nut":          {"volScalarField", "[0 2 -1 0 0 0 0]"},
	"omega":        {"volScalarField", "[0 0 -1 0 0 0 0]"},
	"cellToRegion": {"volScalarField", "[0 0 0 0 0 0 0]"},
}

// ForField opens (or creates) the time-zero dictionary of a known field.
func ForField(caseDir, field, region string) (*Condition, error) {
	def, ok := fieldDefs[field]
	if !ok {
		return nil, fmt.Errorf("no such field known: %q", field)
	}
	return NewCondition(caseDir, field, def.class, def.dims, region)
}

// NewCondition opens the time-zero dictionary for a field, parsing it when it
// exists and creating it from the template when it does not.
func NewCondition(caseDir, field, class, dims, region string) (*Condition, error) {
	c := &Condition{
		caseDir:  caseDir,
		field:    field,
		region:   region,
		class:    class,
		dims:     dims,
		path:     joinPath(caseDir, "0", region, field),
		Initial:  make(map[string]*Boundary),
		Latest:   make(map[string]*Boundary),
		ranges:   make(map[string]blockRange),
		sentinel: -1,
	}
	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		if err := c.createFile(); err != nil {
			return nil, err
		}
	}
	if err := c.reloadInitial(); err != nil {
		return nil, err
	}
	return c, nil
}

// Path returns the time-zero file this codec owns.
func (c *Condition) Path() string { return c.path }

func joinPath(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}

func (c *Condition) createFile() error {
	location := ""
	if c.field == "cellToRegion" {
		location = fmt.Sprintf("\n    location    \"0/%s\";", c.region)
	}
	content := fmt.Sprintf(fileTemplate, c.class, location, c.field, c.dims, Sentinel)
	return os.WriteFile(c.path, []byte(content+"\n"), 0644)
}

// parseResult is one file's structured content plus the positional records
// needed for later surgery.
type parseResult struct {
	boundaries map[string]*Boundary
	ranges     map[string]blockRange
	internal   *FieldValue
	sentinel   int
	finalBrace int
}

// parseFile scans a field dictionary. With insertSentinel set, a missing
// sentinel is placed before the closing brace of boundaryField and the file
// is rewritten; otherwise the scan is read-only.
func parseFile(path string, insertSentinel bool) (*parseResult, error) {
	lines, err := dict.ReadLines(path)
	if err != nil {
		return nil, err
	}
	res := &parseResult{
		boundaries: make(map[string]*Boundary),
		ranges:     make(map[string]blockRange),
		sentinel:   -1,
		finalBrace: -1,
	}

	inBoundaryField := false
	inBlock := false
	curName := ""
	var cur *Boundary
	blockStart := 0

	inListBody := false
	listStarted := false
	listName := ""
	var listVals []float64
	var listTarget *Boundary // nil targets internalField

	finishList := func() {
		mean := dict.MeanOf(listVals)
		if listTarget != nil {
			listTarget.setParsed(listName, dict.ScalarValue(mean))
		} else {
			if res.internal == nil {
				res.internal = &FieldValue{}
			}
			res.internal.Value = dict.ScalarValue(mean)
		}
		inListBody = false
		listStarted = false
		listVals = nil
	}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.Contains(line, Sentinel) {
			res.sentinel = i
		}

		if inListBody {
			switch {
			case strings.Contains(line, "("):
				listStarted = true
			case strings.Contains(line, ")"):
				finishList()
			case listStarted:
				v := dict.ParseToken(trimmed)
				switch v.Kind {
				case dict.Scalar:
					listVals = append(listVals, v.Num)
				case dict.Vector:
					// Vector list entries collapse axis-wise to their mean
					// magnitude proxy: average each component then the
					// representative scalar is the first component mean.
					listVals = append(listVals, v.Vec[0])
				}
			}
			continue
		}

		if m := listRe.FindStringSubmatchIndex(line); m != nil {
			name := line[m[2]:m[3]]
			var target *Boundary
			if name != "internalField" {
				target = cur
			}
			countStr := ""
			if m[8] >= 0 {
				countStr = line[m[8]:m[9]]
			}
			if countStr != "" {
				var n int
				fmt.Sscanf(countStr, "%d", &n)
				vals, err := dict.ParseInlineList(strings.TrimSuffix(strings.TrimSpace(line[m[1]:]), ";"), n)
				if err != nil {
					return nil, fmt.Errorf("%s:%d: %v", path, i+1, err)
				}
				mean := dict.MeanOf(vals)
				if target != nil {
					target.setParsed(name, dict.ScalarValue(mean))
				} else {
					if res.internal == nil {
						res.internal = &FieldValue{}
					}
					res.internal.Value = dict.ScalarValue(mean)
				}
			} else {
				inListBody = true
				listStarted = false
				listName = name
				listTarget = target
			}
			continue
		}

		if m := internalRe.FindStringSubmatch(line); m != nil {
			res.internal = &FieldValue{
				Uniform: m[1] != "",
				Value:   dict.ParseToken(m[2]),
			}
			continue
		}

		if inBoundaryField {
			if strings.HasPrefix(trimmed, "//") && !strings.Contains(line, Sentinel) {
				continue
			}
			if !inBlock {
				if m := nameRe.FindStringSubmatch(line); m != nil {
					curName = m[1]
					if curName == wildcardPatch {
						curName = wildcardAlias
					}
					inBlock = true
					cur = nil
					blockStart = i
					continue
				}
				if trimmed == "}" {
					res.finalBrace = i
					break
				}
				continue
			}
			// Inside a boundary block.
			if trimmed == "{" {
				continue
			}
			if strings.Contains(line, "}") {
				res.ranges[curName] = blockRange{start: blockStart, end: i}
				if cur != nil {
					res.boundaries[curName] = cur
				}
				inBlock = false
				curName = ""
				cur = nil
				continue
			}
			if m := typeRe.FindStringSubmatch(line); m != nil {
				b, err := newParsed(m[1])
				if err != nil {
					return nil, fmt.Errorf("%s:%d: %v", path, i+1, err)
				}
				cur = b
				continue
			}
			if m := paramRe.FindStringSubmatch(line); m != nil && cur != nil {
				if m[2] != "" {
					cur.Uniform = true
				}
				cur.setParsed(m[1], dict.ParseToken(m[3]))
				continue
			}
			continue
		}

		if strings.Contains(line, "boundaryField") {
			inBoundaryField = true
		}
	}

	if res.sentinel < 0 && insertSentinel {
		if res.finalBrace < 0 {
			return nil, fmt.Errorf("%s: boundaryField block not closed, cannot place %q", path, Sentinel)
		}
		p := dict.NewPatch(lines)
		p.Insert(res.finalBrace, Sentinel)
		if err := dict.WriteLines(path, p.Apply()); err != nil {
			return nil, err
		}
		// Re-scan so recorded positions match the rewritten file.
		return parseFile(path, false)
	}
	return res, nil
}

func (c *Condition) reloadInitial() error {
	res, err := parseFile(c.path, true)
	if err != nil {
		return err
	}
	c.Initial = res.boundaries
	c.ranges = res.ranges
	c.InternalField = res.internal
	c.sentinel = res.sentinel
	if c.State == Unopened {
		c.State = Parsed
	}
	return nil
}

// AddInitialBoundary constructs and validates a boundary, registers it under
// the given patch name and inserts its rendered block before the sentinel. An
// existing boundary of the same name is removed first.
func (c *Condition) AddInitialBoundary(name, typeName string, uniform bool, attrs map[string]dict.Value) error {
	b, err := New(typeName, uniform, attrs)
	if err != nil {
		return err
	}
	if _, ok := c.ranges[name]; ok {
		if err := c.removeFromFile(name); err != nil {
			return err
		}
	}
	if err := c.appendToFile(name, b); err != nil {
		return err
	}
	c.State = Patched
	return c.reloadInitial()
}

// RemoveInitialBoundary deletes a boundary block from the file and drops the
// in-memory entry.
func (c *Condition) RemoveInitialBoundary(name string) error {
	if _, ok := c.ranges[name]; !ok {
		return fmt.Errorf("boundary %q not present in %s", name, c.path)
	}
	if err := c.removeFromFile(name); err != nil {
		return err
	}
	delete(c.Initial, name)
	c.State = Patched
	return c.reloadInitial()
}

// SaveInitialBoundary re-renders exactly one boundary block in place,
// carrying any in-memory attribute changes to disk.
func (c *Condition) SaveInitialBoundary(name string) error {
	b, ok := c.Initial[name]
	if !ok {
		return fmt.Errorf("boundary %q not present in %s", name, c.path)
	}
	if _, ok := c.ranges[name]; ok {
		if err := c.removeFromFile(name); err != nil {
			return err
		}
	}
	if err := c.appendToFile(name, b); err != nil {
		return err
	}
	c.State = Patched
	return c.reloadInitial()
}

// SaveInitialInternalField rewrites the internalField line from the in-memory
// value.
func (c *Condition) SaveInitialInternalField() error {
	if c.InternalField == nil {
		return fmt.Errorf("no internalField parsed from %s", c.path)
	}
	lines, err := dict.ReadLines(c.path)
	if err != nil {
		return err
	}
	p := dict.NewPatch(lines)
	for i, line := range lines {
		if internalRe.MatchString(line) && !listRe.MatchString(line) {
			uniform := ""
			if c.InternalField.Uniform {
				uniform = uniformPrefix
			}
			p.Replace(i, fmt.Sprintf("internalField   %s%s;", uniform, c.InternalField.Value.String()))
		}
	}
	if err := dict.WriteLines(c.path, p.Apply()); err != nil {
		return err
	}
	c.InternalField.dirty = false
	c.State = Patched
	return c.reloadInitial()
}

// removeFromFile deletes the recorded line range of one boundary, plus the
// blank separator line preceding it.
func (c *Condition) removeFromFile(name string) error {
	r, ok := c.ranges[name]
	if !ok {
		return fmt.Errorf("no recorded line range for boundary %q", name)
	}
	lines, err := dict.ReadLines(c.path)
	if err != nil {
		return err
	}
	p := dict.NewPatch(lines)
	if r.start > 0 && strings.TrimSpace(lines[r.start-1]) == "" {
		p.Delete(r.start - 1)
	}
	for i := r.start; i <= r.end && i < len(lines); i++ {
		p.Delete(i)
	}
	return dict.WriteLines(c.path, p.Apply())
}

// appendToFile inserts a rendered boundary block immediately before the
// sentinel, leaving every other line untouched. A missing sentinel is a fatal
// structural error and nothing is written.
func (c *Condition) appendToFile(name string, b *Boundary) error {
	lines, err := dict.ReadLines(c.path)
	if err != nil {
		return err
	}
	sentinelIdx := -1
	for i, line := range lines {
		if strings.Contains(line, Sentinel) {
			sentinelIdx = i
			break
		}
	}
	if sentinelIdx < 0 {
		return fmt.Errorf("error adding boundary to %q: insertion marker %q not found",
			c.path, Sentinel)
	}
	fileName := name
	if name == wildcardAlias {
		fileName = wildcardPatch
	}
	block := "    " + fileName + strings.ReplaceAll(b.Render(), "\n", "\n    ")

	p := dict.NewPatch(lines)
	if sentinelIdx > 0 && strings.TrimSpace(lines[sentinelIdx-1]) != "" {
		p.Insert(sentinelIdx, "")
	}
	for _, bl := range strings.Split(block, "\n") {
		p.Insert(sentinelIdx, bl)
	}
	return dict.WriteLines(c.path, p.Apply())
}

// UpdateLatestBoundaries re-parses the result-time file(s) for the given time
// step into the Latest snapshot. For decomposed cases every processorN copy
// is parsed with the same routine; results are not merged across processors.
// Absent files are silently skipped: the time step may not exist yet.
func (c *Condition) UpdateLatestBoundaries(timeStep string, parallel bool) error {
	c.LatestTime = timeStep
	paths := c.latestPaths(timeStep, parallel)
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		res, err := parseFile(path, false)
		if err != nil {
			return err
		}
		for name, b := range res.boundaries {
			c.Latest[name] = b
		}
		if res.internal != nil {
			c.LatestInternal = res.internal
		}
		c.latestPath = path
	}
	return nil
}

func (c *Condition) latestPaths(timeStep string, parallel bool) []string {
	if !parallel {
		return []string{joinPath(c.caseDir, timeStep, c.region, c.field)}
	}
	var paths []string
	for _, proc := range dict.ProcessorDirs(c.caseDir) {
		paths = append(paths, joinPath(c.caseDir, proc, timeStep, c.region, c.field))
	}
	return paths
}

// SaveLatestBoundaries writes in-memory changes to the Latest snapshot back
// into the result-time file(s) as a positional diff-and-patch: dirty values
// are substituted token-for-token, attributes present only in memory are
// inserted before the block's closing brace, attributes no longer in memory
// have their lines deleted, and every untouched line passes through
// byte-identically.
func (c *Condition) SaveLatestBoundaries(parallel bool) error {
	var paths []string
	if parallel {
		paths = c.latestPaths(c.LatestTime, true)
	} else if c.latestPath != "" {
		paths = []string{c.latestPath}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := c.saveLatestTo(path); err != nil {
			return err
		}
	}
	for _, b := range c.Latest {
		b.dirty = make(map[string]bool)
	}
	if c.LatestInternal != nil {
		c.LatestInternal.dirty = false
	}
	c.State = Patched
	return nil
}

func (c *Condition) saveLatestTo(path string) error {
	lines, err := dict.ReadLines(path)
	if err != nil {
		return err
	}
	p := dict.NewPatch(lines)

	inBoundaryField := false
	inBlock := false
	var cur *Boundary
	seen := map[string]bool{}

	inListBody := false
	listStarted := false
	listDirty := false
	listValue := ""

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if inListBody {
			switch {
			case strings.Contains(line, "("):
				listStarted = true
			case strings.Contains(line, ")"):
				inListBody = false
				listStarted = false
			case listStarted:
				if listDirty {
					indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
					p.Replace(i, indent+listValue)
				}
			}
			continue
		}

		if m := listRe.FindStringSubmatchIndex(line); m != nil {
			name := line[m[2]:m[3]]
			value, dirty := c.latestListValue(name, cur)
			if name != "internalField" && cur != nil {
				seen[name] = true
			}
			countStr := ""
			if m[8] >= 0 {
				countStr = line[m[8]:m[9]]
			}
			if countStr != "" {
				if dirty {
					var n int
					fmt.Sscanf(countStr, "%d", &n)
					elems := make([]string, n)
					for j := range elems {
						elems[j] = value
					}
					p.Replace(i, line[:m[1]]+" ("+strings.Join(elems, " ")+");")
				}
			} else {
				inListBody = true
				listStarted = false
				listDirty = dirty
				listValue = value
			}
			continue
		}

		if m := internalRe.FindStringSubmatchIndex(line); m != nil {
			if c.LatestInternal != nil && c.LatestInternal.dirty {
				p.Replace(i, line[:m[4]]+c.LatestInternal.Value.String()+line[m[5]:])
			}
			continue
		}

		if inBoundaryField {
			if !inBlock {
				if m := nameRe.FindStringSubmatch(line); m != nil {
					name := m[1]
					if name == wildcardPatch {
						name = wildcardAlias
					}
					cur = c.Latest[name]
					seen = map[string]bool{}
					inBlock = true
					continue
				}
				if trimmed == "}" {
					break
				}
				continue
			}
			if trimmed == "{" {
				continue
			}
			if strings.Contains(line, "}") {
				if cur != nil {
					for _, name := range cur.AttrNames() {
						if name == "type" || seen[name] {
							continue
						}
						v, _ := cur.Attr(name)
						p.Insert(i, fmt.Sprintf("        %s %s;", name, v.String()))
					}
				}
				inBlock = false
				cur = nil
				continue
			}
			if m := typeRe.FindStringSubmatchIndex(line); m != nil {
				if cur != nil {
					fileType := line[m[2]:m[3]]
					if fileType != cur.Type {
						p.Replace(i, strings.Replace(line, fileType, cur.Type, 1))
					}
				}
				continue
			}
			if m := paramRe.FindStringSubmatchIndex(line); m != nil {
				if cur == nil {
					continue
				}
				name := line[m[2]:m[3]]
				v, ok := cur.Attr(name)
				if !ok {
					// Attribute no longer used in memory: drop the line.
					p.Delete(i)
					continue
				}
				seen[name] = true
				if cur.isDirty(name) {
					hadUniform := m[4] >= 0
					prefix := ""
					if hadUniform && cur.Uniform {
						prefix = uniformPrefix
					}
					start := m[6]
					if hadUniform {
						start = m[4]
					}
					p.Replace(i, line[:start]+prefix+v.String()+line[m[7]:])
				}
				continue
			}
			continue
		}

		if strings.Contains(line, "boundaryField") {
			inBoundaryField = true
		}
	}

	if !p.Dirty() {
		return nil
	}
	return dict.WriteLines(path, p.Apply())
}

// latestListValue resolves the in-memory value backing a list declaration:
// a boundary attribute when inside a block, the latest internalField
// otherwise.
func (c *Condition) latestListValue(name string, cur *Boundary) (string, bool) {
	if name != "internalField" && cur != nil {
		if v, ok := cur.Attr(name); ok {
			return v.String(), cur.isDirty(name)
		}
		return "", false
	}
	if c.LatestInternal != nil {
		return c.LatestInternal.Value.String(), c.LatestInternal.dirty
	}
	return "", false
}
