package boundary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foamlab/casekit/dict"
)

func newCase(t *testing.T) string {
	t.Helper()
	caseDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(caseDir, "0"), 0755))
	return caseDir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCreateFromTemplate(t *testing.T) {
	caseDir := newCase(t)
	c, err := ForField(caseDir, "T", "")
	require.NoError(t, err)
	assert.Equal(t, Parsed, c.State)
	assert.Empty(t, c.Initial)

	content := readFile(t, c.Path())
	assert.Contains(t, content, "dimensions      [0 0 0 1 0 0 0];")
	assert.Contains(t, content, "object      T;")
	assert.Contains(t, content, Sentinel)
	assert.Contains(t, content, `#includeEtc "caseDicts/setConstraintTypes"`)
	assert.Equal(t, 1, strings.Count(content, Sentinel))
}

func TestUnknownFieldRejected(t *testing.T) {
	_, err := ForField(t.TempDir(), "vorticity", "")
	assert.Error(t, err)
}

func TestAddThenRemoveRestoresFile(t *testing.T) {
	caseDir := newCase(t)
	c, err := ForField(caseDir, "T", "")
	require.NoError(t, err)
	before := readFile(t, c.Path())

	err = c.AddInitialBoundary("heater", "fixedValue", true, map[string]dict.Value{
		"value": dict.ScalarValue(300),
	})
	require.NoError(t, err)
	content := readFile(t, c.Path())
	assert.Contains(t, content, "    heater\n    {\n        type  fixedValue;\n        value uniform 300;\n    }")
	assert.Contains(t, c.Initial, "heater")

	require.NoError(t, c.RemoveInitialBoundary("heater"))
	assert.Equal(t, before, readFile(t, c.Path()))
	assert.NotContains(t, c.Initial, "heater")
}

func TestRoundTripIdempotence(t *testing.T) {
	caseDir := newCase(t)
	c, err := ForField(caseDir, "T", "")
	require.NoError(t, err)
	require.NoError(t, c.AddInitialBoundary("heater", "fixedValue", true, map[string]dict.Value{
		"value": dict.ScalarValue(300),
	}))
	require.NoError(t, c.AddInitialBoundary("other_boundaries", "zeroGradient", false, nil))
	before := readFile(t, c.Path())
	assert.Contains(t, before, `".*"`)

	// Re-open, change nothing, save one boundary in place.
	c2, err := ForField(caseDir, "T", "")
	require.NoError(t, err)
	require.NoError(t, c2.SaveInitialBoundary("heater"))
	assert.Equal(t, before, readFile(t, c2.Path()))
}

func TestAddReplacesExistingBoundary(t *testing.T) {
	caseDir := newCase(t)
	c, err := ForField(caseDir, "T", "")
	require.NoError(t, err)
	require.NoError(t, c.AddInitialBoundary("heater", "fixedValue", true, map[string]dict.Value{
		"value": dict.ScalarValue(300),
	}))
	require.NoError(t, c.AddInitialBoundary("heater", "zeroGradient", false, nil))

	content := readFile(t, c.Path())
	assert.Equal(t, 1, strings.Count(content, "heater"))
	assert.NotContains(t, content, "fixedValue")
	assert.Equal(t, "zeroGradient", c.Initial["heater"].Type)
}

func TestAddWithoutSentinelFailsUntouched(t *testing.T) {
	caseDir := newCase(t)
	c, err := ForField(caseDir, "T", "")
	require.NoError(t, err)

	// Corrupt the file by stripping the insertion marker.
	lines, err := dict.ReadLines(c.Path())
	require.NoError(t, err)
	var kept []string
	for _, line := range lines {
		if !strings.Contains(line, Sentinel) {
			kept = append(kept, line)
		}
	}
	require.NoError(t, dict.WriteLines(c.Path(), kept))
	before := readFile(t, c.Path())

	err = c.AddInitialBoundary("heater", "fixedValue", true, map[string]dict.Value{
		"value": dict.ScalarValue(300),
	})
	assert.Error(t, err)
	assert.Equal(t, before, readFile(t, c.Path()))
}

func TestSentinelInsertedOnceOnFirstParse(t *testing.T) {
	caseDir := newCase(t)
	path := filepath.Join(caseDir, "0", "T")
	content := `FoamFile
{
    version     2.0;
    format      ascii;
    class       volScalarField;
    object      T;
}

dimensions      [0 0 0 1 0 0 0];

internalField   uniform 300;

boundaryField
{
    walls
    {
        type            zeroGradient;
    }
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := ForField(caseDir, "T", "")
	require.NoError(t, err)
	after := readFile(t, path)
	assert.Equal(t, 1, strings.Count(after, Sentinel))
	assert.Contains(t, c.Initial, "walls")
	require.NotNil(t, c.InternalField)
	assert.Equal(t, 300.0, c.InternalField.Value.Num)
	assert.True(t, c.InternalField.Uniform)

	// Second parse is read-only.
	_, err = ForField(caseDir, "T", "")
	require.NoError(t, err)
	assert.Equal(t, after, readFile(t, path))
}

func TestSaveInitialInternalField(t *testing.T) {
	caseDir := newCase(t)
	path := filepath.Join(caseDir, "0", "T")
	content := "dimensions      [0 0 0 1 0 0 0];\n\ninternalField   uniform 300;\n\nboundaryField\n{\n// next\n}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := ForField(caseDir, "T", "")
	require.NoError(t, err)
	require.NotNil(t, c.InternalField)
	c.InternalField.Set(dict.ScalarValue(295))
	require.NoError(t, c.SaveInitialInternalField())
	assert.Contains(t, readFile(t, path), "internalField   uniform 295;")
	assert.NotContains(t, readFile(t, path), "300")
}

const latestFileContent = `FoamFile
{
    version     2.0;
    format      ascii;
    class       volScalarField;
    location    "0.5";
    object      T;
}

dimensions      [0 0 0 1 0 0 0];

internalField   uniform 300;

boundaryField
{
    heater
    {
        type            fixedValue;
        value           uniform 330.123;
    }
    walls
    {
        type            zeroGradient;
    }
}
`

func TestUpdateAndSaveLatestBoundaries(t *testing.T) {
	caseDir := newCase(t)
	c, err := ForField(caseDir, "T", "")
	require.NoError(t, err)

	timeDir := filepath.Join(caseDir, "0.5")
	require.NoError(t, os.Mkdir(timeDir, 0755))
	path := filepath.Join(timeDir, "T")
	require.NoError(t, os.WriteFile(path, []byte(latestFileContent), 0644))

	require.NoError(t, c.UpdateLatestBoundaries("0.5", false))
	require.Contains(t, c.Latest, "heater")
	require.Contains(t, c.Latest, "walls")
	v, ok := c.Latest["heater"].Attr("value")
	require.True(t, ok)
	assert.Equal(t, 330.123, v.Num)

	// No changes: the file must come back byte-identical.
	require.NoError(t, c.SaveLatestBoundaries(false))
	assert.Equal(t, latestFileContent, readFile(t, path))

	// One dirty value: only that token is rewritten.
	c.Latest["heater"].SetAttr("value", dict.ScalarValue(340))
	require.NoError(t, c.SaveLatestBoundaries(false))
	after := readFile(t, path)
	assert.Contains(t, after, "        value           uniform 340;")
	assert.Contains(t, after, "internalField   uniform 300;")
	assert.Contains(t, after, "    walls\n    {\n        type            zeroGradient;\n    }")
	assert.NotContains(t, after, "330.123")
}

func TestAbsentResultTimeIsSkipped(t *testing.T) {
	caseDir := newCase(t)
	c, err := ForField(caseDir, "T", "")
	require.NoError(t, err)
	assert.NoError(t, c.UpdateLatestBoundaries("7", false))
	assert.Empty(t, c.Latest)
	assert.NoError(t, c.SaveLatestBoundaries(false))
}

func TestInlineListCollapsesToMean(t *testing.T) {
	caseDir := newCase(t)
	c, err := ForField(caseDir, "T", "")
	require.NoError(t, err)

	timeDir := filepath.Join(caseDir, "2")
	require.NoError(t, os.Mkdir(timeDir, 0755))
	content := `dimensions      [0 0 0 1 0 0 0];

internalField   nonuniform List<scalar> 4 (1 2 3 4);

boundaryField
{
    heater
    {
        type            fixedValue;
        value           nonuniform List<scalar> 2 (10 20);
    }
}
`
	path := filepath.Join(timeDir, "T")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	require.NoError(t, c.UpdateLatestBoundaries("2", false))
	require.NotNil(t, c.LatestInternal)
	assert.Equal(t, 2.5, c.LatestInternal.Value.Num)
	v, ok := c.Latest["heater"].Attr("value")
	require.True(t, ok)
	assert.Equal(t, 15.0, v.Num)

	// Dirty value rewrites the whole inline list with the new scalar.
	c.Latest["heater"].SetAttr("value", dict.ScalarValue(25))
	require.NoError(t, c.SaveLatestBoundaries(false))
	assert.Contains(t, readFile(t, path), "value           nonuniform List<scalar> 2 (25 25);")
}

func TestMultiLineListKeepsIndentation(t *testing.T) {
	caseDir := newCase(t)
	c, err := ForField(caseDir, "T", "")
	require.NoError(t, err)

	timeDir := filepath.Join(caseDir, "3")
	require.NoError(t, os.Mkdir(timeDir, 0755))
	content := `dimensions      [0 0 0 1 0 0 0];

internalField   uniform 300;

boundaryField
{
    heater
    {
        type            fixedValue;
        value           nonuniform List<scalar>
        3
        (
            10
            20
            30
        )
        ;
    }
}
`
	path := filepath.Join(timeDir, "T")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	require.NoError(t, c.UpdateLatestBoundaries("3", false))
	v, ok := c.Latest["heater"].Attr("value")
	require.True(t, ok)
	assert.Equal(t, 20.0, v.Num)

	// No changes: untouched body lines stay byte-identical.
	require.NoError(t, c.SaveLatestBoundaries(false))
	assert.Equal(t, content, readFile(t, path))

	// A dirty value rewrites each body line at its original column.
	require.NoError(t, c.UpdateLatestBoundaries("3", false))
	c.Latest["heater"].SetAttr("value", dict.ScalarValue(25))
	require.NoError(t, c.SaveLatestBoundaries(false))
	after := readFile(t, path)
	assert.Equal(t, 3, strings.Count(after, "            25\n"))
	assert.Contains(t, after, "        3\n        (\n            25\n            25\n            25\n        )\n        ;")
	assert.NotContains(t, after, "10")
}
