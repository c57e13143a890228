package meshdict

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/foamlab/casekit/dict"
)

const controlDictTemplate = `/*--------------------------------*- C++ -*----------------------------------*\
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
    object      controlDict;
}
// * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * * //

application       %s;

startFrom         %s;

startTime         %s;

endTime           %s;

deltaT            %s;

writeControl      %s;

writeInterval     %s;

purgeWrite        %s;

writeFormat       %s;

writePrecision    %s;

writeCompression  %s;

timeFormat        %s;

timePrecision     %s;

runTimeModifiable %s;

adjustTimeStep    %s;

maxCo             %s;

maxDi             %s;

functions
{
    #includeFunc  probes
}

// ************************************************************************* //
`

// ControlDict is the solver run-control dictionary. Existing values on disk
// are picked up at construction so repeated saves do not clobber manual
// edits.
type ControlDict struct {
	Application       string
	StartFrom         string
	StartTime         float64
	EndTime           float64
	DeltaT            float64
	WriteControl      string
	WriteInterval     float64
	PurgeWrite        float64
	WriteFormat       string
	WritePrecision    float64
	WriteCompression  string
	TimeFormat        string
	TimePrecision     float64
	RunTimeModifiable bool
	AdjustTimeStep    string
	MaxCo             float64
	MaxDi             float64

	caseDir string
}

// NewControlDict creates run control with the conventional defaults for this
// domain, then overlays any values found in an existing file.
func NewControlDict(caseDir, solver string) (*ControlDict, error) {
	d := &ControlDict{
		Application:       solver,
		StartFrom:         "latestTime",
		StartTime:         0,
		EndTime:           1e6,
		DeltaT:            1,
		WriteControl:      "adjustableRunTime",
		WriteInterval:     1,
		PurgeWrite:        0,
		WriteFormat:       "ascii",
		WritePrecision:    8,
		WriteCompression:  "off",
		TimeFormat:        "general",
		TimePrecision:     6,
		RunTimeModifiable: true,
		AdjustTimeStep:    "yes",
		MaxCo:             1.0,
		MaxDi:             10.0,
		caseDir:           caseDir,
	}
	if err := d.parse(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *ControlDict) path() string {
	return d.caseDir + "/system/controlDict"
}

func (d *ControlDict) parse() error {
	data, err := os.ReadFile(d.path())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	text := string(data)

	str := func(name string, dst *string) {
		if v, ok := lookupValue(text, name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *float64) {
		if v, ok := lookupValue(text, name); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}
	str("application", &d.Application)
	str("startFrom", &d.StartFrom)
	num("startTime", &d.StartTime)
	num("endTime", &d.EndTime)
	num("deltaT", &d.DeltaT)
	str("writeControl", &d.WriteControl)
	num("writeInterval", &d.WriteInterval)
	num("purgeWrite", &d.PurgeWrite)
	str("writeFormat", &d.WriteFormat)
	num("writePrecision", &d.WritePrecision)
	str("writeCompression", &d.WriteCompression)
	str("timeFormat", &d.TimeFormat)
	num("timePrecision", &d.TimePrecision)
	if v, ok := lookupValue(text, "runTimeModifiable"); ok {
		d.RunTimeModifiable = v == "true"
	}
	str("adjustTimeStep", &d.AdjustTimeStep)
	num("maxCo", &d.MaxCo)
	num("maxDi", &d.MaxDi)
	return nil
}

// lookupValue finds a top-level "name value;" entry.
func lookupValue(text, name string) (string, bool) {
	re := regexp.MustCompile(fmt.Sprintf(`(?m)^ *%s\s+([^;]*);`, regexp.QuoteMeta(name)))
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Save renders the dictionary into <case>/system/controlDict.
func (d *ControlDict) Save() error {
	n := dict.FormatFloat
	out := fmt.Sprintf(controlDictTemplate,
		d.Application, d.StartFrom, n(d.StartTime), n(d.EndTime), n(d.DeltaT),
		d.WriteControl, n(d.WriteInterval), n(d.PurgeWrite),
		d.WriteFormat, n(d.WritePrecision), d.WriteCompression,
		d.TimeFormat, n(d.TimePrecision), ofBool(d.RunTimeModifiable),
		d.AdjustTimeStep, n(d.MaxCo), n(d.MaxDi))
	return os.WriteFile(d.path(), []byte(out), 0644)
}
