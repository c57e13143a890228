package dict

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ReadLines reads a file into newline-stripped lines.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	// Files conventionally end with a newline; drop the empty trailer so
	// WriteLines restores it.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines, nil
}

// WriteLines writes lines back with a trailing newline.
func WriteLines(path string, lines []string) error {
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}

// NumeratedDirs lists directory entries named <prefix><number>, e.g. result
// times ("0.5", "120") or decomposed domains ("processor0", "processor1").
func NumeratedDirs(dir, prefix string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	re := regexp.MustCompile(fmt.Sprintf(`^%s%s$`, regexp.QuoteMeta(prefix), NumberPattern))
	var out []string
	for _, e := range entries {
		if e.IsDir() && re.MatchString(e.Name()) {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out
}

// LatestTime returns the name of the most recent result-time directory of a
// case, "0" when none beyond the initial time exist.
func LatestTime(caseDir string) string {
	return latestIn(caseDir)
}

// LatestTimeParallel returns the most recent result time of a decomposed
// case, taken from processor0.
func LatestTimeParallel(caseDir string) string {
	return latestIn(caseDir + "/processor0")
}

func latestIn(dir string) string {
	names := NumeratedDirs(dir, "")
	latest := "0"
	best := 0.0
	for _, name := range names {
		if name == "0" {
			continue
		}
		t, err := strconv.ParseFloat(name, 64)
		if err != nil {
			continue
		}
		if t > best {
			best = t
			latest = name
		}
	}
	return latest
}

// ProcessorDirs lists the processorN directories of a decomposed case.
func ProcessorDirs(caseDir string) []string {
	return NumeratedDirs(caseDir, "processor")
}
