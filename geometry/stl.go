package geometry

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pradeep-pyro/triangle"
)

// Facet is one triangle of a triangulated surface file.
type Facet struct {
	Normal Vec
	V      [3]Vec
}

// ReadSTL reads an ASCII STL file into facets.
func ReadSTL(path string) ([]Facet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var facets []Facet
	var cur Facet
	nVert := 0
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "facet":
			if len(fields) != 5 || fields[1] != "normal" {
				return nil, fmt.Errorf("%s:%d: malformed facet line", path, lineNo)
			}
			n, err := parseVec(fields[2:5])
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %v", path, lineNo, err)
			}
			cur = Facet{Normal: n}
			nVert = 0
		case "vertex":
			if len(fields) != 4 {
				return nil, fmt.Errorf("%s:%d: malformed vertex line", path, lineNo)
			}
			v, err := parseVec(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %v", path, lineNo, err)
			}
			if nVert > 2 {
				return nil, fmt.Errorf("%s:%d: more than 3 vertices in facet", path, lineNo)
			}
			cur.V[nVert] = v
			nVert++
		case "endfacet":
			if nVert != 3 {
				return nil, fmt.Errorf("%s:%d: facet with %d vertices", path, lineNo, nVert)
			}
			facets = append(facets, cur)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(facets) == 0 {
		return nil, fmt.Errorf("%s: no facets found", path)
	}
	return facets, nil
}

func parseVec(fields []string) (Vec, error) {
	var v Vec
	for i, f := range fields {
		val, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return v, fmt.Errorf("bad coordinate %q", f)
		}
		v[i] = val
	}
	return v, nil
}

// clusterAngleDeg is the feature angle separating planar patches: facets
// whose normals differ by less than this belong to one patch.
const clusterAngleDeg = 80

// clusterFacets groups facets into planar patches by normal direction.
func clusterFacets(facets []Facet) [][]Facet {
	minDot := math.Cos(clusterAngleDeg * math.Pi / 180)
	var reps []Vec
	var clusters [][]Facet
	for _, f := range facets {
		n := f.Normal
		if l := n.Norm(); l > 0 {
			n = n.Scale(1 / l)
		}
		placed := false
		for i, rep := range reps {
			if n.Dot(rep) > minDot {
				clusters[i] = append(clusters[i], f)
				placed = true
				break
			}
		}
		if !placed {
			reps = append(reps, n)
			clusters = append(clusters, []Facet{f})
		}
	}
	return clusters
}

// ImportSTL reads a triangulated surface file, classifies its facets into
// planar patches, recovers each patch's boundary contour and rebuilds the
// patches as registered points, lines, loops and surfaces so imported
// geometry joins the same identity and cut machinery as parametric shapes. A
// patch with points left over after the outer contour gets those walked into
// a single hole contour.
func ImportSTL(a *Arena, name, path string) (*Shape, error) {
	facets, err := ReadSTL(path)
	if err != nil {
		return nil, err
	}
	var surfs []int
	for _, cluster := range clusterFacets(facets) {
		var ids []int
		seen := make(map[int]bool)
		for _, f := range cluster {
			for _, v := range f.V {
				id := a.MakePoint(v.round5())
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
		}
		outer, err := a.FindContour(ids)
		if err != nil {
			return nil, fmt.Errorf("patch of %q: %v", name, err)
		}
		surf := a.MakeSurface(a.contourLoop(outer))

		inOuter := make(map[int]bool, len(outer))
		for _, id := range outer {
			inOuter[id] = true
		}
		var remaining []int
		for _, id := range ids {
			if !inOuter[id] {
				remaining = append(remaining, id)
			}
		}
		if len(remaining) >= 3 {
			inner, err := a.FindContour(remaining)
			if err != nil {
				return nil, fmt.Errorf("hole of %q: %v", name, err)
			}
			hole := a.MakeSurface(a.contourLoop(inner))
			if err := a.Cut(surf, hole); err != nil {
				return nil, err
			}
		}
		surfs = append(surfs, surf)
	}
	return newTriMesh(a, name, surfs), nil
}

// contourLoop chains an ordered point ring into a closed loop, keeping each
// line's stored direction and flipping the reference where the ring runs
// against it.
func (a *Arena) contourLoop(ring []int) int {
	refs := make([]LineRef, 0, len(ring))
	for i := range ring {
		p1, p2 := ring[i], ring[(i+1)%len(ring)]
		ref := a.MakeLine(p1, p2)
		refs = append(refs, ref)
	}
	return a.MakeLoop(refs)
}

// WriteShapeSTL triangulates a shape's faces and writes them as one ASCII STL
// solid named after the shape, at dir/<name>.stl.
func WriteShapeSTL(s *Shape, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := dir + "/" + s.Name + ".stl"

	var sb strings.Builder
	fmt.Fprintf(&sb, "solid %s\n", s.Name)
	for _, surf := range s.Surfaces() {
		tris, normal, err := s.arena.triangulateSurface(surf)
		if err != nil {
			return "", fmt.Errorf("face of %q: %v", s.Name, err)
		}
		for _, tri := range tris {
			fmt.Fprintf(&sb, "  facet normal %s %s %s\n",
				stlNum(normal[0]), stlNum(normal[1]), stlNum(normal[2]))
			sb.WriteString("    outer loop\n")
			for _, v := range tri {
				fmt.Fprintf(&sb, "      vertex %s %s %s\n",
					stlNum(v[0]), stlNum(v[1]), stlNum(v[2]))
			}
			sb.WriteString("    endloop\n")
			sb.WriteString("  endfacet\n")
		}
	}
	fmt.Fprintf(&sb, "endsolid %s\n", s.Name)

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func stlNum(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// triangulateSurface converts one (possibly holed) planar surface into
// triangles. Hole-free faces use a fan from the first contour point; holed
// faces go through a constrained Delaunay triangulation in the face plane.
func (a *Arena) triangulateSurface(surf int) ([][3]Vec, Vec, error) {
	s := a.surfaces[surf-1]
	outer := a.LoopPoints(s.Loops[0])
	if len(outer) < 3 {
		return nil, Vec{}, fmt.Errorf("outer contour has %d points", len(outer))
	}
	normal := newellNormal(a, outer)
	if normal.Norm() == 0 {
		return nil, Vec{}, fmt.Errorf("degenerate contour, zero normal")
	}
	normal = normal.Scale(1 / normal.Norm())

	if len(s.Loops) == 1 {
		tris := make([][3]Vec, 0, len(outer)-2)
		p0 := a.Point(outer[0]).Coords
		for i := 1; i < len(outer)-1; i++ {
			tris = append(tris, [3]Vec{p0, a.Point(outer[i]).Coords, a.Point(outer[i+1]).Coords})
		}
		return tris, normal, nil
	}

	// Holed face: project every ring onto the face plane and triangulate with
	// hole markers at the hole ring centroids.
	origin := a.Point(outer[0]).Coords
	u := a.Point(outer[1]).Coords.Sub(origin)
	u = u.Scale(1 / u.Norm())
	v := normal.Cross(u)

	project := func(c Vec) [2]float64 {
		d := c.Sub(origin)
		return [2]float64{d.Dot(u), d.Dot(v)}
	}

	var pts [][2]float64
	var segs [][2]int32
	var holes [][2]float64
	addRing := func(ring []int) {
		base := len(pts)
		for _, id := range ring {
			pts = append(pts, project(a.Point(id).Coords))
		}
		for i := range ring {
			segs = append(segs, [2]int32{int32(base + i), int32(base + (i+1)%len(ring))})
		}
	}
	addRing(outer)
	for _, loopID := range s.Loops[1:] {
		ring := a.LoopPoints(loopID)
		if len(ring) < 3 {
			return nil, Vec{}, fmt.Errorf("hole contour has %d points", len(ring))
		}
		addRing(ring)
		holes = append(holes, project(centroid(a, ring)))
	}

	// The triangulator may add Steiner points, so triangle corners are
	// lifted back to 3-D from its returned vertices, not the input rings.
	verts, faces := triangle.ConstrainedDelaunay(pts, segs, holes)
	lift := func(p [2]float64) Vec {
		return origin.Add(u.Scale(p[0])).Add(v.Scale(p[1]))
	}
	tris := make([][3]Vec, 0, len(faces))
	for _, f := range faces {
		tris = append(tris, [3]Vec{lift(verts[f[0]]), lift(verts[f[1]]), lift(verts[f[2]])})
	}
	return tris, normal, nil
}

// newellNormal computes the Newell plane normal of an ordered point ring.
func newellNormal(a *Arena, ring []int) Vec {
	var n Vec
	for i := range ring {
		c := a.Point(ring[i]).Coords
		d := a.Point(ring[(i+1)%len(ring)]).Coords
		n[0] += (c[1] - d[1]) * (c[2] + d[2])
		n[1] += (c[2] - d[2]) * (c[0] + d[0])
		n[2] += (c[0] - d[0]) * (c[1] + d[1])
	}
	return n
}

var solidRe = regexp.MustCompile(`^((end)?solid)`)

// RenameSolids rewrites every solid/endsolid name token in an STL file to the
// given name.
func RenameSolids(path, name string) error {
	if !strings.Contains(path, ".stl") {
		path += ".stl"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if m := solidRe.FindStringSubmatch(line); m != nil {
			lines[i] = m[1] + " " + name
		}
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644)
}

// CombineSTLs concatenates several STL files into one multi-solid file.
func CombineSTLs(destPath string, paths ...string) error {
	if !strings.Contains(destPath, ".stl") {
		destPath += ".stl"
	}
	var sb strings.Builder
	for _, p := range paths {
		if !strings.Contains(p, ".stl") {
			p += ".stl"
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		sb.Write(data)
	}
	return os.WriteFile(destPath, []byte(sb.String()), 0644)
}
