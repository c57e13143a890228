package geometry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Vec is a 3-D coordinate triple.
type Vec [3]float64

// X, Y, Z name the components of a Vec.
func (v Vec) X() float64 { return v[0] }
func (v Vec) Y() float64 { return v[1] }
func (v Vec) Z() float64 { return v[2] }

// Add returns v + o.
func (v Vec) Add(o Vec) Vec {
	return Vec{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec {
	return Vec{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

// Scale returns v * s.
func (v Vec) Scale(s float64) Vec {
	return Vec{v[0] * s, v[1] * s, v[2] * s}
}

// Cross returns the cross product v x o.
func (v Vec) Cross(o Vec) Vec {
	return Vec{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

// Dot returns the dot product.
func (v Vec) Dot(o Vec) float64 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

// Norm returns the Euclidean length.
func (v Vec) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// round5 keeps transformed coordinates on a 1e-5 grid so that points meeting
// after a rotation still dedupe by exact equality.
func round5(f float64) float64 {
	return math.Round(f*1e5) / 1e5
}

func (v Vec) round5() Vec {
	return Vec{round5(v[0]), round5(v[1]), round5(v[2])}
}

// Point is a registered coordinate with a stable 1-based tag used for mesh
// node numbering.
type Point struct {
	ID     int
	Coords Vec
}

// Line is an ordered point pair. The stored direction is the one of the first
// registration; later requests in the opposite direction reuse it reversed.
type Line struct {
	ID     int
	P1, P2 int
}

// LineRef references a line with an orientation. Reversed means the caller's
// requested direction is opposite to the stored one.
type LineRef struct {
	ID       int
	Reversed bool
}

// Flip returns the same line referenced in the opposite direction.
func (r LineRef) Flip() LineRef {
	return LineRef{ID: r.ID, Reversed: !r.Reversed}
}

// Signed renders the reference as a signed tag, negative when reversed.
func (r LineRef) Signed() int {
	if r.Reversed {
		return -r.ID
	}
	return r.ID
}

// Loop is an ordered closed sequence of oriented lines.
type Loop struct {
	ID    int
	Lines []LineRef
}

// Surface is one outer loop plus hole loops appended by Cut. Loops[0] is
// always the outer contour.
type Surface struct {
	ID    int
	Loops []int
}

// Arena owns every primitive created during one meshing session. Identity is
// canonical: structurally equal construction arguments return the existing
// tag. Tags are 1-based, assigned monotonically and never reused while the
// arena lives. Use a fresh arena per session; there is no sharing across
// arenas and no internal locking.
type Arena struct {
	points   []Point
	lines    []Line
	loops    []Loop
	surfaces []Surface

	pointIdx map[Vec]int
	lineIdx  map[[2]int]int
	loopIdx  map[string]int
	surfIdx  map[int]int
}

// NewArena creates an empty primitive registry.
func NewArena() *Arena {
	return &Arena{
		pointIdx: make(map[Vec]int),
		lineIdx:  make(map[[2]int]int),
		loopIdx:  make(map[string]int),
		surfIdx:  make(map[int]int),
	}
}

// MakePoint registers a coordinate triple, returning the existing tag when an
// equal point was registered before.
func (a *Arena) MakePoint(c Vec) int {
	if id, ok := a.pointIdx[c]; ok {
		return id
	}
	id := len(a.points) + 1
	a.points = append(a.points, Point{ID: id, Coords: c})
	a.pointIdx[c] = id
	return id
}

func pairKey(p1, p2 int) [2]int {
	if p2 < p1 {
		p1, p2 = p2, p1
	}
	return [2]int{p1, p2}
}

// MakeLine registers the line between two points. A line already connecting
// the pair in either order is reused; the returned reference records whether
// the requested direction is the reverse of the stored one.
func (a *Arena) MakeLine(p1, p2 int) LineRef {
	key := pairKey(p1, p2)
	if id, ok := a.lineIdx[key]; ok {
		stored := a.lines[id-1]
		return LineRef{ID: id, Reversed: stored.P1 != p1}
	}
	id := len(a.lines) + 1
	a.lines = append(a.lines, Line{ID: id, P1: p1, P2: p2})
	a.lineIdx[key] = id
	return LineRef{ID: id}
}

func loopKey(refs []LineRef) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = strconv.Itoa(r.Signed())
	}
	return strings.Join(parts, ",")
}

// MakeLoop registers an ordered oriented line sequence. Identity is the exact
// signed sequence.
func (a *Arena) MakeLoop(refs []LineRef) int {
	key := loopKey(refs)
	if id, ok := a.loopIdx[key]; ok {
		return id
	}
	id := len(a.loops) + 1
	seq := make([]LineRef, len(refs))
	copy(seq, refs)
	a.loops = append(a.loops, Loop{ID: id, Lines: seq})
	a.loopIdx[key] = id
	return id
}

// MakeSurface registers a surface over an outer loop, reusing any surface
// already defined by the same loop.
func (a *Arena) MakeSurface(loop int) int {
	if id, ok := a.surfIdx[loop]; ok {
		return id
	}
	id := len(a.surfaces) + 1
	a.surfaces = append(a.surfaces, Surface{ID: id, Loops: []int{loop}})
	a.surfIdx[loop] = id
	return id
}

// Point returns the point record for a tag.
func (a *Arena) Point(id int) Point { return a.points[id-1] }

// Line returns the line record for a tag.
func (a *Arena) Line(id int) Line { return a.lines[id-1] }

// Loop returns the loop record for a tag.
func (a *Arena) Loop(id int) Loop { return a.loops[id-1] }

// Surface returns the surface record for a tag.
func (a *Arena) Surface(id int) Surface { return a.surfaces[id-1] }

// NumPoints reports how many points the arena holds.
func (a *Arena) NumPoints() int { return len(a.points) }

// Cut appends the other surface's loops as holes of surf. Both arguments must
// be registered surface tags. No coplanarity or containment check is made.
func (a *Arena) Cut(surf, other int) error {
	if surf < 1 || surf > len(a.surfaces) {
		return fmt.Errorf("cut target %d is not a registered surface", surf)
	}
	if other < 1 || other > len(a.surfaces) {
		return fmt.Errorf("cut argument %d is not a registered surface", other)
	}
	s := &a.surfaces[surf-1]
	s.Loops = append(s.Loops, a.surfaces[other-1].Loops...)
	return nil
}

// SurfacePoints returns the unique point tags reachable from a surface, in
// first-encounter order. A point shared by several lines appears once.
func (a *Arena) SurfacePoints(surf int) []int {
	return a.loopSetPoints(a.surfaces[surf-1].Loops)
}

// LoopPoints returns the unique point tags of one loop in first-encounter
// order.
func (a *Arena) LoopPoints(loop int) []int {
	return a.loopSetPoints([]int{loop})
}

func (a *Arena) loopSetPoints(loops []int) []int {
	var order []int
	seen := make(map[int]bool)
	add := func(id int) {
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	for _, loopID := range loops {
		for _, ref := range a.loops[loopID-1].Lines {
			l := a.lines[ref.ID-1]
			if ref.Reversed {
				add(l.P2)
				add(l.P1)
			} else {
				add(l.P1)
				add(l.P2)
			}
		}
	}
	return order
}

// SetCoords moves a point to new coordinates, keeping the identity index
// consistent.
func (a *Arena) SetCoords(id int, c Vec) {
	p := &a.points[id-1]
	if a.pointIdx[p.Coords] == id {
		delete(a.pointIdx, p.Coords)
	}
	p.Coords = c
	a.pointIdx[c] = id
}

// RotatePoint applies up to three sequential axis rotations about center, in
// X, Y, Z order. Angles are degrees unless radians is set; zero angles are
// skipped. Each axis rotation reads the coordinates already rotated by the
// previous one, and results land on a 1e-5 grid.
func (a *Arena) RotatePoint(id int, rotation Vec, center Vec, radians bool) {
	toRad := func(angle float64) float64 {
		if radians {
			return angle
		}
		return angle * math.Pi / 180
	}
	if rotation[0] != 0 {
		v := a.points[id-1].Coords.Sub(center)
		t := toRad(rotation[0])
		sin, cos := math.Sin(t), math.Cos(t)
		r := Vec{v[0], v[1]*cos - v[2]*sin, v[1]*sin + v[2]*cos}
		a.SetCoords(id, r.Add(center).round5())
	}
	if rotation[1] != 0 {
		v := a.points[id-1].Coords.Sub(center)
		t := toRad(rotation[1])
		sin, cos := math.Sin(t), math.Cos(t)
		r := Vec{v[0]*cos + v[2]*sin, v[1], -v[0]*sin + v[2]*cos}
		a.SetCoords(id, r.Add(center).round5())
	}
	if rotation[2] != 0 {
		v := a.points[id-1].Coords.Sub(center)
		t := toRad(rotation[2])
		sin, cos := math.Sin(t), math.Cos(t)
		r := Vec{v[0]*cos - v[1]*sin, v[0]*sin + v[1]*cos, v[2]}
		a.SetCoords(id, r.Add(center).round5())
	}
}

// TranslatePoint shifts a point by an offset.
func (a *Arena) TranslatePoint(id int, offset Vec) {
	a.SetCoords(id, a.points[id-1].Coords.Add(offset))
}

// RotatePoints rotates a set of points once each.
func (a *Arena) RotatePoints(ids []int, rotation Vec, center Vec, radians bool) {
	for _, id := range dedupIDs(ids) {
		a.RotatePoint(id, rotation, center, radians)
	}
}

// TranslatePoints shifts a set of points once each.
func (a *Arena) TranslatePoints(ids []int, offset Vec) {
	for _, id := range dedupIDs(ids) {
		a.TranslatePoint(id, offset)
	}
}

// RotateSurface rotates every point reachable from a surface exactly once,
// even when shared between the outer contour and hole loops.
func (a *Arena) RotateSurface(surf int, rotation Vec, center Vec, radians bool) {
	a.RotatePoints(a.SurfacePoints(surf), rotation, center, radians)
}

// TranslateSurface shifts every reachable point of a surface exactly once.
func (a *Arena) TranslateSurface(surf int, offset Vec) {
	a.TranslatePoints(a.SurfacePoints(surf), offset)
}

func dedupIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// SurfaceUsedCoords returns the distinct x, y and z values used by a
// surface's points.
func (a *Arena) SurfaceUsedCoords(surf int) (xs, ys, zs map[float64]bool) {
	xs, ys, zs = map[float64]bool{}, map[float64]bool{}, map[float64]bool{}
	for _, id := range a.SurfacePoints(surf) {
		c := a.points[id-1].Coords
		xs[c[0]] = true
		ys[c[1]] = true
		zs[c[2]] = true
	}
	return xs, ys, zs
}
