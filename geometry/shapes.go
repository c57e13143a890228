package geometry

import "fmt"

// Shape kinds.
const (
	BoxShape     = "box"
	PatchShape   = "surface"
	TriMeshShape = "stl"
)

// boxFaceOrder is the fixed naming/iteration order of a box's six faces.
// front/back are the y-min/y-max faces, left/right the x-min/x-max faces,
// bottom/top the z-min/z-max faces.
var boxFaceOrder = []string{"bottom", "top", "front", "back", "left", "right"}

// Shape is a named aggregate of surfaces built inside one arena: a box with
// six named faces, a single flat patch, or a set of faces recovered from a
// triangulated mesh.
type Shape struct {
	Name       string
	Type       string
	Dimensions Vec
	Location   Vec
	Rotation   Vec
	Center     Vec

	arena     *Arena
	faces     map[string]int
	faceOrder []string
}

// Arena returns the arena the shape's primitives live in.
func (s *Shape) Arena() *Arena { return s.arena }

// Face returns the surface tag of a named face.
func (s *Shape) Face(name string) (int, bool) {
	id, ok := s.faces[name]
	return id, ok
}

// FaceNames returns the face names in their fixed build order.
func (s *Shape) FaceNames() []string { return s.faceOrder }

// Surfaces returns the shape's surface tags in face order.
func (s *Shape) Surfaces() []int {
	out := make([]int, 0, len(s.faceOrder))
	for _, name := range s.faceOrder {
		out = append(out, s.faces[name])
	}
	return out
}

// BuildBox constructs the eight corner points, twelve edges and six planar
// faces of an axis-aligned cuboid, then applies the rotation about its
// center. Every dimension must be non-zero.
func BuildBox(a *Arena, name string, dims, location, rotation Vec) (*Shape, error) {
	if dims[0] == 0 || dims[1] == 0 || dims[2] == 0 {
		return nil, fmt.Errorf("box %q must be 3D, got dimensions %v", name, dims)
	}
	x0, y0, z0 := location[0], location[1], location[2]
	x1, y1, z1 := x0+dims[0], y0+dims[1], z0+dims[2]

	p1 := a.MakePoint(Vec{x0, y0, z0})
	p2 := a.MakePoint(Vec{x1, y0, z0})
	p3 := a.MakePoint(Vec{x1, y1, z0})
	p4 := a.MakePoint(Vec{x0, y1, z0})
	p5 := a.MakePoint(Vec{x0, y0, z1})
	p6 := a.MakePoint(Vec{x1, y0, z1})
	p7 := a.MakePoint(Vec{x1, y1, z1})
	p8 := a.MakePoint(Vec{x0, y1, z1})

	l1 := a.MakeLine(p1, p2)
	l2 := a.MakeLine(p2, p3)
	l3 := a.MakeLine(p4, p3)
	l4 := a.MakeLine(p1, p4)

	l5 := a.MakeLine(p5, p6)
	l6 := a.MakeLine(p6, p7)
	l7 := a.MakeLine(p8, p7)
	l8 := a.MakeLine(p5, p8)

	l9 := a.MakeLine(p1, p5)
	l10 := a.MakeLine(p2, p6)
	l11 := a.MakeLine(p3, p7)
	l12 := a.MakeLine(p4, p8)

	loops := map[string]int{
		"bottom": a.MakeLoop([]LineRef{l1, l2, l3.Flip(), l4.Flip()}),
		"top":    a.MakeLoop([]LineRef{l8, l7, l6.Flip(), l5.Flip()}),
		"front":  a.MakeLoop([]LineRef{l9, l5, l10.Flip(), l1.Flip()}),
		"back":   a.MakeLoop([]LineRef{l3, l11, l7.Flip(), l12.Flip()}),
		"left":   a.MakeLoop([]LineRef{l4, l12, l8.Flip(), l9.Flip()}),
		"right":  a.MakeLoop([]LineRef{l10, l6, l11.Flip(), l2.Flip()}),
	}

	s := &Shape{
		Name:       name,
		Type:       BoxShape,
		Dimensions: dims,
		Location:   location,
		Rotation:   rotation,
		Center:     location.Add(dims.Scale(0.5)),
		arena:      a,
		faces:      make(map[string]int, len(loops)),
		faceOrder:  boxFaceOrder,
	}
	for _, fname := range boxFaceOrder {
		s.faces[fname] = a.MakeSurface(loops[fname])
	}
	s.Rotate(rotation, false)
	return s, nil
}

// BuildPatch constructs a single planar quad from dimensions with exactly one
// zero component, oriented by facingZero, then rotated about the quad's
// center.
func BuildPatch(a *Arena, name string, dims, location, rotation Vec, facingZero bool) (*Shape, error) {
	nonZero := 0
	for _, d := range dims {
		if d != 0 {
			nonZero++
		}
	}
	if nonZero != 2 {
		return nil, fmt.Errorf("patch %q must be 2D, got dimensions %v", name, dims)
	}

	l := location
	d := dims
	p1 := a.MakePoint(l)
	var p2, p3, p4 int
	var center Vec
	switch {
	case d[0] == 0:
		p2 = a.MakePoint(Vec{l[0], l[1], l[2] + d[2]})
		p3 = a.MakePoint(Vec{l[0], l[1] + d[1], l[2] + d[2]})
		p4 = a.MakePoint(Vec{l[0], l[1] + d[1], l[2]})
		center = Vec{l[0], l[1] + d[1]/2, l[2] + d[2]/2}
	case d[1] == 0:
		p2 = a.MakePoint(Vec{l[0] + d[0], l[1], l[2]})
		p3 = a.MakePoint(Vec{l[0] + d[0], l[1], l[2] + d[2]})
		p4 = a.MakePoint(Vec{l[0], l[1], l[2] + d[2]})
		center = Vec{l[0] + d[0]/2, l[1], l[2] + d[2]/2}
	default:
		p2 = a.MakePoint(Vec{l[0], l[1] + d[1], l[2]})
		p3 = a.MakePoint(Vec{l[0] + d[0], l[1] + d[1], l[2]})
		p4 = a.MakePoint(Vec{l[0] + d[0], l[1], l[2]})
		center = Vec{l[0] + d[0]/2, l[1] + d[1]/2, l[2]}
	}

	l1 := a.MakeLine(p1, p2)
	l2 := a.MakeLine(p2, p3)
	l3 := a.MakeLine(p3, p4)
	l4 := a.MakeLine(p4, p1)
	var loop int
	if facingZero {
		loop = a.MakeLoop([]LineRef{l1, l2, l3, l4})
	} else {
		loop = a.MakeLoop([]LineRef{l4.Flip(), l3.Flip(), l2.Flip(), l1.Flip()})
	}
	surf := a.MakeSurface(loop)
	a.RotateSurface(surf, rotation, center, false)

	return &Shape{
		Name:       name,
		Type:       PatchShape,
		Dimensions: dims,
		Location:   location,
		Rotation:   rotation,
		Center:     center,
		arena:      a,
		faces:      map[string]int{"patch": surf},
		faceOrder:  []string{"patch"},
	}, nil
}

// newTriMesh wraps recovered mesh faces as a shape. Faces are numbered in
// recovery order.
func newTriMesh(a *Arena, name string, surfs []int) *Shape {
	s := &Shape{
		Name:      name,
		Type:      TriMeshShape,
		arena:     a,
		faces:     make(map[string]int, len(surfs)),
		faceOrder: make([]string, 0, len(surfs)),
	}
	for i, surf := range surfs {
		fname := fmt.Sprintf("face%d", i+1)
		s.faces[fname] = surf
		s.faceOrder = append(s.faceOrder, fname)
	}
	var pts []int
	for _, surf := range surfs {
		pts = append(pts, a.SurfacePoints(surf)...)
	}
	s.Center = centroid(a, dedupIDs(pts))
	return s
}

// points gathers the unique point tags reachable from all faces.
func (s *Shape) points() []int {
	var pts []int
	for _, name := range s.faceOrder {
		pts = append(pts, s.arena.SurfacePoints(s.faces[name])...)
	}
	return dedupIDs(pts)
}

// Rotate rotates the whole shape about its center; points shared between
// faces move exactly once.
func (s *Shape) Rotate(rotation Vec, radians bool) {
	s.arena.RotatePoints(s.points(), rotation, s.Center, radians)
}

// Translate shifts the whole shape; points shared between faces move exactly
// once.
func (s *Shape) Translate(offset Vec) {
	s.arena.TranslatePoints(s.points(), offset)
	s.Center = s.Center.Add(offset)
	s.Location = s.Location.Add(offset)
}

// UsedCoords returns the distinct coordinate values used by the shape's
// geometry on each axis.
func (s *Shape) UsedCoords() (xs, ys, zs map[float64]bool) {
	xs, ys, zs = map[float64]bool{}, map[float64]bool{}, map[float64]bool{}
	for _, name := range s.faceOrder {
		fx, fy, fz := s.arena.SurfaceUsedCoords(s.faces[name])
		for v := range fx {
			xs[v] = true
		}
		for v := range fy {
			ys[v] = true
		}
		for v := range fz {
			zs[v] = true
		}
	}
	return xs, ys, zs
}

// Bounds returns the axis-aligned bounding box of the shape's points.
func (s *Shape) Bounds() (min, max Vec) {
	pts := s.points()
	if len(pts) == 0 {
		return min, max
	}
	min = s.arena.Point(pts[0]).Coords
	max = min
	for _, id := range pts[1:] {
		c := s.arena.Point(id).Coords
		for i := 0; i < 3; i++ {
			if c[i] < min[i] {
				min[i] = c[i]
			}
			if c[i] > max[i] {
				max[i] = c[i]
			}
		}
	}
	return min, max
}

// CutFace cuts a hole into one named face.
func (s *Shape) CutFace(name string, other int) error {
	surf, ok := s.faces[name]
	if !ok {
		return fmt.Errorf("shape %q has no face %q", s.Name, name)
	}
	return s.arena.Cut(surf, other)
}

// CutFaceMatching finds the face sharing a full coordinate-value set with the
// other surface on some axis and cuts the other surface's contour into it.
// When several faces match, the last one in face order wins. The cut is
// purely topological; the caller guarantees the surfaces actually overlap.
func (s *Shape) CutFaceMatching(other int) (string, error) {
	ox, oy, oz := s.arena.SurfaceUsedCoords(other)
	matched := ""
	for _, name := range s.faceOrder {
		fx, fy, fz := s.arena.SurfaceUsedCoords(s.faces[name])
		if coordSetsEqual(fx, ox) || coordSetsEqual(fy, oy) || coordSetsEqual(fz, oz) {
			matched = name
		}
	}
	if matched == "" {
		return "", fmt.Errorf("no face of %q shares a coordinate plane with the surface to cut", s.Name)
	}
	return matched, s.arena.Cut(s.faces[matched], other)
}

func coordSetsEqual(a, b map[float64]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for v := range a {
		if !b[v] {
			return false
		}
	}
	return true
}

func centroid(a *Arena, ids []int) Vec {
	if len(ids) == 0 {
		return Vec{}
	}
	var sum Vec
	for _, id := range ids {
		sum = sum.Add(a.Point(id).Coords)
	}
	c := sum.Scale(1 / float64(len(ids)))
	return c.round5()
}
