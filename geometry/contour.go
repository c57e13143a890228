package geometry

import (
	"fmt"
	"math"
)

// commonAxisTol is the absolute tolerance under which all points of a patch
// are considered to share one axis value.
const commonAxisTol = 0.5

// FindContour orders the boundary points of one planar patch by walking
// extreme points along the two in-plane axes. The axis common to all points
// is excluded; when no axis is common the point set is temporarily rotated
// onto a plane, walked, and restored.
//
// This is a best-effort heuristic bounded to a single convex planar contour
// per call. Non-convex or multi-contour patches produce an undefined order.
func (a *Arena) FindContour(ids []int) ([]int, error) {
	if len(ids) < 3 {
		return nil, fmt.Errorf("contour needs at least 3 points, got %d", len(ids))
	}

	var min, max Vec
	for axis := 0; axis < 3; axis++ {
		min[axis] = a.axisMin(ids, axis)
		max[axis] = a.axisMax(ids, axis)
	}

	common := [3]bool{}
	anyCommon := false
	for axis := 0; axis < 3; axis++ {
		common[axis] = true
		for _, id := range ids {
			if math.Abs(a.Point(id).Coords[axis]-max[axis]) > commonAxisTol {
				common[axis] = false
				break
			}
		}
		anyCommon = anyCommon || common[axis]
	}

	if !anyCommon {
		saved := make(map[int]Vec, len(ids))
		for _, id := range ids {
			saved[id] = a.Point(id).Coords
		}
		a.rotateToPlane(ids)
		contour, err := a.FindContour(ids)
		for _, id := range ids {
			a.SetCoords(id, saved[id])
		}
		return contour, err
	}

	// Seed candidates: minimum y, then minimum z, then minimum x, skipping
	// any axis common to the whole patch.
	candidates := append([]int(nil), ids...)
	for _, axis := range []int{1, 2, 0} {
		if common[axis] {
			continue
		}
		lo := a.axisMin(candidates, axis)
		kept := candidates[:0]
		for _, id := range candidates {
			if a.Point(id).Coords[axis] == lo {
				kept = append(kept, id)
			}
		}
		candidates = kept
	}

	// The two in-plane walk axes.
	var a0, a1 int
	switch {
	case common[0]:
		a0, a1 = 1, 2
	case common[1]:
		a0, a1 = 0, 2
	default:
		a0, a1 = 0, 1
	}

	contour := append([]int(nil), candidates...)
	last := func() Vec { return a.Point(contour[len(contour)-1]).Coords }

	// Quadrant walk: each pass compares against the contour's last element as
	// it stood when the pass began.
	ref := last()
	for _, id := range ids {
		c := a.Point(id).Coords
		if max[a0] >= c[a0] && c[a0] > ref[a0] && c[a1] <= ref[a1] {
			contour = append(contour, id)
		}
	}
	ref = last()
	for _, id := range ids {
		c := a.Point(id).Coords
		if max[a1] >= c[a1] && c[a1] > ref[a1] && c[a0] >= ref[a0] {
			contour = append(contour, id)
		}
	}
	ref = last()
	for _, id := range ids {
		c := a.Point(id).Coords
		if min[a0] <= c[a0] && c[a0] < ref[a0] && c[a1] >= ref[a1] {
			contour = append(contour, id)
		}
	}
	ref = last()
	inContour := make(map[int]bool, len(contour))
	for _, id := range contour {
		inContour[id] = true
	}
	for _, id := range ids {
		c := a.Point(id).Coords
		if min[a1] <= c[a1] && c[a1] < ref[a1] && c[a0] <= ref[a0] && !inContour[id] {
			contour = append(contour, id)
		}
	}
	return contour, nil
}

func (a *Arena) axisMin(ids []int, axis int) float64 {
	lo := a.Point(ids[0]).Coords[axis]
	for _, id := range ids[1:] {
		if v := a.Point(id).Coords[axis]; v < lo {
			lo = v
		}
	}
	return lo
}

func (a *Arena) axisMax(ids []int, axis int) float64 {
	hi := a.Point(ids[0]).Coords[axis]
	for _, id := range ids[1:] {
		if v := a.Point(id).Coords[axis]; v > hi {
			hi = v
		}
	}
	return hi
}

// rotateToPlane turns a tilted planar point set so that one coordinate
// becomes constant, then truncates the axis with the smallest remaining
// spread. The z axis is never truncated.
func (a *Arena) rotateToPlane(ids []int) {
	center := centroid(a, ids)

	maxZ := a.axisMax(ids, 2)
	top := ids[0]
	for _, id := range ids {
		if a.Point(id).Coords[2] == maxZ {
			top = id
			break
		}
	}

	// Align the center-to-top vector with the y axis, then x, then y again,
	// one axis rotation at a time.
	v := a.Point(top).Coords.Sub(center)
	a.RotatePoints(ids, Vec{0, 0, math.Pi/2 - math.Atan(v[1]/v[0])}, center, true)

	v = a.Point(top).Coords.Sub(center)
	a.RotatePoints(ids, Vec{0, -math.Atan(v[0] / v[2]), 0}, center, true)

	v = a.Point(top).Coords.Sub(center)
	a.RotatePoints(ids, Vec{-math.Atan(v[1] / v[2]), 0, 0}, center, true)

	// The rotations leave small residues; flatten the axis with the smallest
	// spread outright.
	spread := [3]float64{}
	for axis := 0; axis < 3; axis++ {
		spread[axis] = a.axisMax(ids, axis) - a.axisMin(ids, axis)
	}
	trunc := 0
	if spread[1] < spread[0] {
		trunc = 1
	}
	for _, id := range ids {
		c := a.Point(id).Coords
		c[trunc] = 0
		a.SetCoords(id, c)
	}
}
