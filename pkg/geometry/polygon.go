package geometry

import "sort"

// Polygon4 is a four-vertex polygon in canonical clockwise-from-top-left
// order: [0]=top-left, [1]=top-right, [2]=bottom-right, [3]=bottom-left.
type Polygon4 [4]Point2D

// VerticalMid returns the midpoint between the top-left and bottom-right
// corners' Y coordinates, used to assign an OCR token to a text row.
func (p Polygon4) VerticalMid() float64 {
	return (p[0].Y + p[2].Y) / 2
}

// HorizontalMid returns the midpoint between the top-left and
// bottom-right corners' X coordinates.
func (p Polygon4) HorizontalMid() float64 {
	return (p[0].X + p[2].X) / 2
}

// Center returns the centroid of the four vertices.
func (p Polygon4) Center() Point2D {
	return Centroid(p[:])
}

// NormalizePolygon accepts the two flat scalar encodings an OCR backend
// may emit and returns the canonical clockwise-from-top-left Polygon4:
//
//   - four scalars [x1,y1,x2,y2] (opposite corners of an axis-aligned box)
//   - eight scalars [x1,y1,x2,y2,x3,y3,x4,y4]
//
// Any other length yields ok=false. Polygons already expressed as points
// go through NormalizePolygonPoints.
//
// Ordering is resolved by sorting into top/bottom halves by Y and then
// left/right within each half by X, which is robust for the
// near-axis-aligned quads a document OCR engine emits.
func NormalizePolygon(raw []float64) (Polygon4, bool) {
	switch len(raw) {
	case 4:
		x1, y1, x2, y2 := raw[0], raw[1], raw[2], raw[3]
		return orderClockwise([]Point2D{
			{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2},
		}), true
	case 8:
		pts := make([]Point2D, 4)
		for i := 0; i < 4; i++ {
			pts[i] = Point2D{X: raw[2*i], Y: raw[2*i+1]}
		}
		return orderClockwise(pts), true
	default:
		return Polygon4{}, false
	}
}

// NormalizePolygonPoints normalizes a polygon already expressed as a list
// of four (x,y) pairs, in any vertex order, into the canonical form. Any
// other number of points yields ok=false.
func NormalizePolygonPoints(points [][2]float64) (Polygon4, bool) {
	if len(points) != 4 {
		return Polygon4{}, false
	}
	pts := make([]Point2D, 4)
	for i, p := range points {
		pts[i] = Point2D{X: p[0], Y: p[1]}
	}
	return orderClockwise(pts), true
}

// orderClockwise reorders four points into top-left, top-right,
// bottom-right, bottom-left order.
func orderClockwise(pts []Point2D) Polygon4 {
	sorted := make([]Point2D, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Y < sorted[j].Y })

	top := sorted[:2]
	bottom := sorted[2:]
	if top[0].X > top[1].X {
		top[0], top[1] = top[1], top[0]
	}
	if bottom[0].X > bottom[1].X {
		bottom[0], bottom[1] = bottom[1], bottom[0]
	}

	return Polygon4{top[0], top[1], bottom[1], bottom[0]}
}
