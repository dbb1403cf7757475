package geom

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is an absolute canvas coordinate or a local offset.
type Point struct {
	X float64
	Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return fromVec(r2.Add(p.vec(), q.vec())) }

// Sub returns the offset from q to p.
func (p Point) Sub(q Point) Point { return fromVec(r2.Sub(p.vec(), q.vec())) }

// String formats the point as "(x, y)".
func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes a point from [x, y].
func (p *Point) UnmarshalJSON(data []byte) error {
	var xy [2]float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return fmt.Errorf("point: %w", err)
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

func (p Point) vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

func fromVec(v r2.Vec) Point { return Point{X: v.X, Y: v.Y} }

// Distance returns the euclidean distance between p and q.
func Distance(p, q Point) float64 {
	return r2.Norm(r2.Sub(p.vec(), q.vec()))
}

// Anchor resolves a port's absolute coordinate from its owner's position
// and the port's local offset.
func Anchor(position, offset Point) Point { return position.Add(offset) }

// Region is an axis-aligned rectangle given by two opposite corners in any
// order.
type Region struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Bounds returns the normalized min and max corners of r.
func (r Region) Bounds() (min, max Point) {
	min = Point{X: minf(r.From.X, r.To.X), Y: minf(r.From.Y, r.To.Y)}
	max = Point{X: maxf(r.From.X, r.To.X), Y: maxf(r.From.Y, r.To.Y)}
	return min, max
}

// Width returns the horizontal extent of r.
func (r Region) Width() float64 {
	min, max := r.Bounds()
	return max.X - min.X
}

// Height returns the vertical extent of r.
func (r Region) Height() float64 {
	min, max := r.Bounds()
	return max.Y - min.Y
}

// Contains reports whether o lies fully inside r. Shared edges count as
// inside.
func (r Region) Contains(o Region) bool {
	rmin, rmax := r.Bounds()
	omin, omax := o.Bounds()
	return omin.X >= rmin.X && omin.Y >= rmin.Y && omax.X <= rmax.X && omax.Y <= rmax.Y
}

// ContainsPoint reports whether p lies inside r, edges included.
func (r Region) ContainsPoint(p Point) bool {
	min, max := r.Bounds()
	return p.X >= min.X && p.X <= max.X && p.Y >= min.Y && p.Y <= max.Y
}

// Intersects reports whether r and o overlap. Touching edges count as an
// intersection.
func (r Region) Intersects(o Region) bool {
	rmin, rmax := r.Bounds()
	omin, omax := o.Bounds()
	return rmin.X <= omax.X && omin.X <= rmax.X && rmin.Y <= omax.Y && omin.Y <= rmax.Y
}

// Extents returns the bounding region of a box placed at position with the
// given width and height.
func Extents(position Point, width, height float64) Region {
	return Region{From: position, To: Point{X: position.X + width, Y: position.Y + height}}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
