package models

import "math"

// Point represents a 2D coordinate in canonical pixel units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size represents the extent of a rectangular region in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle defined by its top-left origin and size.
// All pipeline stages operate on rectangles in the canonical frame
// (top-left origin, pixel units); only raw OCR boxes use a different
// convention and must pass through the normalizer first.
type Rect struct {
	Origin Point `json:"origin"`
	Size   Size  `json:"size"`
}

// NewRect creates a rectangle from its components.
func NewRect(x, y, w, h float64) Rect {
	return Rect{Origin: Point{X: x, Y: y}, Size: Size{Width: w, Height: h}}
}

// MaxX returns the right edge of the rectangle.
func (r Rect) MaxX() float64 { return r.Origin.X + r.Size.Width }

// MaxY returns the bottom edge of the rectangle.
func (r Rect) MaxY() float64 { return r.Origin.Y + r.Size.Height }

// Center returns the midpoint of the rectangle (top-left plus half size).
func (r Rect) Center() Point {
	return Point{
		X: r.Origin.X + r.Size.Width/2,
		Y: r.Origin.Y + r.Size.Height/2,
	}
}

// Area returns the rectangle's area in square pixels.
func (r Rect) Area() float64 { return r.Size.Width * r.Size.Height }

// Contains reports whether the point lies inside the rectangle (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Origin.X && p.X <= r.MaxX() &&
		p.Y >= r.Origin.Y && p.Y <= r.MaxY()
}

// Intersection returns the overlapping area between two rectangles in
// square pixels, or zero when they are disjoint.
func (r Rect) Intersection(other Rect) float64 {
	w := math.Min(r.MaxX(), other.MaxX()) - math.Max(r.Origin.X, other.Origin.X)
	if w <= 0 {
		return 0
	}
	h := math.Min(r.MaxY(), other.MaxY()) - math.Max(r.Origin.Y, other.Origin.Y)
	if h <= 0 {
		return 0
	}
	return w * h
}

// OverlapRatio returns the fraction of this rectangle's area covered by the
// other rectangle. A degenerate rectangle yields zero.
func (r Rect) OverlapRatio(other Rect) float64 {
	area := r.Area()
	if area <= 0 {
		return 0
	}
	return r.Intersection(other) / area
}

// IsDegenerate reports whether the rectangle has non-positive extent.
func (r Rect) IsDegenerate() bool {
	return r.Size.Width <= 0 || r.Size.Height <= 0
}

// IsFinite reports whether all point coordinates are real numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// IsFinite reports whether width and height are real numbers.
func (s Size) IsFinite() bool {
	return !math.IsNaN(s.Width) && !math.IsInf(s.Width, 0) &&
		!math.IsNaN(s.Height) && !math.IsInf(s.Height, 0)
}

// IsFinite reports whether all rectangle components are real numbers.
func (r Rect) IsFinite() bool {
	return r.Origin.IsFinite() && r.Size.IsFinite()
}

// SquaredDistance returns the squared euclidean distance to another point.
// Callers comparing against a radius should compare with radius*radius and
// avoid the square root.
func (p Point) SquaredDistance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return dx*dx + dy*dy
}
