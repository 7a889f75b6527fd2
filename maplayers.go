package maplayers

// Vec2 is a 2D vector used for screen points, anchors, offsets, and sizes
// throughout the API. Screen space has its origin at the top-left with Y
// increasing downward.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// LngLat is a geographic location: longitude and latitude in degrees, with
// an optional elevation in meters (zero when unused). Value type; no
// identity.
type LngLat struct {
	Lng, Lat  float64
	Elevation float64
}

// Mercator is a location in the normalized world-Mercator space: X and Y in
// [0, 1] across the projected world, Z as elevation expressed as a fraction
// of the Earth's circumference at the point's latitude.
type Mercator struct {
	X, Y, Z float64
}

// TexCoord is a normalized texture coordinate carried on each placed
// corner.
type TexCoord struct {
	U, V float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin
// at the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// ContainsRect reports whether other lies entirely inside r, edges
// included.
func (r Rect) ContainsRect(other Rect) bool {
	return other.X >= r.X && other.Y >= r.Y &&
		other.X+other.Width <= r.X+r.Width &&
		other.Y+other.Height <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge or a corner point) are
// considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// SpriteMode selects how a sprite image is placed.
type SpriteMode uint8

const (
	// ModeBillboard places the image so it always faces the viewport;
	// geometry is computed in screen pixels.
	ModeBillboard SpriteMode = iota
	// ModeSurface places the image flush with the ground plane; geometry is
	// computed in world meters and then projected.
	ModeSurface
)

// String returns the mode name for diagnostics.
func (m SpriteMode) String() string {
	switch m {
	case ModeBillboard:
		return "billboard"
	case ModeSurface:
		return "surface"
	default:
		return "unknown"
	}
}

// TransitionMode selects the targeting strategy of a transition.
type TransitionMode uint8

const (
	// ModeFeedback targets the exact newly commanded value.
	ModeFeedback TransitionMode = iota
	// ModeFeedforward extrapolates one step past the newly commanded value
	// (next + (next - previous)) to compensate for command latency. Without
	// a previous commanded value the target is the commanded value itself.
	ModeFeedforward
)

// Visit is the outcome of one step of a visitor iteration.
type Visit uint8

const (
	// VisitContinue proceeds to the next entry.
	VisitContinue Visit = iota
	// VisitStop ends the iteration early.
	VisitStop
)
