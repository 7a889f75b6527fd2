package maplayers

import (
	"math"
	"sort"
)

// minClipW is the smallest clip-space W treated as in front of the camera
// when projecting placement corners.
const minClipW = 1e-6

// minCosLat keeps the longitude correction of the spherical displacement
// finite near the poles.
const minCosLat = 1e-6

// PlacementRequest describes one sprite image to place. Pure input with no
// identity; re-evaluated every frame the sprite is visible.
//
// Anchor axes are in [-1, 1] (not strictly clamped): +X selects the right
// edge of the image, +Y the top edge, (0, 0) the center. Rotation is in
// degrees, positive clockwise, 0 pointing up/north. OffsetHeading is in
// degrees clockwise from north.
type PlacementRequest struct {
	Mode SpriteMode
	// Width and Height are the source image size in pixels.
	Width, Height float64
	// Scale is the user scale multiplier.
	Scale float64
	Anchor Vec2
	// OffsetMeters and OffsetHeading describe a radial displacement of the
	// placement from its anchor point.
	OffsetMeters  float64
	OffsetHeading float64
	// Rotation is the total rotation: user rotation plus any
	// auto-rotation-toward-heading contribution.
	Rotation float64
	// MinPixel and MaxPixel clamp the larger on-screen dimension when
	// positive.
	MinPixel, MaxPixel float64
	// MetersPerPixel is the baseline size of one source pixel in meters.
	MetersPerPixel float64
	// ZoomScale is the zoom-interpolated scale factor.
	ZoomScale float64
	// PixelsPerMeter is the perspective-derived meters-to-pixels
	// conversion: used for billboard sizing, and for the optional surface
	// pixel clamp when positive.
	PixelsPerMeter float64
}

// PlacedCorner is one billboard quad corner in screen pixels.
type PlacedCorner struct {
	Pos Vec2
	Tex TexCoord
}

// BillboardPlacement is the renderable geometry of a billboard-mode
// sprite, all in screen pixels.
type BillboardPlacement struct {
	// HalfWidth and HalfHeight are the resolved half extents after
	// clamping.
	HalfWidth, HalfHeight float64
	// ScaleAdjust is the multiplicative factor the min/max pixel clamp
	// applied to the nominal size. It also scales the offset distance so
	// offset and size clamp consistently.
	ScaleAdjust float64
	// Center is the anchor-corrected center point.
	Center Vec2
	// Corners are ordered top-left, top-right, bottom-right, bottom-left.
	Corners [4]PlacedCorner
}

// SurfaceCorner is one surface quad corner: its east/north meter
// displacement from the placement center, the displaced geographic
// location, and its screen projection when representable.
type SurfaceCorner struct {
	East, North float64
	Location    LngLat
	Screen      Vec2
	ScreenOK    bool
	Tex         TexCoord
}

// SurfacePlacement is the renderable geometry of a surface-mode sprite in
// world meters, with per-corner screen projections.
type SurfacePlacement struct {
	HalfWidthMeters, HalfHeightMeters float64
	ScaleAdjust                       float64
	// Center is the anchor-corrected, offset-shifted geographic center.
	Center LngLat
	// Corners are ordered top-left (north-west before rotation),
	// top-right, bottom-right, bottom-left.
	Corners [4]SurfaceCorner
	// ScreenOK reports whether all four corners projected. A failed corner
	// invalidates the placement for depth purposes; the renderer may still
	// draw using only the center.
	ScreenOK bool
}

// cornerTex is the fixed texture coordinate per corner slot.
var cornerTex = [4]TexCoord{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// nonNegative sanitizes a size factor: non-finite or negative collapses to
// zero rather than raising an error.
func nonNegative(v float64) float64 {
	if !isFinite(v) || v < 0 {
		return 0
	}
	return v
}

// clampLargerDimension clamps the larger of (w, h) into [minPx, maxPx]
// where those bounds are positive, returning the adjusted dimensions and
// the multiplicative adjustment. Applying one factor to both dimensions
// preserves the aspect ratio.
func clampLargerDimension(w, h, minPx, maxPx float64) (float64, float64, float64) {
	larger := math.Max(w, h)
	if larger <= 0 {
		return w, h, 1
	}
	adjust := 1.0
	if minPx > 0 && larger < minPx {
		adjust = minPx / larger
	} else if maxPx > 0 && larger > maxPx {
		adjust = maxPx / larger
	}
	return w * adjust, h * adjust, adjust
}

// rotateScreen rotates v by deg clockwise in screen space (Y down).
func rotateScreen(v Vec2, sin, cos float64) Vec2 {
	return Vec2{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

// rotateWorld rotates an (east, north) vector by deg clockwise from north.
func rotateWorld(east, north, sin, cos float64) (float64, float64) {
	return east*cos + north*sin, north*cos - east*sin
}

// displaceLngLat adds east/north meters to a base location using a
// spherical approximation. The longitude correction divides by the cosine
// of the latitude, clamped near the poles.
func displaceLngLat(base LngLat, east, north float64) LngLat {
	deltaLat := (north / EarthRadiusMeters) * rad2deg
	cosLat := math.Cos(base.Lat * deg2rad)
	if cosLat < minCosLat {
		cosLat = minCosLat
	}
	deltaLng := (east / (EarthRadiusMeters * cosLat)) * rad2deg
	return LngLat{
		Lng:       base.Lng + deltaLng,
		Lat:       base.Lat + deltaLat,
		Elevation: base.Elevation,
	}
}

// PlaceBillboard computes the screen-space quad for a billboard-mode
// request anchored at the given base screen point. Degenerate sizes (zero
// or non-finite) collapse all geometry to the center point; no error is
// ever raised.
func PlaceBillboard(req PlacementRequest, base Vec2) BillboardPlacement {
	scale := nonNegative(req.Scale)
	zoomScale := nonNegative(req.ZoomScale)
	mpp := nonNegative(req.MetersPerPixel)
	ppm := nonNegative(req.PixelsPerMeter)

	pxW := nonNegative(req.Width) * scale * zoomScale * mpp * ppm
	pxH := nonNegative(req.Height) * scale * zoomScale * mpp * ppm
	pxW, pxH, adjust := clampLargerDimension(pxW, pxH, req.MinPixel, req.MaxPixel)

	halfW := pxW / 2
	halfH := pxH / 2

	sin, cos := math.Sincos(finiteOr(req.Rotation, 0) * deg2rad)

	// The anchor-weighted half extent, rotated with the quad and negated,
	// recenters the requested anchor point exactly on the base point.
	anchorLocal := Vec2{X: req.Anchor.X * halfW, Y: -req.Anchor.Y * halfH}
	rotatedAnchor := rotateScreen(anchorLocal, sin, cos)

	offsetPx := finiteOr(req.OffsetMeters, 0) * scale * zoomScale * ppm * adjust
	offSin, offCos := math.Sincos(finiteOr(req.OffsetHeading, 0) * deg2rad)

	center := Vec2{
		X: base.X + offsetPx*offSin - rotatedAnchor.X,
		Y: base.Y - offsetPx*offCos - rotatedAnchor.Y,
	}

	locals := [4]Vec2{
		{-halfW, -halfH},
		{halfW, -halfH},
		{halfW, halfH},
		{-halfW, halfH},
	}
	var corners [4]PlacedCorner
	for i, local := range locals {
		rotated := rotateScreen(local, sin, cos)
		corners[i] = PlacedCorner{
			Pos: Vec2{X: center.X + rotated.X, Y: center.Y + rotated.Y},
			Tex: cornerTex[i],
		}
	}

	return BillboardPlacement{
		HalfWidth:   halfW,
		HalfHeight:  halfH,
		ScaleAdjust: adjust,
		Center:      center,
		Corners:     corners,
	}
}

// PlaceSurface computes the world-meter quad for a surface-mode request
// anchored at the given base location, projecting each corner to screen
// space through proj. Degenerate sizes collapse the quad to the center.
func PlaceSurface(req PlacementRequest, base LngLat, proj Projector) SurfacePlacement {
	scale := nonNegative(req.Scale)
	zoomScale := nonNegative(req.ZoomScale)
	mpp := nonNegative(req.MetersPerPixel)

	wMeters := nonNegative(req.Width) * scale * zoomScale * mpp
	hMeters := nonNegative(req.Height) * scale * zoomScale * mpp

	// Optional secondary clamp against on-screen pixel bounds, symmetric
	// to the billboard clamp.
	adjust := 1.0
	if ppm := nonNegative(req.PixelsPerMeter); ppm > 0 {
		_, _, adjust = clampLargerDimension(wMeters*ppm, hMeters*ppm, req.MinPixel, req.MaxPixel)
		wMeters *= adjust
		hMeters *= adjust
	}

	halfW := wMeters / 2
	halfH := hMeters / 2

	sin, cos := math.Sincos(finiteOr(req.Rotation, 0) * deg2rad)

	anchorEast, anchorNorth := rotateWorld(req.Anchor.X*halfW, req.Anchor.Y*halfH, sin, cos)

	offsetMeters := finiteOr(req.OffsetMeters, 0) * scale * zoomScale * adjust
	offSin, offCos := math.Sincos(finiteOr(req.OffsetHeading, 0) * deg2rad)

	center := displaceLngLat(base,
		offsetMeters*offSin-anchorEast,
		offsetMeters*offCos-anchorNorth)

	locals := [4][2]float64{
		{-halfW, halfH},
		{halfW, halfH},
		{halfW, -halfH},
		{-halfW, -halfH},
	}
	var corners [4]SurfaceCorner
	allOK := true
	for i, local := range locals {
		east, north := rotateWorld(local[0], local[1], sin, cos)
		loc := displaceLngLat(center, east, north)
		screen, ok := proj.Project(loc)
		if !ok {
			allOK = false
		}
		corners[i] = SurfaceCorner{
			East:     east,
			North:    north,
			Location: loc,
			Screen:   screen,
			ScreenOK: ok,
			Tex:      cornerTex[i],
		}
	}

	return SurfacePlacement{
		HalfWidthMeters:  halfW,
		HalfHeightMeters: halfH,
		ScaleAdjust:      adjust,
		Center:           center,
		Corners:          corners,
		ScreenOK:         allOK,
	}
}

// --- Depth keys ---

// SurfaceDepthBias separates coplanar surface quads on different
// sub-layers without materially changing visual depth. PerSubLayer is the
// clip-space Z fraction added per sub-layer index; MinClipZEpsilon keeps
// the biased Z in front of the near clip boundary. Both are tuning
// constants, not correctness requirements.
type SurfaceDepthBias struct {
	PerSubLayer     float64
	MinClipZEpsilon float64
}

// DefaultSurfaceDepthBias returns the bias used when none is supplied.
func DefaultSurfaceDepthBias() SurfaceDepthBias {
	return SurfaceDepthBias{PerSubLayer: 1e-5, MinClipZEpsilon: 1e-9}
}

// projectToClip maps a location through the Mercator clip matrix.
// ok=false outside the frustum (clip W at or below minClipW) or on any
// non-finite component.
func projectToClip(proj Projector, loc LngLat) (x, y, z, w float64, ok bool) {
	matrix, ready := proj.ClipContext()
	if !ready {
		return 0, 0, 0, 0, false
	}
	m := proj.FromLngLat(loc)
	x, y, z, w = matrix.transform(m.X, m.Y, m.Z, 1)
	if !isFinite(x) || !isFinite(y) || !isFinite(z) || !isFinite(w) || w <= minClipW {
		return 0, 0, 0, 0, false
	}
	return x, y, z, w, true
}

// BillboardDepthKey derives the sort key for a billboard placement: the
// screen center is unprojected back to the ground, then fed through the
// clip matrix to obtain normalized device Z. The key is the negated NDC Z,
// so larger keys sort nearer to the camera. ok=false when the center is
// not unprojectable this frame.
func BillboardDepthKey(proj Projector, center Vec2) (float64, bool) {
	loc, ok := proj.Unproject(center)
	if !ok {
		return 0, false
	}
	matrix, ready := proj.ClipContext()
	if !ready {
		return 0, false
	}
	m := proj.FromLngLat(LngLat{Lng: loc.Lng, Lat: loc.Lat})
	_, _, z, w := matrix.transform(m.X, m.Y, m.Z, 1)
	if !isFinite(z) || !isFinite(w) {
		return 0, false
	}
	ndcZ := z
	if w != 0 {
		ndcZ = z / w
	}
	if !isFinite(ndcZ) {
		return 0, false
	}
	return -ndcZ, true
}

// SurfaceDepthKey derives the sort key for a surface placement from the
// four corner locations, taking the extremal corner value so a tilted quad
// sorts as one unit. subLayer selects the bias multiple; pass bias=nil for
// the default. ok=false when any corner is outside the frustum, which
// invalidates the whole placement for depth purposes.
func SurfaceDepthKey(proj Projector, placement SurfacePlacement, subLayer int, bias *SurfaceDepthBias) (float64, bool) {
	b := DefaultSurfaceDepthBias()
	if bias != nil {
		b = *bias
	}
	biasNdc := b.PerSubLayer * float64(subLayer)

	maxDepth := math.Inf(-1)
	for _, corner := range placement.Corners {
		_, _, z, w, ok := projectToClip(proj, corner.Location)
		if !ok {
			return 0, false
		}
		if biasNdc != 0 {
			biased := z + biasNdc*w
			minZ := -w + b.MinClipZEpsilon
			if biased < minZ {
				biased = minZ
			}
			z = biased
		}
		ndcZ := z
		if w != 0 {
			ndcZ = z / w
		}
		if !isFinite(ndcZ) {
			return 0, false
		}
		if depth := -ndcZ; depth > maxDepth {
			maxDepth = depth
		}
	}
	if !isFinite(maxDepth) {
		return 0, false
	}
	return maxDepth, true
}

// --- Depth ordering ---

// DepthItem pairs a depth key with a secondary ordering key (insertion or
// identifier order) used to break ties deterministically.
type DepthItem struct {
	Key   float64
	Order int
}

// SortBackToFront orders items for painter-style rendering: smaller keys
// (farther from the camera) first. The sort is stable and exact ties fall
// back to the secondary key.
func SortBackToFront(items []DepthItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Key != items[j].Key {
			return items[i].Key < items[j].Key
		}
		return items[i].Order < items[j].Order
	})
}
