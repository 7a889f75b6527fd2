package maplayers

// Projector is the projection contract the placement pipeline consumes.
// Implementations are pure given the camera parameters fixed at
// construction and must be substitutable for one another without call-site
// changes; see BatchProjector for the batch-capable variant.
//
// Project and Unproject return ok=false when the input falls outside the
// representable frustum (behind the camera, degenerate matrix). Callers
// treat this as "not currently visible", never as an error.
type Projector interface {
	// Zoom returns the zoom level the projector was built with.
	Zoom() float64
	// ClipContext returns the Mercator-to-clip matrix, or ok=false when
	// the camera is not yet ready.
	ClipContext() (Mat4, bool)
	// FromLngLat converts a geographic location to normalized Mercator
	// space.
	FromLngLat(loc LngLat) Mercator
	// Project converts a geographic location to screen pixels.
	Project(loc LngLat) (Vec2, bool)
	// Unproject converts a screen point back to a geographic location on
	// the ground plane.
	Unproject(point Vec2) (LngLat, bool)
	// PerspectiveRatio returns the meters-to-pixels perspective correction
	// for a location: the camera-to-center distance divided by the
	// location's clip-space W. cached may carry a previously computed
	// FromLngLat result to skip the conversion; pass nil otherwise.
	PerspectiveRatio(loc LngLat, cached *Mercator) (float64, bool)
}

// Projection is the reference Projector. Construct one per frame from the
// current camera snapshot; all methods are pure and safe to call in any
// order.
type Projection struct {
	params CameraParams
	mats   cameraMatrices
	ready  bool
}

// NewProjection derives the frame matrices from a camera snapshot. The
// returned projection is usable even when the camera is degenerate; in
// that state ClipContext, Project, Unproject, and PerspectiveRatio all
// report absence.
func NewProjection(params CameraParams) *Projection {
	mats, ok := params.calcMatrices()
	return &Projection{params: params, mats: mats, ready: ok}
}

// Zoom returns the zoom level of the camera snapshot.
func (p *Projection) Zoom() float64 { return p.params.Zoom }

// WorldSize returns the projected world extent in pixels.
func (p *Projection) WorldSize() float64 { return p.mats.worldSize }

// PixelsPerMeter returns the pixels-per-meter scale at the camera center
// latitude, before perspective correction.
func (p *Projection) PixelsPerMeter() float64 { return p.mats.pixelsPerMeter }

// CameraToCenterDistance returns the camera distance to the center point
// in pixels.
func (p *Projection) CameraToCenterDistance() float64 { return p.mats.cameraToCenterDistance }

// ClipContext returns the Mercator-to-clip matrix, or ok=false when the
// camera is not ready.
func (p *Projection) ClipContext() (Mat4, bool) {
	if !p.ready {
		return Mat4{}, false
	}
	return p.mats.mercatorMatrix, true
}

// FromLngLat converts a geographic location to normalized Mercator space.
func (p *Projection) FromLngLat(loc LngLat) Mercator {
	return FromLngLat(loc)
}

// Project converts a geographic location to screen pixels. ok=false when
// the point is outside the frustum or the camera is not ready.
func (p *Projection) Project(loc LngLat) (Vec2, bool) {
	if !p.ready {
		return Vec2{}, false
	}
	m := FromLngLat(loc)
	worldX := m.X * p.mats.worldSize
	worldY := m.Y * p.mats.worldSize
	elevation := finiteOr(loc.Elevation, 0)

	x, y, _, w := p.mats.pixelMatrix.transform(worldX, worldY, elevation, 1)
	if !isFinite(x) || !isFinite(y) || !isFinite(w) || w <= 0 {
		return Vec2{}, false
	}
	return Vec2{X: x / w, Y: y / w}, true
}

// Unproject converts a screen point to the geographic location where the
// ray through it crosses the ground plane. ok=false when the pixel matrix
// is singular or the ray does not resolve to a finite location.
func (p *Projection) Unproject(point Vec2) (LngLat, bool) {
	if !p.ready || !p.mats.invPixelMatrixOK {
		return LngLat{}, false
	}
	px := finiteOr(point.X, 0)
	py := finiteOr(point.Y, 0)

	// Intersect the ray through depth 0 and depth 1 with the z = 0 plane.
	x0, y0, z0, w0 := p.mats.invPixelMatrix.transform(px, py, 0, 1)
	x1, y1, z1, w1 := p.mats.invPixelMatrix.transform(px, py, 1, 1)
	if !isFinite(w0) || !isFinite(w1) || w0 == 0 || w1 == 0 {
		return LngLat{}, false
	}
	x0, y0, z0 = x0/w0, y0/w0, z0/w0
	x1, y1, z1 = x1/w1, y1/w1, z1/w1
	if !isFinite(x0) || !isFinite(y0) || !isFinite(z0) ||
		!isFinite(x1) || !isFinite(y1) || !isFinite(z1) {
		return LngLat{}, false
	}

	denom := z1 - z0
	t := 0.0
	if denom != 0 {
		t = (0 - z0) / denom
	}
	worldX := x0 + (x1-x0)*t
	worldY := y0 + (y1-y0)*t
	if !isFinite(worldX) || !isFinite(worldY) {
		return LngLat{}, false
	}

	mx := worldX / p.mats.worldSize
	my := worldY / p.mats.worldSize
	if !isFinite(mx) || !isFinite(my) {
		return LngLat{}, false
	}

	lng := lngFromMercatorX(mx)
	lat := clamp(latFromMercatorY(my), -MaxMercatorLatitude, MaxMercatorLatitude)
	if !isFinite(lng) || !isFinite(lat) {
		return LngLat{}, false
	}
	return LngLat{Lng: lng, Lat: lat}, true
}

// PerspectiveRatio returns cameraToCenterDistance / clipW for the
// location. Values above 1 mean the point is nearer than the viewport
// center, below 1 farther. ok=false outside the frustum.
func (p *Projection) PerspectiveRatio(loc LngLat, cached *Mercator) (float64, bool) {
	if !p.ready {
		return 0, false
	}
	var m Mercator
	if cached != nil {
		m = *cached
	} else {
		m = FromLngLat(loc)
	}
	_, _, _, w := p.mats.mercatorMatrix.transform(m.X, m.Y, m.Z, 1)
	if !isFinite(w) || w <= 0 {
		return 0, false
	}
	ratio := p.mats.cameraToCenterDistance / w
	if !isFinite(ratio) || ratio <= 0 {
		return 0, false
	}
	return ratio, true
}
