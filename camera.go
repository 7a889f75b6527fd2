package maplayers

import "math"

// defaultTileSize is the base tile size used when CameraParams.TileSize is
// zero.
const defaultTileSize = 512.0

// defaultFOV is the vertical field of view in degrees used when
// CameraParams.FOV is zero.
const defaultFOV = 36.87

// CameraParams is a snapshot of the host map camera for one evaluation.
// Immutable per evaluation; the caller owns it and supplies a fresh value
// each frame.
type CameraParams struct {
	// Zoom is the map zoom level. World size doubles per zoom level.
	Zoom float64
	// Width and Height are the viewport size in pixels.
	Width, Height float64
	// Center is the geographic coordinate at the viewport center.
	Center LngLat
	// Pitch, Bearing, and Roll are the camera angles in degrees.
	Pitch, Bearing, Roll float64
	// FOV is the vertical field of view in degrees (0 selects the default).
	FOV float64
	// CenterElevation is the terrain elevation at the center in meters.
	CenterElevation float64
	// MinElevation is the minimum elevation of the current content in
	// meters; it extends the far plane so low content is not clipped.
	MinElevation float64
	// CameraToCenterDistance is the camera distance to the center point in
	// pixels. Zero derives it from FOV and Height.
	CameraToCenterDistance float64
	// CenterOffset shifts the projection center in pixels.
	CenterOffset Vec2
	// TileSize is the base tile size in pixels (0 selects 512).
	TileSize float64
	// FixedClipPlanes uses NearZ/FarZ as given instead of deriving them
	// from the camera geometry.
	FixedClipPlanes bool
	// NearZ and FarZ are the clip plane distances used when
	// FixedClipPlanes is set.
	NearZ, FarZ float64
}

// cameraMatrices holds everything derived once from a CameraParams
// snapshot.
type cameraMatrices struct {
	worldSize              float64
	cameraToCenterDistance float64
	pixelsPerMeter         float64
	// mercatorMatrix maps normalized Mercator coordinates to clip space.
	mercatorMatrix Mat4
	// pixelMatrix maps world coordinates (Mercator scaled by worldSize,
	// elevation in meters) to screen pixels after the perspective divide.
	pixelMatrix Mat4
	// invPixelMatrix is the inverse of pixelMatrix; invalid when the pixel
	// matrix is singular.
	invPixelMatrix   Mat4
	invPixelMatrixOK bool
}

// WorldSize returns the projected world extent in pixels at the given zoom
// and tile size.
func (p CameraParams) WorldSize() float64 {
	tileSize := p.TileSize
	if tileSize <= 0 {
		tileSize = defaultTileSize
	}
	return tileSize * math.Pow(2.0, p.Zoom)
}

// calcMatrices derives the projection matrices for one camera snapshot.
// Returns ok=false when the viewport is degenerate.
func (p CameraParams) calcMatrices() (cameraMatrices, bool) {
	if !(p.Width > 0) || !(p.Height > 0) {
		return cameraMatrices{}, false
	}

	fov := p.FOV
	if !(fov > 0) {
		fov = defaultFOV
	}
	fovRad := fov * deg2rad
	pitchRad := clamp(finiteOr(p.Pitch, 0), 0, 85) * deg2rad
	bearingRad := finiteOr(p.Bearing, 0) * deg2rad
	rollRad := finiteOr(p.Roll, 0) * deg2rad

	worldSize := p.WorldSize()
	ccd := p.CameraToCenterDistance
	if !(ccd > 0) {
		ccd = 0.5 / math.Tan(fovRad/2.0) * p.Height
	}
	pixelsPerMeter := worldSize / circumferenceAtLatitude(p.Center.Lat)

	nearZ, farZ := p.NearZ, p.FarZ
	if !p.FixedClipPlanes {
		// Distance from the camera to the farthest visible ground point,
		// from the standard tilted-plane derivation.
		groundAngle := math.Pi/2.0 + pitchRad
		fovAboveCenter := fovRad * (0.5 + p.CenterOffset.Y/p.Height)
		topHalfSurfaceDistance := math.Sin(fovAboveCenter) * ccd /
			math.Sin(clamp(math.Pi-groundAngle-fovAboveCenter, 0.01, math.Pi-0.01))
		furthest := math.Cos(math.Pi/2.0-pitchRad)*topHalfSurfaceDistance + ccd
		// Content below the center elevation pushes the far plane out.
		lowestExtent := math.Max(0, p.CenterElevation-p.MinElevation) * pixelsPerMeter
		farZ = (furthest + lowestExtent) * 1.01
		nearZ = p.Height / 50.0
	}
	if !(nearZ > 0) || !(farZ > nearZ) {
		return cameraMatrices{}, false
	}

	m := mat4Perspective(fovRad, p.Width/p.Height, nearZ, farZ)

	// Center offset shears the frustum without moving the center point.
	m[8] = -p.CenterOffset.X * 2.0 / p.Width
	m[9] = p.CenterOffset.Y * 2.0 / p.Height

	m = m.scale(1, -1, 1)
	m = m.translate(0, 0, -ccd)
	m = m.rotateZ(rollRad)
	m = m.rotateX(pitchRad)
	m = m.rotateZ(-bearingRad)

	center := FromLngLat(p.Center)
	m = m.translate(-center.X*worldSize, -center.Y*worldSize, 0)

	mercatorMatrix := m.scale(worldSize, worldSize, worldSize)

	// Scale so the matrix consumes elevation in meters, then lift by the
	// center elevation so the ground plane stays at z = 0.
	proj := m.scale(1, 1, pixelsPerMeter)
	proj = proj.translate(0, 0, -p.CenterElevation)

	clipToPixels := Mat4{
		p.Width / 2.0, 0, 0, 0,
		0, -p.Height / 2.0, 0, 0,
		0, 0, 1, 0,
		p.Width / 2.0, p.Height / 2.0, 0, 1,
	}
	pixelMatrix := clipToPixels.mul(proj)
	invPixelMatrix, invOK := pixelMatrix.invert()

	return cameraMatrices{
		worldSize:              worldSize,
		cameraToCenterDistance: ccd,
		pixelsPerMeter:         pixelsPerMeter,
		mercatorMatrix:         mercatorMatrix,
		pixelMatrix:            pixelMatrix,
		invPixelMatrix:         invPixelMatrix,
		invPixelMatrixOK:       invOK,
	}, true
}
