// Package maplayers computes the per-frame geometry, depth ordering, and
// time-smoothed transitions for large dynamic populations of map-anchored
// sprite images.
//
// The package is renderer-agnostic: it takes a camera snapshot and sprite
// placement requests in, and hands quad corners, depth keys, interpolated
// values, and hit-test candidates back out. It performs no I/O and owns no
// render loop.
//
// # Projection
//
// Build a [Projection] from the frame's [CameraParams], then place
// everything through it:
//
//	proj := maplayers.NewProjection(cam)
//	screen, ok := proj.Project(maplayers.LngLat{Lng: 139.76, Lat: 35.68})
//
// Project and Unproject report ok=false for points outside the
// representable frustum; treat that as "not visible this frame". For large
// sprite populations, [BatchProjector] evaluates whole slices across
// goroutines with identical numerics.
//
// # Placement
//
// [PlaceBillboard] computes screen-pixel quads that always face the
// viewport; [PlaceSurface] computes world-meter quads flush with the
// ground, projected corner by corner. [BillboardDepthKey] and
// [SurfaceDepthKey] produce the scalar keys [SortBackToFront] orders by.
//
// # Transitions
//
// [Transition] animates any [Animatable] value (positions, angles,
// opacities) between commanded targets, with feedback or feedforward
// targeting and easing curves from [gween].
//
// # Hit testing
//
// [LooseQuadtree] indexes moving rectangles with near-constant query
// cost; [HitIndex] layers exact quad containment on top for pointer hit
// tests.
//
// A runnable demo lives in examples/markers.
//
// [gween]: https://github.com/tanema/gween
package maplayers
