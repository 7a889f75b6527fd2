package maplayers

import (
	"math"

	"github.com/tanema/gween/ease"
)

// transitionEpsilon is the per-component difference below which two
// animated values are treated as equal, allowing an immediate snap.
const transitionEpsilon = 1e-6

// Animatable is implemented by value types the transition engine can
// animate. All operations are component-wise and pure.
type Animatable[T any] interface {
	// Lerp linearly interpolates from the receiver toward to by t.
	Lerp(to T, t float64) T
	// Extrapolate returns the feedforward target one step past the
	// receiver: self + (self - previous).
	Extrapolate(previous T) T
	// ApproxEqual reports whether every component differs by at most
	// transitionEpsilon.
	ApproxEqual(o T) bool
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}

// Scalar is an animatable float64: opacity, radial offset distance, size
// factors.
type Scalar float64

func (s Scalar) Lerp(to Scalar, t float64) Scalar {
	return Scalar(lerp(float64(s), float64(to), t))
}

func (s Scalar) Extrapolate(previous Scalar) Scalar {
	return s + (s - previous)
}

func (s Scalar) ApproxEqual(o Scalar) bool {
	return math.Abs(float64(s-o)) <= transitionEpsilon
}

// NormalizeDegrees wraps an angle into [0, 360). Non-finite input
// normalizes to 0.
func NormalizeDegrees(angle float64) float64 {
	if !isFinite(angle) {
		return 0
	}
	wrapped := math.Mod(angle, 360.0)
	if wrapped < 0 {
		wrapped += 360.0
	}
	if wrapped == 0 {
		// Fold -0 into +0.
		return 0
	}
	return wrapped
}

// Degrees is an animatable angle in degrees. Interpolated and extrapolated
// results are wrap-normalized into [0, 360).
type Degrees float64

func (d Degrees) Lerp(to Degrees, t float64) Degrees {
	return Degrees(NormalizeDegrees(lerp(float64(d), float64(to), t)))
}

func (d Degrees) Extrapolate(previous Degrees) Degrees {
	return Degrees(NormalizeDegrees(float64(d + (d - previous))))
}

func (d Degrees) ApproxEqual(o Degrees) bool {
	return math.Abs(float64(d-o)) <= transitionEpsilon
}

func (v Vec2) Lerp(to Vec2, t float64) Vec2 {
	return Vec2{X: lerp(v.X, to.X, t), Y: lerp(v.Y, to.Y, t)}
}

func (v Vec2) Extrapolate(previous Vec2) Vec2 {
	return Vec2{X: v.X + (v.X - previous.X), Y: v.Y + (v.Y - previous.Y)}
}

func (v Vec2) ApproxEqual(o Vec2) bool {
	return math.Abs(v.X-o.X) <= transitionEpsilon &&
		math.Abs(v.Y-o.Y) <= transitionEpsilon
}

func (l LngLat) Lerp(to LngLat, t float64) LngLat {
	return LngLat{
		Lng:       lerp(l.Lng, to.Lng, t),
		Lat:       lerp(l.Lat, to.Lat, t),
		Elevation: lerp(l.Elevation, to.Elevation, t),
	}
}

func (l LngLat) Extrapolate(previous LngLat) LngLat {
	return LngLat{
		Lng:       l.Lng + (l.Lng - previous.Lng),
		Lat:       l.Lat + (l.Lat - previous.Lat),
		Elevation: l.Elevation + (l.Elevation - previous.Elevation),
	}
}

func (l LngLat) ApproxEqual(o LngLat) bool {
	return math.Abs(l.Lng-o.Lng) <= transitionEpsilon &&
		math.Abs(l.Lat-o.Lat) <= transitionEpsilon &&
		math.Abs(l.Elevation-o.Elevation) <= transitionEpsilon
}

// TransitionOptions configures a new transition. The zero value snaps
// immediately (zero duration) with linear easing in feedback mode.
type TransitionOptions struct {
	// DurationMs is the transition duration in milliseconds. Negative or
	// non-finite values clamp to zero.
	DurationMs float64
	// Mode selects feedback (exact target) or feedforward (extrapolated
	// target) behavior.
	Mode TransitionMode
	// Easing is the easing function; nil means linear.
	Easing ease.TweenFunc
}

// Transition animates one value from its current state toward a commanded
// target. Created fresh whenever a new target is commanded; evaluated
// lazily at arbitrary timestamps until completion, then discarded or
// replaced.
type Transition[T Animatable[T]] struct {
	from, to T
	duration float64
	easing   ease.TweenFunc
	start    float64
	started  bool
}

// NewTransition builds a transition from the value's current state toward
// a newly commanded value. previous is the previously commanded value used
// for feedforward extrapolation; pass nil when none exists, in which case
// the target is the commanded value exactly.
//
// The second return value reports whether evaluation is necessary: false
// when the duration is zero or the endpoints already coincide, allowing
// the caller to snap immediately.
func NewTransition[T Animatable[T]](current T, previous *T, next T, opts TransitionOptions) (*Transition[T], bool) {
	duration := opts.DurationMs
	if !isFinite(duration) || duration < 0 {
		duration = 0
	}
	easing := opts.Easing
	if easing == nil {
		easing = ease.Linear
	}

	target := next
	if opts.Mode == ModeFeedforward && previous != nil {
		target = next.Extrapolate(*previous)
	}

	tr := &Transition[T]{
		from:     current,
		to:       target,
		duration: duration,
		easing:   easing,
	}
	needed := duration > 0 && !current.ApproxEqual(target)
	return tr, needed
}

// From returns the starting value.
func (tr *Transition[T]) From() T { return tr.from }

// Target returns the resolved target value. For feedforward transitions
// this is the extrapolated point, which the host feeds back as the
// previous commanded value for the next command.
func (tr *Transition[T]) Target() T { return tr.to }

// Evaluate returns the value at the given timestamp (same unit as the
// duration) and whether the transition has completed. The first call fixes
// the start timestamp; after that, evaluation is a pure function of state
// and timestamp, so timestamps may be revisited in any order.
func (tr *Transition[T]) Evaluate(timestamp float64) (T, bool) {
	if !tr.started {
		tr.start = timestamp
		tr.started = true
	}
	if tr.duration <= 0 {
		return tr.to, true
	}
	progress := (timestamp - tr.start) / tr.duration
	if progress >= 1 {
		return tr.to, true
	}
	return tr.from.Lerp(tr.to, applyEasing(tr.easing, progress)), false
}
