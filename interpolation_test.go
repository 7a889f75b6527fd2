package maplayers

import (
	"math"
	"testing"

	"github.com/tanema/gween/ease"
)

func TestNormalizeDegrees(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{720, 0},
		{-90, 270},
		{450, 90},
		{-720.5, 359.5},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, c := range cases {
		assertNearTol(t, "NormalizeDegrees", NormalizeDegrees(c.in), c.want, epsilon)
	}
	if math.Signbit(NormalizeDegrees(-360)) {
		t.Error("NormalizeDegrees(-360) should be +0")
	}
}

func TestDegreesLerpWraps(t *testing.T) {
	got := Degrees(0).Lerp(720, 0.5)
	assertNear(t, "wrapped lerp", float64(got), 0)

	got = Degrees(350).Lerp(370, 0.5)
	assertNear(t, "wrapped lerp", float64(got), 0)
}

func TestScalarTransitionProgress(t *testing.T) {
	tr, needed := NewTransition(Scalar(0), nil, Scalar(10), TransitionOptions{DurationMs: 100})
	if !needed {
		t.Fatal("a real change over a positive duration needs evaluation")
	}
	assertNear(t, "from", float64(tr.From()), 0)
	assertNear(t, "target", float64(tr.Target()), 10)

	// First call fixes the start timestamp.
	v, done := tr.Evaluate(1000)
	if done {
		t.Error("transition should not complete at progress 0")
	}
	assertNear(t, "at start", float64(v), 0)

	v, done = tr.Evaluate(1050)
	if done {
		t.Error("transition should not complete at progress 0.5")
	}
	assertNear(t, "midpoint", float64(v), 5)

	v, done = tr.Evaluate(1100)
	if !done {
		t.Error("transition should complete at progress 1")
	}
	assertNear(t, "end", float64(v), 10)

	// Timestamps may be revisited in any order once started.
	v, done = tr.Evaluate(1025)
	if done {
		t.Error("revisited timestamp should not report completion")
	}
	assertNear(t, "revisit", float64(v), 2.5)
}

func TestTransitionZeroDurationSnaps(t *testing.T) {
	tr, needed := NewTransition(Scalar(3), nil, Scalar(7), TransitionOptions{})
	if needed {
		t.Error("zero duration never needs evaluation")
	}
	v, done := tr.Evaluate(42)
	if !done {
		t.Error("zero duration completes immediately")
	}
	assertNear(t, "snap", float64(v), 7)

	tr, needed = NewTransition(Scalar(3), nil, Scalar(7), TransitionOptions{DurationMs: -50})
	if needed {
		t.Error("negative duration clamps to zero")
	}
	if _, done := tr.Evaluate(0); !done {
		t.Error("clamped duration completes immediately")
	}

	tr, needed = NewTransition(Scalar(3), nil, Scalar(7), TransitionOptions{DurationMs: math.NaN()})
	if needed {
		t.Error("non-finite duration clamps to zero")
	}
	_ = tr
}

func TestTransitionUnchangedTarget(t *testing.T) {
	_, needed := NewTransition(Scalar(5), nil, Scalar(5), TransitionOptions{DurationMs: 100})
	if needed {
		t.Error("identical endpoints never need evaluation")
	}
	_, needed = NewTransition(Scalar(5), nil, Scalar(5+transitionEpsilon/2), TransitionOptions{DurationMs: 100})
	if needed {
		t.Error("sub-epsilon change never needs evaluation")
	}
}

func TestTransitionFeedforward(t *testing.T) {
	prev := Scalar(10)
	tr, needed := NewTransition(Scalar(20), &prev, Scalar(20), TransitionOptions{
		DurationMs: 100,
		Mode:       ModeFeedforward,
	})
	if !needed {
		t.Fatal("feedforward past a moving value needs evaluation")
	}
	// Target is the commanded value extrapolated one step: 20 + (20 - 10).
	assertNear(t, "target", float64(tr.Target()), 30)

	// Without a previous command the target is the commanded value exactly.
	tr, _ = NewTransition(Scalar(20), nil, Scalar(25), TransitionOptions{
		DurationMs: 100,
		Mode:       ModeFeedforward,
	})
	assertNear(t, "target", float64(tr.Target()), 25)
}

func TestTransitionEasing(t *testing.T) {
	tr, _ := NewTransition(Scalar(0), nil, Scalar(10), TransitionOptions{
		DurationMs: 100,
		Easing:     ease.InQuad,
	})
	tr.Evaluate(0)
	v, done := tr.Evaluate(50)
	if done {
		t.Error("transition should not complete at progress 0.5")
	}
	// InQuad maps 0.5 to 0.25.
	assertNearTol(t, "eased midpoint", float64(v), 2.5, 1e-6)
}

func TestTransitionLngLat(t *testing.T) {
	from := LngLat{Lng: 139.7, Lat: 35.68, Elevation: 10}
	to := LngLat{Lng: 139.8, Lat: 35.70, Elevation: 30}
	tr, needed := NewTransition(from, nil, to, TransitionOptions{DurationMs: 200})
	if !needed {
		t.Fatal("moving locations need evaluation")
	}
	tr.Evaluate(0)
	v, _ := tr.Evaluate(100)
	assertNearTol(t, "lng", v.Lng, 139.75, epsilon)
	assertNearTol(t, "lat", v.Lat, 35.69, epsilon)
	assertNear(t, "elevation", v.Elevation, 20)
}

func TestTransitionDegreesShortTarget(t *testing.T) {
	prev := Degrees(350)
	tr, _ := NewTransition(Degrees(10), &prev, Degrees(10), TransitionOptions{
		DurationMs: 100,
		Mode:       ModeFeedforward,
	})
	// Extrapolating 10 past 350 crosses zero: 10 + (10 - 350) wraps to 30.
	assertNear(t, "target", float64(tr.Target()), 30)
}

func TestResolveEasing(t *testing.T) {
	fn := ResolveEasing(EaseQuad, EaseIn)
	assertNearTol(t, "InQuad(0.5)", applyEasing(fn, 0.5), 0.25, 1e-6)

	fn = ResolveEasing(EaseLinear, EaseInOut)
	assertNearTol(t, "Linear(0.3)", applyEasing(fn, 0.3), 0.3, 1e-6)

	// Out of range falls back to linear.
	fn = ResolveEasing(EasingFamily(200), EaseIn)
	assertNearTol(t, "fallback", applyEasing(fn, 0.7), 0.7, 1e-6)
	fn = ResolveEasing(EaseQuad, EasingDirection(9))
	assertNearTol(t, "fallback", applyEasing(fn, 0.7), 0.7, 1e-6)
}

func TestEasingEndpoints(t *testing.T) {
	for family := EaseLinear; family <= EaseElastic; family++ {
		for dir := EaseInOut; dir <= EaseOut; dir++ {
			fn := ResolveEasing(family, dir)
			assertNearTol(t, "at 0", applyEasing(fn, 0), 0, 1e-3)
			assertNearTol(t, "at 1", applyEasing(fn, 1), 1, 1e-3)
		}
	}
}

func TestClamp01(t *testing.T) {
	assertNear(t, "below", clamp01(-0.5), 0)
	assertNear(t, "above", clamp01(1.5), 1)
	assertNear(t, "inside", clamp01(0.25), 0.25)
	assertNear(t, "NaN", clamp01(math.NaN()), 1)
	assertNear(t, "Inf", clamp01(math.Inf(-1)), 1)
}

func BenchmarkTransitionEvaluate(b *testing.B) {
	tr, _ := NewTransition(LngLat{}, nil, LngLat{Lng: 1, Lat: 1}, TransitionOptions{
		DurationMs: 1000,
		Easing:     ease.InOutQuad,
	})
	tr.Evaluate(0)
	b.ReportAllocs()
	for b.Loop() {
		tr.Evaluate(500)
	}
}
