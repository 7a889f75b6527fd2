package maplayers

import "github.com/tanema/gween/ease"

// EasingFamily selects an easing curve family. The curves themselves come
// from the gween ease package; ease.TweenFunc is the easing function
// reference type used throughout the transition engine, so custom curves
// can be supplied directly.
type EasingFamily uint8

const (
	EaseLinear EasingFamily = iota
	EaseQuad
	EaseCubic
	EaseQuart
	EaseQuint
	EaseSine
	EaseExpo
	EaseCirc
	EaseBack
	EaseBounce
	EaseElastic
)

// EasingDirection selects which end of the curve accelerates.
type EasingDirection uint8

const (
	EaseInOut EasingDirection = iota
	EaseIn
	EaseOut
)

// easingTable maps family and direction onto gween curves, indexed
// [family][direction].
var easingTable = [...][3]ease.TweenFunc{
	EaseLinear:  {ease.Linear, ease.Linear, ease.Linear},
	EaseQuad:    {ease.InOutQuad, ease.InQuad, ease.OutQuad},
	EaseCubic:   {ease.InOutCubic, ease.InCubic, ease.OutCubic},
	EaseQuart:   {ease.InOutQuart, ease.InQuart, ease.OutQuart},
	EaseQuint:   {ease.InOutQuint, ease.InQuint, ease.OutQuint},
	EaseSine:    {ease.InOutSine, ease.InSine, ease.OutSine},
	EaseExpo:    {ease.InOutExpo, ease.InExpo, ease.OutExpo},
	EaseCirc:    {ease.InOutCirc, ease.InCirc, ease.OutCirc},
	EaseBack:    {ease.InOutBack, ease.InBack, ease.OutBack},
	EaseBounce:  {ease.InOutBounce, ease.InBounce, ease.OutBounce},
	EaseElastic: {ease.InOutElastic, ease.InElastic, ease.OutElastic},
}

// ResolveEasing returns the easing function for a family/direction pair.
// Unknown values fall back to linear.
func ResolveEasing(family EasingFamily, direction EasingDirection) ease.TweenFunc {
	if int(family) >= len(easingTable) || direction > EaseOut {
		return ease.Linear
	}
	return easingTable[family][direction]
}

// clamp01 clamps progress into [0, 1]; non-finite input resolves to 1 so a
// broken timestamp completes the transition instead of wedging it.
func clamp01(v float64) float64 {
	if !isFinite(v) {
		return 1
	}
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	return v
}

// applyEasing evaluates fn over clamped progress, mapping [0, 1] to
// [0, 1]. A nil fn means linear.
func applyEasing(fn ease.TweenFunc, progress float64) float64 {
	t := clamp01(progress)
	if fn == nil {
		return t
	}
	return float64(fn(float32(t), 0, 1, 1))
}
