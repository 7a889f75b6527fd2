package maplayers

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minParallelItems is the batch size below which slicing across goroutines
// costs more than it saves; smaller batches run on the calling goroutine.
const minParallelItems = 256

// ErrBackendUnavailable reports that the batch backend could not be
// constructed; the caller falls back to the reference Projection.
var ErrBackendUnavailable = fmt.Errorf("maplayers: batch projection backend unavailable")

// ProjectedPoint is one entry of a batch projection result. OK mirrors the
// per-item Project contract: false means "not visible this frame".
type ProjectedPoint struct {
	Point Vec2
	OK    bool
}

// BatchProjector is a Projector that additionally evaluates whole slices
// of locations at once, splitting the work across goroutines. It delegates
// the per-item contract to the reference Projection, so both variants are
// numerically identical and substitutable at any call site.
type BatchProjector struct {
	*Projection
	workers int
}

// NewBatchProjector wraps a reference projection with a parallel batch
// evaluator. workers <= 0 selects GOMAXPROCS. Returns
// ErrBackendUnavailable when the projection is nil; the caller keeps using
// the reference path in that case.
func NewBatchProjector(p *Projection, workers int) (*BatchProjector, error) {
	if p == nil {
		return nil, ErrBackendUnavailable
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &BatchProjector{Projection: p, workers: workers}, nil
}

// SelectProjector returns a batch-capable projector when one can be built
// for the camera snapshot, and otherwise the reference projection plus the
// condition that forced the fallback. The returned Projector is always
// usable; the error is informational and recoverable.
func SelectProjector(params CameraParams, workers int) (Projector, error) {
	ref := NewProjection(params)
	batch, err := NewBatchProjector(ref, workers)
	if err != nil {
		return ref, err
	}
	return batch, nil
}

// ProjectBatch projects every location in locs and writes the results into
// out, which must have the same length. The call is atomic from the
// caller's perspective: it either fills the full result set and returns
// nil, or returns an error with no usable results, in which case the
// caller falls back to per-item Project calls.
func (b *BatchProjector) ProjectBatch(locs []LngLat, out []ProjectedPoint) error {
	if len(out) != len(locs) {
		return fmt.Errorf("maplayers: batch result length %d does not match input length %d",
			len(out), len(locs))
	}
	total := len(locs)
	if total == 0 {
		return nil
	}

	workers := b.workers
	if total < minParallelItems || workers <= 1 {
		projectSlice(b.Projection, locs, out)
		return nil
	}
	if sliceCount := (total + minParallelItems - 1) / minParallelItems; workers > sliceCount {
		workers = sliceCount
	}

	var g errgroup.Group
	sliceSize := (total + workers - 1) / workers
	for start := 0; start < total; start += sliceSize {
		end := start + sliceSize
		if end > total {
			end = total
		}
		g.Go(func() error {
			projectSlice(b.Projection, locs[start:end], out[start:end])
			return nil
		})
	}
	return g.Wait()
}

// PerspectiveRatioBatch evaluates PerspectiveRatio for every location,
// with the same atomicity and slicing behavior as ProjectBatch. A ratio of
// zero with ok=false marks a location outside the frustum.
func (b *BatchProjector) PerspectiveRatioBatch(locs []LngLat, out []float64) error {
	if len(out) != len(locs) {
		return fmt.Errorf("maplayers: batch result length %d does not match input length %d",
			len(out), len(locs))
	}
	total := len(locs)
	if total == 0 {
		return nil
	}

	workers := b.workers
	if total < minParallelItems || workers <= 1 {
		ratioSlice(b.Projection, locs, out)
		return nil
	}
	if sliceCount := (total + minParallelItems - 1) / minParallelItems; workers > sliceCount {
		workers = sliceCount
	}

	var g errgroup.Group
	sliceSize := (total + workers - 1) / workers
	for start := 0; start < total; start += sliceSize {
		end := start + sliceSize
		if end > total {
			end = total
		}
		g.Go(func() error {
			ratioSlice(b.Projection, locs[start:end], out[start:end])
			return nil
		})
	}
	return g.Wait()
}

func projectSlice(p *Projection, locs []LngLat, out []ProjectedPoint) {
	for i, loc := range locs {
		pt, ok := p.Project(loc)
		out[i] = ProjectedPoint{Point: pt, OK: ok}
	}
}

func ratioSlice(p *Projection, locs []LngLat, out []float64) {
	for i, loc := range locs {
		ratio, ok := p.PerspectiveRatio(loc, nil)
		if !ok {
			ratio = 0
		}
		out[i] = ratio
	}
}
