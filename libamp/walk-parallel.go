package libamp

import (
	"context"
	"math"
	"runtime"

	"github.com/2x3systems/goamp/goamp"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"golang.org/x/sync/errgroup"
)

// PartReport is the outcome of one contiguous schedule range.
type PartReport struct {
	Start uint64
	End   uint64
	Sum   float64 // unnormalized partial sum
	Evals uint64
	Hits  uint64
}

// Report is the outcome of a (possibly partitioned) walk.
type Report struct {
	Amplitude float64
	Parts     []PartReport
}

// Evals returns the total number of evaluated slices.
func (rpt *Report) Evals() uint64 {
	N := uint64(0)
	for _, part := range rpt.Parts {
		N += part.Evals
	}
	return N
}

// Hits returns the total number of contributing slices.
func (rpt *Report) Hits() uint64 {
	N := uint64(0)
	for _, part := range rpt.Parts {
		N += part.Hits
	}
	return N
}

// PartitionRanges splits [0, N) into numParts contiguous ranges whose sizes differ by at most one.
func PartitionRanges(N uint64, numParts int) ([][2]uint64, error) {
	if numParts < 1 || uint64(numParts) > N {
		return nil, errors.Wrapf(goamp.ErrPartition, "%d partitions of %d positions", numParts, N)
	}
	P := uint64(numParts)
	size, extra := N/P, N%P

	ranges := make([][2]uint64, numParts)
	start := uint64(0)
	for i := range ranges {
		end := start + size
		if uint64(i) < extra {
			end++
		}
		ranges[i] = [2]uint64{start, end}
		start = end
	}
	return ranges, nil
}

// AmplitudeParallel walks the schedule split into numParts ranges and returns the amplitude.
func (w *Walker) AmplitudeParallel(ctx context.Context, numParts int) (float64, error) {
	rpt, err := w.walkParts(ctx, numParts, w.opts.MaxWorkers)
	if err != nil {
		return 0, err
	}
	return rpt.Amplitude, nil
}

// Walk walks the schedule partitioned per WalkOpts.Parts and WalkOpts.MaxWorkers.
func (w *Walker) Walk(ctx context.Context) (*Report, error) {
	return w.walkParts(ctx, w.opts.Parts, w.opts.MaxWorkers)
}

func (w *Walker) clampParts(numParts int) int {
	if numParts <= 0 {
		numParts = runtime.NumCPU()
	}
	if N := w.NumPositions(); uint64(numParts) > N {
		numParts = int(N)
	}
	return numParts
}

// partRunner walks one range to its end and returns the finished state.
type partRunner func(ctx context.Context, part int, span [2]uint64) (*WalkState, error)

func (w *Walker) runFresh(ctx context.Context, part int, span [2]uint64) (*WalkState, error) {
	st, err := w.SeedAt(span[0], span[1])
	if err != nil {
		return nil, err
	}
	if err = w.Run(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (w *Walker) walkParts(ctx context.Context, numParts, maxWorkers int) (*Report, error) {
	return w.walkPartsWith(ctx, numParts, maxWorkers, w.runFresh)
}

// walkPartsWith seeds each range independently, so no partition reads another's state.
// Each finished range must hold the state seeded at the start of its successor.
func (w *Walker) walkPartsWith(ctx context.Context, numParts, maxWorkers int, run partRunner) (*Report, error) {
	numParts = w.clampParts(numParts)
	ranges, err := PartitionRanges(w.NumPositions(), numParts)
	if err != nil {
		return nil, err
	}

	rpt := &Report{
		Parts: make([]PartReport, numParts),
	}

	grp, ctx := errgroup.WithContext(ctx)
	if maxWorkers > 0 {
		grp.SetLimit(maxWorkers)
	}

	for i, span := range ranges {
		i, span := i, span
		grp.Go(func() error {
			st, err := run(ctx, i, span)
			if err != nil {
				return err
			}
			if err = w.verifyClosed(st); err != nil {
				return errors.Wrapf(err, "partition %d", i)
			}
			rpt.Parts[i] = PartReport{
				Start: span[0],
				End:   span[1],
				Sum:   st.Sum,
				Evals: st.Evals,
				Hits:  st.Hits,
			}
			klog.V(2).Infof("partition %d [%d, %d) done: sum=%g evals=%d hits=%d", i, span[0], span[1], st.Sum, st.Evals, st.Hits)
			return nil
		})
	}
	if err = grp.Wait(); err != nil {
		return nil, err
	}

	// add in partition order
	sum := 0.0
	for _, part := range rpt.Parts {
		sum += part.Sum
	}
	rpt.Amplitude = math.Ldexp(sum, -w.numNodes)
	return rpt, nil
}

// ComputeAmplitude classifies p and walks it for output string s.
func ComputeAmplitude(ctx context.Context, p *Polynomial, s goamp.BitString, opts goamp.WalkOpts) (*Report, error) {
	tables, err := Classify(p)
	if err != nil {
		return nil, err
	}
	w, err := NewWalker(tables, s, opts)
	if err != nil {
		return nil, err
	}
	return w.Walk(ctx)
}
