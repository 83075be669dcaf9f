package libamp

import (
	"context"
	"encoding/binary"

	"github.com/2x3systems/goamp/goamp"
	"github.com/2x3systems/goamp/libamp/checkpoint"
	"github.com/pkg/errors"
)

// JobKey identifies this walk's tables, output string, quick reject mode, and partition count
// in a checkpoint store.  Partial sums taken with the pre-filter on are never resumed by a walk
// without it, or vice versa.
func (w *Walker) JobKey(numParts int) uint64 {
	var buf [13]byte
	binary.LittleEndian.PutUint64(buf[:8], w.tables.Fingerprint())
	binary.LittleEndian.PutUint32(buf[8:12], uint32(w.clampParts(numParts)))
	buf[12] = byte(w.opts.QuickReject)
	return checkpoint.JobKey(buf[:], []byte(w.out.String()))
}

// ExportState returns the persisted form of st.
func (w *Walker) ExportState(st *WalkState, jobKey uint64, part int, start uint64) *checkpoint.WalkRecord {
	return &checkpoint.WalkRecord{
		JobKey:   jobKey,
		Part:     uint32(part),
		NumNodes: uint32(w.numNodes),
		Start:    start,
		Pos:      st.Pos,
		End:      st.End,
		XRed:     st.XRed,
		Gamma:    append([]uint64(nil), st.Gamma...),
		DeltaB:   st.DeltaB,
		DeltaG:   st.DeltaG,
		Sum:      st.Sum,
		Evals:    st.Evals,
		Hits:     st.Hits,
	}
}

// ImportState rebuilds a walk state from rec after checking it against this walker.
// The red assignment must match the schedule position; the derived state is trusted.
func (w *Walker) ImportState(rec *checkpoint.WalkRecord) (*WalkState, error) {
	if int(rec.NumNodes) != w.numNodes || len(rec.Gamma) != w.numNodes {
		return nil, errors.Wrapf(goamp.ErrCheckpointMismatch, "record has %d nodes, walker has %d", rec.NumNodes, w.numNodes)
	}
	if rec.Start > rec.Pos || rec.Pos > rec.End || rec.End > w.NumPositions() {
		return nil, errors.Wrapf(goamp.ErrCheckpointMismatch, "record range [%d, %d) at %d", rec.Start, rec.End, rec.Pos)
	}
	if rec.XRed != goamp.GrayAt(w.numNodes, rec.Pos) {
		return nil, errors.Wrapf(goamp.ErrCheckpointMismatch, "xRed=%b at position %d", rec.XRed, rec.Pos)
	}
	return &WalkState{
		Pos:    rec.Pos,
		End:    rec.End,
		XRed:   rec.XRed,
		Gamma:  append([]uint64(nil), rec.Gamma...),
		DeltaB: rec.DeltaB,
		DeltaG: rec.DeltaG,
		Sum:    rec.Sum,
		Evals:  rec.Evals,
		Hits:   rec.Hits,
	}, nil
}

// RunCheckpointed walks partition part of numParts, resuming from the store when a record
// exists and saving a record every `every` steps and when the range completes.
func (w *Walker) RunCheckpointed(ctx context.Context, store *checkpoint.Store, numParts, part int, every uint64) (*WalkState, error) {
	numParts = w.clampParts(numParts)
	ranges, err := PartitionRanges(w.NumPositions(), numParts)
	if err != nil {
		return nil, err
	}
	if part < 0 || part >= numParts {
		return nil, errors.Wrapf(goamp.ErrPartition, "partition %d of %d", part, numParts)
	}
	return w.runCheckpointed(ctx, store, w.JobKey(numParts), every, part, ranges[part])
}

func (w *Walker) runCheckpointed(ctx context.Context, store *checkpoint.Store, jobKey, every uint64, part int, span [2]uint64) (*WalkState, error) {
	var st *WalkState

	rec, err := store.Load(jobKey, uint32(part))
	switch {
	case err == nil:
		if rec.Start != span[0] || rec.End != span[1] {
			return nil, errors.Wrapf(goamp.ErrCheckpointMismatch, "partition %d saved as [%d, %d), expected [%d, %d)", part, rec.Start, rec.End, span[0], span[1])
		}
		if st, err = w.ImportState(rec); err != nil {
			return nil, err
		}
	case errors.Is(err, goamp.ErrNoCheckpoint):
		if st, err = w.SeedAt(span[0], span[1]); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if every == 0 {
		every = st.End - st.Pos
	}

	for st.Pos < st.End {
		end := st.End
		if st.End-st.Pos > every {
			st.End = st.Pos + every
		}
		err = w.Run(ctx, st)
		st.End = end
		if err != nil {
			return nil, err
		}
		if err = store.Save(w.ExportState(st, jobKey, part, span[0])); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// WalkCheckpointed is Walk with each partition resumed from and saved to store.
func (w *Walker) WalkCheckpointed(ctx context.Context, store *checkpoint.Store, every uint64) (*Report, error) {
	numParts := w.clampParts(w.opts.Parts)
	jobKey := w.JobKey(numParts)
	return w.walkPartsWith(ctx, numParts, w.opts.MaxWorkers, func(ctx context.Context, part int, span [2]uint64) (*WalkState, error) {
		return w.runCheckpointed(ctx, store, jobKey, every, part, span)
	})
}
