package libamp

import (
	"context"
	"fmt"
	"math"
	"math/bits"
	"sync"

	"github.com/2x3systems/goamp/goamp"
	"github.com/pkg/errors"
)

// WalkState is everything needed to resume a walk over schedule positions [Pos, End).
// At position Pos, XRed is GrayAt(m, Pos) and Gamma, DeltaB, DeltaG are derived from it.
type WalkState struct {
	Pos    uint64   // next schedule position to evaluate
	End    uint64   // one past the last position of this range
	XRed   uint64   // current red assignment
	Gamma  []uint64 // Gamma[b] is a bit mask over green: the blue-green coupling at XRed
	DeltaB uint64   // blue bias induced by XRed
	DeltaG uint64   // green bias induced by XRed
	Sum    float64  // partial sum over [start, Pos)
	Evals  uint64   // slices handed to the evaluator
	Hits   uint64   // slices that contributed
}

// Clone returns a deep copy of st.
func (st *WalkState) Clone() *WalkState {
	dup := *st
	dup.Gamma = append([]uint64(nil), st.Gamma...)
	return &dup
}

// sameSlice returns true if st and other hold the same red assignment and derived state.
func (st *WalkState) sameSlice(other *WalkState) bool {
	if st.XRed != other.XRed || st.DeltaB != other.DeltaB || st.DeltaG != other.DeltaG || len(st.Gamma) != len(other.Gamma) {
		return false
	}
	for i, row := range st.Gamma {
		if other.Gamma[i] != row {
			return false
		}
	}
	return true
}

func (st *WalkState) String() string {
	return fmt.Sprintf("pos=%d/%d,xRed=%b,dB=%b,dG=%b,sum=%g", st.Pos, st.End, st.XRed, st.DeltaB, st.DeltaG, st.Sum)
}

// Walker enumerates all red assignments in Gray order and accumulates the amplitude of
// one output string.  A Walker is immutable after construction and safe for concurrent use;
// each WalkState must be owned by one goroutine.
type Walker struct {
	numNodes  int
	tables    *Tables
	out       goamp.BitString
	sRed      uint64
	sBlue     uint64
	sGreen    uint64
	opts      goamp.WalkOpts
	base      []uint64 // Gamma at XRed = 0
	blueFlip  []uint64 // blueFlip[r] is the DeltaB toggle of red r
	greenFlip []uint64 // greenFlip[r] is the DeltaG toggle of red r
	evals     sync.Pool
}

// NewWalker prepares a walk of the given tables for output string s.
func NewWalker(tables *Tables, s goamp.BitString, opts goamp.WalkOpts) (*Walker, error) {
	m := tables.NumNodes
	if m < 1 || m > goamp.MaxNodes {
		return nil, errors.Wrapf(goamp.ErrNodeCount, "%d nodes", m)
	}
	if len(s) != goamp.NumColors*m {
		return nil, errors.Wrapf(goamp.ErrBitString, "output string has %d bits, expected %d", len(s), goamp.NumColors*m)
	}
	if opts.Evaluator == goamp.EvalExpSum && 2*m > 64 {
		return nil, errors.Wrapf(goamp.ErrTooManyQubits, "exponential sum over %d blue and green variables", 2*m)
	}

	w := &Walker{
		numNodes:  m,
		tables:    tables,
		out:       append(goamp.BitString(nil), s...),
		sRed:      s.Project(goamp.Red),
		sBlue:     s.Project(goamp.Blue),
		sGreen:    s.Project(goamp.Green),
		opts:      opts,
		base:      make([]uint64, m),
		blueFlip:  make([]uint64, m),
		greenFlip: make([]uint64, m),
	}
	for _, pr := range tables.Base {
		w.base[pr.Blue] ^= 1 << pr.Green
	}
	for r := 0; r < m; r++ {
		for _, bi := range tables.RedBlue[r] {
			w.blueFlip[r] ^= 1 << bi
		}
		for _, gi := range tables.RedGreen[r] {
			w.greenFlip[r] ^= 1 << gi
		}
	}
	w.evals.New = func() interface{} {
		return NewSliceEvaluator(w.opts.Evaluator, w.numNodes)
	}
	return w, nil
}

// NumNodes returns m, the length of the red assignment.
func (w *Walker) NumNodes() int {
	return w.numNodes
}

// NumPositions returns 2^m, the length of the full schedule.
func (w *Walker) NumPositions() uint64 {
	return uint64(1) << uint(w.numNodes)
}

// Opts returns the options this walker was built with.
func (w *Walker) Opts() goamp.WalkOpts {
	return w.opts
}

// SeedAt returns the state at schedule position pos, for a range ending at end,
// without replaying the schedule.
func (w *Walker) SeedAt(pos, end uint64) (*WalkState, error) {
	N := w.NumPositions()
	if pos > end || end > N {
		return nil, errors.Wrapf(goamp.ErrPartition, "range [%d, %d) outside schedule of %d", pos, end, N)
	}
	st := &WalkState{
		Pos:   pos,
		End:   end,
		Gamma: append([]uint64(nil), w.base...),
	}
	for x := goamp.GrayAt(w.numNodes, pos); x != 0; x &= x - 1 {
		w.flip(st, bits.TrailingZeros64(x))
	}
	return st, nil
}

func (w *Walker) flip(st *WalkState, r int) {
	st.XRed ^= 1 << uint(r)
	for _, pr := range w.tables.Triples[r] {
		st.Gamma[pr.Blue] ^= 1 << pr.Green
	}
	st.DeltaB ^= w.blueFlip[r]
	st.DeltaG ^= w.greenFlip[r]
}

// Step evaluates the slice at st.Pos and advances st by one flip.
func (w *Walker) Step(st *WalkState) error {
	if st.Pos >= st.End {
		return errors.Wrapf(goamp.ErrPartition, "step past end %d", st.End)
	}
	ev := w.evals.Get().(SliceEvaluator)
	err := w.step(ev, st)
	w.evals.Put(ev)
	return err
}

func (w *Walker) step(ev SliceEvaluator, st *WalkState) error {
	b := w.sBlue ^ st.DeltaB
	c := w.sGreen ^ st.DeltaG

	pass := true
	if w.opts.QuickReject != goamp.QuickRejectOff {
		pass = bits.OnesCount64(st.XRed&b)&1 == 0 && bits.OnesCount64(st.XRed&c)&1 == 0
	}

	if pass || w.opts.QuickReject == goamp.QuickRejectChecked {
		st.Evals++
		res := ev.EvalSlice(st.Gamma, b, c)
		if res.Hit {
			if !pass {
				return errors.Wrapf(goamp.ErrQuickRejectUnsound, "position %d, xRed=%b, rank %d", st.Pos, st.XRed, res.Rank)
			}
			term := math.Ldexp(1, -res.Rank)
			if res.Odd != (bits.OnesCount64(w.sRed&st.XRed)&1 != 0) {
				term = -term
			}
			st.Sum += term
			st.Hits++
		}
	}

	w.flip(st, goamp.GrayFlip(w.numNodes, st.Pos))
	st.Pos++
	return nil
}

// checkInterval is how many steps Run takes between context checks.
const checkInterval = 1 << 12

// Run steps st until st.End or until ctx is done.  On cancellation st holds a valid
// partial sum and can be resumed.
func (w *Walker) Run(ctx context.Context, st *WalkState) error {
	ev := w.evals.Get().(SliceEvaluator)
	defer w.evals.Put(ev)

	for n := 0; st.Pos < st.End; n++ {
		if n%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := w.step(ev, st); err != nil {
			return err
		}
	}
	return nil
}

// verifyClosed checks that a finished range holds the state seeded at its end.
func (w *Walker) verifyClosed(st *WalkState) error {
	expect, err := w.SeedAt(st.End, st.End)
	if err != nil {
		return err
	}
	if st.Pos != st.End || !st.sameSlice(expect) {
		lastFlip := -1
		if st.Pos > 0 {
			lastFlip = goamp.GrayFlip(w.numNodes, st.Pos-1)
		}
		return errors.Wrapf(goamp.ErrWalkNotClosed, "iteration %d, last flip %d: holding %v, expected xRed=%b", st.Pos, lastFlip, st, expect.XRed)
	}
	return nil
}

// Amplitude walks the full schedule on the calling goroutine and returns Sum / 2^m.
func (w *Walker) Amplitude(ctx context.Context) (float64, error) {
	st, err := w.SeedAt(0, w.NumPositions())
	if err != nil {
		return 0, err
	}
	if err = w.Run(ctx, st); err != nil {
		return 0, err
	}
	if err = w.verifyClosed(st); err != nil {
		return 0, err
	}
	return math.Ldexp(st.Sum, -w.numNodes), nil
}
