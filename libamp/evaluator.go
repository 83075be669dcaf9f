package libamp

import (
	"math/bits"

	"github.com/2x3systems/goamp/goamp"
	"github.com/2x3systems/goamp/libamp/gf2"
)

// SliceResult is the contribution of one red assignment: zero when Hit is false,
// else (-1)^Odd / 2^Rank before the red sign is applied.
type SliceResult struct {
	Hit  bool
	Odd  bool
	Rank int
}

// SliceEvaluator sums (-1)^(xB Gamma xG + b.xB + c.xG) over all blue and green
// assignments, scaled by 2^-2m.
//
// gamma[b] is a bit mask over green indices.  Implementations keep scratch space and
// are not safe for concurrent use.
type SliceEvaluator interface {
	EvalSlice(gamma []uint64, b, c uint64) SliceResult
}

// NewSliceEvaluator returns an evaluator of the given kind for numNodes nodes.
func NewSliceEvaluator(kind goamp.EvalKind, numNodes int) SliceEvaluator {
	if kind == goamp.EvalExpSum {
		return &ExponentialSumEvaluator{
			numNodes: numNodes,
		}
	}
	return &LinearSystemEvaluator{
		numNodes: numNodes,
	}
}

// LinearSystemEvaluator sums out the blue variables, leaving Gamma xG = b, then sums
// the green variables over the solution coset.  The slice contributes only if c is
// orthogonal to the null space of Gamma.
type LinearSystemEvaluator struct {
	numNodes int
	solver   gf2.Solver
}

func (ev *LinearSystemEvaluator) EvalSlice(gamma []uint64, b, c uint64) SliceResult {
	sol := ev.solver.Solve(gf2.Matrix{Rows: gamma, NumCols: ev.numNodes}, b)
	if sol.Status != gf2.OK {
		return SliceResult{}
	}
	for _, v := range sol.Basis {
		if bits.OnesCount64(c&v)&1 != 0 {
			return SliceResult{}
		}
	}
	return SliceResult{
		Hit:  true,
		Odd:  bits.OnesCount64(c&sol.X)&1 != 0,
		Rank: sol.Rank(ev.numNodes),
	}
}
