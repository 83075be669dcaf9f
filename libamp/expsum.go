package libamp

import (
	"math/bits"
)

// ExponentialSumEvaluator evaluates a slice as a real Clifford exponential sum over
// the 2m blue and green variables, eliminating variables in pairs.
// Blue index i is variable i and green index j is variable m+j, so 2m must be <= 64.
type ExponentialSumEvaluator struct {
	numNodes int
	M        [64]uint64
}

func (ev *ExponentialSumEvaluator) EvalSlice(gamma []uint64, b, c uint64) SliceResult {
	m := ev.numNodes
	n := 2 * m
	M := ev.M[:n]
	for i := range M {
		M[i] = 0
	}
	for bi, row := range gamma {
		M[bi] = row << uint(m)
	}

	isZero, pow2, sigma := ExponentialSum(M, b|c<<uint(m))
	if isZero {
		return SliceResult{}
	}
	return SliceResult{
		Hit:  true,
		Odd:  sigma,
		Rank: n - pow2,
	}
}

// ExponentialSum computes S = sum over x in {0,1}^n of (-1)^(x.Mx + L.x), n = len(M) <= 64,
// where bit j of M[i] is entry (i,j).  S is either zero or (-1)^sigma * 2^pow2.
// M is used as scratch.
func ExponentialSum(M []uint64, L uint64) (isZero bool, pow2 int, sigma bool) {
	n := len(M)
	active := ^uint64(0)
	if n < 64 {
		active = uint64(1)<<uint(n) - 1
	}

	for active != 0 {
		i1 := bits.TrailingZeros64(active)
		bit1 := uint64(1) << uint(i1)

		// a variable that appears off the diagonal asymmetrically couples to i1
		i2 := -1
		for j := 0; j < n; j++ {
			if (M[i1]>>uint(j))&1 != (M[j]>>uint(i1))&1 {
				i2 = j
				break
			}
		}

		L1 := (L>>uint(i1))&1 ^ (M[i1]>>uint(i1))&1

		if i2 < 0 {
			// linear in x[i1]
			if L1 != 0 {
				return true, 0, false
			}
			pow2++
			M[i1] = 0
			for j := range M {
				M[j] &^= bit1
			}
			L &^= bit1
			active &^= bit1
			continue
		}

		bit2 := uint64(1) << uint(i2)
		both := bit1 | bit2
		L2 := (L>>uint(i2))&1 ^ (M[i2]>>uint(i2))&1
		L &^= both

		var m1, m2 uint64
		for j := range M {
			m1 ^= ((M[j] >> uint(i1)) & 1) << uint(j)
			m2 ^= ((M[j] >> uint(i2)) & 1) << uint(j)
		}
		m1 = (m1 ^ M[i1]) &^ both
		m2 = (m2 ^ M[i2]) &^ both

		M[i1] = 0
		M[i2] = 0
		for j := range M {
			M[j] &^= both
		}

		if L1 != 0 {
			L ^= m2
		}
		if L2 != 0 {
			L ^= m1
		}
		for j := range M {
			if (m2>>uint(j))&1 != 0 {
				M[j] ^= m1
			}
		}

		pow2++
		sigma = sigma != (L1&L2 != 0)
		active &^= both
	}

	return false, pow2, sigma
}
