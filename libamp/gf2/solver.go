package gf2

import (
	"math/bits"

	"github.com/2x3systems/goamp/goamp"
	"github.com/pkg/errors"
)

// MaxCols is the max column count of a Matrix.  One more bit is reserved for the
// augmented right hand side column.
const MaxCols = 63

// Status reports whether a linear system A x = b (mod 2) is feasible.
type Status int

const (
	Infeasible Status = iota
	OK
)

func (st Status) String() string {
	if st == OK {
		return "OK"
	}
	return "INFEASIBLE"
}

// Matrix is a binary matrix with one uint64 bit mask per row: bit j of Rows[i] is entry (i,j).
type Matrix struct {
	Rows    []uint64
	NumCols int
}

// NewMatrix returns a zero matrix of the given shape.
func NewMatrix(numRows, numCols int) (Matrix, error) {
	if numRows < 0 || numCols < 0 || numCols > MaxCols {
		return Matrix{}, errors.Wrapf(goamp.ErrMatrixShape, "%dx%d", numRows, numCols)
	}
	return Matrix{
		Rows:    make([]uint64, numRows),
		NumCols: numCols,
	}, nil
}

// NumRows returns the number of equations.
func (A Matrix) NumRows() int {
	return len(A.Rows)
}

// Get returns entry (i,j).
func (A Matrix) Get(i, j int) bool {
	return (A.Rows[i]>>uint(j))&1 != 0
}

// Toggle flips entry (i,j).
func (A Matrix) Toggle(i, j int) {
	A.Rows[i] ^= 1 << uint(j)
}

// Clone returns a deep copy of A.
func (A Matrix) Clone() Matrix {
	return Matrix{
		Rows:    append([]uint64(nil), A.Rows...),
		NumCols: A.NumCols,
	}
}

// Validate checks that every row fits in NumCols columns.
func (A Matrix) Validate() error {
	if A.NumCols < 0 || A.NumCols > MaxCols || len(A.Rows) > 64 {
		return errors.Wrapf(goamp.ErrMatrixShape, "%dx%d", len(A.Rows), A.NumCols)
	}
	for i, row := range A.Rows {
		if row>>uint(A.NumCols) != 0 {
			return errors.Wrapf(goamp.ErrMatrixShape, "row %d has entries beyond column %d", i, A.NumCols)
		}
	}
	return nil
}

// MulVec returns A x (mod 2) as a bit mask over rows.
func (A Matrix) MulVec(x uint64) uint64 {
	y := uint64(0)
	for i, row := range A.Rows {
		y |= uint64(bits.OnesCount64(row&x)&1) << uint(i)
	}
	return y
}

// Rank returns the rank of A by Gaussian elimination over GF(2).
func (A Matrix) Rank() int {
	var rowsBuf [64]uint64
	rows := append(rowsBuf[:0], A.Rows...)
	rank := 0
	for j := 0; j < A.NumCols && rank < len(rows); j++ {
		bit := uint64(1) << uint(j)
		pivot := -1
		for i := rank; i < len(rows); i++ {
			if rows[i]&bit != 0 {
				pivot = i
				break
			}
		}
		if pivot < 0 {
			continue
		}
		rows[rank], rows[pivot] = rows[pivot], rows[rank]
		for i := range rows {
			if i != rank && rows[i]&bit != 0 {
				rows[i] ^= rows[rank]
			}
		}
		rank++
	}
	return rank
}

// Solution is the outcome of solving A x = b (mod 2).
//
// When Status is OK, X is one solution and Basis holds the columns of a matrix whose
// columns span the null space of A.  If A has full column rank, Basis is empty.
type Solution struct {
	Status Status
	X      uint64
	Basis  []uint64
}

// Rank returns numCols minus the nullity reported by this solution.
func (sol Solution) Rank(numCols int) int {
	return numCols - len(sol.Basis)
}

// Solve solves A x = b (mod 2).  The returned Basis is owned by the caller.
func Solve(A Matrix, b uint64) (Solution, error) {
	if err := A.Validate(); err != nil {
		return Solution{}, err
	}
	if len(A.Rows) < 64 && b>>uint(len(A.Rows)) != 0 {
		return Solution{}, errors.Wrapf(goamp.ErrMatrixShape, "rhs has entries beyond row %d", len(A.Rows))
	}
	var s Solver
	sol := s.Solve(A, b)
	sol.Basis = append([]uint64(nil), sol.Basis...)
	return sol, nil
}

// Solver holds scratch space so repeated solves do not allocate.
// A Solver is not safe for concurrent use.
type Solver struct {
	cand []uint64
	good []uint64
	bad  []uint64
}

// Solve solves A x = b (mod 2) without validating A.
// The returned Basis aliases scratch space and is valid until the next call.
//
// The candidate set starts as the identity (every standard basis vector is in the null
// space of zero equations).  Each equation keeps the candidates orthogonal to it and
// folds the others onto the first non-orthogonal candidate, which is then dropped.
// A nonzero b rides along as an extra column; a surviving candidate with that column
// set yields a particular solution.
func (s *Solver) Solve(A Matrix, b uint64) Solution {
	numVars := A.NumCols
	aug := uint64(0)
	if b != 0 {
		aug = uint64(1) << uint(numVars)
		numVars++
	}

	X := s.cand[:0]
	for j := 0; j < numVars; j++ {
		X = append(X, uint64(1)<<uint(j))
	}

	for i, row := range A.Rows {
		if (b>>uint(i))&1 != 0 {
			row |= aug
		}

		good := s.good[:0]
		bad := s.bad[:0]
		for _, x := range X {
			if bits.OnesCount64(row&x)&1 == 0 {
				good = append(good, x)
			} else {
				bad = append(bad, x)
			}
		}
		X = append(X[:0], good...)
		if len(bad) > 0 {
			first := bad[0]
			for _, x := range bad[1:] {
				X = append(X, x^first)
			}
		}
		s.good = good[:0]
		s.bad = bad[:0]

		if len(X) == 0 {
			s.cand = X
			if b != 0 {
				return Solution{Status: Infeasible}
			}
			// Only a full rank A collapses with b = 0, leaving x = 0 as the unique solution.
			return Solution{Status: OK}
		}
	}
	s.cand = X

	if b == 0 {
		return Solution{
			Status: OK,
			Basis:  X,
		}
	}

	col := -1
	for k, x := range X {
		if x&aug != 0 {
			col = k
			break
		}
	}
	if col < 0 {
		return Solution{Status: Infeasible}
	}

	pivot := X[col]
	for k := range X {
		if X[k]&aug != 0 {
			X[k] ^= pivot
		}
	}
	X = append(X[:col], X[col+1:]...)
	s.cand = X

	return Solution{
		Status: OK,
		X:      pivot &^ aug,
		Basis:  X,
	}
}
